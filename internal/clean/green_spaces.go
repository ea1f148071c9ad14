package clean

import (
	"strconv"

	"urbandata/internal/paris"
	"urbandata/internal/tabular"
)

func greenSpaceRecipe() Recipe {
	return Recipe{
		Kind: "espaces_verts",
		Columns: []tabular.Column{
			tabular.Req("id_espace_vert", "nsq_espace_vert"),
			tabular.Req("nom_espace_vert", "nom_ev"),
			tabular.Req("type_espace_vert", "type_ev"),
			tabular.Req("code_postal", "adresse_codepostal"),
			tabular.Col("geo_point", "geo_point_2d", "geom_x_y"),
			tabular.Col("geo_shape", "geo_shape", "geom"),
		},
		Schema: tabular.Schema{
			{Name: "id_espace_vert", Kind: tabular.Text},
			{Name: "nom_espace_vert", Kind: tabular.Text},
			{Name: "type_espace_vert", Kind: tabular.Text},
			{Name: "code_postal", Kind: tabular.Text},
			{Name: "arr_num", Kind: tabular.Int},
			{Name: "longitude", Kind: tabular.Float},
			{Name: "latitude", Kind: tabular.Float},
		},
		DedupeOn: []string{"id_espace_vert"},
		Row:      greenSpaceRow,
	}
}

func greenSpaceRow(rec tabular.Record) ([]string, bool) {
	code, ok := paris.ExtractPostalCode(rec.Get("code_postal"))
	if !ok {
		return nil, false
	}
	district, ok := paris.PostalDistrict(code)
	if !ok {
		return nil, false
	}
	lon, lat := coordinates(rec.Get("geo_point"), rec.Get("geo_shape"))
	return []string{
		rec.Get("id_espace_vert"),
		rec.Get("nom_espace_vert"),
		rec.Get("type_espace_vert"),
		code,
		strconv.Itoa(district),
		lon,
		lat,
	}, true
}
