package clean

import (
	"strconv"

	"urbandata/internal/paris"
	"urbandata/internal/tabular"
)

// schoolRecipe covers the three school directories, which share one layout
// but ship either the API field names or the French display labels.
func schoolRecipe(kind string) Recipe {
	return Recipe{
		Kind: kind,
		Columns: []tabular.Column{
			tabular.Req("nom_etablissement", "libelle", "Libellé établissement"),
			tabular.Req("arr_libelle", "arr_libelle", "Arrondissement"),
			tabular.Req("arr_insee", "arr_insee", "Code INSEE"),
		},
		Schema: tabular.Schema{
			{Name: "arr_num", Kind: tabular.Int},
			{Name: "arr_insee", Kind: tabular.Text},
			{Name: "arr_libelle", Kind: tabular.Text},
			{Name: "nom_etablissement", Kind: tabular.Text},
		},
		DedupeOn: []string{"nom_etablissement", "arr_libelle", "arr_insee"},
		Row:      schoolRow,
	}
}

func schoolRow(rec tabular.Record) ([]string, bool) {
	insee := paris.NormalizeCode(rec.Get("arr_insee"))
	label := rec.Get("arr_libelle")
	district, ok := paris.INSEEDistrict(insee)
	if !ok {
		district, ok = paris.TextDistrict(label)
	}
	if !ok {
		return nil, false
	}
	return []string{
		strconv.Itoa(district),
		insee,
		label,
		rec.Get("nom_etablissement"),
	}, true
}
