package clean

import (
	"strconv"

	"urbandata/internal/paris"
	"urbandata/internal/tabular"
)

// foodWasteRecipe handles the PAVDA food-waste drop-off points.
func foodWasteRecipe() Recipe {
	return Recipe{
		Kind: "dechets_alimentaires",
		Columns: []tabular.Column{
			tabular.Req("pavda_id", "pavda_idt", "pavda_id"),
			tabular.Req("arrondissement_txt", "arrdt", "Arrondissement", "arrondissement_txt"),
			tabular.Col("code_insee", "Code INSEE", "code_insee"),
			tabular.Col("geo_point", "geo_point_2d"),
			tabular.Col("geo_shape", "geo_shape"),
		},
		Schema: tabular.Schema{
			{Name: "pavda_id", Kind: tabular.Text},
			{Name: "arrondissement_txt", Kind: tabular.Text},
			{Name: "code_insee", Kind: tabular.Text},
			{Name: "longitude", Kind: tabular.Float},
			{Name: "latitude", Kind: tabular.Float},
			{Name: "arrondissement", Kind: tabular.Int},
		},
		Row: foodWasteRow,
	}
}

func foodWasteRow(rec tabular.Record) ([]string, bool) {
	district, ok := foodWasteDistrict(rec.Get("code_insee"), rec.Get("arrondissement_txt"))
	if !ok {
		return nil, false
	}
	lon, lat := coordinates(rec.Get("geo_point"), rec.Get("geo_shape"))
	return []string{
		rec.Get("pavda_id"),
		rec.Get("arrondissement_txt"),
		paris.NormalizeCode(rec.Get("code_insee")),
		lon,
		lat,
		strconv.Itoa(district),
	}, true
}

// foodWasteDistrict tries the INSEE code, then the arrdt text as a 750XX
// postal code, then the first number in it ("5e", "05").
func foodWasteDistrict(insee, text string) (int, bool) {
	if n, ok := paris.INSEEDistrict(insee); ok {
		return n, true
	}
	if n, ok := paris.PostalDistrict(text); ok {
		return n, true
	}
	if _, isPostal := paris.ExtractPostalCode(text); isPostal {
		return 0, false
	}
	return paris.TextDistrict(text)
}
