package clean

import (
	"strconv"

	"urbandata/internal/paris"
	"urbandata/internal/tabular"
)

const (
	minSurface    = 8.0
	maxSurface    = 1000.0
	minPricePerM2 = 500.0
	maxPricePerM2 = 30000.0
)

var (
	dvfNatures = map[string]bool{
		"Vente":                               true,
		"Vente en l'état futur d'achèvement": true,
	}
	dvfTypes = map[string]bool{
		"Appartement": true,
		"Maison":      true,
	}
)

func dvfRecipe() Recipe {
	return Recipe{
		Kind: "dvf",
		Columns: []tabular.Column{
			tabular.Req("valeur_fonciere"),
			tabular.Req("code_postal"),
			tabular.Req("type_local"),
			tabular.Req("nature_mutation"),
			tabular.Req("surface_reelle_bati"),
			tabular.Col("id_mutation"),
			tabular.Col("date_mutation"),
			tabular.Col("nombre_pieces_principales"),
			tabular.Col("longitude"),
			tabular.Col("latitude"),
		},
		Schema: tabular.Schema{
			{Name: "id_mutation", Kind: tabular.Text},
			{Name: "date_mutation", Kind: tabular.Date},
			{Name: "annee", Kind: tabular.Int},
			{Name: "arrondissement", Kind: tabular.Int},
			{Name: "code_postal", Kind: tabular.Text},
			{Name: "type_local", Kind: tabular.Text},
			{Name: "typologie", Kind: tabular.Text},
			{Name: "surface_reelle_bati", Kind: tabular.Float},
			{Name: "nombre_pieces_principales", Kind: tabular.Int},
			{Name: "valeur_fonciere", Kind: tabular.Float},
			{Name: "prix_m2", Kind: tabular.Float},
			{Name: "longitude", Kind: tabular.Float},
			{Name: "latitude", Kind: tabular.Float},
		},
		Row: dvfRow,
	}
}

func dvfRow(rec tabular.Record) ([]string, bool) {
	if !dvfNatures[rec.Get("nature_mutation")] || !dvfTypes[rec.Get("type_local")] {
		return nil, false
	}
	district, ok := paris.PostalDistrict(rec.Get("code_postal"))
	if !ok {
		return nil, false
	}
	value, ok := tabular.ParseNumber(rec.Get("valeur_fonciere"))
	if !ok {
		return nil, false
	}
	surface, ok := tabular.ParseNumber(rec.Get("surface_reelle_bati"))
	if !ok || surface < minSurface || surface > maxSurface {
		return nil, false
	}
	price := value / surface
	if price < minPricePerM2 || price > maxPricePerM2 {
		return nil, false
	}

	var date, year string
	if t, ok := tabular.ParseDate(rec.Get("date_mutation")); ok {
		date = tabular.FormatDate(t)
		year = strconv.Itoa(t.Year())
	}
	rooms, haveRooms := tabular.ParseNumber(rec.Get("nombre_pieces_principales"))
	roomsCell := ""
	if haveRooms {
		roomsCell = tabular.IntCell(rec.Get("nombre_pieces_principales"))
	}

	return []string{
		rec.Get("id_mutation"),
		date,
		year,
		strconv.Itoa(district),
		paris.PostalCode(district),
		rec.Get("type_local"),
		typology(rooms, haveRooms),
		tabular.FormatFloat(surface),
		roomsCell,
		tabular.FormatFloat(value),
		tabular.FormatFloat(price),
		tabular.NumberCell(rec.Get("longitude")),
		tabular.NumberCell(rec.Get("latitude")),
	}, true
}

// typology buckets main rooms into (-1,1], (1,2], (2,3], (3,4] and (4,100].
// Missing or out-of-range counts get no label.
func typology(rooms float64, ok bool) string {
	switch {
	case !ok || rooms <= -1 || rooms > 100:
		return ""
	case rooms <= 1:
		return "T1"
	case rooms <= 2:
		return "T2"
	case rooms <= 3:
		return "T3"
	case rooms <= 4:
		return "T4"
	default:
		return "T5+"
	}
}
