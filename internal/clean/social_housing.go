package clean

import (
	"cmp"
	"slices"
	"strconv"

	"urbandata/internal/paris"
	"urbandata/internal/tabular"
)

var socialHousingCounts = []string{"nb_total", "nb_plai", "nb_plus", "nb_plus_cd", "nb_pls"}

func socialHousingRecipe() Recipe {
	return Recipe{
		Kind: "logements_sociaux",
		Columns: []tabular.Column{
			tabular.Req("code_postal", "Code postal", "code_postal"),
			tabular.Col("id_programme", "Identifiant livraison", "id_programme"),
			tabular.Col("annee", "Année du financement - agrément", "annee"),
			tabular.Col("adresse", "Adresse du programme", "adresse"),
			tabular.Col("ville", "Ville", "ville"),
			tabular.Col("bailleur", "Bailleur social", "bailleur"),
			tabular.Col("mode_realisation", "Mode de réalisation", "mode_realisation"),
			tabular.Col("nb_total", "Nombre total de logements financés", "nb_total"),
			tabular.Col("nb_plai", "Dont nombre de logements PLA I", "nb_plai"),
			tabular.Col("nb_plus", "Dont nombre de logements PLUS", "nb_plus"),
			tabular.Col("nb_plus_cd", "Dont nombre de logements PLUS CD", "nb_plus_cd"),
			tabular.Col("nb_pls", "Dont nombre de logements PLS", "nb_pls"),
		},
		Schema: tabular.Schema{
			{Name: "id_programme", Kind: tabular.Text},
			{Name: "annee", Kind: tabular.Int},
			{Name: "arrondissement", Kind: tabular.Int},
			{Name: "code_postal", Kind: tabular.Text},
			{Name: "adresse", Kind: tabular.Text},
			{Name: "ville", Kind: tabular.Text},
			{Name: "bailleur", Kind: tabular.Text},
			{Name: "mode_realisation", Kind: tabular.Text},
			{Name: "nb_total", Kind: tabular.Int},
			{Name: "nb_plai", Kind: tabular.Int},
			{Name: "nb_plus", Kind: tabular.Int},
			{Name: "nb_plus_cd", Kind: tabular.Int},
			{Name: "nb_pls", Kind: tabular.Int},
		},
		Row:       socialHousingRow,
		Aggregate: socialHousingByDistrictYear,
	}
}

func socialHousingRow(rec tabular.Record) ([]string, bool) {
	district, ok := paris.PostalDistrict(rec.Get("code_postal"))
	if !ok {
		return nil, false
	}
	row := []string{
		rec.Get("id_programme"),
		tabular.IntCell(rec.Get("annee")),
		strconv.Itoa(district),
		paris.PostalCode(district),
		rec.Get("adresse"),
		rec.Get("ville"),
		rec.Get("bailleur"),
		rec.Get("mode_realisation"),
	}
	for _, count := range socialHousingCounts {
		row = append(row, tabular.IntCell(rec.Get(count)))
	}
	return row, true
}

type districtYear struct {
	district int64
	year     int64
}

// socialHousingByDistrictYear sums the nb_* counts per (arrondissement,
// annee). Programmes without a year are left out. A sum stays empty when every
// contribution is missing. Output is sorted by arrondissement then annee.
func socialHousingByDistrictYear(programmes *tabular.Table) *tabular.Table {
	districtCol, _ := programmes.Column("arrondissement")
	yearCol, _ := programmes.Column("annee")
	countCols := make([]int, len(socialHousingCounts))
	for i, name := range socialHousingCounts {
		countCols[i], _ = programmes.Column(name)
	}

	type sums struct {
		total   []int64
		present []bool
	}
	groups := map[districtYear]*sums{}
	for _, row := range programmes.Rows {
		district, okD := tabular.ParseInt(row[districtCol])
		year, okY := tabular.ParseInt(row[yearCol])
		if !okD || !okY {
			continue
		}
		key := districtYear{district, year}
		g, ok := groups[key]
		if !ok {
			g = &sums{total: make([]int64, len(countCols)), present: make([]bool, len(countCols))}
			groups[key] = g
		}
		for i, col := range countCols {
			if n, ok := tabular.ParseInt(row[col]); ok {
				g.total[i] += n
				g.present[i] = true
			}
		}
	}

	keys := make([]districtYear, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b districtYear) int {
		return cmp.Or(cmp.Compare(a.district, b.district), cmp.Compare(a.year, b.year))
	})

	schema := tabular.Schema{
		{Name: "arrondissement", Kind: tabular.Int},
		{Name: "annee", Kind: tabular.Int},
	}
	for _, name := range socialHousingCounts {
		schema = append(schema, tabular.Field{Name: name, Kind: tabular.Int})
	}
	out := tabular.NewTable(schema)
	for _, k := range keys {
		g := groups[k]
		row := []string{tabular.FormatInt(k.district), tabular.FormatInt(k.year)}
		for i := range countCols {
			cell := ""
			if g.present[i] {
				cell = tabular.FormatInt(g.total[i])
			}
			row = append(row, cell)
		}
		out.Append(row...)
	}
	return out
}
