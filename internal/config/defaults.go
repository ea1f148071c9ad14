package config

const (
	defaultRawDir          = "data/bronze"
	defaultCleanDir        = "data/silver"
	defaultLogDir          = "data/logs"
	defaultCatalogPath     = "data/catalog.db"
	defaultFetchWorkers    = 4
	defaultUserAgent       = "urbandata/dev"
	defaultDelimiter       = ";"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultLogRetention    = 30
	maxFetchWorkers        = 64
	openDataParisExport    = "https://opendata.paris.fr/api/explore/v2.1/catalog/datasets/%s/exports/csv"
	defaultDVFURL          = "https://files.data.gouv.fr/geo-dvf/latest/csv/2024/departements/75.csv.gz"
	defaultCleanFileSuffix = "_clean.csv"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			RawDir:   defaultRawDir,
			CleanDir: defaultCleanDir,
			LogDir:   defaultLogDir,
		},
		Fetch: Fetch{
			Workers:   defaultFetchWorkers,
			UserAgent: defaultUserAgent,
		},
		Catalog: Catalog{
			Path: defaultCatalogPath,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetention,
		},
		Datasets: DefaultDatasets(),
	}
}

// DefaultDatasets returns the built-in Paris dataset map. Names double as raw
// file stems, so "dvf" lands in <raw_dir>/dvf.csv.
func DefaultDatasets() []Dataset {
	datasets := []Dataset{
		{
			Name:      "dvf",
			Kind:      "dvf",
			URL:       defaultDVFURL,
			Delimiter: ",",
			CleanFile: "transactions_residentiel.csv",
		},
		{
			Name:          "logement_sociaux",
			Kind:          "logements_sociaux",
			URL:           openDataURL("logements-sociaux-finances-a-paris"),
			CleanFile:     "logements_sociaux_programmes.csv",
			AggregateFile: "logements_sociaux_arr_annee.csv",
		},
		{
			Name:      "espace_verts",
			Kind:      "espaces_verts",
			URL:       openDataURL("espaces_verts"),
			CleanFile: "espaces_verts_clean.csv",
		},
		{
			Name:      "colleges",
			Kind:      "colleges",
			URL:       openDataURL("etablissements-scolaires-colleges"),
			CleanFile: "colleges_clean.csv",
		},
		{
			Name:      "elementaire",
			Kind:      "ecoles_elementaires",
			URL:       openDataURL("etablissements-scolaires-ecoles-elementaires"),
			CleanFile: "ecoles_elementaires_clean.csv",
		},
		{
			Name:      "maternelle",
			Kind:      "ecoles_maternelles",
			URL:       openDataURL("etablissements-scolaires-maternelles"),
			CleanFile: "ecoles_maternelles_clean.csv",
		},
		{
			Name:      "abribac_dechets_alimentaires",
			Kind:      "dechets_alimentaires",
			URL:       openDataURL("dechets-menagers-pavda"),
			CleanFile: "abribac_dechets_alimentaires.csv",
		},
	}
	for i := range datasets {
		if datasets[i].Delimiter == "" {
			datasets[i].Delimiter = defaultDelimiter
		}
	}
	return datasets
}
