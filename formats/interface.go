package formats

import "tja-library/parser"

// ChartFormat definisce l'interface per i formati di chart supportati.
// Il campo `type` del documento prevede più formati nel sistema a valle:
// ogni formato si registra nel registry e library/importer lo risolvono
// dall'estensione del file, senza conoscere i parser concreti.
type ChartFormat interface {
	// GetFormatName restituisce il nome del formato
	GetFormatName() string

	// Extensions restituisce le estensioni gestite, col punto (es: ".tja")
	Extensions() []string

	// ParseChart parsa il testo di un chart nel modello comune
	ParseChart(text string) (*parser.Chart, error)

	// ParseChartFile legge e parsa un chart da disco
	ParseChartFile(path string) (*parser.Chart, error)
}
