package tja

import (
	"tja-library/parser"
)

// TjaFormat implementa ChartFormat per i chart TJA
type TjaFormat struct{}

// NewTjaFormat crea un nuovo formato TJA
func NewTjaFormat() *TjaFormat {
	return &TjaFormat{}
}

// GetFormatName restituisce "TJA"
func (f *TjaFormat) GetFormatName() string {
	return "TJA"
}

// Extensions restituisce le estensioni gestite dal formato
func (f *TjaFormat) Extensions() []string {
	return []string{".tja"}
}

// ParseChart parsa il testo di un chart TJA
func (f *TjaFormat) ParseChart(text string) (*parser.Chart, error) {
	return parser.ParseChart(text)
}

// ParseChartFile legge e parsa un file .tja da disco
func (f *TjaFormat) ParseChartFile(path string) (*parser.Chart, error) {
	return parser.NewTjaParser(path).Parse()
}
