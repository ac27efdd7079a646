package tja

import "tja-library/formats"

// init registra automaticamente il formato TJA
// Questo viene chiamato quando il package viene importato
func init() {
	formats.RegisterFormat("tja", func() formats.ChartFormat {
		return NewTjaFormat()
	})
}
