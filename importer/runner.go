package importer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tja-library/document"
	"tja-library/formats"
	_ "tja-library/formats/tja" // Registra il formato TJA
	"tja-library/library"
	"tja-library/linter"
)

// ImportRunner gestisce l'import batch dei chart
type ImportRunner struct {
	baseDir string
}

// ImportSummary riassunto dell'import
type ImportSummary struct {
	TotalFiles    int    `json:"total_files"`
	ImportSuccess int    `json:"import_success"`
	ImportFailed  int    `json:"import_failed"`
	TotalWarnings int    `json:"total_warnings"`
	Duration      string `json:"duration"`
}

// NewImportRunner crea un nuovo import runner per la cartella indicata
func NewImportRunner(baseDir string) *ImportRunner {
	return &ImportRunner{baseDir: baseDir}
}

// RunImport processa tutti i chart sotto la cartella base: per ognuno
// parsa, valida e scrive il documento proiettato accanto al chart.
func (ir *ImportRunner) RunImport() (*ImportSummary, error) {
	startTime := time.Now()

	// Verifica che la cartella esista
	if _, err := os.Stat(ir.baseDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("cartella %s non trovata", ir.baseDir)
	}

	chartFiles, err := ir.findChartFiles()
	if err != nil {
		return nil, err
	}
	if len(chartFiles) == 0 {
		return nil, fmt.Errorf("nessun chart trovato in %s (estensioni: %s)",
			ir.baseDir, strings.Join(formats.SupportedExtensions(), ", "))
	}

	summary := &ImportSummary{
		TotalFiles: len(chartFiles),
	}

	fmt.Printf("\n📁 Trovati %d chart in %s\n", len(chartFiles), ir.baseDir)
	fmt.Println(strings.Repeat("─", 50))

	// Processa ogni file
	for _, chartFile := range chartFiles {
		filename := filepath.Base(chartFile)
		fmt.Printf("\n📄 %s\n", filename)

		doc, review, err := ir.importFile(chartFile)
		if err != nil {
			summary.ImportFailed++
			fmt.Printf("   ❌ Import FAILED: %s\n", err)
			continue
		}

		summary.ImportSuccess++
		fmt.Printf("   ✅ Import OK - %d difficoltà\n", len(review.Courses))

		if review.TotalWarnings > 0 {
			summary.TotalWarnings += review.TotalWarnings
			fmt.Printf("   ⚠️  %d warning(s)\n", review.TotalWarnings)
			for _, warn := range review.ChartWarnings {
				fmt.Printf("      %s\n", warn)
			}
			for _, report := range review.Courses {
				for _, warn := range report.Warnings {
					fmt.Printf("      [%s] %s\n", report.Course, warn)
				}
			}
		}

		// Salva il documento proiettato accanto al chart
		outputPath := ir.getOutputPath(chartFile, "_song.json")
		if err := ir.saveJSON(outputPath, doc); err != nil {
			fmt.Printf("   ⚠️  Errore salvataggio JSON: %v\n", err)
		} else {
			fmt.Printf("   💾 %s\n", filepath.Base(outputPath))
		}
	}

	summary.Duration = time.Since(startTime).String()

	// Stampa riassunto
	fmt.Println()
	fmt.Println(strings.Repeat("═", 50))
	fmt.Println("📊 RIASSUNTO IMPORT")
	fmt.Println(strings.Repeat("═", 50))
	fmt.Printf("   Chart processati: %d\n", summary.TotalFiles)
	fmt.Printf("   Import OK:        %d/%d\n", summary.ImportSuccess, summary.TotalFiles)
	fmt.Printf("   Warning totali:   %d\n", summary.TotalWarnings)
	fmt.Printf("   Durata:           %s\n", summary.Duration)
	fmt.Println(strings.Repeat("═", 50))

	return summary, nil
}

// findChartFiles trova tutti i chart sotto la cartella base
func (ir *ImportRunner) findChartFiles() ([]string, error) {
	var files []string

	err := filepath.Walk(ir.baseDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && formats.IsChartFile(path) {
			files = append(files, path)
		}
		return nil
	})

	return files, err
}

// importFile parsa, valida e proietta un singolo chart
func (ir *ImportRunner) importFile(chartPath string) (*document.SongDocument, *linter.ReviewResult, error) {
	format := formats.FormatForFile(chartPath)
	if format == nil {
		return nil, nil, fmt.Errorf("nessun formato registrato per %q", filepath.Ext(chartPath))
	}

	chart, err := format.ParseChartFile(chartPath)
	if err != nil {
		return nil, nil, err
	}

	review := linter.NewChartLinter(chart).Review()
	if !review.Success {
		return nil, review, fmt.Errorf("chart non valido: %s", strings.Join(review.Errors, "; "))
	}

	id, err := library.SongIDFor(ir.baseDir, chartPath)
	if err != nil {
		return nil, review, err
	}

	info, err := os.Stat(chartPath)
	if err != nil {
		return nil, review, err
	}

	return document.FromChart(chart, id, info.ModTime().UnixNano()), review, nil
}

// getOutputPath genera il path di output accanto al chart di partenza
func (ir *ImportRunner) getOutputPath(inputPath, suffix string) string {
	baseName := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	return filepath.Join(filepath.Dir(inputPath), baseName+suffix)
}

// saveJSON salva un oggetto come JSON
func (ir *ImportRunner) saveJSON(path string, data interface{}) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, jsonData, 0644)
}
