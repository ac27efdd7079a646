package linter

import (
	"fmt"

	"tja-library/parser"
)

// ChartLinter esamina un chart parsato e ne giudica la qualità
type ChartLinter struct {
	chart *parser.Chart
}

// CourseReport è il verdetto su una singola difficoltà
type CourseReport struct {
	Course    string   `json:"course"`
	Stars     *int     `json:"stars"`
	Branch    bool     `json:"branch"`
	ExamCount int      `json:"exam_count"`
	SongCount int      `json:"song_count"`
	Warnings  []string `json:"warnings,omitempty"`
}

// ReviewResult è il verdetto completo sul chart
type ReviewResult struct {
	Success       bool           `json:"success"`
	Errors        []string       `json:"errors,omitempty"`
	ChartWarnings []string       `json:"chart_warnings,omitempty"`
	Courses       []CourseReport `json:"courses"`
	TotalWarnings int            `json:"total_warnings"`
}

// Per gli exam di questi tipi la soglia oro è più bassa di quella rossa
// (contano gli errori, non i colpi riusciti)
var lowerIsBetter = map[string]bool{
	"ng": true,
	"jb": true,
}

// Le difficoltà standard richiedono un LEVEL; dan e tower ne fanno a meno
var requiresStars = map[parser.CourseName]bool{
	parser.CourseEasy:   true,
	parser.CourseNormal: true,
	parser.CourseHard:   true,
	parser.CourseOni:    true,
	parser.CourseUra:    true,
}

// NewChartLinter crea un nuovo linter
func NewChartLinter(chart *parser.Chart) *ChartLinter {
	return &ChartLinter{chart: chart}
}

// ValidateChart verifica i requisiti minimi di un chart importabile.
// Restituisce la lista dei problemi bloccanti (vuota = chart valido).
func (cl *ChartLinter) ValidateChart() []string {
	errors := []string{}

	if cl.chart.Title == nil && cl.chart.TitleJA == nil {
		errors = append(errors, "TITLE mancante: il chart non ha nessun titolo")
	}

	if len(cl.chart.Courses) == 0 {
		errors = append(errors, "il chart non definisce nessuna difficoltà")
	}

	for _, name := range parser.CanonicalCourseOrder {
		record, exists := cl.chart.Courses[name]
		if !exists {
			continue
		}
		if requiresStars[name] && record.Stars == nil {
			errors = append(errors, fmt.Sprintf("difficoltà '%s' senza LEVEL valido", name))
		}
	}

	return errors
}

// Review valida il chart e, se passa, produce il rapporto per difficoltà
func (cl *ChartLinter) Review() *ReviewResult {
	result := &ReviewResult{
		Success: true,
		Errors:  []string{},
		Courses: []CourseReport{},
	}

	validationErrors := cl.ValidateChart()
	if len(validationErrors) > 0 {
		result.Success = false
		result.Errors = validationErrors
		return result
	}

	result.ChartWarnings = cl.ChartWarnings()
	result.TotalWarnings += len(result.ChartWarnings)

	// Rapporto nell'ordine canonico, non in quello della map
	for _, name := range parser.CanonicalCourseOrder {
		record, exists := cl.chart.Courses[name]
		if !exists {
			continue
		}

		report := CourseReport{
			Course:    string(name),
			Stars:     record.Stars,
			Branch:    record.Branch,
			ExamCount: len(record.Exams),
			SongCount: len(record.Songs),
			Warnings:  cl.generateCourseWarnings(name, record),
		}

		result.TotalWarnings += len(report.Warnings)
		result.Courses = append(result.Courses, report)
	}

	return result
}

// ChartWarnings restituisce i warning di livello chart (non per difficoltà)
func (cl *ChartLinter) ChartWarnings() []string {
	warnings := []string{}

	if cl.chart.Wave == nil {
		warnings = append(warnings, "⚠️ WAVE mancante: nessun audio da servire")
	}
	if cl.chart.Offset == nil {
		warnings = append(warnings, "⚠️ OFFSET mancante o non numerico")
	}

	return warnings
}

// generateCourseWarnings genera i warning per una difficoltà
func (cl *ChartLinter) generateCourseWarnings(name parser.CourseName, record *parser.CourseRecord) []string {
	warnings := []string{}

	if record.Stars != nil && (*record.Stars < 1 || *record.Stars > 10) {
		warnings = append(warnings, fmt.Sprintf("⚠️ stars %d fuori dal range consueto 1-10", *record.Stars))
	}

	if name == parser.CourseDan {
		if len(record.Exams) == 0 {
			warnings = append(warnings, "⚠️ difficoltà dan senza nessun EXAM")
		}
		if len(record.Songs) == 0 {
			warnings = append(warnings, "⚠️ difficoltà dan senza nessun #NEXTSONG")
		}
	} else if len(record.Exams) > 0 {
		warnings = append(warnings, fmt.Sprintf("⚠️ EXAM su difficoltà '%s': gli exam appartengono ai corsi dan", name))
	}

	seen := map[int]bool{}
	for _, exam := range record.Exams {
		if seen[exam.ID] {
			warnings = append(warnings, fmt.Sprintf("⚠️ exam %d dichiarato più volte", exam.ID))
		}
		seen[exam.ID] = true

		if !lowerIsBetter[exam.Type] && exam.GoldPass < exam.RedPass {
			warnings = append(warnings, fmt.Sprintf(
				"⚠️ exam %d (tipo %s): gold_pass %d sotto red_pass %d",
				exam.ID, exam.Type, exam.GoldPass, exam.RedPass,
			))
		}
	}

	for i, song := range record.Songs {
		if song.Wave == "" {
			warnings = append(warnings, fmt.Sprintf("⚠️ song %d ('%s') senza wave", i+1, song.Title))
		}
		if song.Title == "" {
			warnings = append(warnings, fmt.Sprintf("⚠️ song %d senza titolo", i+1))
		}
	}

	return warnings
}
