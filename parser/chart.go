package parser

import "strings"

// CourseName identifica una difficoltà canonica del chart
type CourseName string

// Le sette difficoltà canoniche del formato TJA
const (
	CourseEasy   CourseName = "easy"
	CourseNormal CourseName = "normal"
	CourseHard   CourseName = "hard"
	CourseOni    CourseName = "oni"
	CourseUra    CourseName = "ura"
	CourseDan    CourseName = "dan"
	CourseTower  CourseName = "tower"
)

// CanonicalCourseOrder è l'ordine fisso delle difficoltà nel documento esportato
var CanonicalCourseOrder = []CourseName{
	CourseEasy,
	CourseNormal,
	CourseHard,
	CourseOni,
	CourseUra,
	CourseDan,
	CourseTower,
}

// courseAliases mappa i token grezzi di COURSE: sulle difficoltà canoniche.
// La mappa è molti-a-uno: EDIT e URA puntano entrambi a ura.
var courseAliases = map[string]CourseName{
	"EASY":   CourseEasy,
	"NORMAL": CourseNormal,
	"HARD":   CourseHard,
	"ONI":    CourseOni,
	"EDIT":   CourseUra,
	"URA":    CourseUra,
	"DAN":    CourseDan,
	"TOWER":  CourseTower,
}

// LookupCourse risolve un token COURSE (case-insensitive) nella difficoltà canonica
func LookupCourse(token string) (CourseName, bool) {
	name, ok := courseAliases[strings.ToUpper(strings.TrimSpace(token))]
	return name, ok
}

// Chart rappresenta i metadati estratti da un file .tja.
// I campi scalari puntatore sono nil quando la direttiva manca o il valore
// è vuoto/non parsabile. Dopo il parsing il Chart è di sola lettura.
type Chart struct {
	Title      *string                      `json:"title"`
	Subtitle   *string                      `json:"subtitle"`
	TitleJA    *string                      `json:"title_ja"`
	SubtitleJA *string                      `json:"subtitle_ja"`
	Wave       *string                      `json:"wave"`
	Offset     *float64                     `json:"offset"`
	Courses    map[CourseName]*CourseRecord `json:"courses"`
}

// CourseRecord rappresenta una singola difficoltà del chart
type CourseRecord struct {
	Stars  *int         `json:"stars"`
	Branch bool         `json:"branch"`
	Exams  []ExamRecord `json:"exams,omitempty"`
	Songs  []SongRecord `json:"songs,omitempty"`
}

// ExamRecord è una regola di superamento per i corsi Dan-i Dojo.
// Type: g=good, ok=ok, ng=bad, jp=drumroll_total, jb=bad_total, ecc.
// Scope: m=per misura, l=totale.
type ExamRecord struct {
	ID       int    `json:"id"`
	Type     string `json:"type"`
	RedPass  int    `json:"red_pass"`
	GoldPass int    `json:"gold_pass"`
	Scope    string `json:"scope"`
}

// SongRecord è una sotto-canzone referenziata da #NEXTSONG (corsi multi-canzone)
type SongRecord struct {
	Title     string  `json:"title"`
	Artist    string  `json:"artist"`
	Genre     string  `json:"genre"`
	Wave      string  `json:"wave"`
	Offset    float64 `json:"offset"`
	ScoreInit int     `json:"scoreInit"`
}
