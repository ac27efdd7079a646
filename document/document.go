package document

import (
	"path/filepath"
	"strings"

	"tja-library/parser"
)

// LangSet è il blocco titolo/sottotitolo multilingua del documento.
// Solo ja e cn vengono mai popolati: gli altri slot restano null espliciti.
type LangSet struct {
	Ja *string `json:"ja"`
	En *string `json:"en"`
	Cn *string `json:"cn"`
	Tw *string `json:"tw"`
	Ko *string `json:"ko"`
}

// CourseTable è la tabella fissa delle sette difficoltà canoniche.
// Una struct (non una map) per garantire l'ordine dei campi nel JSON
// e i null espliciti per le difficoltà assenti.
type CourseTable struct {
	Easy   *parser.CourseRecord `json:"easy"`
	Normal *parser.CourseRecord `json:"normal"`
	Hard   *parser.CourseRecord `json:"hard"`
	Oni    *parser.CourseRecord `json:"oni"`
	Ura    *parser.CourseRecord `json:"ura"`
	Dan    *parser.CourseRecord `json:"dan"`
	Tower  *parser.CourseRecord `json:"tower"`
}

// SongDocument è il documento piatto pronto per la persistenza,
// con lo schema fisso che il sistema a valle si aspetta
type SongDocument struct {
	ID           string      `json:"id"`
	Type         string      `json:"type"`
	Title        *string     `json:"title"`
	Subtitle     *string     `json:"subtitle"`
	TitleLang    LangSet     `json:"title_lang"`
	SubtitleLang LangSet     `json:"subtitle_lang"`
	Courses      CourseTable `json:"courses"`
	Enabled      bool        `json:"enabled"`
	CategoryID   *int        `json:"category_id"`
	MusicType    string      `json:"music_type"`
	Offset       float64     `json:"offset"`
	SkinID       *int        `json:"skin_id"`
	Preview      float64     `json:"preview"`
	Volume       float64     `json:"volume"`
	MakerID      *int        `json:"maker_id"`
	Hash         *string     `json:"hash"`
	Order        string      `json:"order"`
	CreatedNs    int64       `json:"created_ns"`
}

// Get restituisce lo slot della tabella per il nome canonico dato
func (ct *CourseTable) Get(name parser.CourseName) *parser.CourseRecord {
	switch name {
	case parser.CourseEasy:
		return ct.Easy
	case parser.CourseNormal:
		return ct.Normal
	case parser.CourseHard:
		return ct.Hard
	case parser.CourseOni:
		return ct.Oni
	case parser.CourseUra:
		return ct.Ura
	case parser.CourseDan:
		return ct.Dan
	case parser.CourseTower:
		return ct.Tower
	}
	return nil
}

// FromChart proietta un chart parsato nel documento di persistenza.
// id e created_ns arrivano dal chiamante; la proiezione è totale,
// nessun chart valido può farla fallire.
func FromChart(chart *parser.Chart, songID string, createdNs int64) *SongDocument {
	return &SongDocument{
		ID:       songID,
		Type:     "tja",
		Title:    chart.Title,
		Subtitle: chart.Subtitle,
		TitleLang: LangSet{
			Ja: localizedOr(chart.TitleJA, chart.Title),
			Cn: chart.TitleJA,
		},
		SubtitleLang: LangSet{
			Ja: localizedOr(chart.SubtitleJA, chart.Subtitle),
			Cn: chart.SubtitleJA,
		},
		Courses: CourseTable{
			Easy:   copyCourse(chart.Courses[parser.CourseEasy]),
			Normal: copyCourse(chart.Courses[parser.CourseNormal]),
			Hard:   copyCourse(chart.Courses[parser.CourseHard]),
			Oni:    copyCourse(chart.Courses[parser.CourseOni]),
			Ura:    copyCourse(chart.Courses[parser.CourseUra]),
			Dan:    copyCourse(chart.Courses[parser.CourseDan]),
			Tower:  copyCourse(chart.Courses[parser.CourseTower]),
		},
		Enabled:    false,
		CategoryID: nil,
		MusicType:  musicType(chart.Wave),
		// L'OFFSET del chart viene applicato dal player al momento del
		// parsing; l'offset del documento è una correzione aggiuntiva e
		// resta fisso a 0 per non applicare lo spostamento due volte
		Offset:    0,
		SkinID:    nil,
		Preview:   0,
		Volume:    1.0,
		MakerID:   nil,
		Hash:      nil,
		Order:     songID,
		CreatedNs: createdNs,
	}
}

// localizedOr preferisce la variante localizzata, altrimenti quella piana
func localizedOr(localized, plain *string) *string {
	if localized != nil {
		return localized
	}
	return plain
}

// copyCourse copia il record in superficie; nil resta nil (slot assente)
func copyCourse(record *parser.CourseRecord) *parser.CourseRecord {
	if record == nil {
		return nil
	}
	clone := *record
	return &clone
}

// musicType ricava l'estensione audio dal campo WAVE, "mp3" se non derivabile
func musicType(wave *string) string {
	if wave == nil {
		return "mp3"
	}
	base := filepath.Base(*wave)
	ext := filepath.Ext(base)
	// ext == base copre i dotfile tipo ".ogg", che non hanno estensione
	if ext == "" || ext == base {
		return "mp3"
	}
	token := strings.ToLower(strings.TrimPrefix(ext, "."))
	if token == "" {
		return "mp3"
	}
	return token
}
