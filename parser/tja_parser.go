package parser

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// TjaParser gestisce il parsing dei file .tja
type TjaParser struct {
	filepath string
}

// NewTjaParser crea un nuovo parser
func NewTjaParser(filepath string) *TjaParser {
	return &TjaParser{filepath: filepath}
}

// Parse legge e parsa il file .tja
func (tp *TjaParser) Parse() (*Chart, error) {
	data, err := os.ReadFile(tp.filepath)
	if err != nil {
		return nil, fmt.Errorf("errore apertura file: %w", err)
	}
	// Il BOM UTF-8 appartiene al file, non alla grammatica: lo togliamo qui
	text := strings.TrimPrefix(string(data), "\uFEFF")
	return ParseChart(text)
}

// accumulator è lo stato della scansione tra una riga e l'altra.
// Exam e song restano nei buffer finché il prossimo COURSE: (o la fine
// dell'input) non li committa nella difficoltà attiva: i due punti di
// commit restano così espliciti e testabili.
type accumulator struct {
	course        CourseName // difficoltà attiva ("" = nessuna)
	pendingExams  []ExamRecord
	pendingSongs  []SongRecord
	inSongSection bool // dentro #START...#END, stato solo informativo
}

// commit copia i buffer non vuoti nella difficoltà attiva.
// Un buffer non vuoto SOSTITUISCE la lista committata in precedenza,
// un buffer vuoto la lascia com'è.
func (acc *accumulator) commit(courses map[CourseName]*CourseRecord) {
	if acc.course == "" {
		return
	}
	record, ok := courses[acc.course]
	if !ok {
		return
	}
	if len(acc.pendingExams) > 0 {
		record.Exams = append([]ExamRecord(nil), acc.pendingExams...)
	}
	if len(acc.pendingSongs) > 0 {
		record.Songs = append([]SongRecord(nil), acc.pendingSongs...)
	}
}

// reset svuota i buffer per il nuovo blocco di difficoltà
func (acc *accumulator) reset() {
	acc.pendingExams = nil
	acc.pendingSongs = nil
}

// ParseChart esegue una singola passata sul testo e costruisce il Chart.
// Quasi tutti i valori malformati degradano in silenzio (campo nil o riga
// ignorata); l'unica eccezione è #NEXTSONG, dove offset o scoreInit
// presenti ma non numerici fanno fallire l'intero parse. L'asimmetria con
// la politica lasca di EXAM è voluta: il sistema che consuma i documenti
// si aspetta esattamente questo comportamento.
func ParseChart(text string) (*Chart, error) {
	chart := &Chart{Courses: make(map[CourseName]*CourseRecord)}
	acc := &accumulator{}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		upper := strings.ToUpper(line)

		// Direttiva #NEXTSONG (Dan-i Dojo): title,artist,genre,wave,offset,scoreInit
		if strings.HasPrefix(upper, "#NEXTSONG") {
			song, ok, err := parseNextSong(line)
			if err != nil {
				return nil, err
			}
			if ok {
				acc.pendingSongs = append(acc.pendingSongs, song)
			}
			continue
		}

		// Marcatori #START / #END della sezione note
		if strings.HasPrefix(upper, "#START") {
			acc.inSongSection = true
			continue
		}
		if strings.HasPrefix(upper, "#END") {
			acc.inSongSection = false
			continue
		}

		if rawKey, rawVal, found := strings.Cut(line, ":"); found {
			parseKeyValue(chart, acc, rawKey, rawVal)
			continue
		}

		// Tra le righe senza ":" conta solo il marcatore di branch, che
		// scrive subito nella difficoltà attiva (non passa dai buffer)
		if acc.course != "" &&
			(strings.HasPrefix(line, "BRANCHSTART") || strings.HasPrefix(line, "#BRANCHSTART")) {
			chart.Courses[acc.course].Branch = true
		}
	}

	// Commit finale: l'ultima difficoltà non ha un COURSE: successivo
	acc.commit(chart.Courses)

	return chart, nil
}

// parseKeyValue gestisce le righe KEY:VALUE (split sul primo ":")
func parseKeyValue(chart *Chart, acc *accumulator, rawKey, rawVal string) {
	key := strings.ToUpper(strings.TrimSpace(rawKey))
	val := strings.TrimSpace(rawVal)

	switch key {
	case "TITLE":
		chart.Title = optional(val)
	case "TITLEJA":
		chart.TitleJA = optional(val)
	case "SUBTITLE":
		chart.Subtitle = optional(val)
	case "SUBTITLEJA":
		chart.SubtitleJA = optional(val)
	case "WAVE":
		chart.Wave = optional(val)
	case "OFFSET":
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			chart.Offset = &f
		} else {
			chart.Offset = nil
		}
	case "COURSE":
		// Flush-and-switch: i buffer del blocco uscente vengono committati
		// prima di cambiare difficoltà
		acc.commit(chart.Courses)
		if name, ok := LookupCourse(val); ok {
			acc.course = name
			if _, seen := chart.Courses[name]; !seen {
				chart.Courses[name] = &CourseRecord{}
			}
		} else {
			// Token sconosciuto: le direttive di corso successive vengono
			// scartate fino al prossimo COURSE: riconosciuto
			acc.course = ""
		}
		// I buffer ripartono vuoti anche se il token non è riconosciuto
		acc.reset()
	case "LEVEL":
		if acc.course == "" {
			return
		}
		// Solo il primo token: "LEVEL:8 (★)" vale 8
		record := chart.Courses[acc.course]
		record.Stars = nil
		if fields := strings.Fields(val); len(fields) > 0 {
			if stars, err := strconv.Atoi(fields[0]); err == nil {
				record.Stars = &stars
			}
		}
	case "EXAM1", "EXAM2", "EXAM3", "EXAM4":
		if acc.course == "" {
			return
		}
		if exam, ok := parseExam(key, val); ok {
			acc.pendingExams = append(acc.pendingExams, exam)
		}
	default:
		// Chiave non riconosciuta: sintassi valida, nessun effetto
	}
}

// parseNextSong interpreta una riga #NEXTSONG. Servono almeno 4 campi
// (title,artist,genre,wave) o la riga viene ignorata; offset e scoreInit
// assenti o vuoti valgono 0, ma se presenti e non numerici il parse
// fallisce del tutto (politica stretta, vedi ParseChart).
func parseNextSong(line string) (SongRecord, bool, error) {
	rest := strings.TrimSpace(line[len("#NEXTSONG"):])
	parts := strings.Split(rest, ",")
	if len(parts) < 4 {
		return SongRecord{}, false, nil
	}

	song := SongRecord{
		Title:  strings.TrimSpace(parts[0]),
		Artist: strings.TrimSpace(parts[1]),
		Genre:  strings.TrimSpace(parts[2]),
		Wave:   strings.TrimSpace(parts[3]),
	}
	if len(parts) > 4 {
		if raw := strings.TrimSpace(parts[4]); raw != "" {
			offset, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return SongRecord{}, false, fmt.Errorf("offset non numerico in #NEXTSONG: %q", raw)
			}
			song.Offset = offset
		}
	}
	if len(parts) > 5 {
		if raw := strings.TrimSpace(parts[5]); raw != "" {
			scoreInit, err := strconv.Atoi(raw)
			if err != nil {
				return SongRecord{}, false, fmt.Errorf("scoreInit non numerico in #NEXTSONG: %q", raw)
			}
			song.ScoreInit = scoreInit
		}
	}
	return song, true, nil
}

// parseExam interpreta il valore di EXAM1..EXAM4: type,red_pass,gold_pass[,scope].
// Con meno di 3 campi la riga viene ignorata. L'id è l'ultima cifra della chiave.
func parseExam(key, val string) (ExamRecord, bool) {
	parts := strings.Split(val, ",")
	if len(parts) < 3 {
		return ExamRecord{}, false
	}

	exam := ExamRecord{
		ID:    int(key[len(key)-1] - '0'),
		Type:  strings.ToLower(strings.TrimSpace(parts[0])),
		Scope: "l",
	}
	if len(parts) > 3 {
		// Un quarto campo presente ma vuoto resta "", non torna a "l"
		exam.Scope = strings.ToLower(strings.TrimSpace(parts[3]))
	}

	// Le soglie vanno in coppia: se una delle due non è numerica entrambe
	// ripiegano su 0 (politica lasca, diversa da quella di #NEXTSONG)
	if red, gold, ok := parsePassPair(strings.TrimSpace(parts[1]), strings.TrimSpace(parts[2])); ok {
		exam.RedPass = red
		exam.GoldPass = gold
	}
	return exam, true
}

// parsePassPair converte le due soglie di un EXAM; campo vuoto = 0,
// campo non numerico invalida la coppia intera
func parsePassPair(redRaw, goldRaw string) (red int, gold int, ok bool) {
	if redRaw != "" {
		n, err := strconv.Atoi(redRaw)
		if err != nil {
			return 0, 0, false
		}
		red = n
	}
	if goldRaw != "" {
		n, err := strconv.Atoi(goldRaw)
		if err != nil {
			return 0, 0, false
		}
		gold = n
	}
	return red, gold, true
}

// optional trasforma un valore trimmato nel puntatore corrispondente
// (stringa vuota = campo non impostato)
func optional(val string) *string {
	if val == "" {
		return nil
	}
	return &val
}
