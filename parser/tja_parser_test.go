package parser

import (
	"os"
	"path/filepath"
	"testing"
)

// ============================================
// Test 1.1: Header scalari
// ============================================

func TestHeaderScalari(t *testing.T) {
	text := `TITLE:Natsu Matsuri
TITLEJA:夏祭り
SUBTITLE:--Whiteberry
SUBTITLEJA:ホワイトベリー
WAVE:natsumatsuri.ogg
OFFSET:-1.466`

	chart, err := ParseChart(text)
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	if chart.Title == nil || *chart.Title != "Natsu Matsuri" {
		t.Errorf("Expected title 'Natsu Matsuri', got %v", chart.Title)
	}
	if chart.TitleJA == nil || *chart.TitleJA != "夏祭り" {
		t.Errorf("Expected title_ja '夏祭り', got %v", chart.TitleJA)
	}
	if chart.Subtitle == nil || *chart.Subtitle != "--Whiteberry" {
		t.Errorf("Expected subtitle '--Whiteberry', got %v", chart.Subtitle)
	}
	if chart.SubtitleJA == nil || *chart.SubtitleJA != "ホワイトベリー" {
		t.Errorf("Expected subtitle_ja 'ホワイトベリー', got %v", chart.SubtitleJA)
	}
	if chart.Wave == nil || *chart.Wave != "natsumatsuri.ogg" {
		t.Errorf("Expected wave 'natsumatsuri.ogg', got %v", chart.Wave)
	}
	if chart.Offset == nil || *chart.Offset != -1.466 {
		t.Errorf("Expected offset -1.466, got %v", chart.Offset)
	}

	t.Logf("✅ Header completo: title = '%s'", *chart.Title)
}

func TestScalariVuotiRestanoNil(t *testing.T) {
	text := `TITLE:
SUBTITLE:
WAVE:`

	chart, err := ParseChart(text)
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	if chart.Title != nil {
		t.Errorf("Expected nil title, got '%s'", *chart.Title)
	}
	if chart.Subtitle != nil {
		t.Errorf("Expected nil subtitle, got '%s'", *chart.Subtitle)
	}
	if chart.Wave != nil {
		t.Errorf("Expected nil wave, got '%s'", *chart.Wave)
	}

	t.Log("✅ Valori vuoti: i campi restano nil, mai stringa vuota")
}

func TestOffsetNonNumerico(t *testing.T) {
	chart, err := ParseChart("OFFSET:abc")
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	if chart.Offset != nil {
		t.Errorf("Expected nil offset, got %v", *chart.Offset)
	}

	t.Log("✅ OFFSET non numerico degrada a nil senza errore")
}

func TestChiaveSconosciutaIgnorata(t *testing.T) {
	text := `TITLE:Test
BPM:162
SONGVOL:100
DEMOSTART:48.2`

	chart, err := ParseChart(text)
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	if chart.Title == nil || *chart.Title != "Test" {
		t.Errorf("Expected title 'Test', got %v", chart.Title)
	}

	t.Log("✅ Chiavi non gestite (BPM, SONGVOL, ...) ignorate in silenzio")
}

// ============================================
// Test 1.2: Course e alias
// ============================================

func TestCourseAliases(t *testing.T) {
	tests := []struct {
		token    string
		expected CourseName
	}{
		{"Easy", CourseEasy},
		{"EASY", CourseEasy},
		{"easy", CourseEasy},
		{"Normal", CourseNormal},
		{"Hard", CourseHard},
		{"Oni", CourseOni},
		{"ONI", CourseOni},
		{"Edit", CourseUra},
		{"Ura", CourseUra},
		{"URA", CourseUra},
		{"Dan", CourseDan},
		{"Tower", CourseTower},
	}

	for _, test := range tests {
		chart, err := ParseChart("COURSE:" + test.token + "\nLEVEL:5")
		if err != nil {
			t.Errorf("[%s] Error: %v", test.token, err)
			continue
		}

		record, ok := chart.Courses[test.expected]
		if !ok {
			t.Errorf("[%s] Expected course %q, got none", test.token, test.expected)
			continue
		}
		if record.Stars == nil || *record.Stars != 5 {
			t.Errorf("[%s] Expected stars 5, got %v", test.token, record.Stars)
		}
	}

	t.Log("✅ Tutti gli alias di difficoltà risolvono al nome canonico")
}

func TestCourseSconosciuto(t *testing.T) {
	text := `COURSE:Taberu
LEVEL:9
EXAM1:g,85,95
COURSE:Oni
LEVEL:8`

	chart, err := ParseChart(text)
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	if len(chart.Courses) != 1 {
		t.Errorf("Expected 1 course, got %d", len(chart.Courses))
	}

	oni := chart.Courses[CourseOni]
	if oni == nil {
		t.Fatal("Expected oni course")
	}
	if oni.Stars == nil || *oni.Stars != 8 {
		t.Errorf("Expected stars 8, got %v", oni.Stars)
	}
	if len(oni.Exams) != 0 {
		t.Errorf("Expected no exams on oni, got %d", len(oni.Exams))
	}

	t.Log("✅ Token sconosciuto: le direttive vengono scartate fino al COURSE valido")
}

func TestEditEUraCondividonoLaVoce(t *testing.T) {
	text := `COURSE:Edit
LEVEL:9
COURSE:Ura
LEVEL:10`

	chart, err := ParseChart(text)
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	if len(chart.Courses) != 1 {
		t.Fatalf("Expected 1 course, got %d", len(chart.Courses))
	}

	ura := chart.Courses[CourseUra]
	if ura == nil {
		t.Fatal("Expected ura course")
	}
	if ura.Stars == nil || *ura.Stars != 10 {
		t.Errorf("Expected stars 10 (ultimo LEVEL vince), got %v", ura.Stars)
	}

	t.Log("✅ Edit e Ura puntano alla stessa difficoltà 'ura'")
}

// ============================================
// Test 1.3: LEVEL
// ============================================

func TestLevelPrimoToken(t *testing.T) {
	chart, err := ParseChart("COURSE:Oni\nLEVEL:8 (★x8)")
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	oni := chart.Courses[CourseOni]
	if oni.Stars == nil || *oni.Stars != 8 {
		t.Errorf("Expected stars 8, got %v", oni.Stars)
	}

	t.Log("✅ LEVEL legge solo il primo token")
}

func TestLevelNonNumerico(t *testing.T) {
	chart, err := ParseChart("COURSE:Oni\nLEVEL:otto")
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	if chart.Courses[CourseOni].Stars != nil {
		t.Errorf("Expected nil stars, got %v", *chart.Courses[CourseOni].Stars)
	}

	t.Log("✅ LEVEL non numerico degrada a stars nil")
}

func TestLevelSovrascriveSempre(t *testing.T) {
	chart, err := ParseChart("COURSE:Oni\nLEVEL:8\nLEVEL:boh")
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	// L'ultimo LEVEL vince anche quando invalida il valore precedente
	if chart.Courses[CourseOni].Stars != nil {
		t.Errorf("Expected nil stars after invalid LEVEL, got %v", *chart.Courses[CourseOni].Stars)
	}

	t.Log("✅ Un LEVEL successivo sovrascrive sempre, anche se invalido")
}

func TestLevelNegativo(t *testing.T) {
	chart, err := ParseChart("COURSE:Oni\nLEVEL:-3")
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	oni := chart.Courses[CourseOni]
	if oni.Stars == nil || *oni.Stars != -3 {
		t.Errorf("Expected stars -3, got %v", oni.Stars)
	}

	t.Log("✅ LEVEL negativo accettato così com'è (nessun clamp)")
}

func TestLevelSenzaCourse(t *testing.T) {
	chart, err := ParseChart("LEVEL:8\nTITLE:Test")
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	if len(chart.Courses) != 0 {
		t.Errorf("Expected no courses, got %d", len(chart.Courses))
	}

	t.Log("✅ LEVEL prima di COURSE viene ignorato")
}

// ============================================
// Test 1.4: EXAM (Dan-i Dojo)
// ============================================

func TestExamCompleto(t *testing.T) {
	chart, err := ParseChart("COURSE:Dan\nEXAM1:g,85,95,m")
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	dan := chart.Courses[CourseDan]
	if len(dan.Exams) != 1 {
		t.Fatalf("Expected 1 exam, got %d", len(dan.Exams))
	}

	exam := dan.Exams[0]
	if exam.ID != 1 {
		t.Errorf("Expected id 1, got %d", exam.ID)
	}
	if exam.Type != "g" {
		t.Errorf("Expected type 'g', got '%s'", exam.Type)
	}
	if exam.RedPass != 85 {
		t.Errorf("Expected red_pass 85, got %d", exam.RedPass)
	}
	if exam.GoldPass != 95 {
		t.Errorf("Expected gold_pass 95, got %d", exam.GoldPass)
	}
	if exam.Scope != "m" {
		t.Errorf("Expected scope 'm', got '%s'", exam.Scope)
	}

	t.Logf("✅ EXAM completo: type=%s red=%d gold=%d scope=%s", exam.Type, exam.RedPass, exam.GoldPass, exam.Scope)
}

func TestExamScopeDefault(t *testing.T) {
	chart, err := ParseChart("COURSE:Dan\nEXAM1:g,85,95")
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	exam := chart.Courses[CourseDan].Exams[0]
	if exam.Scope != "l" {
		t.Errorf("Expected scope 'l', got '%s'", exam.Scope)
	}

	t.Log("✅ Scope assente: default 'l'")
}

func TestExamScopeVuotoRestaVuoto(t *testing.T) {
	// Quarto campo presente ma vuoto: resta "", non torna al default
	chart, err := ParseChart("COURSE:Dan\nEXAM2:g,80,90,")
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	exam := chart.Courses[CourseDan].Exams[0]
	if exam.Scope != "" {
		t.Errorf("Expected empty scope, got '%s'", exam.Scope)
	}
	if exam.ID != 2 {
		t.Errorf("Expected id 2, got %d", exam.ID)
	}

	t.Log("✅ Scope presente ma vuoto resta stringa vuota")
}

func TestExamSoglieNonNumeriche(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"red invalido", "EXAM1:g,abc,95"},
		{"gold invalido", "EXAM1:g,85,xyz"},
		{"entrambi invalidi", "EXAM1:g,abc,xyz"},
	}

	for _, test := range tests {
		chart, err := ParseChart("COURSE:Dan\n" + test.line)
		if err != nil {
			t.Errorf("[%s] Error: %v", test.name, err)
			continue
		}

		exams := chart.Courses[CourseDan].Exams
		if len(exams) != 1 {
			t.Errorf("[%s] Expected 1 exam, got %d", test.name, len(exams))
			continue
		}
		if exams[0].RedPass != 0 || exams[0].GoldPass != 0 {
			t.Errorf("[%s] Expected 0/0, got %d/%d", test.name, exams[0].RedPass, exams[0].GoldPass)
		}
		if exams[0].Type != "g" {
			t.Errorf("[%s] Expected type 'g', got '%s'", test.name, exams[0].Type)
		}
	}

	t.Log("✅ Soglia non numerica: la coppia intera ripiega su 0/0, l'exam resta")
}

func TestExamSogliaVuota(t *testing.T) {
	chart, err := ParseChart("COURSE:Dan\nEXAM1:g,,95")
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	exam := chart.Courses[CourseDan].Exams[0]
	if exam.RedPass != 0 {
		t.Errorf("Expected red_pass 0, got %d", exam.RedPass)
	}
	if exam.GoldPass != 95 {
		t.Errorf("Expected gold_pass 95, got %d", exam.GoldPass)
	}

	t.Log("✅ Soglia vuota vale 0 senza invalidare l'altra")
}

func TestExamTroppoCorto(t *testing.T) {
	chart, err := ParseChart("COURSE:Dan\nEXAM1:g,85")
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	if len(chart.Courses[CourseDan].Exams) != 0 {
		t.Errorf("Expected no exams, got %d", len(chart.Courses[CourseDan].Exams))
	}

	t.Log("✅ EXAM con meno di 3 campi ignorato")
}

func TestExamTypeEScopeMinuscoli(t *testing.T) {
	chart, err := ParseChart("COURSE:Dan\nEXAM3:JP,100,200,M")
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	exam := chart.Courses[CourseDan].Exams[0]
	if exam.Type != "jp" {
		t.Errorf("Expected type 'jp', got '%s'", exam.Type)
	}
	if exam.Scope != "m" {
		t.Errorf("Expected scope 'm', got '%s'", exam.Scope)
	}
	if exam.ID != 3 {
		t.Errorf("Expected id 3, got %d", exam.ID)
	}

	t.Log("✅ Type e scope normalizzati in minuscolo")
}

func TestExamSenzaCourse(t *testing.T) {
	chart, err := ParseChart("EXAM1:g,85,95\nCOURSE:Dan")
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	if len(chart.Courses[CourseDan].Exams) != 0 {
		t.Errorf("Expected no exams, got %d", len(chart.Courses[CourseDan].Exams))
	}

	t.Log("✅ EXAM prima di COURSE viene ignorato")
}

// ============================================
// Test 1.5: #NEXTSONG
// ============================================

func TestNextSongCompleto(t *testing.T) {
	chart, err := ParseChart("COURSE:Dan\n#NEXTSONG 夏祭り,Whiteberry,J-POP,natsu.ogg,-1.46,980")
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	songs := chart.Courses[CourseDan].Songs
	if len(songs) != 1 {
		t.Fatalf("Expected 1 song, got %d", len(songs))
	}

	song := songs[0]
	if song.Title != "夏祭り" {
		t.Errorf("Expected title '夏祭り', got '%s'", song.Title)
	}
	if song.Artist != "Whiteberry" {
		t.Errorf("Expected artist 'Whiteberry', got '%s'", song.Artist)
	}
	if song.Genre != "J-POP" {
		t.Errorf("Expected genre 'J-POP', got '%s'", song.Genre)
	}
	if song.Wave != "natsu.ogg" {
		t.Errorf("Expected wave 'natsu.ogg', got '%s'", song.Wave)
	}
	if song.Offset != -1.46 {
		t.Errorf("Expected offset -1.46, got %v", song.Offset)
	}
	if song.ScoreInit != 980 {
		t.Errorf("Expected scoreInit 980, got %d", song.ScoreInit)
	}

	t.Logf("✅ #NEXTSONG completo: '%s' di %s", song.Title, song.Artist)
}

func TestNextSongQuattroCampi(t *testing.T) {
	chart, err := ParseChart("COURSE:Dan\n#NEXTSONG A,B,C,d.ogg")
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	song := chart.Courses[CourseDan].Songs[0]
	if song.Offset != 0 {
		t.Errorf("Expected offset 0, got %v", song.Offset)
	}
	if song.ScoreInit != 0 {
		t.Errorf("Expected scoreInit 0, got %d", song.ScoreInit)
	}

	t.Log("✅ Campi numerici assenti valgono 0")
}

func TestNextSongCampiVuoti(t *testing.T) {
	chart, err := ParseChart("COURSE:Dan\n#NEXTSONG A,B,C,d.ogg,,")
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	song := chart.Courses[CourseDan].Songs[0]
	if song.Offset != 0 || song.ScoreInit != 0 {
		t.Errorf("Expected 0/0, got %v/%d", song.Offset, song.ScoreInit)
	}

	t.Log("✅ Campi numerici vuoti valgono 0")
}

func TestNextSongInsufficiente(t *testing.T) {
	chart, err := ParseChart("COURSE:Dan\n#NEXTSONG A,B,C")
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	if len(chart.Courses[CourseDan].Songs) != 0 {
		t.Errorf("Expected no songs, got %d", len(chart.Courses[CourseDan].Songs))
	}

	t.Log("✅ #NEXTSONG con meno di 4 campi ignorato senza errore")
}

func TestNextSongOffsetNonNumericoFallisce(t *testing.T) {
	chart, err := ParseChart("COURSE:Dan\n#NEXTSONG A,B,C,d.ogg,boh,980")
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if chart != nil {
		t.Error("Expected nil chart on error")
	}

	t.Logf("✅ Offset non numerico fa fallire il parse: %v", err)
}

func TestNextSongScoreInitNonNumericoFallisce(t *testing.T) {
	_, err := ParseChart("COURSE:Dan\n#NEXTSONG A,B,C,d.ogg,-1.4,tanti")
	if err == nil {
		t.Fatal("Expected error, got nil")
	}

	t.Logf("✅ ScoreInit non numerico fa fallire il parse: %v", err)
}

func TestNextSongMinuscolo(t *testing.T) {
	chart, err := ParseChart("COURSE:Dan\n#nextsong A,B,C,d.ogg")
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	if len(chart.Courses[CourseDan].Songs) != 1 {
		t.Errorf("Expected 1 song, got %d", len(chart.Courses[CourseDan].Songs))
	}

	t.Log("✅ La direttiva è case-insensitive")
}

// ============================================
// Test 1.6: Commit dei buffer
// ============================================

func TestCommitSuCambioCourse(t *testing.T) {
	text := `COURSE:Dan
EXAM1:g,85,95
#NEXTSONG A,B,C,a.ogg
#NEXTSONG D,E,F,d.ogg
COURSE:Oni
LEVEL:8`

	chart, err := ParseChart(text)
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	dan := chart.Courses[CourseDan]
	if len(dan.Exams) != 1 {
		t.Errorf("Expected 1 exam on dan, got %d", len(dan.Exams))
	}
	if len(dan.Songs) != 2 {
		t.Errorf("Expected 2 songs on dan, got %d", len(dan.Songs))
	}

	oni := chart.Courses[CourseOni]
	if len(oni.Exams) != 0 || len(oni.Songs) != 0 {
		t.Error("Expected oni without exams/songs")
	}

	t.Log("✅ Il cambio di COURSE committa i buffer nella difficoltà uscente")
}

func TestCommitAFineInput(t *testing.T) {
	text := `COURSE:Dan
#NEXTSONG A,B,C,a.ogg`

	chart, err := ParseChart(text)
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	if len(chart.Courses[CourseDan].Songs) != 1 {
		t.Errorf("Expected 1 song, got %d", len(chart.Courses[CourseDan].Songs))
	}

	t.Log("✅ L'ultima difficoltà viene committata a fine input")
}

func TestRidichiarazioneMantieneStarsEBranch(t *testing.T) {
	text := `COURSE:Oni
LEVEL:8
#BRANCHSTART p,50,75
COURSE:Easy
LEVEL:3
COURSE:Oni`

	chart, err := ParseChart(text)
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	oni := chart.Courses[CourseOni]
	if oni.Stars == nil || *oni.Stars != 8 {
		t.Errorf("Expected stars 8 preserved, got %v", oni.Stars)
	}
	if !oni.Branch {
		t.Error("Expected branch preserved")
	}

	t.Log("✅ Ridichiarare un COURSE non azzera stars né branch")
}

func TestBufferVuotoNonSovrascrive(t *testing.T) {
	text := `COURSE:Dan
EXAM1:g,85,95
#NEXTSONG A,B,C,a.ogg
COURSE:Oni
LEVEL:8
COURSE:Dan
LEVEL:1`

	chart, err := ParseChart(text)
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	dan := chart.Courses[CourseDan]
	if len(dan.Exams) != 1 {
		t.Errorf("Expected exams preserved (1), got %d", len(dan.Exams))
	}
	if len(dan.Songs) != 1 {
		t.Errorf("Expected songs preserved (1), got %d", len(dan.Songs))
	}

	t.Log("✅ Un secondo blocco senza exam/song non tocca le liste committate")
}

func TestBufferPienoSostituisce(t *testing.T) {
	text := `COURSE:Dan
#NEXTSONG A,B,C,a.ogg
#NEXTSONG D,E,F,d.ogg
COURSE:Oni
COURSE:Dan
#NEXTSONG X,Y,Z,x.ogg`

	chart, err := ParseChart(text)
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	songs := chart.Courses[CourseDan].Songs
	if len(songs) != 1 {
		t.Fatalf("Expected replacement with 1 song, got %d", len(songs))
	}
	if songs[0].Title != "X" {
		t.Errorf("Expected title 'X', got '%s'", songs[0].Title)
	}

	t.Log("✅ Un secondo blocco con buffer pieno SOSTITUISCE la lista")
}

func TestBufferSenzaCoursePersi(t *testing.T) {
	text := `#NEXTSONG A,B,C,a.ogg
COURSE:Dan
LEVEL:1`

	chart, err := ParseChart(text)
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	if len(chart.Courses[CourseDan].Songs) != 0 {
		t.Errorf("Expected no songs, got %d", len(chart.Courses[CourseDan].Songs))
	}

	t.Log("✅ Song bufferizzate senza difficoltà attiva vanno perse")
}

// ============================================
// Test 1.7: BRANCHSTART
// ============================================

func TestBranchStart(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected bool
	}{
		{"con cancelletto", "#BRANCHSTART p,50,75", true},
		{"senza cancelletto", "BRANCHSTART p,50,75", true},
		{"minuscolo non conta", "#branchstart p,50,75", false},
		{"misto non conta", "#BranchStart p,50,75", false},
	}

	for _, test := range tests {
		chart, err := ParseChart("COURSE:Oni\n" + test.line)
		if err != nil {
			t.Errorf("[%s] Error: %v", test.name, err)
			continue
		}

		if chart.Courses[CourseOni].Branch != test.expected {
			t.Errorf("[%s] Expected branch=%v, got %v", test.name, test.expected, chart.Courses[CourseOni].Branch)
		}
	}

	t.Log("✅ Il marcatore di branch è case-sensitive, col cancelletto opzionale")
}

func TestBranchSenzaCourse(t *testing.T) {
	chart, err := ParseChart("#BRANCHSTART p,50,75\nCOURSE:Oni")
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	if chart.Courses[CourseOni].Branch {
		t.Error("Expected branch=false")
	}

	t.Log("✅ Branch prima di COURSE viene ignorato")
}

// ============================================
// Test 1.8: Sezione note e righe spurie
// ============================================

func TestSezioneNoteInnocua(t *testing.T) {
	text := `TITLE:Test
COURSE:Oni
LEVEL:8
#START
10201020,
11022011,
#END`

	chart, err := ParseChart(text)
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	oni := chart.Courses[CourseOni]
	if oni.Stars == nil || *oni.Stars != 8 {
		t.Errorf("Expected stars 8, got %v", oni.Stars)
	}
	if oni.Branch {
		t.Error("Expected branch=false")
	}

	t.Log("✅ Le righe note tra #START e #END non sporcano i metadati")
}

func TestRigheVuoteEDirettiveIgnorate(t *testing.T) {
	text := "\n\nTITLE:Test\n\n#MEASURE 4/4\n#SCROLL 1.5\n\n"

	chart, err := ParseChart(text)
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	if chart.Title == nil || *chart.Title != "Test" {
		t.Errorf("Expected title 'Test', got %v", chart.Title)
	}

	t.Log("✅ Righe vuote e direttive sconosciute non hanno effetto")
}

func TestCRLF(t *testing.T) {
	text := "TITLE:Test\r\nCOURSE:Oni\r\nLEVEL:8\r\n"

	chart, err := ParseChart(text)
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	if chart.Title == nil || *chart.Title != "Test" {
		t.Errorf("Expected title 'Test' senza \\r, got %q", *chart.Title)
	}
	oni := chart.Courses[CourseOni]
	if oni == nil || oni.Stars == nil || *oni.Stars != 8 {
		t.Error("Expected oni with stars 8")
	}

	t.Log("✅ Terminatori CRLF gestiti dal trim per riga")
}

// ============================================
// Test 1.9: Lettura da file
// ============================================

func TestParseFileConBOM(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.tja")

	content := "\uFEFFTITLE:Con BOM\nCOURSE:Oni\nLEVEL:7"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Setup error: %v", err)
	}

	parser := NewTjaParser(path)
	chart, err := parser.Parse()
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	if chart.Title == nil || *chart.Title != "Con BOM" {
		t.Errorf("Expected title 'Con BOM', got %v", chart.Title)
	}

	t.Log("✅ Il BOM UTF-8 viene rimosso in lettura")
}

func TestParseFileInesistente(t *testing.T) {
	parser := NewTjaParser("/percorso/che/non/esiste.tja")
	_, err := parser.Parse()
	if err == nil {
		t.Fatal("Expected error, got nil")
	}

	t.Logf("✅ File mancante: %v", err)
}

// ============================================
// Test 1.10: Chart completo (integrazione)
// ============================================

func TestChartCompleto(t *testing.T) {
	text := `TITLE:Souryuu no Ran
TITLEJA:双竜ノ乱
SUBTITLE:--
WAVE:souryuu.ogg
OFFSET:-2.07
BPM:190

COURSE:Easy
LEVEL:4
COURSE:Normal
LEVEL:6
COURSE:Hard
LEVEL:7
COURSE:Oni
LEVEL:9
#START
1020,
#END
COURSE:Edit
LEVEL:10
#BRANCHSTART p,60,80

COURSE:Dan
EXAM1:g,85,95
EXAM2:jp,40,20,m
#NEXTSONG 双竜ノ乱,unknown,NAMCO,souryuu.ogg,-2.07,1200
#NEXTSONG もう一曲,artist,VARIETY,altro.ogg`

	chart, err := ParseChart(text)
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	if len(chart.Courses) != 6 {
		t.Errorf("Expected 6 courses, got %d", len(chart.Courses))
	}

	expected := map[CourseName]int{
		CourseEasy:   4,
		CourseNormal: 6,
		CourseHard:   7,
		CourseOni:    9,
		CourseUra:    10,
	}
	for name, stars := range expected {
		record := chart.Courses[name]
		if record == nil {
			t.Errorf("Missing course %q", name)
			continue
		}
		if record.Stars == nil || *record.Stars != stars {
			t.Errorf("[%s] Expected stars %d, got %v", name, stars, record.Stars)
		}
	}

	if !chart.Courses[CourseUra].Branch {
		t.Error("Expected branch on ura")
	}

	dan := chart.Courses[CourseDan]
	if dan == nil {
		t.Fatal("Missing dan course")
	}
	if dan.Stars != nil {
		t.Errorf("Expected nil stars on dan, got %v", *dan.Stars)
	}
	if len(dan.Exams) != 2 {
		t.Fatalf("Expected 2 exams, got %d", len(dan.Exams))
	}
	if dan.Exams[1].Scope != "m" {
		t.Errorf("Expected scope 'm' on exam 2, got '%s'", dan.Exams[1].Scope)
	}
	if len(dan.Songs) != 2 {
		t.Fatalf("Expected 2 songs, got %d", len(dan.Songs))
	}
	if dan.Songs[0].ScoreInit != 1200 {
		t.Errorf("Expected scoreInit 1200, got %d", dan.Songs[0].ScoreInit)
	}
	if dan.Songs[1].Offset != 0 {
		t.Errorf("Expected offset 0 on song 2, got %v", dan.Songs[1].Offset)
	}

	t.Logf("✅ Chart completo: %d difficoltà, dan con %d exam e %d song",
		len(chart.Courses), len(dan.Exams), len(dan.Songs))
}
