package library

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"tja-library/document"
	"tja-library/formats"
	"tja-library/linter"
	"tja-library/parser"
	"tja-library/preview"
)

// Entry è una voce indicizzata della libreria: il documento proiettato
// più i percorsi risolti sul filesystem
type Entry struct {
	Document    *document.SongDocument `json:"document"`
	ChartPath   string                 `json:"chart_path"`
	AudioPath   string                 `json:"audio_path,omitempty"`
	PreviewPath string                 `json:"preview_path,omitempty"`
	Format      string                 `json:"format"`
	Warnings    int                    `json:"warnings"`
}

// ScanFailure registra un chart che non è stato possibile indicizzare
type ScanFailure struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// ScanSummary riassume l'esito di una scansione completa
type ScanSummary struct {
	Total      int           `json:"total"`
	Indexed    int           `json:"indexed"`
	Failed     int           `json:"failed"`
	Failures   []ScanFailure `json:"failures,omitempty"`
	DurationMs int64         `json:"duration_ms"`
}

// LibraryStats espone i contatori aggregati della libreria
type LibraryStats struct {
	TotalSongs    int            `json:"total_songs"`
	ByCourse      map[string]int `json:"by_course"`
	TotalWarnings int            `json:"total_warnings"`
	Failures      int            `json:"failures"`
	LastScan      time.Time      `json:"last_scan"`
	SongsDir      string         `json:"songs_dir"`
}

// Library indicizza i chart presenti in una directory e li proietta in
// documenti pronti per l'API e per il manifest su disco. Tutte le letture
// e le scritture dell'indice sono sincronizzate, quindi una Library può
// essere condivisa tra server HTTP e watcher.
type Library struct {
	root         string
	manifestPath string
	workers      int

	mu       sync.RWMutex
	entries  map[string]*Entry
	order    []string
	failures []ScanFailure
	lastScan time.Time

	clipper      *preview.FFmpegClipper
	previewStart float64
	previewLen   float64
}

// NewLibrary crea una libreria per la directory indicata. Se manifestPath è
// vuoto il manifest finisce in <songsDir>/library.json, se workers non è
// positivo si usa il numero di CPU disponibili.
func NewLibrary(songsDir string, manifestPath string, workers int) *Library {
	if abs, err := filepath.Abs(songsDir); err == nil {
		songsDir = abs
	}
	if manifestPath == "" {
		manifestPath = filepath.Join(songsDir, "library.json")
	} else if abs, err := filepath.Abs(manifestPath); err == nil {
		manifestPath = abs
	}
	if workers < 1 {
		workers = runtime.NumCPU()
	}

	return &Library{
		root:         songsDir,
		manifestPath: manifestPath,
		workers:      workers,
		entries:      make(map[string]*Entry),
	}
}

// EnablePreviews attiva la generazione delle clip di anteprima durante
// l'indicizzazione
func (lib *Library) EnablePreviews(clipper *preview.FFmpegClipper, startSeconds float64, durationSeconds float64) {
	lib.clipper = clipper
	lib.previewStart = startSeconds
	lib.previewLen = durationSeconds
}

// Root restituisce la directory dei brani
func (lib *Library) Root() string {
	return lib.root
}

// ManifestPath restituisce il percorso del manifest su disco
func (lib *Library) ManifestPath() string {
	return lib.manifestPath
}

// SongIDFor deriva l'identificatore di un chart dal suo percorso relativo
// alla radice indicata, senza estensione. L'encoding è URL-safe così da
// poter viaggiare in un path HTTP senza escaping.
func SongIDFor(root string, chartPath string) (string, error) {
	rel, err := filepath.Rel(root, chartPath)
	if err != nil {
		return "", fmt.Errorf("percorso fuori dalla libreria: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("percorso fuori dalla libreria: %s", chartPath)
	}

	stem := strings.TrimSuffix(rel, filepath.Ext(rel))
	return base64.RawURLEncoding.EncodeToString([]byte(filepath.ToSlash(stem))), nil
}

// SongID deriva l'identificatore di un chart rispetto alla radice della libreria
func (lib *Library) SongID(chartPath string) (string, error) {
	return SongIDFor(lib.root, chartPath)
}

// Scan ricostruisce l'indice da zero leggendo tutti i chart sotto la radice.
// I file che falliscono parsing o validazione vengono registrati tra i
// fallimenti e saltati: una scansione non si ferma mai a metà.
func (lib *Library) Scan() (*ScanSummary, error) {
	start := time.Now()

	var chartPaths []string
	err := filepath.WalkDir(lib.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if formats.IsChartFile(path) {
			chartPaths = append(chartPaths, filepath.Clean(path))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scansione di %s fallita: %w", lib.root, err)
	}

	log.Printf("📖 Scansione di %s: %d chart trovati", lib.root, len(chartPaths))

	type scanResult struct {
		entry   *Entry
		failure *ScanFailure
	}

	results := make(chan scanResult, len(chartPaths))
	sem := make(chan struct{}, lib.workers)
	var wg sync.WaitGroup

	for _, chartPath := range chartPaths {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			entry, err := lib.buildEntry(path)
			if err != nil {
				results <- scanResult{failure: &ScanFailure{Path: path, Reason: err.Error()}}
				return
			}
			results <- scanResult{entry: entry}
		}(chartPath)
	}

	wg.Wait()
	close(results)

	entries := make(map[string]*Entry, len(chartPaths))
	var failures []ScanFailure
	for res := range results {
		if res.failure != nil {
			log.Printf("⚠️ Chart saltato %s: %s", res.failure.Path, res.failure.Reason)
			failures = append(failures, *res.failure)
			continue
		}
		entries[res.entry.Document.ID] = res.entry
	}

	lib.mu.Lock()
	lib.entries = entries
	lib.failures = failures
	lib.lastScan = time.Now()
	lib.rebuildOrderLocked()
	lib.mu.Unlock()

	summary := &ScanSummary{
		Total:      len(chartPaths),
		Indexed:    len(entries),
		Failed:     len(failures),
		Failures:   failures,
		DurationMs: time.Since(start).Milliseconds(),
	}

	if err := lib.WriteManifest(); err != nil {
		log.Printf("⚠️ Scrittura manifest fallita: %v", err)
	}

	log.Printf("✅ Libreria indicizzata: %d brani, %d falliti in %dms",
		summary.Indexed, summary.Failed, summary.DurationMs)
	return summary, nil
}

// Reload riparsa un singolo chart e aggiorna l'indice senza rifare la
// scansione completa. Se il file è diventato invalido la voce precedente
// viene tolta dall'indice e l'errore risale al chiamante.
func (lib *Library) Reload(chartPath string) (*Entry, error) {
	chartPath = filepath.Clean(chartPath)

	entry, err := lib.buildEntry(chartPath)
	if err != nil {
		lib.Remove(chartPath)
		return nil, err
	}

	lib.mu.Lock()
	lib.entries[entry.Document.ID] = entry
	lib.rebuildOrderLocked()
	lib.mu.Unlock()

	if err := lib.WriteManifest(); err != nil {
		log.Printf("⚠️ Scrittura manifest fallita: %v", err)
	}
	return entry, nil
}

// Remove elimina dall'indice la voce associata al percorso dato.
// Restituisce true se una voce era effettivamente presente.
func (lib *Library) Remove(chartPath string) bool {
	chartPath = filepath.Clean(chartPath)

	lib.mu.Lock()
	var removed bool
	for id, entry := range lib.entries {
		if entry.ChartPath == chartPath {
			delete(lib.entries, id)
			removed = true
			break
		}
	}
	if removed {
		lib.rebuildOrderLocked()
	}
	lib.mu.Unlock()

	if removed {
		if err := lib.WriteManifest(); err != nil {
			log.Printf("⚠️ Scrittura manifest fallita: %v", err)
		}
	}
	return removed
}

// Get restituisce la voce con l'id dato
func (lib *Library) Get(id string) (*Entry, bool) {
	lib.mu.RLock()
	defer lib.mu.RUnlock()
	entry, ok := lib.entries[id]
	return entry, ok
}

// List restituisce i documenti indicizzati in ordine stabile di percorso
func (lib *Library) List() []*document.SongDocument {
	lib.mu.RLock()
	defer lib.mu.RUnlock()

	docs := make([]*document.SongDocument, 0, len(lib.order))
	for _, id := range lib.order {
		docs = append(docs, lib.entries[id].Document)
	}
	return docs
}

// Len restituisce il numero di brani indicizzati
func (lib *Library) Len() int {
	lib.mu.RLock()
	defer lib.mu.RUnlock()
	return len(lib.entries)
}

// Failures restituisce i fallimenti dell'ultima scansione
func (lib *Library) Failures() []ScanFailure {
	lib.mu.RLock()
	defer lib.mu.RUnlock()

	out := make([]ScanFailure, len(lib.failures))
	copy(out, lib.failures)
	return out
}

// Stats calcola i contatori aggregati della libreria
func (lib *Library) Stats() *LibraryStats {
	lib.mu.RLock()
	defer lib.mu.RUnlock()

	stats := &LibraryStats{
		TotalSongs: len(lib.entries),
		ByCourse:   make(map[string]int),
		Failures:   len(lib.failures),
		LastScan:   lib.lastScan,
		SongsDir:   lib.root,
	}
	for _, entry := range lib.entries {
		stats.TotalWarnings += entry.Warnings
		for _, name := range parser.CanonicalCourseOrder {
			if entry.Document.Courses.Get(name) != nil {
				stats.ByCourse[string(name)]++
			}
		}
	}
	return stats
}

// manifestFile è la forma serializzata della libreria su disco
type manifestFile struct {
	GeneratedAt string                   `json:"generated_at"`
	SongsDir    string                   `json:"songs_dir"`
	Total       int                      `json:"total"`
	Songs       []*document.SongDocument `json:"songs"`
}

// WriteManifest serializza l'indice corrente nel manifest JSON
func (lib *Library) WriteManifest() error {
	songs := lib.List()
	manifest := manifestFile{
		GeneratedAt: time.Now().Format(time.RFC3339Nano),
		SongsDir:    lib.root,
		Total:       len(songs),
		Songs:       songs,
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("serializzazione manifest fallita: %w", err)
	}
	if err := os.WriteFile(lib.manifestPath, data, 0o644); err != nil {
		return fmt.Errorf("scrittura manifest fallita: %w", err)
	}
	return nil
}

// buildEntry parsa un singolo chart e lo proietta in una voce della libreria
func (lib *Library) buildEntry(chartPath string) (*Entry, error) {
	format := formats.FormatForFile(chartPath)
	if format == nil {
		return nil, fmt.Errorf("nessun formato registrato per %q", filepath.Ext(chartPath))
	}

	chart, err := format.ParseChartFile(chartPath)
	if err != nil {
		return nil, err
	}

	lint := linter.NewChartLinter(chart)
	if errs := lint.ValidateChart(); len(errs) > 0 {
		return nil, fmt.Errorf("chart non valido: %s", strings.Join(errs, "; "))
	}

	id, err := lib.SongID(chartPath)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(chartPath)
	if err != nil {
		return nil, err
	}

	entry := &Entry{
		Document:  document.FromChart(chart, id, info.ModTime().UnixNano()),
		ChartPath: chartPath,
		Format:    format.GetFormatName(),
		Warnings:  lint.Review().TotalWarnings,
	}

	if chart.Wave != nil && *chart.Wave != "" {
		audioPath := filepath.Join(filepath.Dir(chartPath), filepath.FromSlash(*chart.Wave))
		if _, err := os.Stat(audioPath); err == nil {
			entry.AudioPath = audioPath
			entry.PreviewPath = lib.ensurePreview(audioPath)
		}
	}

	return entry, nil
}

// ensurePreview genera (o riusa) la clip di anteprima per il file audio dato.
// Un'anteprima mancante non è mai fatale: si torna stringa vuota.
func (lib *Library) ensurePreview(audioPath string) string {
	if lib.clipper == nil {
		return ""
	}

	previewPath := strings.TrimSuffix(audioPath, filepath.Ext(audioPath)) + "_preview.mp3"
	if _, err := os.Stat(previewPath); err == nil {
		return previewPath
	}

	result, err := lib.clipper.Generate(audioPath, &preview.ClipOptions{
		StartSeconds:    lib.previewStart,
		DurationSeconds: lib.previewLen,
		Output:          previewPath,
	})
	if err != nil {
		log.Printf("⚠️ Anteprima non generata per %s: %v", audioPath, err)
		return ""
	}
	return result.OutputFile
}

// rebuildOrderLocked ricalcola l'ordinamento stabile per percorso.
// Richiede il lock in scrittura già acquisito.
func (lib *Library) rebuildOrderLocked() {
	ids := make([]string, 0, len(lib.entries))
	for id := range lib.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return lib.entries[ids[i]].ChartPath < lib.entries[ids[j]].ChartPath
	})
	lib.order = ids
}
