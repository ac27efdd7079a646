package watcher

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"tja-library/formats"
	"tja-library/library"
)

// FileWatcher monitora i cambiamenti ai chart della libreria
type FileWatcher struct {
	watcher      *fsnotify.Watcher
	library      *library.Library
	debounceTime time.Duration
	autoImport   bool
	onEvent      func(WatchEvent)

	eventChan chan WatchEvent
	stopChan  chan struct{}

	mu           sync.Mutex
	isRunning    bool
	watchedPaths []string
	pending      map[string]*time.Timer
}

// WatchEvent rappresenta un evento del watcher
type WatchEvent struct {
	Type      string    `json:"type"`             // "created", "modified", "deleted", "renamed", "import_success", "validation_error", "removed"
	Path      string    `json:"path"`             // Path del file
	Detail    string    `json:"detail,omitempty"` // Dettaglio (es. motivo della validazione fallita)
	Timestamp time.Time `json:"timestamp"`        // Quando è successo
}

// WatcherConfig configurazione per il watcher
type WatcherConfig struct {
	Root         string           // Radice della libreria da monitorare (ricorsivo)
	Library      *library.Library // Libreria da tenere allineata al disco
	DebounceTime time.Duration    // Tempo di debounce (default: 500ms)
	AutoImport   bool             // Reimporta automaticamente al cambio
	OnEvent      func(WatchEvent) // Callback per eventi
}

// NewFileWatcher crea un nuovo file watcher sull'albero indicato
func NewFileWatcher(config WatcherConfig) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("errore creazione watcher: %w", err)
	}

	// Default debounce time
	if config.DebounceTime == 0 {
		config.DebounceTime = 500 * time.Millisecond
	}

	fw := &FileWatcher{
		watcher:      watcher,
		library:      config.Library,
		debounceTime: config.DebounceTime,
		autoImport:   config.AutoImport,
		onEvent:      config.OnEvent,
		eventChan:    make(chan WatchEvent, 100),
		stopChan:     make(chan struct{}),
		pending:      make(map[string]*time.Timer),
	}

	// fsnotify non è ricorsivo: va registrata ogni sottodirectory
	if err := fw.watchTree(config.Root); err != nil {
		watcher.Close()
		return nil, err
	}

	return fw, nil
}

// Start avvia il file watcher
func (fw *FileWatcher) Start() error {
	fw.mu.Lock()
	if fw.isRunning {
		fw.mu.Unlock()
		return fmt.Errorf("watcher già in esecuzione")
	}
	fw.isRunning = true
	fw.mu.Unlock()

	log.Println("🚀 Library watcher avviato!")
	go fw.loop()
	return nil
}

// Stop ferma il file watcher
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	if !fw.isRunning {
		fw.mu.Unlock()
		return fmt.Errorf("watcher non in esecuzione")
	}
	fw.isRunning = false
	for path, timer := range fw.pending {
		timer.Stop()
		delete(fw.pending, path)
	}
	fw.mu.Unlock()

	close(fw.stopChan)
	if err := fw.watcher.Close(); err != nil {
		return fmt.Errorf("errore chiusura watcher: %w", err)
	}

	close(fw.eventChan)
	return nil
}

// Events restituisce il canale degli eventi
func (fw *FileWatcher) Events() <-chan WatchEvent {
	return fw.eventChan
}

// IsRunning verifica se il watcher è attivo
func (fw *FileWatcher) IsRunning() bool {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.isRunning
}

// WatchedPaths restituisce le directory attualmente monitorate
func (fw *FileWatcher) WatchedPaths() []string {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	out := make([]string, len(fw.watchedPaths))
	copy(out, fw.watchedPaths)
	return out
}

// AddPath aggiunge un albero di directory al monitoraggio
func (fw *FileWatcher) AddPath(path string) error {
	return fw.watchTree(path)
}

// RemovePath rimuove un path dal monitoraggio
func (fw *FileWatcher) RemovePath(path string) error {
	if err := fw.watcher.Remove(path); err != nil {
		return fmt.Errorf("errore rimozione path: %w", err)
	}

	fw.mu.Lock()
	for i, p := range fw.watchedPaths {
		if p == path {
			fw.watchedPaths = append(fw.watchedPaths[:i], fw.watchedPaths[i+1:]...)
			break
		}
	}
	fw.mu.Unlock()

	log.Printf("👁️  Stopped watching: %s", path)
	return nil
}

// loop è il ciclo principale del watcher
func (fw *FileWatcher) loop() {
	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleEvent(event)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("❌ Errore watcher: %v", err)

		case <-fw.stopChan:
			log.Println("🛑 Library watcher fermato")
			return
		}
	}
}

// handleEvent classifica un evento fsnotify e aggiorna la libreria
func (fw *FileWatcher) handleEvent(event fsnotify.Event) {
	// Le directory nuove vanno registrate a mano
	if event.Op&fsnotify.Create == fsnotify.Create {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := fw.watchTree(event.Name); err != nil {
				log.Printf("⚠️ Monitoraggio di %s non riuscito: %v", event.Name, err)
			}
			return
		}
	}

	// Ignora i file che nessun formato registrato sa leggere
	if !formats.IsChartFile(event.Name) {
		return
	}

	// Determina tipo evento
	var eventType string
	switch {
	case event.Op&fsnotify.Create == fsnotify.Create:
		eventType = "created"
	case event.Op&fsnotify.Write == fsnotify.Write:
		eventType = "modified"
	case event.Op&fsnotify.Remove == fsnotify.Remove:
		eventType = "deleted"
	case event.Op&fsnotify.Rename == fsnotify.Rename:
		eventType = "renamed"
	default:
		return
	}

	log.Printf("📝 File %s: %s", eventType, filepath.Base(event.Name))
	fw.emit(WatchEvent{Type: eventType, Path: event.Name, Timestamp: time.Now()})

	if !fw.autoImport || fw.library == nil {
		return
	}

	switch eventType {
	case "created", "modified":
		fw.scheduleReimport(event.Name)
	case "deleted", "renamed":
		if fw.library.Remove(event.Name) {
			log.Printf("🗑️ Rimosso dall'indice: %s", filepath.Base(event.Name))
			fw.emit(WatchEvent{Type: "removed", Path: event.Name, Timestamp: time.Now()})
		}
	}
}

// scheduleReimport fa partire (o riarma) il timer di debounce per il file
func (fw *FileWatcher) scheduleReimport(path string) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if timer, exists := fw.pending[path]; exists {
		timer.Stop()
	}
	fw.pending[path] = time.AfterFunc(fw.debounceTime, func() {
		fw.mu.Lock()
		delete(fw.pending, path)
		fw.mu.Unlock()
		fw.reimport(path)
	})
}

// reimport ricarica il chart nella libreria quando viene modificato
func (fw *FileWatcher) reimport(path string) {
	log.Printf("🔄 Reimport: %s", filepath.Base(path))

	start := time.Now()
	entry, err := fw.library.Reload(path)
	elapsed := time.Since(start)

	if err != nil {
		log.Printf("❌ Validazione fallita per %s: %v", filepath.Base(path), err)

		// Invia evento di errore ma non bloccare il watcher
		fw.emit(WatchEvent{
			Type:      "validation_error",
			Path:      path,
			Detail:    err.Error(),
			Timestamp: time.Now(),
		})
		return
	}

	log.Printf("✅ Reimportato con successo in %v", elapsed)
	if entry.Warnings > 0 {
		log.Printf("⚠️  %d warning(s)", entry.Warnings)
	}

	fw.emit(WatchEvent{Type: "import_success", Path: path, Timestamp: time.Now()})
}

// watchTree registra path e tutte le sue sottodirectory
func (fw *FileWatcher) watchTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := fw.watcher.Add(path); err != nil {
			return fmt.Errorf("errore aggiunta path %s: %w", path, err)
		}

		fw.mu.Lock()
		fw.watchedPaths = append(fw.watchedPaths, path)
		fw.mu.Unlock()

		log.Printf("👀 Watching: %s", path)
		return nil
	})
}

// emit inoltra l'evento a canale e callback. Non blocca mai: se il canale
// è pieno l'evento viene scartato piuttosto che fermare il watcher.
func (fw *FileWatcher) emit(event WatchEvent) {
	fw.mu.Lock()
	if !fw.isRunning {
		fw.mu.Unlock()
		return
	}

	// L'invio resta sotto il lock: Stop chiude il canale solo dopo aver
	// azzerato isRunning, quindi qui il canale è certamente aperto
	select {
	case fw.eventChan <- event:
	default:
		log.Printf("⚠️ Canale eventi pieno, evento %s scartato", event.Type)
	}
	cb := fw.onEvent
	fw.mu.Unlock()

	if cb != nil {
		cb(event)
	}
}
