package config

import (
	"fmt"
	"os"
	"runtime"

	"github.com/goccy/go-yaml"
)

// Config raccoglie tutta la configurazione del server
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Library LibraryConfig `yaml:"library"`
	Watcher WatcherConfig `yaml:"watcher"`
	Preview PreviewConfig `yaml:"preview"`
}

// ServerConfig configura l'API HTTP
type ServerConfig struct {
	Port       int  `yaml:"port"`
	Debug      bool `yaml:"debug"`
	EnableCORS bool `yaml:"enable_cors"`
}

// LibraryConfig configura la scansione della cartella delle canzoni
type LibraryConfig struct {
	SongsDir     string `yaml:"songs_dir"`
	ManifestPath string `yaml:"manifest_path"` // vuoto = library.json dentro songs_dir
	Workers      int    `yaml:"workers"`
}

// WatcherConfig configura il watcher della cartella
type WatcherConfig struct {
	Enabled    bool `yaml:"enabled"`
	DebounceMs int  `yaml:"debounce_ms"`
	AutoImport bool `yaml:"auto_import"`
}

// PreviewConfig configura la generazione delle anteprime audio
type PreviewConfig struct {
	Enabled         bool    `yaml:"enabled"`
	FFmpegPath      string  `yaml:"ffmpeg_path"` // vuoto = cerca nel PATH
	DurationSeconds float64 `yaml:"duration_seconds"`
	OffsetSeconds   float64 `yaml:"offset_seconds"`
}

// DefaultConfig restituisce la configurazione di partenza
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:       8080,
			Debug:      false,
			EnableCORS: true,
		},
		Library: LibraryConfig{
			SongsDir:     "./songs",
			ManifestPath: "",
			Workers:      runtime.NumCPU(),
		},
		Watcher: WatcherConfig{
			Enabled:    true,
			DebounceMs: 500,
			AutoImport: true,
		},
		Preview: PreviewConfig{
			Enabled:         false,
			FFmpegPath:      "",
			DurationSeconds: 15,
			OffsetSeconds:   0,
		},
	}
}

// Load carica la configurazione da file YAML.
// File assente = configurazione di default, file malformato = errore.
// Le chiavi omesse nel file mantengono i valori di default.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("errore lettura config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("errore parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate verifica la coerenza della configurazione
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("porta %d fuori range (1-65535)", c.Server.Port)
	}
	if c.Library.SongsDir == "" {
		return fmt.Errorf("songs_dir non può essere vuota")
	}
	if c.Library.Workers < 1 {
		return fmt.Errorf("workers deve essere almeno 1, trovato %d", c.Library.Workers)
	}
	if c.Watcher.DebounceMs < 0 {
		return fmt.Errorf("debounce_ms non può essere negativo")
	}
	if c.Preview.Enabled && c.Preview.DurationSeconds <= 0 {
		return fmt.Errorf("duration_seconds deve essere positiva con le anteprime attive")
	}
	return nil
}
