package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"tja-library/api"
	"tja-library/config"
	_ "tja-library/formats/tja" // Registra il formato TJA
	"tja-library/importer"
	"tja-library/library"
	"tja-library/preview"
	"tja-library/watcher"
)

func main() {
	configPath := flag.String("config", "", "percorso del file di configurazione YAML")
	importDir := flag.String("import", "", "importa i chart della cartella indicata e termina")
	port := flag.Int("port", 0, "porta del server (sovrascrive la configurazione)")
	flag.Parse()

	fmt.Println("TJA Library Backend v0.1.0")
	fmt.Println("================================")
	fmt.Println()

	// Modalità batch: importa e termina
	if *importDir != "" {
		runner := importer.NewImportRunner(*importDir)
		if _, err := runner.RunImport(); err != nil {
			log.Fatalf("❌ Import fallito: %v", err)
		}
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Configurazione non valida: %v", err)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	lib := library.NewLibrary(cfg.Library.SongsDir, cfg.Library.ManifestPath, cfg.Library.Workers)

	// Anteprime audio solo se ffmpeg è raggiungibile: la sua assenza
	// non deve mai impedire l'avvio
	if cfg.Preview.Enabled {
		clipper, err := preview.NewFFmpegClipper(cfg.Preview.FFmpegPath, "")
		if err != nil {
			log.Printf("⚠️ Anteprime disattivate: %v", err)
		} else {
			lib.EnablePreviews(clipper, cfg.Preview.OffsetSeconds, cfg.Preview.DurationSeconds)
			if version, err := clipper.GetVersion(); err == nil {
				log.Printf("🎬 %s", version)
			}
		}
	}

	// Scansione iniziale della libreria
	if _, err := lib.Scan(); err != nil {
		log.Fatalf("❌ Scansione libreria fallita: %v", err)
	}

	// Watcher sulla cartella dei brani
	var fw *watcher.FileWatcher
	if cfg.Watcher.Enabled {
		fw, err = watcher.NewFileWatcher(watcher.WatcherConfig{
			Root:         lib.Root(),
			Library:      lib,
			DebounceTime: time.Duration(cfg.Watcher.DebounceMs) * time.Millisecond,
			AutoImport:   cfg.Watcher.AutoImport,
		})
		if err != nil {
			log.Fatalf("❌ Watcher non avviabile: %v", err)
		}
		if err := fw.Start(); err != nil {
			log.Fatalf("❌ Watcher non avviabile: %v", err)
		}
	}

	server := api.NewServer(api.ServerConfig{
		Port:          cfg.Server.Port,
		Library:       lib,
		Watcher:       fw,
		EnableCORS:    cfg.Server.EnableCORS,
		Debug:         cfg.Server.Debug,
		AutoImport:    cfg.Watcher.AutoImport,
		WatchDebounce: time.Duration(cfg.Watcher.DebounceMs) * time.Millisecond,
	})

	if err := server.Start(); err != nil {
		log.Fatalf("❌ Server terminato: %v", err)
	}
}
