package preview

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// FFmpegClipper genera le anteprime audio con ffmpeg (wrapper esterno)
type FFmpegClipper struct {
	ffmpegPath string
	workDir    string
}

// ClipOptions opzioni per il taglio dell'anteprima
type ClipOptions struct {
	StartSeconds    float64  // Punto di inizio nel brano
	DurationSeconds float64  // Durata del clip (default: 15)
	Bitrate         string   // Bitrate mp3 (default: "128k")
	Output          string   // File output (default: "<nome>_preview.mp3")
	AdditionalArgs  []string // Argomenti aggiuntivi per ffmpeg
}

// ClipResult risultato della generazione
type ClipResult struct {
	Success      bool
	Output       string
	ErrorMessage string
	Warnings     []string
	OutputFile   string
}

// Estensioni audio che ffmpeg può ragionevolmente decodificare qui
var audioExtensions = map[string]bool{
	".ogg":  true,
	".mp3":  true,
	".wav":  true,
	".flac": true,
	".m4a":  true,
}

// NewFFmpegClipper crea un nuovo clipper per ffmpeg
func NewFFmpegClipper(ffmpegPath string, workDir string) (*FFmpegClipper, error) {
	// Se ffmpegPath è vuoto, cerca ffmpeg nel PATH
	if ffmpegPath == "" {
		path, err := exec.LookPath("ffmpeg")
		if err != nil {
			return nil, fmt.Errorf("ffmpeg non trovato nel PATH. Installalo da https://ffmpeg.org/download.html")
		}
		ffmpegPath = path
	}

	// Verifica che ffmpeg sia eseguibile
	if _, err := os.Stat(ffmpegPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("ffmpeg non trovato in: %s", ffmpegPath)
	}

	// Se workDir non esiste, creala
	if workDir != "" {
		if err := os.MkdirAll(workDir, 0755); err != nil {
			return nil, fmt.Errorf("impossibile creare workDir: %w", err)
		}
	}

	return &FFmpegClipper{
		ffmpegPath: ffmpegPath,
		workDir:    workDir,
	}, nil
}

// Generate taglia un'anteprima mp3 dal file audio indicato
func (fc *FFmpegClipper) Generate(audioPath string, options *ClipOptions) (*ClipResult, error) {
	result := &ClipResult{
		Success: false,
	}

	// Validazione prima del taglio
	if err := fc.validateBeforeClip(audioPath); err != nil {
		result.ErrorMessage = err.Error()
		return result, err
	}

	// Opzioni di default
	if options == nil {
		options = &ClipOptions{}
	}
	duration := options.DurationSeconds
	if duration <= 0 {
		duration = 15
	}
	bitrate := options.Bitrate
	if bitrate == "" {
		bitrate = "128k"
	}

	// File output: accanto all'input o dentro workDir
	outputPath := options.Output
	if outputPath == "" {
		stem := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
		outputPath = stem + "_preview.mp3"
	}
	if !filepath.IsAbs(outputPath) {
		if fc.workDir != "" {
			outputPath = filepath.Join(fc.workDir, outputPath)
		} else {
			outputPath = filepath.Join(filepath.Dir(audioPath), outputPath)
		}
	}

	// Costruisci gli argomenti per ffmpeg
	// -ss prima di -i per il seek veloce sull'input
	args := []string{"-y"}
	if options.StartSeconds > 0 {
		args = append(args, "-ss", fmt.Sprintf("%.3f", options.StartSeconds))
	}
	args = append(args, "-i", audioPath)
	args = append(args, "-t", fmt.Sprintf("%.3f", duration))
	args = append(args, "-vn", "-acodec", "libmp3lame", "-b:a", bitrate)

	// Argomenti aggiuntivi
	args = append(args, options.AdditionalArgs...)

	// File output (sempre per ultimo)
	args = append(args, outputPath)

	// Esegui ffmpeg
	cmd := exec.Command(fc.ffmpegPath, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	// Cattura output
	result.Output = stdout.String()
	stderrStr := stderr.String()

	// ffmpeg scrive quasi tutto su stderr: separa warning ed errori
	if stderrStr != "" {
		lines := strings.Split(stderrStr, "\n")
		for _, line := range lines {
			line = strings.TrimSpace(line)
			if line != "" {
				if strings.Contains(strings.ToLower(line), "warning") {
					result.Warnings = append(result.Warnings, line)
				} else if strings.Contains(strings.ToLower(line), "error") {
					result.ErrorMessage += line + "\n"
				}
			}
		}
	}

	if err != nil {
		result.Success = false
		if result.ErrorMessage == "" {
			result.ErrorMessage = fmt.Sprintf("Errore esecuzione ffmpeg: %v\n%s", err, stderrStr)
		}
		return result, fmt.Errorf("generazione anteprima fallita: %w", err)
	}

	result.Success = true
	result.OutputFile = outputPath

	return result, nil
}

// GetVersion ritorna la versione di ffmpeg installata
func (fc *FFmpegClipper) GetVersion() (string, error) {
	cmd := exec.Command(fc.ffmpegPath, "-version")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("impossibile ottenere versione ffmpeg: %w", err)
	}

	// La prima riga basta, le altre sono la configurazione di build
	lines := strings.Split(string(output), "\n")
	return strings.TrimSpace(lines[0]), nil
}

// validateBeforeClip valida il file audio prima del taglio
func (fc *FFmpegClipper) validateBeforeClip(audioPath string) error {
	// 1. Verifica che il file esista
	fileInfo, err := os.Stat(audioPath)
	if os.IsNotExist(err) {
		return fmt.Errorf("file audio non trovato: %s", audioPath)
	}
	if err != nil {
		return fmt.Errorf("impossibile leggere info file: %w", err)
	}

	// 2. Un file vuoto non è decodificabile
	if fileInfo.Size() == 0 {
		return fmt.Errorf("file audio vuoto: %s", audioPath)
	}

	// 3. Verifica l'estensione
	ext := strings.ToLower(filepath.Ext(audioPath))
	if !audioExtensions[ext] {
		return fmt.Errorf("estensione audio non riconosciuta: %s", ext)
	}

	return nil
}
