package formats

import (
	"path/filepath"
	"strings"
	"sync"
)

// formatRegistry mantiene i parser registrati
var (
	registry     = make(map[string]func() ChartFormat)
	extensionMap = make(map[string]string) // estensione -> nome formato
	registryLock sync.RWMutex
)

// RegisterFormat registra un nuovo formato
// Chiamato dai package dei singoli formati nel loro init()
func RegisterFormat(name string, factory func() ChartFormat) {
	registryLock.Lock()
	defer registryLock.Unlock()

	key := strings.ToLower(name)
	registry[key] = factory
	for _, ext := range factory().Extensions() {
		extensionMap[strings.ToLower(ext)] = key
	}
}

// GetRegisteredFormat restituisce il parser per un formato registrato
func GetRegisteredFormat(name string) ChartFormat {
	registryLock.RLock()
	defer registryLock.RUnlock()

	factory, exists := registry[strings.ToLower(name)]
	if !exists {
		return nil
	}
	return factory()
}

// FormatForFile risolve il formato dall'estensione del file
func FormatForFile(path string) ChartFormat {
	registryLock.RLock()
	name, exists := extensionMap[strings.ToLower(filepath.Ext(path))]
	registryLock.RUnlock()

	if !exists {
		return nil
	}
	return GetRegisteredFormat(name)
}

// GetAvailableFormats restituisce i nomi dei formati registrati
func GetAvailableFormats() []string {
	registryLock.RLock()
	defer registryLock.RUnlock()

	formats := make([]string, 0, len(registry))
	for name := range registry {
		formats = append(formats, name)
	}
	return formats
}

// SupportedExtensions restituisce le estensioni riconosciute dal registry
func SupportedExtensions() []string {
	registryLock.RLock()
	defer registryLock.RUnlock()

	extensions := make([]string, 0, len(extensionMap))
	for ext := range extensionMap {
		extensions = append(extensions, ext)
	}
	return extensions
}

// IsFormatRegistered verifica se un formato è registrato
func IsFormatRegistered(name string) bool {
	registryLock.RLock()
	defer registryLock.RUnlock()

	_, exists := registry[strings.ToLower(name)]
	return exists
}

// IsChartFile verifica se il file ha un'estensione di chart riconosciuta
func IsChartFile(path string) bool {
	registryLock.RLock()
	defer registryLock.RUnlock()

	_, exists := extensionMap[strings.ToLower(filepath.Ext(path))]
	return exists
}
