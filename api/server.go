package api

import (
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"tja-library/formats"
	"tja-library/library"
	"tja-library/linter"
	"tja-library/watcher"
)

const serverVersion = "0.1.0"

// Server rappresenta il server API
type Server struct {
	router       *gin.Engine
	library      *library.Library
	watcher      *watcher.FileWatcher
	watcherMutex sync.Mutex
	wsClients    map[*websocket.Conn]bool
	wsMutex      sync.Mutex
	wsUpgrader   websocket.Upgrader
	port         int
	autoImport   bool
	debounce     time.Duration
}

// ServerConfig configurazione del server
type ServerConfig struct {
	Port          int
	Library       *library.Library
	Watcher       *watcher.FileWatcher // Watcher già avviato da inoltrare ai client (opzionale)
	EnableCORS    bool
	Debug         bool
	AutoImport    bool          // Default per /api/watch/start
	WatchDebounce time.Duration // Default per /api/watch/start
}

// NewServer crea un nuovo server API
func NewServer(config ServerConfig) *Server {
	// Imposta modalità Gin
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// CORS se abilitato
	if config.EnableCORS {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     []string{"*"},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
		}))
	}

	server := &Server{
		router:    router,
		library:   config.Library,
		wsClients: make(map[*websocket.Conn]bool),
		wsUpgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins in development
			},
		},
		port:       config.Port,
		autoImport: config.AutoImport,
		debounce:   config.WatchDebounce,
	}

	// Un watcher avviato fuori dal server va comunque inoltrato ai client
	if config.Watcher != nil {
		server.watcher = config.Watcher
		go server.broadcastWatcherEvents(config.Watcher)
	}

	// Setup routes
	server.setupRoutes()

	return server
}

// setupRoutes configura tutti gli endpoint
func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	{
		// Health check
		api.GET("/health", s.healthCheck)

		// Chart endpoints
		api.POST("/chart/parse", s.parseChart)
		api.POST("/chart/validate", s.validateChart)

		// Song endpoints
		api.GET("/songs", s.getSongs)
		api.GET("/songs/:id", s.getSong)
		api.GET("/songs/:id/audio", s.getSongAudio)
		api.GET("/songs/:id/preview", s.getSongPreview)

		// Library endpoints
		api.POST("/library/rescan", s.rescanLibrary)
		api.GET("/library/stats", s.getLibraryStats)

		// Watcher endpoints
		api.POST("/watch/start", s.startWatcher)
		api.POST("/watch/stop", s.stopWatcher)
		api.GET("/watch/status", s.getWatcherStatus)

		// Utils endpoints
		api.GET("/formats", s.getFormats)
		api.GET("/version", s.getVersion)
	}

	// WebSocket endpoint
	s.router.GET("/ws", s.handleWebSocket)
}

// Start avvia il server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("🚀 Server avviato su http://localhost%s", addr)
	log.Printf("📚 API disponibile su http://localhost%s/api", addr)
	log.Printf("🔌 WebSocket su ws://localhost%s/ws", addr)
	return s.router.Run(addr)
}

// ============================================
// Handlers
// ============================================

// healthCheck verifica lo stato del server
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": serverVersion,
		"songs":   s.library.Len(),
	})
}

// ParseChartRequest richiesta di parsing
type ParseChartRequest struct {
	FilePath string `json:"file_path" binding:"required"`
}

// parseChart parsa un chart e ne restituisce modello e verdetto
func (s *Server) parseChart(c *gin.Context) {
	var req ParseChartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	format := formats.FormatForFile(req.FilePath)
	if format == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("nessun formato registrato per %q", filepath.Ext(req.FilePath)),
		})
		return
	}

	chart, err := format.ParseChartFile(req.FilePath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	review := linter.NewChartLinter(chart).Review()

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"format":  format.GetFormatName(),
		"chart":   chart,
		"review":  review,
	})
}

// ValidateChartRequest richiesta di validazione
type ValidateChartRequest struct {
	FilePath string `json:"file_path" binding:"required"`
}

// validateChart valida un chart e restituisce il verdetto del linter
func (s *Server) validateChart(c *gin.Context) {
	var req ValidateChartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	format := formats.FormatForFile(req.FilePath)
	if format == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("nessun formato registrato per %q", filepath.Ext(req.FilePath)),
		})
		return
	}

	chart, err := format.ParseChartFile(req.FilePath)
	if err != nil {
		// Un errore di parsing è comunque un verdetto: chart non importabile
		c.JSON(http.StatusOK, &linter.ReviewResult{
			Success: false,
			Errors:  []string{err.Error()},
			Courses: []linter.CourseReport{},
		})
		return
	}

	c.JSON(http.StatusOK, linter.NewChartLinter(chart).Review())
}

// getSongs restituisce tutti i documenti indicizzati
func (s *Server) getSongs(c *gin.Context) {
	songs := s.library.List()

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(songs),
		"songs":   songs,
	})
}

// getSong restituisce un singolo documento
func (s *Server) getSong(c *gin.Context) {
	entry, ok := s.library.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Brano non trovato"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"song":        entry.Document,
		"format":      entry.Format,
		"warnings":    entry.Warnings,
		"has_audio":   entry.AudioPath != "",
		"has_preview": entry.PreviewPath != "",
	})
}

// getSongAudio serve il file audio del brano
func (s *Server) getSongAudio(c *gin.Context) {
	entry, ok := s.library.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Brano non trovato"})
		return
	}
	if entry.AudioPath == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Nessun audio per questo brano"})
		return
	}

	c.File(entry.AudioPath)
}

// getSongPreview serve la clip di anteprima del brano
func (s *Server) getSongPreview(c *gin.Context) {
	entry, ok := s.library.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Brano non trovato"})
		return
	}
	if entry.PreviewPath == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Nessuna anteprima per questo brano"})
		return
	}

	c.File(entry.PreviewPath)
}

// rescanLibrary rifà la scansione completa della libreria
func (s *Server) rescanLibrary(c *gin.Context) {
	summary, err := s.library.Scan()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"summary": summary,
	})
}

// getLibraryStats restituisce i contatori della libreria
func (s *Server) getLibraryStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats":   s.library.Stats(),
	})
}

// StartWatchRequest richiesta avvio watcher
type StartWatchRequest struct {
	AutoImport *bool `json:"auto_import"`
	DebounceMs int   `json:"debounce_ms"`
}

// startWatcher avvia il watcher sulla radice della libreria
func (s *Server) startWatcher(c *gin.Context) {
	s.watcherMutex.Lock()
	defer s.watcherMutex.Unlock()

	if s.watcher != nil && s.watcher.IsRunning() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Watcher già in esecuzione"})
		return
	}

	// Il corpo è opzionale: senza body valgono i default del server
	var req StartWatchRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	autoImport := s.autoImport
	if req.AutoImport != nil {
		autoImport = *req.AutoImport
	}
	debounce := s.debounce
	if req.DebounceMs > 0 {
		debounce = time.Duration(req.DebounceMs) * time.Millisecond
	}

	fw, err := watcher.NewFileWatcher(watcher.WatcherConfig{
		Root:         s.library.Root(),
		Library:      s.library,
		DebounceTime: debounce,
		AutoImport:   autoImport,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := fw.Start(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.watcher = fw

	// Invia eventi ai client WebSocket
	go s.broadcastWatcherEvents(fw)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Watcher avviato",
		"root":    s.library.Root(),
	})
}

// stopWatcher ferma il file watcher
func (s *Server) stopWatcher(c *gin.Context) {
	s.watcherMutex.Lock()
	defer s.watcherMutex.Unlock()

	if s.watcher == nil || !s.watcher.IsRunning() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Watcher non in esecuzione"})
		return
	}

	if err := s.watcher.Stop(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.watcher = nil

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Watcher fermato",
	})
}

// getWatcherStatus ottiene lo stato del watcher
func (s *Server) getWatcherStatus(c *gin.Context) {
	s.watcherMutex.Lock()
	defer s.watcherMutex.Unlock()

	if s.watcher == nil || !s.watcher.IsRunning() {
		c.JSON(http.StatusOK, gin.H{"running": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"running":  true,
		"watching": s.watcher.WatchedPaths(),
	})
}

// getFormats ottiene i formati chart registrati
func (s *Server) getFormats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"formats":    formats.GetAvailableFormats(),
		"extensions": formats.SupportedExtensions(),
	})
}

// getVersion ottiene la versione del server
func (s *Server) getVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"version": serverVersion,
	})
}

// ============================================
// WebSocket
// ============================================

// handleWebSocket gestisce connessioni WebSocket
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := s.wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Errore upgrade WebSocket: %v", err)
		return
	}
	defer conn.Close()

	s.wsMutex.Lock()
	s.wsClients[conn] = true
	total := len(s.wsClients)
	s.wsMutex.Unlock()
	log.Printf("🔌 Client WebSocket connesso (totale: %d)", total)

	// Mantieni la connessione aperta
	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			s.wsMutex.Lock()
			delete(s.wsClients, conn)
			total := len(s.wsClients)
			s.wsMutex.Unlock()
			log.Printf("🔌 Client WebSocket disconnesso (totale: %d)", total)
			break
		}
	}
}

// broadcastWatcherEvents invia eventi del watcher ai client WebSocket
func (s *Server) broadcastWatcherEvents(fw *watcher.FileWatcher) {
	for event := range fw.Events() {
		message := gin.H{
			"type":      event.Type,
			"path":      filepath.Base(event.Path),
			"full_path": event.Path,
			"detail":    event.Detail,
			"timestamp": event.Timestamp,
		}

		// Broadcast a tutti i client connessi
		s.wsMutex.Lock()
		for client := range s.wsClients {
			if err := client.WriteJSON(message); err != nil {
				log.Printf("Errore invio WebSocket: %v", err)
				client.Close()
				delete(s.wsClients, client)
			}
		}
		s.wsMutex.Unlock()
	}
}
