package mock

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/studiowebux/text2image/internal/types"
)

const (
	defaultHistoryLimit = 10
	statsTopN           = 5
	statsRecentN        = 5
	maxLogs             = 1000
)

// Server is an in-memory image generation backend
type Server struct {
	config      *Config
	failPattern *regexp.Regexp
	engine      *gin.Engine
	httpServer  *http.Server
	listener    net.Listener
	logger      *log.Logger

	mu      sync.RWMutex
	history []Record
	images  map[string][]byte

	logs      []RequestLog
	logsMutex sync.RWMutex

	// random returns a value in [0,1) for failure injection
	random func() float64
	now    func() time.Time
}

// NewServer creates a mock backend
func NewServer(config *Config, logger *log.Logger) (*Server, error) {
	if config.Port == 0 {
		config.Port = 5000
	}
	if config.Host == "" {
		config.Host = "localhost"
	}
	if config.HistoryLimit <= 0 {
		config.HistoryLimit = defaultHistoryLimit
	}
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	s := &Server{
		config: config,
		logger: logger,
		images: make(map[string][]byte),
		random: rand.Float64,
		now:    time.Now,
	}
	if config.FailPattern != "" {
		s.failPattern = regexp.MustCompile(config.FailPattern)
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), s.logMiddleware())

	generate := engine.Group("/generate")
	generate.POST("", s.handleGenerate)
	generate.GET("/history", s.handleHistory)
	generate.POST("/clear", s.handleClear)
	generate.GET("/stats", s.handleStats)
	engine.GET("/image/:filename", s.handleImage)

	s.engine = engine
	return s, nil
}

// Handler exposes the routes, for use with httptest
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start listens on the configured address and serves in the background
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.listener = listener
	s.httpServer = &http.Server{Handler: s.engine}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("mock server error", "err", err)
		}
	}()

	s.logger.Info("mock backend listening", "addr", s.Address())
	return nil
}

// Stop stops the server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

// Address returns the listening address
func (s *Server) Address() string {
	if s.listener != nil {
		return "http://" + s.listener.Addr().String()
	}
	return fmt.Sprintf("http://%s:%d", s.config.Host, s.config.Port)
}

func (s *Server) handleGenerate(c *gin.Context) {
	var req types.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Prompt) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No prompt provided."})
		return
	}
	prompt := strings.TrimSpace(req.Prompt)

	if s.config.Delay > 0 {
		select {
		case <-time.After(s.config.Delay):
		case <-c.Request.Context().Done():
			return
		}
	}

	if s.shouldFail(prompt) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Generation failed: simulated backend error"})
		return
	}

	img, err := renderImage(prompt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	filename := strings.ReplaceAll(uuid.NewString(), "-", "") + ".png"
	record := Record{
		Prompt:    prompt,
		Filename:  filename,
		ImageURL:  "/image/" + filename,
		Timestamp: s.now().Format("2006-01-02T15:04:05"),
	}

	s.mu.Lock()
	s.images[filename] = img
	s.history = append([]Record{record}, s.history...)
	if len(s.history) > s.config.HistoryLimit {
		s.history = s.history[:s.config.HistoryLimit]
	}
	s.mu.Unlock()

	c.JSON(http.StatusOK, types.GenerateResponse{
		Prompt:   prompt,
		Filename: filename,
		ImageURL: record.ImageURL,
	})
}

func (s *Server) shouldFail(prompt string) bool {
	if s.failPattern != nil && s.failPattern.MatchString(prompt) {
		return true
	}
	return s.config.FailRate > 0 && s.random() < s.config.FailRate
}

func (s *Server) handleHistory(c *gin.Context) {
	c.JSON(http.StatusOK, s.History())
}

func (s *Server) handleClear(c *gin.Context) {
	s.mu.Lock()
	s.history = nil
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"message": "History cleared."})
}

func (s *Server) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.Stats())
}

func (s *Server) handleImage(c *gin.Context) {
	filename := c.Param("filename")
	if filename == "download-all" {
		s.handleDownloadAll(c)
		return
	}

	s.mu.RLock()
	img, ok := s.images[filename]
	s.mu.RUnlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
		return
	}
	c.Data(http.StatusOK, "image/png", img)
}

func (s *Server) handleDownloadAll(c *gin.Context) {
	s.mu.RLock()
	files := make(map[string][]byte, len(s.images))
	for name, data := range s.images {
		files[name] = data
	}
	s.mu.RUnlock()

	if len(files) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No images found."})
		return
	}

	archive, err := buildArchive(files)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="generated_images.zip"`)
	c.Data(http.StatusOK, "application/zip", archive)
}

// History returns a copy of the server-side history, newest first
func (s *Server) History() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Record{}, s.history...)
}

// Stats aggregates the current history
func (s *Server) Stats() types.StatsSnapshot {
	history := s.History()

	counts := make(map[string]int)
	var order []string
	for _, r := range history {
		if counts[r.Prompt] == 0 {
			order = append(order, r.Prompt)
		}
		counts[r.Prompt]++
	}
	// stable sort keeps first-seen order among equal counts
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	top := make([]types.PromptCount, 0, statsTopN)
	for _, p := range order {
		if len(top) == statsTopN {
			break
		}
		top = append(top, types.PromptCount{Prompt: p, Count: counts[p]})
	}

	recent := make([]types.RecentPrompt, 0, statsRecentN)
	for _, r := range history {
		if len(recent) == statsRecentN {
			break
		}
		recent = append(recent, types.RecentPrompt{Prompt: r.Prompt, Timestamp: r.Timestamp})
	}

	return types.StatsSnapshot{Total: len(history), TopPrompts: top, Recent: recent}
}

// ImageCount is the number of stored images
func (s *Server) ImageCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.images)
}

func (s *Server) logMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := RequestLog{
			Timestamp: start,
			Method:    c.Request.Method,
			Path:      c.Request.URL.Path,
			RequestID: c.GetHeader("X-Request-ID"),
			Status:    c.Writer.Status(),
			Duration:  time.Since(start),
		}
		s.logger.Debug("mock request", "method", entry.Method, "path", entry.Path,
			"status", entry.Status, "request_id", entry.RequestID)

		if s.config.Logging {
			s.logRequest(entry)
		}
	}
}

// logRequest adds a request to the log
func (s *Server) logRequest(entry RequestLog) {
	s.logsMutex.Lock()
	defer s.logsMutex.Unlock()

	s.logs = append(s.logs, entry)
	if len(s.logs) > maxLogs {
		s.logs = s.logs[len(s.logs)-maxLogs:]
	}
}

// GetLogs returns a copy of the request log
func (s *Server) GetLogs() []RequestLog {
	s.logsMutex.RLock()
	defer s.logsMutex.RUnlock()
	return append([]RequestLog{}, s.logs...)
}
