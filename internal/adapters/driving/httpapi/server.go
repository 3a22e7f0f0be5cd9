package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/logger"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Config tunes the HTTP transport.
type Config struct {
	// Name and Version are reported by GET /.
	Name    string
	Version string

	// MaxUploadBytes rejects larger uploads with 413. Zero uses the default.
	MaxUploadBytes int64
}

// Server serves the JSON API.
type Server struct {
	ports  *Ports
	config Config
	engine *gin.Engine
}

// NewServer creates a new HTTP server with the given ports.
func NewServer(ports *Ports, config Config) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}
	if config.Name == "" {
		config.Name = "docintel"
	}
	if config.MaxUploadBytes <= 0 {
		config.MaxUploadBytes = domain.DefaultMaxUploadMB << 20
	}

	if logger.IsVerbose() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{ports: ports, config: config}
	s.engine = s.newRouter()
	return s, nil
}

func (s *Server) newRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(), cors())
	router.MaxMultipartMemory = s.config.MaxUploadBytes

	router.GET("/", s.handleRoot)
	router.GET("/health", s.handleHealth)

	api := router.Group("/api")
	api.POST("/upload", s.handleUpload)
	api.POST("/ask", s.handleAsk)
	api.POST("/extract", s.handleExtract)
	api.GET("/documents", s.handleListDocuments)
	api.GET("/documents/:id", s.handleGetDocument)

	router.NoRoute(func(c *gin.Context) {
		abortWithDetail(c, http.StatusNotFound, "route not found")
	})
	return router
}

// Handler returns the router for embedding or testing.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until the context is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	logger.Info("HTTP API listening on %s", addr)
	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}
