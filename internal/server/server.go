// =============================================================================
// Order Invoicer - Interactive HTTP Service
// =============================================================================
//
// JSON API used by a browser front end to run the generator interactively.
//
// ROUTES:
//   GET    /health
//   GET    /api/branding
//   PUT    /api/branding
//   POST   /api/uploads                     (multipart field "file")
//   POST   /api/uploads/:id/generate
//   GET    /api/batches/:id/archive
//   GET    /api/batches/:id/files/:name
//   DELETE /api/batches/:id
//
// Uploads and batches are held in memory (see session.go). Branding edits
// are persisted through the branding store; a failed save is reported as a
// warning and the in-memory value is still used.
//
// =============================================================================

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ginjaninja78/order-invoicer/internal/config"
	"github.com/ginjaninja78/order-invoicer/internal/pdfwriter"
	"github.com/ginjaninja78/order-invoicer/internal/resolver"
)

// Options wires the server to the rest of the application.
type Options struct {
	Config        config.ServerConfig
	BrandingStore *config.BrandingStore
	Resolver      *resolver.Resolver
	PDF           pdfwriter.Options
	Concurrency   int
	Logger        *zap.Logger
}

// Server is the HTTP adapter around the generator.
type Server struct {
	config     config.ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	store      *Store
	logger     *zap.Logger

	brandingStore *config.BrandingStore
	resolver      *resolver.Resolver
	pdf           pdfwriter.Options
	concurrency   int

	mu       sync.RWMutex
	branding config.Branding
}

// New creates a server and loads the persisted branding. A branding file
// that cannot be read is logged and the defaults are used.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	res := opts.Resolver
	if res == nil {
		res = resolver.New(nil)
	}

	s := &Server{
		config:        opts.Config,
		router:        gin.New(),
		store:         NewStore(opts.Config.SessionTTL),
		logger:        logger,
		brandingStore: opts.BrandingStore,
		resolver:      res,
		pdf:           opts.PDF,
		concurrency:   opts.Concurrency,
		branding:      config.DefaultBranding(),
	}

	if s.brandingStore != nil {
		b, err := s.brandingStore.Load()
		if err != nil {
			logger.Warn("Using default branding", zap.Error(err))
		}
		s.branding = b
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures middleware for the router.
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
	s.router.Use(cors.New(corsConfig(s.config.AllowedOrigins)))
}

// loggingMiddleware logs one line per request.
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		s.logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// corsConfig allows every origin when origins is empty or contains "*".
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}

	var allowed []string
	allowAll := len(origins) == 0
	for _, origin := range origins {
		for _, part := range strings.Split(origin, ",") {
			trimmed := strings.TrimSpace(part)
			switch trimmed {
			case "":
			case "*":
				allowAll = true
			default:
				allowed = append(allowed, trimmed)
			}
		}
	}

	if allowAll || len(allowed) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowed
	}
	return cfg
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api")
	{
		api.GET("/branding", s.handleGetBranding)
		api.PUT("/branding", s.handlePutBranding)

		api.POST("/uploads", s.handleUpload)
		api.POST("/uploads/:id/generate", s.handleGenerate)

		api.GET("/batches/:id/archive", s.handleArchive)
		api.GET("/batches/:id/files/:name", s.handleFile)
		api.DELETE("/batches/:id", s.handleDeleteBatch)
	}
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := s.Address()

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	if s.config.SessionTTL > 0 {
		go s.sweep(ctx, s.config.SessionTTL/2)
	}

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", zap.Error(err))
		return err
	}
}

// Stop gracefully stops the HTTP server.
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// sweep drops expired sessions every interval until ctx is done.
func (s *Server) sweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.store.Sweep(); n > 0 {
				s.logger.Debug("Expired sessions dropped", zap.Int("count", n))
			}
		}
	}
}

// Router returns the underlying gin router (for testing).
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Address returns the listen address.
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}

// currentBranding returns a copy of the in-memory branding.
func (s *Server) currentBranding() config.Branding {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.branding
}
