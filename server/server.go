// Package server exposes the intake and quote reports over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/revuapp/jobpdf"
	"github.com/revuapp/jobpdf/cache"
	"github.com/revuapp/jobpdf/config"
	"github.com/revuapp/jobpdf/form"
)

// HeaderRequestID carries the request ID in both directions.
const HeaderRequestID = "X-Request-ID"

const ctxRequestID = "request_id"

// Server renders one report per request.
type Server struct {
	cfg      config.ServerConfig
	opts     []jobpdf.Option
	branding form.Branding
	cache    *cache.Cache
	logger   *log.Logger
	now      func() time.Time
	engine   *gin.Engine
}

// New builds the server from cfg. c may be nil to render every request.
func New(cfg *config.Config, c *cache.Cache, logger *log.Logger) (*Server, error) {
	opts, err := cfg.RendererOptions(logger)
	if err != nil {
		return nil, err
	}
	// Catch a bad footer threshold before the first request does.
	if _, err := jobpdf.NewRenderer(opts...); err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}

	s := &Server{
		cfg:      cfg.Server,
		opts:     opts,
		branding: cfg.BrandingFor(),
		cache:    c,
		logger:   logger,
		now:      time.Now,
	}
	s.engine = s.router()
	return s, nil
}

func (s *Server) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.LoggerWithWriter(s.logger.Writer()), gin.RecoveryWithWriter(s.logger.Writer()))
	r.Use(requestID())
	r.Use(cors.New(cors.Config{
		AllowOrigins:  s.cfg.AllowOrigins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", HeaderRequestID},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", HeaderRequestID},
	}))
	r.MaxMultipartMemory = s.cfg.MaxUploadBytes

	r.GET("/healthz", s.health)

	v1 := r.Group("/v1")
	v1.Use(limitBody(s.cfg.MaxUploadBytes))
	{
		v1.POST("/intake", s.renderIntake)
		v1.POST("/intake/draft", s.intakeDraft)
		v1.POST("/quote", s.renderQuote)
		v1.POST("/quote/summary", s.quoteSummary)
	}
	return r
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves on the configured address until ctx is done, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		ErrorLog:     s.logger,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Printf("listening on %s", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

// requestID keeps a well-formed incoming request ID and assigns a fresh one
// otherwise.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

func limitBody(max int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if max > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max)
		}
		c.Next()
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "templates": jobpdf.TemplateNames()})
}
