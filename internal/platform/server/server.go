package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/carojasb94/collection-agency/internal/accounts/api"
	"github.com/carojasb94/collection-agency/internal/platform/config"
)

const requestIDHeader = "X-Request-ID"

// Server wraps the HTTP engine.
type Server struct {
	engine *gin.Engine
	logger *zap.Logger
	port   string
	server *http.Server
}

// NewServer builds the gin engine: middleware first, then the /api/v1 routes.
func NewServer(
	logger *zap.Logger,
	cfg config.ServerConfig,
	accountsHandler *api.AccountsHandler,
	agencyHandler *api.AgencyHandler,
) *Server {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.MaxMultipartMemory = cfg.MaxUploadMB << 20

	r.Use(gin.Recovery())
	r.Use(requestID())
	r.Use(accessLog(logger))
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	v1 := r.Group("/api/v1")
	{
		accountsHandler.RegisterRoutes(v1)
		agencyHandler.RegisterRoutes(v1)

		v1.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "UP"})
		})
	}

	return &Server{
		engine: r,
		logger: logger,
		port:   cfg.Port,
	}
}

// Handler exposes the engine, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run blocks serving HTTP until Shutdown is called.
func (s *Server) Run() error {
	s.server = &http.Server{
		Addr:              ":" + s.port,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("collections API started", zap.String("port", s.port))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// requestID propagates X-Request-ID, generating one when the caller sent none.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

func accessLog(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		logger.Info("HTTP Request",
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.String("ip", c.ClientIP()),
			zap.String("request_id", c.GetString("request_id")),
			zap.Duration("cost", time.Since(start)),
		)
	}
}

// corsConfig allows every origin unless an allowlist is configured.
func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AddAllowMethods("GET", "POST", "OPTIONS")
	cfg.AddAllowHeaders("Authorization", requestIDHeader)
	cfg.AddExposeHeaders(requestIDHeader)
	return cfg
}
