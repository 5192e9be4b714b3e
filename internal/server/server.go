package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apihttp "github.com/harborfs/backend/internal/api/http"
	"github.com/harborfs/backend/internal/api/middleware"
	"github.com/harborfs/backend/internal/api/ws"
	"github.com/harborfs/backend/internal/infrastructure/config"
	"github.com/harborfs/backend/internal/infrastructure/logging"
	"github.com/harborfs/backend/internal/infrastructure/monitoring"
	"github.com/harborfs/backend/internal/infrastructure/tracing"
	"github.com/harborfs/backend/internal/providers/filesystem"
	"github.com/harborfs/backend/internal/providers/search"
	"github.com/harborfs/backend/internal/store"
	"github.com/harborfs/backend/internal/store/disk"
	"github.com/harborfs/backend/internal/store/memory"
)

// Adapter bundles the file-operations facade with both search engines
// behind one value, the surface an editor host consumes.
type Adapter struct {
	filesystem.FileOperations
	search.FileSearcher
	search.ContentSearcher
}

// Server wraps the HTTP server and its dependencies.
type Server struct {
	router  *gin.Engine
	httpSrv *http.Server
	adapter *Adapter
	logger  *logging.Logger
	config  *config.Config
	metrics *monitoring.Metrics
}

// New assembles the backing store, provider, search engines, and HTTP
// surface from configuration.
func New(cfg *config.Config) (*Server, error) {
	var logger *logging.Logger
	if cfg.Logging.Development {
		logger = logging.NewDevelopment()
	} else {
		var err error
		logger, err = logging.New(logging.Config{
			Level:       cfg.Logging.Level,
			OutputPaths: []string{"stdout"},
		})
		if err != nil {
			logger = logging.NewDefault()
		}
	}

	logger.Info("initializing harborfs server",
		zap.String("port", cfg.Server.Port),
		zap.String("backend", cfg.Store.Backend),
		zap.String("scheme", cfg.Store.Scheme),
	)

	metrics := monitoring.NewMetrics()
	tracer := tracing.New("harborfs", logger.Logger)

	var backing store.Store
	var diskStore *disk.Store
	switch cfg.Store.Backend {
	case "memory":
		backing = memory.New()
	case "disk":
		st, err := disk.New(cfg.Store.Root)
		if err != nil {
			return nil, fmt.Errorf("open disk store at %s: %w", cfg.Store.Root, err)
		}
		backing = st
		diskStore = st
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
	go watchGauges(diskStore, metrics, logger)

	provider := filesystem.New(cfg.Store.Scheme, backing).
		WithLogger(logger).
		WithMetrics(metrics)
	engine := search.New(cfg.Store.Scheme, backing).
		WithLogger(logger).
		WithMetrics(metrics)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := apihttp.NewHandlers(provider, engine, cfg, logger)
	wsHandler := ws.NewHandler(engine, logger)

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)

	// File operations
	router.POST("/fs/stat", handlers.StatFile)
	router.POST("/fs/list", handlers.ListDirectory)
	router.POST("/fs/read", handlers.ReadFile)
	router.POST("/fs/write", handlers.WriteFile)
	router.POST("/fs/remove", handlers.RemoveFile)
	router.POST("/fs/rename", handlers.RenameFile)
	router.POST("/fs/copy", handlers.CopyFile)
	router.POST("/fs/mkdir", handlers.MakeDirectory)
	router.GET("/fs/archive", handlers.Archive)

	// Change notification
	router.POST("/fs/watch", handlers.WatchFile)
	router.DELETE("/fs/watch/:id", handlers.UnwatchFile)

	// Search
	router.POST("/search/files", handlers.SearchFiles)
	router.POST("/search/content", handlers.SearchContent)
	router.GET("/search/stream", wsHandler.HandleConnection)

	// Workspace
	router.POST("/workspace/reset", handlers.ResetWorkspace)

	// Metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	logger.Info("server initialized")

	return &Server{
		router: router,
		adapter: &Adapter{
			FileOperations:  provider,
			FileSearcher:    engine,
			ContentSearcher: engine,
		},
		logger:  logger,
		config:  cfg,
		metrics: metrics,
	}, nil
}

// Adapter returns the provider surface for in-process consumers.
func (s *Server) Adapter() *Adapter { return s.adapter }

// Run starts the HTTP server and blocks until it stops.
func (s *Server) Run() error {
	addr := s.config.Server.Host + ":" + s.config.Server.Port
	s.logger.Info("starting HTTP server", zap.String("addr", addr))
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")
	defer s.logger.Sync()
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// watchGauges refreshes uptime periodically and, when a disk store is
// present, its usage gauges. The memory backend has no usage walk.
func watchGauges(st *disk.Store, metrics *monitoring.Metrics, logger *logging.Logger) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for range ticker.C {
		metrics.UpdateUptime()
		if st == nil {
			continue
		}
		files, bytes, err := st.Usage(context.Background())
		if err != nil {
			logger.Warn("store usage walk failed", zap.Error(err))
			continue
		}
		metrics.SetStoreUsage(files, bytes)
	}
}
