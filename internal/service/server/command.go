package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	api "github.com/electrolink/storefront/internal/api/http/catalog"
	"github.com/electrolink/storefront/internal/config"
	"github.com/electrolink/storefront/internal/logger"
	repository "github.com/electrolink/storefront/internal/repository/catalog"
	service "github.com/electrolink/storefront/internal/service/catalog"
)

// Options controls the storefront-server process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override for the HTTP server.
	ListenAddress string
	// DataDir provides an optional override of the catalog data directory.
	DataDir string
}

// Run starts the HTTP server and blocks until the context is canceled or the
// server stops. Loads configuration first, then wires storage, business logic
// and transport.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "storefront-server")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	// CLI overrides win over the settings file.
	listenAddress := cfg.ListenAddress
	if opts.ListenAddress != "" {
		listenAddress = opts.ListenAddress
	}

	dataDir := cfg.DataDir
	if opts.DataDir != "" {
		dataDir = opts.DataDir
	}

	repo := repository.NewFileRepository(dataDir)
	handler := api.NewHandler(service.NewService(repo))

	router := newRouter(ctx)
	handler.RegisterRoutes(router)
	handler.RegisterPages(router, cfg.StaticDir, cfg.TemplatesDir)

	httpServer := &http.Server{
		Addr:              listenAddress,
		Handler:           router,
		ReadHeaderTimeout: cfg.Timeout,
	}

	logger.InfoKV(ctx, "Storefront server listening",
		"listen_address", listenAddress, "data_dir", dataDir)

	// Done channel is closed after Shutdown finishes to ensure we block
	// until in-flight requests drain before returning.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Errorf(ctx, "HTTP server shutdown: %v", err)
		}

		close(done)
	}()

	if err = httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve HTTP on %s: %w", listenAddress, err)
	}

	<-done
	logger.Info(ctx, "HTTP server stopped")

	return nil
}

// newRouter builds a gin engine with recovery and request logging wired to
// the project logger instead of gin's default writer.
func newRouter(ctx context.Context) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(func(c *gin.Context) {
		c.Next()

		logger.DebugKV(ctx, "Request handled",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status())
	})

	return router
}
