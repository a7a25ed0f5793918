package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nguyentantai21042004/sonote/internal/history"
	"github.com/nguyentantai21042004/sonote/internal/intake"
	"github.com/nguyentantai21042004/sonote/internal/logger"
	"github.com/nguyentantai21042004/sonote/internal/scheduler"
	"github.com/nguyentantai21042004/sonote/internal/staging"
)

const shutdownTimeout = 5 * time.Second

// Deps groups what the handlers read from and write to.
type Deps struct {
	Scheduler scheduler.Scheduler
	History   history.Store
	Validator *intake.Validator

	// Metrics serves GET /metrics when set.
	Metrics http.Handler

	// Staging holds uploads until their item completes or is removed.
	Staging   *staging.Area
	ExportDir string
}

type implServer struct {
	addr   string
	deps   Deps
	logger logger.Logger
	router *gin.Engine
}

// New builds the gin router for addr.
func New(addr string, deps Deps, log logger.Logger) Server {
	gin.SetMode(gin.ReleaseMode)

	s := &implServer{
		addr:   addr,
		deps:   deps,
		logger: log,
		router: gin.New(),
	}
	s.router.MaxMultipartMemory = 32 << 20
	s.router.Use(gin.Recovery(), s.requestLogger())
	s.routes()
	return s
}

func (s *implServer) Handler() http.Handler {
	return s.router
}

func (s *implServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "HTTP server listening on %s", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen %s: %w", s.addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info(ctx, "HTTP server stopped")
	return nil
}

// requestLogger logs each request through the application logger.
func (s *implServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug(c.Request.Context(), "%s %s -> %d (%s)",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Round(time.Millisecond))
	}
}
