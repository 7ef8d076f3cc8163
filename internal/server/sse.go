package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mark3labs/mcp-go/server"
)

// shutdownTimeout bounds connection draining on exit.
const shutdownTimeout = 10 * time.Second

// ServeSSE runs the HTTP transport until ctx is cancelled, then drains
// open connections.
func (s *Server) ServeSSE(ctx context.Context) error {
	e := s.router()
	addr := fmt.Sprintf(":%d", s.cfg.Port)

	errCh := make(chan error, 1)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.log.Info("sse transport listening",
		"addr", addr,
		"sse", "/sse",
		"message", "/message",
	)

	select {
	case err := <-errCh:
		return fmt.Errorf("server: listen on %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	s.log.Info("sse transport stopped")
	return nil
}

// router assembles the echo app: middleware, the health and catalog
// routes, and the MCP endpoints.
func (s *Server) router() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(s.requestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: s.cfg.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	}))

	e.GET("/", s.handleCatalog)
	e.GET("/health", s.handleHealth)

	opts := []server.SSEOption{
		server.WithSSEEndpoint("/sse"),
		server.WithMessageEndpoint("/message"),
	}
	if s.cfg.PublicURL != "" {
		opts = append(opts, server.WithBaseURL(s.cfg.PublicURL))
	}
	sse := server.NewSSEServer(s.MCP, opts...)
	e.GET("/sse", echo.WrapHandler(sse.SSEHandler()))
	e.POST("/message", echo.WrapHandler(sse.MessageHandler()))

	return e
}

// requestLogger times each request and writes one structured line.
// The /sse line fires when the stream closes, not when it opens.
func (s *Server) requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()
			s.log.Info("http request",
				"method", req.Method,
				"path", req.URL.Path,
				"status", res.Status,
				"size", res.Size,
				"duration", time.Since(start).String(),
			)
			return err
		}
	}
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":  "ok",
		"version": Version,
		"backend": s.cfg.ResolvedBackend(),
		"tools":   s.Dispatcher.Count(),
	})
}

// handleCatalog describes the server to anyone poking the base URL.
func (s *Server) handleCatalog(c echo.Context) error {
	type toolInfo struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	tools := make([]toolInfo, 0, s.Dispatcher.Count())
	for _, t := range s.Dispatcher.Tools() {
		tools = append(tools, toolInfo{
			Name:        t.Definition.Name,
			Description: t.Definition.Description,
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"name":    "corkboard",
		"version": Version,
		"endpoints": map[string]string{
			"sse":     "/sse",
			"message": "/message",
			"health":  "/health",
		},
		"tools": tools,
	})
}
