// Package server serves the Telegram webhook and a health check over HTTP.
package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	// WebhookPrefix is the path under which Telegram posts updates. The
	// secret follows as the last path segment.
	WebhookPrefix = "/telegram/"

	shutdownTimeout = 5 * time.Second
)

// UpdateHandler processes a single Telegram update.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update) error
}

// Server is the webhook HTTP server.
type Server struct {
	handler UpdateHandler
	secret  string
	logger  *slog.Logger
	router  *gin.Engine
}

// New creates a server. Updates are accepted only on WebhookPrefix+secret.
func New(handler UpdateHandler, secret string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		handler: handler,
		secret:  secret,
		logger:  logger,
		router:  router,
	}

	router.GET("/healthz", s.handleHealth)
	router.POST(WebhookPrefix+":secret", s.handleUpdate)

	return s
}

// WebhookURL joins the public base URL and the secret webhook path.
func WebhookURL(base, secret string) string {
	return strings.TrimRight(base, "/") + WebhookPrefix + secret
}

// Handler returns the HTTP handler, for tests and custom listeners.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("webhook server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleUpdate(c *gin.Context) {
	if s.secret == "" || subtle.ConstantTimeCompare([]byte(c.Param("secret")), []byte(s.secret)) != 1 {
		c.Status(http.StatusNotFound)
		return
	}

	var update tgbotapi.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid update"})
		return
	}

	// Telegram redelivers on non-2xx, so failures are logged and acknowledged.
	if err := s.handler.HandleUpdate(c.Request.Context(), update); err != nil {
		s.logger.Error("failed to handle update", "update_id", update.UpdateID, "err", err)
	}
	c.Status(http.StatusOK)
}
