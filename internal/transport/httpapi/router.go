// Package httpapi exposes the content gate over REST using gin.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ContentGate/internal/domain"
	"ContentGate/internal/usecase"
)

// ContentService is the lifecycle side consumed by the handlers.
type ContentService interface {
	CreateContent(ctx context.Context, in usecase.CreateContentInput) (domain.ContentItem, error)
	MoveStage(ctx context.Context, in usecase.MoveStageInput) (domain.ContentItem, error)
	EditContent(ctx context.Context, in usecase.EditContentInput) (domain.ContentItem, error)
	DeleteContent(ctx context.Context, id string) error
	GetContent(ctx context.Context, id string) (domain.ContentItem, error)
	ListContent(ctx context.Context, stage, author string) ([]domain.ContentItem, error)
}

// ReviewService is the verification read side and override action.
type ReviewService interface {
	LatestVerification(ctx context.Context, contentID string) (domain.VerificationRecord, error)
	VerificationHistory(ctx context.Context, authorID string) ([]domain.VerificationRecord, error)
	VerificationStats(ctx context.Context, authorID string) (domain.VerificationStats, error)
	Override(ctx context.Context, contentID, overriddenBy string) (domain.VerificationRecord, error)
}

// Handlers binds HTTP requests to the use cases.
type Handlers struct {
	content ContentService
	reviews ReviewService
	logger  *slog.Logger
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(content ContentService, reviews ReviewService, logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	h := &Handlers{content: content, reviews: reviews, logger: logger}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.POST("/content", h.createContent)
	api.GET("/content", h.listContent)
	api.GET("/content/:id", h.getContent)
	api.PATCH("/content/:id", h.editContent)
	api.DELETE("/content/:id", h.deleteContent)
	api.POST("/content/:id/stage", h.moveStage)
	api.GET("/content/:id/verification", h.latestVerification)
	api.POST("/content/:id/verification/override", h.override)
	api.GET("/verifications", h.history)
	api.GET("/verifications/stats", h.stats)

	return r
}

// NewServer wraps the router in an http.Server with conservative timeouts.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func (h *Handlers) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrNoVerification):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidStage),
		errors.Is(err, domain.ErrInvalidContentType):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
