package webinars

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-webinar/insights/internal/middleware"
	"github.com/aura-webinar/insights/internal/models"
	"github.com/aura-webinar/insights/pkg/response"
)

// Lister lists webinars owned by a presenter. *Repository implements it.
type Lister interface {
	ListByPresenter(ctx context.Context, presenterID uuid.UUID) ([]models.WebinarSummary, error)
}

// Handler handles webinar HTTP endpoints.
type Handler struct {
	repo   Lister
	logger *zap.Logger
}

// NewHandler creates a webinars handler.
func NewHandler(repo Lister, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// List handles GET /webinars. Returns the caller's webinars, usable as analytics filters.
func (h *Handler) List(c *gin.Context) {
	uid, ok := c.Get(middleware.ContextUserID)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}
	userID, ok := uid.(uuid.UUID)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}
	list, err := h.repo.ListByPresenter(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("list webinars failed", zap.Error(err), zap.String("user_id", userID.String()))
		response.Internal(c, "failed to list webinars")
		return
	}
	if list == nil {
		list = []models.WebinarSummary{}
	}
	response.OK(c, list)
}
