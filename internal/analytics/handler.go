package analytics

import (
	"context"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-webinar/insights/internal/middleware"
	"github.com/aura-webinar/insights/internal/models"
	"github.com/aura-webinar/insights/pkg/response"
)

// ErrCreatorNotFound is returned by a CreatorStore when the token subject has no creator account.
var ErrCreatorNotFound = errors.New("creator not found")

// CreatorStore resolves an authenticated user id to a creator.
type CreatorStore interface {
	GetCreator(ctx context.Context, id uuid.UUID) (*models.Creator, error)
}

// Reporter builds creator reports. *Engine implements it.
type Reporter interface {
	GetCreatorAnalytics(ctx context.Context, creator models.Creator, opts Options) (*Report, error)
}

// Handler handles GET /analytics and GET /webinars/:id/analytics.
type Handler struct {
	reporter Reporter
	creators CreatorStore
	logger   *zap.Logger
}

// NewHandler creates an analytics handler.
func NewHandler(reporter Reporter, creators CreatorStore, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{reporter: reporter, creators: creators, logger: logger}
}

// GetCreatorAnalytics handles GET /analytics?days=&webinar_id=.
func (h *Handler) GetCreatorAnalytics(c *gin.Context) {
	h.serve(c, Options{
		Days:      parseDays(c.Query("days")),
		WebinarID: c.Query("webinar_id"),
	})
}

// GetByWebinar handles GET /webinars/:id/analytics?days=. The path id is the webinar filter.
func (h *Handler) GetByWebinar(c *gin.Context) {
	h.serve(c, Options{
		Days:      parseDays(c.Query("days")),
		WebinarID: c.Param("id"),
	})
}

func (h *Handler) serve(c *gin.Context, opts Options) {
	creator, ok := ResolveCreator(c, h.creators, h.logger)
	if !ok {
		return
	}
	report, err := h.reporter.GetCreatorAnalytics(c.Request.Context(), *creator, opts)
	if err != nil {
		h.logger.Error("creator analytics failed", zap.Error(err), zap.String("creator_id", creator.ID.String()))
		response.Internal(c, "failed to load analytics")
		return
	}
	response.OK(c, report)
}

// ResolveCreator loads the creator for the JWT subject set by middleware.JWT.
// It writes a 401 (unknown subject) or 500 (store failure) response and returns false on failure.
func ResolveCreator(c *gin.Context, creators CreatorStore, logger *zap.Logger) (*models.Creator, bool) {
	v, ok := c.Get(middleware.ContextUserID)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return nil, false
	}
	userID, ok := v.(uuid.UUID)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return nil, false
	}
	creator, err := creators.GetCreator(c.Request.Context(), userID)
	if errors.Is(err, ErrCreatorNotFound) || (err == nil && creator == nil) {
		response.Unauthorized(c, "Unauthorized")
		return nil, false
	}
	if err != nil {
		logger.Error("resolve creator failed", zap.Error(err), zap.String("user_id", userID.String()))
		response.Internal(c, "failed to resolve creator")
		return nil, false
	}
	return creator, true
}

// parseDays returns the requested window, or 0 (default) when absent or malformed.
// An explicit 0 becomes 1 so it is not mistaken for the default; Options.normalize clamps the rest.
func parseDays(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	if n == 0 {
		return 1
	}
	return n
}
