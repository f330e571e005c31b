// Package exports turns creator analytics reports into downloadable JSON objects.
package exports

import (
	"context"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-webinar/insights/internal/analytics"
	"github.com/aura-webinar/insights/pkg/queue"
	"github.com/aura-webinar/insights/pkg/response"
)

// ObjectStore persists export objects. *storage.S3 implements it.
type ObjectStore interface {
	PutExport(ctx context.Context, key, contentType string, body io.Reader, contentLength int64) error
	PresignExport(ctx context.Context, key string) (string, error)
}

// CreateRequest is the body for POST /analytics/exports.
type CreateRequest struct {
	Days      int    `json:"days"`
	WebinarID string `json:"webinar_id"`
}

// Handler handles export HTTP endpoints.
type Handler struct {
	queue    *queue.Queue
	store    ObjectStore
	creators analytics.CreatorStore
	logger   *zap.Logger
}

// NewHandler creates an exports handler. store may be nil when object storage is not configured.
func NewHandler(q *queue.Queue, store ObjectStore, creators analytics.CreatorStore, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{queue: q, store: store, creators: creators, logger: logger}
}

// Create handles POST /analytics/exports. Enqueues a report export for the caller.
func (h *Handler) Create(c *gin.Context) {
	creator, ok := analytics.ResolveCreator(c, h.creators, h.logger)
	if !ok {
		return
	}
	if h.store == nil {
		response.ServiceUnavailable(c, "exports are not configured")
		return
	}
	var req CreateRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "invalid request: "+err.Error())
			return
		}
	}
	payload := queue.ExportPayload{
		ExportID:  uuid.New(),
		CreatorID: creator.ID,
		Days:      req.Days,
		WebinarID: req.WebinarID,
	}
	if err := h.queue.EnqueueExport(c.Request.Context(), payload); err != nil {
		h.logger.Error("enqueue export failed", zap.Error(err), zap.String("creator_id", creator.ID.String()))
		response.Internal(c, "failed to queue export")
		return
	}
	response.Accepted(c, gin.H{
		"export_id": payload.ExportID,
		"status":    queue.ExportQueued,
	})
}

// Get handles GET /analytics/exports/:id. Returns status and, once ready, a download URL.
func (h *Handler) Get(c *gin.Context) {
	creator, ok := analytics.ResolveCreator(c, h.creators, h.logger)
	if !ok {
		return
	}
	exportID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid export id")
		return
	}
	status, err := h.queue.GetStatus(c.Request.Context(), exportID)
	if errors.Is(err, queue.ErrStatusNotFound) || (err == nil && status.CreatorID != creator.ID) {
		response.NotFound(c, "export not found")
		return
	}
	if err != nil {
		h.logger.Error("load export status failed", zap.Error(err), zap.String("export_id", exportID.String()))
		response.Internal(c, "failed to load export")
		return
	}

	out := gin.H{
		"export_id":  status.ExportID,
		"status":     status.State,
		"updated_at": status.UpdatedAt,
	}
	if status.State == queue.ExportFailed {
		out["error"] = status.Error
	}
	if status.State == queue.ExportReady && h.store != nil {
		url, err := h.store.PresignExport(c.Request.Context(), status.ObjectKey)
		if err != nil {
			h.logger.Error("presign export failed", zap.Error(err), zap.String("export_id", exportID.String()))
			response.Internal(c, "failed to generate download url")
			return
		}
		out["download_url"] = url
	}
	response.OK(c, out)
}
