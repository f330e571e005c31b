package webinars

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aura-webinar/insights/internal/middleware"
	"github.com/aura-webinar/insights/internal/models"
)

type stubLister struct {
	list []models.WebinarSummary
	err  error
	got  uuid.UUID
}

func (s *stubLister) ListByPresenter(ctx context.Context, presenterID uuid.UUID) ([]models.WebinarSummary, error) {
	s.got = presenterID
	return s.list, s.err
}

func serveList(h *Handler, userID *uuid.UUID) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID != nil {
			c.Set(middleware.ContextUserID, *userID)
		}
		c.Next()
	})
	r.GET("/webinars", h.List)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/webinars", nil))
	return w
}

func TestList(t *testing.T) {
	userID := uuid.New()
	repo := &stubLister{}
	w := serveList(NewHandler(repo, nil), &userID)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if repo.got != userID {
		t.Errorf("presenter = %v, want %v", repo.got, userID)
	}
	var body struct {
		Data []models.WebinarSummary `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data == nil {
		t.Error("data = null, want []")
	}
}

func TestListErrors(t *testing.T) {
	if w := serveList(NewHandler(&stubLister{}, nil), nil); w.Code != http.StatusUnauthorized {
		t.Errorf("no user: status = %d, want 401", w.Code)
	}
	userID := uuid.New()
	if w := serveList(NewHandler(&stubLister{err: errors.New("db down")}, nil), &userID); w.Code != http.StatusInternalServerError {
		t.Errorf("store error: status = %d, want 500", w.Code)
	}
}
