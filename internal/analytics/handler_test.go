package analytics

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

type fakeCreators struct {
	creator *models.Creator
	err     error
}

func (f *fakeCreators) GetCreator(ctx context.Context, id uuid.UUID) (*models.Creator, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.creator == nil || f.creator.ID != id {
		return nil, ErrCreatorNotFound
	}
	return f.creator, nil
}

type fakeReporter struct {
	report *Report
	err    error
	opts   Options
}

func (f *fakeReporter) GetCreatorAnalytics(ctx context.Context, creator models.Creator, opts Options) (*Report, error) {
	f.opts = opts
	return f.report, f.err
}

type envelope struct {
	Success bool            `json:"success"`
	Status  int             `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func newTestRouter(h *Handler, userID *uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID != nil {
			c.Set(middleware.ContextUserID, *userID)
		}
		c.Next()
	})
	r.GET("/analytics", h.GetCreatorAnalytics)
	r.GET("/webinars/:id/analytics", h.GetByWebinar)
	return r
}

func doGet(t *testing.T, r http.Handler, target string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	var body envelope
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return w, body
}

func TestHandlerUnauthorized(t *testing.T) {
	h := NewHandler(&fakeReporter{}, &fakeCreators{}, nil)

	w, body := doGet(t, newTestRouter(h, nil), "/analytics")
	if w.Code != http.StatusUnauthorized || body.Success || body.Message != "Unauthorized" {
		t.Errorf("no user: %d %+v, want 401 Unauthorized", w.Code, body)
	}

	stranger := uuid.New()
	w, body = doGet(t, newTestRouter(h, &stranger), "/analytics")
	if w.Code != http.StatusUnauthorized || body.Status != http.StatusUnauthorized {
		t.Errorf("unknown creator: %d %+v, want 401", w.Code, body)
	}
}

func TestHandlerOK(t *testing.T) {
	creator := &models.Creator{ID: uuid.New()}
	reporter := &fakeReporter{report: EmptyReport(7, "", fixedNow)}
	h := NewHandler(reporter, &fakeCreators{creator: creator}, nil)

	w, body := doGet(t, newTestRouter(h, &creator.ID), "/analytics?days=7&webinar_id=abc")
	if w.Code != http.StatusOK || !body.Success || body.Status != http.StatusOK {
		t.Fatalf("got %d %+v, want 200 success", w.Code, body)
	}
	if reporter.opts.Days != 7 || reporter.opts.WebinarID != "abc" {
		t.Errorf("opts = %+v, want days 7 webinar abc", reporter.opts)
	}
	var report Report
	if err := json.Unmarshal(body.Data, &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Days != 7 || report.Trend == nil || report.Revenue != nil {
		t.Errorf("report = %+v, want days 7, empty trend, null revenue", report)
	}
}

func TestHandlerWebinarPath(t *testing.T) {
	creator := &models.Creator{ID: uuid.New()}
	reporter := &fakeReporter{report: EmptyReport(30, "", fixedNow)}
	h := NewHandler(reporter, &fakeCreators{creator: creator}, nil)

	id := uuid.NewString()
	w, _ := doGet(t, newTestRouter(h, &creator.ID), "/webinars/"+id+"/analytics?days=abc")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if reporter.opts.WebinarID != id {
		t.Errorf("WebinarID = %q, want %q", reporter.opts.WebinarID, id)
	}
	if reporter.opts.Days != 0 {
		t.Errorf("Days = %d, want 0 (default)", reporter.opts.Days)
	}
}

func TestHandlerInternalError(t *testing.T) {
	creator := &models.Creator{ID: uuid.New()}
	h := NewHandler(&fakeReporter{err: errors.New("db down")}, &fakeCreators{creator: creator}, nil)

	w, body := doGet(t, newTestRouter(h, &creator.ID), "/analytics")
	if w.Code != http.StatusInternalServerError || body.Success || body.Status != http.StatusInternalServerError {
		t.Errorf("got %d %+v, want 500 failure envelope", w.Code, body)
	}

	h = NewHandler(&fakeReporter{}, &fakeCreators{err: errors.New("db down")}, nil)
	w, _ = doGet(t, newTestRouter(h, &creator.ID), "/analytics")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("creator store failure: status = %d, want 500", w.Code)
	}
}

func TestParseDays(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"abc", 0},
		{"7", 7},
		{"0", 1},
		{"-3", -3},
		{"400", 400},
	}
	for _, tt := range tests {
		if got := parseDays(tt.in); got != tt.want {
			t.Errorf("parseDays(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
