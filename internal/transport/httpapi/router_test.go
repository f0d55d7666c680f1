package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"

	"ContentGate/internal/domain"
	"ContentGate/internal/infrastructure/storage"
	"ContentGate/internal/usecase"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type syncQueue struct {
	verifier *usecase.Verifier
}

// Enqueue runs the job inline so responses observe the finished verdict.
func (q *syncQueue) Enqueue(job domain.VerificationJob) error {
	return q.verifier.Handle(context.Background(), job)
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	repo := storage.NewMemoryRepository()
	verifier := usecase.NewVerifier(usecase.VerifierDeps{Content: repo, Records: repo})
	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Content:  repo,
		Queue:    &syncQueue{verifier: verifier},
		Verifier: verifier,
	})
	reviews := usecase.NewReviews(usecase.ReviewsDeps{Content: repo, Records: repo})
	return NewRouter(pipeline, reviews, nil)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return out
}

func TestContentLifecycleOverHTTP(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t)

	rec := doJSON(t, h, http.MethodPost, "/api/content", map[string]any{
		"title":       "Launch post",
		"body":        "We shipped the new board today.",
		"contentType": "shortPost",
		"createdBy":   "ana",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	item := decode[domain.ContentItem](t, rec)

	rec = doJSON(t, h, http.MethodGet, "/api/content/"+item.ID+"/verification", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before review, got %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/content/"+item.ID+"/stage", map[string]any{"stage": "review"})
	if rec.Code != http.StatusOK {
		t.Fatalf("move: %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodGet, "/api/content/"+item.ID+"/verification", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("latest: %d %s", rec.Code, rec.Body.String())
	}
	record := decode[domain.VerificationRecord](t, rec)
	if !record.OverallPassed || record.OverallScore != 100 {
		t.Fatalf("expected a clean pass, got %+v", record)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/content/"+item.ID, nil)
	stored := decode[domain.ContentItem](t, rec)
	if stored.VerificationStatus == nil || *stored.VerificationStatus != domain.VerificationPassed {
		t.Fatalf("cached status not exposed: %+v", stored)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/content?stage=review&author=ana", nil)
	if items := decode[[]domain.ContentItem](t, rec); len(items) != 1 {
		t.Fatalf("expected one item in review, got %d", len(items))
	}

	rec = doJSON(t, h, http.MethodGet, "/api/verifications/stats?author=ana", nil)
	stats := decode[domain.VerificationStats](t, rec)
	if stats.Total != 1 || stats.PassRate != 100 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	rec = doJSON(t, h, http.MethodDelete, "/api/content/"+item.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", rec.Code)
	}
	rec = doJSON(t, h, http.MethodGet, "/api/verifications?author=ana", nil)
	if records := decode[[]domain.VerificationRecord](t, rec); len(records) != 1 {
		t.Fatalf("history should survive deletion, got %d", len(records))
	}
}

func TestEditAndOverrideOverHTTP(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t)

	rec := doJSON(t, h, http.MethodPost, "/api/content", map[string]any{
		"title":       "Shouting",
		"body":        "THIS IS THE BIGGEST SALE EVER",
		"contentType": "email",
		"stage":       "review",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	item := decode[domain.ContentItem](t, rec)

	rec = doJSON(t, h, http.MethodGet, "/api/content/"+item.ID+"/verification", nil)
	record := decode[domain.VerificationRecord](t, rec)
	if record.OverallPassed {
		t.Fatalf("all-caps body should fail formatting")
	}

	rec = doJSON(t, h, http.MethodPost, "/api/content/"+item.ID+"/verification/override", map[string]any{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("override without reviewer should be 400, got %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/content/"+item.ID+"/verification/override", map[string]any{"overriddenBy": "lead"})
	if rec.Code != http.StatusOK {
		t.Fatalf("override: %d %s", rec.Code, rec.Body.String())
	}
	overridden := decode[domain.VerificationRecord](t, rec)
	if !overridden.Overridden || overridden.OverallPassed {
		t.Fatalf("override should keep the failing findings: %+v", overridden)
	}

	rec = doJSON(t, h, http.MethodPatch, "/api/content/"+item.ID, map[string]any{"body": "A calmer sale announcement."})
	if rec.Code != http.StatusOK {
		t.Fatalf("edit: %d %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, h, http.MethodGet, "/api/content/"+item.ID+"/verification", nil)
	if latest := decode[domain.VerificationRecord](t, rec); !latest.OverallPassed || latest.Overridden {
		t.Fatalf("edit should produce a fresh passing record: %+v", latest)
	}
}

func TestErrorMapping(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"missing item", http.MethodGet, "/api/content/nope", nil, http.StatusNotFound},
		{"bad type", http.MethodPost, "/api/content", map[string]any{"title": "x", "contentType": "fax"}, http.StatusBadRequest},
		{"bad stage filter", http.MethodGet, "/api/content?stage=draft", nil, http.StatusBadRequest},
		{"move missing", http.MethodPost, "/api/content/nope/stage", map[string]any{"stage": "review"}, http.StatusNotFound},
		{"override missing", http.MethodPost, "/api/content/nope/verification/override", map[string]any{"overriddenBy": "lead"}, http.StatusNotFound},
		{"health", http.MethodGet, "/healthz", nil, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := doJSON(t, h, tt.method, tt.path, tt.body); rec.Code != tt.want {
				t.Fatalf("got %d want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}
