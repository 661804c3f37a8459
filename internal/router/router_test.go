// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router tests verify the HTTP routing configuration, middleware
// chains, and the health endpoint.
package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"eduhansa/internal/handlers"
	"eduhansa/internal/middleware"
	"eduhansa/internal/models"
	"eduhansa/internal/render"
	"eduhansa/internal/view"
)

// emptyContent is a store with no documents.
type emptyContent struct{}

func (emptyContent) FetchList(ctx context.Context, tag models.QueryTag) []models.RawDocument {
	return []models.RawDocument{}
}

func (emptyContent) FetchOne(ctx context.Context, tag models.QueryTag, slug string) (models.RawDocument, bool) {
	return models.RawDocument{}, false
}

func newTestRouter(t *testing.T, limiter *middleware.RateLimiter) http.Handler {
	t.Helper()
	rn, err := render.New()
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	tr := view.New(nil, func() time.Time { return time.Unix(0, 0) })
	static := fstest.MapFS{"css/site.css": {Data: []byte("body{}")}}

	return New(
		handlers.NewPublic(emptyContent{}, tr, rn, nil, nil),
		handlers.NewAPI(emptyContent{}, tr, nil),
		limiter,
		static,
	)
}

func TestHealthHandler(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/health", nil)

	healthHandler(w, r)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("content-type: got %q, want %q", ct, "application/json")
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field: got %q, want %q", body["status"], "ok")
	}
}

func TestRoutes(t *testing.T) {
	h := newTestRouter(t, nil)

	tests := []struct {
		target string
		status int
		ctype  string
	}{
		{"/health", http.StatusOK, "application/json"},
		{"/", http.StatusOK, "text/html; charset=utf-8"},
		{"/library", http.StatusOK, "text/html; charset=utf-8"},
		{"/library/missing", http.StatusNotFound, "text/html; charset=utf-8"},
		{"/blog", http.StatusOK, "text/html; charset=utf-8"},
		{"/blog/missing", http.StatusNotFound, "text/html; charset=utf-8"},
		{"/about", http.StatusOK, "text/html; charset=utf-8"},
		{"/contact", http.StatusOK, "text/html; charset=utf-8"},
		{"/api/books", http.StatusOK, "application/json; charset=utf-8"},
		{"/api/posts", http.StatusOK, "application/json; charset=utf-8"},
		{"/api/books/missing", http.StatusNotFound, "application/json; charset=utf-8"},
		{"/api/books?sort=bogus", http.StatusBadRequest, "application/json; charset=utf-8"},
		{"/static/css/site.css", http.StatusOK, "text/css; charset=utf-8"},
		{"/assets/highlight.css", http.StatusOK, "text/css; charset=utf-8"},
		{"/no/such/page", http.StatusNotFound, "text/html; charset=utf-8"},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))

			if rec.Code != tt.status {
				t.Errorf("status: got %d, want %d", rec.Code, tt.status)
			}
			if ct := rec.Header().Get("Content-Type"); ct != tt.ctype {
				t.Errorf("content-type: got %q, want %q", ct, tt.ctype)
			}
		})
	}
}

func TestGlobalMiddleware(t *testing.T) {
	h := newTestRouter(t, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/library", nil))

	if rec.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("missing request ID header")
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing security headers")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestRouter(t, nil)

	// Generate at least one labelled sample.
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/library", nil))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `eduhansa_http_requests_total{method="GET",route="/library",status="200"}`) {
		t.Error("metrics output missing request counter for /library")
	}
}

func TestAPIRateLimited(t *testing.T) {
	limiter := middleware.NewRateLimiter(0.001, 1)
	defer limiter.Stop()
	h := newTestRouter(t, limiter)

	first := httptest.NewRecorder()
	h.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/books", nil))
	if first.Code != http.StatusOK {
		t.Fatalf("first request: got %d, want 200", first.Code)
	}

	second := httptest.NewRecorder()
	h.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/api/books", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Errorf("second request: got %d, want 429", second.Code)
	}

	// HTML pages are not rate limited.
	page := httptest.NewRecorder()
	h.ServeHTTP(page, httptest.NewRequest(http.MethodGet, "/library", nil))
	if page.Code != http.StatusOK {
		t.Errorf("page: got %d, want 200", page.Code)
	}
}
