package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"eduhansa/internal/models"
	"eduhansa/internal/render"
	"eduhansa/internal/view"
)

var testNow = time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)

// fakeContent serves documents from memory, mirroring content.Client:
// misses and failures are reported as empty or absent results.
type fakeContent struct {
	books []models.RawDocument
	posts []models.RawDocument
	lists int
}

func (f *fakeContent) FetchList(ctx context.Context, tag models.QueryTag) []models.RawDocument {
	f.lists++
	switch tag {
	case models.QueryBooks:
		return append([]models.RawDocument{}, f.books...)
	case models.QueryPosts:
		return append([]models.RawDocument{}, f.posts...)
	}
	return []models.RawDocument{}
}

func (f *fakeContent) FetchOne(ctx context.Context, tag models.QueryTag, slug string) (models.RawDocument, bool) {
	docs := f.books
	if tag == models.QueryPost {
		docs = f.posts
	}
	for _, d := range docs {
		key := d.ID
		if d.Book != nil && d.Book.Slug != nil {
			key = d.Book.Slug.Current
		}
		if d.Post != nil && d.Post.Slug != nil {
			key = d.Post.Slug.Current
		}
		if key == slug {
			return d, true
		}
	}
	return models.RawDocument{}, false
}

// memCache is an in-memory PageCache.
type memCache struct {
	mu    sync.Mutex
	pages map[string][]byte
	ttl   time.Duration
}

func newMemCache() *memCache {
	return &memCache{pages: make(map[string][]byte), ttl: time.Minute}
}

func (c *memCache) TTL() time.Duration { return c.ttl }

func (c *memCache) Get(ctx context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.pages[key]
	return b, ok
}

func (c *memCache) Set(ctx context.Context, key string, html []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages[key] = append([]byte(nil), html...)
}

type fakePresigner struct {
	err error
}

func (f fakePresigner) PresignedURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "https://s3.example.com/private/" + key + "?sig=abc", nil
}

func ptr[T any](v T) *T { return &v }

func bookDoc(id, slug, title, category string, featured bool) models.RawDocument {
	return models.RawDocument{
		ID:   id,
		Kind: models.KindBook,
		Book: &models.RawBook{
			Title:       ptr(title),
			Slug:        &models.SlugField{Current: slug},
			Author:      ptr("Ada Lovelace"),
			Category:    ptr(category),
			Tags:        []string{"ai"},
			PublishedAt: ptr("2025-03-01T00:00:00Z"),
			Featured:    ptr(featured),
			FileURL:     ptr("https://files.example.com/" + slug + ".pdf"),
		},
	}
}

func postDoc(id, slug, title string, featured bool) models.RawDocument {
	return models.RawDocument{
		ID:   id,
		Kind: models.KindPost,
		Post: &models.RawPost{
			Title:       ptr(title),
			Slug:        &models.SlugField{Current: slug},
			Excerpt:     ptr("A short excerpt."),
			PublishedAt: ptr("2025-04-01T00:00:00Z"),
			Featured:    ptr(featured),
			Author:      &models.RawAuthor{Name: ptr("Grace"), Bio: ptr("Teaches things.")},
			Categories:  []models.RawCategory{{Title: ptr("Learning")}},
			Body:        ptr("## Intro\n\nHello **readers**."),
		},
	}
}

func sampleContent() *fakeContent {
	return &fakeContent{
		books: []models.RawDocument{
			bookDoc("b1", "ml-101", "ML 101", "technology", true),
			bookDoc("b2", "ledgers", "Ledgers", "business", false),
			bookDoc("b3", "cells", "Cells", "science", false),
		},
		posts: []models.RawDocument{
			postDoc("p1", "study-habits", "Study Habits", true),
			postDoc("p2", "reading-lists", "Reading Lists", false),
		},
	}
}

func newTransformer() *view.Transformer {
	return view.New(nil, func() time.Time { return testNow })
}

func newRenderer(t *testing.T) *render.Renderer {
	t.Helper()
	rn, err := render.New()
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	return rn
}

// serve routes req through a chi router so URL parameters resolve.
func serve(pattern string, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Method(http.MethodGet, pattern, h)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

var errPresign = errors.New("presign failed")
