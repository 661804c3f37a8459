// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers of the public site and the
// read-only JSON API.
package handlers

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"eduhansa/internal/cache"
	"eduhansa/internal/models"
	"eduhansa/internal/query"
	"eduhansa/internal/render"
	"eduhansa/internal/storage"
	"eduhansa/internal/view"
)

// How many records the home and post pages show in each section.
const (
	homeFeaturedBooks = 4
	homeLatestPosts   = 3
	relatedPosts      = 3
)

// ContentFetcher runs document store queries. content.Client implements
// it; it never returns errors, only empty or absent results.
type ContentFetcher interface {
	FetchList(ctx context.Context, tag models.QueryTag) []models.RawDocument
	FetchOne(ctx context.Context, tag models.QueryTag, slug string) (models.RawDocument, bool)
}

// PageCache stores rendered pages between revalidations. cache.PageCache
// implements it.
type PageCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, html []byte)
	TTL() time.Duration
}

// Presigner creates temporary download links for private book files.
// storage.Client implements it.
type Presigner interface {
	PresignedURL(ctx context.Context, key string, expires time.Duration) (string, error)
}

// Public groups handlers for the public-facing site. Rendered pages are
// kept in the page cache when one is configured.
type Public struct {
	content   ContentFetcher
	view      *view.Transformer
	renderer  *render.Renderer
	pages     PageCache // nil disables caching
	presigner Presigner // nil serves fileUrl as is
}

// NewPublic creates a new Public handler group. pages and presigner may be
// nil.
func NewPublic(content ContentFetcher, tr *view.Transformer, renderer *render.Renderer, pages PageCache, presigner Presigner) *Public {
	return &Public{
		content:   content,
		view:      tr,
		renderer:  renderer,
		pages:     pages,
		presigner: presigner,
	}
}

// Home renders the landing page with featured books and the latest posts.
func (p *Public) Home(w http.ResponseWriter, r *http.Request) {
	if p.serveCached(w, r) {
		return
	}
	ctx := r.Context()

	books := p.view.Records(p.content.FetchList(ctx, models.QueryBooks))
	posts := p.view.Records(p.content.FetchList(ctx, models.QueryPosts))

	featured := query.Featured(books, homeFeaturedBooks)
	if len(featured) == 0 && len(books) > 0 {
		featured = books[:min(len(books), homeFeaturedBooks)]
	}
	latest := posts[:min(len(posts), homeLatestPosts)]

	p.page(w, r, "home", &render.PageData{
		Description: "Free eBooks and study guides for learners everywhere.",
		Section:     "home",
		Data: render.HomePage{
			BookCount: len(books),
			Featured:  featured,
			Latest:    latest,
		},
	}, http.StatusOK, len(books) > 0 && len(posts) > 0)
}

// Library renders the book listing. The query string carries the search
// term, category and sort order; HTMX requests get only the results.
func (p *Public) Library(w http.ResponseWriter, r *http.Request) {
	if p.serveCached(w, r) {
		return
	}

	books := p.view.Records(p.content.FetchList(r.Context(), models.QueryBooks))
	q := query.FromValues(r.URL.Query())

	p.page(w, r, "library", &render.PageData{
		Title:       "Library",
		Description: "Browse free eBooks by category, title or author.",
		Section:     "library",
		Data: render.LibraryPage{
			Books:      query.Apply(books, q),
			Total:      len(books),
			Query:      q,
			Categories: models.BookCategories,
		},
	}, http.StatusOK, len(books) > 0)
}

// Book renders a single book by slug.
func (p *Public) Book(w http.ResponseWriter, r *http.Request) {
	if p.serveCached(w, r) {
		return
	}
	ctx := r.Context()

	doc, ok := p.content.FetchOne(ctx, models.QueryBook, chi.URLParam(r, "slug"))
	if !ok {
		p.notFound(w, r, models.KindBook)
		return
	}

	detail := p.view.Detail(doc)
	link, presigned := downloadURL(ctx, p.presigner, detail.Book)

	// A cached page must not outlive the presigned link it carries.
	cacheable := !presigned || (p.pages != nil && p.pages.TTL() < storage.DownloadURLTTL)

	p.page(w, r, "book", &render.PageData{
		Title:       detail.Title,
		Description: detail.Description,
		Section:     "library",
		Data: render.BookPage{
			Book:        detail,
			DownloadURL: link,
		},
	}, http.StatusOK, cacheable)
}

// Blog renders the post listing, split into featured and regular posts.
func (p *Public) Blog(w http.ResponseWriter, r *http.Request) {
	if p.serveCached(w, r) {
		return
	}

	posts := p.view.Records(p.content.FetchList(r.Context(), models.QueryPosts))
	q := query.FromValues(r.URL.Query())
	shown := query.Apply(posts, q)
	featured, regular := query.Partition(shown)

	p.page(w, r, "blog", &render.PageData{
		Title:       "Blog",
		Description: "Study tips, reading lists and news from the EduHansa team.",
		Section:     "blog",
		Data: render.BlogPage{
			Featured:   featured,
			Regular:    regular,
			Shown:      len(shown),
			Total:      len(posts),
			Query:      q,
			Categories: query.Categories(posts),
		},
	}, http.StatusOK, len(posts) > 0)
}

// Post renders a single post by slug, followed by a few other posts.
func (p *Public) Post(w http.ResponseWriter, r *http.Request) {
	if p.serveCached(w, r) {
		return
	}
	ctx := r.Context()

	doc, ok := p.content.FetchOne(ctx, models.QueryPost, chi.URLParam(r, "slug"))
	if !ok {
		p.notFound(w, r, models.KindPost)
		return
	}

	detail := p.view.Detail(doc)
	others := p.view.Records(p.content.FetchList(ctx, models.QueryPosts))

	p.page(w, r, "post", &render.PageData{
		Title:       detail.Title,
		Description: detail.Description,
		Section:     "blog",
		Data: render.PostPage{
			Post:    detail,
			Related: query.Related(others, doc.ID, relatedPosts),
		},
	}, http.StatusOK, true)
}

// About renders the static about page.
func (p *Public) About(w http.ResponseWriter, r *http.Request) {
	if p.serveCached(w, r) {
		return
	}
	p.page(w, r, "about", &render.PageData{
		Title:       "About",
		Description: "Who we are and why EduHansa gives eBooks away.",
		Section:     "about",
	}, http.StatusOK, true)
}

// Contact renders the static contact page.
func (p *Public) Contact(w http.ResponseWriter, r *http.Request) {
	if p.serveCached(w, r) {
		return
	}
	p.page(w, r, "contact", &render.PageData{
		Title:       "Contact",
		Description: "How to reach the EduHansa team.",
		Section:     "contact",
	}, http.StatusOK, true)
}

// NotFound renders the generic 404 page for unmatched routes.
func (p *Public) NotFound(w http.ResponseWriter, r *http.Request) {
	p.notFound(w, r, "")
}

// notFound renders the 404 page for a missing book, post or route.
func (p *Public) notFound(w http.ResponseWriter, r *http.Request, kind models.Kind) {
	data := render.NotFoundPage{
		Heading:   "Page not found",
		Message:   "The page you're looking for doesn't exist.",
		BackPath:  "/",
		BackLabel: "Back to home",
	}
	switch kind {
	case models.KindBook:
		data = render.NotFoundPage{
			Heading:   "Book not found",
			Message:   "The book you're looking for doesn't exist or has been removed.",
			BackPath:  "/library",
			BackLabel: "Back to library",
		}
	case models.KindPost:
		data = render.NotFoundPage{
			Heading:   "Article not found",
			Message:   "The article you're looking for doesn't exist or has been removed.",
			BackPath:  "/blog",
			BackLabel: "Back to blog",
		}
	}
	p.page(w, r, "not_found", &render.PageData{Title: data.Heading, Data: data}, http.StatusNotFound, false)
}

// downloadURL returns a presigned link for books stored in the private
// bucket, falling back to the document's public file URL. The bool reports
// whether the link is presigned and so expires after storage.DownloadURLTTL.
func downloadURL(ctx context.Context, presigner Presigner, b *models.BookDetails) (string, bool) {
	if b == nil {
		return "", false
	}
	if b.FileKey != "" && presigner != nil {
		u, err := presigner.PresignedURL(ctx, b.FileKey, storage.DownloadURLTTL)
		if err == nil {
			return u, true
		}
		slog.WarnContext(ctx, "presign book download failed", "key", b.FileKey, "error", err)
	}
	return b.FileURL, false
}

// serveCached writes a cached render of the request, if there is one.
func (p *Public) serveCached(w http.ResponseWriter, r *http.Request) bool {
	if p.pages == nil {
		return false
	}
	html, ok := p.pages.Get(r.Context(), cache.Key(r))
	if !ok {
		return false
	}
	w.Header().Set("Content-Type", contentTypeHTML)
	w.Header().Set("X-Cache", "HIT")
	w.Header().Set("Vary", "HX-Request")
	w.Write(html)
	return true
}

// page renders a template, or only its results block for HTMX requests,
// and writes it with the given status. Successful renders are cached when
// cacheable is set. If the client has gone away the render is discarded.
func (p *Public) page(w http.ResponseWriter, r *http.Request, name string, data *render.PageData, status int, cacheable bool) {
	ctx := r.Context()

	block := ""
	if render.IsHTMX(r) && (name == "library" || name == "blog") {
		block = "results"
	}

	var buf bytes.Buffer
	if err := p.renderer.Render(&buf, name, block, data); err != nil {
		slog.ErrorContext(ctx, "render page failed", "page", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if ctx.Err() != nil {
		slog.DebugContext(ctx, "request canceled, discarding render", "page", name)
		return
	}

	if p.pages != nil && cacheable && status == http.StatusOK {
		p.pages.Set(ctx, cache.Key(r), buf.Bytes())
	}

	w.Header().Set("Content-Type", contentTypeHTML)
	if p.pages != nil {
		w.Header().Set("X-Cache", "MISS")
	}
	w.Header().Set("Vary", "HX-Request")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
