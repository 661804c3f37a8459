// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package render

import (
	"bytes"
	"html/template"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"eduhansa/internal/models"
)

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	rn, err := New()
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	return rn
}

func book(id, title, category string) models.DisplayRecord {
	return models.DisplayRecord{
		Kind:        models.KindBook,
		ID:          id,
		RouteKey:    id,
		Title:       title,
		Author:      "Ada",
		Description: "About " + title,
		Category:    category,
		Tags:        []string{},
		PublishedAt: time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC),
		CoverURL:    "/static/placeholder.svg",
		Book:        &models.BookDetails{Format: "PDF", Pages: 120},
	}
}

func post(id, title string, featured bool) models.DisplayRecord {
	return models.DisplayRecord{
		Kind:        models.KindPost,
		ID:          id,
		RouteKey:    id,
		Title:       title,
		Author:      "EduHansa Team",
		Description: "Excerpt",
		Category:    "General",
		Tags:        []string{},
		PublishedAt: time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC),
		CoverURL:    "https://img.example.com/c.jpg",
		Featured:    featured,
		Post:        &models.PostDetails{ReadTime: "1 min read", AuthorImage: "/static/placeholder-user.svg"},
	}
}

func TestNew(t *testing.T) {
	rn := newRenderer(t)
	for _, name := range []string{"home", "library", "book", "blog", "post", "not_found"} {
		if !rn.Has(name) {
			t.Errorf("expected template %q to be parsed", name)
		}
	}
	if rn.Has("base") {
		t.Error("base.html should not be registered as a separate template")
	}
}

func TestRenderUnknownPage(t *testing.T) {
	rn := newRenderer(t)
	if err := rn.Render(&bytes.Buffer{}, "missing", "", &PageData{}); err == nil {
		t.Error("expected error for unknown template")
	}
}

func TestRenderPages(t *testing.T) {
	rn := newRenderer(t)
	q := models.DefaultQueryState()

	tests := []struct {
		name    string
		page    string
		block   string
		data    any
		want    []string
		notWant []string
	}{
		{
			name: "home",
			page: "home",
			data: HomePage{BookCount: 1, Featured: []models.DisplayRecord{book("b1", "ML 101", "technology")}},
			want: []string{"<!DOCTYPE html>", "ML 101", "/library/b1", "No articles yet.", "Technology"},
		},
		{
			name:  "library full page",
			page:  "library",
			data:  LibraryPage{Books: []models.DisplayRecord{book("b1", "ML 101", "technology")}, Total: 3, Query: q, Categories: models.BookCategories},
			want:  []string{"<!DOCTYPE html>", `hx-get="/library"`, "delay:300ms", "Showing 1 of 3 books", "ML 101", "120 pages"},
		},
		{
			name:    "library fragment",
			page:    "library",
			block:   "results",
			data:    LibraryPage{Books: []models.DisplayRecord{book("b1", "ML 101", "technology")}, Total: 1, Query: q},
			want:    []string{"Showing 1 of 1 book", "ML 101"},
			notWant: []string{"<!DOCTYPE html>", "<form"},
		},
		{
			name:  "library empty",
			page:  "library",
			block: "results",
			data:  LibraryPage{Books: []models.DisplayRecord{}, Total: 0, Query: q},
			want:  []string{"The library is empty"},
		},
		{
			name:  "library no matches",
			page:  "library",
			block: "results",
			data:  LibraryPage{Books: []models.DisplayRecord{}, Total: 4, Query: models.QueryState{Search: "zzz", Category: "All", Sort: models.SortNewest}},
			want:  []string{"No books found", "Showing 0 of 4 books"},
		},
		{
			name: "blog split",
			page: "blog",
			data: BlogPage{
				Featured: []models.DisplayRecord{post("p1", "Hero Post", true)},
				Regular:  []models.DisplayRecord{post("p2", "Plain Post", false)},
				Shown:    2, Total: 2, Query: q, Categories: []string{"General"},
			},
			want: []string{"Featured", "Hero Post", "Latest Articles", "Plain Post", "1 min read"},
		},
		{
			name: "blog empty",
			page: "blog",
			data: BlogPage{Query: q},
			want: []string{"No articles yet"},
		},
		{
			name: "book detail",
			page: "book",
			data: BookPage{
				Book:        models.Detail{DisplayRecord: book("b1", "ML 101", "technology"), BodyHTML: template.HTML("<p>Chapter one</p>")},
				DownloadURL: "https://files.example.com/ml.pdf?sig=1&x=2",
			},
			want: []string{"ML 101", "<p>Chapter one</p>", "Download", "https://files.example.com/ml.pdf?sig=1&amp;x=2"},
		},
		{
			name: "book without file",
			page: "book",
			data: BookPage{Book: models.Detail{DisplayRecord: book("b1", "ML 101", "technology")}},
			want: []string{"not available for download"},
		},
		{
			name: "post detail",
			page: "post",
			data: PostPage{
				Post:    models.Detail{DisplayRecord: post("p1", "Study <Habits>", false), AuthorBio: "Writes."},
				Related: []models.DisplayRecord{post("p2", "Other", false)},
			},
			want:    []string{"Study &lt;Habits&gt;", "About the author", "Writes.", "More articles", "Other"},
			notWant: []string{"Study <Habits>"},
		},
		{
			name: "not found",
			page: "not_found",
			data: NotFoundPage{Heading: "Book not found", Message: "Gone.", BackPath: "/library", BackLabel: "Back to library"},
			want: []string{"Book not found", `href="/library"`},
		},
		{
			name: "about",
			page: "about",
			want: []string{"About EduHansa", "Our mission", `href="/about" class="active"`},
		},
		{
			name: "contact",
			page: "contact",
			want: []string{"Contact EduHansa", `href="mailto:hello@eduhansa.com"`, `href="/contact" class="active"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := rn.Render(&buf, tt.page, tt.block, &PageData{Title: "T", Section: tt.page, Data: tt.data})
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			out := buf.String()
			for _, s := range tt.want {
				if !strings.Contains(out, s) {
					t.Errorf("output missing %q", s)
				}
			}
			for _, s := range tt.notWant {
				if strings.Contains(out, s) {
					t.Errorf("output should not contain %q", s)
				}
			}
		})
	}
}

func TestIsHTMX(t *testing.T) {
	req := httptest.NewRequest("GET", "/library", nil)
	if IsHTMX(req) {
		t.Error("plain request reported as HTMX")
	}
	req.Header.Set("HX-Request", "true")
	if !IsHTMX(req) {
		t.Error("HTMX request not detected")
	}
	req.Header.Set("HX-History-Restore-Request", "true")
	if IsHTMX(req) {
		t.Error("history restore must get the full page")
	}
}

func TestFuncMap(t *testing.T) {
	label := funcMap["categoryLabel"].(func(string) string)
	if got := label("technology"); got != "Technology" {
		t.Errorf("categoryLabel = %q", got)
	}

	trunc := funcMap["truncate"].(func(string, int) string)
	if got := trunc("héllo world", 5); got != "héllo…" {
		t.Errorf("truncate = %q", got)
	}
	if got := trunc("short", 10); got != "short" {
		t.Errorf("truncate = %q", got)
	}

	listURL := funcMap["listURL"].(func(string, models.QueryState) string)
	if got := listURL("/library", models.DefaultQueryState()); got != "/library" {
		t.Errorf("listURL(default) = %q", got)
	}
	if got := listURL("/library", models.QueryState{Search: "go", Category: "All", Sort: models.SortTitle}); got != "/library?q=go&sort=title" {
		t.Errorf("listURL = %q", got)
	}
}
