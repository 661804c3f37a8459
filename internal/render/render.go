// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the public site.
// It supports full-page and HTMX fragment rendering; callers decide which
// by checking IsHTMX.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"eduhansa/internal/models"
	"eduhansa/internal/query"
)

//go:embed templates/public/*.html
var publicFS embed.FS

// HTMXScript is the pinned htmx build loaded by every page.
const HTMXScript = "https://unpkg.com/htmx.org@2.0.4/dist/htmx.min.js"

// PageData holds all data passed to public templates.
type PageData struct {
	Title       string // Page title for <title> tag
	Description string // Meta description
	Section     string // Active nav section ("home", "library", "blog", "about", "contact")
	Data        any    // Page-specific data
}

// Renderer handles template parsing and execution for public pages.
type Renderer struct {
	templates map[string]*template.Template
}

// New creates a Renderer by parsing all public templates from the embedded
// filesystem. Each page template is paired with the base layout.
func New() (*Renderer, error) {
	r := &Renderer{templates: make(map[string]*template.Template)}

	entries, err := fs.ReadDir(publicFS, "templates/public")
	if err != nil {
		return nil, fmt.Errorf("read embedded templates: %w", err)
	}

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == "base.html" || !strings.HasSuffix(name, ".html") {
			continue
		}

		tmpl, err := template.New("base.html").Funcs(funcMap).ParseFS(
			publicFS, "templates/public/base.html", "templates/public/"+name,
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.templates[strings.TrimSuffix(name, ".html")] = tmpl
	}

	return r, nil
}

// Render executes a page into w. An empty block renders the full layout;
// otherwise only the named block is rendered, for HTMX swaps.
func (rn *Renderer) Render(w io.Writer, page, block string, data *PageData) error {
	tmpl, ok := rn.templates[page]
	if !ok {
		return fmt.Errorf("template %q not found", page)
	}
	if block == "" {
		block = "base.html"
	}
	if err := tmpl.ExecuteTemplate(w, block, data); err != nil {
		return fmt.Errorf("execute %s/%s: %w", page, block, err)
	}
	return nil
}

// Has reports whether a page template exists.
func (rn *Renderer) Has(page string) bool {
	_, ok := rn.templates[page]
	return ok
}

// IsHTMX returns true if the request was made by HTMX (has HX-Request
// header) and wants a fragment. History restores replace the whole body,
// so they are answered with the full page.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true" && r.Header.Get("HX-History-Restore-Request") != "true"
}

var funcMap = template.FuncMap{
	"htmxScript": func() string { return HTMXScript },
	"year":       func() int { return time.Now().Year() },

	// categoryLabel title-cases a category for display ("technology" ->
	// "Technology"). Casers are not safe for concurrent use.
	"categoryLabel": func(c string) string {
		return cases.Title(language.English).String(c)
	},

	"date": func(t time.Time) string {
		return t.Format("January 2, 2006")
	},
	"isoDate": func(t time.Time) string {
		return t.Format(time.RFC3339)
	},

	"eqFold": strings.EqualFold,

	// listURL builds a listing URL carrying the given query state.
	"listURL": func(path string, q models.QueryState) string {
		if enc := query.Values(q).Encode(); enc != "" {
			return path + "?" + enc
		}
		return path
	},
	"withCategory": func(q models.QueryState, c string) models.QueryState {
		q.Category = c
		return q
	},
	"pathEscape": url.PathEscape,

	"plural": func(n int, one, many string) string {
		if n == 1 {
			return one
		}
		return many
	},
	"truncate": func(s string, n int) string {
		if utf8.RuneCountInString(s) <= n {
			return s
		}
		return strings.TrimSpace(string([]rune(s)[:n])) + "…"
	},
	"sortKeys":       func() []models.SortKey { return models.SortKeys },
	"bookCategories": func() []string { return models.BookCategories },
}
