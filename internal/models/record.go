// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"html/template"
	"time"
)

// DisplayRecord is the render-ready projection of a book or post. Every
// field is resolved; missing source values are replaced by defaults.
// Exactly one of Book or Post is set, matching Kind.
type DisplayRecord struct {
	Kind        Kind      `json:"kind"`
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	RouteKey    string    `json:"route_key"` // Slug, or ID when the slug is missing
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	PublishedAt time.Time `json:"published_at"`
	CoverURL    string    `json:"cover_url"`
	Featured    bool      `json:"featured"`

	Book *BookDetails `json:"book,omitempty"`
	Post *PostDetails `json:"post,omitempty"`
}

// BookDetails carries the book-only fields of a DisplayRecord.
type BookDetails struct {
	Format  string `json:"format"`
	Pages   int    `json:"pages"`
	FileURL string `json:"file_url,omitempty"`
	FileKey string `json:"-"`
}

// PostDetails carries the post-only fields of a DisplayRecord.
type PostDetails struct {
	ReadTime    string `json:"read_time"`
	AuthorImage string `json:"author_image"`
}

// Path returns the public URL path of the record.
func (r DisplayRecord) Path() string {
	switch r.Kind {
	case KindBook:
		return "/library/" + r.RouteKey
	case KindPost:
		return "/blog/" + r.RouteKey
	}
	return "/"
}

// Detail is a DisplayRecord plus the long-form fields shown on a single
// book or post page.
type Detail struct {
	DisplayRecord
	BodyHTML  template.HTML `json:"body_html"`
	AuthorBio string        `json:"author_bio,omitempty"`
}
