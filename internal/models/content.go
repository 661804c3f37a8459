// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// Kind distinguishes books from blog posts. Both live in the same document
// store and are rendered by the same listing machinery, but each carries
// its own payload.
type Kind string

const (
	KindBook Kind = "book"
	KindPost Kind = "post"
)

// Valid reports whether k is one of the content kinds served by the site.
func (k Kind) Valid() bool {
	return k == KindBook || k == KindPost
}

// QueryTag names a predefined query against the document store.
type QueryTag string

const (
	QueryBooks QueryTag = "books" // all books, newest first
	QueryBook  QueryTag = "book"  // one book by slug
	QueryPosts QueryTag = "posts" // all posts, newest first
	QueryPost  QueryTag = "post"  // one post by slug
)

// RawDocument is an unprocessed document returned by the content store.
// Exactly one of Book or Post is set, matching Kind. Any optional field
// may be absent.
type RawDocument struct {
	ID   string   `json:"_id"`
	Kind Kind     `json:"_type"`
	Book *RawBook `json:"book,omitempty"`
	Post *RawPost `json:"post,omitempty"`
}

// SlugField mirrors the CMS slug object ({"current": "..."}).
type SlugField struct {
	Current string `json:"current"`
}

// AssetRef points at a stored image, either by asset reference id or by a
// direct URL.
type AssetRef struct {
	Ref string `json:"_ref,omitempty"`
	URL string `json:"url,omitempty"`
}

// ImageRef is the CMS image field ({"asset": {...}, "alt": "..."}).
type ImageRef struct {
	Asset *AssetRef `json:"asset,omitempty"`
	Alt   *string   `json:"alt,omitempty"`
}

// RawBook holds the fields of a book document as stored.
type RawBook struct {
	Title       *string    `json:"title"`
	Slug        *SlugField `json:"slug"`
	Author      *string    `json:"author"`
	Description *string    `json:"description"`
	Category    *string    `json:"category"`
	Tags        []string   `json:"tags"`
	CoverImage  *ImageRef  `json:"coverImage"`
	FileURL     *string    `json:"fileUrl"`
	FileKey     *string    `json:"fileKey"`
	FileType    *string    `json:"fileType"`
	Pages       *int       `json:"pages"`
	PublishedAt *string    `json:"publishedAt"`
	Featured    *bool      `json:"featured"`
	Content     *string    `json:"content"`
}

// RawAuthor is the dereferenced author of a post.
type RawAuthor struct {
	Name  *string   `json:"name"`
	Image *ImageRef `json:"image"`
	Bio   *string   `json:"bio"`
}

// RawCategory is a dereferenced post category.
type RawCategory struct {
	Title *string `json:"title"`
}

// RawPost holds the fields of a blog post with its references already
// resolved by the store.
type RawPost struct {
	Title       *string       `json:"title"`
	Slug        *SlugField    `json:"slug"`
	Excerpt     *string       `json:"excerpt"`
	MainImage   *ImageRef     `json:"mainImage"`
	PublishedAt *string       `json:"publishedAt"`
	Featured    *bool         `json:"featured"`
	Author      *RawAuthor    `json:"author"`
	Categories  []RawCategory `json:"categories"`
	Body        *string       `json:"body"`
}
