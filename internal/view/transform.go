// Package view maps raw store documents into render-ready records. Every
// function here is pure: no I/O and the input is never modified.
package view

import (
	"html/template"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"eduhansa/internal/markdown"
	"eduhansa/internal/models"
)

// Fallback values for fields missing from a document.
const (
	UntitledBook      = "Untitled"
	UntitledPost      = "Untitled Article"
	UnknownAuthor     = "Unknown Author"
	DefaultPostAuthor = "EduHansa Team"
	NoDescription     = "No description available."
	NoExcerpt         = "No excerpt available."
	DefaultFormat     = "PDF"
	BookPlaceholder   = "/static/placeholder.svg"
	AuthorPlaceholder = "/static/placeholder-user.svg"
	PostCoverFallback = "https://images.unsplash.com/photo-1486312338219-ce68d2c6f44d?w=500&h=300&fit=crop&crop=center"
)

const (
	charsPerMinute      = 200
	defaultExcerptChars = 300
)

// ImageResolver turns an image reference into a URL. assets.Resolver
// implements it.
type ImageResolver interface {
	URL(img *models.ImageRef) (string, bool)
}

// Transformer converts RawDocuments into DisplayRecords.
type Transformer struct {
	images ImageResolver
	now    func() time.Time
}

// New creates a Transformer. now supplies the fallback publish date for
// documents without one; nil means time.Now.
func New(images ImageResolver, now func() time.Time) *Transformer {
	if now == nil {
		now = time.Now
	}
	return &Transformer{images: images, now: now}
}

// Records transforms a list of documents into a new list of records in the
// same order. The fallback clock is read once for the whole pass.
func (t *Transformer) Records(docs []models.RawDocument) []models.DisplayRecord {
	now := t.now()
	out := make([]models.DisplayRecord, 0, len(docs))
	for _, d := range docs {
		out = append(out, t.record(d, now))
	}
	return out
}

// Record transforms a single document.
func (t *Transformer) Record(doc models.RawDocument) models.DisplayRecord {
	return t.record(doc, t.now())
}

// Detail transforms a document for its own page, adding the rendered body
// and, for posts, the author bio.
func (t *Transformer) Detail(doc models.RawDocument) models.Detail {
	d := models.Detail{DisplayRecord: t.Record(doc)}

	var body string
	switch doc.Kind {
	case models.KindBook:
		if doc.Book != nil {
			body = str(doc.Book.Content)
		}
	case models.KindPost:
		if doc.Post != nil {
			body = str(doc.Post.Body)
			if doc.Post.Author != nil {
				d.AuthorBio = strings.TrimSpace(str(doc.Post.Author.Bio))
			}
		}
	}
	d.BodyHTML = renderBody(body)
	return d
}

func (t *Transformer) record(doc models.RawDocument, now time.Time) models.DisplayRecord {
	switch doc.Kind {
	case models.KindBook:
		b := doc.Book
		if b == nil {
			b = &models.RawBook{}
		}
		return t.book(doc.ID, b, now)
	case models.KindPost:
		p := doc.Post
		if p == nil {
			p = &models.RawPost{}
		}
		return t.post(doc.ID, p, now)
	default:
		return models.DisplayRecord{
			Kind:        doc.Kind,
			ID:          doc.ID,
			RouteKey:    doc.ID,
			Title:       UntitledBook,
			Author:      UnknownAuthor,
			Description: NoDescription,
			Category:    models.CategoryGeneral,
			Tags:        []string{},
			PublishedAt: now,
			CoverURL:    BookPlaceholder,
		}
	}
}

func (t *Transformer) book(id string, b *models.RawBook, now time.Time) models.DisplayRecord {
	slug := slugOf(b.Slug)
	r := models.DisplayRecord{
		Kind:        models.KindBook,
		ID:          id,
		Slug:        slug,
		RouteKey:    routeKey(slug, id),
		Title:       orDefault(b.Title, UntitledBook),
		Author:      orDefault(b.Author, UnknownAuthor),
		Description: orDefault(b.Description, NoDescription),
		Category:    orDefault(b.Category, models.CategoryGeneral),
		Tags:        nonEmpty(b.Tags),
		PublishedAt: publishedAt(b.PublishedAt, now),
		CoverURL:    t.imageOr(b.CoverImage, BookPlaceholder),
		Featured:    b.Featured != nil && *b.Featured,
		Book: &models.BookDetails{
			Format:  strings.ToUpper(orDefault(b.FileType, DefaultFormat)),
			FileURL: strings.TrimSpace(str(b.FileURL)),
			FileKey: strings.TrimSpace(str(b.FileKey)),
		},
	}
	if b.Pages != nil && *b.Pages > 0 {
		r.Book.Pages = *b.Pages
	}
	return r
}

func (t *Transformer) post(id string, p *models.RawPost, now time.Time) models.DisplayRecord {
	slug := slugOf(p.Slug)

	author := DefaultPostAuthor
	authorImage := AuthorPlaceholder
	if p.Author != nil {
		author = orDefault(p.Author.Name, DefaultPostAuthor)
		authorImage = t.imageOr(p.Author.Image, AuthorPlaceholder)
	}

	tags := make([]string, 0, len(p.Categories))
	for _, c := range p.Categories {
		if title := strings.TrimSpace(str(c.Title)); title != "" {
			tags = append(tags, title)
		}
	}
	category := models.CategoryGeneral
	if len(tags) > 0 {
		category = tags[0]
	}

	return models.DisplayRecord{
		Kind:        models.KindPost,
		ID:          id,
		Slug:        slug,
		RouteKey:    routeKey(slug, id),
		Title:       orDefault(p.Title, UntitledPost),
		Author:      author,
		Description: orDefault(p.Excerpt, NoExcerpt),
		Category:    category,
		Tags:        tags,
		PublishedAt: publishedAt(p.PublishedAt, now),
		CoverURL:    t.imageOr(p.MainImage, PostCoverFallback),
		Featured:    p.Featured != nil && *p.Featured,
		Post: &models.PostDetails{
			ReadTime:    ReadTime(str(p.Excerpt)),
			AuthorImage: authorImage,
		},
	}
}

func (t *Transformer) imageOr(img *models.ImageRef, fallback string) string {
	if t.images == nil {
		return fallback
	}
	if u, ok := t.images.URL(img); ok && u != "" {
		return u
	}
	return fallback
}

// ReadTime estimates reading time from an excerpt at 200 characters per
// minute. An empty excerpt counts as 300 characters.
func ReadTime(excerpt string) string {
	n := utf8.RuneCountInString(excerpt)
	if n == 0 {
		n = defaultExcerptChars
	}
	minutes := int(math.Ceil(float64(n) / charsPerMinute))
	return strconv.Itoa(minutes) + " min read"
}

// publishedAt parses an RFC 3339 timestamp or a plain date. Anything else
// falls back to now.
func publishedAt(s *string, now time.Time) time.Time {
	v := strings.TrimSpace(str(s))
	if v == "" {
		return now
	}
	if ts, err := time.Parse(time.RFC3339, v); err == nil {
		return ts.UTC()
	}
	if ts, err := time.Parse(time.DateOnly, v); err == nil {
		return ts
	}
	return now
}

func renderBody(src string) template.HTML {
	if strings.TrimSpace(src) == "" {
		return ""
	}
	html, err := markdown.ToHTML(src)
	if err != nil {
		return template.HTML("<p>" + template.HTMLEscapeString(src) + "</p>")
	}
	// ToHTML output is sanitized.
	return template.HTML(html)
}

func slugOf(s *models.SlugField) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(s.Current)
}

func routeKey(slug, id string) string {
	if slug != "" {
		return slug
	}
	return id
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// orDefault returns the trimmed value of s, or fallback when s is nil or
// blank.
func orDefault(s *string, fallback string) string {
	if v := strings.TrimSpace(str(s)); v != "" {
		return v
	}
	return fallback
}

// nonEmpty copies tags, dropping blanks. The result is never nil.
func nonEmpty(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
