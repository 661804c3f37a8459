// Package fixtures turns hand-written content (YAML datasets and markdown
// posts with front matter) into documents for the document store. It backs
// the development seed and the import CLI.
package fixtures

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"eduhansa/internal/slug"
	"eduhansa/internal/store"
)

//go:embed sample.yaml
var sampleDataset []byte

// idNamespace seeds deterministic ids for documents imported without one,
// so re-importing the same file updates rather than duplicates.
var idNamespace = uuid.MustParse("6f1c9a52-3b0e-4d7a-9a43-2f6f0e8d51c4")

var idPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

var documentTypes = []any{"book", "post", store.TypeAuthor, store.TypeCategory}

// Writer is the subset of the document store used for imports.
type Writer interface {
	Upsert(ctx context.Context, d store.Document) error
	Count(ctx context.Context, docType string) (int, error)
}

// dataset is the top-level shape of a YAML fixture file.
type dataset struct {
	Documents []map[string]any `yaml:"documents"`
}

// Decode reads a YAML dataset and converts every entry into a document.
// The first invalid entry aborts decoding; its position is in the error.
func Decode(r io.Reader) ([]store.Document, error) {
	var ds dataset
	if err := yaml.NewDecoder(r).Decode(&ds); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode dataset: %w", err)
	}

	docs := make([]store.Document, 0, len(ds.Documents))
	for i, raw := range ds.Documents {
		d, err := ToDocument(raw)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i+1, err)
		}
		docs = append(docs, d)
	}
	return docs, nil
}

// ToDocument validates one decoded entry and normalizes it into the stored
// form. `_type` is required. Missing ids and slugs are derived from the
// title; string references on posts become {"_ref": id} objects.
func ToDocument(raw map[string]any) (store.Document, error) {
	data := make(map[string]any, len(raw))
	for k, v := range raw {
		data[k] = v
	}
	docType, _ := data["_type"].(string)
	id, _ := data["_id"].(string)
	delete(data, "_type")
	delete(data, "_id")

	err := validation.Errors{
		"_type": validation.Validate(docType, validation.Required, validation.In(documentTypes...)),
		"_id":   validation.Validate(id, validation.Length(1, 128), validation.Match(idPattern)),
	}.Filter()
	if err != nil {
		return store.Document{}, err
	}

	if docType == "book" || docType == "post" {
		normalizeSlug(data)
	}
	if docType == "post" {
		normalizeRefs(data)
	}

	publishedAt, err := normalizeDate(data)
	if err != nil {
		return store.Document{}, err
	}

	if id == "" {
		id = deriveID(docType, data)
	}

	payload, err := marshalJSON(data)
	if err != nil {
		return store.Document{}, fmt.Errorf("encode %s: %w", id, err)
	}
	return store.Document{ID: id, Type: docType, PublishedAt: publishedAt, Data: payload}, nil
}

// postMeta is the front matter of a markdown post. Unknown keys are kept.
type postMeta struct {
	ID    string         `yaml:"_id"`
	Extra map[string]any `yaml:",inline"`
}

// yamlFormat parses front matter with yaml.v3 so nested maps decode with
// string keys.
var yamlFormat = frontmatter.NewFormat("---", "---", yaml.Unmarshal)

// ParsePost reads a markdown file with YAML front matter and returns a post
// document whose body is the markdown after the front matter. name is used
// as the slug when the front matter has neither slug nor title.
func ParsePost(r io.Reader, name string) (store.Document, error) {
	var meta postMeta
	body, err := frontmatter.MustParse(r, &meta, yamlFormat)
	if err != nil {
		return store.Document{}, fmt.Errorf("parse front matter: %w", err)
	}

	raw := meta.Extra
	if raw == nil {
		raw = make(map[string]any)
	}
	raw["_type"] = "post"
	if meta.ID != "" {
		raw["_id"] = meta.ID
	}
	if _, ok := raw["slug"]; !ok {
		if _, ok := raw["title"]; !ok {
			raw["slug"] = strings.TrimSuffix(name, ".md")
		}
	}
	if b := strings.TrimSpace(string(body)); b != "" {
		raw["body"] = b
	}
	return ToDocument(raw)
}

// Import writes docs to the store in order.
func Import(ctx context.Context, w Writer, docs []store.Document) error {
	for _, d := range docs {
		if err := w.Upsert(ctx, d); err != nil {
			return err
		}
	}
	return nil
}

// Seed loads the bundled sample library when the store holds no books.
// It returns the number of documents written.
func Seed(ctx context.Context, w Writer) (int, error) {
	n, err := w.Count(ctx, "book")
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	return SeedSample(ctx, w)
}

// SeedSample writes the bundled sample library unconditionally.
func SeedSample(ctx context.Context, w Writer) (int, error) {
	docs, err := Decode(bytes.NewReader(sampleDataset))
	if err != nil {
		return 0, fmt.Errorf("sample dataset: %w", err)
	}
	if err := Import(ctx, w, docs); err != nil {
		return 0, err
	}
	return len(docs), nil
}

// normalizeSlug accepts `slug: text` as shorthand for {current: text} and
// derives a slug from the title when none is given.
func normalizeSlug(data map[string]any) {
	switch s := data["slug"].(type) {
	case string:
		data["slug"] = map[string]any{"current": slug.Generate(s)}
		return
	case map[string]any:
		return
	}
	if title, ok := data["title"].(string); ok {
		if g := slug.Generate(title); g != "" {
			data["slug"] = map[string]any{"current": g}
		}
	}
}

// normalizeRefs turns `author: id` and `categories: [id, ...]` into
// reference objects. Inline objects are left alone.
func normalizeRefs(data map[string]any) {
	if ref, ok := data["author"].(string); ok {
		data["author"] = map[string]any{"_ref": ref}
	}
	cats, ok := data["categories"].([]any)
	if !ok {
		return
	}
	for i, c := range cats {
		if ref, ok := c.(string); ok {
			cats[i] = map[string]any{"_ref": ref}
		}
	}
}

// normalizeDate parses publishedAt (RFC 3339 or YYYY-MM-DD) and rewrites it
// as an RFC 3339 string.
func normalizeDate(data map[string]any) (*time.Time, error) {
	v, ok := data["publishedAt"]
	if !ok || v == nil {
		return nil, nil
	}

	var t time.Time
	switch val := v.(type) {
	case time.Time:
		t = val
	case string:
		parsed, err := parseDate(val)
		if err != nil {
			return nil, validation.Errors{"publishedAt": err}
		}
		t = parsed
	default:
		return nil, validation.Errors{"publishedAt": fmt.Errorf("must be a date")}
	}

	t = t.UTC()
	data["publishedAt"] = t.Format(time.RFC3339)
	return &t, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("must be a date (YYYY-MM-DD or RFC 3339)")
}

// deriveID builds a stable id from the document's slug, name or title.
func deriveID(docType string, data map[string]any) string {
	key := ""
	if s, ok := data["slug"].(map[string]any); ok {
		key, _ = s["current"].(string)
	}
	for _, field := range []string{"name", "title"} {
		if key != "" {
			break
		}
		if v, ok := data[field].(string); ok {
			key = slug.Generate(v)
		}
	}
	if key == "" {
		return uuid.NewString()
	}
	return uuid.NewSHA1(idNamespace, []byte(docType+":"+key)).String()
}
