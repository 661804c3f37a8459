// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eduhansa/internal/models"
)

// Document types that are referenced by posts but never listed directly.
const (
	TypeAuthor   = "author"
	TypeCategory = "category"
)

// Document is a stored document in its wire form, used for writes.
type Document struct {
	ID          string
	Type        string
	PublishedAt *time.Time
	Data        json.RawMessage
}

// reference is a pointer to another document ({"_ref": "id"}).
type reference struct {
	Ref string `json:"_ref"`
}

// postRefs holds the unresolved references of a post document.
type postRefs struct {
	Author     *reference  `json:"author"`
	Categories []reference `json:"categories"`
}

// DocumentStore reads and writes documents in the documents table. It plays
// the role of the remote content store: callers get raw documents with
// references already resolved.
type DocumentStore struct {
	db *sql.DB
}

// NewDocumentStore creates a new DocumentStore with the given database connection.
func NewDocumentStore(db *sql.DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// List returns every document of the given kind, newest first. Documents
// without a publish date sort last; ties are broken by id.
func (s *DocumentStore) List(ctx context.Context, kind models.Kind) ([]models.RawDocument, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, data
		FROM documents
		WHERE type = $1
		ORDER BY published_at DESC NULLS LAST, id
	`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []models.RawDocument
	var refs []postRefs
	for rows.Next() {
		var id string
		var data []byte
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		doc, r := decode(id, kind, data)
		docs = append(docs, doc)
		refs = append(refs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	if kind == models.KindPost {
		if err := s.resolvePosts(ctx, docs, refs); err != nil {
			return nil, err
		}
	}
	return docs, nil
}

// FindBySlug returns the document of the given kind whose slug matches key.
// Stored slugs are trimmed; a document whose slug is missing or blank is
// addressed by its id instead. Returns nil if nothing matches.
func (s *DocumentStore) FindBySlug(ctx context.Context, kind models.Kind, key string) (*models.RawDocument, error) {
	var id string
	var data []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT id, data
		FROM documents
		WHERE type = $1
		  AND (slug = $2 OR (slug IS NULL AND id = $2))
		LIMIT 1
	`, string(kind), key).Scan(&id, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find document by slug: %w", err)
	}

	doc, refs := decode(id, kind, data)
	if kind == models.KindPost {
		docs := []models.RawDocument{doc}
		if err := s.resolvePosts(ctx, docs, []postRefs{refs}); err != nil {
			return nil, err
		}
		doc = docs[0]
	}
	return &doc, nil
}

// Upsert inserts a document or replaces the stored one with the same id.
func (s *DocumentStore) Upsert(ctx context.Context, d Document) error {
	data := d.Data
	if len(data) == 0 {
		data = json.RawMessage(`{}`)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, type, published_at, data)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			type = EXCLUDED.type,
			published_at = EXCLUDED.published_at,
			data = EXCLUDED.data,
			updated_at = NOW()
	`, d.ID, d.Type, d.PublishedAt, []byte(data))
	if err != nil {
		return fmt.Errorf("upsert document %s: %w", d.ID, err)
	}
	return nil
}

// HasSlug reports whether a document with the given type and slug exists.
func (s *DocumentStore) HasSlug(ctx context.Context, docType, slug string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM documents WHERE type = $1 AND slug = $2)
	`, docType, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check %s slug: %w", docType, err)
	}
	return exists, nil
}

// SetField replaces one top-level field of the document with the given type
// and slug. It reports false when no document matches.
func (s *DocumentStore) SetField(ctx context.Context, docType, slug, field string, value json.RawMessage) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE documents
		SET data = jsonb_set(data, ARRAY[$3::text], $4::jsonb, true), updated_at = NOW()
		WHERE type = $1 AND slug = $2
	`, docType, slug, field, []byte(value))
	if err != nil {
		return false, fmt.Errorf("set %s on %s %s: %w", field, docType, slug, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("set %s: %w", field, err)
	}
	return n > 0, nil
}

// Delete removes a document by id.
func (s *DocumentStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// Count returns the number of documents of the given type.
func (s *DocumentStore) Count(ctx context.Context, docType string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE type = $1`, docType).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return count, nil
}

// resolvePosts replaces author and category references in docs with the
// referenced documents, fetched in one query. Dangling references resolve
// to nothing.
func (s *DocumentStore) resolvePosts(ctx context.Context, docs []models.RawDocument, refs []postRefs) error {
	var ids []string
	seen := make(map[string]bool)
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, r := range refs {
		if r.Author != nil {
			add(r.Author.Ref)
		}
		for _, c := range r.Categories {
			add(c.Ref)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, data FROM documents WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return fmt.Errorf("resolve references: %w", err)
	}
	defer rows.Close()

	authors := make(map[string]*models.RawAuthor)
	categories := make(map[string]models.RawCategory)
	for rows.Next() {
		var id, typ string
		var data []byte
		if err := rows.Scan(&id, &typ, &data); err != nil {
			return fmt.Errorf("scan reference: %w", err)
		}
		switch typ {
		case TypeAuthor:
			var a models.RawAuthor
			tolerate(id, json.Unmarshal(data, &a))
			authors[id] = &a
		case TypeCategory:
			var c models.RawCategory
			tolerate(id, json.Unmarshal(data, &c))
			categories[id] = c
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate references: %w", err)
	}

	for i, r := range refs {
		post := docs[i].Post
		if post == nil {
			continue
		}
		if r.Author != nil && r.Author.Ref != "" {
			post.Author = authors[r.Author.Ref]
		}
		if len(r.Categories) > 0 {
			resolved := make([]models.RawCategory, 0, len(r.Categories))
			for j, c := range r.Categories {
				if c.Ref == "" {
					// Inline category object, already decoded.
					if j < len(post.Categories) {
						resolved = append(resolved, post.Categories[j])
					}
					continue
				}
				if cat, ok := categories[c.Ref]; ok {
					resolved = append(resolved, cat)
				}
			}
			post.Categories = resolved
		}
	}
	return nil
}

// decode turns stored JSON into a RawDocument. Field type mismatches are
// logged and the remaining fields kept.
func decode(id string, kind models.Kind, data []byte) (models.RawDocument, postRefs) {
	doc := models.RawDocument{ID: id, Kind: kind}
	var refs postRefs

	switch kind {
	case models.KindBook:
		var b models.RawBook
		tolerate(id, json.Unmarshal(data, &b))
		doc.Book = &b
	case models.KindPost:
		var p models.RawPost
		tolerate(id, json.Unmarshal(data, &p))
		tolerate(id, json.Unmarshal(data, &refs))
		// Inline author objects are kept; references are resolved later.
		if refs.Author != nil && refs.Author.Ref != "" {
			p.Author = nil
		}
		doc.Post = &p
	}
	return doc, refs
}

// tolerate logs a decoding error without failing the read. JSONB is always
// syntactically valid, so errors here are type mismatches on single fields.
func tolerate(id string, err error) {
	if err != nil {
		slog.Warn("document has malformed fields", "id", id, "error", err)
	}
}
