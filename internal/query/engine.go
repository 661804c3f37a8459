// Package query filters and sorts display records for a listing. Every
// call scans the whole list and returns a new slice; inputs are never
// reordered in place.
package query

import (
	"net/url"
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"eduhansa/internal/models"
)

// maxSearchRunes bounds the search term taken from a URL.
const maxSearchRunes = 200

// Apply filters records by q and sorts the matches by q.Sort.
func Apply(records []models.DisplayRecord, q models.QueryState) []models.DisplayRecord {
	return Sort(Filter(records, q), q.Sort)
}

// Filter returns the records matching both the search term and the
// category of q, in their original order. An empty term matches
// everything, as does the "All" category.
func Filter(records []models.DisplayRecord, q models.QueryState) []models.DisplayRecord {
	// Casers keep state between calls and are not safe for concurrent use.
	fold := cases.Fold()

	term := fold.String(strings.TrimSpace(q.Search))
	category := strings.TrimSpace(q.Category)
	anyCategory := category == "" || strings.EqualFold(category, models.CategoryAll)
	category = fold.String(category)

	out := make([]models.DisplayRecord, 0, len(records))
	for _, r := range records {
		if !anyCategory && fold.String(r.Category) != category {
			continue
		}
		if term != "" && !matches(fold, r, term) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// matches reports whether the title, author or any tag of r contains the
// already folded term.
func matches(fold cases.Caser, r models.DisplayRecord, term string) bool {
	if strings.Contains(fold.String(r.Title), term) || strings.Contains(fold.String(r.Author), term) {
		return true
	}
	for _, tag := range r.Tags {
		if strings.Contains(fold.String(tag), term) {
			return true
		}
	}
	return false
}

// Sort returns a copy of records ordered by key. The sort is stable, so
// records with equal keys keep their relative order. An unknown key leaves
// the order unchanged.
func Sort(records []models.DisplayRecord, key models.SortKey) []models.DisplayRecord {
	out := slices.Clone(records)
	if out == nil {
		out = []models.DisplayRecord{}
	}

	switch key {
	case models.SortNewest:
		slices.SortStableFunc(out, func(a, b models.DisplayRecord) int {
			return b.PublishedAt.Compare(a.PublishedAt)
		})
	case models.SortOldest:
		slices.SortStableFunc(out, func(a, b models.DisplayRecord) int {
			return a.PublishedAt.Compare(b.PublishedAt)
		})
	case models.SortTitle:
		c := collate.New(language.Und)
		slices.SortStableFunc(out, func(a, b models.DisplayRecord) int {
			return c.CompareString(a.Title, b.Title)
		})
	case models.SortAuthor:
		c := collate.New(language.Und)
		slices.SortStableFunc(out, func(a, b models.DisplayRecord) int {
			return c.CompareString(a.Author, b.Author)
		})
	}
	return out
}

// FromValues reads a QueryState from URL parameters q, category and sort.
// Bad input is normalized rather than rejected: a missing category means
// "All" and an unknown sort key means "newest".
func FromValues(v url.Values) models.QueryState {
	q := models.DefaultQueryState()

	q.Search = strings.TrimSpace(v.Get("q"))
	if utf8.RuneCountInString(q.Search) > maxSearchRunes {
		q.Search = string([]rune(q.Search)[:maxSearchRunes])
	}

	if c := strings.TrimSpace(v.Get("category")); c != "" && !strings.EqualFold(c, models.CategoryAll) {
		q.Category = c
	}

	if s := models.SortKey(strings.ToLower(strings.TrimSpace(v.Get("sort")))); s.Valid() {
		q.Sort = s
	}
	return q
}

// Values encodes q as URL parameters, omitting defaults.
func Values(q models.QueryState) url.Values {
	v := url.Values{}
	if q.Search != "" {
		v.Set("q", q.Search)
	}
	if q.Category != "" && q.Category != models.CategoryAll {
		v.Set("category", q.Category)
	}
	if q.Sort != "" && q.Sort != models.SortNewest {
		v.Set("sort", string(q.Sort))
	}
	return v
}

// Featured returns up to n featured records in their original order. A
// non-positive n returns all of them.
func Featured(records []models.DisplayRecord, n int) []models.DisplayRecord {
	featured, _ := Partition(records)
	if n > 0 && len(featured) > n {
		featured = featured[:n]
	}
	return featured
}

// Partition splits records into featured and regular ones, preserving
// order within each group.
func Partition(records []models.DisplayRecord) (featured, regular []models.DisplayRecord) {
	featured = []models.DisplayRecord{}
	regular = []models.DisplayRecord{}
	for _, r := range records {
		if r.Featured {
			featured = append(featured, r)
		} else {
			regular = append(regular, r)
		}
	}
	return featured, regular
}

// Related returns up to n records other than the one with the given id,
// in their original order.
func Related(records []models.DisplayRecord, id string, n int) []models.DisplayRecord {
	if n <= 0 {
		return []models.DisplayRecord{}
	}
	out := make([]models.DisplayRecord, 0, n)
	for _, r := range records {
		if len(out) == n {
			break
		}
		if r.ID != id {
			out = append(out, r)
		}
	}
	return out
}

// Categories returns the distinct categories of records, sorted for
// display. Case variants of the same category are reported once, using
// the first spelling seen.
func Categories(records []models.DisplayRecord) []string {
	fold := cases.Fold()
	seen := make(map[string]bool)
	out := []string{}
	for _, r := range records {
		k := fold.String(r.Category)
		if r.Category == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r.Category)
	}
	collate.New(language.Und, collate.IgnoreCase).SortStrings(out)
	return out
}
