package query

import (
	"fmt"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"eduhansa/internal/models"
)

var base = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func rec(id, title, author, category string, day int, tags ...string) models.DisplayRecord {
	if tags == nil {
		tags = []string{}
	}
	return models.DisplayRecord{
		Kind:        models.KindBook,
		ID:          id,
		RouteKey:    id,
		Title:       title,
		Author:      author,
		Category:    category,
		Tags:        tags,
		PublishedAt: base.AddDate(0, 0, day),
	}
}

func ids(records []models.DisplayRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func sample() []models.DisplayRecord {
	return []models.DisplayRecord{
		rec("1", "Machine Learning 101", "Ada Lovelace", "technology", 3, "ai", "Python"),
		rec("2", "Balance Sheets", "Luca Pacioli", "business", 1, "finance"),
		rec("3", "The Cell", "Rosalind Franklin", "science", 5, "biology"),
		rec("4", "Deep Learning", "Geoffrey Hinton", "Technology", 2, "AI"),
		rec("5", "Éclair Baking", "Émile Henry", "arts", 4),
	}
}

func TestFilterSearch(t *testing.T) {
	tests := []struct {
		name   string
		search string
		want   []string
	}{
		{"empty matches all", "", []string{"1", "2", "3", "4", "5"}},
		{"whitespace matches all", "   ", []string{"1", "2", "3", "4", "5"}},
		{"title", "learning", []string{"1", "4"}},
		{"author case-insensitive", "ROSALIND", []string{"3"}},
		{"tag or title", "ai", []string{"1", "4", "5"}},
		{"padded term trimmed", " ai ", []string{"1", "4", "5"}},
		{"tag substring", "fin", []string{"2"}},
		{"unicode folding", "éclair", []string{"5"}},
		{"no match", "zebra", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := models.QueryState{Search: tt.search, Category: models.CategoryAll}
			if diff := cmp.Diff(tt.want, ids(Filter(sample(), q))); diff != "" {
				t.Errorf("Filter() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFilterCategory(t *testing.T) {
	tests := []struct {
		category string
		want     []string
	}{
		{models.CategoryAll, []string{"1", "2", "3", "4", "5"}},
		{"all", []string{"1", "2", "3", "4", "5"}},
		{"", []string{"1", "2", "3", "4", "5"}},
		{"technology", []string{"1", "4"}},
		{"SCIENCE", []string{"3"}},
		{"health", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			q := models.QueryState{Category: tt.category}
			if diff := cmp.Diff(tt.want, ids(Filter(sample(), q))); diff != "" {
				t.Errorf("Filter() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFilterSingleCategory(t *testing.T) {
	list := []models.DisplayRecord{
		rec("a", "One", "X", "A", 0),
		rec("b", "Two", "Y", "B", 0),
		rec("c", "Three", "Z", "A", 0),
	}
	got := Filter(list, models.QueryState{Category: "B"})
	if len(got) != 1 || got[0].ID != "b" {
		t.Errorf("Filter(category=B) = %v, want [b]", ids(got))
	}
}

func TestFilterSubsetProperty(t *testing.T) {
	for _, term := range []string{"a", "le", "AI", "henry", "x"} {
		got := Filter(sample(), models.QueryState{Search: term, Category: models.CategoryAll})
		lower := strings.ToLower(term)
		for _, r := range got {
			hit := strings.Contains(strings.ToLower(r.Title), lower) || strings.Contains(strings.ToLower(r.Author), lower)
			for _, tag := range r.Tags {
				hit = hit || strings.Contains(strings.ToLower(tag), lower)
			}
			if !hit {
				t.Errorf("term %q: record %s does not match", term, r.ID)
			}
		}
	}
}

func TestSortKeys(t *testing.T) {
	tests := []struct {
		key  models.SortKey
		want []string
	}{
		{models.SortNewest, []string{"3", "5", "1", "4", "2"}},
		{models.SortOldest, []string{"2", "4", "1", "5", "3"}},
		{models.SortTitle, []string{"2", "4", "5", "1", "3"}},
		{models.SortAuthor, []string{"1", "5", "4", "2", "3"}},
		{"bogus", []string{"1", "2", "3", "4", "5"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ids(Sort(sample(), tt.key))); diff != "" {
				t.Errorf("Sort() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSortOrderProperties(t *testing.T) {
	newest := Sort(sample(), models.SortNewest)
	for i := 1; i < len(newest); i++ {
		if newest[i].PublishedAt.After(newest[i-1].PublishedAt) {
			t.Errorf("newest: %s after %s", newest[i].ID, newest[i-1].ID)
		}
	}

	c := collate.New(language.Und)
	byTitle := Sort(sample(), models.SortTitle)
	for i := 1; i < len(byTitle); i++ {
		if c.CompareString(byTitle[i-1].Title, byTitle[i].Title) > 0 {
			t.Errorf("title: %q before %q", byTitle[i-1].Title, byTitle[i].Title)
		}
	}
}

func TestSortStable(t *testing.T) {
	same := []models.DisplayRecord{
		rec("first", "Same", "Same", "A", 7),
		rec("older", "Other", "Other", "A", 1),
		rec("second", "Same", "Same", "A", 7),
		rec("third", "Same", "Same", "A", 7),
	}

	tests := []struct {
		key  models.SortKey
		want []string
	}{
		{models.SortNewest, []string{"first", "second", "third", "older"}},
		{models.SortOldest, []string{"older", "first", "second", "third"}},
		{models.SortTitle, []string{"older", "first", "second", "third"}},
		{models.SortAuthor, []string{"older", "first", "second", "third"}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, ids(Sort(same, tt.key))); diff != "" {
			t.Errorf("Sort(%s) mismatch (-want +got):\n%s", tt.key, diff)
		}
	}
}

func TestSortDoesNotReorderInput(t *testing.T) {
	in := sample()
	Sort(in, models.SortTitle)
	if diff := cmp.Diff([]string{"1", "2", "3", "4", "5"}, ids(in)); diff != "" {
		t.Errorf("input reordered (-want +got):\n%s", diff)
	}
}

func TestApplyEmptySearchKeepsList(t *testing.T) {
	in := sample()
	// Sorting by an unknown key keeps store order, so the result must
	// equal the input exactly.
	got := Apply(in, models.QueryState{Category: models.CategoryAll, Sort: "none"})
	if diff := cmp.Diff(in, got); diff != "" {
		t.Errorf("Apply() mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyDeterministic(t *testing.T) {
	q := models.QueryState{Search: "l", Category: "technology", Sort: models.SortTitle}
	first := Apply(sample(), q)
	second := Apply(sample(), q)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Apply() not deterministic (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"4", "1"}, ids(first)); diff != "" {
		t.Errorf("Apply() mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyEmptyInput(t *testing.T) {
	got := Apply(nil, models.DefaultQueryState())
	if got == nil || len(got) != 0 {
		t.Errorf("Apply(nil) = %#v, want empty slice", got)
	}
}

func TestFromValues(t *testing.T) {
	long := strings.Repeat("é", 250)

	tests := []struct {
		name  string
		query string
		want  models.QueryState
	}{
		{"defaults", "", models.DefaultQueryState()},
		{"all fields", "q=+ml+&category=science&sort=title", models.QueryState{Search: "ml", Category: "science", Sort: models.SortTitle}},
		{"unknown sort", "sort=popular", models.DefaultQueryState()},
		{"sort case", "sort=OLDEST", models.QueryState{Category: models.CategoryAll, Sort: models.SortOldest}},
		{"all category", "category=all", models.DefaultQueryState()},
		{"long search", "q=" + url.QueryEscape(long), models.QueryState{Search: strings.Repeat("é", 200), Category: models.CategoryAll, Sort: models.SortNewest}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatal(err)
			}
			got := FromValues(v)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("FromValues() mismatch (-want +got):\n%s", diff)
			}
			if err := got.Validate(); err != nil {
				t.Errorf("normalized state fails validation: %v", err)
			}
		})
	}
}

func TestValuesRoundTrip(t *testing.T) {
	q := models.QueryState{Search: "go", Category: "technology", Sort: models.SortAuthor}
	if got := FromValues(Values(q)); got != q {
		t.Errorf("FromValues(Values(%v)) = %v", q, got)
	}
	if enc := Values(models.DefaultQueryState()).Encode(); enc != "" {
		t.Errorf("default state encodes to %q, want empty", enc)
	}
}

func TestPartitionAndFeatured(t *testing.T) {
	list := sample()
	list[1].Featured = true
	list[3].Featured = true
	list[4].Featured = true

	featured, regular := Partition(list)
	if diff := cmp.Diff([]string{"2", "4", "5"}, ids(featured)); diff != "" {
		t.Errorf("featured mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"1", "3"}, ids(regular)); diff != "" {
		t.Errorf("regular mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string{"2", "4"}, ids(Featured(list, 2))); diff != "" {
		t.Errorf("Featured(2) mismatch (-want +got):\n%s", diff)
	}
	if got := len(Featured(list, 0)); got != 3 {
		t.Errorf("Featured(0) returned %d records, want 3", got)
	}
}

func TestRelated(t *testing.T) {
	tests := []struct {
		id   string
		n    int
		want []string
	}{
		{"1", 3, []string{"2", "3", "4"}},
		{"3", 3, []string{"1", "2", "4"}},
		{"missing", 2, []string{"1", "2"}},
		{"1", 0, []string{}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%d", tt.id, tt.n), func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ids(Related(sample(), tt.id, tt.n))); diff != "" {
				t.Errorf("Related() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCategories(t *testing.T) {
	got := Categories(sample())
	want := []string{"arts", "business", "science", "technology"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Categories() mismatch (-want +got):\n%s", diff)
	}
}
