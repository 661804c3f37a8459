package render

import "eduhansa/internal/models"

// HomePage is the data of the home page.
type HomePage struct {
	BookCount int
	Featured  []models.DisplayRecord // featured books
	Latest    []models.DisplayRecord // newest posts
}

// LibraryPage is the data of the book listing and its HTMX fragment.
type LibraryPage struct {
	Books      []models.DisplayRecord // after filter and sort
	Total      int                    // before filtering
	Query      models.QueryState
	Categories []string
}

// BlogPage is the data of the post listing and its HTMX fragment.
type BlogPage struct {
	Featured   []models.DisplayRecord
	Regular    []models.DisplayRecord
	Shown      int
	Total      int
	Query      models.QueryState
	Categories []string
}

// BookPage is the data of a single book page.
type BookPage struct {
	Book        models.Detail
	DownloadURL string
}

// PostPage is the data of a single post page.
type PostPage struct {
	Post    models.Detail
	Related []models.DisplayRecord
}

// NotFoundPage is the data of the 404 page.
type NotFoundPage struct {
	Heading   string
	Message   string
	BackPath  string
	BackLabel string
}
