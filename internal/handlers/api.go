package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"eduhansa/internal/models"
	"eduhansa/internal/query"
	"eduhansa/internal/view"
)

// API serves books and posts as JSON. Unlike the HTML listings, it rejects
// invalid query parameters instead of normalizing them.
type API struct {
	content   ContentFetcher
	view      *view.Transformer
	presigner Presigner // nil serves fileUrl as is
}

// NewAPI creates the JSON API handlers. presigner may be nil.
func NewAPI(content ContentFetcher, tr *view.Transformer, presigner Presigner) *API {
	return &API{content: content, view: tr, presigner: presigner}
}

// listResponse is the body of a listing endpoint.
type listResponse struct {
	Items []models.DisplayRecord `json:"items"`
	Count int                    `json:"count"`
	Total int                    `json:"total"`
	Query models.QueryState      `json:"query"`
}

// detailResponse is the body of a single-document endpoint.
type detailResponse struct {
	models.Detail
	DownloadURL string `json:"download_url,omitempty"`
}

// Books handles GET /api/books.
func (a *API) Books() http.Handler {
	return apiHandler(func(w http.ResponseWriter, r *http.Request) error {
		return a.list(w, r, models.QueryBooks)
	})
}

// Posts handles GET /api/posts.
func (a *API) Posts() http.Handler {
	return apiHandler(func(w http.ResponseWriter, r *http.Request) error {
		return a.list(w, r, models.QueryPosts)
	})
}

// Book handles GET /api/books/{slug}.
func (a *API) Book() http.Handler {
	return apiHandler(func(w http.ResponseWriter, r *http.Request) error {
		return a.detail(w, r, models.QueryBook)
	})
}

// Post handles GET /api/posts/{slug}.
func (a *API) Post() http.Handler {
	return apiHandler(func(w http.ResponseWriter, r *http.Request) error {
		return a.detail(w, r, models.QueryPost)
	})
}

func (a *API) list(w http.ResponseWriter, r *http.Request, tag models.QueryTag) error {
	q, err := strictQuery(r)
	if err != nil {
		return err
	}

	records := a.view.Records(a.content.FetchList(r.Context(), tag))
	items := query.Apply(records, q)

	respondJSON(w, http.StatusOK, listResponse{
		Items: items,
		Count: len(items),
		Total: len(records),
		Query: q,
	})
	return nil
}

func (a *API) detail(w http.ResponseWriter, r *http.Request, tag models.QueryTag) error {
	doc, ok := a.content.FetchOne(r.Context(), tag, chi.URLParam(r, "slug"))
	if !ok {
		return errNotFound()
	}

	d := a.view.Detail(doc)
	link, _ := downloadURL(r.Context(), a.presigner, d.Book)
	respondJSON(w, http.StatusOK, detailResponse{
		Detail:      d,
		DownloadURL: link,
	})
	return nil
}

// strictQuery reads q, category and sort without normalizing them. Absent
// parameters take their defaults; present ones must validate.
func strictQuery(r *http.Request) (models.QueryState, error) {
	v := r.URL.Query()
	q := models.DefaultQueryState()
	if v.Has("q") {
		q.Search = strings.TrimSpace(v.Get("q"))
	}
	if v.Has("category") {
		q.Category = strings.TrimSpace(v.Get("category"))
	}
	if v.Has("sort") {
		q.Sort = models.SortKey(strings.TrimSpace(v.Get("sort")))
	}
	if err := q.Validate(); err != nil {
		return q, errBadRequest("invalid query: "+err.Error(), err)
	}
	return q, nil
}
