// Package assets resolves image references from stored documents into
// URLs the browser can load.
package assets

import (
	"regexp"
	"strconv"
	"strings"

	"eduhansa/internal/models"
)

// PublicFiles serves objects from public storage. storage.Client
// implements it.
type PublicFiles interface {
	FileURL(key string) string
}

// refPattern matches CMS image asset references: image-<id>-<WxH>-<ext>.
var refPattern = regexp.MustCompile(`^image-([A-Za-z0-9]+)-(\d+x\d+)-([a-z0-9]+)$`)

// Resolver turns image references into URLs. Direct URLs are returned as
// they are; asset references map to a storage key under images/.
type Resolver struct {
	files   PublicFiles // nil when object storage is not configured
	baseURL string
}

// NewResolver creates a Resolver. When files is nil, keys are joined onto
// baseURL instead.
func NewResolver(files PublicFiles, baseURL string) *Resolver {
	return &Resolver{files: files, baseURL: strings.TrimRight(baseURL, "/")}
}

// URL returns the URL of the referenced image, or false when the reference
// is absent or cannot be resolved.
func (r *Resolver) URL(img *models.ImageRef) (string, bool) {
	if img == nil || img.Asset == nil {
		return "", false
	}
	if u := strings.TrimSpace(img.Asset.URL); u != "" {
		return u, true
	}

	key, ok := Key(img.Asset.Ref)
	if !ok {
		return "", false
	}
	if r.files != nil {
		return r.files.FileURL(key), true
	}
	return r.baseURL + "/" + key, true
}

// Key converts an asset reference into its storage key, e.g.
// "image-abc123-800x600-jpg" becomes "images/abc123-800x600.jpg".
func Key(ref string) (string, bool) {
	m := refPattern.FindStringSubmatch(strings.TrimSpace(ref))
	if m == nil {
		return "", false
	}
	return "images/" + m[1] + "-" + m[2] + "." + m[3], true
}

// Ref builds the asset reference for an image with the given id,
// dimensions and extension. It is the inverse of Key.
func Ref(id string, width, height int, ext string) string {
	return "image-" + id + "-" + strconv.Itoa(width) + "x" + strconv.Itoa(height) + "-" + strings.ToLower(strings.TrimPrefix(ext, "."))
}
