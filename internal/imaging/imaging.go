// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging inspects cover images before they are uploaded. It reads
// only the image header, so large files are inspected without decoding pixels.
// JPEG, PNG, GIF and WebP are recognised.
package imaging

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	_ "golang.org/x/image/webp"
)

// MinCoverWidth is the narrowest cover accepted for import. Narrower images
// look blurry on the library grid.
const MinCoverWidth = 200

// ErrUnsupported is returned for data that is not a recognised image.
var ErrUnsupported = errors.New("imaging: unsupported image format")

// Info describes an inspected image.
type Info struct {
	Width       int
	Height      int
	Format      string // as registered with image: "jpeg", "png", "gif", "webp"
	ContentType string
	Ext         string // file extension without the dot
}

var formats = map[string]struct{ contentType, ext string }{
	"jpeg": {"image/jpeg", "jpg"},
	"png":  {"image/png", "png"},
	"gif":  {"image/gif", "gif"},
	"webp": {"image/webp", "webp"},
}

// Inspect reads the image header from r and reports its dimensions and format.
func Inspect(r io.Reader) (Info, error) {
	cfg, format, err := image.DecodeConfig(bufio.NewReader(r))
	if errors.Is(err, image.ErrFormat) {
		return Info{}, ErrUnsupported
	}
	if err != nil {
		return Info{}, fmt.Errorf("imaging: reading header failed: %w", err)
	}

	f, ok := formats[format]
	if !ok {
		return Info{}, ErrUnsupported
	}
	return Info{
		Width:       cfg.Width,
		Height:      cfg.Height,
		Format:      format,
		ContentType: f.contentType,
		Ext:         f.ext,
	}, nil
}

// CheckCover reports whether an inspected image is usable as a book cover.
func CheckCover(info Info) error {
	if info.Width < MinCoverWidth {
		return fmt.Errorf("imaging: cover is %dpx wide, need at least %dpx", info.Width, MinCoverWidth)
	}
	if info.Height < info.Width {
		return fmt.Errorf("imaging: cover is landscape (%dx%d)", info.Width, info.Height)
	}
	return nil
}
