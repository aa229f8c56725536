/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package preview turns image paths into display rasters. Every image is
// scaled so its shorter side equals a fixed pixel count; anything that cannot
// be shown becomes a deterministic placeholder instead of an error.
package preview

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"

	"loraorganizer/internal/domain"
	applog "loraorganizer/internal/log"
)

const (
	DefaultShortSide = 300

	CaptionNoImageSelected = "No image selected"
	CaptionNoImageFound    = "No image found"
)

// Preview is the outcome of resolving one path. Image is never nil. Err is
// set (ErrNotFound or ErrDecode) when a placeholder stands in for a real
// image; an empty path yields a placeholder with a nil Err.
type Preview struct {
	Image       image.Image
	Width       int
	Height      int
	Placeholder bool
	Err         error
}

// CacheKey identifies one scaled rendition of a source file.
type CacheKey struct {
	Path      string
	Size      int64
	ModTime   int64  // unix nanoseconds
	Hash      uint64 // xxhash64 of the file content
	ShortSide int
}

// Cache stores PNG-encoded previews. Implementations must treat failures as
// misses; the resolver never surfaces cache errors.
type Cache interface {
	Get(key CacheKey) ([]byte, bool)
	Put(key CacheKey, pngData []byte)
}

// Resolver produces previews. The zero value is usable: it scales to
// DefaultShortSide and captions placeholders with CaptionNoImageFound.
type Resolver struct {
	ShortSide int
	Caption   string
	Cache     Cache
}

// NewResolver returns a resolver without a cache.
func NewResolver(shortSide int, caption string) *Resolver {
	return &Resolver{ShortSide: shortSide, Caption: caption}
}

func (r *Resolver) shortSide() int {
	if r == nil || r.ShortSide <= 0 {
		return DefaultShortSide
	}
	return r.ShortSide
}

func (r *Resolver) caption() string {
	if r == nil || r.Caption == "" {
		return CaptionNoImageFound
	}
	return r.Caption
}

// Placeholder returns the resolver's placeholder preview.
func (r *Resolver) Placeholder() Preview {
	return placeholderPreview(r.caption(), nil)
}

// Resolve loads, decodes and scales the image at path.
func (r *Resolver) Resolve(path string) Preview {
	l := applog.WithOperation(applog.WithComponent("preview"), "resolve")
	path = strings.TrimSpace(path)
	if path == "" {
		return placeholderPreview(r.caption(), nil)
	}
	fi, err := os.Stat(path)
	if err != nil {
		l.Debug("image unavailable", slog.String("path", path), slog.Any("err", err))
		return placeholderPreview(r.caption(), domain.IOError("preview", path, err))
	}
	if fi.IsDir() {
		return placeholderPreview(r.caption(), &domain.Error{Op: "preview", Path: path, Kind: domain.ErrDecode, Err: errors.New("is a directory")})
	}

	side := r.shortSide()
	var key CacheKey
	var cache Cache
	if r != nil {
		cache = r.Cache
	}
	if cache != nil {
		abs, aerr := filepath.Abs(path)
		if aerr != nil {
			abs = path
		}
		sum, herr := ContentHash(path)
		if herr != nil {
			l.Debug("image unreadable, skipping cache", slog.String("path", path), slog.Any("err", herr))
			cache = nil
		}
		key = CacheKey{Path: abs, Size: fi.Size(), ModTime: fi.ModTime().UnixNano(), Hash: sum, ShortSide: side}
	}
	if cache != nil {
		if data, ok := cache.Get(key); ok {
			if img, derr := png.Decode(bytes.NewReader(data)); derr == nil {
				b := img.Bounds()
				return Preview{Image: img, Width: b.Dx(), Height: b.Dy()}
			}
			l.Debug("cached preview unreadable", slog.String("path", path))
		}
	}

	src, err := Decode(path)
	if err != nil {
		l.Warn("image decode failed", slog.String("path", path), slog.Any("err", err))
		return placeholderPreview(r.caption(), err)
	}
	scaled := Scale(src, side)
	if cache != nil {
		if data, eerr := EncodePNG(scaled); eerr == nil {
			cache.Put(key, data)
		}
	}
	b := scaled.Bounds()
	return Preview{Image: scaled, Width: b.Dx(), Height: b.Dy()}
}

// ContentHash digests the file at path. Size and mod time alone miss an edit
// that keeps the length and restores the timestamp.
func ContentHash(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func placeholderPreview(caption string, err error) Preview {
	img := Placeholder(caption)
	return Preview{Image: img, Width: PlaceholderWidth, Height: PlaceholderHeight, Placeholder: true, Err: err}
}
