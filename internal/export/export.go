/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders a category's records as a printable catalogue
// sheet: a PDF with one block per record, or a PNG contact sheet of the
// primary previews.
package export

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"loraorganizer/internal/domain"
	applog "loraorganizer/internal/log"
	"loraorganizer/internal/preview"
	"loraorganizer/internal/storage"
)

// ErrUnsupportedFormat is returned for an output extension with no exporter.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Options controls both exporters. Zero values are filled in by defaults().
type Options struct {
	Title          string
	Category       domain.Category
	Resolver       *preview.Resolver
	IncludeInvalid bool      // list unreadable files by name
	Columns        int       // contact sheet only; default 4
	Now            time.Time // stamp printed in the header; default time.Now
}

func (o Options) defaults() Options {
	if o.Resolver == nil {
		o.Resolver = preview.NewResolver(preview.DefaultShortSide, preview.CaptionNoImageFound)
	}
	if !o.Category.Valid() {
		o.Category = domain.DefaultCategory
	}
	if strings.TrimSpace(o.Title) == "" {
		o.Title = "LoRA catalogue: " + o.Category.String()
	}
	if o.Columns <= 0 {
		o.Columns = 4
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	return o
}

// item is one record as it appears on a sheet.
type item struct {
	entry   storage.Entry
	preview preview.Preview
}

func collect(entries []storage.Entry, opt Options) []item {
	out := make([]item, 0, len(entries))
	for _, e := range entries {
		if !e.Valid() {
			if opt.IncludeInvalid {
				out = append(out, item{entry: e, preview: opt.Resolver.Placeholder()})
			}
			continue
		}
		out = append(out, item{entry: e, preview: opt.Resolver.Resolve(e.Record.ImagePath)})
	}
	return out
}

// Write exports entries to outPath, picking the format from its extension
// (.pdf or .png).
func Write(entries []storage.Entry, outPath string, opt Options) error {
	l := applog.WithOperation(applog.WithComponent("export"), "write").With(slog.String("out", outPath))
	var err error
	switch ext := strings.ToLower(filepath.Ext(outPath)); ext {
	case ".pdf":
		err = CataloguePDF(entries, outPath, opt)
	case ".png":
		err = ContactSheetPNG(entries, outPath, opt)
	default:
		return fmt.Errorf("%q: %w", ext, ErrUnsupportedFormat)
	}
	if err != nil {
		l.Error("export failed", slog.Any("err", err))
		return err
	}
	l.Info("export written", slog.Int("entries", len(entries)))
	return nil
}
