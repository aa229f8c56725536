/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"loraorganizer/internal/domain"
	"loraorganizer/internal/storage"
)

func sampleEntries(t *testing.T) []storage.Entry {
	t.Helper()
	dir := t.TempDir()
	imgPath := filepath.Join(dir, "fox.png")
	f, err := os.Create(imgPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 60, 30))); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()

	recs := []domain.Record{
		{Name: "Red Fox", ModelType: "Pony", ImagePath: imgPath, Source: "civitai",
			Tags: []domain.Tag{{Label: "trigger", Value: "red fox"}, {Value: "forest"}}, Notes: "Café notes"},
		{Name: "No Image", ModelType: "SDXL"},
		{Name: "Missing Image", ImagePath: filepath.Join(dir, "gone.png")},
	}
	folder := filepath.Join(dir, "Character JSONs")
	for _, r := range recs {
		if _, err := storage.Save(folder, r, false); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(folder, "broken.json"), []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	ents, err := storage.List(folder)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	return ents
}

func TestCataloguePDF_CreatesFile(t *testing.T) {
	ents := sampleEntries(t)
	out := filepath.Join(t.TempDir(), "exports", "sheet.pdf")
	if err := Write(ents, out, Options{Category: domain.Characters, IncludeInvalid: true}); err != nil {
		t.Fatalf("Write pdf: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read pdf: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("output is not a PDF")
	}
	if len(data) < 1000 {
		t.Fatalf("pdf suspiciously small: %d bytes", len(data))
	}
}

func TestWritePDF_EmptyCatalogue(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePDF(&buf, nil, Options{Category: domain.Misc, Now: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)}); err != nil {
		t.Fatalf("WritePDF: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Fatalf("output is not a PDF")
	}
}

func TestContactSheetLayout(t *testing.T) {
	ents := sampleEntries(t)
	img := ContactSheet(ents, Options{Category: domain.Styles, Columns: 2})
	// three valid records, two columns: two rows
	wantW := 2*sheetMargin + 2*cellW
	wantH := sheetHeader + 2*sheetMargin + 2*cellH
	if b := img.Bounds(); b.Dx() != wantW || b.Dy() != wantH {
		t.Fatalf("sheet size = %v, want %dx%d", b, wantW, wantH)
	}
	if got := img.RGBAAt(1, 1); got != domain.Styles.AccentRGBA() {
		t.Fatalf("header colour = %v", got)
	}

	withInvalid := ContactSheet(ents, Options{Columns: 2, IncludeInvalid: true})
	if withInvalid.Bounds().Dy() != wantH {
		t.Fatalf("four items in two columns should still be two rows")
	}
}

func TestContactSheetPNG_WritesFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "sheet.PNG")
	if err := Write(sampleEntries(t), out, Options{}); err != nil {
		t.Fatalf("Write png: %v", err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := png.Decode(f); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestWriteRejectsUnknownFormat(t *testing.T) {
	err := Write(nil, filepath.Join(t.TempDir(), "sheet.docx"), Options{})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}
