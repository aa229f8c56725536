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
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"loraorganizer/internal/preview"
	"loraorganizer/internal/storage"
	"loraorganizer/internal/version"
)

// Page geometry in millimetres (A4 portrait).
const (
	pageMargin = 15.0
	thumbMaxH  = 40.0
	thumbMaxW  = 60.0
	textOffset = thumbMaxW + 6
)

// CataloguePDF writes a multi-page A4 catalogue sheet to outPath.
func CataloguePDF(entries []storage.Entry, outPath string, opt Options) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create pdf: %w", err)
	}
	if err := WritePDF(f, entries, opt); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close pdf: %w", err)
	}
	return nil
}

// WritePDF renders the catalogue sheet to w.
func WritePDF(w io.Writer, entries []storage.Entry, opt Options) error {
	opt = opt.defaults()
	items := collect(entries, opt)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(opt.Title, true)
	pdf.SetCreator("loraorganizer "+version.String(), true)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-10)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 5, fmt.Sprintf("%d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 2*pageMargin
	accent := opt.Category.AccentRGBA()

	// Header band in the category accent.
	pdf.SetFillColor(int(accent.R), int(accent.G), int(accent.B))
	pdf.Rect(pageMargin, pageMargin, contentW, 14, "F")
	pdf.SetXY(pageMargin+3, pageMargin+2)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW-6, 10, tr(opt.Title), "", 0, "L", false, 0, "")
	pdf.SetXY(pageMargin+3, pageMargin+2)
	pdf.SetFont("Helvetica", "", 9)
	stamp := fmt.Sprintf("%d records, %s", len(items), opt.Now.Format("2006-01-02"))
	pdf.CellFormat(contentW-6, 10, stamp, "", 0, "R", false, 0, "")
	pdf.SetY(pageMargin + 20)
	pdf.SetTextColor(0, 0, 0)

	if len(items) == 0 {
		pdf.SetFont("Helvetica", "I", 11)
		pdf.CellFormat(contentW, 8, "No records in this category.", "", 1, "L", false, 0, "")
	}

	_, pageH := pdf.GetPageSize()
	for i, it := range items {
		if pdf.GetY()+thumbMaxH+4 > pageH-pageMargin {
			pdf.AddPage()
		}
		top := pdf.GetY()
		imgBottom := top
		if err := placeThumb(pdf, fmt.Sprintf("thumb-%d", i), it.preview, pageMargin, top); err == nil {
			imgBottom = top + thumbMaxH
		}

		pdf.SetXY(pageMargin+textOffset, top)
		textW := contentW - textOffset
		writeRecordText(pdf, tr, it, pageMargin+textOffset, textW)

		bottom := max(pdf.GetY(), imgBottom) + 3
		pdf.SetDrawColor(200, 200, 200)
		pdf.SetLineWidth(0.2)
		pdf.Line(pageMargin, bottom, pageMargin+contentW, bottom)
		pdf.SetY(bottom + 3)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// placeThumb registers the preview as a PNG and draws it inside the
// thumbnail box, keeping its aspect ratio.
func placeThumb(pdf *gofpdf.Fpdf, name string, pv preview.Preview, x, y float64) error {
	data, err := preview.EncodePNG(pv.Image)
	if err != nil {
		return err
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	if pdf.Err() {
		return pdf.Error()
	}
	w, h := float64(pv.Width), float64(pv.Height)
	if w <= 0 || h <= 0 {
		return fmt.Errorf("empty preview")
	}
	bh := thumbMaxH
	bw := bh * w / h
	if bw > thumbMaxW {
		bw = thumbMaxW
		bh = bw * h / w
	}
	pdf.ImageOptions(name, x+(thumbMaxW-bw)/2, y+(thumbMaxH-bh)/2, bw, bh, false, opts, 0, "")
	return nil
}

func writeRecordText(pdf *gofpdf.Fpdf, tr func(string) string, it item, x, w float64) {
	line := func(style string, size float64, h float64, s string) {
		pdf.SetX(x)
		pdf.SetFont("Helvetica", style, size)
		pdf.MultiCell(w, h, tr(s), "", "L", false)
	}
	e := it.entry
	if !e.Valid() {
		line("B", 12, 6, e.Name)
		pdf.SetTextColor(160, 30, 30)
		line("I", 9, 4.5, "Unreadable record file")
		pdf.SetTextColor(0, 0, 0)
		return
	}
	r := e.Record
	line("B", 12, 6, e.DisplayName())
	pdf.SetTextColor(90, 90, 90)
	line("", 8, 4, e.Name)
	pdf.SetTextColor(0, 0, 0)
	if r.ModelType != "" {
		line("", 9, 4.5, "Model type: "+r.ModelType)
	}
	if r.FileName != "" {
		line("", 9, 4.5, "File: "+r.FileName)
	}
	if r.Source != "" {
		line("", 9, 4.5, "Source: "+r.Source)
	}
	for _, t := range r.Tags {
		label := strings.TrimSpace(t.Label)
		if label == "" {
			label = "Tag"
		}
		line("", 9, 4.5, label+": "+t.Value)
	}
	if n := len(r.ExtraImages); n > 0 {
		line("", 9, 4.5, fmt.Sprintf("Extra images: %d", n))
	}
	if strings.TrimSpace(r.Notes) != "" {
		line("I", 9, 4.5, r.Notes)
	}
}
