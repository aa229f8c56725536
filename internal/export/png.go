/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"loraorganizer/internal/storage"
)

// Contact sheet geometry in pixels.
const (
	sheetMargin  = 10
	sheetHeader  = 40
	cellW        = 220
	cellH        = 240
	thumbBox     = 200
	captionLines = 2
)

var (
	sheetBG      = color.RGBA{R: 30, G: 30, B: 30, A: 255}
	sheetText    = color.RGBA{R: 230, G: 230, B: 230, A: 255}
	sheetInvalid = color.RGBA{R: 200, G: 80, B: 80, A: 255}
)

// ContactSheetPNG writes a grid of record previews with their names.
func ContactSheetPNG(entries []storage.Entry, outPath string, opt Options) error {
	img := ContactSheet(entries, opt)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close png: %w", err)
	}
	return nil
}

// ContactSheet renders the grid in memory.
func ContactSheet(entries []storage.Entry, opt Options) *image.RGBA {
	opt = opt.defaults()
	items := collect(entries, opt)
	cols := max(1, min(opt.Columns, len(items)))
	rows := (len(items) + cols - 1) / cols
	w := 2*sheetMargin + cols*cellW
	h := sheetHeader + 2*sheetMargin + rows*cellH

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: sheetBG}, image.Point{}, draw.Src)
	fillRect(img, 0, 0, w-1, sheetHeader-1, opt.Category.AccentRGBA())
	drawText(img, sheetMargin, sheetHeader/2+4, opt.Title, sheetText)

	for i, it := range items {
		cx := sheetMargin + (i%cols)*cellW + (cellW-thumbBox)/2
		cy := sheetHeader + sheetMargin + (i/cols)*cellH
		fitInto(img, image.Rect(cx, cy, cx+thumbBox, cy+thumbBox), it.preview.Image)

		caption, col := it.entry.DisplayName(), sheetText
		if !it.entry.Valid() {
			col = sheetInvalid
		}
		for j, line := range wrapLines(basicfont.Face7x13, caption, thumbBox, captionLines) {
			drawText(img, cx, cy+thumbBox+16+j*14, line, col)
		}
	}
	return img
}

// fitInto scales src to the largest size that fits box and centres it.
func fitInto(dst *image.RGBA, box image.Rectangle, src image.Image) {
	sb := src.Bounds()
	if sb.Dx() <= 0 || sb.Dy() <= 0 {
		return
	}
	bw, bh := box.Dx(), box.Dy()
	w, h := bw, sb.Dy()*bw/sb.Dx()
	if h > bh {
		h, w = bh, sb.Dx()*bh/sb.Dy()
	}
	w, h = max(1, w), max(1, h)
	x := box.Min.X + (bw-w)/2
	y := box.Min.Y + (bh-h)/2
	xdraw.ApproxBiLinear.Scale(dst, image.Rect(x, y, x+w, y+h), src, sb, xdraw.Over, nil)
}

func drawText(img *image.RGBA, x, y int, s string, col color.RGBA) {
	d := &font.Drawer{Dst: img, Src: image.NewUniform(col), Face: basicfont.Face7x13, Dot: fixed.P(x, y)}
	d.DrawString(s)
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			img.SetRGBA(x, y, col)
		}
	}
}
