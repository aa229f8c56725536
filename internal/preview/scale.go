/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package preview

import (
	"fmt"
	"image"
	"image/draw"
	"math"
	"os"

	// Registered decoders: PNG, JPEG and GIF from the standard library,
	// WebP and BMP from x/image.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"loraorganizer/internal/domain"
)

// Decode reads and decodes the image file at path. Every failure, including
// a zero-sized image, is reported as ErrDecode except a failed open.
func Decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.IOError("decode", path, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, &domain.Error{Op: "decode", Path: path, Kind: domain.ErrDecode, Err: err}
	}
	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, &domain.Error{Op: "decode", Path: path, Kind: domain.ErrDecode, Err: fmt.Errorf("empty image %dx%d", b.Dx(), b.Dy())}
	}
	return img, nil
}

// ScaledSize applies the preview rule: a uniform factor shortSide/min(w,h)
// on both axes, rounded, at least 1px each. The long side is not clamped.
func ScaledSize(w, h, shortSide int) (int, int) {
	if w <= 0 || h <= 0 {
		return 1, 1
	}
	if shortSide <= 0 {
		shortSide = DefaultShortSide
	}
	scale := float64(shortSide) / float64(min(w, h))
	nw := max(1, int(math.Round(float64(w)*scale)))
	nh := max(1, int(math.Round(float64(h)*scale)))
	return nw, nh
}

// Scale resamples src to ScaledSize using Catmull-Rom.
func Scale(src image.Image, shortSide int) *image.RGBA {
	b := src.Bounds()
	nw, nh := ScaledSize(b.Dx(), b.Dy(), shortSide)
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	if nw == b.Dx() && nh == b.Dy() {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
		return dst
	}
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst
}
