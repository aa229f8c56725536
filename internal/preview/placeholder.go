/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package preview

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	PlaceholderWidth  = 300
	PlaceholderHeight = 200
)

var (
	placeholderBG = color.RGBA{R: 50, G: 50, B: 50, A: 255}
	placeholderFG = color.RGBA{R: 220, G: 220, B: 220, A: 255}
)

// Placeholder renders the fallback raster: a solid canvas with the caption
// centred in the fixed 7x13 bitmap face. Output depends only on caption.
func Placeholder(caption string) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, PlaceholderWidth, PlaceholderHeight))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: placeholderBG}, image.Point{}, draw.Src)
	if caption == "" {
		return img
	}

	face := basicfont.Face7x13
	d := &font.Drawer{Dst: img, Src: image.NewUniform(placeholderFG), Face: face}
	m := face.Metrics()
	tw := d.MeasureString(caption).Ceil()
	th := (m.Ascent + m.Descent).Ceil()
	x := max(0, (PlaceholderWidth-tw)/2)
	y := (PlaceholderHeight-th)/2 + m.Ascent.Ceil()
	d.Dot = fixed.P(x, y)
	d.DrawString(caption)
	return img
}
