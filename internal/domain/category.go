/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"image/color"
	"strconv"
	"strings"
)

// Category groups records into one of three fixed storage folders.
type Category string

const (
	Characters Category = "Characters"
	Styles     Category = "Styles"
	Misc       Category = "Misc"
)

// DefaultCategory is used when no valid preference is stored.
const DefaultCategory = Characters

// FallbackAccent is the accent colour for unknown categories.
const FallbackAccent = "#1a1a1a"

type categoryInfo struct {
	folder string
	accent string
}

var categories = map[Category]categoryInfo{
	Characters: {folder: "Character JSONs", accent: "#343334"},
	Styles:     {folder: "Style JSONs", accent: "#551111"},
	Misc:       {folder: "Misc JSONs", accent: "#113311"},
}

// Categories lists the categories in display order.
func Categories() []Category { return []Category{Characters, Styles, Misc} }

// ParseCategory matches a category by name, ignoring case and surrounding space.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range Categories() {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}

// Valid reports whether c is one of the fixed categories.
func (c Category) Valid() bool {
	_, ok := categories[c]
	return ok
}

// ResolveFolder returns the storage folder name for c. Unknown categories map
// to the Characters folder.
func ResolveFolder(c Category) string {
	if info, ok := categories[c]; ok {
		return info.folder
	}
	return categories[Characters].folder
}

// Accent returns the presentation colour of c as #rrggbb.
func (c Category) Accent() string {
	if info, ok := categories[c]; ok {
		return info.accent
	}
	return FallbackAccent
}

// AccentRGBA is Accent as an opaque colour.
func (c Category) AccentRGBA() color.RGBA {
	h := strings.TrimPrefix(c.Accent(), "#")
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil || len(h) != 6 {
		return color.RGBA{R: 0x1a, G: 0x1a, B: 0x1a, A: 0xff}
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}

func (c Category) String() string { return string(c) }
