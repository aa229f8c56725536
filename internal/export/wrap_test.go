/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"reflect"
	"testing"

	"golang.org/x/image/font/basicfont"
)

func TestWrapLines(t *testing.T) {
	face := basicfont.Face7x13 // 7 px per glyph
	cases := []struct {
		name     string
		in       string
		width    int
		maxLines int
		want     []string
	}{
		{"fits", "red fox", 70, 0, []string{"red fox"}},
		{"breaks on space", "red fox ears", 49, 0, []string{"red fox", "ears"}},
		{"collapses spaces", "  a   b  ", 70, 0, []string{"a b"}},
		{"cuts long word", "abcdefghij", 28, 0, []string{"abcd", "efgh", "ij"}},
		{"empty", "", 70, 0, []string{""}},
		{"limited", "one two three four", 35, 2, []string{"one", "two~"}},
	}
	for _, c := range cases {
		got := wrapLines(face, c.in, c.width, c.maxLines)
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("%s: wrapLines(%q, %d, %d) = %q, want %q", c.name, c.in, c.width, c.maxLines, got, c.want)
		}
	}
}
