/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/image/font"
)

// wrapLines breaks s on spaces into lines no wider than maxWidth pixels when
// drawn with face. Words wider than a line are cut. With maxLines > 0 the
// output is limited and the last kept line ends in "~" when text was dropped.
func wrapLines(face font.Face, s string, maxWidth, maxLines int) []string {
	d := &font.Drawer{Face: face}
	width := func(t string) int { return d.MeasureString(t).Ceil() }

	var lines []string
	cur := ""
	flush := func() {
		lines = append(lines, cur)
		cur = ""
	}
	for _, word := range strings.Fields(s) {
		for width(word) > maxWidth && maxWidth > 0 {
			// hard cut an overlong word
			n := fitPrefix(word, maxWidth, width)
			if cur != "" {
				flush()
			}
			cur = word[:n]
			flush()
			word = word[n:]
		}
		if word == "" {
			continue
		}
		switch {
		case cur == "":
			cur = word
		case width(cur+" "+word) <= maxWidth || maxWidth <= 0:
			cur += " " + word
		default:
			flush()
			cur = word
		}
	}
	if cur != "" || len(lines) == 0 {
		flush()
	}
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[:maxLines]
		last := lines[maxLines-1]
		for last != "" && width(last+"~") > maxWidth {
			_, size := utf8.DecodeLastRuneInString(last)
			last = last[:len(last)-size]
		}
		lines[maxLines-1] = last + "~"
	}
	return lines
}

// fitPrefix is the byte length of the longest prefix of s within limit
// pixels, at least one rune.
func fitPrefix(s string, limit int, width func(string) int) int {
	n := 0
	for i, r := range s {
		end := i + utf8.RuneLen(r)
		if width(s[:end]) > limit {
			break
		}
		n = end
	}
	if n == 0 {
		_, n = utf8.DecodeRuneInString(s)
	}
	return n
}
