/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"regexp"
	"strings"
)

// unsafeRun matches characters that are illegal in file names on the most
// restrictive common filesystem: control characters and <>:"/\|?*.
var unsafeRun = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1F]+`)

// Sanitize reduces a display name to a file-name stem. It is pure and makes
// no attempt at collision avoidance: equal results target the same file.
func Sanitize(name string) string {
	return strings.TrimSpace(unsafeRun.ReplaceAllString(name, ""))
}
