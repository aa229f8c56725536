/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"loraorganizer/internal/domain"
	applog "loraorganizer/internal/log"
)

// PrefsFileName is the preference file kept in the base directory.
const PrefsFileName = "app_settings.json"

const lastCategoryKey = "last_category"

// Preferences is the small JSON document that remembers the active category
// across restarts.
type Preferences struct {
	path string
}

// NewPreferences returns the preference store for baseDir.
func NewPreferences(baseDir string) *Preferences {
	return &Preferences{path: filepath.Join(baseDir, PrefsFileName)}
}

// Path is the preference file location.
func (p *Preferences) Path() string { return p.path }

// LastCategory returns the remembered category. Any problem reading it
// (missing file, malformed JSON, unknown value) yields the default category.
func (p *Preferences) LastCategory() domain.Category {
	l := applog.WithOperation(applog.WithComponent("prefs"), "last_category")
	doc, err := p.read()
	if err != nil {
		l.Debug("preferences unreadable, using default", slog.String("path", p.path), slog.Any("err", err))
		return domain.DefaultCategory
	}
	raw, ok := doc[lastCategoryKey]
	if !ok {
		return domain.DefaultCategory
	}
	var name string
	if err := json.Unmarshal(raw, &name); err != nil {
		l.Debug("last_category is not a string", slog.Any("err", err))
		return domain.DefaultCategory
	}
	c, ok := domain.ParseCategory(name)
	if !ok {
		l.Debug("unknown category in preferences", slog.String("value", name))
		return domain.DefaultCategory
	}
	return c
}

// SetLastCategory persists c. Other keys already in the file are kept.
func (p *Preferences) SetLastCategory(c domain.Category) error {
	doc, err := p.read()
	if err != nil {
		doc = map[string]json.RawMessage{}
	}
	v, err := json.Marshal(string(c))
	if err != nil {
		return fmt.Errorf("encode category: %w", err)
	}
	doc[lastCategoryKey] = v
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	data = append(data, '\n')
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return domain.IOError("save preferences", p.path, err)
	}
	if err := writeFileAtomic(p.path, data); err != nil {
		return &domain.Error{Op: "save preferences", Path: p.path, Kind: domain.ErrIO, Err: err}
	}
	return nil
}

func (p *Preferences) read() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, err
	}
	doc := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("preferences: not an object")
	}
	return doc, nil
}
