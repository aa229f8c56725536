/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package catalogue

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"loraorganizer/internal/domain"
	applog "loraorganizer/internal/log"
	"loraorganizer/internal/preview"
	"loraorganizer/internal/storage"
)

// Catalogue is the browsing view over the active category: the listed
// entries, at most one selection and the previews of the selected record.
type Catalogue struct {
	session  *Session
	resolver *preview.Resolver
	entries  []storage.Entry
	selected int
	preview  preview.Preview
	extras   []preview.Preview
}

// NewCatalogue returns an empty catalogue; call Refresh to list records.
// A nil resolver uses one captioned "No image found".
func NewCatalogue(s *Session, r *preview.Resolver) *Catalogue {
	if r == nil {
		r = preview.NewResolver(preview.DefaultShortSide, preview.CaptionNoImageFound)
	}
	c := &Catalogue{session: s, resolver: r}
	c.clearSelection()
	return c
}

// Session returns the session the catalogue browses.
func (c *Catalogue) Session() *Session { return c.session }

// Refresh re-lists the category folder and clears the selection.
func (c *Catalogue) Refresh() error {
	ents, err := storage.List(c.session.Folder)
	c.clearSelection()
	if err != nil {
		c.entries = nil
		return err
	}
	c.entries = ents
	invalid := 0
	for _, e := range ents {
		if !e.Valid() {
			invalid++
		}
	}
	applog.WithOperation(applog.WithComponent("catalogue"), "refresh").Debug("listed records",
		slog.String("category", string(c.session.Category)),
		slog.Int("count", len(ents)), slog.Int("invalid", invalid))
	return nil
}

// Entries returns the listed records in display order.
func (c *Catalogue) Entries() []storage.Entry {
	return append([]storage.Entry(nil), c.entries...)
}

// Select makes entry i current and resolves its previews. Invalid entries
// cannot be selected; the previous selection is kept in that case.
func (c *Catalogue) Select(i int) error {
	if i < 0 || i >= len(c.entries) {
		return fmt.Errorf("select %d: %w", i, ErrOutOfRange)
	}
	e := c.entries[i]
	if !e.Valid() {
		return e.Err
	}
	c.selected = i
	c.preview = c.resolver.Resolve(e.Record.ImagePath)
	c.extras = make([]preview.Preview, len(e.Record.ExtraImages))
	for j, x := range e.Record.ExtraImages {
		c.extras[j] = c.resolver.Resolve(x.ImagePath)
	}
	return nil
}

// Lookup finds an entry by file name (with or without extension), by path
// or by record name, case-insensitively.
func (c *Catalogue) Lookup(ref string) (int, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return -1, false
	}
	abs, _ := filepath.Abs(ref)
	for i, e := range c.entries {
		stem := strings.TrimSuffix(e.Name, filepath.Ext(e.Name))
		if strings.EqualFold(e.Name, ref) || strings.EqualFold(stem, ref) {
			return i, true
		}
		if p, err := filepath.Abs(e.Path); err == nil && abs != "" && p == abs {
			return i, true
		}
	}
	for i, e := range c.entries {
		if e.Record != nil && strings.EqualFold(strings.TrimSpace(e.Record.Name), ref) {
			return i, true
		}
	}
	return -1, false
}

// Selected returns the selected entry.
func (c *Catalogue) Selected() (storage.Entry, bool) {
	if c.selected < 0 || c.selected >= len(c.entries) {
		return storage.Entry{}, false
	}
	return c.entries[c.selected], true
}

// SelectedIndex is the position of the selection in Entries, or -1.
func (c *Catalogue) SelectedIndex() int {
	if _, ok := c.Selected(); !ok {
		return -1
	}
	return c.selected
}

// Preview is the primary preview of the selection, or the placeholder.
func (c *Catalogue) Preview() preview.Preview { return c.preview }

// ExtraPreviews are the previews of the selection's extra images, in order.
func (c *Catalogue) ExtraPreviews() []preview.Preview {
	return append([]preview.Preview(nil), c.extras...)
}

// DeleteSelected removes the selected record's file after confirm agrees.
// On success the selection is cleared and the list re-read; on failure
// nothing changes.
func (c *Catalogue) DeleteSelected(confirm ConfirmFunc) (bool, error) {
	l := applog.WithOperation(applog.WithComponent("catalogue"), "delete")
	e, ok := c.Selected()
	if !ok {
		return false, ErrNoSelection
	}
	prompt := fmt.Sprintf("Delete %q from %s?", e.DisplayName(), c.session.Category)
	if !confirm.ask(prompt) {
		l.Info("delete declined", slog.String("path", e.Path))
		return false, &domain.Error{Op: "delete", Path: e.Path, Kind: ErrDeclined}
	}
	removed, err := storage.Delete(e.Path)
	if err != nil {
		return false, err
	}
	return removed, c.Refresh()
}

// SwitchCategory changes the session category and re-lists.
func (c *Catalogue) SwitchCategory(cat domain.Category) error {
	if err := c.session.SwitchCategory(cat); err != nil {
		return err
	}
	return c.Refresh()
}

// TagValue is the value of tag i of the selection, as put on the clipboard.
func (c *Catalogue) TagValue(i int) (string, error) {
	e, ok := c.Selected()
	if !ok {
		return "", ErrNoSelection
	}
	if i < 0 || i >= len(e.Record.Tags) {
		return "", fmt.Errorf("tag %d: %w", i, ErrOutOfRange)
	}
	return e.Record.Tags[i].Value, nil
}

func (c *Catalogue) clearSelection() {
	c.selected = -1
	c.preview = c.resolver.Placeholder()
	c.extras = nil
}
