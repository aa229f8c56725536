/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package catalogue

import (
	"errors"
	"fmt"
	"log/slog"

	"loraorganizer/internal/domain"
	applog "loraorganizer/internal/log"
	"loraorganizer/internal/preview"
	"loraorganizer/internal/storage"
)

// Editor owns one draft record and its primary preview. Operations that
// fail leave the draft exactly as it was.
type Editor struct {
	session  *Session
	resolver *preview.Resolver
	draft    domain.Record
	path     string
	preview  preview.Preview
}

// NewEditor returns an editor holding the default draft. A nil resolver
// uses one captioned "No image selected".
func NewEditor(s *Session, r *preview.Resolver) *Editor {
	if r == nil {
		r = preview.NewResolver(preview.DefaultShortSide, preview.CaptionNoImageSelected)
	}
	e := &Editor{session: s, resolver: r}
	e.New()
	return e
}

// New discards the draft and starts from the default one.
func (e *Editor) New() {
	e.draft = domain.DefaultDraft()
	e.path = ""
	e.preview = e.resolver.Placeholder()
}

// Load replaces the draft with the record at path.
func (e *Editor) Load(path string) error {
	rec, err := storage.Load(path)
	if err != nil {
		applog.WithOperation(applog.WithComponent("editor"), "load").Warn("load failed",
			slog.String("path", path), slog.Any("err", err))
		return err
	}
	e.draft = rec.Clone()
	e.path = path
	e.preview = e.resolver.Resolve(rec.ImagePath)
	return nil
}

// Save validates the draft and writes it into the active category folder.
// When a file with the same name exists, confirm is asked first; a refusal
// returns ErrDeclined and writes nothing.
func (e *Editor) Save(confirm ConfirmFunc) (string, error) {
	l := applog.WithOperation(applog.WithComponent("editor"), "save")
	rec, err := domain.ValidateForSave(e.draft)
	if err != nil {
		return "", err
	}
	path, exists, err := storage.Target(e.session.Folder, rec.Name)
	if err != nil {
		return "", err
	}
	if exists {
		fn, _ := rec.TargetFileName()
		prompt := fmt.Sprintf("%q already exists in %s. Overwrite it?", fn, e.session.Category)
		if !confirm.ask(prompt) {
			l.Info("overwrite declined", slog.String("path", path))
			return path, &domain.Error{Op: "save", Path: path, Kind: ErrDeclined}
		}
	}
	path, err = storage.Save(e.session.Folder, rec, exists)
	if err != nil {
		return "", err
	}
	e.path = path
	return path, nil
}

// Draft returns a copy of the current draft.
func (e *Editor) Draft() domain.Record { return e.draft.Clone() }

// Path is the file the draft was last loaded from or saved to, if any.
func (e *Editor) Path() string { return e.path }

// SetDraft replaces the draft with a copy of r, refreshing the preview when
// the primary image changed.
func (e *Editor) SetDraft(r domain.Record) {
	changed := r.ImagePath != e.draft.ImagePath
	e.draft = r.Clone()
	e.draft.Normalize()
	if changed {
		e.preview = e.resolver.Resolve(r.ImagePath)
	}
}

// SetPrimaryImage sets the primary image path and resolves its preview.
func (e *Editor) SetPrimaryImage(path string) preview.Preview {
	e.draft.ImagePath = path
	e.preview = e.resolver.Resolve(path)
	return e.preview
}

// AddTag appends a tag row.
func (e *Editor) AddTag(label, value string) {
	next := e.draft.Clone()
	next.Tags = append(next.Tags, domain.Tag{Label: label, Value: value})
	e.SetDraft(next)
}

// RemoveTag deletes the tag row at i.
func (e *Editor) RemoveTag(i int) error {
	if i < 0 || i >= len(e.draft.Tags) {
		return fmt.Errorf("remove tag %d: %w", i, ErrOutOfRange)
	}
	next := e.draft.Clone()
	next.Tags = append(next.Tags[:i:i], next.Tags[i+1:]...)
	e.SetDraft(next)
	return nil
}

// AddExtraImage appends an extra image row.
func (e *Editor) AddExtraImage(title, path string) {
	next := e.draft.Clone()
	next.ExtraImages = append(next.ExtraImages, domain.ExtraImage{Title: title, ImagePath: path})
	e.SetDraft(next)
}

// RemoveExtraImage deletes the extra image row at i.
func (e *Editor) RemoveExtraImage(i int) error {
	if i < 0 || i >= len(e.draft.ExtraImages) {
		return fmt.Errorf("remove extra image %d: %w", i, ErrOutOfRange)
	}
	next := e.draft.Clone()
	next.ExtraImages = append(next.ExtraImages[:i:i], next.ExtraImages[i+1:]...)
	e.SetDraft(next)
	return nil
}

// Preview is the current primary preview.
func (e *Editor) Preview() preview.Preview { return e.preview }

// ExtraPreviews resolves every extra image row of the draft, in order.
func (e *Editor) ExtraPreviews() []preview.Preview {
	out := make([]preview.Preview, len(e.draft.ExtraImages))
	for i, x := range e.draft.ExtraImages {
		out[i] = e.resolver.Resolve(x.ImagePath)
	}
	return out
}

// IsDeclined reports whether err is a refused confirmation.
func IsDeclined(err error) bool { return errors.Is(err, ErrDeclined) }
