/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package catalogue holds the two controllers the front ends drive: the
// Editor, which owns one draft record, and the Catalogue, which owns the
// listing and selection of the active category. Both work through an
// explicit Session instead of process-wide state.
package catalogue

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"loraorganizer/internal/domain"
	applog "loraorganizer/internal/log"
	"loraorganizer/internal/storage"
)

var (
	// ErrDeclined is returned when the user does not confirm a destructive step.
	ErrDeclined = errors.New("not confirmed")
	// ErrNoSelection is returned by catalogue operations that need a selected record.
	ErrNoSelection = errors.New("no record selected")
	// ErrOutOfRange is returned for an index outside the current list.
	ErrOutOfRange = errors.New("index out of range")
	// ErrUnknownCategory is returned when switching to a category that does not exist.
	ErrUnknownCategory = errors.New("unknown category")
)

// ConfirmFunc asks the user a yes/no question. A nil ConfirmFunc counts as
// "no".
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) ask(prompt string) bool {
	return f != nil && f(prompt)
}

// Session is the active category context: which category is selected and
// the folder its records live in.
type Session struct {
	BaseDir  string
	Category domain.Category
	Folder   string

	prefs *storage.Preferences
}

// NewSession restores the last active category for baseDir and makes sure
// its folder exists. A nil prefs uses the preference file in baseDir.
func NewSession(baseDir string, prefs *storage.Preferences) (*Session, error) {
	if prefs == nil {
		prefs = storage.NewPreferences(baseDir)
	}
	s := &Session{BaseDir: baseDir, prefs: prefs}
	cat := prefs.LastCategory()
	folder, err := ensureFolder(baseDir, cat)
	if err != nil {
		return nil, err
	}
	s.Category, s.Folder = cat, folder
	applog.WithComponent("session").Debug("session ready",
		slog.String("category", string(cat)), slog.String("folder", folder))
	return s, nil
}

// SwitchCategory makes cat active. The folder is created when missing and
// the choice is remembered; a failure to remember it is logged only.
// Records never move between folders.
func (s *Session) SwitchCategory(cat domain.Category) error {
	l := applog.WithOperation(applog.WithComponent("session"), "switch_category")
	if !cat.Valid() {
		return &domain.Error{Op: "switch category", Path: string(cat), Kind: ErrUnknownCategory}
	}
	folder, err := ensureFolder(s.BaseDir, cat)
	if err != nil {
		return err
	}
	s.Category, s.Folder = cat, folder
	if err := s.prefs.SetLastCategory(cat); err != nil {
		l.Warn("could not remember category", slog.Any("err", err))
	}
	l.Info("category switched", slog.String("category", string(cat)))
	return nil
}

// Preferences exposes the preference store backing the session.
func (s *Session) Preferences() *storage.Preferences { return s.prefs }

func ensureFolder(baseDir string, cat domain.Category) (string, error) {
	folder := filepath.Join(baseDir, domain.ResolveFolder(cat))
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return "", domain.IOError("create folder", folder, err)
	}
	return folder, nil
}
