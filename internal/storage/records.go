/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"loraorganizer/internal/domain"
	applog "loraorganizer/internal/log"
)

// Entry is one listed record file. Exactly one of Record and Err is set;
// an entry with Err is shown but cannot be opened.
type Entry struct {
	Path   string
	Name   string // file name including extension
	Record *domain.Record
	Err    error
}

// Valid reports whether the file loaded as a record.
func (e Entry) Valid() bool { return e.Err == nil && e.Record != nil }

// DisplayName is the record name, or the file name for unnamed and invalid
// entries.
func (e Entry) DisplayName() string {
	if e.Record == nil {
		return e.Name
	}
	return e.Record.DisplayName(e.Name)
}

// List returns every record file in folder, sorted case-insensitively by
// file name. A folder that does not exist lists as empty; a file that fails
// to load is returned as an invalid entry instead of failing the listing.
func List(folder string) ([]Entry, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "list").With(slog.String("folder", folder))
	ents, err := os.ReadDir(folder)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.Debug("folder missing, listing empty")
			return []Entry{}, nil
		}
		return nil, domain.IOError("list", folder, err)
	}
	out := make([]Entry, 0, len(ents))
	for _, de := range ents {
		name := de.Name()
		if !strings.EqualFold(filepath.Ext(name), domain.RecordExt) {
			continue
		}
		p := filepath.Join(folder, name)
		if de.IsDir() {
			continue
		}
		if de.Type()&fs.ModeSymlink != 0 {
			if fi, serr := os.Stat(p); serr != nil || !fi.Mode().IsRegular() {
				continue
			}
		} else if !de.Type().IsRegular() {
			continue
		}
		e := Entry{Path: p, Name: name}
		rec, lerr := Load(p)
		if lerr != nil {
			l.Warn("record unreadable", slog.String("file", name), slog.Any("err", lerr))
			e.Err = lerr
		} else {
			e.Record = &rec
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if a != b {
			return a < b
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// Load reads and decodes one record file. Missing files are ErrNotFound,
// content that is not a well-formed record is ErrParse, and any other read
// failure is ErrIO.
func Load(path string) (domain.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Record{}, domain.IOError("load", path, err)
	}
	if err := validateRecordJSON(data); err != nil {
		return domain.Record{}, &domain.Error{Op: "load", Path: path, Kind: domain.ErrParse, Err: err}
	}
	var rec domain.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.Record{}, &domain.Error{Op: "load", Path: path, Kind: domain.ErrParse, Err: err}
	}
	rec.Normalize()
	return rec, nil
}

// Target returns the path a record called name is stored at in folder and
// whether a file already occupies it.
func Target(folder, name string) (string, bool, error) {
	fn, err := domain.Record{Name: name}.TargetFileName()
	if err != nil {
		return "", false, err
	}
	p := filepath.Join(folder, fn)
	_, err = os.Stat(p)
	switch {
	case err == nil:
		return p, true, nil
	case errors.Is(err, fs.ErrNotExist):
		return p, false, nil
	default:
		return p, false, domain.IOError("stat", p, err)
	}
}

// Save writes rec into folder under its sanitized name. An existing file is
// only replaced when overwrite is set; otherwise ErrExists is returned and
// nothing is written. The folder is created when missing.
func Save(folder string, rec domain.Record, overwrite bool) (string, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "save").With(slog.String("folder", folder))
	path, exists, err := Target(folder, rec.Name)
	if err != nil {
		return "", err
	}
	if exists && !overwrite {
		return path, &domain.Error{Op: "save", Path: path, Kind: domain.ErrExists}
	}
	data, err := EncodeRecord(rec)
	if err != nil {
		return "", &domain.Error{Op: "save", Path: path, Kind: domain.ErrIO, Err: err}
	}
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return "", domain.IOError("save", folder, err)
	}
	if err := writeFileAtomic(path, data); err != nil {
		l.Error("write record failed", slog.String("path", path), slog.Any("err", err))
		return "", &domain.Error{Op: "save", Path: path, Kind: domain.ErrIO, Err: err}
	}
	l.Info("record saved", slog.String("path", path), slog.Bool("overwrite", exists))
	return path, nil
}

// EncodeRecord renders rec in the record file layout: four-space indent,
// no HTML escaping, trailing newline, empty lists as [].
func EncodeRecord(rec domain.Record) ([]byte, error) {
	rec.Normalize()
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(rec); err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return buf.Bytes(), nil
}

// Delete removes the record file at path. An absent file is not an error:
// removed is false and a warning is logged.
func Delete(path string) (bool, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "delete").With(slog.String("path", path))
	fi, err := os.Lstat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.Warn("record already gone")
			return false, nil
		}
		return false, domain.IOError("delete", path, err)
	}
	if fi.IsDir() {
		return false, &domain.Error{Op: "delete", Path: path, Kind: domain.ErrIO, Err: errors.New("is a directory")}
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.Warn("record already gone")
			return false, nil
		}
		return false, domain.IOError("delete", path, err)
	}
	l.Info("record deleted")
	return true, nil
}
