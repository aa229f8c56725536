/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the persisted record model of the organizer. A record is one
// JSON file inside a category folder; its identity on disk is derived from Name.

import (
	"encoding/json"
	"strings"
)

// ModelTypes is the list offered by the editor. Stored values are free text.
var ModelTypes = []string{
	"Illustrious", "SD 1.5", "SD 2.0", "SD 2.1", "SD 3.0",
	"SD 3.5 Medium", "SD 3.5 Large", "Pony", "SDXL", "Other",
}

// DefaultModelType is preselected in a fresh draft.
const DefaultModelType = "Illustrious"

// RecordExt is the extension of record files.
const RecordExt = ".json"

// Record is one catalogued asset. Field order matches the on-disk layout.
type Record struct {
	Name        string       `json:"name"`
	FileName    string       `json:"file_name"`
	Source      string       `json:"source"`
	ModelType   string       `json:"model_type"`
	Tags        []Tag        `json:"tags"`
	Notes       string       `json:"notes"`
	ExtraImages []ExtraImage `json:"extra_images"`
	ImagePath   string       `json:"image_path"`
}

// Tag is a labeled, reusable text snippet. Label is optional.
type Tag struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// UnmarshalJSON accepts the object form and the older plain-string form,
// which becomes a tag with an empty label.
func (t *Tag) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = Tag{Value: s}
		return nil
	}
	type plain Tag
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*t = Tag(p)
	return nil
}

// ExtraImage is a titled secondary image. Title is optional.
type ExtraImage struct {
	Title     string `json:"title"`
	ImagePath string `json:"image_path"`
}

// DefaultDraft returns the record a fresh editing session starts from.
func DefaultDraft() Record {
	return Record{
		ModelType:   DefaultModelType,
		Tags:        []Tag{},
		ExtraImages: []ExtraImage{},
	}
}

// TargetFileName returns the record's on-disk file name, or ErrEmptyName when the
// name has no characters usable in a file name.
func (r Record) TargetFileName() (string, error) {
	safe := Sanitize(r.Name)
	if safe == "" {
		return "", &Error{Op: "filename", Kind: ErrEmptyName}
	}
	return safe + RecordExt, nil
}

// DisplayName is the name shown in lists; fallback is used for unnamed records.
func (r Record) DisplayName(fallback string) string {
	if n := strings.TrimSpace(r.Name); n != "" {
		return n
	}
	return fallback
}

// Clone returns a deep copy so that controllers never share slices.
func (r Record) Clone() Record {
	c := r
	if r.Tags != nil {
		c.Tags = append([]Tag{}, r.Tags...)
	}
	if r.ExtraImages != nil {
		c.ExtraImages = append([]ExtraImage{}, r.ExtraImages...)
	}
	return c
}

// ValidateForSave prepares a draft for persistence. The name is required and
// must survive sanitization. Name, notes and the tag and image fields are
// trimmed; tags without a value and images without a path are dropped.
// Everything else passes through unchanged.
func ValidateForSave(draft Record) (Record, error) {
	name := strings.TrimSpace(draft.Name)
	if name == "" || Sanitize(name) == "" {
		return Record{}, &Error{Op: "validate", Kind: ErrEmptyName}
	}
	out := Record{
		Name:        name,
		FileName:    draft.FileName,
		Source:      draft.Source,
		ModelType:   draft.ModelType,
		Tags:        make([]Tag, 0, len(draft.Tags)),
		Notes:       strings.TrimSpace(draft.Notes),
		ExtraImages: make([]ExtraImage, 0, len(draft.ExtraImages)),
		ImagePath:   draft.ImagePath,
	}
	for _, t := range draft.Tags {
		v := strings.TrimSpace(t.Value)
		if v == "" {
			continue
		}
		out.Tags = append(out.Tags, Tag{Label: strings.TrimSpace(t.Label), Value: v})
	}
	for _, e := range draft.ExtraImages {
		p := strings.TrimSpace(e.ImagePath)
		if p == "" {
			continue
		}
		out.ExtraImages = append(out.ExtraImages, ExtraImage{Title: strings.TrimSpace(e.Title), ImagePath: p})
	}
	return out, nil
}

// Normalize replaces nil slices with empty ones after decoding.
func (r *Record) Normalize() {
	if r.Tags == nil {
		r.Tags = []Tag{}
	}
	if r.ExtraImages == nil {
		r.ExtraImages = []ExtraImage{}
	}
}
