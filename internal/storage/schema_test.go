/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"os"
	"testing"

	gojsonschema "github.com/xeipuuv/gojsonschema"
)

func TestSavedRecordConformsToSchema(t *testing.T) {
	dir := t.TempDir()
	path, err := Save(dir, sampleRecord("Schema Test"), false)
	if err != nil {
		t.Fatalf("Save error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read record: %v", err)
	}

	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(RecordSchema), gojsonschema.NewBytesLoader(data))
	if err != nil {
		t.Fatalf("schema validate error: %v", err)
	}
	if !result.Valid() {
		for _, e := range result.Errors() {
			t.Logf("schema error: %s", e)
		}
		t.Fatalf("record does not conform to schema")
	}
}

func TestSchemaRejectsWrongTypes(t *testing.T) {
	for _, doc := range []string{`"just a string"`, `{"extra_images":[{"image_path":3}]}`, `{"tags":[true]}`} {
		if err := validateRecordJSON([]byte(doc)); err == nil {
			t.Errorf("expected %s to be rejected", doc)
		}
	}
	if err := validateRecordJSON([]byte(`{}`)); err != nil {
		t.Fatalf("empty object should be accepted: %v", err)
	}
}
