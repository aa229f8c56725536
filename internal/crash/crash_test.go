/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package crash

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"loraorganizer/internal/domain"
	"loraorganizer/internal/storage"
)

func TestWriteReportCreatesFileInTemp(t *testing.T) {
	path, err := writeReport(nil, "boom", []byte("stacktrace"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	t.Cleanup(func() { _ = os.Remove(path) })
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, "LoRA Organizer Crash Report") {
		t.Fatalf("report header missing")
	}
	if !strings.Contains(s, "Panic: boom") {
		t.Fatalf("panic content missing: %s", s)
	}
}

func TestWriteReportCreatesFileInBaseDir(t *testing.T) {
	base := t.TempDir()
	path, err := writeReport(&State{BaseDir: base}, "kaboom", []byte("stack"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	want := filepath.Join(base, storage.CacheDirName, ReportDirName)
	if filepath.Dir(path) != want {
		t.Fatalf("expected crash report under %s, got %s", want, path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("report file missing: %v", err)
	}
}

// TestRecover_WritesReportAndDraft ensures Recover handles a panic, writes a
// report and the draft, and does not terminate the test process due to the
// injected exitFn.
func TestRecover_WritesReportAndDraft(t *testing.T) {
	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w
	defer func() {
		_ = w.Close()
		os.Stderr = oldStderr
		_, _ = io.Copy(io.Discard, r)
	}()

	called := 0
	oldExit := exitFn
	exitFn = func(code int) { called = code }
	defer func() { exitFn = oldExit }()

	base := t.TempDir()
	st := &State{}
	func() {
		defer Recover(st)
		st.BaseDir = base
		st.Draft = func() (domain.Record, bool) {
			return domain.Record{Name: "Half Done", Notes: "unsaved"}, true
		}
		panic("boom")
	}()

	dir := filepath.Join(base, storage.CacheDirName, ReportDirName)
	files, _ := os.ReadDir(dir)
	var report, draft string
	for _, f := range files {
		switch {
		case strings.HasPrefix(f.Name(), "crash-") && strings.HasSuffix(f.Name(), ".log"):
			report = filepath.Join(dir, f.Name())
		case strings.HasPrefix(f.Name(), "draft-"):
			draft = filepath.Join(dir, f.Name())
		}
	}
	if report == "" || draft == "" {
		t.Fatalf("expected report and draft in %s, got %v", dir, files)
	}
	b, err := os.ReadFile(report)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !bytes.Contains(b, []byte("Panic: boom")) {
		t.Fatalf("report does not contain panic: %s", string(b))
	}
	rec, err := storage.Load(draft)
	if err != nil || rec.Name != "Half Done" || rec.Notes != "unsaved" {
		t.Fatalf("draft not rescued: %+v %v", rec, err)
	}
	if called != 2 {
		t.Fatalf("expected exit code 2, got %d", called)
	}
}

func TestRecover_NoPanicIsNoop(t *testing.T) {
	called := false
	oldExit := exitFn
	exitFn = func(int) { called = true }
	defer func() { exitFn = oldExit }()
	func() {
		defer Recover(nil)
	}()
	if called {
		t.Fatalf("exit must not be called without a panic")
	}
}

func TestRescueDraftSurvivesPanickingProvider(t *testing.T) {
	st := &State{BaseDir: t.TempDir(), Draft: func() (domain.Record, bool) { panic("again") }}
	if _, ok, err := rescueDraft(st); ok || err != nil {
		t.Fatalf("expected no draft, got ok=%v err=%v", ok, err)
	}
}
