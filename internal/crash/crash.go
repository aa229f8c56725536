/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns an unrecovered panic into a crash report and, when an
// editor draft is registered, a copy of the unsaved draft next to it.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	"loraorganizer/internal/domain"
	applog "loraorganizer/internal/log"
	"loraorganizer/internal/storage"
	"loraorganizer/internal/version"
)

// exitFn is used to allow testing of Recover without terminating the test process.
var exitFn = os.Exit

// ReportDirName is the folder under <base>/.lorg that receives crash reports.
const ReportDirName = "crash"

// State describes what to preserve on a crash. Fields may be filled in after
// the deferred Recover is registered.
type State struct {
	BaseDir string
	// Draft returns the editor's unsaved draft, if any.
	Draft func() (domain.Record, bool)
}

// Recover captures a panic, logs it with the stack, writes a report file,
// rescues the registered draft and exits with status 2.
//
// Usage: defer crash.Recover(state)
func Recover(st *State) {
	r := recover()
	if r == nil {
		return
	}
	l := applog.WithComponent("crash")
	stack := debug.Stack()
	l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

	reportPath, err := writeReport(st, r, stack)
	if err != nil {
		l.Error("write crash report failed", slog.Any("err", err))
	}
	if path, ok, err := rescueDraft(st); err != nil {
		l.Error("draft rescue failed", slog.Any("err", err))
	} else if ok {
		l.Info("unsaved draft written", slog.String("path", path))
		_, _ = fmt.Fprintf(os.Stderr, "Your unsaved draft was written to: %s\n", path)
	}

	if _, err := fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath); err != nil {
		l.Error("failed to write crash message to stderr", slog.Any("err", err))
	}
	if _, err := fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH); err != nil {
		l.Error("failed to write version info to stderr", slog.Any("err", err))
	}
	exitFn(2)
}

func reportDir(st *State) string {
	if st != nil && st.BaseDir != "" {
		dir := filepath.Join(st.BaseDir, storage.CacheDirName, ReportDirName)
		if err := os.MkdirAll(dir, 0o755); err == nil {
			return dir
		}
	}
	return os.TempDir()
}

func writeReport(st *State, panicVal any, stack []byte) (string, error) {
	stamp := time.Now().Format("20060102-150405")
	path := filepath.Join(reportDir(st), fmt.Sprintf("crash-%s.log", stamp))

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "LoRA Organizer Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if st != nil && st.BaseDir != "" {
		_, _ = fmt.Fprintf(&buf, "BaseDir: %s\n", st.BaseDir)
	}
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return path, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			applog.WithComponent("crash").Error("failed to close crash report file", slog.Any("err", err), slog.String("path", path))
		}
	}()
	if _, err := f.Write(buf.Bytes()); err != nil {
		return path, err
	}
	_ = f.Sync()
	return path, nil
}

// rescueDraft writes the registered draft as a record file into the report
// folder. It never touches the category folders.
func rescueDraft(st *State) (string, bool, error) {
	if st == nil || st.Draft == nil {
		return "", false, nil
	}
	rec, ok := safeDraft(st.Draft)
	if !ok {
		return "", false, nil
	}
	data, err := storage.EncodeRecord(rec)
	if err != nil {
		return "", false, err
	}
	stamp := time.Now().Format("20060102-150405")
	path := filepath.Join(reportDir(st), fmt.Sprintf("draft-%s%s", stamp, domain.RecordExt))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", false, err
	}
	return path, true, nil
}

// safeDraft calls fn, treating a second panic as "no draft".
func safeDraft(fn func() (domain.Record, bool)) (rec domain.Record, ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return fn()
}
