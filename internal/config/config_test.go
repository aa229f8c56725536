/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// isolate points the config lookup at a fresh directory and clears overrides.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("AppData", home)
	for _, k := range []string{EnvBaseDir, EnvPreviewShortSide, EnvPreviewCache, EnvTheme, EnvLogLevel, EnvLogFormat, EnvLogSource, EnvLogFile} {
		t.Setenv(k, "")
	}
	return home
}

func writeConfig(t *testing.T, body string) {
	t.Helper()
	path, err := ConfigPath()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	isolate(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg != Defaults() {
		t.Fatalf("expected defaults, got %#v", cfg)
	}
}

func TestEnvOverridesBaseDir(t *testing.T) {
	isolate(t)
	t.Setenv(EnvBaseDir, "/srv/loras")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got, want := cfg.Catalogue.BaseDir, "/srv/loras"; got != want {
		t.Fatalf("Catalogue.BaseDir = %q, want %q", got, want)
	}
	if name, ok := EnvOverrideFor("catalogue.base_dir"); !ok || name != EnvBaseDir {
		t.Fatalf("EnvOverrideFor = %q, %v", name, ok)
	}
	if _, ok := EnvOverrideFor("preview.short_side"); ok {
		t.Fatalf("short_side should not be reported as overridden")
	}
}

func TestEnvOverridesPreview(t *testing.T) {
	isolate(t)
	t.Setenv(EnvPreviewShortSide, "128")
	t.Setenv(EnvPreviewCache, "off")
	cfg, _ := Load()
	if cfg.Preview.ShortSide != 128 || cfg.Preview.CacheEnabled {
		t.Fatalf("preview overrides not applied: %#v", cfg.Preview)
	}
	t.Setenv(EnvPreviewShortSide, "-5")
	cfg, _ = Load()
	if cfg.Preview.ShortSide != 300 {
		t.Fatalf("invalid short side should be ignored, got %d", cfg.Preview.ShortSide)
	}
}

func TestMergeFromFile(t *testing.T) {
	isolate(t)
	writeConfig(t, `
general:
  theme: Dark
catalogue:
  base_dir: /data/loras
preview:
  short_side: 200
  cache_enabled: false
logging:
  level: DEBUG
  format: json
  source: true
  file: /tmp/lorg.log
`)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.General.Theme != "dark" || cfg.Catalogue.BaseDir != "/data/loras" {
		t.Fatalf("general/catalogue not merged: %#v", cfg)
	}
	if cfg.Preview.ShortSide != 200 || cfg.Preview.CacheEnabled || cfg.Preview.CacheMaxBytes != Defaults().Preview.CacheMaxBytes {
		t.Fatalf("preview not merged: %#v", cfg.Preview)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" || !cfg.Logging.Source || cfg.Logging.File != "/tmp/lorg.log" {
		t.Fatalf("logging fields not merged correctly: %#v", cfg.Logging)
	}
}

func TestMergeKeepsAbsentBooleans(t *testing.T) {
	isolate(t)
	writeConfig(t, "preview:\n  short_side: 150\n")
	cfg, _ := Load()
	if !cfg.Preview.CacheEnabled {
		t.Fatalf("cache_enabled absent from file should keep default true")
	}
}

func TestMalformedFileFallsBackToDefaults(t *testing.T) {
	isolate(t)
	writeConfig(t, "general: [unterminated")
	cfg, err := Load()
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if cfg.Preview.ShortSide != 300 {
		t.Fatalf("defaults should still be returned: %#v", cfg)
	}
}

func TestEnvOverridesLogging(t *testing.T) {
	isolate(t)
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvLogSource, "1")
	t.Setenv(EnvLogFile, "X:/lorg.log")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Logging.Level != "error" || cfg.Logging.Format != "json" || !cfg.Logging.Source || cfg.Logging.File != "X:/lorg.log" {
		t.Fatalf("env overrides not applied to logging: %#v", cfg.Logging)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	isolate(t)
	cfg := Defaults()
	cfg.Catalogue.BaseDir = "/x"
	cfg.Preview.CacheEnabled = false
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != cfg {
		t.Fatalf("round trip: got %#v want %#v", got, cfg)
	}
}

func TestResolvedBaseDir(t *testing.T) {
	cfg := Defaults()
	wd, _ := os.Getwd()
	got, err := cfg.ResolvedBaseDir()
	if err != nil || got != wd {
		t.Fatalf("empty base dir should be the working dir: %q %v", got, err)
	}
	if runtime.GOOS != "windows" {
		cfg.Catalogue.BaseDir = "/tmp/loras"
		if got, _ := cfg.ResolvedBaseDir(); got != "/tmp/loras" {
			t.Fatalf("absolute base dir changed: %q", got)
		}
	}
}
