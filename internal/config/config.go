/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.

type GeneralConfig struct {
	Theme string `yaml:"theme"` // "system" | "light" | "dark"
}

type CatalogueConfig struct {
	// BaseDir holds the category folders and app_settings.json. Empty means
	// the working directory.
	BaseDir string `yaml:"base_dir"`
}

type PreviewConfig struct {
	ShortSide     int   `yaml:"short_side"`
	CacheEnabled  bool  `yaml:"cache_enabled"`
	CacheMaxBytes int64 `yaml:"cache_max_bytes"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int             `yaml:"config_version"`
	General       GeneralConfig   `yaml:"general"`
	Catalogue     CatalogueConfig `yaml:"catalogue"`
	Preview       PreviewConfig   `yaml:"preview"`
	Logging       LoggingConfig   `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{Theme: "system"},
		Catalogue:     CatalogueConfig{BaseDir: ""},
		Preview:       PreviewConfig{ShortSide: 300, CacheEnabled: true, CacheMaxBytes: 64 * 1024 * 1024},
		Logging:       LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvBaseDir          = "LORG_BASE_DIR"
	EnvPreviewShortSide = "LORG_PREVIEW_SHORT_SIDE"
	EnvPreviewCache     = "LORG_PREVIEW_CACHE"
	EnvTheme            = "LORG_THEME"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "LORG_LOG_LEVEL"
	EnvLogFormat = "LORG_LOG_FORMAT"
	EnvLogSource = "LORG_LOG_SOURCE"
	EnvLogFile   = "LORG_LOG_FILE"
)

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "LoraOrganizer")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "LoraOrganizer")
	default: // linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = filepath.Join(xdg, "loraorganizer")
		} else if home := os.Getenv("HOME"); home != "" {
			base = filepath.Join(home, ".config", "loraorganizer")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and merges environment overrides.
// A malformed file is reported but defaults and overrides are still returned.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		applyEnvOverrides(&cfg)
		return cfg, err
	}
	var ferr error
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			ferr = fmt.Errorf("parse %s: %w", path, err)
		} else {
			mergeInto(&cfg, &fileCfg, data)
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, ferr
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// ResolvedBaseDir returns the absolute catalogue base directory.
func (c AppConfig) ResolvedBaseDir() (string, error) {
	dir := strings.TrimSpace(c.Catalogue.BaseDir)
	if dir == "" {
		dir = "."
	}
	if strings.HasPrefix(dir, "~"+string(filepath.Separator)) || dir == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, strings.TrimPrefix(dir, "~"))
		}
	}
	return filepath.Abs(dir)
}

// mergeInto copies the values set in the file over dst. raw is the file
// content, used to tell an explicit false from an absent boolean.
func mergeInto(dst *AppConfig, src *AppConfig, raw []byte) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if strings.TrimSpace(src.General.Theme) != "" {
		dst.General.Theme = strings.ToLower(strings.TrimSpace(src.General.Theme))
	}
	if strings.TrimSpace(src.Catalogue.BaseDir) != "" {
		dst.Catalogue.BaseDir = strings.TrimSpace(src.Catalogue.BaseDir)
	}
	if src.Preview.ShortSide > 0 {
		dst.Preview.ShortSide = src.Preview.ShortSide
	}
	if src.Preview.CacheMaxBytes != 0 {
		dst.Preview.CacheMaxBytes = src.Preview.CacheMaxBytes
	}
	set := presentKeys(raw)
	if set["preview.cache_enabled"] {
		dst.Preview.CacheEnabled = src.Preview.CacheEnabled
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	if set["logging.source"] {
		dst.Logging.Source = src.Logging.Source
	}
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

// presentKeys lists the dotted section.key names present in a YAML mapping.
func presentKeys(raw []byte) map[string]bool {
	out := map[string]bool{}
	var doc map[string]yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return out
	}
	for section, node := range doc {
		if node.Kind != yaml.MappingNode {
			continue
		}
		for i := 0; i+1 < len(node.Content); i += 2 {
			out[section+"."+node.Content[i].Value] = true
		}
	}
	return out
}

func parseBool(v string) bool {
	lv := strings.ToLower(strings.TrimSpace(v))
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvBaseDir)); v != "" {
		cfg.Catalogue.BaseDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvPreviewShortSide)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Preview.ShortSide = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvPreviewCache)); v != "" {
		cfg.Preview.CacheEnabled = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvTheme)); v != "" {
		cfg.General.Theme = strings.ToLower(v)
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	envs := map[string]string{
		"catalogue.base_dir":    EnvBaseDir,
		"preview.short_side":    EnvPreviewShortSide,
		"preview.cache_enabled": EnvPreviewCache,
		"general.theme":         EnvTheme,
		"logging.level":         EnvLogLevel,
		"logging.format":        EnvLogFormat,
		"logging.source":        EnvLogSource,
		"logging.file":          EnvLogFile,
	}
	if name, ok := envs[key]; ok && os.Getenv(name) != "" {
		return name, true
	}
	return "", false
}
