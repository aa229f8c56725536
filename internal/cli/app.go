/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package cli is the command-line front end. Every command is a thin call
// into the catalogue controllers; prompting, clipboard and terminal output
// live here.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/atotto/clipboard"
	"golang.org/x/term"

	"loraorganizer/internal/catalogue"
	"loraorganizer/internal/config"
	"loraorganizer/internal/crash"
	applog "loraorganizer/internal/log"
	"loraorganizer/internal/preview"
	"loraorganizer/internal/storage"
)

// App carries the configuration and the I/O seams of one CLI invocation.
// The function fields default to the terminal implementations and are
// replaced in tests.
type App struct {
	Config  config.AppConfig
	BaseDir string
	Crash   *crash.State

	Out io.Writer
	Err io.Writer

	Interactive  func() bool
	Ask          func(prompt string) (bool, error)
	CopyText     func(text string) error
	RunUI        func(a *App) error
	DisableCache bool

	session *catalogue.Session
	cache   *storage.PreviewCache
}

// NewApp returns an App wired to the process terminal.
func NewApp(cfg config.AppConfig, st *crash.State) *App {
	return &App{
		Config:      cfg,
		Crash:       st,
		Out:         os.Stdout,
		Err:         os.Stderr,
		Interactive: func() bool { return term.IsTerminal(int(os.Stdin.Fd())) },
		Ask: func(prompt string) (bool, error) {
			ok := false
			err := survey.AskOne(&survey.Confirm{Message: prompt, Default: false}, &ok)
			return ok, err
		},
		CopyText: clipboard.WriteAll,
	}
}

// Session returns the category session, creating it on first use.
func (a *App) Session() (*catalogue.Session, error) {
	if a.session != nil {
		return a.session, nil
	}
	s, err := catalogue.NewSession(a.BaseDir, nil)
	if err != nil {
		return nil, err
	}
	a.session = s
	return s, nil
}

// Resolver builds a preview resolver with the configured short side and,
// when enabled, the SQLite preview cache.
func (a *App) Resolver(caption string) *preview.Resolver {
	r := preview.NewResolver(a.Config.Preview.ShortSide, caption)
	if c := a.previewCache(); c != nil {
		r.Cache = c
	}
	return r
}

func (a *App) previewCache() *storage.PreviewCache {
	if a.DisableCache || !a.Config.Preview.CacheEnabled {
		return nil
	}
	if a.cache == nil {
		c, err := storage.OpenPreviewCache(a.BaseDir, a.Config.Preview.CacheMaxBytes)
		if err != nil {
			applog.WithComponent("cli").Warn("preview cache disabled", slog.Any("err", err))
			a.DisableCache = true
			return nil
		}
		a.cache = c
	}
	return a.cache
}

// PreviewCache exposes the opened cache (nil when disabled) for the UI.
func (a *App) PreviewCache() preview.Cache {
	if c := a.previewCache(); c != nil {
		return c
	}
	return nil
}

// Close releases the preview cache.
func (a *App) Close() error {
	if a.cache == nil {
		return nil
	}
	err := a.cache.Close()
	a.cache = nil
	return err
}

// confirmer turns --yes, the interactive prompt and the non-interactive
// default into a ConfirmFunc. nonInteractive is set when a prompt was
// needed but no terminal was available.
func (a *App) confirmer(yes bool, nonInteractive *bool) catalogue.ConfirmFunc {
	return func(prompt string) bool {
		if yes {
			return true
		}
		if a.Interactive == nil || !a.Interactive() || a.Ask == nil {
			*nonInteractive = true
			return false
		}
		ok, err := a.Ask(prompt)
		if err != nil {
			applog.WithComponent("cli").Debug("prompt aborted", slog.Any("err", err))
			return false
		}
		return ok
	}
}

// declined rewrites a refused confirmation into a hint when the refusal came
// from the missing terminal.
func declined(err error, nonInteractive bool) error {
	if nonInteractive && errors.Is(err, catalogue.ErrDeclined) {
		return fmt.Errorf("%w: not a terminal, re-run with --yes to confirm", err)
	}
	return err
}

// Execute runs the command line in args and returns the process exit code.
func Execute(a *App, args []string) int {
	root := NewRootCommand(a)
	root.SetArgs(args)
	root.SetOut(a.Out)
	root.SetErr(a.Err)
	err := root.Execute()
	if cerr := a.Close(); cerr != nil {
		applog.WithComponent("cli").Warn("closing preview cache failed", slog.Any("err", cerr))
	}
	if err != nil {
		msg := err.Error()
		if !strings.HasPrefix(msg, "Error") {
			msg = "Error: " + msg
		}
		_, _ = fmt.Fprintln(a.Err, msg)
		return 1
	}
	return 0
}
