/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"loraorganizer/internal/cli"
	"loraorganizer/internal/config"
	"loraorganizer/internal/crash"
	applog "loraorganizer/internal/log"
	"loraorganizer/internal/ui"
)

func main() {
	// .env in the working directory is optional
	_ = godotenv.Load()

	cfg, cfgErr := config.Load()
	applog.Init(applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
	})
	l := applog.WithComponent("cli")
	if cfgErr != nil {
		l.Warn("config not loaded, using defaults", slog.Any("err", cfgErr))
	}
	l.Debug("start", slog.Int("args", len(os.Args)))
	os.Exit(run(cfg, os.Args[1:]))
}

func run(cfg config.AppConfig, args []string) int {
	st := &crash.State{}
	defer crash.Recover(st)

	a := cli.NewApp(cfg, st)
	a.RunUI = func(a *cli.App) error {
		err := ui.Run(ui.Options{
			BaseDir:   a.BaseDir,
			ShortSide: a.Config.Preview.ShortSide,
			Cache:     a.PreviewCache(),
			Theme:     a.Config.General.Theme,
			Crash:     st,
		})
		if err != nil {
			return fmt.Errorf("ui: %w", err)
		}
		return nil
	}
	return cli.Execute(a, args)
}
