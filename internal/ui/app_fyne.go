//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"fmt"
	"image/color"
	"log/slog"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	fstorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"loraorganizer/internal/catalogue"
	"loraorganizer/internal/domain"
	"loraorganizer/internal/export"
	applog "loraorganizer/internal/log"
	"loraorganizer/internal/preview"
	"loraorganizer/internal/version"
)

var imageExts = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp"}

// mainWindow owns the window chrome shared by the catalogue and editor tabs.
type mainWindow struct {
	app     fyne.App
	win     fyne.Window
	opt     Options
	session *catalogue.Session

	cat    *catalogueView
	ed     *editorView
	tabs   *container.AppTabs
	catTab *container.TabItem
	edTab  *container.TabItem

	accent *canvas.Rectangle
	catSel *widget.Select
	status *widget.Label
}

// Run starts the Fyne desktop UI and blocks until the window is closed.
func Run(opt Options) error {
	l := applog.WithComponent("ui")
	l.Info("starting UI", slog.String("base", opt.BaseDir))

	fyneApp := app.NewWithID("loraorganizer")
	applyTheme(fyneApp, opt.Theme)
	mw, err := newMainWindow(fyneApp, opt)
	if err != nil {
		return err
	}
	mw.win.ShowAndRun()
	l.Info("UI closed")
	return nil
}

func newMainWindow(a fyne.App, opt Options) (*mainWindow, error) {
	s, err := catalogue.NewSession(opt.BaseDir, nil)
	if err != nil {
		return nil, err
	}
	w := a.NewWindow("LoRA Organizer")
	// Restore window size from preferences (with sane minimums)
	prefs := a.Preferences()
	winW := max(prefs.IntWithFallback("window.width", 1100), 800)
	winH := max(prefs.IntWithFallback("window.height", 750), 600)
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	mw := &mainWindow{app: a, win: w, opt: opt, session: s, status: widget.NewLabel("Ready")}
	mw.cat = newCatalogueView(mw, catalogue.NewCatalogue(s, mw.resolver(preview.CaptionNoImageFound)))
	mw.ed = newEditorView(mw, catalogue.NewEditor(s, mw.resolver(preview.CaptionNoImageSelected)))
	if opt.Crash != nil {
		opt.Crash.Draft = mw.ed.draft
	}

	mw.accent = canvas.NewRectangle(s.Category.AccentRGBA())
	mw.accent.SetMinSize(fyne.NewSize(24, 24))
	names := make([]string, 0, 3)
	for _, c := range domain.Categories() {
		names = append(names, c.String())
	}
	mw.catSel = widget.NewSelect(names, mw.switchCategory)
	mw.catSel.SetSelected(s.Category.String())

	mw.catTab = container.NewTabItem("Catalogue", mw.cat.root)
	mw.edTab = container.NewTabItem("Editor", mw.ed.root)
	mw.tabs = container.NewAppTabs(mw.catTab, mw.edTab)

	top := container.NewHBox(widget.NewLabel("Category:"), mw.catSel, mw.accent)
	w.SetContent(container.NewBorder(top, mw.status, nil, nil, mw.tabs))
	w.SetMainMenu(mw.menu())
	w.SetCloseIntercept(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		w.Close()
	})

	mw.cat.refresh()
	return mw, nil
}

func (mw *mainWindow) resolver(caption string) *preview.Resolver {
	r := preview.NewResolver(mw.opt.ShortSide, caption)
	r.Cache = mw.opt.Cache
	return r
}

func (mw *mainWindow) setStatus(s string) { mw.status.SetText(s) }

func (mw *mainWindow) showError(err error) {
	applog.WithComponent("ui").Warn("operation failed", slog.Any("err", err))
	dialog.ShowError(err, mw.win)
}

// switchCategory is the category selector callback.
func (mw *mainWindow) switchCategory(name string) {
	c, ok := domain.ParseCategory(name)
	if !ok || c == mw.session.Category {
		return
	}
	if err := mw.session.SwitchCategory(c); err != nil {
		mw.showError(err)
		mw.catSel.SetSelected(mw.session.Category.String())
		return
	}
	mw.accent.FillColor = c.AccentRGBA()
	mw.accent.Refresh()
	mw.cat.refresh()
	mw.ed.showPath()
}

func (mw *mainWindow) copyText(v string) {
	mw.win.Clipboard().SetContent(v)
	mw.setStatus("Copied: " + v)
}

// chooseFile opens a file dialog filtered by exts, starting in dir when set.
func (mw *mainWindow) chooseFile(exts []string, dir string, pick func(path string)) {
	fd := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
		if err != nil {
			mw.showError(err)
			return
		}
		if r == nil {
			return
		}
		path := r.URI().Path()
		_ = r.Close()
		pick(path)
	}, mw.win)
	fd.SetFilter(fstorage.NewExtensionFileFilter(exts))
	if dir != "" {
		if lu, err := fstorage.ListerForURI(fstorage.NewFileURI(dir)); err == nil {
			fd.SetLocation(lu)
		}
	}
	fd.Show()
}

func (mw *mainWindow) exportAs(ext string) {
	fd := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
		if err != nil {
			mw.showError(err)
			return
		}
		if uc == nil {
			return
		}
		out := uc.URI().Path()
		_ = uc.Close()
		if !strings.EqualFold(filepath.Ext(out), ext) {
			out += ext
		}
		opt := export.Options{Category: mw.session.Category, Resolver: mw.resolver(preview.CaptionNoImageFound)}
		if err := export.Write(mw.cat.c.Entries(), out, opt); err != nil {
			mw.showError(err)
			return
		}
		mw.setStatus("Exported to " + out)
	}, mw.win)
	fd.SetFileName(strings.ToLower(mw.session.Category.String()) + ext)
	fd.SetFilter(fstorage.NewExtensionFileFilter([]string{ext}))
	fd.Show()
}

func (mw *mainWindow) menu() *fyne.MainMenu {
	newItem := fyne.NewMenuItem("New Record", func() {
		mw.ed.newRecord()
		mw.tabs.Select(mw.edTab)
	})
	loadItem := fyne.NewMenuItem("Load Record…", func() {
		mw.ed.chooseRecord()
		mw.tabs.Select(mw.edTab)
	})
	saveItem := fyne.NewMenuItem("Save Record", func() { mw.ed.save() })
	refreshItem := fyne.NewMenuItem("Refresh Catalogue", func() { mw.cat.refresh() })
	pdfItem := fyne.NewMenuItem("Export Catalogue as PDF…", func() { mw.exportAs(".pdf") })
	pngItem := fyne.NewMenuItem("Export Contact Sheet as PNG…", func() { mw.exportAs(".png") })
	fileMenu := fyne.NewMenu("File", newItem, loadItem, saveItem, fyne.NewMenuItemSeparator(), refreshItem, pdfItem, pngItem)

	aboutItem := fyne.NewMenuItem("About LoRA Organizer", func() {
		dialog.ShowInformation("About", fmt.Sprintf("LoRA Organizer\n%s", version.String()), mw.win)
	})
	return fyne.NewMainMenu(fileMenu, fyne.NewMenu("About", aboutItem))
}

// previewImage wraps a preview raster, bounded to maxSide on its long edge.
func previewImage(p preview.Preview, maxSide float32) *canvas.Image {
	img := canvas.NewImageFromImage(p.Image)
	img.FillMode = canvas.ImageFillContain
	w, h := float32(p.Width), float32(p.Height)
	if s := max(w, h); s > maxSide {
		w, h = w*maxSide/s, h*maxSide/s
	}
	img.SetMinSize(fyne.NewSize(w, h))
	return img
}

// variantTheme pins the default theme to one variant.
type variantTheme struct {
	fyne.Theme
	variant fyne.ThemeVariant
}

func (t variantTheme) Color(n fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	return t.Theme.Color(n, t.variant)
}

func applyTheme(a fyne.App, name string) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "dark":
		a.Settings().SetTheme(variantTheme{Theme: theme.DefaultTheme(), variant: theme.VariantDark})
	case "light":
		a.Settings().SetTheme(variantTheme{Theme: theme.DefaultTheme(), variant: theme.VariantLight})
	}
}
