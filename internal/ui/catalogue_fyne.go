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

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"loraorganizer/internal/catalogue"
	"loraorganizer/internal/storage"
)

// catalogueView is the browsing tab: record list on the left, details of the
// selection on the right.
type catalogueView struct {
	mw     *mainWindow
	c      *catalogue.Catalogue
	ents   []storage.Entry
	list   *widget.List
	detail *fyne.Container
	root   fyne.CanvasObject
}

func newCatalogueView(mw *mainWindow, c *catalogue.Catalogue) *catalogueView {
	v := &catalogueView{mw: mw, c: c}
	v.list = widget.NewList(
		func() int { return len(v.ents) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(i widget.ListItemID, o fyne.CanvasObject) {
			lbl := o.(*widget.Label)
			if i < 0 || i >= len(v.ents) {
				lbl.SetText("")
				return
			}
			e := v.ents[i]
			if e.Valid() {
				lbl.Importance = widget.MediumImportance
				lbl.SetText(e.DisplayName())
			} else {
				lbl.Importance = widget.DangerImportance
				lbl.SetText(e.DisplayName() + " (unreadable)")
			}
		},
	)
	v.list.OnSelected = v.selectEntry
	v.detail = container.NewVBox()
	split := container.NewHSplit(v.list, container.NewVScroll(v.detail))
	split.SetOffset(0.3)
	v.root = split
	v.showDetail()
	return v
}

// refresh re-lists the active category and clears the selection.
func (v *catalogueView) refresh() {
	if err := v.c.Refresh(); err != nil {
		v.mw.showError(err)
	}
	v.ents = v.c.Entries()
	v.list.UnselectAll()
	v.list.Refresh()
	v.showDetail()
	v.mw.setStatus(fmt.Sprintf("%d records in %s", len(v.ents), v.c.Session().Category))
}

// selectEntry opens entry id. An unreadable entry leaves the previous
// selection in place, so the list highlight is moved back to it.
func (v *catalogueView) selectEntry(id widget.ListItemID) {
	if err := v.c.Select(id); err != nil {
		v.mw.setStatus("Cannot open record: " + err.Error())
		if prev := v.c.SelectedIndex(); prev >= 0 && prev != id {
			v.list.Select(prev)
		} else {
			v.list.UnselectAll()
		}
	}
	v.showDetail()
}

func (v *catalogueView) showDetail() {
	v.detail.RemoveAll()
	defer v.detail.Refresh()

	e, ok := v.c.Selected()
	if !ok {
		v.detail.Add(previewImage(v.c.Preview(), 360))
		v.detail.Add(widget.NewLabel("Select a record to see its details."))
		return
	}
	r := e.Record
	v.detail.Add(widget.NewLabelWithStyle(e.DisplayName(), fyne.TextAlignLeading, fyne.TextStyle{Bold: true}))
	v.detail.Add(previewImage(v.c.Preview(), 360))

	form := widget.NewForm()
	for _, f := range []struct{ label, value string }{
		{"File name", r.FileName},
		{"Source", r.Source},
		{"Model type", r.ModelType},
		{"Image", r.ImagePath},
		{"Record", e.Path},
	} {
		if f.value != "" {
			form.Append(f.label, widget.NewLabel(f.value))
		}
	}
	v.detail.Add(form)

	if len(r.Tags) > 0 {
		v.detail.Add(widget.NewLabelWithStyle("Tags (click to copy)", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}))
		for _, t := range r.Tags {
			value := t.Value
			text := value
			if t.Label != "" {
				text = t.Label + ": " + value
			}
			v.detail.Add(widget.NewButton(text, func() { v.mw.copyText(value) }))
		}
	}

	if len(r.ExtraImages) > 0 {
		v.detail.Add(widget.NewLabelWithStyle("Extra images", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}))
		grid := container.NewGridWrap(fyne.NewSize(220, 250))
		for i, p := range v.c.ExtraPreviews() {
			title := r.ExtraImages[i].Title
			if title == "" {
				title = fmt.Sprintf("Image %d", i+1)
			}
			grid.Add(container.NewBorder(widget.NewLabel(title), nil, nil, nil, previewImage(p, 200)))
		}
		v.detail.Add(grid)
	}

	if r.Notes != "" {
		v.detail.Add(widget.NewLabelWithStyle("Notes", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}))
		notes := widget.NewLabel(r.Notes)
		notes.Wrapping = fyne.TextWrapWord
		v.detail.Add(notes)
	}

	path := e.Path
	edit := widget.NewButton("Edit", func() {
		v.mw.ed.load(path)
		v.mw.tabs.Select(v.mw.edTab)
	})
	del := widget.NewButton("Delete", v.confirmDelete)
	del.Importance = widget.DangerImportance
	v.detail.Add(container.NewHBox(edit, del))
}

func (v *catalogueView) confirmDelete() {
	e, ok := v.c.Selected()
	if !ok {
		return
	}
	msg := fmt.Sprintf("Delete %q from %s?\n%s", e.DisplayName(), v.c.Session().Category, e.Path)
	dialog.ShowConfirm("Delete record", msg, func(yes bool) {
		if !yes {
			return
		}
		if _, err := v.c.DeleteSelected(func(string) bool { return true }); err != nil {
			v.mw.showError(err)
			return
		}
		v.refresh()
		v.mw.setStatus("Deleted " + e.Path)
	}, v.mw.win)
}
