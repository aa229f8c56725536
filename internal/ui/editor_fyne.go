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
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"loraorganizer/internal/catalogue"
	"loraorganizer/internal/domain"
)

// editorView is the form tab bound to one catalogue.Editor draft.
type editorView struct {
	mw *mainWindow
	ed *catalogue.Editor

	name      *widget.Entry
	fileName  *widget.Entry
	source    *widget.Entry
	modelType *widget.SelectEntry
	notes     *widget.Entry
	imagePath *widget.Label
	primary   *fyne.Container
	tagsBox   *fyne.Container
	extrasBox *fyne.Container
	pathLabel *widget.Label
	root      fyne.CanvasObject

	filling bool
}

func newEditorView(mw *mainWindow, ed *catalogue.Editor) *editorView {
	v := &editorView{mw: mw, ed: ed}
	v.name = widget.NewEntry()
	v.name.SetPlaceHolder("Name (also the file name)")
	v.fileName = widget.NewEntry()
	v.fileName.SetPlaceHolder("model_v1.safetensors")
	v.source = widget.NewEntry()
	v.source.SetPlaceHolder("URL or origin")
	v.modelType = widget.NewSelectEntry(domain.ModelTypes)
	v.notes = widget.NewMultiLineEntry()
	v.notes.SetMinRowsVisible(4)
	v.notes.Wrapping = fyne.TextWrapWord
	for _, e := range []*widget.Entry{v.name, v.fileName, v.source, &v.modelType.Entry, v.notes} {
		e.OnChanged = func(string) { v.sync() }
	}

	v.imagePath = widget.NewLabel("")
	v.imagePath.Truncation = fyne.TextTruncateEllipsis
	v.primary = container.NewStack()
	choose := widget.NewButton("Choose Image…", func() {
		v.mw.chooseFile(imageExts, "", func(path string) {
			v.ed.SetPrimaryImage(path)
			v.showPrimary()
		})
	})
	clearBtn := widget.NewButton("Clear", func() {
		v.ed.SetPrimaryImage("")
		v.showPrimary()
	})

	v.tagsBox = container.NewVBox()
	addTag := widget.NewButton("Add Tag", func() {
		v.ed.AddTag("", "")
		v.showTags()
	})
	v.extrasBox = container.NewVBox()
	addExtra := widget.NewButton("Add Image", func() {
		v.mw.chooseFile(imageExts, "", func(path string) {
			v.ed.AddExtraImage("", path)
			v.showExtras()
		})
	})

	form := widget.NewForm(
		widget.NewFormItem("Name", v.name),
		widget.NewFormItem("File name", v.fileName),
		widget.NewFormItem("Source", v.source),
		widget.NewFormItem("Model type", v.modelType),
		widget.NewFormItem("Notes", v.notes),
	)
	v.pathLabel = widget.NewLabel("")
	saveBtn := widget.NewButton("Save", v.save)
	saveBtn.Importance = widget.HighImportance
	buttons := container.NewHBox(
		widget.NewButton("New", v.newRecord),
		widget.NewButton("Load…", v.chooseRecord),
		saveBtn,
	)
	left := container.NewVBox(
		form,
		widget.NewLabelWithStyle("Tags", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		v.tagsBox, addTag,
		widget.NewLabelWithStyle("Extra images", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		v.extrasBox, addExtra,
	)
	right := container.NewVBox(
		widget.NewLabelWithStyle("Primary image", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		v.primary, v.imagePath, container.NewHBox(choose, clearBtn),
	)
	split := container.NewHSplit(container.NewVScroll(left), container.NewVScroll(right))
	split.SetOffset(0.6)
	v.root = container.NewBorder(nil, container.NewBorder(nil, nil, nil, buttons, v.pathLabel), nil, nil, split)
	v.fill()
	return v
}

// draft feeds the crash handler.
func (v *editorView) draft() (domain.Record, bool) {
	d := v.ed.Draft()
	empty := d.Name == "" && d.Notes == "" && d.ImagePath == "" && len(d.Tags) == 0 && len(d.ExtraImages) == 0
	return d, !empty
}

// sync copies the scalar form fields into the draft.
func (v *editorView) sync() {
	if v.filling {
		return
	}
	d := v.ed.Draft()
	d.Name = v.name.Text
	d.FileName = v.fileName.Text
	d.Source = v.source.Text
	d.ModelType = v.modelType.Text
	d.Notes = v.notes.Text
	v.ed.SetDraft(d)
}

// fill rebuilds every widget from the draft.
func (v *editorView) fill() {
	d := v.ed.Draft()
	v.filling = true
	v.name.SetText(d.Name)
	v.fileName.SetText(d.FileName)
	v.source.SetText(d.Source)
	v.modelType.SetText(d.ModelType)
	v.notes.SetText(d.Notes)
	v.filling = false
	v.showPrimary()
	v.showTags()
	v.showExtras()
	v.showPath()
}

func (v *editorView) showPath() {
	if p := v.ed.Path(); p != "" {
		v.pathLabel.SetText(p)
		return
	}
	v.pathLabel.SetText("New record in " + v.mw.session.Category.String())
}

func (v *editorView) showPrimary() {
	v.primary.RemoveAll()
	v.primary.Add(previewImage(v.ed.Preview(), 360))
	v.primary.Refresh()
	v.imagePath.SetText(v.ed.Draft().ImagePath)
}

func (v *editorView) showTags() {
	v.tagsBox.RemoveAll()
	for i, t := range v.ed.Draft().Tags {
		label := widget.NewEntry()
		label.SetPlaceHolder("Label")
		label.SetText(t.Label)
		value := widget.NewEntry()
		value.SetPlaceHolder("Value")
		value.SetText(t.Value)
		label.OnChanged = func(s string) {
			d := v.ed.Draft()
			d.Tags[i].Label = s
			v.ed.SetDraft(d)
		}
		value.OnChanged = func(s string) {
			d := v.ed.Draft()
			d.Tags[i].Value = s
			v.ed.SetDraft(d)
		}
		remove := widget.NewButton("Remove", func() {
			if err := v.ed.RemoveTag(i); err == nil {
				v.showTags()
			}
		})
		v.tagsBox.Add(container.NewBorder(nil, nil, nil, remove, container.NewGridWithColumns(2, label, value)))
	}
	v.tagsBox.Refresh()
}

func (v *editorView) showExtras() {
	v.extrasBox.RemoveAll()
	d := v.ed.Draft()
	for i, p := range v.ed.ExtraPreviews() {
		title := widget.NewEntry()
		title.SetPlaceHolder("Title")
		title.SetText(d.ExtraImages[i].Title)
		title.OnChanged = func(s string) {
			d := v.ed.Draft()
			d.ExtraImages[i].Title = s
			v.ed.SetDraft(d)
		}
		path := widget.NewLabel(d.ExtraImages[i].ImagePath)
		path.Truncation = fyne.TextTruncateEllipsis
		change := widget.NewButton("Change…", func() {
			v.mw.chooseFile(imageExts, "", func(p string) {
				d := v.ed.Draft()
				d.ExtraImages[i].ImagePath = p
				v.ed.SetDraft(d)
				v.showExtras()
			})
		})
		remove := widget.NewButton("Remove", func() {
			if err := v.ed.RemoveExtraImage(i); err == nil {
				v.showExtras()
			}
		})
		row := container.NewBorder(nil, nil, previewImage(p, 96), container.NewHBox(change, remove),
			container.NewVBox(title, path))
		v.extrasBox.Add(row)
	}
	v.extrasBox.Refresh()
}

func (v *editorView) newRecord() {
	v.ed.New()
	v.fill()
	v.mw.setStatus("New record")
}

func (v *editorView) chooseRecord() {
	v.mw.chooseFile([]string{domain.RecordExt}, v.mw.session.Folder, v.load)
}

// load replaces the draft with the record at path. On failure the current
// draft stays.
func (v *editorView) load(path string) {
	if err := v.ed.Load(path); err != nil {
		v.mw.showError(err)
		return
	}
	v.fill()
	v.mw.setStatus("Loaded " + path)
}

// save writes the draft, asking before an existing file is replaced.
func (v *editorView) save() {
	v.saveWith(func(prompt string, proceed func()) {
		dialog.ShowConfirm("Overwrite record", prompt, func(yes bool) {
			if yes {
				proceed()
			}
		}, v.mw.win)
	})
}

// saveWith writes the draft. When the target exists, ask shows the prompt
// and calls proceed on approval. The approval covers only the target named in
// that prompt; if the draft now points elsewhere, the user is asked again.
func (v *editorView) saveWith(ask func(prompt string, proceed func())) {
	v.sync()
	var prompt string
	path, err := v.ed.Save(func(p string) bool { prompt = p; return false })
	if catalogue.IsDeclined(err) {
		ask(prompt, func() {
			approved := prompt
			path, err := v.ed.Save(func(p string) bool { return p == approved })
			if catalogue.IsDeclined(err) {
				v.saveWith(ask)
				return
			}
			v.saved(path, err)
		})
		return
	}
	v.saved(path, err)
}

func (v *editorView) saved(path string, err error) {
	if err != nil {
		v.mw.showError(err)
		return
	}
	v.showPath()
	v.mw.setStatus("Saved " + path)
	v.mw.cat.refresh()
}
