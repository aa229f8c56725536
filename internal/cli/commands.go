/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"loraorganizer/internal/catalogue"
	"loraorganizer/internal/domain"
	"loraorganizer/internal/export"
	"loraorganizer/internal/preview"
	"loraorganizer/internal/storage"
	"loraorganizer/internal/version"
)

// NewRootCommand builds the loraorganizer command tree.
func NewRootCommand(a *App) *cobra.Command {
	var baseDir string
	root := &cobra.Command{
		Use:   "loraorganizer",
		Short: "Catalogue LoRA metadata as JSON records",
		Long: `LoRA Organizer keeps one JSON record per LoRA in category folders
(Character JSONs, Style JSONs, Misc JSONs) under a base directory.

Examples:
  loraorganizer category styles
  loraorganizer save --name "Red Fox" --image ~/imgs/fox.png --tag trigger="red fox"
  loraorganizer list
  loraorganizer copy-tag "Red Fox" 1`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if baseDir != "" {
				a.Config.Catalogue.BaseDir = baseDir
			}
			dir, err := a.Config.ResolvedBaseDir()
			if err != nil {
				return fmt.Errorf("resolve base dir: %w", err)
			}
			a.BaseDir = dir
			if a.Crash != nil {
				a.Crash.BaseDir = dir
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&baseDir, "base-dir", "", "catalogue base directory (default: config or working directory)")

	root.AddCommand(
		newVersionCommand(),
		newUICommand(a),
		newCategoryCommand(a),
		newListCommand(a),
		newShowCommand(a),
		newSaveCommand(a),
		newDeleteCommand(a),
		newCopyTagCommand(a),
		newPreviewCommand(a),
		newExportCommand(a),
	)
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), "LoRA Organizer")
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
			return nil
		},
	}
}

func newUICommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Launch the desktop UI (build with -tags fyne)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.RunUI == nil {
				return fmt.Errorf("desktop UI not available in this build")
			}
			return a.RunUI(a)
		},
	}
}

func newCategoryCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "category [name]",
		Short: "Show or switch the active category",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.Session()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				c, ok := domain.ParseCategory(args[0])
				if !ok {
					return fmt.Errorf("unknown category %q (choose from %s)", args[0], categoryNames())
				}
				if err := s.SwitchCategory(c); err != nil {
					return err
				}
			}
			for _, c := range domain.Categories() {
				marker := "  "
				if c == s.Category {
					marker = "* "
				}
				fmt.Fprintf(out, "%s%s %s\n", marker, badge(c), dimStyle.Render(filepath.Join(s.BaseDir, domain.ResolveFolder(c))))
			}
			return nil
		},
	}
}

func categoryNames() string {
	names := make([]string, 0, 3)
	for _, c := range domain.Categories() {
		names = append(names, c.String())
	}
	return strings.Join(names, ", ")
}

// loadCatalogue opens the active category and lists it.
func (a *App) loadCatalogue() (*catalogue.Catalogue, error) {
	s, err := a.Session()
	if err != nil {
		return nil, err
	}
	c := catalogue.NewCatalogue(s, a.Resolver(preview.CaptionNoImageFound))
	if err := c.Refresh(); err != nil {
		return nil, err
	}
	return c, nil
}

// selectRecord looks ref up in the active category and selects it.
func (a *App) selectRecord(ref string) (*catalogue.Catalogue, storage.Entry, error) {
	c, err := a.loadCatalogue()
	if err != nil {
		return nil, storage.Entry{}, err
	}
	i, ok := c.Lookup(ref)
	if !ok {
		return nil, storage.Entry{}, fmt.Errorf("record %q not found in %s", ref, c.Session().Category)
	}
	if err := c.Select(i); err != nil {
		return nil, storage.Entry{}, err
	}
	e, _ := c.Selected()
	return c, e, nil
}

func newListCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List records of the active category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.loadCatalogue()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			ents := c.Entries()
			fmt.Fprintf(out, "%s %d records\n", badge(c.Session().Category), len(ents))
			if len(ents) == 0 {
				return nil
			}
			fmt.Fprintln(out, headerStyle.Render(cell(4, "#")+cell(32, "NAME")+cell(16, "MODEL TYPE")+cell(6, "TAGS")+"FILE"))
			for i, e := range ents {
				if !e.Valid() {
					fmt.Fprintln(out, cell(4, strconv.Itoa(i+1))+invalidStyle.Render(cell(54, e.DisplayName()+" (unreadable)"))+e.Name)
					continue
				}
				fmt.Fprintln(out, cell(4, strconv.Itoa(i+1))+cell(32, e.DisplayName())+cell(16, e.Record.ModelType)+
					cell(6, strconv.Itoa(len(e.Record.Tags)))+e.Name)
			}
			return nil
		},
	}
}

func newShowCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <record>",
		Short: "Show one record",
		Long:  "Show one record. <record> is a file name, a path or a record name.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, e, err := a.selectRecord(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			r := e.Record
			fmt.Fprintln(out, headerStyle.Render(e.DisplayName())+" "+badge(c.Session().Category))
			field := func(label, v string) {
				if v != "" {
					fmt.Fprintln(out, labelStyle.Render(label)+v)
				}
			}
			field("Record", e.Path)
			field("File name", r.FileName)
			field("Source", r.Source)
			field("Model type", r.ModelType)
			field("Image", r.ImagePath)
			field("Preview", describePreview(c.Preview()))
			if len(r.Tags) > 0 {
				fmt.Fprintln(out, headerStyle.Render("Tags"))
				for i, t := range r.Tags {
					label := t.Label
					if label == "" {
						label = "-"
					}
					fmt.Fprintf(out, "  [%d] %s: %s\n", i+1, label, t.Value)
				}
			}
			if len(r.ExtraImages) > 0 {
				fmt.Fprintln(out, headerStyle.Render("Extra images"))
				extras := c.ExtraPreviews()
				for i, x := range r.ExtraImages {
					fmt.Fprintf(out, "  [%d] %s: %s %s\n", i+1, x.Title, x.ImagePath, dimStyle.Render("("+describePreview(extras[i])+")"))
				}
			}
			if r.Notes != "" {
				fmt.Fprintln(out, headerStyle.Render("Notes"))
				fmt.Fprintln(out, r.Notes)
			}
			return nil
		},
	}
}

func describePreview(p preview.Preview) string {
	switch {
	case !p.Placeholder:
		return fmt.Sprintf("%dx%d", p.Width, p.Height)
	case p.Err != nil:
		return "placeholder: " + p.Err.Error()
	default:
		return "no image"
	}
}

type saveFlags struct {
	name, fileName, source, modelType, notes, image, from string
	tags, extras                                           []string
	yes                                                    bool
}

func newSaveCommand(a *App) *cobra.Command {
	var f saveFlags
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Create or update a record in the active category",
		Long: `Create or update a record in the active category.

With --from, the named record is loaded first and only the flags given
replace its fields; --tag and --extra replace the whole list when used.
Saving over an existing file asks for confirmation (or needs --yes).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.Session()
			if err != nil {
				return err
			}
			ed := catalogue.NewEditor(s, a.Resolver(preview.CaptionNoImageSelected))
			if a.Crash != nil {
				a.Crash.Draft = func() (domain.Record, bool) { return ed.Draft(), true }
			}
			if f.from != "" {
				_, e, err := a.selectRecord(f.from)
				if err != nil {
					return err
				}
				if err := ed.Load(e.Path); err != nil {
					return err
				}
			}
			d := ed.Draft()
			changed := cmd.Flags().Changed
			if changed("name") {
				d.Name = f.name
			}
			if changed("file-name") {
				d.FileName = f.fileName
			}
			if changed("source") {
				d.Source = f.source
			}
			if changed("model-type") {
				d.ModelType = f.modelType
			}
			if changed("notes") {
				d.Notes = f.notes
			}
			if changed("image") {
				d.ImagePath = f.image
			}
			if changed("tag") {
				d.Tags = make([]domain.Tag, 0, len(f.tags))
				for _, t := range f.tags {
					label, value := splitPair(t)
					d.Tags = append(d.Tags, domain.Tag{Label: label, Value: value})
				}
			}
			if changed("extra") {
				d.ExtraImages = make([]domain.ExtraImage, 0, len(f.extras))
				for _, x := range f.extras {
					title, path := splitPair(x)
					d.ExtraImages = append(d.ExtraImages, domain.ExtraImage{Title: title, ImagePath: path})
				}
			}
			ed.SetDraft(d)

			var nonInteractive bool
			path, err := ed.Save(a.confirmer(f.yes, &nonInteractive))
			if err != nil {
				return declined(err, nonInteractive)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", path)
			if p := ed.Preview(); p.Placeholder && p.Err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: primary image: %v\n", p.Err)
			}
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.name, "name", "", "record name (also the file name)")
	fl.StringVar(&f.fileName, "file-name", "", "model file name, e.g. fox_v2.safetensors")
	fl.StringVar(&f.source, "source", "", "where the model came from")
	fl.StringVar(&f.modelType, "model-type", domain.DefaultModelType, "base model: "+strings.Join(domain.ModelTypes, ", "))
	fl.StringVar(&f.notes, "notes", "", "free-text notes")
	fl.StringVar(&f.image, "image", "", "primary preview image path")
	fl.StringArrayVar(&f.tags, "tag", nil, "tag as label=value (repeatable; value only without '=')")
	fl.StringArrayVar(&f.extras, "extra", nil, "extra image as title=path (repeatable; path only without '=')")
	fl.StringVar(&f.from, "from", "", "start from an existing record")
	fl.BoolVarP(&f.yes, "yes", "y", false, "overwrite without asking")
	return cmd
}

// splitPair splits "left=right" at the first '='. Without '=' the whole
// string is the right side.
func splitPair(s string) (string, string) {
	if i := strings.IndexByte(s, '='); i >= 0 {
		return s[:i], s[i+1:]
	}
	return "", s
}

func newDeleteCommand(a *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <record>",
		Short: "Delete a record file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, e, err := a.selectRecord(args[0])
			if err != nil {
				return err
			}
			var nonInteractive bool
			removed, err := c.DeleteSelected(a.confirmer(yes, &nonInteractive))
			if err != nil {
				return declined(err, nonInteractive)
			}
			if removed {
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", e.Path)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s was already gone\n", e.Path)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "delete without asking")
	return cmd
}

func newCopyTagCommand(a *App) *cobra.Command {
	var printOnly bool
	cmd := &cobra.Command{
		Use:   "copy-tag <record> <n>",
		Short: "Copy the value of tag n (1-based) to the clipboard",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("tag number %q: %w", args[1], err)
			}
			c, _, err := a.selectRecord(args[0])
			if err != nil {
				return err
			}
			v, err := c.TagValue(n - 1)
			if err != nil {
				return err
			}
			if printOnly {
				fmt.Fprintln(cmd.OutOrStdout(), v)
				return nil
			}
			if err := a.CopyText(v); err != nil {
				return fmt.Errorf("clipboard: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Copied: %s\n", v)
			return nil
		},
	}
	cmd.Flags().BoolVar(&printOnly, "print", false, "print the value instead of copying it")
	return cmd
}

func newPreviewCommand(a *App) *cobra.Command {
	var out string
	var extra int
	cmd := &cobra.Command{
		Use:   "preview <record>",
		Short: "Write the scaled preview of a record as PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return fmt.Errorf("--out is required")
			}
			c, e, err := a.selectRecord(args[0])
			if err != nil {
				return err
			}
			p := c.Preview()
			if extra > 0 {
				extras := c.ExtraPreviews()
				if extra > len(extras) {
					return fmt.Errorf("extra image %d: %w (record has %d)", extra, catalogue.ErrOutOfRange, len(extras))
				}
				p = extras[extra-1]
			}
			data, err := preview.EncodePNG(p.Image)
			if err != nil {
				return fmt.Errorf("encode preview: %w", err)
			}
			if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
				return fmt.Errorf("ensure out dir: %w", err)
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write preview: %w", err)
			}
			if p.Placeholder && p.Err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s: %v\n", e.DisplayName(), p.Err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s)\n", out, describePreview(p))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output PNG file")
	cmd.Flags().IntVar(&extra, "extra", 0, "write extra image n (1-based) instead of the primary image")
	return cmd
}

func newExportCommand(a *App) *cobra.Command {
	var out string
	var includeInvalid bool
	var columns int
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the active category as a PDF catalogue or PNG contact sheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return fmt.Errorf("--out is required")
			}
			c, err := a.loadCatalogue()
			if err != nil {
				return err
			}
			opt := export.Options{
				Category:       c.Session().Category,
				Resolver:       a.Resolver(preview.CaptionNoImageFound),
				IncludeInvalid: includeInvalid,
				Columns:        columns,
			}
			if err := export.Write(c.Entries(), out, opt); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d records to %s\n", len(c.Entries()), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (.pdf or .png)")
	cmd.Flags().BoolVar(&includeInvalid, "include-invalid", false, "list unreadable record files too")
	cmd.Flags().IntVar(&columns, "columns", 4, "contact sheet columns")
	return cmd
}
