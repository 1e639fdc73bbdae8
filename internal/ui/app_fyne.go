//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"bytes"
	"fmt"
	"log/slog"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"scenedoc/internal/config"
	"scenedoc/internal/crash"
	"scenedoc/internal/domain"
	"scenedoc/internal/export"
	applog "scenedoc/internal/log"
	"scenedoc/internal/preview"
	"scenedoc/internal/scene"
	"scenedoc/internal/session"
	"scenedoc/internal/storage"
)

// Run starts the Fyne-based desktop UI shell: a node list on the left, the
// selected scene's preview on the right, and a modal payload editor driven by
// the session workflow.
func Run(docDir string) error {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("ui")
	l.Info("starting UI")

	cfg, _, err := config.Load()
	if err != nil {
		l.Warn("config load failed, using defaults", slog.Any("err", err))
		cfg = config.Defaults()
	}

	var h *storage.DocumentHandle
	defer func() { crash.Recover(h) }()

	if docDir != "" {
		h, err = storage.Open(docDir)
		if err != nil {
			l.Info("open failed, initializing new document", slog.Any("err", err))
			h, err = storage.Init(docDir, domain.NewDocument(filepath.Base(docDir)))
			if err != nil {
				return fmt.Errorf("init document: %w", err)
			}
		}
	} else {
		h = &storage.DocumentHandle{Doc: domain.NewDocument("untitled")}
	}
	doc := h.Doc
	renderer := preview.NewRenderer()

	fyneApp := app.NewWithID("scenedoc")
	w := fyneApp.NewWindow("SceneDoc")
	w.Resize(fyne.NewSize(1000, 700))

	status := widget.NewLabel("Ready")
	previewBox := container.NewMax()

	refreshPreview := func(key domain.NodeKey) {
		previewBox.Objects = nil
		n, ok := doc.Find(key)
		if ok && n.Kind == domain.KindScene {
			blob, _, err := renderer.RenderPNG(n.Scene)
			if err != nil {
				status.SetText(fmt.Sprintf("render error: %v", err))
			} else if blob != nil {
				img := canvas.NewImageFromReader(bytes.NewReader(blob), string(key)+".png")
				img.FillMode = canvas.ImageFillContain
				previewBox.Objects = []fyne.CanvasObject{img}
			} else {
				previewBox.Objects = []fyne.CanvasObject{widget.NewLabel("(empty scene)")}
			}
		}
		previewBox.Refresh()
	}

	var nodeList *widget.List
	nodeList = widget.NewList(
		func() int { return doc.Len() },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(i widget.ListItemID, o fyne.CanvasObject) {
			nodes := doc.Nodes()
			if i < 0 || i >= len(nodes) {
				return
			}
			n := nodes[i]
			lbl := o.(*widget.Label)
			switch n.Kind {
			case domain.KindParagraph:
				text := n.Para.Text
				if len(text) > 40 {
					text = text[:40] + "…"
				}
				lbl.SetText("¶ " + text)
			case domain.KindScene:
				frags, err := scene.ParseFragments(n.Scene.Data)
				if err != nil {
					lbl.SetText("✦ scene (malformed)")
				} else {
					lbl.SetText(fmt.Sprintf("✦ scene (%d elements)", scene.LiveCount(frags)))
				}
			}
		},
	)

	refresh := func() {
		nodeList.Refresh()
	}

	keyAt := func(i int) (domain.NodeKey, bool) {
		nodes := doc.Nodes()
		if i < 0 || i >= len(nodes) {
			return "", false
		}
		return nodes[i].Key, true
	}

	var openEditor func(key domain.NodeKey)
	openEditor = func(key domain.NodeKey) {
		entry := widget.NewMultiLineEntry()
		entry.Wrapping = fyne.TextWrapWord
		surface := &entrySurface{entry: entry}

		var sess *session.Session
		sess, err := session.Open(doc, key, surface, nil, session.Options{
			CloseOnOutsideClick: cfg.Editor.CloseOnOutsideClick,
			ConfirmDiscard:      false, // the UI confirms before calling Discard
			OnClosed: func(out session.Outcome) {
				if surface.popup != nil {
					surface.popup.Hide()
				}
				refresh()
				refreshPreview(key)
				switch out {
				case session.OutcomeCommitted:
					status.SetText("Scene committed")
				case session.OutcomeDiscarded:
					status.SetText("Edits discarded")
				case session.OutcomeRemoved:
					status.SetText("Scene removed")
				}
			},
		})
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		if sess == nil {
			return
		}

		commitBtn := widget.NewButton("Commit", func() { sess.Commit() })
		discardBtn := widget.NewButton("Discard", func() {
			if scene.LiveCount(sess.Working()) > 0 && cfg.Editor.ConfirmDiscard {
				dialog.ShowConfirm("Discard edits", "Throw away the changes to this scene?", func(ok bool) {
					if ok {
						sess.Discard()
					}
				}, w)
				return
			}
			sess.Discard()
		})
		content := container.NewBorder(
			widget.NewLabel("Scene payload (element JSON)"),
			container.NewHBox(commitBtn, discardBtn),
			nil, nil, entry,
		)
		surface.popup = widget.NewModalPopUp(content, w.Canvas())
		surface.popup.Resize(fyne.NewSize(600, 420))
		surface.popup.Show()
	}

	nodeList.OnSelected = func(i widget.ListItemID) {
		key, ok := keyAt(i)
		if !ok {
			return
		}
		doc.SelectExclusive(key)
		refreshPreview(key)
	}

	addParagraph := widget.NewButton("Add Paragraph", func() {
		entry := widget.NewEntry()
		dialog.ShowForm("New paragraph", "Add", "Cancel",
			[]*widget.FormItem{widget.NewFormItem("Text", entry)},
			func(ok bool) {
				if !ok {
					return
				}
				_ = doc.Update(func(tx *domain.Tx) error {
					tx.InsertParagraph(entry.Text)
					return nil
				})
				refresh()
			}, w)
	})
	addScene := widget.NewButton("Add Scene", func() {
		var key domain.NodeKey
		_ = doc.Update(func(tx *domain.Tx) error {
			key = tx.InsertScene("").Key
			return nil
		})
		refresh()
		// a freshly inserted empty scene goes straight into editing
		openEditor(key)
	})
	editBtn := widget.NewButton("Edit", func() {
		for _, n := range doc.Nodes() {
			if doc.IsSoleSelection(n.Key) && n.Kind == domain.KindScene {
				openEditor(n.Key)
				return
			}
		}
		status.SetText("Select a single scene node first")
	})
	deleteBtn := widget.NewButton("Delete", func() {
		for _, n := range doc.Nodes() {
			if doc.IsSoleSelection(n.Key) {
				key := n.Key
				_ = doc.Update(func(tx *domain.Tx) error {
					tx.RemoveNode(key)
					return nil
				})
				doc.ClearSelection()
				refresh()
				return
			}
		}
	})
	undoBtn := widget.NewButton("Undo", func() {
		if doc.Undo() {
			refresh()
		}
	})
	redoBtn := widget.NewButton("Redo", func() {
		if doc.Redo() {
			refresh()
		}
	})
	saveBtn := widget.NewButton("Save", func() {
		if h.ManifestPath == "" {
			status.SetText("No document directory (start with a path to enable saving)")
			return
		}
		if err := storage.Save(h); err != nil {
			dialog.ShowError(err, w)
			return
		}
		status.SetText("Saved " + h.ManifestPath)
	})
	exportHTMLBtn := widget.NewButton("Export HTML", func() {
		if err := export.ExportHTML(h, renderer, "document.html", export.HTMLOptions{}); err != nil {
			dialog.ShowError(err, w)
			return
		}
		status.SetText("Exported document.html")
	})
	exportPDFBtn := widget.NewButton("Export PDF", func() {
		if err := export.ExportPDF(h, renderer, "document.pdf", export.PDFOptions{}); err != nil {
			dialog.ShowError(err, w)
			return
		}
		status.SetText("Exported document.pdf")
	})

	toolbar := container.NewHBox(addParagraph, addScene, editBtn, deleteBtn,
		widget.NewSeparator(), undoBtn, redoBtn,
		widget.NewSeparator(), saveBtn, exportHTMLBtn, exportPDFBtn)

	split := container.NewHSplit(nodeList, previewBox)
	split.Offset = 0.35
	w.SetContent(container.NewBorder(toolbar, status, nil, nil, split))
	w.ShowAndRun()
	return nil
}

// entrySurface adapts a multi-line entry to the session's editing surface:
// the payload is edited as raw element JSON and parsed on every keystroke.
type entrySurface struct {
	entry *widget.Entry
	popup *widget.PopUp
}

func (s *entrySurface) Show(initial []scene.Fragment, onChange func([]scene.Fragment)) {
	data, err := scene.EncodeFragments(initial)
	if err != nil {
		data = scene.DefaultData
	}
	s.entry.SetText(data)
	s.entry.OnChanged = func(text string) {
		frags, err := scene.ParseFragments(text)
		if err != nil {
			return // keep the previous working copy while the JSON is invalid
		}
		onChange(frags)
	}
}

func (s *entrySurface) Close() {
	s.entry.OnChanged = nil
	if s.popup != nil {
		s.popup.Hide()
	}
}
