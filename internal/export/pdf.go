/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"scenedoc/internal/domain"
	"scenedoc/internal/preview"
	"scenedoc/internal/storage"
)

// PDFOptions controls PDF export behavior. Units are points (pt).
// Built-in Helvetica keeps paragraph text vector without embedding fonts.
type PDFOptions struct {
	Title    string
	FontSize float64 // paragraph font size, default 12pt
	Margin   float64 // page margin, default 36pt
}

// A4 portrait in points.
const (
	pageW = 595.28
	pageH = 841.89
)

// ExportPDF writes the document as a single multi-page PDF at outPath. Scene
// nodes are embedded as raster previews scaled to the content width; empty
// scenes are skipped.
func ExportPDF(h *storage.DocumentHandle, r *preview.Renderer, outPath string, opt PDFOptions) error {
	if h == nil || h.Doc == nil {
		return fmt.Errorf("document handle is nil")
	}
	if r == nil {
		r = preview.NewRenderer()
	}
	fsz := opt.FontSize
	if fsz <= 0 {
		fsz = 12
	}
	margin := opt.Margin
	if margin <= 0 {
		margin = 36
	}
	title := opt.Title
	if title == "" {
		title = h.Doc.ID
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: pageW, Ht: pageH},
		OrientationStr: "",
	})
	pdf.SetTitle(title, false)
	pdf.SetAutoPageBreak(true, margin)
	pdf.SetMargins(margin, margin, margin)
	pdf.SetFont("Helvetica", "", fsz)
	pdf.AddPage()

	contentW := pageW - 2*margin
	imgIdx := 0
	for _, n := range h.Doc.Nodes() {
		switch n.Kind {
		case domain.KindParagraph:
			pdf.SetFont("Helvetica", "", fsz)
			pdf.MultiCell(contentW, fsz*1.4, n.Para.Text, "", "L", false)
			pdf.Ln(fsz * 0.6)
		case domain.KindScene:
			blob, bounds, err := r.RenderPNG(n.Scene)
			if err != nil {
				return fmt.Errorf("export node %s: %w", n.Key, err)
			}
			if blob == nil {
				continue // empty scene, no visible content
			}
			imgIdx++
			name := fmt.Sprintf("scene-%d", imgIdx)
			pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(blob))
			w := float64(bounds.W) + 20 // rendered image includes padding
			hgt := float64(bounds.H) + 20
			if w > contentW {
				hgt = hgt * contentW / w
				w = contentW
			}
			if pdf.GetY()+hgt > pageH-margin {
				pdf.AddPage()
			}
			pdf.ImageOptions(name, margin, pdf.GetY(), w, hgt, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
			pdf.SetY(pdf.GetY() + hgt + fsz*0.6)
		}
	}

	if !filepath.IsAbs(outPath) {
		outPath = filepath.Join(h.Root, "exports", outPath)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
