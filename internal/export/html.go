/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package export turns a document into static artifacts: a standalone HTML
// file carrying each scene's payload and preview, and a PDF with raster
// previews. Export runs without a live rendering pipeline; scene previews
// come from the renderer's cache, with a render on demand as fallback.
package export

import (
	"bytes"
	"fmt"
	"html"
	"os"
	"path/filepath"

	"scenedoc/internal/domain"
	"scenedoc/internal/preview"
	"scenedoc/internal/storage"
)

// HTMLOptions controls HTML export behavior.
type HTMLOptions struct {
	Title string
}

// ExportHTML writes the document as a single HTML file at outPath. Paragraphs
// become <p> elements; scene nodes become container elements carrying the
// payload attribute plus the last rendered SVG preview inline, so the file
// round-trips through ImportFromMarkup losslessly.
func ExportHTML(h *storage.DocumentHandle, r *preview.Renderer, outPath string, opt HTMLOptions) error {
	if h == nil || h.Doc == nil {
		return fmt.Errorf("document handle is nil")
	}
	if r == nil {
		r = preview.NewRenderer()
	}
	title := opt.Title
	if title == "" {
		title = h.Doc.ID
	}

	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}

	wf("<!DOCTYPE html>\n<html>\n<head>\n")
	wf("  <meta charset=\"utf-8\"/>\n")
	wf("  <title>%s</title>\n", html.EscapeString(title))
	wf("</head>\n<body>\n")

	for _, n := range h.Doc.Nodes() {
		switch n.Kind {
		case domain.KindParagraph:
			wf("  <p>%s</p>\n", html.EscapeString(n.Para.Text))
		case domain.KindScene:
			svg, err := scenePreviewSVG(r, n)
			if err != nil {
				return fmt.Errorf("export node %s: %w", n.Key, err)
			}
			wf("  %s\n", n.Scene.ExportToMarkup(svg).String())
		}
	}

	wf("</body>\n</html>\n")
	if werr != nil {
		return fmt.Errorf("build html: %w", werr)
	}

	if !filepath.IsAbs(outPath) {
		outPath = filepath.Join(h.Root, "exports", outPath)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write html: %w", err)
	}
	return nil
}

// scenePreviewSVG returns the cached preview for the node, rendering on
// demand when the cache has nothing yet.
func scenePreviewSVG(r *preview.Renderer, n *domain.Node) (string, error) {
	if res, ok := r.Cached(string(n.Key)); ok {
		return res.SVG, nil
	}
	res, err := r.Render(n.Scene)
	if err != nil {
		return "", err
	}
	return res.SVG, nil
}
