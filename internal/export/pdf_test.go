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
	"os"
	"path/filepath"
	"testing"

	"scenedoc/internal/domain"
	"scenedoc/internal/preview"
	"scenedoc/internal/storage"
)

func TestExportPDF(t *testing.T) {
	h, _ := exportFixture(t)
	out := filepath.Join(t.TempDir(), "doc.pdf")
	if err := ExportPDF(h, preview.NewRenderer(), out, PDFOptions{Title: "My Doc"}); err != nil {
		t.Fatalf("export: %v", err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("%PDF")) {
		t.Fatalf("output is not a PDF: %q", b[:min(len(b), 8)])
	}
}

func TestExportPDFSkipsEmptyScenes(t *testing.T) {
	d := domain.NewDocument("doc-2")
	if err := d.Update(func(tx *domain.Tx) error {
		tx.InsertScene("") // empty scene, no visible content
		tx.InsertParagraph("text")
		return nil
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	h, err := storage.Init(t.TempDir(), d)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	out := filepath.Join(t.TempDir(), "doc.pdf")
	if err := ExportPDF(h, nil, out, PDFOptions{}); err != nil {
		t.Fatalf("export: %v", err)
	}
	if fi, err := os.Stat(out); err != nil || fi.Size() == 0 {
		t.Fatalf("pdf missing: %v", err)
	}
}

func TestExportPDFRelativePathUsesExportsDir(t *testing.T) {
	h, _ := exportFixture(t)
	if err := ExportPDF(h, nil, "doc.pdf", PDFOptions{}); err != nil {
		t.Fatalf("export: %v", err)
	}
	if _, err := os.Stat(filepath.Join(h.Root, "exports", "doc.pdf")); err != nil {
		t.Fatalf("relative export landed elsewhere: %v", err)
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
