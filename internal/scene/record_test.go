/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package scene

import (
	"errors"
	"testing"
)

func TestNewDefaultsToEmptyScene(t *testing.T) {
	r := New("k1", "")
	if r.Data != DefaultData {
		t.Fatalf("expected default data, got %q", r.Data)
	}
}

func TestImportExportRoundTrip(t *testing.T) {
	data := `[{"id":"a","type":"rectangle","x":1,"y":2,"width":3,"height":4}]`
	r, err := ImportSerialized("k1", SerializedForm{Type: TypeName, Version: FormatVersion, Data: data})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	f := r.ExportSerialized()
	if f.Type != TypeName || f.Version != FormatVersion || f.Data != data {
		t.Fatalf("round trip changed form: %+v", f)
	}
}

func TestImportRejectsForeignType(t *testing.T) {
	_, err := ImportSerialized("k", SerializedForm{Type: "mermaid-diagram", Version: FormatVersion, Data: "[]"})
	if !errors.Is(err, ErrWrongType) {
		t.Fatalf("expected ErrWrongType, got %v", err)
	}
}

func TestImportRejectsUnknownVersion(t *testing.T) {
	_, err := ImportSerialized("k", SerializedForm{Type: TypeName, Version: 2, Data: "[]"})
	if !errors.Is(err, ErrWrongVersion) {
		t.Fatalf("expected ErrWrongVersion, got %v", err)
	}
}

func TestImportRejectsMalformedPayload(t *testing.T) {
	for _, data := range []string{`{`, `{"not":"an array"}`, `[{"isDeleted":"yes"}]`} {
		_, err := ImportSerialized("k", SerializedForm{Type: TypeName, Version: FormatVersion, Data: data})
		if !errors.Is(err, ErrMalformedScene) {
			t.Fatalf("data %q: expected ErrMalformedScene, got %v", data, err)
		}
	}
}

func TestSetDataEmptyMeansDefault(t *testing.T) {
	r := New("k", `[{"id":"a"}]`)
	r.SetData("")
	if r.Data != DefaultData {
		t.Fatalf("expected default data, got %q", r.Data)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	r := New("k", `[{"id":"a"}]`)
	cp := r.Clone()
	cp.SetData(`[{"id":"b"}]`)
	if r.Data == cp.Data {
		t.Fatalf("clone must not share data")
	}
	if cp.Key != r.Key {
		t.Fatalf("clone must keep the identity key")
	}
}
