/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package scene holds the embedded vector-scene entity: an opaque serialized
// payload plus a fixed format version, carried as a node inside the document
// tree. The document layer treats the payload as opaque except for the
// isDeleted flag on each element fragment.
package scene

import (
	"errors"
	"fmt"

	gojsonschema "github.com/xeipuuv/gojsonschema"
)

const (
	// TypeName is the persisted type tag of a serialized scene.
	TypeName = "excalidraw-scene"
	// FormatVersion is fixed; a future format change requires a new version
	// value and a migration path.
	FormatVersion = 1
	// DefaultData is the payload of a freshly inserted, empty scene.
	DefaultData = "[]"
)

var (
	// ErrMalformedScene marks a payload that does not deserialize to a
	// well-formed array of element fragments. It surfaces as a node-level
	// render error, never as a document-wide failure.
	ErrMalformedScene = errors.New("malformed scene payload")
	// ErrWrongType marks a serialized form whose type tag is foreign.
	ErrWrongType = errors.New("not an excalidraw scene")
	// ErrWrongVersion marks a serialized form from an unknown format version.
	ErrWrongVersion = errors.New("unsupported scene format version")
)

// Record is a scene embedded in the document: an identity key and the
// opaque serialized element payload.
type Record struct {
	Key  string `json:"key"`
	Data string `json:"data"`
}

// New constructs a record; empty data means the default empty scene.
func New(key, data string) *Record {
	if data == "" {
		data = DefaultData
	}
	return &Record{Key: key, Data: data}
}

// Clone produces an independent record carrying the same data and identity
// key, for the document model's structural-sharing copy protocol.
func (r *Record) Clone() *Record {
	cp := *r
	return &cp
}

// SerializedForm is the externally persisted/exported shape of a record.
type SerializedForm struct {
	Type    string `json:"type"`
	Version int    `json:"version"`
	Data    string `json:"data"`
}

// ImportSerialized constructs a record from the persisted shape. A payload
// that is not syntactically valid fails with ErrMalformedScene; the caller
// reports it as a render-time error, not a crash.
func ImportSerialized(key string, f SerializedForm) (*Record, error) {
	if f.Type != TypeName {
		return nil, fmt.Errorf("%w: %q", ErrWrongType, f.Type)
	}
	if f.Version != FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrWrongVersion, f.Version)
	}
	if err := ValidateData(f.Data); err != nil {
		return nil, err
	}
	return &Record{Key: key, Data: f.Data}, nil
}

// ExportSerialized is a pure projection; it always succeeds for a valid record.
func (r *Record) ExportSerialized() SerializedForm {
	return SerializedForm{Type: TypeName, Version: FormatVersion, Data: r.Data}
}

// SetData replaces the payload. It must only be called inside the document's
// transactional mutation scope (domain.Tx); readers observe the new payload
// only after the transaction commits.
func (r *Record) SetData(data string) {
	if data == "" {
		data = DefaultData
	}
	r.Data = data
}

// payloadSchema accepts an array of objects whose isDeleted, when present,
// is a boolean. All other fragment fields are owned by the editing surface.
const payloadSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"properties": {
			"isDeleted": {"type": "boolean"}
		}
	}
}`

var schemaLoader = gojsonschema.NewStringLoader(payloadSchema)

// ValidateData checks that data deserializes to a well-formed fragment array.
func ValidateData(data string) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewStringLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedScene, err)
	}
	if !result.Valid() {
		errs := result.Errors()
		if len(errs) > 0 {
			return fmt.Errorf("%w: %s", ErrMalformedScene, errs[0].String())
		}
		return ErrMalformedScene
	}
	return nil
}
