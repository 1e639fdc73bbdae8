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
	"encoding/json"
	"fmt"
)

// Fragment is one element of a scene. The editing surface owns its full
// shape; the document layer reads isDeleted and the preview layer reads the
// geometric fields. Raw keeps the original JSON so unknown fields round-trip
// losslessly.
type Fragment struct {
	ID              string      `json:"id,omitempty"`
	Type            string      `json:"type,omitempty"`
	X               float64     `json:"x,omitempty"`
	Y               float64     `json:"y,omitempty"`
	Width           float64     `json:"width,omitempty"`
	Height          float64     `json:"height,omitempty"`
	Angle           float64     `json:"angle,omitempty"`
	StrokeColor     string      `json:"strokeColor,omitempty"`
	BackgroundColor string      `json:"backgroundColor,omitempty"`
	Points          [][]float64 `json:"points,omitempty"`
	Text            string      `json:"text,omitempty"`
	FontSize        float64     `json:"fontSize,omitempty"`
	IsDeleted       bool        `json:"isDeleted,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// fragmentAlias avoids recursing into the custom (un)marshalers.
type fragmentAlias Fragment

func (f *Fragment) UnmarshalJSON(b []byte) error {
	var a fragmentAlias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*f = Fragment(a)
	f.Raw = append(json.RawMessage(nil), b...)
	return nil
}

// MarshalJSON emits the preserved raw form when present, so fields the
// document layer never interpreted survive the round trip. A caller that
// mutates the typed fields must refresh Raw or clear it; the stale raw
// form wins otherwise.
func (f Fragment) MarshalJSON() ([]byte, error) {
	if len(f.Raw) > 0 {
		return f.Raw, nil
	}
	return json.Marshal(fragmentAlias(f))
}

// ParseFragments decodes a payload into fragments after schema validation.
func ParseFragments(data string) ([]Fragment, error) {
	if err := ValidateData(data); err != nil {
		return nil, err
	}
	var frags []Fragment
	if err := json.Unmarshal([]byte(data), &frags); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedScene, err)
	}
	return frags, nil
}

// EncodeFragments serializes fragments back into a payload string.
func EncodeFragments(frags []Fragment) (string, error) {
	if len(frags) == 0 {
		return DefaultData, nil
	}
	b, err := json.Marshal(frags)
	if err != nil {
		return "", fmt.Errorf("encode fragments: %w", err)
	}
	return string(b), nil
}

// LiveCount returns the number of non-deleted fragments.
func LiveCount(frags []Fragment) int {
	n := 0
	for _, f := range frags {
		if !f.IsDeleted {
			n++
		}
	}
	return n
}
