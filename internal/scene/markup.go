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
	"html"
	"sort"
	"strconv"
	"strings"
)

// Markup attribute names on the exported container element.
const (
	PayloadAttr  = "data-excalidraw"
	VersionAttr  = "data-excalidraw-version"
	ContainerTag = "div"
)

// MarkupElement is a minimal markup container for contexts without a live
// rendering pipeline: copy/paste, static export, read-only rendering.
type MarkupElement struct {
	Tag   string
	Attrs map[string]string
	Inner string // inline content, e.g. a previously rendered SVG preview
}

// ExportToMarkup produces the container element carrying the opaque payload
// as an attribute. If a previously rendered preview is available it is
// embedded as inline content; otherwise the markup carries the payload only.
func (r *Record) ExportToMarkup(renderedPreview string) MarkupElement {
	return MarkupElement{
		Tag: ContainerTag,
		Attrs: map[string]string{
			PayloadAttr: r.Data,
			VersionAttr: strconv.Itoa(FormatVersion),
		},
		Inner: renderedPreview,
	}
}

// ImportFromMarkup recognizes a foreign markup element carrying the payload
// attribute. It returns (nil, nil) when the attribute is absent, signaling
// "not applicable" to the caller's conversion dispatch. A present but
// malformed payload is an error.
func ImportFromMarkup(key string, el MarkupElement) (*Record, error) {
	data, ok := el.Attrs[PayloadAttr]
	if !ok {
		return nil, nil
	}
	if err := ValidateData(data); err != nil {
		return nil, err
	}
	return &Record{Key: key, Data: data}, nil
}

// String renders the element as HTML with attributes in stable order.
func (el MarkupElement) String() string {
	var b strings.Builder
	b.WriteString("<")
	b.WriteString(el.Tag)
	keys := make([]string, 0, len(el.Attrs))
	for k := range el.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(" ")
		b.WriteString(k)
		b.WriteString("=\"")
		b.WriteString(html.EscapeString(el.Attrs[k]))
		b.WriteString("\"")
	}
	b.WriteString(">")
	b.WriteString(el.Inner)
	b.WriteString("</")
	b.WriteString(el.Tag)
	b.WriteString(">")
	return b.String()
}
