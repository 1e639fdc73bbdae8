/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package preview

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"scenedoc/internal/scene"
	"scenedoc/internal/vector"
)

const (
	defaultStroke   = "#1e1e1e"
	defaultFontSize = 16.0
)

// renderSVG emits a standalone SVG document whose viewBox is the padded
// element extents, so the preview is fitted to its content.
func renderSVG(frags []scene.Fragment, bounds vector.Rect) string {
	vx := float64(bounds.X) - pad
	vy := float64(bounds.Y) - pad
	vw := float64(bounds.W) + 2*pad
	vh := float64(bounds.H) + 2*pad

	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}

	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" viewBox=\"%g %g %g %g\">\n", vx, vy, vw, vh)
	wf("  <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" fill=\"#ffffff\"/>\n", vx, vy, vw, vh)

	for _, f := range frags {
		writeFragment(wf, f)
	}

	wf("</svg>\n")
	if werr != nil {
		// writes to a bytes.Buffer cannot fail; keep the partial output
		return buf.String()
	}
	return buf.String()
}

func writeFragment(wf func(string, ...any), f scene.Fragment) {
	stroke := f.StrokeColor
	if stroke == "" {
		stroke = defaultStroke
	}
	fill := f.BackgroundColor
	if fill == "" {
		fill = "transparent"
	}
	xform := ""
	if f.Angle != 0 {
		cx := f.X + f.Width/2
		cy := f.Y + f.Height/2
		xform = fmt.Sprintf(" transform=\"rotate(%g %g %g)\"", f.Angle*180/math.Pi, cx, cy)
	}

	switch f.Type {
	case "ellipse":
		wf("  <ellipse cx=\"%g\" cy=\"%g\" rx=\"%g\" ry=\"%g\" fill=\"%s\" stroke=\"%s\" stroke-width=\"1\"%s/>\n",
			f.X+f.Width/2, f.Y+f.Height/2, f.Width/2, f.Height/2, escAttr(fill), escAttr(stroke), xform)
	case "diamond":
		cx := f.X + f.Width/2
		cy := f.Y + f.Height/2
		wf("  <polygon points=\"%g,%g %g,%g %g,%g %g,%g\" fill=\"%s\" stroke=\"%s\" stroke-width=\"1\"%s/>\n",
			cx, f.Y, f.X+f.Width, cy, cx, f.Y+f.Height, f.X, cy, escAttr(fill), escAttr(stroke), xform)
	case "line", "arrow", "draw", "freedraw":
		if len(f.Points) == 0 {
			return
		}
		pts := make([]string, 0, len(f.Points))
		for _, p := range f.Points {
			if len(p) < 2 {
				continue
			}
			pts = append(pts, fmt.Sprintf("%g,%g", f.X+p[0], f.Y+p[1]))
		}
		wf("  <polyline points=\"%s\" fill=\"none\" stroke=\"%s\" stroke-width=\"1\"%s/>\n",
			strings.Join(pts, " "), escAttr(stroke), xform)
	case "text":
		fsz := f.FontSize
		if fsz <= 0 {
			fsz = defaultFontSize
		}
		y := f.Y + fsz
		for _, line := range strings.Split(f.Text, "\n") {
			wf("  <text x=\"%g\" y=\"%g\" font-family=\"Helvetica, Arial, sans-serif\" font-size=\"%g\" fill=\"%s\"%s>%s</text>\n",
				f.X, y, fsz, escAttr(stroke), xform, escText(line))
			y += fsz * 1.2
		}
	default:
		// rectangle and any unknown element kind render as their bounding box
		wf("  <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" fill=\"%s\" stroke=\"%s\" stroke-width=\"1\"%s/>\n",
			f.X, f.Y, f.Width, f.Height, escAttr(fill), escAttr(stroke), xform)
	}
}

func escAttr(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '"':
			out = append(out, '&', 'q', 'u', 'o', 't', ';')
		case '\n':
			out = append(out, ' ')
		case '\r':
			// skip
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}

func escText(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '&':
			out = append(out, '&', 'a', 'm', 'p', ';')
		case '<':
			out = append(out, '&', 'l', 't', ';')
		case '>':
			out = append(out, '&', 'g', 't', ';')
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}
