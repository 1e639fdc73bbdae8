/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package textlayout measures and rasterizes the text of scene elements.
// It uses x/image/basicfont Face7x13 as a deterministic face, good enough
// for preview extents and raster previews without shipping fonts.
package textlayout

import (
	"image"
	"image/color"
	"image/draw"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"scenedoc/internal/vector"
)

// Face7x13 metrics.
const (
	glyphAdvance = 7
	lineHeight   = 13
	ascent       = 11
	// baseSize is the nominal font size the face corresponds to; other
	// sizes scale the measured extents linearly.
	baseSize = 13.0
)

// Measure returns the extents of text at the given font size. A non-positive
// size means the face's natural size.
func Measure(text string, size float64) vector.Size {
	if text == "" {
		return vector.Size{}
	}
	scale := 1.0
	if size > 0 {
		scale = size / baseSize
	}
	lines := strings.Split(text, "\n")
	maxLen := 0
	for _, l := range lines {
		if n := len(l); n > maxLen {
			maxLen = n
		}
	}
	return vector.Size{
		W: float32(float64(maxLen*glyphAdvance) * scale),
		H: float32(float64(len(lines)*lineHeight) * scale),
	}
}

// Draw rasterizes text onto dst with its top-left corner at (x, y), one line
// per Face7x13 line height. The raster always uses the face's natural size.
func Draw(dst draw.Image, x, y int, text string, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
	}
	for i, line := range strings.Split(text, "\n") {
		d.Dot = fixed.P(x, y+ascent+i*lineHeight)
		d.DrawString(line)
	}
}
