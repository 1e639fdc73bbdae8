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
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"scenedoc/internal/scene"
	"scenedoc/internal/textlayout"
	"scenedoc/internal/vector"
)

// RenderPNG parses the record's payload and rasterizes the live elements into
// an encoded PNG fitted to the padded extents. An empty scene yields a nil
// blob. Rotation is approximated by the element's rotated bounding box; the
// raster preview trades fidelity for a dependency-free encoder.
func (r *Renderer) RenderPNG(rec *scene.Record) ([]byte, vector.Rect, error) {
	frags, err := scene.ParseFragments(rec.Data)
	if err != nil {
		return nil, vector.Rect{}, fmt.Errorf("render node %s: %w", rec.Key, err)
	}
	live := liveFragments(frags)
	if len(live) == 0 {
		return nil, vector.Rect{}, nil
	}
	bounds := Extents(live)
	blob, err := EncodePNG(live, bounds)
	if err != nil {
		return nil, vector.Rect{}, err
	}
	return blob, bounds, nil
}

// EncodePNG rasterizes fragments into a PNG sized to the padded bounds at
// 1 scene unit per pixel.
func EncodePNG(frags []scene.Fragment, bounds vector.Rect) ([]byte, error) {
	ox := float64(bounds.X) - pad
	oy := float64(bounds.Y) - pad
	pixW := int(math.Round(float64(bounds.W))) + 2*pad
	pixH := int(math.Round(float64(bounds.H))) + 2*pad
	if pixW < 1 {
		pixW = 1
	}
	if pixH < 1 {
		pixH = 1
	}

	img := image.NewRGBA(image.Rect(0, 0, pixW, pixH))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{255, 255, 255, 255}}, image.Point{}, draw.Src)

	for _, f := range frags {
		drawFragment(img, f, ox, oy)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func drawFragment(img *image.RGBA, f scene.Fragment, ox, oy float64) {
	stroke := parseColor(f.StrokeColor, color.RGBA{30, 30, 30, 255})
	switch f.Type {
	case "line", "arrow", "draw", "freedraw":
		var px, py int
		havePrev := false
		for _, p := range f.Points {
			if len(p) < 2 {
				continue
			}
			x := int(math.Round(f.X + p[0] - ox))
			y := int(math.Round(f.Y + p[1] - oy))
			if havePrev {
				drawLine(img, px, py, x, y, stroke)
			}
			px, py = x, y
			havePrev = true
		}
	case "text":
		textlayout.Draw(img, int(math.Round(f.X-ox)), int(math.Round(f.Y-oy)), f.Text, stroke)
	default:
		// rectangle, ellipse, diamond and unknown kinds raster as their
		// bounding box
		fb := fragmentBounds(f)
		x0 := int(math.Round(float64(fb.X) - ox))
		y0 := int(math.Round(float64(fb.Y) - oy))
		x1 := x0 + int(math.Round(float64(fb.W))) - 1
		y1 := y0 + int(math.Round(float64(fb.H))) - 1
		if fill, ok := parseFill(f.BackgroundColor); ok {
			fillRect(img, x0, y0, x1, y1, fill)
		}
		strokeRect(img, x0, y0, x1, y1, stroke)
	}
}

// parseColor reads a #rrggbb hex color, falling back to def.
func parseColor(s string, def color.RGBA) color.RGBA {
	c, ok := parseFill(s)
	if !ok {
		return def
	}
	return c
}

func parseFill(s string) (color.RGBA, bool) {
	if len(s) != 7 || s[0] != '#' {
		return color.RGBA{}, false
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}, true
}

// strokeRect draws a 1px axis-aligned rectangle border inclusive of endpoints.
func strokeRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	for x := x0; x <= x1; x++ {
		img.SetRGBA(x, y0, col)
		img.SetRGBA(x, y1, col)
	}
	for y := y0; y <= y1; y++ {
		img.SetRGBA(x0, y, col)
		img.SetRGBA(x1, y, col)
	}
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			img.SetRGBA(x, y, col)
		}
	}
}

// drawLine is a basic integer Bresenham segment.
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		img.SetRGBA(x0, y0, col)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
