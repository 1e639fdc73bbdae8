/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package preview parses a scene payload into structured elements and
// renders a static, bounded preview. Rendering is a pure function of the
// payload; a malformed payload fails the node render, never the document.
// Each successful render updates a per-node cache consumed by export paths
// that run without a live rendering pipeline.
package preview

import (
	"fmt"
	"sync"

	"scenedoc/internal/scene"
	"scenedoc/internal/telemetry"
	"scenedoc/internal/textlayout"
	"scenedoc/internal/vector"
)

// pad is the margin around the elements' extents in scene units.
const pad = 10

// Result is one rendered preview. Empty means the scene has no live
// elements: the node contributes no visible content but still participates
// in selection and deletion.
type Result struct {
	SVG    string
	Bounds vector.Rect
	Empty  bool
}

// Renderer renders previews and caches the last successful result per node.
type Renderer struct {
	mu    sync.Mutex
	cache map[string]Result
}

func NewRenderer() *Renderer {
	return &Renderer{cache: make(map[string]Result)}
}

// Render parses the record's payload and produces a preview fitted to the
// elements' extents. Deleted elements are skipped.
func (r *Renderer) Render(rec *scene.Record) (Result, error) {
	frags, err := scene.ParseFragments(rec.Data)
	if err != nil {
		telemetry.Event("render_error", nil)
		return Result{}, fmt.Errorf("render node %s: %w", rec.Key, err)
	}
	live := liveFragments(frags)
	if len(live) == 0 {
		res := Result{Empty: true}
		r.store(rec.Key, res)
		return res, nil
	}
	bounds := Extents(live)
	res := Result{SVG: renderSVG(live, bounds), Bounds: bounds}
	r.store(rec.Key, res)
	telemetry.Event("render", nil)
	return res, nil
}

// Cached returns the last successful render for a node key.
func (r *Renderer) Cached(key string) (Result, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.cache[key]
	return res, ok
}

// Invalidate drops the cached render for a node key (e.g. after removal).
func (r *Renderer) Invalidate(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cache, key)
}

func (r *Renderer) store(key string, res Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache[key] = res
}

func liveFragments(frags []scene.Fragment) []scene.Fragment {
	out := make([]scene.Fragment, 0, len(frags))
	for _, f := range frags {
		if !f.IsDeleted {
			out = append(out, f)
		}
	}
	return out
}

// Extents returns the union bounding box of the fragments, honoring
// rotation and polyline geometry. Text with zero size is measured.
func Extents(frags []scene.Fragment) vector.Rect {
	var b vector.Rect
	first := true
	for _, f := range frags {
		fb := fragmentBounds(f)
		if first {
			b = fb
			first = false
		} else {
			b = b.Union(fb)
		}
	}
	return b
}

func fragmentBounds(f scene.Fragment) vector.Rect {
	rect := vector.R(float32(f.X), float32(f.Y), float32(f.Width), float32(f.Height))
	if f.Type == "text" && (f.Width == 0 || f.Height == 0) {
		sz := textlayout.Measure(f.Text, f.FontSize)
		rect.W, rect.H = sz.W, sz.H
	}
	if len(f.Points) > 0 {
		poly := fragmentPolyline(f)
		if f.Angle != 0 {
			poly = poly.Transform(vector.RotateAbout(float32(f.Angle), rect.Center()))
		}
		return poly.Bounds()
	}
	if f.Angle != 0 {
		return vector.TransformedBounds(rect, vector.RotateAbout(float32(f.Angle), rect.Center()))
	}
	return rect
}

// fragmentPolyline converts the element's relative points to document space.
func fragmentPolyline(f scene.Fragment) vector.Polyline {
	poly := make(vector.Polyline, 0, len(f.Points))
	for _, p := range f.Points {
		if len(p) < 2 {
			continue
		}
		poly = append(poly, vector.Pt{X: float32(p[0]), Y: float32(p[1])})
	}
	return poly.Offset(float32(f.X), float32(f.Y))
}
