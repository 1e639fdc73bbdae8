/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package vector

// Polyline is an open sequence of points, the geometry behind line, arrow
// and freedraw scene elements.
type Polyline []Pt

// Bounds returns the axis-aligned bounding box of the polyline.
func (p Polyline) Bounds() Rect { return BoundsOf(p) }

// Offset returns a copy of the polyline translated by (dx, dy).
func (p Polyline) Offset(dx, dy float32) Polyline {
	out := make(Polyline, len(p))
	for i, pt := range p {
		out[i] = Pt{pt.X + dx, pt.Y + dy}
	}
	return out
}

// Transform returns a copy with m applied to every point.
func (p Polyline) Transform(m Affine2D) Polyline {
	out := make(Polyline, len(p))
	for i, pt := range p {
		out[i] = m.Apply(pt)
	}
	return out
}
