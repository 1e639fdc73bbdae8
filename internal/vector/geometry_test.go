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

import (
	"math"
	"testing"
)

func approx(a, b float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-3
}

func TestRectContainsAndUnion(t *testing.T) {
	r := R(10, 10, 20, 10)
	if !r.Contains(Pt{10, 10}) || !r.Contains(Pt{30, 20}) {
		t.Fatalf("expected corners to be contained")
	}
	if r.Contains(Pt{9.9, 10}) || r.Contains(Pt{10, 20.1}) {
		t.Fatalf("expected outside points to be excluded")
	}
	u := r.Union(R(0, 15, 5, 20))
	want := R(0, 10, 30, 25)
	if u != want {
		t.Fatalf("union = %+v, want %+v", u, want)
	}
}

func TestRectInsetAndEmpty(t *testing.T) {
	r := R(0, 0, 10, 10).Inset(2, 3)
	if r != R(2, 3, 6, 4) {
		t.Fatalf("inset = %+v", r)
	}
	if !R(0, 0, 0, 5).Empty() || R(0, 0, 1, 1).Empty() {
		t.Fatalf("Empty misreported")
	}
}

func TestBoundsOf(t *testing.T) {
	b := BoundsOf([]Pt{{3, 4}, {-1, 2}, {5, -6}})
	if b != R(-1, -6, 6, 10) {
		t.Fatalf("bounds = %+v", b)
	}
	if (BoundsOf(nil) != Rect{}) {
		t.Fatalf("empty input must yield zero rect")
	}
}

func TestRotateAboutKeepsCenter(t *testing.T) {
	c := Pt{5, 5}
	m := RotateAbout(float32(math.Pi/2), c)
	got := m.Apply(c)
	if !approx(got.X, 5) || !approx(got.Y, 5) {
		t.Fatalf("center moved to %+v", got)
	}
	// a point right of center maps to below center under +90°
	p := m.Apply(Pt{7, 5})
	if !approx(p.X, 5) || !approx(p.Y, 7) {
		t.Fatalf("rotated point = %+v", p)
	}
}

func TestTransformedBoundsQuarterTurn(t *testing.T) {
	r := R(0, 0, 10, 4)
	b := TransformedBounds(r, RotateAbout(float32(math.Pi/2), r.Center()))
	if !approx(b.W, 4) || !approx(b.H, 10) {
		t.Fatalf("rotated bounds = %+v, want 4x10", b)
	}
	if !approx(b.Center().X, 5) || !approx(b.Center().Y, 2) {
		t.Fatalf("rotated bounds center = %+v", b.Center())
	}
}

func TestPolyline(t *testing.T) {
	p := Polyline{{0, 0}, {10, 5}, {-2, 8}}
	b := p.Bounds()
	if b != R(-2, 0, 12, 8) {
		t.Fatalf("polyline bounds = %+v", b)
	}
	moved := p.Offset(3, -1)
	if moved[0] != (Pt{3, -1}) || moved[2] != (Pt{1, 7}) {
		t.Fatalf("offset wrong: %+v", moved)
	}
	turned := Polyline{{1, 0}}.Transform(Rotate(float32(math.Pi / 2)))
	if !approx(turned[0].X, 0) || !approx(turned[0].Y, 1) {
		t.Fatalf("transform wrong: %+v", turned[0])
	}
}
