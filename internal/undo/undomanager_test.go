/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package undo

import (
	"bytes"
	"testing"
	"time"
)

func snap(doc string, blob string, at time.Time) Snapshot {
	return Snapshot{DocID: doc, Blob: []byte(blob), TS: at}
}

func TestUndoRedoBasic(t *testing.T) {
	m := NewManager(Config{})
	base := time.Now()
	m.PushSnapshot(snap("d", "v1", base))
	m.PushSnapshot(snap("d", "v2", base.Add(time.Second)))

	s, ok := m.Undo("d", []byte("v3"))
	if !ok || !bytes.Equal(s.Blob, []byte("v2")) {
		t.Fatalf("undo returned %q ok=%v", s.Blob, ok)
	}
	s, ok = m.Redo("d", []byte("v2"))
	if !ok || !bytes.Equal(s.Blob, []byte("v3")) {
		t.Fatalf("redo returned %q ok=%v", s.Blob, ok)
	}
	if _, ok := m.Redo("d", nil); ok {
		t.Fatalf("redo stack should be exhausted")
	}
}

func TestUndoEmpty(t *testing.T) {
	m := NewManager(Config{})
	if _, ok := m.Undo("missing", nil); ok {
		t.Fatalf("undo on empty stack must report false")
	}
}

func TestCoalesceWithinMinInterval(t *testing.T) {
	m := NewManager(Config{MinInterval: 250 * time.Millisecond})
	base := time.Now()
	m.PushSnapshot(snap("d", "v1", base))
	m.PushSnapshot(snap("d", "v2", base.Add(100*time.Millisecond)))

	// the rapid second push replaces the first entry
	if _, _, n := m.Stats(); n != 1 {
		t.Fatalf("expected 1 snapshot after coalescing, got %d", n)
	}
	s, ok := m.Undo("d", []byte("cur"))
	if !ok || !bytes.Equal(s.Blob, []byte("v2")) {
		t.Fatalf("undo returned %q ok=%v", s.Blob, ok)
	}
}

func TestPushInvalidatesRedo(t *testing.T) {
	m := NewManager(Config{})
	base := time.Now()
	m.PushSnapshot(snap("d", "v1", base))
	if _, ok := m.Undo("d", []byte("v2")); !ok {
		t.Fatalf("undo failed")
	}
	m.PushSnapshot(snap("d", "v3", base.Add(time.Second)))
	if _, ok := m.Redo("d", nil); ok {
		t.Fatalf("new push must clear the redo stack")
	}
}

func TestMaxPerDocCap(t *testing.T) {
	m := NewManager(Config{MaxPerDoc: 3})
	base := time.Now()
	for i := 0; i < 5; i++ {
		m.PushSnapshot(snap("d", string(rune('a'+i)), base.Add(time.Duration(i)*time.Second)))
	}
	if _, _, n := m.Stats(); n != 3 {
		t.Fatalf("expected 3 snapshots after cap, got %d", n)
	}
	// oldest survivors are c, d, e
	s, _ := m.Undo("d", nil)
	if string(s.Blob) != "e" {
		t.Fatalf("top of stack = %q", s.Blob)
	}
}

func TestGlobalByteCapPrunesOldest(t *testing.T) {
	m := NewManager(Config{MaxBytes: 10})
	base := time.Now()
	m.PushSnapshot(snap("a", "12345", base))
	m.PushSnapshot(snap("b", "67890", base.Add(time.Second)))
	m.PushSnapshot(snap("b", "abcde", base.Add(2*time.Second)))

	total, _, _ := m.Stats()
	if total > 10 {
		t.Fatalf("totalBytes = %d, cap is 10", total)
	}
	// doc a held the oldest snapshot and must have been pruned
	if _, ok := m.Undo("a", nil); ok {
		t.Fatalf("oldest snapshot should have been pruned")
	}
}

func TestClearDocAccounting(t *testing.T) {
	m := NewManager(Config{})
	base := time.Now()
	m.PushSnapshot(snap("d", "12345", base))
	m.PushSnapshot(snap("d", "67890", base.Add(time.Second)))
	m.ClearDoc("d")
	total, docs, n := m.Stats()
	if total != 0 || docs != 0 || n != 0 {
		t.Fatalf("stats after clear = %d bytes, %d docs, %d snapshots", total, docs, n)
	}
}
