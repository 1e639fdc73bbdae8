/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package domain

import (
	"encoding/json"
	"log/slog"
	"time"

	applog "scenedoc/internal/log"
	"scenedoc/internal/scene"
	"scenedoc/internal/undo"
)

// Document is the transactional tree of nodes. All access happens on the UI
// thread in response to discrete events; the type is not goroutine-safe and
// does not need to be.
type Document struct {
	ID    string
	nodes []*Node

	selection map[NodeKey]struct{}
	// readOnly counts active edit sessions holding the editability gate.
	// The document is editable only while the count is zero.
	readOnly int

	undoMgr  *undo.Manager
	revision uint64
}

// NewDocument creates an empty editable document.
func NewDocument(id string) *Document {
	return &Document{
		ID:        id,
		selection: make(map[NodeKey]struct{}),
		undoMgr:   undo.NewManager(undo.Config{MaxPerDoc: 100, MinInterval: 250 * time.Millisecond}),
	}
}

// Nodes returns the nodes in document order. Callers must not mutate the
// returned slice; mutations go through Update.
func (d *Document) Nodes() []*Node { return d.nodes }

// Len returns the node count.
func (d *Document) Len() int { return len(d.nodes) }

// Revision increases on every committed transaction.
func (d *Document) Revision() uint64 { return d.revision }

// Find resolves a node key; ok is false when the key no longer resolves.
func (d *Document) Find(key NodeKey) (*Node, bool) {
	for _, n := range d.nodes {
		if n.Key == key {
			return n, true
		}
	}
	return nil, false
}

// ReplaceNodes installs nodes wholesale, keeping their keys. It is meant for
// loading a persisted document and bypasses the undo history and the
// editability gate. The selection is reset.
func (d *Document) ReplaceNodes(nodes []*Node) {
	d.nodes = nodes
	d.selection = make(map[NodeKey]struct{})
	d.revision++
}

// --- editability gate -------------------------------------------------------

// IsEditable reports whether the document currently accepts mutations.
func (d *Document) IsEditable() bool { return d.readOnly == 0 }

// BeginReadOnly flips the gate to read-only and returns a release func.
// The gate is reference-counted: it becomes editable again only when every
// acquirer has released, so nested sessions cannot leave it inconsistent.
// The release func is idempotent.
func (d *Document) BeginReadOnly() (release func()) {
	d.readOnly++
	released := false
	return func() {
		if released {
			return
		}
		released = true
		d.readOnly--
	}
}

// SessionHold is the gate acquisition handed to an edit session. It counts
// against the gate like BeginReadOnly, but Apply lets the holder land its
// own closing transaction even while other sessions still hold the gate: a
// committing session must not be silently no-oped by a second open session.
type SessionHold struct {
	d        *Document
	released bool
}

// BeginSession acquires the editability gate on behalf of an edit session.
func (d *Document) BeginSession() *SessionHold {
	d.readOnly++
	return &SessionHold{d: d}
}

// Release restores the gate; idempotent.
func (h *SessionHold) Release() {
	if h.released {
		return
	}
	h.released = true
	h.d.readOnly--
}

// Apply releases the hold and runs fn through the transaction machinery
// regardless of remaining holds. User-initiated mutations keep going through
// Update and stay blocked until every hold is released.
func (h *SessionHold) Apply(fn func(*Tx) error) error {
	h.Release()
	return h.d.applyTx(fn)
}

// --- selection --------------------------------------------------------------

// SelectExclusive clears the current selection and selects key alone.
func (d *Document) SelectExclusive(key NodeKey) {
	d.selection = map[NodeKey]struct{}{key: {}}
}

// ToggleSelect flips key's membership in the selection.
func (d *Document) ToggleSelect(key NodeKey) {
	if _, ok := d.selection[key]; ok {
		delete(d.selection, key)
	} else {
		d.selection[key] = struct{}{}
	}
}

// ClearSelection empties the selection.
func (d *Document) ClearSelection() { d.selection = make(map[NodeKey]struct{}) }

// IsSelected reports membership.
func (d *Document) IsSelected(key NodeKey) bool {
	_, ok := d.selection[key]
	return ok
}

// IsSoleSelection reports whether key is the single selected node.
func (d *Document) IsSoleSelection(key NodeKey) bool {
	return len(d.selection) == 1 && d.IsSelected(key)
}

// SelectionCount returns the number of selected nodes.
func (d *Document) SelectionCount() int { return len(d.selection) }

// --- transactions -----------------------------------------------------------

// Tx is the mutation scope handed to Update callbacks. Operations on keys
// that no longer resolve are silent no-ops.
type Tx struct {
	d *Document
}

// Update runs fn inside an atomic mutation scope. While the document is not
// editable the call is silently ignored (no-op, not an error). On error the
// document is rolled back to its pre-transaction state. Side effects become
// visible to readers only after the transaction commits.
func (d *Document) Update(fn func(*Tx) error) error {
	if !d.IsEditable() {
		applog.WithComponent("domain").Debug("update ignored: document read-only", slog.String("doc", d.ID))
		return nil
	}
	return d.applyTx(fn)
}

func (d *Document) applyTx(fn func(*Tx) error) error {
	pre := d.snapshot()
	if err := fn(&Tx{d: d}); err != nil {
		d.restore(pre)
		return err
	}
	d.undoMgr.PushSnapshot(undo.Snapshot{DocID: d.ID, Blob: pre, TS: time.Now()})
	d.revision++
	return nil
}

// Undo restores the state before the last committed transaction. Like
// Update it is refused while the gate is held, so an undo cannot rewrite a
// node that is under edit.
func (d *Document) Undo() bool {
	if !d.IsEditable() {
		return false
	}
	s, ok := d.undoMgr.Undo(d.ID, d.snapshot())
	if !ok {
		return false
	}
	d.restore(s.Blob)
	d.revision++
	return true
}

// Redo restores the state undone by the last Undo.
func (d *Document) Redo() bool {
	if !d.IsEditable() {
		return false
	}
	s, ok := d.undoMgr.Redo(d.ID, d.snapshot())
	if !ok {
		return false
	}
	d.restore(s.Blob)
	d.revision++
	return true
}

// InsertParagraph appends a paragraph node.
func (tx *Tx) InsertParagraph(text string) *Node {
	n := &Node{Key: NewNodeKey(), Kind: KindParagraph, Para: &Paragraph{Text: text}}
	tx.d.nodes = append(tx.d.nodes, n)
	return n
}

// InsertScene appends a scene node; empty data means the default empty scene.
func (tx *Tx) InsertScene(data string) *Node {
	key := NewNodeKey()
	n := &Node{Key: key, Kind: KindScene, Scene: scene.New(string(key), data)}
	tx.d.nodes = append(tx.d.nodes, n)
	return n
}

// SetSceneData replaces the payload of a scene node. A missing key or a
// non-scene node is a no-op.
func (tx *Tx) SetSceneData(key NodeKey, data string) {
	n, ok := tx.d.Find(key)
	if !ok {
		return
	}
	switch n.Kind {
	case KindScene:
		n.Scene.SetData(data)
	case KindParagraph:
		// not a scene; nothing to write
	}
}

// SetParagraphText replaces the text of a paragraph node.
func (tx *Tx) SetParagraphText(key NodeKey, text string) {
	n, ok := tx.d.Find(key)
	if !ok {
		return
	}
	switch n.Kind {
	case KindParagraph:
		n.Para.Text = text
	case KindScene:
	}
}

// RemoveNode deletes a node and drops it from the selection. Missing keys
// are a no-op.
func (tx *Tx) RemoveNode(key NodeKey) {
	for i, n := range tx.d.nodes {
		if n.Key == key {
			tx.d.nodes = append(tx.d.nodes[:i], tx.d.nodes[i+1:]...)
			delete(tx.d.selection, key)
			return
		}
	}
}

// --- snapshots --------------------------------------------------------------

type docState struct {
	ID    string      `json:"id"`
	Nodes []nodeState `json:"nodes"`
}

type nodeState struct {
	Key  string `json:"key"`
	Kind string `json:"kind"`
	Text string `json:"text,omitempty"`
	Data string `json:"data,omitempty"`
}

func (d *Document) snapshot() []byte {
	st := docState{ID: d.ID, Nodes: make([]nodeState, 0, len(d.nodes))}
	for _, n := range d.nodes {
		ns := nodeState{Key: string(n.Key), Kind: n.Kind.String()}
		switch n.Kind {
		case KindParagraph:
			ns.Text = n.Para.Text
		case KindScene:
			ns.Data = n.Scene.Data
		}
		st.Nodes = append(st.Nodes, ns)
	}
	b, err := json.Marshal(st)
	if err != nil {
		// docState contains only strings; marshal cannot fail in practice
		applog.WithComponent("domain").Error("snapshot marshal failed", slog.Any("err", err))
		return nil
	}
	return b
}

func (d *Document) restore(blob []byte) {
	var st docState
	if err := json.Unmarshal(blob, &st); err != nil {
		applog.WithComponent("domain").Error("snapshot restore failed", slog.Any("err", err))
		return
	}
	nodes := make([]*Node, 0, len(st.Nodes))
	keys := make(map[NodeKey]struct{}, len(st.Nodes))
	for _, ns := range st.Nodes {
		kind, ok := KindFromString(ns.Kind)
		if !ok {
			continue
		}
		key := NodeKey(ns.Key)
		n := &Node{Key: key, Kind: kind}
		switch kind {
		case KindParagraph:
			n.Para = &Paragraph{Text: ns.Text}
		case KindScene:
			n.Scene = scene.New(ns.Key, ns.Data)
		}
		nodes = append(nodes, n)
		keys[key] = struct{}{}
	}
	d.nodes = nodes
	// drop selections of vanished keys
	for k := range d.selection {
		if _, ok := keys[k]; !ok {
			delete(d.selection, k)
		}
	}
}
