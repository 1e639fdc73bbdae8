/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package session owns the modal editing workflow for one scene node at a
// time: it opens the external editing surface, tracks the in-progress
// working copy, and commits or discards it back into the document. Edits
// stay invisible outside the session until commit.
package session

import (
	"log/slog"

	"scenedoc/internal/domain"
	applog "scenedoc/internal/log"
	"scenedoc/internal/scene"
	"scenedoc/internal/telemetry"
)

// Surface is the external editing widget, consumed as an opaque component.
// Show hands it the initial element sequence and a callback invoked with the
// current sequence on every internal edit. Fragments passed to the callback
// must keep Raw consistent with their typed fields: serialization prefers
// Raw, so a surface that mutates typed fields in place has to refresh Raw
// or clear it.
type Surface interface {
	Show(initial []scene.Fragment, onChange func([]scene.Fragment))
	Close()
}

// Confirmer prompts the user before a destructive discard.
type Confirmer interface {
	ConfirmDiscard() bool
}

// Outcome describes how a session ended.
type Outcome int

const (
	OutcomeCommitted Outcome = iota
	OutcomeRemoved
	OutcomeDiscarded
)

// Options configures a session.
type Options struct {
	// CloseOnOutsideClick makes a pointer event outside the modal behave as
	// an implicit delete of the node.
	CloseOnOutsideClick bool
	// ConfirmDiscard requires confirmation before discarding a working copy
	// that still has live elements.
	ConfirmDiscard bool
	// OnClosed, if set, is invoked exactly once when the session closes.
	OnClosed func(Outcome)
}

// Session is one modal editing workflow. All methods are no-ops once the
// session has closed; closing is idempotent by construction.
type Session struct {
	key     domain.NodeKey
	working []scene.Fragment
	surface Surface
	confirm Confirmer
	opts    Options
	hold    *domain.SessionHold
	closed  bool
	log     *slog.Logger
}

// Open flips the editability gate to read-only, seeds the working copy from
// the node's current payload and shows the editing surface. A key that does
// not resolve to a scene node yields (nil, nil): not applicable, not an
// error. A malformed payload is returned as an error for the caller to
// report as a node render error.
func Open(doc *domain.Document, key domain.NodeKey, surface Surface, confirm Confirmer, opts Options) (*Session, error) {
	n, ok := doc.Find(key)
	if !ok {
		return nil, nil
	}
	switch n.Kind {
	case domain.KindScene:
	case domain.KindParagraph:
		return nil, nil
	}
	frags, err := scene.ParseFragments(n.Scene.Data)
	if err != nil {
		return nil, err
	}
	s := &Session{
		key:     key,
		working: frags,
		surface: surface,
		confirm: confirm,
		opts:    opts,
		hold:    doc.BeginSession(),
		log:     applog.WithComponent("session").With(slog.String("node", string(key))),
	}
	s.log.Debug("session opened", slog.Int("elements", len(frags)))
	telemetry.Event("session_opened", nil)
	if surface != nil {
		surface.Show(append([]scene.Fragment(nil), frags...), s.OnChange)
	}
	return s, nil
}

// AutoOpen opens a session when the node was just created with the default
// empty scene and the document is editable, so a freshly inserted node
// immediately starts an edit. Returns nil when the rule does not apply.
func AutoOpen(doc *domain.Document, key domain.NodeKey, surface Surface, confirm Confirmer, opts Options) (*Session, error) {
	if !doc.IsEditable() {
		return nil, nil
	}
	n, ok := doc.Find(key)
	if !ok || n.Kind != domain.KindScene || n.Scene.Data != scene.DefaultData {
		return nil, nil
	}
	return Open(doc, key, surface, confirm, opts)
}

// OnChange replaces the working copy. No document mutation happens yet.
func (s *Session) OnChange(frags []scene.Fragment) {
	if s.closed {
		return
	}
	s.working = append([]scene.Fragment(nil), frags...)
}

// Working returns the current working copy (for rendering inside the modal).
func (s *Session) Working() []scene.Fragment {
	return append([]scene.Fragment(nil), s.working...)
}

// Closed reports whether the session has ended.
func (s *Session) Closed() bool { return s.closed }

// Commit writes the working copy back into the node when it still has live
// elements; otherwise it removes the node. The modal always closes.
func (s *Session) Commit() {
	if s.closed {
		return
	}
	working := s.working
	if scene.LiveCount(working) == 0 {
		s.log.Debug("commit with empty working copy, removing node")
		s.finish(OutcomeRemoved, s.removeNode)
		telemetry.Event("session_removed", nil)
		return
	}
	data, err := scene.EncodeFragments(working)
	if err != nil {
		// lossless raw fragments cannot fail to re-encode; keep old payload
		s.log.Error("encode working copy failed", slog.Any("err", err))
		s.finish(OutcomeDiscarded, nil)
		return
	}
	key := s.key
	s.finish(OutcomeCommitted, func(tx *domain.Tx) error {
		tx.SetSceneData(key, data)
		return nil
	})
	telemetry.Event("session_committed", nil)
}

// Discard abandons the working copy. With live elements it asks for
// confirmation first (when configured) and keeps the node's old payload;
// with an empty working copy it removes the node immediately, since there
// is nothing to lose.
func (s *Session) Discard() {
	if s.closed {
		return
	}
	if scene.LiveCount(s.working) > 0 {
		// no Confirmer fails safe: live edits are never dropped unprompted
		if s.opts.ConfirmDiscard && (s.confirm == nil || !s.confirm.ConfirmDiscard()) {
			return
		}
		s.finish(OutcomeDiscarded, nil)
		telemetry.Event("session_discarded", nil)
		return
	}
	s.finish(OutcomeRemoved, s.removeNode)
	telemetry.Event("session_removed", nil)
}

// CancelOutsideInteraction handles a pointer event outside the modal's
// bounds: an implicit delete when the session is configured to close on
// outside clicks, otherwise a no-op.
func (s *Session) CancelOutsideInteraction() {
	if s.closed || !s.opts.CloseOnOutsideClick {
		return
	}
	s.finish(OutcomeRemoved, s.removeNode)
	telemetry.Event("session_removed", nil)
}

// finish is the single authoritative close path: it marks the session
// closed, tears down the surface, releases the editability hold, applies the
// closing mutation (if any) and fires OnClosed. The mutation goes through
// the hold so it lands even while another session still keeps the gate.
// Any close request after the first is a no-op.
func (s *Session) finish(out Outcome, apply func(*domain.Tx) error) {
	if s.closed {
		return
	}
	s.closed = true
	s.working = nil
	if s.surface != nil {
		s.surface.Close()
	}
	if apply != nil {
		_ = s.hold.Apply(apply)
	} else {
		s.hold.Release()
	}
	s.log.Debug("session closed", slog.Int("outcome", int(out)))
	if s.opts.OnClosed != nil {
		s.opts.OnClosed(out)
	}
}

// removeNode is the closing mutation for the paths that delete the node;
// removal of an already-removed key is a no-op inside the transaction.
func (s *Session) removeNode(tx *domain.Tx) error {
	tx.RemoveNode(s.key)
	return nil
}
