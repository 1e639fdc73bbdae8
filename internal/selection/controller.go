/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package selection drives node selection and removal from the command bus.
// One controller serves one scene node; it subscribes at low priority so
// higher-priority handlers see every event first.
package selection

import (
	"errors"
	"time"

	"scenedoc/internal/command"
	"scenedoc/internal/domain"
	"scenedoc/internal/session"
	"scenedoc/internal/vector"
)

// DefaultResizeDebounce suppresses pointer activation for this long after a
// resize gesture ends, so the release click is not read as a selection click.
const DefaultResizeDebounce = 200 * time.Millisecond

// ResizeTracker marks resize gestures. While a gesture runs, and for a
// debounce window after it ends, pointer activation is suppressed.
type ResizeTracker struct {
	active   bool
	endedAt  time.Time
	debounce time.Duration
	now      func() time.Time
}

func NewResizeTracker(debounce time.Duration) *ResizeTracker {
	if debounce <= 0 {
		debounce = DefaultResizeDebounce
	}
	return &ResizeTracker{debounce: debounce, now: time.Now}
}

// Begin marks the start of a resize gesture.
func (t *ResizeTracker) Begin() { t.active = true }

// End marks the end of a gesture and starts the debounce window.
func (t *ResizeTracker) End() {
	t.active = false
	t.endedAt = t.now()
}

// Suppressed reports whether pointer activation must be ignored.
func (t *ResizeTracker) Suppressed() bool {
	if t.active {
		return true
	}
	return !t.endedAt.IsZero() && t.now().Sub(t.endedAt) < t.debounce
}

// State is the per-node lifecycle. Removed is terminal.
type State int

const (
	StateIdle State = iota
	StateSelected
	StateEditing
	StateRemoved
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSelected:
		return "selected"
	case StateEditing:
		return "editing"
	case StateRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Config wires a controller to its node.
type Config struct {
	Doc *domain.Document
	Key domain.NodeKey
	// Bounds returns the node's current activation surface (the rendered
	// preview's rectangle in document coordinates).
	Bounds func() vector.Rect
	// Resize is shared with the resize affordance component.
	Resize *ResizeTracker
	// OpenEditor starts an edit session for the node; it reports whether a
	// session actually opened.
	OpenEditor func() bool
}

// Controller reacts to pointer-activation, delete-key and backspace-key
// commands for one node.
type Controller struct {
	cfg   Config
	state State
}

var errMissingConfig = errors.New("selection: Doc, Key and Bounds are required")

func NewController(cfg Config) (*Controller, error) {
	if cfg.Doc == nil || cfg.Key == "" || cfg.Bounds == nil {
		return nil, errMissingConfig
	}
	if cfg.Resize == nil {
		cfg.Resize = NewResizeTracker(0)
	}
	return &Controller{cfg: cfg}, nil
}

// State returns the current lifecycle state.
func (c *Controller) State() State { return c.state }

// Attach subscribes the controller to the bus at low priority. The returned
// func detaches all three handlers.
func (c *Controller) Attach(bus *command.Bus) (detach func()) {
	unsubs := []func(){
		bus.Subscribe(command.PointerDown, command.PriorityLow, c.handlePointer),
		bus.Subscribe(command.KeyDelete, command.PriorityLow, c.handleDeleteKey),
		bus.Subscribe(command.KeyBackspace, command.PriorityLow, c.handleDeleteKey),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

func (c *Controller) handlePointer(ev command.Event) bool {
	if c.state == StateRemoved {
		return false
	}
	if c.cfg.Resize.Suppressed() {
		// consume the event so a resize-release click never re-targets
		// selection, but leave selection untouched
		return true
	}
	if !c.cfg.Bounds().Contains(ev.At) {
		return false
	}
	doc := c.cfg.Doc
	// membership always flips; the modifier only spares the rest of the
	// selection from being cleared
	wasSelected := doc.IsSelected(c.cfg.Key)
	if !ev.Modifier {
		doc.ClearSelection()
	}
	if !wasSelected {
		doc.ToggleSelect(c.cfg.Key)
	} else if doc.IsSelected(c.cfg.Key) {
		doc.ToggleSelect(c.cfg.Key)
	}
	if doc.IsSelected(c.cfg.Key) {
		c.state = StateSelected
	} else {
		c.state = StateIdle
	}
	if ev.ClickCount > 1 && c.cfg.OpenEditor != nil && c.cfg.OpenEditor() {
		c.state = StateEditing
	}
	return true
}

func (c *Controller) handleDeleteKey(command.Event) bool {
	if c.state == StateRemoved {
		return false
	}
	doc := c.cfg.Doc
	if !doc.IsSoleSelection(c.cfg.Key) {
		return false
	}
	key := c.cfg.Key
	_ = doc.Update(func(tx *domain.Tx) error {
		tx.RemoveNode(key)
		return nil
	})
	doc.ClearSelection()
	c.state = StateRemoved
	return true
}

// SessionClosed is the session OnClosed hook: it moves the machine out of
// Editing according to the outcome.
func (c *Controller) SessionClosed(out session.Outcome) {
	if c.state == StateRemoved {
		return
	}
	switch out {
	case session.OutcomeRemoved:
		c.state = StateRemoved
	case session.OutcomeCommitted, session.OutcomeDiscarded:
		c.state = StateIdle
	}
}
