/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package command implements the document's prioritized event-dispatch
// mechanism for input events. Dispatch walks handlers in descending priority
// and stops at the first that reports the event handled. The bus is
// single-threaded by contract.
package command

import (
	"sort"

	"scenedoc/internal/vector"
)

// Kind identifies the command class of an event.
type Kind int

const (
	PointerDown Kind = iota
	KeyDelete
	KeyBackspace
)

func (k Kind) String() string {
	switch k {
	case PointerDown:
		return "pointer-down"
	case KeyDelete:
		return "key-delete"
	case KeyBackspace:
		return "key-backspace"
	default:
		return "unknown"
	}
}

// Priority orders handlers; higher runs first.
type Priority int

const (
	PriorityLow    Priority = 0
	PriorityNormal Priority = 10
	PriorityHigh   Priority = 20
)

// Event is one input event dispatched through the bus.
type Event struct {
	Kind       Kind
	At         vector.Pt // pointer position, valid for PointerDown
	ClickCount int       // 1 = single click, >1 = multi-click
	Modifier   bool      // selection-extending modifier key held
}

// Handler processes an event and reports whether it fully handled it.
// Returning false lets lower-priority handlers see the event.
type Handler func(Event) bool

type registration struct {
	kind     Kind
	priority Priority
	seq      int
	fn       Handler
}

// Bus dispatches events to registered handlers.
type Bus struct {
	regs   []*registration
	nextID int
}

func NewBus() *Bus { return &Bus{} }

// Subscribe registers fn for a command class. The returned func removes the
// registration; calling it more than once is harmless.
func (b *Bus) Subscribe(kind Kind, priority Priority, fn Handler) (unsubscribe func()) {
	r := &registration{kind: kind, priority: priority, seq: b.nextID, fn: fn}
	b.nextID++
	b.regs = append(b.regs, r)
	// descending priority, registration order within equal priority
	sort.SliceStable(b.regs, func(i, j int) bool {
		if b.regs[i].priority != b.regs[j].priority {
			return b.regs[i].priority > b.regs[j].priority
		}
		return b.regs[i].seq < b.regs[j].seq
	})
	return func() {
		for i, reg := range b.regs {
			if reg == r {
				b.regs = append(b.regs[:i], b.regs[i+1:]...)
				return
			}
		}
	}
}

// Dispatch delivers ev to matching handlers in priority order and returns
// whether any handler consumed it.
func (b *Bus) Dispatch(ev Event) bool {
	// handlers may unsubscribe during dispatch; walk a copy
	regs := append([]*registration(nil), b.regs...)
	for _, r := range regs {
		if r.kind != ev.Kind {
			continue
		}
		if r.fn(ev) {
			return true
		}
	}
	return false
}
