/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package domain defines the structured document model: an ordered tree of
// nodes, a transactional mutation scope, a selection subsystem and the
// document-wide editability gate. Node kinds form a tagged union matched
// exhaustively; there is no ad hoc type probing.
package domain

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"scenedoc/internal/scene"
)

// NodeKey is the opaque identity of a node in the document tree.
type NodeKey string

// NewNodeKey returns a fresh random node key.
func NewNodeKey() NodeKey {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(fmt.Sprintf("node key entropy: %v", err))
	}
	return NodeKey(hex.EncodeToString(b[:]))
}

// NodeKind discriminates the node payload variants.
type NodeKind int

const (
	KindParagraph NodeKind = iota
	KindScene
)

func (k NodeKind) String() string {
	switch k {
	case KindParagraph:
		return "paragraph"
	case KindScene:
		return "scene"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// KindFromString is the inverse of NodeKind.String.
func KindFromString(s string) (NodeKind, bool) {
	switch s {
	case "paragraph":
		return KindParagraph, true
	case "scene":
		return KindScene, true
	default:
		return 0, false
	}
}

// Paragraph is the plain-text node payload.
type Paragraph struct {
	Text string `json:"text"`
}

// Node is one addressable entity in the document. Exactly one payload field
// matching Kind is non-nil.
type Node struct {
	Key  NodeKey
	Kind NodeKind

	Para  *Paragraph
	Scene *scene.Record
}

// Clone produces an independent node carrying the same payload and identity
// key, used by the structural-sharing copy protocol.
func (n *Node) Clone() *Node {
	cp := &Node{Key: n.Key, Kind: n.Kind}
	switch n.Kind {
	case KindParagraph:
		if n.Para != nil {
			p := *n.Para
			cp.Para = &p
		}
	case KindScene:
		if n.Scene != nil {
			cp.Scene = n.Scene.Clone()
		}
	}
	return cp
}
