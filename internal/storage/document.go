/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"scenedoc/internal/domain"
	"scenedoc/internal/scene"
)

const (
	ManifestFileName = "scenedoc.json"
	BackupsDirName   = "backups"

	// manifestVersion tracks the on-disk manifest format.
	manifestVersion = 1
)

// Standard subfolders created next to the manifest.
var standardSubDirs = []string{
	"exports",
	BackupsDirName,
}

// Manifest is the on-disk form of a document.
type Manifest struct {
	ManifestVersion int            `json:"manifestVersion"`
	ID              string         `json:"id"`
	Nodes           []ManifestNode `json:"nodes"`
}

// ManifestNode is one persisted node. Kind selects which payload field is
// meaningful: "paragraph" uses Text, "scene" uses Data.
type ManifestNode struct {
	Key  string `json:"key"`
	Kind string `json:"kind"`
	Text string `json:"text,omitempty"`
	Data string `json:"data,omitempty"`
}

// DocumentHandle keeps track of the document state loaded/saved from disk.
// Root is the directory containing scenedoc.json and subfolders.
type DocumentHandle struct {
	Root         string
	ManifestPath string
	Doc          *domain.Document
}

// ManifestFromDocument snapshots a document into its persisted form.
func ManifestFromDocument(d *domain.Document) Manifest {
	m := Manifest{ManifestVersion: manifestVersion, ID: d.ID}
	for _, n := range d.Nodes() {
		mn := ManifestNode{Key: string(n.Key), Kind: n.Kind.String()}
		switch n.Kind {
		case domain.KindParagraph:
			mn.Text = n.Para.Text
		case domain.KindScene:
			mn.Data = n.Scene.Data
		}
		m.Nodes = append(m.Nodes, mn)
	}
	return m
}

// Document rebuilds the in-memory document from a manifest. Nodes with an
// unknown kind are rejected rather than silently dropped.
func (m Manifest) Document() (*domain.Document, error) {
	d := domain.NewDocument(m.ID)
	nodes := make([]*domain.Node, 0, len(m.Nodes))
	for _, mn := range m.Nodes {
		kind, ok := domain.KindFromString(mn.Kind)
		if !ok {
			return nil, fmt.Errorf("manifest node %s: unknown kind %q", mn.Key, mn.Kind)
		}
		n := &domain.Node{Key: domain.NodeKey(mn.Key), Kind: kind}
		switch kind {
		case domain.KindParagraph:
			n.Para = &domain.Paragraph{Text: mn.Text}
		case domain.KindScene:
			n.Scene = scene.New(mn.Key, mn.Data)
		}
		nodes = append(nodes, n)
	}
	d.ReplaceNodes(nodes)
	return d, nil
}

// Init creates a new document directory at root (creating it if it doesn't
// exist), scaffolds the standard subfolders, and writes the manifest
// transactionally.
func Init(root string, doc *domain.Document) (*DocumentHandle, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("root path is required")
	}
	if doc == nil {
		return nil, errors.New("document is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create document root: %w", err)
	}
	for _, d := range standardSubDirs {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			return nil, fmt.Errorf("create subdir %s: %w", d, err)
		}
	}
	h := &DocumentHandle{
		Root:         root,
		ManifestPath: filepath.Join(root, ManifestFileName),
		Doc:          doc,
	}
	if err := Save(h); err != nil {
		return nil, err
	}
	return h, nil
}

// Open loads an existing document from the given root directory.
// If the current manifest cannot be read or parsed, it will attempt the
// latest backup.
func Open(root string) (*DocumentHandle, error) {
	mpath := filepath.Join(root, ManifestFileName)
	b, err := os.ReadFile(mpath)
	if err != nil {
		m, berr := openFromLatestBackup(root)
		if berr != nil {
			return nil, fmt.Errorf("open manifest: %w; backup attempt: %v", err, berr)
		}
		return handleFromManifest(root, mpath, *m)
	}
	var m Manifest
	if uerr := json.Unmarshal(b, &m); uerr != nil {
		bm, berr := openFromLatestBackup(root)
		if berr != nil {
			return nil, fmt.Errorf("parse manifest: %w; backup attempt: %v", uerr, berr)
		}
		return handleFromManifest(root, mpath, *bm)
	}
	return handleFromManifest(root, mpath, m)
}

func handleFromManifest(root, mpath string, m Manifest) (*DocumentHandle, error) {
	doc, err := m.Document()
	if err != nil {
		return nil, err
	}
	return &DocumentHandle{Root: root, ManifestPath: mpath, Doc: doc}, nil
}

// Save writes the current document to disk with transactional semantics and
// a timestamped backup of the previous manifest (if present).
func Save(h *DocumentHandle) error {
	if h == nil {
		return errors.New("nil DocumentHandle")
	}
	if h.Root == "" || h.ManifestPath == "" {
		return errors.New("invalid DocumentHandle: missing paths")
	}
	data, err := json.MarshalIndent(ManifestFromDocument(h.Doc), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	data = append(data, '\n')

	bdir := filepath.Join(h.Root, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return fmt.Errorf("ensure backups dir: %w", err)
	}

	// If a current manifest exists, copy it to a timestamped backup before replacing
	if _, statErr := os.Stat(h.ManifestPath); statErr == nil {
		stamp := time.Now().Format("20060102-150405")
		bname := fmt.Sprintf("%s.%s.bak", ManifestFileName, stamp)
		bpath := filepath.Join(bdir, bname)
		if cerr := copyFile(h.ManifestPath, bpath); cerr != nil {
			return fmt.Errorf("backup current manifest: %w", cerr)
		}
	}

	// Transactional write: to temp file in same directory, then rename over target
	dir := filepath.Dir(h.ManifestPath)
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", ManifestFileName, os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, data); werr != nil {
		return fmt.Errorf("write temp manifest: %w", werr)
	}
	// On Windows, replace by removing destination first if needed
	if _, err := os.Stat(h.ManifestPath); err == nil {
		_ = os.Remove(h.ManifestPath)
	}
	if rerr := os.Rename(temp, h.ManifestPath); rerr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace manifest: %w", rerr)
	}
	return nil
}

// SaveAs writes the manifest to a new root folder, scaffolding structure if
// needed, and updates the handle.
func SaveAs(h *DocumentHandle, newRoot string) error {
	if h == nil {
		return errors.New("nil DocumentHandle")
	}
	if newRoot == "" {
		return errors.New("new root is empty")
	}
	if err := os.MkdirAll(newRoot, 0o755); err != nil {
		return fmt.Errorf("create new root: %w", err)
	}
	for _, d := range standardSubDirs {
		if err := os.MkdirAll(filepath.Join(newRoot, d), 0o755); err != nil {
			return fmt.Errorf("create subdir %s: %w", d, err)
		}
	}
	h.Root = newRoot
	h.ManifestPath = filepath.Join(newRoot, ManifestFileName)
	return Save(h)
}

// AutosaveCrashSnapshot writes the current in-memory document straight into
// the backups folder without touching the manifest, for recovery after a
// panic.
func AutosaveCrashSnapshot(h *DocumentHandle) (string, error) {
	if h == nil || h.Doc == nil {
		return "", errors.New("nil DocumentHandle")
	}
	data, err := json.MarshalIndent(ManifestFromDocument(h.Doc), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal crash snapshot: %w", err)
	}
	bdir := filepath.Join(h.Root, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return "", fmt.Errorf("ensure backups dir: %w", err)
	}
	stamp := time.Now().Format("20060102-150405")
	path := filepath.Join(bdir, fmt.Sprintf("%s.crash-%s.bak", ManifestFileName, stamp))
	if err := writeFileSync(path, data); err != nil {
		return "", fmt.Errorf("write crash snapshot: %w", err)
	}
	return path, nil
}

// writeFileSync writes data to a file, ensures it is flushed to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return err
	}
	return nil
}

// copyFile copies a file from src to dst (overwrites dst if exists).
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	if err := df.Sync(); err != nil {
		return err
	}
	return nil
}

// openFromLatestBackup tries to open the latest timestamped backup.
func openFromLatestBackup(root string) (*Manifest, error) {
	bdir := filepath.Join(root, BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	var candidates []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, ManifestFileName+".") && strings.HasSuffix(name, ".bak") {
			candidates = append(candidates, filepath.Join(bdir, name))
		}
	}
	if len(candidates) == 0 {
		return nil, errors.New("no backups found")
	}
	sort.Strings(candidates) // timestamp in name yields lexicographic order
	latest := candidates[len(candidates)-1]
	b, err := os.ReadFile(latest)
	if err != nil {
		return nil, fmt.Errorf("read latest backup: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse latest backup: %w", err)
	}
	return &m, nil
}
