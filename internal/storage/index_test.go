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
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestInitOrOpenIndexCreatesCache(t *testing.T) {
	root := t.TempDir()
	db, err := InitOrOpenIndex(root)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	defer db.Close()
	if _, err := os.Stat(IndexPath(root)); err != nil {
		t.Fatalf("cache file missing: %v", err)
	}
	var schema int
	if err := db.QueryRow(`SELECT schema FROM version WHERE id=1`).Scan(&schema); err != nil {
		t.Fatalf("version row: %v", err)
	}
	if schema != schemaVersion {
		t.Fatalf("schema = %d", schema)
	}
	// previews table exists and is queryable
	if _, err := db.Exec(`SELECT 1 FROM previews LIMIT 1`); err != nil {
		t.Fatalf("previews table: %v", err)
	}
}

func TestInitOrOpenIndexRequiresRoot(t *testing.T) {
	if _, err := InitOrOpenIndex(" "); err == nil {
		t.Fatalf("blank root must fail")
	}
}

func TestDetectAndRebuildHealthy(t *testing.T) {
	root := t.TempDir()
	db, err := InitOrOpenIndex(root)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	db.Close()
	rebuilt, err := DetectAndRebuildIndex(context.Background(), root)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if rebuilt {
		t.Fatalf("healthy cache must not be rebuilt")
	}
}

func TestDetectAndRebuildCorrupt(t *testing.T) {
	root := t.TempDir()
	db, err := InitOrOpenIndex(root)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	db.Close()
	// clobber the database file
	if err := os.WriteFile(IndexPath(root), []byte("this is not sqlite"), 0o644); err != nil {
		t.Fatalf("corrupt: %v", err)
	}
	rebuilt, err := DetectAndRebuildIndex(context.Background(), root)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if !rebuilt {
		t.Fatalf("corrupt cache must be rebuilt")
	}
	// the rebuilt cache is usable again
	db2, err := InitOrOpenIndex(root)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db2.Close()
	if _, err := db2.Exec(`SELECT 1 FROM previews LIMIT 1`); err != nil {
		t.Fatalf("previews after rebuild: %v", err)
	}
	// the broken file was preserved for inspection
	ents, err := os.ReadDir(filepath.Join(root, IndexDirName, "backups"))
	if err != nil || len(ents) == 0 {
		t.Fatalf("no backup of the corrupt cache: %v", err)
	}
}
