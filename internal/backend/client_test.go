/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"scenedoc/internal/scene"
)

// fakeServer emulates the scene-sync API with an in-memory store, so the
// client is tested without a database.
func fakeServer(t *testing.T) (*httptest.Server, map[string]SceneEnvelope) {
	t.Helper()
	store := make(map[string]SceneEnvelope)
	mux := http.NewServeMux()
	mux.HandleFunc("/api/scenes", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		list := make([]SceneInfo, 0, len(store))
		for _, env := range store {
			list = append(list, SceneInfo{
				DocID:     env.DocID,
				NodeKey:   env.NodeKey,
				Version:   env.Scene.Version,
				UpdatedAt: env.UpdatedAt,
			})
		}
		writeJSON(w, http.StatusOK, list)
	})
	mux.HandleFunc("/api/scenes/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		key := r.URL.Path[len("/api/scenes/"):]
		switch r.Method {
		case http.MethodGet:
			env, ok := store[key]
			if !ok {
				writeError(w, http.StatusNotFound, errNotFound)
				return
			}
			writeJSON(w, http.StatusOK, env)
		case http.MethodPut:
			var env SceneEnvelope
			if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}
			env.NodeKey = key
			env.UpdatedAt = time.Now().UTC().Truncate(time.Second)
			store[key] = env
			writeJSON(w, http.StatusOK, map[string]any{"node_key": key, "stored": true})
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, store
}

var errNotFound = &notFoundError{}

type notFoundError struct{}

func (*notFoundError) Error() string { return "not found" }

func TestClientPushFetchList(t *testing.T) {
	srv, store := fakeServer(t)
	c := NewClient(srv.URL+"/", "test-token")
	ctx := context.Background()

	rec := scene.New("node-1", `[{"id":"a","type":"rectangle"}]`)
	if err := c.PushScene(ctx, "doc-1", rec); err != nil {
		t.Fatalf("push: %v", err)
	}
	if _, ok := store["node-1"]; !ok {
		t.Fatalf("scene not stored")
	}

	env, err := c.FetchScene(ctx, "node-1")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if env.DocID != "doc-1" || env.Scene.Type != scene.TypeName || env.Scene.Data != rec.Data {
		t.Fatalf("fetched envelope wrong: %+v", env)
	}

	list, err := c.ListScenes(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].NodeKey != "node-1" || list[0].Version != scene.FormatVersion {
		t.Fatalf("list = %+v", list)
	}
}

func TestClientFetchMissing(t *testing.T) {
	srv, _ := fakeServer(t)
	c := NewClient(srv.URL, "test-token")
	if _, err := c.FetchScene(context.Background(), "ghost"); err == nil {
		t.Fatalf("missing scene must error")
	}
}

func TestClientUnauthorized(t *testing.T) {
	srv, _ := fakeServer(t)
	c := NewClient(srv.URL, "wrong-token")
	if _, err := c.ListScenes(context.Background()); err == nil {
		t.Fatalf("bad token must error")
	}
}

func TestClientEscapesNodeKeys(t *testing.T) {
	srv, store := fakeServer(t)
	c := NewClient(srv.URL, "test-token")
	rec := scene.New("node/with spaces", "")
	if err := c.PushScene(context.Background(), "doc-1", rec); err != nil {
		t.Fatalf("push: %v", err)
	}
	if len(store) != 1 {
		t.Fatalf("store = %d entries", len(store))
	}
}
