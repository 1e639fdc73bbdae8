/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package telemetry

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDisabledByDefault(t *testing.T) {
	c := New(Config{})
	defer c.Close()
	if c.Enabled() {
		t.Fatalf("telemetry must be opt-in")
	}
	// opt-in without an endpoint still drops everything
	c2 := New(Config{OptIn: true})
	defer c2.Close()
	if c2.Enabled() {
		t.Fatalf("no endpoint means disabled")
	}
	c2.Event("render", nil) // must not panic or block
}

func TestFromEnvParsing(t *testing.T) {
	t.Setenv("SCD_TELEMETRY_OPT_IN", "yes")
	t.Setenv("SCD_TELEMETRY_URL", " https://t.example.net/events ")
	t.Setenv("SCD_TELEMETRY_TIMEOUT_MS", "300")
	cfg := FromEnv()
	if !cfg.OptIn || cfg.EventsURL != "https://t.example.net/events" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Timeout != 300*time.Millisecond {
		t.Fatalf("timeout = %v", cfg.Timeout)
	}
}

func TestEventPostsWhenEnabled(t *testing.T) {
	got := make(chan map[string]any, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		var payload map[string]any
		_ = json.Unmarshal(b, &payload)
		select {
		case got <- payload:
		default:
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(Config{OptIn: true, EventsURL: srv.URL, Timeout: time.Second})
	defer c.Close()
	c.Event("session_opened", map[string]any{"extra": "v"})

	select {
	case payload := <-got:
		if payload["name"] != "session_opened" || payload["extra"] != "v" {
			t.Fatalf("payload = %+v", payload)
		}
		if payload["os"] == "" || payload["version"] == "" {
			t.Fatalf("standard fields missing: %+v", payload)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("event never arrived")
	}
}

func TestUploadCrashTruncatesHead(t *testing.T) {
	got := make(chan map[string]any, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		var payload map[string]any
		_ = json.Unmarshal(b, &payload)
		select {
		case got <- payload:
		default:
		}
	}))
	defer srv.Close()

	c := New(Config{OptIn: true, EventsURL: srv.URL, Timeout: time.Second})
	defer c.Close()
	report := make([]byte, 10<<10)
	for i := range report {
		report[i] = 'x'
	}
	c.UploadCrash(report)

	select {
	case payload := <-got:
		if payload["name"] != "crash_report" {
			t.Fatalf("payload = %+v", payload)
		}
		if sz, _ := payload["size"].(float64); int(sz) != len(report) {
			t.Fatalf("size = %v", payload["size"])
		}
		head, _ := payload["head"].(string)
		if len(head) != 4<<10 {
			t.Fatalf("head length = %d, want 4KiB", len(head))
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("crash report never arrived")
	}
}
