/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"runtime"
	"testing"
)

// memStore is an in-memory TokenStore stub.
type memStore struct {
	m map[string]string
}

func newMemStore() *memStore { return &memStore{m: make(map[string]string)} }

func (s *memStore) Get(service, key string) (string, error) {
	v, ok := s.m[service+"/"+key]
	if !ok {
		return "", errors.New("not found")
	}
	return v, nil
}

func (s *memStore) Set(service, key, value string) error {
	s.m[service+"/"+key] = value
	return nil
}

func (s *memStore) Delete(service, key string) error {
	delete(s.m, service+"/"+key)
	return nil
}

func useTempHome(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("config path uses AppData on windows")
	}
	t.Setenv("HOME", t.TempDir())
}

func useMemStore(t *testing.T) *memStore {
	t.Helper()
	s := newMemStore()
	prev := SetTokenStore(s)
	t.Cleanup(func() { SetTokenStore(prev) })
	return s
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	useTempHome(t)
	useMemStore(t)
	cfg, tok, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tok != "" {
		t.Fatalf("token = %q, want empty", tok)
	}
	def := Defaults()
	if cfg.Backend.BaseURL != def.Backend.BaseURL || cfg.Logging.Level != def.Logging.Level {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.Editor.ResizeDebounceMs != 200 || !cfg.Editor.ConfirmDiscard {
		t.Fatalf("editor defaults wrong: %+v", cfg.Editor)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	useTempHome(t)
	store := useMemStore(t)

	cfg := Defaults()
	cfg.General.Theme = "dark"
	cfg.Backend.BaseURL = "https://sync.example.net"
	cfg.Editor.ResizeDebounceMs = 350
	cfg.Editor.CloseOnOutsideClick = false
	if err := Save(cfg, "secret-token"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if store.m["SceneDoc/backend_token"] != "secret-token" {
		t.Fatalf("token not persisted into keyring")
	}

	got, tok, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tok != "secret-token" {
		t.Fatalf("token = %q", tok)
	}
	if got.General.Theme != "dark" || got.Backend.BaseURL != "https://sync.example.net" {
		t.Fatalf("file values lost: %+v", got)
	}
	if got.Editor.ResizeDebounceMs != 350 || got.Editor.CloseOnOutsideClick {
		t.Fatalf("editor values lost: %+v", got.Editor)
	}
}

func TestEnvOverrides(t *testing.T) {
	useTempHome(t)
	useMemStore(t)
	t.Setenv(EnvBackendURL, "https://env.example.net")
	t.Setenv(EnvLogLevel, "DEBUG")
	t.Setenv(EnvTelemetryOptIn, "yes")
	t.Setenv(EnvResizeDebounceMs, "500")

	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend.BaseURL != "https://env.example.net" {
		t.Fatalf("base url = %q", cfg.Backend.BaseURL)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("level = %q, want lowercased", cfg.Logging.Level)
	}
	if !cfg.General.TelemetryOptIn {
		t.Fatalf("telemetry opt-in not applied")
	}
	if cfg.Editor.ResizeDebounceMs != 500 {
		t.Fatalf("debounce = %d", cfg.Editor.ResizeDebounceMs)
	}
}

func TestEnvOverrideRejectsJunkNumbers(t *testing.T) {
	useTempHome(t)
	useMemStore(t)
	t.Setenv(EnvResizeDebounceMs, "junk")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Editor.ResizeDebounceMs != 200 {
		t.Fatalf("junk override applied: %d", cfg.Editor.ResizeDebounceMs)
	}
}

func TestEnvOverrideFor(t *testing.T) {
	t.Setenv(EnvBackendURL, "https://env.example.net")
	t.Setenv(EnvLogLevel, "")
	env, ok := EnvOverrideFor("backend.base_url")
	if !ok || env != EnvBackendURL {
		t.Fatalf("override = %q ok=%v", env, ok)
	}
	if _, ok := EnvOverrideFor("logging.level"); ok {
		t.Fatalf("unset env reported as override")
	}
	if _, ok := EnvOverrideFor("unknown.key"); ok {
		t.Fatalf("unknown key reported as override")
	}
}

func TestClearToken(t *testing.T) {
	useTempHome(t)
	store := useMemStore(t)
	store.m["SceneDoc/backend_token"] = "tok"
	if err := ClearToken(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok := store.m["SceneDoc/backend_token"]; ok {
		t.Fatalf("token survived clear")
	}
}
