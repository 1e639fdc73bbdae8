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
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.

type BackendConfig struct {
	BaseURL     string `yaml:"base_url"`
	TimeoutMs   int    `yaml:"timeout_ms"`
	TLSInsecure bool   `yaml:"tls_insecure"`
	// Token is not stored on disk; it lives in the OS keychain.
}

type GeneralConfig struct {
	TelemetryOptIn bool   `yaml:"telemetry_opt_in"`
	Theme          string `yaml:"theme"` // "system" | "light" | "dark"
	EnableServer   bool   `yaml:"enable_server"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// EditorConfig tunes the embedded scene editing workflow.
type EditorConfig struct {
	// ResizeDebounceMs suppresses pointer activation for this long after a
	// resize gesture ends, so a resize-release click does not change selection.
	ResizeDebounceMs int `yaml:"resize_debounce_ms"`
	// CloseOnOutsideClick makes an open edit session treat a pointer event
	// outside the modal as an implicit delete.
	CloseOnOutsideClick bool `yaml:"close_on_outside_click"`
	// ConfirmDiscard requires a confirmation prompt before discarding a
	// session whose working scene still has live elements.
	ConfirmDiscard bool `yaml:"confirm_discard"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	General       GeneralConfig `yaml:"general"`
	Backend       BackendConfig `yaml:"backend"`
	Logging       LoggingConfig `yaml:"logging"`
	Editor        EditorConfig  `yaml:"editor"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{TelemetryOptIn: false, Theme: "system", EnableServer: false},
		Backend:       BackendConfig{BaseURL: "http://localhost:8080", TimeoutMs: 15000, TLSInsecure: false},
		Logging:       LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
		Editor:        EditorConfig{ResizeDebounceMs: 200, CloseOnOutsideClick: true, ConfirmDiscard: true},
	}
}

// Env var names used as overrides.
const (
	EnvBackendURL       = "SCD_BACKEND_URL"
	EnvBackendTimeoutMs = "SCD_BACKEND_TIMEOUT_MS"
	EnvBackendTLSInsec  = "SCD_TLS_INSECURE"
	EnvTelemetryOptIn   = "SCD_TELEMETRY_OPT_IN"
	EnvEnableServer     = "SCD_ENABLE_SERVER"
	EnvLogLevel         = "SCD_LOG_LEVEL"
	EnvLogFormat        = "SCD_LOG_FORMAT"
	EnvLogSource        = "SCD_LOG_SOURCE"
	EnvLogFile          = "SCD_LOG_FILE"
	EnvResizeDebounceMs = "SCD_RESIZE_DEBOUNCE_MS"
)

// Service/keys for OS keyring.
const (
	keyringService = "SceneDoc"
	keyringToken   = "backend_token"
)

// TokenStore abstracts the OS keyring, so tests can stub it.
type TokenStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

var tokenStore TokenStore = osKeyring{}

// osKeyring implements TokenStore using github.com/zalando/go-keyring.
type osKeyring struct{}

func (osKeyring) Get(service, key string) (string, error) { return keyring.Get(service, key) }
func (osKeyring) Set(service, key, value string) error    { return keyring.Set(service, key, value) }
func (osKeyring) Delete(service, key string) error        { return keyring.Delete(service, key) }

// SetTokenStore swaps the keyring implementation; it returns the previous one.
func SetTokenStore(s TokenStore) TokenStore {
	prev := tokenStore
	tokenStore = s
	return prev
}

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "SceneDoc")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "SceneDoc")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "scenedoc")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and merges
// environment overrides. The backend token comes from the keyring and is
// returned separately so it never sits in the struct.
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, "", err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	tok, _ := tokenStore.Get(keyringService, keyringToken)
	return cfg, tok, nil
}

// Save writes the user config YAML and persists the token into the OS keyring (if non-empty).
func Save(cfg AppConfig, token string) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if token != "" {
		if err := tokenStore.Set(keyringService, keyringToken, token); err != nil {
			return err
		}
	}
	return nil
}

// ClearToken removes the backend token from the keyring.
func ClearToken() error { return tokenStore.Delete(keyringService, keyringToken) }

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if src.General.Theme != "" {
		dst.General.Theme = src.General.Theme
	}
	// booleans: copy directly from src (file) so user preferences persist
	dst.General.TelemetryOptIn = src.General.TelemetryOptIn
	dst.General.EnableServer = src.General.EnableServer
	if src.Backend.BaseURL != "" {
		dst.Backend.BaseURL = src.Backend.BaseURL
	}
	if src.Backend.TimeoutMs != 0 {
		dst.Backend.TimeoutMs = src.Backend.TimeoutMs
	}
	dst.Backend.TLSInsecure = src.Backend.TLSInsecure
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
	if src.Editor.ResizeDebounceMs > 0 {
		dst.Editor.ResizeDebounceMs = src.Editor.ResizeDebounceMs
	}
	dst.Editor.CloseOnOutsideClick = src.Editor.CloseOnOutsideClick
	dst.Editor.ConfirmDiscard = src.Editor.ConfirmDiscard
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvBackendURL)); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvBackendTimeoutMs)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Backend.TimeoutMs = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvBackendTLSInsec)); v != "" {
		cfg.Backend.TLSInsecure = envBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvTelemetryOptIn)); v != "" {
		cfg.General.TelemetryOptIn = envBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvEnableServer)); v != "" {
		cfg.General.EnableServer = envBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = envBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvResizeDebounceMs)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Editor.ResizeDebounceMs = n
		}
	}
}

func envBool(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	m := map[string]string{
		"backend.base_url":          EnvBackendURL,
		"backend.timeout_ms":        EnvBackendTimeoutMs,
		"backend.tls_insecure":      EnvBackendTLSInsec,
		"general.telemetry_opt_in":  EnvTelemetryOptIn,
		"general.enable_server":     EnvEnableServer,
		"logging.level":             EnvLogLevel,
		"logging.format":            EnvLogFormat,
		"logging.source":            EnvLogSource,
		"logging.file":              EnvLogFile,
		"editor.resize_debounce_ms": EnvResizeDebounceMs,
	}
	if env, ok := m[key]; ok && os.Getenv(env) != "" {
		return env, true
	}
	return "", false
}
