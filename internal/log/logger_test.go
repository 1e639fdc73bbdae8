/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package log

import (
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Leveler{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("SCD_LOG_LEVEL", "debug")
	t.Setenv("SCD_LOG_FORMAT", "json")
	t.Setenv("SCD_LOG_SOURCE", "true")
	t.Setenv("SCD_LOG_FILE", "/tmp/scenedoc.log")
	o := FromEnv()
	if o.Level != "debug" || o.Format != "json" || !o.AddSource || o.File != "/tmp/scenedoc.log" {
		t.Fatalf("options = %+v", o)
	}
}

func TestPrettyHandlerOutput(t *testing.T) {
	var sb strings.Builder
	h := &prettyTextHandler{opts: prettyOpts{Level: slog.LevelInfo}, w: &sb}
	l := slog.New(h).With(slog.String("component", "test"))
	l.Info("hello", slog.Int("n", 3), slog.Bool("ok", true))
	out := sb.String()
	for _, want := range []string{"INF", "hello", "component=test", "n=3", "ok=true"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output %q missing %q", out, want)
		}
	}
}

func TestPrettyHandlerLevelFilter(t *testing.T) {
	var sb strings.Builder
	h := &prettyTextHandler{opts: prettyOpts{Level: slog.LevelWarn}, w: &sb}
	l := slog.New(h)
	l.Info("quiet")
	l.Warn("loud")
	out := sb.String()
	if strings.Contains(out, "quiet") || !strings.Contains(out, "loud") {
		t.Fatalf("level filter broken: %q", out)
	}
}

func TestPrettyHandlerGroups(t *testing.T) {
	var sb strings.Builder
	h := &prettyTextHandler{opts: prettyOpts{Level: slog.LevelInfo}, w: &sb}
	l := slog.New(h).WithGroup("req")
	l.Info("served", slog.String("path", "/x"))
	if !strings.Contains(sb.String(), "req.path=/x") {
		t.Fatalf("group prefix missing: %q", sb.String())
	}
}

func TestMultiHandlerFansOut(t *testing.T) {
	var a, b strings.Builder
	h := multiHandler(
		&prettyTextHandler{opts: prettyOpts{Level: slog.LevelInfo}, w: &a},
		&prettyTextHandler{opts: prettyOpts{Level: slog.LevelError}, w: &b},
	)
	if !h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatalf("multi must be enabled when any child is")
	}
	l := slog.New(h)
	l.Info("only-a")
	l.Error("both")
	if !strings.Contains(a.String(), "only-a") || strings.Contains(b.String(), "only-a") {
		t.Fatalf("info fan-out wrong: a=%q b=%q", a.String(), b.String())
	}
	if !strings.Contains(b.String(), "both") {
		t.Fatalf("error not delivered to second handler")
	}
}

func TestWithComponent(t *testing.T) {
	Init(Options{Level: "info", Format: "console"})
	if WithComponent("storage") == nil {
		t.Fatalf("nil logger")
	}
}
