// Reelmatch - Content-Based Movie Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := Logger()
	prevLevel := zerolog.GlobalLevel()
	SetLogger(NewTestLogger(&buf))
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	t.Cleanup(func() {
		SetLogger(prev)
		zerolog.SetGlobalLevel(prevLevel)
	})
	return &buf
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"disabled", zerolog.Disabled},
		{"nonsense", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestInit_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	prev := Logger()
	prevLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		SetLogger(prev)
		zerolog.SetGlobalLevel(prevLevel)
	})

	Init(Config{Level: "debug", Format: "json", Output: &buf})
	Info().Str("title", "Avatar").Msg("hello")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["message"] != "hello" {
		t.Errorf("message = %v, want hello", entry["message"])
	}
	if entry["title"] != "Avatar" {
		t.Errorf("title = %v, want Avatar", entry["title"])
	}
	if _, ok := entry["time"]; !ok {
		t.Error("expected time field")
	}
}

func TestWithComponent(t *testing.T) {
	buf := captureLogs(t)

	l := WithComponent("builder")
	l.Info().Msg("stage done")

	if !strings.Contains(buf.String(), `"component":"builder"`) {
		t.Errorf("component field missing: %s", buf.String())
	}
}

func TestCtx_AddsIDs(t *testing.T) {
	buf := captureLogs(t)

	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithQueryID(ctx, "q-1")
	Ctx(ctx).Info().Msg("with ids")

	out := buf.String()
	if !strings.Contains(out, `"request_id":"req-1"`) {
		t.Errorf("request_id missing: %s", out)
	}
	if !strings.Contains(out, `"query_id":"q-1"`) {
		t.Errorf("query_id missing: %s", out)
	}
}

func TestCtx_EmptyContext(t *testing.T) {
	buf := captureLogs(t)

	Ctx(context.Background()).Info().Msg("plain")

	if strings.Contains(buf.String(), "request_id") {
		t.Errorf("unexpected request_id: %s", buf.String())
	}
}

func TestGeneratedIDs(t *testing.T) {
	if got := len(GenerateQueryID()); got != 8 {
		t.Errorf("query id length = %d, want 8", got)
	}
	if GenerateRequestID() == GenerateRequestID() {
		t.Error("request ids should be unique")
	}
	ctx := ContextWithNewQueryID(context.Background())
	if QueryIDFromContext(ctx) == "" {
		t.Error("expected query id in context")
	}
}

func TestSlogHandler_RoutesToZerolog(t *testing.T) {
	buf := captureLogs(t)

	logger := slog.New(NewSlogHandler()).With("supervisor", "reelmatch").WithGroup("svc")
	logger.Warn("service restarted", "name", "http-server", "attempt", 2)

	out := buf.String()
	for _, want := range []string{`"level":"warn"`, `"supervisor":"reelmatch"`, `"svc.name":"http-server"`, `"svc.attempt":2`, "service restarted"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %s in %s", want, out)
		}
	}
}
