package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/AlibekovAA/estate-hub/internal/common/constants"
)

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "api", "warn")

	log.Info("hidden")
	log.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("expected info message to be filtered, got %q", out)
	}
	if !strings.Contains(out, "[WARNING] [api]") {
		t.Errorf("expected warning prefix, got %q", out)
	}
}

func TestLogger_WithFieldsSortedAndTraceID(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "api", "debug")

	ctx := context.WithValue(context.Background(), constants.TraceIDKey, "abc123")
	log.WithFields(ctx, Fields{"user_id": "u1", "action": "login_success"}).Info("login success")

	out := buf.String()
	if !strings.Contains(out, "trace_id=abc123 action=login_success user_id=u1") {
		t.Errorf("unexpected field rendering: %q", out)
	}
}

func TestLogger_ShouldLog(t *testing.T) {
	log := NewWithWriter(&bytes.Buffer{}, "", "error")
	if log.ShouldLog(WARNING) {
		t.Error("expected warning to be below error level")
	}
	log.SetLevel("debug")
	if !log.ShouldLog(DEBUG) {
		t.Error("expected debug to be enabled after SetLevel")
	}
}
