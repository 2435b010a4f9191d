package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestJSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelInfo)
	log.Info("hello", "model", "mobilenet")

	out := buf.String()
	if !strings.Contains(out, "hello") {
		t.Fatalf("expected message in output, got: %s", out)
	}
	if !strings.Contains(out, `"model":"mobilenet"`) {
		t.Fatalf("expected attribute in JSON output, got: %s", out)
	}
	if !strings.Contains(out, `"level":"INFO"`) {
		t.Fatalf("expected level INFO in output, got: %s", out)
	}
}

func TestLevelFiltering(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelWarn)
	log.Info("hidden")
	log.Debug("also hidden")
	if buf.Len() > 0 {
		t.Fatalf("expected no output below warn, got: %s", buf.String())
	}
	log.Warn("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Fatalf("expected warn message, got: %s", buf.String())
	}
}

func TestNopDiscards(t *testing.T) {
	t.Parallel()
	log := Nop()
	log.Error("nothing happens")
	log.With("k", "v").Info("still nothing")
}

func TestWith(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelInfo)
	log.With("component", "reader").Info("opened")

	out := buf.String()
	if !strings.Contains(out, `"component":"reader"`) {
		t.Fatalf("expected bound attribute, got: %s", out)
	}
}

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelInfo)

	ctx := WithContext(context.Background(), log)
	FromContext(ctx).Info("via context")
	if !strings.Contains(buf.String(), "via context") {
		t.Fatalf("expected message via context logger, got: %s", buf.String())
	}

	if FromContext(context.Background()) == nil {
		t.Fatal("FromContext without a logger must fall back, not return nil")
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"DEBUG", slog.LevelDebug},
		{"Error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tc := range cases {
		if got := ParseLevel(tc.input); got != tc.want {
			t.Errorf("ParseLevel(%q): got %v want %v", tc.input, got, tc.want)
		}
	}
}

func TestPrettyOutput(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := Pretty(&buf, slog.LevelInfo)
	log.Info("parsed model", "tensors", 12)

	out := buf.String()
	if !strings.Contains(out, "parsed model") {
		t.Fatalf("expected message, got: %s", out)
	}
	if !strings.Contains(out, "tensors=12") {
		t.Fatalf("expected attribute, got: %s", out)
	}
}

func TestPrettyHandlerEnabled(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})

	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info must be disabled at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("error must be enabled at warn level")
	}
}

func TestPrettyHandlerGroups(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, nil)

	log := slog.New(h.WithGroup("api").WithGroup("req"))
	log.Info("handled", "path", "/v1/model")

	out := buf.String()
	if !strings.Contains(out, `api.req.path="/v1/model"`) && !strings.Contains(out, "api.req.path=/v1/model") {
		t.Fatalf("expected nested group prefix, got: %s", out)
	}

	if h.WithGroup("") != slog.Handler(h) {
		t.Fatal("empty group must return the same handler")
	}
}

func TestPrettyHandlerWithAttrs(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, nil)

	log := slog.New(h.WithAttrs([]slog.Attr{slog.String("service", "rknncli")}))
	log.Info("ready")

	if !strings.Contains(buf.String(), "service=rknncli") {
		t.Fatalf("expected bound handler attribute, got: %s", buf.String())
	}
}

func TestPrettyQuoting(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, nil))
	log.Info("test", "a", "plain", "b", "has space")

	out := buf.String()
	if !strings.Contains(out, "a=plain") || strings.Contains(out, `a="plain"`) {
		t.Fatalf("plain strings must not be quoted, got: %s", out)
	}
	if !strings.Contains(out, `b="has space"`) {
		t.Fatalf("strings with spaces must be quoted, got: %s", out)
	}
}
