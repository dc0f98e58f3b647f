package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func captureLogger(t *testing.T) (*SlogLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	return NewSlogLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))), &buf
}

func TestSlogLogger_Levels(t *testing.T) {
	l, buf := captureLogger(t)
	ctx := context.Background()

	l.Debug(ctx, "hash slot acquired", "slot", 2)
	l.Info(ctx, "user verified", "user_id", "u-1")
	l.Warn(ctx, "sign-in exceeded padding", "elapsed", "1.2s")
	l.Error(ctx, "renew failed", "err", "db down")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("want 4 lines, got %d:\n%s", len(lines), buf.String())
	}

	want := [][]string{
		{"level=DEBUG", `msg="hash slot acquired"`, "slot=2"},
		{"level=INFO", `msg="user verified"`, "user_id=u-1"},
		{"level=WARN", `msg="sign-in exceeded padding"`, "elapsed=1.2s"},
		{"level=ERROR", `msg="renew failed"`, `err="db down"`},
	}
	for i, subs := range want {
		for _, sub := range subs {
			if !strings.Contains(lines[i], sub) {
				t.Errorf("line %d missing %q: %s", i, sub, lines[i])
			}
		}
	}
}

func TestSlogLogger_With(t *testing.T) {
	l, buf := captureLogger(t)

	l.With("component", "ratelimit").With("addr", "10.0.0.1").Info(context.TODO(), "limited", "window", "minute")

	out := buf.String()
	for _, sub := range []string{"component=ratelimit", "addr=10.0.0.1", "window=minute", "msg=limited"} {
		if !strings.Contains(out, sub) {
			t.Errorf("missing %q in %s", sub, out)
		}
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"Info":    slog.LevelInfo,
		" debug ": slog.LevelDebug,
		"WARNING": slog.LevelWarn,
		"warn":    slog.LevelWarn,
		"err":     slog.LevelError,
		"Error":   slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil {
			t.Fatalf("ParseLevel(%q) error: %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}

	if _, err := ParseLevel("verbose"); err != ErrInvalidLevel {
		t.Fatalf("expected ErrInvalidLevel, got %v", err)
	}
}

func TestNew_JSONHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Options{Level: "warn", JSON: true, Writer: &buf})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	log.Info(context.Background(), "hidden")
	log.Warn(context.Background(), "shown", "slot", 3)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line must be filtered at warn level:\n%s", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"slot":3`) {
		t.Fatalf("expected JSON warn line, got:\n%s", out)
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	if _, err := New(Options{Level: "loud"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNop_DiscardsAndChains(t *testing.T) {
	l := Nop().With("k", "v")
	l.Debug(context.Background(), "x")
	l.Info(context.Background(), "x")
	l.Warn(context.Background(), "x")
	l.Error(context.Background(), "x")
}
