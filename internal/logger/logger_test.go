package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestPrettyHandlerOutput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := Pretty(&buf, slog.LevelInfo)
	log.Info("opened log", "records", 12, "path", "dive one.glf")

	out := buf.String()
	if !strings.Contains(out, "opened log") {
		t.Fatalf("missing message: %q", out)
	}
	if !strings.Contains(out, "records=12") {
		t.Fatalf("missing attr: %q", out)
	}
	if !strings.Contains(out, `path="dive one.glf"`) {
		t.Fatalf("string with spaces not quoted: %q", out)
	}
}

func TestPrettyHandlerLevelFilter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := Pretty(&buf, slog.LevelWarn)
	log.Debug("hidden")
	log.Info("also hidden")
	log.Error("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("filtered records leaked: %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Fatalf("error record missing: %q", out)
	}
}

func TestWithAttrsCarried(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := Pretty(&buf, slog.LevelInfo).With("device", 7)
	log.Info("frame")
	if !strings.Contains(buf.String(), "device=7") {
		t.Fatalf("carried attr missing: %q", buf.String())
	}
}

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := Text(&buf, slog.LevelInfo)
	ctx := WithContext(context.Background(), log)
	if got := FromContext(ctx); got != log {
		t.Fatalf("context did not return the stored logger")
	}
	if FromContext(context.Background()) == nil {
		t.Fatalf("missing logger must fall back to default")
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q): got %v want %v", in, got, want)
		}
	}
}
