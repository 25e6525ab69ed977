package logger

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(nil); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}
	if Named("test") == nil {
		t.Fatal("named logger is nil")
	}
}

func TestLoggerWrites(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(&buf); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	Named("library").Info(ctx, "chart loaded", String("path", "a.sm"), Error(errors.New("boom")))
	Named("play").Info(ctx, "saved score", Bool("full_combo", true), Duration("took", 1500*time.Millisecond))

	out := buf.String()
	for _, want := range []string{"chart loaded", "path=a.sm", "logger=library", "error=boom", "source=logger_test.go", "full_combo=true", "took=1.5s"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
}

func TestSetLevelString(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(&buf); err != nil {
		t.Fatal(err)
	}
	if err := SetLevelString("warn"); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	Get().Info(ctx, "hidden")
	Get().Warn(ctx, "shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("level not applied: %q", buf.String())
	}

	for _, level := range []string{"debug", "INFO", " warning ", "error", ""} {
		if err := SetLevelString(level); err != nil {
			t.Errorf("%q should be accepted: %v", level, err)
		}
	}
	if err := SetLevelString("loud"); err == nil {
		t.Error("unknown level should fail")
	}
}
