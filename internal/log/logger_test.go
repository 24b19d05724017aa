package log

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "production", "warn")
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.DebugLevel) })

	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info logged at warn level: %s", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "env=production") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestLevelFallback(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.DebugLevel) })

	NewWithWriter(&bytes.Buffer{}, "production", "")
	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Fatalf("production level = %s", zerolog.GlobalLevel())
	}
	NewWithWriter(&bytes.Buffer{}, "development", "bogus")
	if zerolog.GlobalLevel() != zerolog.DebugLevel {
		t.Fatalf("development level = %s", zerolog.GlobalLevel())
	}
}
