package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestToZapLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		DebugLevel: zapcore.DebugLevel,
		InfoLevel:  zapcore.InfoLevel,
		WarnLevel:  zapcore.WarnLevel,
		ErrorLevel: zapcore.ErrorLevel,
		"bogus":    zapcore.InfoLevel,
		"":         zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := toZapLevel(in); got != want {
			t.Errorf("toZapLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewZapLogger_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "windguard.log")
	l := newZapLogger(Options{Level: InfoLevel, File: path})
	l.Infow("mode_changed", "label", "Windy Mode")
	l.Debugw("hidden_at_info")
	_ = l.Sync()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	out := string(b)
	if !strings.Contains(out, `"mode_changed"`) || !strings.Contains(out, `"Windy Mode"`) {
		t.Fatalf("unexpected log output: %s", out)
	}
	if strings.Contains(out, "hidden_at_info") {
		t.Fatalf("debug line leaked at info level: %s", out)
	}
}
