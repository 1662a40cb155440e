package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"bad level", Config{Level: "verbose"}},
		{"bad format", Config{Format: "xml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg); err == nil {
				t.Error("New() expected error, got nil")
			}
		})
	}
}

func TestNewDefaults(t *testing.T) {
	var buf bytes.Buffer

	logger, err := New(Config{Writer: &buf})
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}

	logger.Info("hello", "provider", "openai")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("default format is not JSON: %v (output: %s)", err, buf.String())
	}
	if record["msg"] != "hello" {
		t.Errorf("msg = %v, want hello", record["msg"])
	}
	if record["provider"] != "openai" {
		t.Errorf("provider = %v, want openai", record["provider"])
	}
}

func TestNewLevelFiltering(t *testing.T) {
	var buf bytes.Buffer

	logger, err := New(Config{Level: "warn", Writer: &buf})
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}

	logger.Info("dropped")
	logger.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Error("info record logged at warn level")
	}
	if !strings.Contains(out, "kept") {
		t.Error("warn record missing at warn level")
	}
}

func TestNewTextFormat(t *testing.T) {
	var buf bytes.Buffer

	logger, err := New(Config{Format: "text", Writer: &buf})
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}

	logger.Info("hello")

	out := buf.String()
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Errorf("text format produced JSON: %s", out)
	}
	if !strings.Contains(out, "msg=hello") {
		t.Errorf("output = %q, want logfmt msg=hello", out)
	}
}

func TestParseLevelAliases(t *testing.T) {
	for _, level := range []string{"", "DEBUG", "Info", "warning", "error"} {
		if _, err := parseLevel(level); err != nil {
			t.Errorf("parseLevel(%q) unexpected error: %v", level, err)
		}
	}
}

func TestMustNewPanicsOnInvalidConfig(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustNew() did not panic on invalid config")
		}
	}()
	MustNew(Config{Level: "verbose"})
}
