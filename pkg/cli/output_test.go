package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestTextFormatter(t *testing.T) {
	f := NewFormatter(FormatText)

	out, err := f.Format("3 providers registered")
	if err != nil {
		t.Fatalf("Format() unexpected error: %v", err)
	}
	if string(out) != "3 providers registered\n" {
		t.Errorf("Format() = %q", string(out))
	}
}

func TestJSONFormatter(t *testing.T) {
	f := NewFormatter(FormatJSON)

	var buf bytes.Buffer
	data := map[string]any{"provider": "openai", "priority": 1}
	if err := f.FormatTo(&buf, data); err != nil {
		t.Fatalf("FormatTo() unexpected error: %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, `"provider": "openai"`) {
		t.Errorf("FormatTo() output missing field: %q", got)
	}
}

func TestNewFormatterDefault(t *testing.T) {
	if _, ok := NewFormatter("unknown").(*TextFormatter); !ok {
		t.Error("NewFormatter() with unknown format should return TextFormatter")
	}
}
