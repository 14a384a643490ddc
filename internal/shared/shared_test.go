package shared

import (
	"bytes"
	"strings"
	"testing"
)

func TestGenerateID(t *testing.T) {
	t.Run("returns unique ids", func(t *testing.T) {
		seen := map[string]bool{}
		for range 100 {
			id := GenerateID()
			if id == "" {
				t.Fatal("expected non-empty id")
			}
			if seen[id] {
				t.Fatalf("duplicate id generated: %s", id)
			}
			seen[id] = true
		}
	})
}

func TestMarshalJSON(t *testing.T) {
	data := map[string]string{"key": "value"}

	t.Run("compact", func(t *testing.T) {
		out, err := MarshalJSON(data, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(out) != `{"key":"value"}` {
			t.Errorf("unexpected compact output: %s", out)
		}
	})

	t.Run("indented", func(t *testing.T) {
		out, err := MarshalJSON(data, true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(string(out), "\n  \"key\": \"value\"") {
			t.Errorf("unexpected indented output: %s", out)
		}
	})

	t.Run("rejects non-serializable values", func(t *testing.T) {
		if _, err := MarshalJSON(make(chan int), false); err == nil {
			t.Fatal("expected error for channel value")
		}
	})
}

func TestLogger(t *testing.T) {
	t.Run("writes to provided writer", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := NewLogger(buf)
		logger.Info("hello")

		if !strings.Contains(buf.String(), "hello") {
			t.Errorf("expected log output, got %q", buf.String())
		}
	})

	t.Run("WithLogger attaches fields", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := WithLogger(NewLogger(buf), "component", "test")
		logger.Info("tagged")

		out := buf.String()
		if !strings.Contains(out, "component") || !strings.Contains(out, "test") {
			t.Errorf("expected prefixed fields, got %q", out)
		}
	})
}
