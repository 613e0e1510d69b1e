package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStringFields(t *testing.T) {
	fields := StringFields(
		StringField{Key: "  owner  ", Value: "  alice  "},
		StringField{Key: "ignored", Value: "   "},
		StringField{Key: "   ", Value: "empty key"},
	)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}

	if fields[0].Key != "owner" || fields[0].String != "alice" {
		t.Fatalf("unexpected owner field: %+v", fields[0])
	}

	empty := StringFields()
	if len(empty) != 0 {
		t.Fatalf("expected empty fields, got %d", len(empty))
	}
}

func TestWithFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	enriched := WithFields(logger, zap.String("foo", "bar"))
	enriched.Info("test log")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx["foo"] != "bar" {
		t.Fatalf("expected field to be bar, got %q", ctx["foo"])
	}

	enriched = WithFields(nil, zap.String("baz", "qux"))
	if enriched == nil {
		t.Fatalf("expected fallback logger when nil provided")
	}

	// Ensure logging with the fallback logger does not panic.
	enriched.Info("another log")
}

func TestRunFields(t *testing.T) {
	fields := RunFields("  alice  ", "adzuna")
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}

	if fields[0].Key != FieldOwner || fields[0].String != "alice" {
		t.Fatalf("unexpected owner field: %+v", fields[0])
	}

	if fields[1].Key != FieldSource || fields[1].String != "adzuna" {
		t.Fatalf("unexpected source field: %+v", fields[1])
	}

	empty := RunFields("", "")
	if len(empty) != 0 {
		t.Fatalf("expected empty fields, got %d", len(empty))
	}
}

func TestWithRunFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	WithRunFields(logger, "alice", "demo").Info("test log")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx[FieldOwner] != "alice" {
		t.Fatalf("expected owner field to be alice, got %q", ctx[FieldOwner])
	}
	if ctx[FieldSource] != "demo" {
		t.Fatalf("expected source field to be demo, got %q", ctx[FieldSource])
	}
}

func TestTruncateForLog(t *testing.T) {
	cases := []struct {
		input    string
		limit    int
		expected string
	}{
		{"hello world", 0, ""},
		{"hello", 10, "hello"},
		{"hello world", 5, "hello..."},
		{"  spaced  ", 5, "space..."},
	}

	for _, tc := range cases {
		if got := TruncateForLog(tc.input, tc.limit); got != tc.expected {
			t.Fatalf("TruncateForLog(%q, %d) = %q, expected %q", tc.input, tc.limit, got, tc.expected)
		}
	}
}
