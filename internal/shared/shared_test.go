package shared

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNormalize(t *testing.T) {
	tc := []struct {
		name string
		text string
		want string
	}{
		{name: "lowercase", text: "Milk", want: "milk"},
		{name: "extra whitespace", text: "  Whole   Milk  ", want: "whole milk"},
		{name: "tabs and newlines", text: "Whole\t\nMilk", want: "whole milk"},
		{name: "mixed case", text: "GrOcErIeS", want: "groceries"},
		{name: "empty", text: "   ", want: ""},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.text)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.text, got, tt.want)
			}
			if again := Normalize(got); again != got {
				t.Errorf("Normalize is not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestSetLogLevel(t *testing.T) {
	logger := NewLogger(&bytes.Buffer{})

	t.Run("known level", func(t *testing.T) {
		if err := SetLogLevel(logger, "DEBUG"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if logger.GetLevel() != log.DebugLevel {
			t.Errorf("expected debug level, got %v", logger.GetLevel())
		}
	})

	t.Run("empty falls back to info", func(t *testing.T) {
		if err := SetLogLevel(logger, ""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if logger.GetLevel() != log.InfoLevel {
			t.Errorf("expected info level, got %v", logger.GetLevel())
		}
	})

	t.Run("unknown level", func(t *testing.T) {
		if err := SetLogLevel(logger, "chatty"); err == nil {
			t.Error("expected error for unknown level")
		}
		if logger.GetLevel() != log.InfoLevel {
			t.Errorf("expected info level, got %v", logger.GetLevel())
		}
	})
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == "" || a == b {
		t.Errorf("expected distinct non-empty ids, got %q and %q", a, b)
	}
}
