package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestTagRenderPlain(t *testing.T) {
	if got := TagOK.Render(false); got != "[OK  ]" {
		t.Errorf("Render(false) = %q", got)
	}
	if got := TagGone.Render(true); !strings.Contains(got, "[GONE]") {
		t.Errorf("Render(true) lost the tag text: %q", got)
	}
}

func TestShouldColorizeNonTerminal(t *testing.T) {
	if ShouldColorize(&bytes.Buffer{}) {
		t.Error("A buffer is never a terminal")
	}
}

func TestSize(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{1024, "1.0 KiB"},
		{-1, "?"},
	}
	for _, tt := range tests {
		if got := Size(tt.in); got != tt.want {
			t.Errorf("Size(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRenderTable(t *testing.T) {
	out := RenderTable([]string{"Game", "Size"}, [][]string{{"Foo", "1 KiB"}, {"Bar"}}, []ColumnAlignment{AlignLeft, AlignRight})
	for _, want := range []string{"GAME", "FOO", "BAR", "1 KIB"} {
		if !strings.Contains(strings.ToUpper(out), want) {
			t.Errorf("Table is missing %q:\n%s", want, out)
		}
	}
	if RenderTable(nil, nil, nil) != "" {
		t.Error("Expected empty output without headers")
	}
}
