package tui

import (
	"strings"
	"testing"
)

func TestTruncateWithEllipsis(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"fits exactly", "hello", 5, "hello"},
		{"fits with room", "hi", 10, "hi"},
		{"truncated", "hello world", 8, "hello..."},
		{"truncated to 4", "abcdef", 4, "a..."},
		{"maxLen 3 no ellipsis", "abcdef", 3, "abc"},
		{"maxLen 0", "abcdef", 0, ""},
		{"negative maxLen", "abcdef", -2, ""},
		{"empty string", "", 5, ""},
		{"long summary", "SDD: 3 specs ready for review", 15, "SDD: 3 specs..."},
		{"multibyte runes truncated", "こんにちは世界abc", 5, "こん..."},
		{"multibyte short truncate", "日本語テスト", 2, "日本"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := TruncateWithEllipsis(tt.input, tt.maxLen)
			if got != tt.want {
				t.Errorf("TruncateWithEllipsis(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestBreakpoints(t *testing.T) {
	t.Parallel()
	if CompactWidth <= MinWidth {
		t.Errorf("CompactWidth (%d) should be greater than MinWidth (%d)", CompactWidth, MinWidth)
	}
	if SplitWidth <= CompactWidth {
		t.Errorf("SplitWidth (%d) should be greater than CompactWidth (%d)", SplitWidth, CompactWidth)
	}
}

func TestViewTooSmall(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name          string
		width, height int
	}{
		{"narrow", MinWidth - 1, 24},
		{"short", 80, MinHeight - 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := NewAppModel(Options{Root: t.TempDir()})
			m.Width = tt.width
			m.Height = tt.height
			if view := m.View(); !strings.Contains(view, "Terminal too small") {
				t.Errorf("expected 'Terminal too small', got: %q", view)
			}
		})
	}
}
