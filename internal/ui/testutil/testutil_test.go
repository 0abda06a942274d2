package testutil

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestStripANSI(t *testing.T) {
	styled := lipgloss.NewStyle().Bold(true).Render("hello")
	if got := StripANSI(styled); got != "hello" {
		t.Errorf("StripANSI() = %q, want %q", got, "hello")
	}
	if got := StripANSI("plain"); got != "plain" {
		t.Errorf("StripANSI() = %q, want %q", got, "plain")
	}
}

func TestMaxWidth(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   int
	}{
		{"empty", "", 0},
		{"single line", "abc", 3},
		{"widest wins", "a\nabcd\nab", 4},
		{"wide runes", "日本", 4},
		{"styled", lipgloss.NewStyle().Italic(true).Render("xyz"), 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaxWidth(tt.output); got != tt.want {
				t.Errorf("MaxWidth() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFindLine(t *testing.T) {
	output := "header\n▶ Two  0:30\nfooter"
	if got := FindLine(output, "Two"); got != "▶ Two  0:30" {
		t.Errorf("FindLine() = %q", got)
	}
	if got := FindLine(output, "missing"); got != "" {
		t.Errorf("FindLine() = %q, want empty", got)
	}
	if !ContainsLine(output, "footer") {
		t.Error("ContainsLine() = false, want true")
	}
}

func TestSplitLines(t *testing.T) {
	got := SplitLines("a\nb\n\n  \n")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("SplitLines() = %q", got)
	}
}

func TestKey(t *testing.T) {
	tests := []string{"enter", "esc", "backspace", "up", "down", "pgup", "pgdown", "f1", "f2", "ctrl+c", "q", "G"}
	for _, name := range tests {
		if got := Key(name).String(); got != name {
			t.Errorf("Key(%q).String() = %q", name, got)
		}
	}
	if Key("space").Type != Key(" ").Type {
		t.Error("space aliases differ")
	}
}
