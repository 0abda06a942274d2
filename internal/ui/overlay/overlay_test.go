package overlay

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestCompose(t *testing.T) {
	base := "aaaaaaaaaa\nbbbbbbbbbb\ncccccccccc"
	over := "\n   XYZ"

	got := strings.Split(Compose(base, over, 10), "\n")
	want := []string{"aaaaaaaaaa", "bbbXYZbbbb", "cccccccccc"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCompose_PadsShortBase(t *testing.T) {
	got := Compose("ab", "    Z", 6)
	if got != "ab  Z " {
		t.Errorf("Compose = %q, want %q", got, "ab  Z ")
	}
}

func TestCompose_Styled(t *testing.T) {
	styled := "\x1b[1mXY\x1b[0m"
	got := Compose("..........", "  "+styled, 10)
	if ansi.Strip(got) != "..XY......" {
		t.Errorf("Compose stripped = %q", ansi.Strip(got))
	}
}

func TestCenter(t *testing.T) {
	base := strings.Repeat(strings.Repeat(".", 10)+"\n", 4) + strings.Repeat(".", 10)
	got := strings.Split(Center(base, "##\n##", 10, 5), "\n")

	want := []string{"..........", "....##....", "....##....", "..........", ".........."}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}
