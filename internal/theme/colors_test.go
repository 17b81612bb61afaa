package theme

import (
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestHexToColor(t *testing.T) {
	tests := []struct {
		input string
		want  tcell.Color
	}{
		{"#ffffff", tcell.NewRGBColor(255, 255, 255)},
		{"#000000", tcell.NewRGBColor(0, 0, 0)},
		{"#7aa2f7", tcell.NewRGBColor(0x7a, 0xa2, 0xf7)},
		{"#fff", tcell.NewRGBColor(255, 255, 255)},
		{"fff", tcell.NewRGBColor(255, 255, 255)},
		{"#12345", tcell.ColorDefault},
		{"not a color", tcell.ColorDefault},
	}

	for _, tt := range tests {
		if got := HexToColor(tt.input); got != tt.want {
			t.Errorf("HexToColor(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseColorString(t *testing.T) {
	if got := ParseColorString("rgb(255, 0, 128)"); got != tcell.NewRGBColor(255, 0, 128) {
		t.Errorf("rgb() form not parsed, got %v", got)
	}
	if got := ParseColorString("rgb(300, 0, 0)"); got != tcell.ColorDefault {
		t.Errorf("Out-of-range rgb should fall back to default, got %v", got)
	}
	if got := ParseColorString("  #ff0000  "); got != tcell.NewRGBColor(255, 0, 0) {
		t.Errorf("Surrounding whitespace should be ignored, got %v", got)
	}
	if got := ParseColorString("teal"); got != tcell.ColorDefault {
		t.Errorf("Named colors are unsupported, expected default, got %v", got)
	}
}

func TestLoadThemeOrDefault(t *testing.T) {
	if th := LoadThemeOrDefault(""); th.Name != "default" {
		t.Errorf("Empty name should yield the default theme, got %q", th.Name)
	}
	if th := LoadThemeOrDefault("tokyo-night"); th.Name != "tokyo-night" {
		t.Errorf("Built-in tokyo-night not found, got %q", th.Name)
	}
	if th := LoadThemeOrDefault("no-such-theme"); th.Name != "default" {
		t.Errorf("Unknown theme should fall back to default, got %q", th.Name)
	}
}
