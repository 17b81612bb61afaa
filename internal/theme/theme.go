package theme

import (
	"github.com/gdamore/tcell/v2"
)

// Colors holds all the color definitions for the theme
type Colors struct {
	// Tree view colors
	TreeNormalText     tcell.Color
	TreeSelectedItem   tcell.Color
	TreeDraggedItem    tcell.Color
	TreeLeafArrow      tcell.Color
	TreeExpandedArrow  tcell.Color
	TreeCollapsedArrow tcell.Color

	// Drop indicator shown at the current drag target
	DropIndicator tcell.Color

	// Filter bar colors
	FilterLabel tcell.Color
	FilterText  tcell.Color

	// Status line colors
	StatusMessage  tcell.Color
	StatusModified tcell.Color
	StatusDropping tcell.Color

	Background tcell.Color
}

// Theme represents a complete color theme
type Theme struct {
	Name   string
	Colors Colors
}

// Default returns a default theme using terminal defaults
func Default() *Theme {
	return &Theme{
		Name: "default",
		Colors: Colors{
			TreeNormalText:     tcell.ColorDefault,
			TreeSelectedItem:   tcell.ColorDefault,
			TreeDraggedItem:    tcell.ColorYellow,
			TreeLeafArrow:      tcell.ColorGray,
			TreeExpandedArrow:  tcell.ColorDefault,
			TreeCollapsedArrow: tcell.ColorDefault,
			DropIndicator:      tcell.ColorGreen,
			FilterLabel:        tcell.ColorDefault,
			FilterText:         tcell.ColorDefault,
			StatusMessage:      tcell.ColorDefault,
			StatusModified:     tcell.ColorRed,
			StatusDropping:     tcell.ColorYellow,
			Background:         tcell.ColorDefault,
		},
	}
}

// TokyoNight returns the built-in Tokyo Night theme
func TokyoNight() *Theme {
	return &Theme{
		Name: "tokyo-night",
		Colors: Colors{
			TreeNormalText:     HexToColor("#c0caf5"),
			TreeSelectedItem:   HexToColor("#7aa2f7"),
			TreeDraggedItem:    HexToColor("#e0af68"),
			TreeLeafArrow:      HexToColor("#565f89"),
			TreeExpandedArrow:  HexToColor("#7dcfff"),
			TreeCollapsedArrow: HexToColor("#bb9af7"),
			DropIndicator:      HexToColor("#9ece6a"),
			FilterLabel:        HexToColor("#7aa2f7"),
			FilterText:         HexToColor("#c0caf5"),
			StatusMessage:      HexToColor("#9aa5ce"),
			StatusModified:     HexToColor("#f7768e"),
			StatusDropping:     HexToColor("#e0af68"),
			Background:         HexToColor("#1a1b26"),
		},
	}
}

// LoadThemeOrDefault loads a theme by name, falling back to built-ins and
// finally to Default when no theme file is found.
func LoadThemeOrDefault(name string) *Theme {
	if name == "" || name == "default" {
		return Default()
	}
	if t, err := LoadTheme(name); err == nil {
		return t
	}
	if name == "tokyo-night" {
		return TokyoNight()
	}
	return Default()
}
