package theme

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// ThemeConfig represents the raw TOML theme configuration
type ThemeConfig struct {
	Name   string `toml:"name"`
	Colors struct {
		TreeNormalText     string `toml:"tree_normal_text"`
		TreeSelectedItem   string `toml:"tree_selected_item"`
		TreeDraggedItem    string `toml:"tree_dragged_item"`
		TreeLeafArrow      string `toml:"tree_leaf_arrow"`
		TreeExpandedArrow  string `toml:"tree_expanded_arrow"`
		TreeCollapsedArrow string `toml:"tree_collapsed_arrow"`
		DropIndicator      string `toml:"drop_indicator"`
		FilterLabel        string `toml:"filter_label"`
		FilterText         string `toml:"filter_text"`
		StatusMessage      string `toml:"status_message"`
		StatusModified     string `toml:"status_modified"`
		StatusDropping     string `toml:"status_dropping"`
		Background         string `toml:"background"`
	} `toml:"colors"`
}

// getThemePaths returns the search paths for theme files
func getThemePaths() []string {
	paths := []string{}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "treedrag", "themes"))
		paths = append(paths, filepath.Join(home, ".local", "share", "treedrag", "themes"))
	}

	return paths
}

// findThemeFile searches for a theme file in standard locations
func findThemeFile(themeName string) (string, error) {
	filename := themeName + ".toml"

	for _, dir := range getThemePaths() {
		path := filepath.Join(dir, filename)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("theme file not found: %s", filename)
}

// LoadThemeFromFile loads a theme from a TOML file
func LoadThemeFromFile(filePath string) (*Theme, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read theme file: %w", err)
	}

	var config ThemeConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse theme file: %w", err)
	}

	return configToTheme(config), nil
}

// LoadTheme loads a theme by name, searching standard theme directories
func LoadTheme(themeName string) (*Theme, error) {
	filePath, err := findThemeFile(themeName)
	if err != nil {
		return nil, err
	}

	return LoadThemeFromFile(filePath)
}

// configToTheme converts a ThemeConfig to a Theme, with fallback to Tokyo
// Night for colors the file does not set.
func configToTheme(config ThemeConfig) *Theme {
	t := TokyoNight()
	if config.Name != "" {
		t.Name = config.Name
	}

	if config.Colors.TreeNormalText != "" {
		t.Colors.TreeNormalText = ParseColorString(config.Colors.TreeNormalText)
	}
	if config.Colors.TreeSelectedItem != "" {
		t.Colors.TreeSelectedItem = ParseColorString(config.Colors.TreeSelectedItem)
	}
	if config.Colors.TreeDraggedItem != "" {
		t.Colors.TreeDraggedItem = ParseColorString(config.Colors.TreeDraggedItem)
	}
	if config.Colors.TreeLeafArrow != "" {
		t.Colors.TreeLeafArrow = ParseColorString(config.Colors.TreeLeafArrow)
	}
	if config.Colors.TreeExpandedArrow != "" {
		t.Colors.TreeExpandedArrow = ParseColorString(config.Colors.TreeExpandedArrow)
	}
	if config.Colors.TreeCollapsedArrow != "" {
		t.Colors.TreeCollapsedArrow = ParseColorString(config.Colors.TreeCollapsedArrow)
	}
	if config.Colors.DropIndicator != "" {
		t.Colors.DropIndicator = ParseColorString(config.Colors.DropIndicator)
	}
	if config.Colors.FilterLabel != "" {
		t.Colors.FilterLabel = ParseColorString(config.Colors.FilterLabel)
	}
	if config.Colors.FilterText != "" {
		t.Colors.FilterText = ParseColorString(config.Colors.FilterText)
	}
	if config.Colors.StatusMessage != "" {
		t.Colors.StatusMessage = ParseColorString(config.Colors.StatusMessage)
	}
	if config.Colors.StatusModified != "" {
		t.Colors.StatusModified = ParseColorString(config.Colors.StatusModified)
	}
	if config.Colors.StatusDropping != "" {
		t.Colors.StatusDropping = ParseColorString(config.Colors.StatusDropping)
	}
	if config.Colors.Background != "" {
		t.Colors.Background = ParseColorString(config.Colors.Background)
	}

	return t
}
