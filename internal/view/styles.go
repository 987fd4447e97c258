// Package view renders folder trees and item pages as terminal text.
package view

import "github.com/charmbracelet/lipgloss"

// Styles holds all lipgloss styles used for rendering.
type Styles struct {
	Title    lipgloss.Style
	Folder   lipgloss.Style
	Match    lipgloss.Style
	Count    lipgloss.Style
	Favorite lipgloss.Style
	Item     lipgloss.Style
	ID       lipgloss.Style
	Tag      lipgloss.Style
	Image    lipgloss.Style
	Footer   lipgloss.Style
	Empty    lipgloss.Style
	Error    lipgloss.Style
}

// DefaultStyles returns the default style configuration.
// Grayscale with a single desaturated teal accent.
func DefaultStyles() Styles {
	primary := lipgloss.AdaptiveColor{Light: "#505050", Dark: "#A0A0A0"}
	subtle := lipgloss.AdaptiveColor{Light: "#888888", Dark: "#606060"}
	accent := lipgloss.AdaptiveColor{Light: "#4A7070", Dark: "#5F8787"}
	warn := lipgloss.AdaptiveColor{Light: "#8A5A44", Dark: "#B07A5F"}

	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(accent),
		Folder:   lipgloss.NewStyle().Foreground(primary),
		Match:    lipgloss.NewStyle().Foreground(accent).Underline(true),
		Count:    lipgloss.NewStyle().Foreground(subtle),
		Favorite: lipgloss.NewStyle().Foreground(accent),
		Item:     lipgloss.NewStyle().Foreground(primary),
		ID:       lipgloss.NewStyle().Foreground(subtle),
		Tag:      lipgloss.NewStyle().Foreground(subtle),
		Image:    lipgloss.NewStyle().Foreground(subtle),
		Footer:   lipgloss.NewStyle().Foreground(subtle),
		Empty:    lipgloss.NewStyle().Foreground(subtle),
		Error:    lipgloss.NewStyle().Foreground(warn),
	}
}
