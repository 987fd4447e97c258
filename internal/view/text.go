package view

import "unicode/utf8"

// Ellipsis marks truncated text.
const Ellipsis = "..."

// Truncate shortens text to maxWidth runes, ending in Ellipsis when cut.
// A maxWidth of zero or less disables truncation.
func Truncate(text string, maxWidth int) string {
	if maxWidth <= 0 || utf8.RuneCountInString(text) <= maxWidth {
		return text
	}

	ellipsisLen := utf8.RuneCountInString(Ellipsis)
	if maxWidth <= ellipsisLen {
		return string([]rune(Ellipsis)[:maxWidth])
	}
	return string([]rune(text)[:maxWidth-ellipsisLen]) + Ellipsis
}
