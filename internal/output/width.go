package output

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const ellipsis = "..."

// DisplayWidth returns the number of terminal columns text occupies.
func DisplayWidth(text string) int {
	return runewidth.StringWidth(text)
}

// PadToWidth pads or truncates text to a fixed display width.
// Width is measured in display columns, accounting for Unicode characters.
// If width <= 0, returns text unchanged.
// If text is longer than width, truncates with "..." suffix.
// If text is shorter than width, pads with spaces.
func PadToWidth(text string, width int) string {
	if width <= 0 {
		return text // no padding requested
	}

	result := Truncate(text, width)
	if resultWidth := runewidth.StringWidth(result); resultWidth < width {
		return result + strings.Repeat(" ", width-resultWidth)
	}
	return result
}

// Truncate shortens text to at most width display columns, ending it with
// "..." when anything was cut. Wide characters are never split, so the
// result may be one column short of width.
func Truncate(text string, width int) string {
	if width <= 0 || runewidth.StringWidth(text) <= width {
		return text
	}

	ellipsisWidth := runewidth.StringWidth(ellipsis)
	if width <= ellipsisWidth {
		// If width is too small, just return ellipsis truncated to width
		return runewidth.Truncate(ellipsis, width, "")
	}

	return runewidth.Truncate(text, width-ellipsisWidth, "") + ellipsis
}
