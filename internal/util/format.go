package util

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

// FormatBytes formats a byte count into a human-readable string.
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}

// TruncatePath truncates a path from the left, keeping the rightmost part visible.
func TruncatePath(path string, maxLen int) string {
	if maxLen < 4 || runewidth.StringWidth(path) <= maxLen {
		return path
	}
	return "..." + runewidth.TruncateLeft(path, runewidth.StringWidth(path)-maxLen+3, "")
}

// DisplayWidth is the number of terminal cells s occupies, ignoring escape
// sequences.
func DisplayWidth(s string) int {
	return runewidth.StringWidth(ansi.Strip(s))
}

// Truncate shortens s to at most width cells, ending in an ellipsis when cut.
// Styling escape sequences are preserved.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if DisplayWidth(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, "…")
}

// PadRight pads s with spaces to width cells.
func PadRight(s string, width int) string {
	pad := width - DisplayWidth(s)
	if pad <= 0 {
		return s
	}
	return s + strings.Repeat(" ", pad)
}

// Slug lowercases s and joins its letters and digits with single dashes.
func Slug(s string) string {
	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && sb.Len() > 0 {
				sb.WriteByte('-')
			}
			sb.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return sb.String()
}
