package utils

// TruncateString shortens a string to at most maxLen runes, appending an
// ellipsis marker when truncation occurred. Used to keep log lines bounded.
func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
