package textutil

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hash computes a SHA-256 hex hash of a string for deduplication.
func Hash(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

// Truncate shortens a string to maxLen runes, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}

// Layout describes how a line-oriented document terminates its lines.
type Layout struct {
	// EOL is the line terminator, "\n" or "\r\n".
	EOL string
	// FinalNewline is true when the last line is terminated.
	FinalNewline bool
}

// SplitLines splits content into lines without their terminators and reports
// the layout needed to join them back. A document keeps one line ending: any
// CRLF makes every line CRLF on rejoin.
func SplitLines(content string) ([]string, Layout) {
	layout := Layout{EOL: "\n"}
	if strings.Contains(content, "\r\n") {
		layout.EOL = "\r\n"
	}
	if content == "" {
		return nil, layout
	}

	layout.FinalNewline = strings.HasSuffix(content, "\n")
	body := strings.TrimSuffix(content, "\n")

	lines := strings.Split(body, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines, layout
}

// JoinLines is the inverse of SplitLines.
func JoinLines(lines []string, layout Layout) string {
	if len(lines) == 0 {
		return ""
	}
	eol := layout.EOL
	if eol == "" {
		eol = "\n"
	}
	out := strings.Join(lines, eol)
	if layout.FinalNewline {
		out += eol
	}
	return out
}

// Surround returns the leading and trailing whitespace of line.
func Surround(line string) (lead, trail string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return line, ""
	}
	start := strings.Index(line, trimmed)
	return line[:start], line[start+len(trimmed):]
}
