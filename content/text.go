package content

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const (
	TextExt = ".txt"

	// DefaultMaxLineLength matches the default terminal width
	DefaultMaxLineLength = 80
)

// CommentPrefixes defines the prefixes that identify comment lines
var CommentPrefixes = []string{"//", "#"}

// Text is a processed line-oriented text asset
type Text struct {
	Lines []string
}

// Len returns the number of lines
func (t Text) Len() int {
	return len(t.Lines)
}

// Line returns line i or an empty string when out of range
func (t Text) Line(i int) string {
	if i < 0 || i >= len(t.Lines) {
		return ""
	}
	return t.Lines[i]
}

// DecodeText reads r and processes its lines
// Comments and blank lines are dropped, remaining lines are trimmed and truncated to maxLineLength runes
func DecodeText(r io.Reader, maxLineLength int) (Text, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return Text{}, fmt.Errorf("read text: %w", err)
	}
	return Text{Lines: ProcessLines(lines, maxLineLength)}, nil
}

// ProcessLines cleans raw lines for display
// A non-positive maxLineLength disables truncation
func ProcessLines(lines []string, maxLineLength int) []string {
	processed := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || isComment(trimmed) {
			continue
		}
		if maxLineLength > 0 {
			if runes := []rune(trimmed); len(runes) > maxLineLength {
				trimmed = string(runes[:maxLineLength])
			}
		}
		processed = append(processed, trimmed)
	}
	return processed
}

func isComment(trimmed string) bool {
	for _, prefix := range CommentPrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return false
}
