package internal

import (
	"regexp"
	"strings"
)

// commentPattern matches trailing // and # comments and inline /* */ blocks
var commentPattern = regexp.MustCompile(`(//|#).*$|/\*.*?\*/`)

// Comment markers
const (
	CommentHash       = "#"
	CommentSlashes    = "//"
	CommentBlockStart = "/*"
)

// StripComment removes comments from a key line and trims the rest.
func StripComment(line string) string {
	return strings.TrimSpace(commentPattern.ReplaceAllString(line, ""))
}

// IsCommentMarker reports whether an already stripped line still starts with a
// comment marker, e.g. an unterminated block comment.
func IsCommentMarker(line string) bool {
	return strings.HasPrefix(line, CommentHash) ||
		strings.HasPrefix(line, CommentSlashes) ||
		strings.HasPrefix(line, CommentBlockStart)
}

// SplitLines splits text into lines, accepting \n, \r\n and \r endings.
// A trailing line ending does not produce an empty final line.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}
