package promptpick

import "github.com/itsatony/go-promptpick/internal"

// SplitKey splits a key path on sep. `\` followed by sep is a literal sep.
//
//	SplitKey(`models.sd1\.5`, '.') // ["models", "sd1.5"]
func SplitKey(path string, sep byte) []string {
	return internal.SplitKey(path, sep)
}

// EscapeKey escapes every sep in segment so SplitKey returns it whole.
func EscapeKey(segment string, sep byte) string {
	return internal.EscapeKey(segment, sep)
}

// JoinKey escapes each segment and joins them with sep.
func JoinKey(segments []string, sep byte) string {
	return internal.JoinKey(segments, sep)
}

// SplitLines splits a multi-line key list. Both \n and \r\n are accepted.
func SplitLines(text string) []string {
	return internal.SplitLines(text)
}
