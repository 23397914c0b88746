package internal

import "strings"

// SplitKey splits path on sep. A separator preceded by a backslash is taken
// literally and the backslash is dropped; every other backslash is kept as is.
// Leading and trailing separators produce empty segments, so the result always
// holds at least one segment.
func SplitKey(path string, sep byte) []string {
	segments := make([]string, 0, strings.Count(path, string(sep))+1)
	var sb strings.Builder

	for i := 0; i < len(path); i++ {
		ch := path[i]
		if ch == CharEscape && i+1 < len(path) && path[i+1] == sep {
			sb.WriteByte(sep)
			i++
			continue
		}
		if ch == sep {
			segments = append(segments, sb.String())
			sb.Reset()
			continue
		}
		sb.WriteByte(ch)
	}

	return append(segments, sb.String())
}

// EscapeKey backslash-escapes every occurrence of sep in segment.
func EscapeKey(segment string, sep byte) string {
	if strings.IndexByte(segment, sep) < 0 {
		return segment
	}
	return strings.ReplaceAll(segment, string(sep), string([]byte{CharEscape, sep}))
}

// JoinKey escapes and joins segments with sep.
// A segment ending in a backslash does not survive a round trip through SplitKey.
func JoinKey(segments []string, sep byte) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = EscapeKey(s, sep)
	}
	return strings.Join(escaped, string(sep))
}

// IsSentinel reports whether segment is ? or ??
func IsSentinel(segment string) bool {
	return segment == SentinelRandom || segment == SentinelRandomRecursive
}
