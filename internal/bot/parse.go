package bot

import (
	"strconv"
	"strings"
)

// ParseLimitArg extracts an optional item count from command arguments,
// clamped to at most max. Missing or invalid input yields def.
func ParseLimitArg(args string, def, max int) int {
	s := strings.TrimSpace(args)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(strings.Fields(s)[0])
	if err != nil || n < 1 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
