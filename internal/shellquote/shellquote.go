// Package shellquote quotes strings for POSIX shells. It has no internal
// dependencies so gitrepo, template, and executor can all call into it
// without creating import cycles.
package shellquote

import "strings"

// Quote wraps s in single quotes, escaping any embedded single quote with
// the standard '"'"' trick. Empty input quotes to '' rather than returning
// an empty string, so the result is always safe to splice into a command
// line unquoted.
func Quote(s string) string {
	if s == "" {
		return "''"
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}
