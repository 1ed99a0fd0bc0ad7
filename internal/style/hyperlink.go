package style

import "strings"

// OSC8Hyperlink wraps label in an OSC 8 terminal hyperlink escape sequence
// pointing at url, the way the progressive list engine links a branch's PR
// number or CI run to its web URL. If url is empty or whitespace-only,
// label is returned unchanged so the cell degrades to plain text in
// terminals and contexts where no link target exists.
func OSC8Hyperlink(label, url string) string {
	if strings.TrimSpace(url) == "" {
		return label
	}
	return "\x1b]8;;" + url + "\x1b\\" + label + "\x1b]8;;\x1b\\"
}
