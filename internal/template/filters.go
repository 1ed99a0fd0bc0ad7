package template

import (
	"strconv"
	"strings"
)

// sanitize maps path separators to a dash, producing a safe filesystem
// directory component.
func sanitize(s string) string {
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, `\`, "-")
	return s
}

const base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// sanitizeDB lowercases, replaces non-alphanumerics with underscore,
// collapses consecutive underscores, guards against a leading digit, and
// appends a 3-char base-36 hash of the original input so that otherwise
// colliding transforms (and reserved words) stay distinguishable, keeping
// the whole result within Postgres's 63-byte identifier limit.
func sanitizeDB(s string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		out = "_"
	}
	if out[0] >= '0' && out[0] <= '9' {
		out = "_" + out
	}

	hash := shortHash36(s, 3)
	const maxLen = 63
	budget := maxLen - 1 - len(hash) // one separator underscore before the hash
	if len(out) > budget {
		out = out[:budget]
	}
	return out + "_" + hash
}

// shortHash36 returns an n-character base-36 digest of s, computed with
// the FNV-1a constants so short inputs still spread across the alphabet.
func shortHash36(s string, n int) string {
	var h uint64 = 14695981039346656037
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= 1099511628211
	}
	out := make([]byte, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = base36Alphabet[h%36]
		h /= 36
	}
	return string(out)
}

// hashPort deterministically maps s into [10000, 20000) for per-branch
// port assignment.
func hashPort(s string) string {
	var h uint64 = 14695981039346656037
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= 1099511628211
	}
	return strconv.FormatUint(10000+h%10000, 10)
}

var filterFuncs = map[string]func(string) string{
	"sanitize":    sanitize,
	"sanitize_db": sanitizeDB,
	"hash_port":   hashPort,
}
