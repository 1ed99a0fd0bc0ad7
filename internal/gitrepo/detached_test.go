package gitrepo

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeLogFilenameReplacesSeparators(t *testing.T) {
	assert.Equal(t, "feature_foo_bar", SanitizeLogFilename("feature/foo/bar"))
	assert.Equal(t, "feature_foo_bar", SanitizeLogFilename(`feature\foo\bar`))
}

func TestSanitizeLogFilenameEscapesReservedWindowsNames(t *testing.T) {
	assert.Equal(t, "_con", SanitizeLogFilename("con"))
	assert.Equal(t, "_aux.txt", SanitizeLogFilename("aux.txt"))
	assert.Equal(t, "normal", SanitizeLogFilename("normal"))
}

func TestLogPathJoinsCommonDirAndOperation(t *testing.T) {
	r := &Repository{commonDir: "/repo/.git"}
	got := r.LogPath("feature/foo", "remove")
	assert.Equal(t, filepath.Join("/repo/.git", "wt-logs", "feature_foo-remove.log"), got)
}
