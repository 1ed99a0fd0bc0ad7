package shellinit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScriptSupportedShells(t *testing.T) {
	for _, shell := range []string{Bash, Zsh, Fish} {
		script, err := Script(shell)
		require.NoError(t, err)
		assert.Contains(t, script, "wt")
		assert.Contains(t, script, "--internal")
	}
}

func TestScriptBashAndZshShareBody(t *testing.T) {
	bash, err := Script(Bash)
	require.NoError(t, err)
	zsh, err := Script(Zsh)
	require.NoError(t, err)
	assert.Equal(t, bash, zsh)
}

func TestScriptUnsupportedShellErrors(t *testing.T) {
	_, err := Script("powershell")
	assert.Error(t, err)
}
