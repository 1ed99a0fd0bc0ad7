package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worktrunk/worktrunk/internal/config"
)

func TestCommitMessageFallsBackWhenUnconfigured(t *testing.T) {
	g := New(config.LLMConfig{})
	msg, err := g.CommitMessage(context.Background(), "diff --git a/x b/x")
	require.NoError(t, err)
	assert.Equal(t, "WIP: Auto-commit before merge", msg)
}

func TestSquashMessageFallsBackWhenUnconfigured(t *testing.T) {
	g := New(config.LLMConfig{})
	subjects := []string{"fix typo", "add feature bar", "add feature foo"} // newest-first, as git log emits
	msg, err := g.SquashMessage(context.Background(), "main", subjects, "diff")
	require.NoError(t, err)
	assert.Equal(t, "Squash commits from main\n\nCombined commits:\n- add feature foo\n- add feature bar\n- fix typo\n", msg)
}

func TestCommitMessageFallsBackWhenCommandFails(t *testing.T) {
	g := New(config.LLMConfig{Command: "false"})
	msg, err := g.CommitMessage(context.Background(), "diff")
	require.NoError(t, err)
	assert.Equal(t, "WIP: Auto-commit before merge", msg)
}

func TestCommitMessageUsesCommandOutput(t *testing.T) {
	// Extra args CommitMessage appends (--system, the prompts) land as sh's
	// positional parameters, which the script below never references.
	g := New(config.LLMConfig{Command: "/bin/sh", Args: []string{"-c", "echo generated subject"}})
	msg, err := g.CommitMessage(context.Background(), "diff")
	require.NoError(t, err)
	assert.Equal(t, "generated subject", msg)
}
