package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withMockGitConfig(t *testing.T, fn func(args []string, repoPath string) (string, error)) {
	t.Helper()
	prev := gitConfigMock
	gitConfigMock = fn
	t.Cleanup(func() { gitConfigMock = prev })
}

func TestUserMarkerRoundTrip(t *testing.T) {
	store := map[string]string{}
	withMockGitConfig(t, func(args []string, repoPath string) (string, error) {
		switch args[1] {
		case "--get":
			return store[args[2]] + "\n", nil
		case "--unset":
			delete(store, args[2])
			return "", nil
		default:
			store[args[1]] = args[2]
			return "", nil
		}
	})

	require.NoError(t, SetUserMarker("/repo", "feature", "!"))
	got, err := UserMarker("/repo", "feature")
	require.NoError(t, err)
	assert.Equal(t, "!", got)

	require.NoError(t, SetUserMarker("/repo", "feature", ""))
	got, err = UserMarker("/repo", "feature")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestHistoryMultiValue(t *testing.T) {
	withMockGitConfig(t, func(args []string, repoPath string) (string, error) {
		if args[1] == "--get-all" {
			return "feature-a\nfeature-b\n", nil
		}
		return "", nil
	})

	got, err := History("/repo")
	require.NoError(t, err)
	assert.Equal(t, []string{"feature-a", "feature-b"}, got)
}

func TestHintSetClear(t *testing.T) {
	store := map[string]string{}
	withMockGitConfig(t, func(args []string, repoPath string) (string, error) {
		switch args[1] {
		case "--get":
			v, ok := store[args[2]]
			if !ok {
				return "", nil
			}
			return v + "\n", nil
		case "--unset":
			delete(store, args[2])
			return "", nil
		default:
			store[args[1]] = args[2]
			return "", nil
		}
	})

	require.NoError(t, SetHint("/repo", "default-branch-reresolved", "was invalid"))
	got, err := Hint("/repo", "default-branch-reresolved")
	require.NoError(t, err)
	assert.Equal(t, "was invalid", got)

	require.NoError(t, ClearHint("/repo", "default-branch-reresolved"))
	got, err = Hint("/repo", "default-branch-reresolved")
	require.NoError(t, err)
	assert.Empty(t, got)
}
