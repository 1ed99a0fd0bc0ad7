package config

import (
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHookSlotUnmarshalString(t *testing.T) {
	var cfg struct {
		Hooks HookConfiguration `toml:"hooks"`
	}
	src := `
[hooks]
post_create = "npm install"
`
	require.NoError(t, toml.Unmarshal([]byte(src), &cfg))
	require.Len(t, cfg.Hooks.PostCreate.Entries, 1)
	assert.Equal(t, "npm install", cfg.Hooks.PostCreate.Entries[0].Command)
	assert.Empty(t, cfg.Hooks.PostCreate.Entries[0].Name)
}

func TestHookSlotUnmarshalList(t *testing.T) {
	var cfg struct {
		Hooks HookConfiguration `toml:"hooks"`
	}
	src := `
[hooks]
post_create = ["npm install", "npm run build"]
`
	require.NoError(t, toml.Unmarshal([]byte(src), &cfg))
	require.Len(t, cfg.Hooks.PostCreate.Entries, 2)

	named := cfg.Hooks.PostCreate.Named("post-create")
	assert.Equal(t, "post-create-1", named[0].Name)
	assert.Equal(t, "post-create-2", named[1].Name)
}

func TestHookSlotUnmarshalTableAlphabetical(t *testing.T) {
	var cfg struct {
		Hooks HookConfiguration `toml:"hooks"`
	}
	src := `
[hooks.post_create]
zeta = "echo z"
alpha = "echo a"
`
	require.NoError(t, toml.Unmarshal([]byte(src), &cfg))
	require.Len(t, cfg.Hooks.PostCreate.Entries, 2)
	assert.Equal(t, "alpha", cfg.Hooks.PostCreate.Entries[0].Name)
	assert.Equal(t, "zeta", cfg.Hooks.PostCreate.Entries[1].Name)
}

func TestHookSlotEmpty(t *testing.T) {
	var cfg struct {
		Hooks HookConfiguration `toml:"hooks"`
	}
	require.NoError(t, toml.Unmarshal([]byte(``), &cfg))
	assert.True(t, cfg.Hooks.PostCreate.IsEmpty())
}

func TestComposeOrdersUserBeforeProject(t *testing.T) {
	user := HookConfiguration{PreMerge: HookSlot{Entries: []HookEntry{{Command: "user cmd"}}}}
	project := HookConfiguration{PreMerge: HookSlot{Entries: []HookEntry{{Command: "project cmd"}}}}

	composed := Compose(user, project)
	require.Len(t, composed.PreMerge.Entries, 2)
	assert.Equal(t, "user cmd", composed.PreMerge.Entries[0].Command)
	assert.Equal(t, "project cmd", composed.PreMerge.Entries[1].Command)
}

func TestSlotLookupByName(t *testing.T) {
	h := HookConfiguration{PreRemove: HookSlot{Entries: []HookEntry{{Command: "cleanup"}}}}
	slot, prefix, ok := h.Slot("pre_remove")
	require.True(t, ok)
	assert.Equal(t, "pre-remove", prefix)
	assert.Equal(t, "cleanup", slot.Entries[0].Command)

	_, _, ok = h.Slot("not_a_hook")
	assert.False(t, ok)
}
