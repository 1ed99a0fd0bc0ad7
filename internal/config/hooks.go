package config

import (
	"fmt"
	"sort"
)

// HookEntry is one dispatchable command within a hook slot, carrying the
// name synthesized (or given).
type HookEntry struct {
	Name    string
	Command string
}

// HookSlot holds the commands configured for a single lifecycle event. It
// decodes from three TOML shapes: a bare string (one unnamed command), an
// array of strings (names synthesized as "<prefix>-<1-based index>"), or a
// table of name -> command (iterated alphabetically for determinism).
type HookSlot struct {
	Entries []HookEntry
}

// Named composes this slot's entries with their prefix-qualified names,
// used by the executor and hook pipeline to build log keys and approval
// identities.
func (s HookSlot) Named(prefix string) []HookEntry {
	out := make([]HookEntry, len(s.Entries))
	for i, e := range s.Entries {
		name := e.Name
		if name == "" {
			name = fmt.Sprintf("%s-%d", prefix, i+1)
		}
		out[i] = HookEntry{Name: name, Command: e.Command}
	}
	return out
}

// IsEmpty reports whether the slot has no configured commands.
func (s HookSlot) IsEmpty() bool { return len(s.Entries) == 0 }

// UnmarshalTOML implements toml.Unmarshaler so a slot can be written as a
// string, an array, or a table in the TOML source.
func (s *HookSlot) UnmarshalTOML(data interface{}) error {
	switch v := data.(type) {
	case string:
		s.Entries = []HookEntry{{Command: v}}
		return nil
	case []interface{}:
		entries := make([]HookEntry, 0, len(v))
		for _, item := range v {
			cmd, ok := item.(string)
			if !ok {
				return fmt.Errorf("hook list entries must be strings, got %T", item)
			}
			entries = append(entries, HookEntry{Command: cmd})
		}
		s.Entries = entries
		return nil
	case map[string]interface{}:
		names := make([]string, 0, len(v))
		for name := range v {
			names = append(names, name)
		}
		sort.Strings(names)
		entries := make([]HookEntry, 0, len(names))
		for _, name := range names {
			cmd, ok := v[name].(string)
			if !ok {
				return fmt.Errorf("hook table entry %q must be a string, got %T", name, v[name])
			}
			entries = append(entries, HookEntry{Name: name, Command: cmd})
		}
		s.Entries = entries
		return nil
	case nil:
		s.Entries = nil
		return nil
	default:
		return fmt.Errorf("unsupported hook slot shape %T", data)
	}
}

// HookConfiguration is the set of lifecycle hook slots: post-create,
// post-start, pre-commit, pre-merge, post-merge, pre-remove.
type HookConfiguration struct {
	PostCreate HookSlot `toml:"post_create"`
	PostStart  HookSlot `toml:"post_start"`
	PreCommit  HookSlot `toml:"pre_commit"`
	PreMerge   HookSlot `toml:"pre_merge"`
	PostMerge  HookSlot `toml:"post_merge"`
	PreRemove  HookSlot `toml:"pre_remove"`
}

// Slot returns the slot and its name prefix for a named hook event, or
// false if name is not recognized.
func (h HookConfiguration) Slot(name string) (HookSlot, string, bool) {
	switch name {
	case "post_create":
		return h.PostCreate, "post-create", true
	case "post_start":
		return h.PostStart, "post-start", true
	case "pre_commit":
		return h.PreCommit, "pre-commit", true
	case "pre_merge":
		return h.PreMerge, "pre-merge", true
	case "post_merge":
		return h.PostMerge, "post-merge", true
	case "pre_remove":
		return h.PreRemove, "pre-remove", true
	default:
		return HookSlot{}, "", false
	}
}

// Compose merges project hooks after user hooks for the same slot, user
// entries first.
func Compose(user, project HookConfiguration) HookConfiguration {
	return HookConfiguration{
		PostCreate: mergeSlots(user.PostCreate, project.PostCreate),
		PostStart:  mergeSlots(user.PostStart, project.PostStart),
		PreCommit:  mergeSlots(user.PreCommit, project.PreCommit),
		PreMerge:   mergeSlots(user.PreMerge, project.PreMerge),
		PostMerge:  mergeSlots(user.PostMerge, project.PostMerge),
		PreRemove:  mergeSlots(user.PreRemove, project.PreRemove),
	}
}

func mergeSlots(a, b HookSlot) HookSlot {
	return HookSlot{Entries: append(append([]HookEntry{}, a.Entries...), b.Entries...)}
}
