package list

import (
	"encoding/json"
	"io"
	"time"

	"github.com/worktrunk/worktrunk/internal/models"
)

// jsonItem is one row of `list --format=json`: the structured fields a
// script would want to consume, plus a human-readable "_display" twin for
// every enum-valued field (so a caller can pick the symbolic tag or the
// rendered glyph without re-deriving one from the other) and a single
// pre-formatted statusline for tools that just want one string per branch
// (e.g. a shell prompt).
type jsonItem struct {
	Type          string    `json:"type"`
	HeadSHA       string    `json:"head_sha"`
	Branch        string    `json:"branch"`
	Timestamp     time.Time `json:"timestamp"`
	CommitMessage string    `json:"commit_message"`

	Ahead  int `json:"ahead"`
	Behind int `json:"behind"`

	BranchDiff  jsonLineDiff `json:"branch_diff"`
	WorkingTree jsonLineDiff `json:"working_tree"`

	BranchState        string `json:"branch_state"`
	BranchStateDisplay string `json:"branch_state_display"`

	// IntegrationReason has no separate display glyph: its meaning is
	// already folded into BranchStateDisplay ("⊂" integrated, "·"
	// same-commit), so it carries only the symbolic tag.
	IntegrationReason string `json:"integration_reason,omitempty"`

	MainDivergence        string `json:"main_divergence"`
	MainDivergenceDisplay string `json:"main_divergence_display"`

	UpstreamDivergence        string `json:"upstream_divergence"`
	UpstreamDivergenceDisplay string `json:"upstream_divergence_display"`

	WorktreeState        string `json:"worktree_state"`
	WorktreeStateDisplay string `json:"worktree_state_display"`

	UserMarker string `json:"user_marker,omitempty"`

	StatusSymbols string `json:"status_symbols"`

	IsMain       bool `json:"is_main"`
	IsCurrent    bool `json:"is_current"`
	IsPrevious   bool `json:"is_previous"`
	PathMismatch bool `json:"path_mismatch"`

	Path       string `json:"path,omitempty"`
	Statusline string `json:"statusline"`
}

type jsonLineDiff struct {
	Added   int `json:"added"`
	Deleted int `json:"deleted"`
}

// ToJSONItems converts items into their JSON representation, rendering
// every row's status glyphs against the shared mask so status_symbols
// lines up the same way the terminal table would.
func ToJSONItems(items []models.ListItem, mask models.PositionMask) []any {
	out := make([]any, len(items))
	for i := range items {
		out[i] = toJSONItem(&items[i], mask)
	}
	return out
}

func toJSONItem(item *models.ListItem, mask models.PositionMask) jsonItem {
	ji := jsonItem{
		Type:         item.Kind.String(),
		HeadSHA:      item.Head,
		Branch:       item.Branch,
		UserMarker:   item.UserMarker,
		IsMain:       item.IsMain,
		IsCurrent:    item.IsCurrent,
		IsPrevious:   item.IsPrevious,
		PathMismatch: item.PathMismatch,
		Path:         item.Path,
	}

	if item.Commit.Loaded {
		ji.Timestamp = item.Commit.Value.Timestamp
		ji.CommitMessage = item.Commit.Value.MessageHeadline
	}
	if item.MainAheadBehind.Loaded {
		ji.Ahead = item.MainAheadBehind.Value.Ahead
		ji.Behind = item.MainAheadBehind.Value.Behind
	}
	if item.BranchDiff.Loaded && item.BranchDiff.Value != nil {
		ji.BranchDiff = jsonLineDiff{Added: item.BranchDiff.Value.Added, Deleted: item.BranchDiff.Value.Deleted}
	}
	if item.WorkingDiff.Loaded {
		ji.WorkingTree = jsonLineDiff{Added: item.WorkingDiff.Value.Added, Deleted: item.WorkingDiff.Value.Deleted}
	}

	ji.BranchState = item.Status.Branch.JSONName()
	ji.BranchStateDisplay = item.Status.Branch.Glyph()

	if item.Integration.Loaded && item.Status.Integration != models.IntegrationNone {
		ji.IntegrationReason = item.Status.Integration.String()
	}

	ji.MainDivergence = item.Status.Main.JSONName()
	ji.MainDivergenceDisplay = item.Status.Main.Glyph()
	ji.UpstreamDivergence = item.Status.Upstream.JSONName()
	ji.UpstreamDivergenceDisplay = item.Status.Upstream.Glyph()
	ji.WorktreeState = item.Status.Worktree.JSONName()
	ji.WorktreeStateDisplay = item.Status.Worktree.Glyph()

	ji.StatusSymbols = item.Status.Render(mask)
	ji.Statusline = item.Branch + " " + ji.StatusSymbols

	return ji
}

// WriteJSON marshals items as a JSON array to w, two-space indented to
// stay diffable and grep-friendly for shell-script consumers.
func WriteJSON(w io.Writer, items []models.ListItem, mask models.PositionMask) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ToJSONItems(items, mask))
}
