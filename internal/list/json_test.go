package list

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worktrunk/worktrunk/internal/models"
	"github.com/worktrunk/worktrunk/internal/status"
)

func TestToJSONItemsCoreFields(t *testing.T) {
	item := models.ListItem{
		Kind:   models.KindWorktree,
		Head:   "abc123",
		Branch: "feature-x",
		IsMain: false,
	}
	item.Commit = models.Loaded(models.CommitDetails{
		Timestamp:       time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		MessageHeadline: "add feature",
	})
	item.MainAheadBehind = models.Loaded(models.AheadBehind{Ahead: 3, Behind: 0})
	item.Upstream = models.Loaded(models.UpstreamStatus{
		Remote:      "origin/feature-x",
		AheadBehind: models.AheadBehind{Ahead: 0, Behind: 2},
	})
	status.Recompute(&item, false)

	out := ToJSONItems([]models.ListItem{item}, models.PositionMask{})
	require.Len(t, out, 1)

	encoded, err := json.Marshal(out[0])
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(encoded, &decoded))

	assert.Equal(t, "worktree", decoded["type"])
	assert.Equal(t, "abc123", decoded["head_sha"])
	assert.Equal(t, "feature-x", decoded["branch"])
	assert.Equal(t, "add feature", decoded["commit_message"])
	assert.Equal(t, float64(3), decoded["ahead"])
	assert.Equal(t, float64(0), decoded["behind"])
	assert.Equal(t, "↑", decoded["main_divergence_display"])
	assert.Equal(t, "⇣", decoded["upstream_divergence_display"])
	assert.Contains(t, decoded["statusline"], "feature-x")
	assert.NotContains(t, decoded, "user_marker", "omitempty should drop an unset marker")
}

func TestToJSONItemIntegrationReasonOmittedWhenNone(t *testing.T) {
	item := models.ListItem{Kind: models.KindWorktree, Branch: "main", IsMain: true}
	out := ToJSONItems([]models.ListItem{item}, models.PositionMask{})
	encoded, err := json.Marshal(out[0])
	require.NoError(t, err)
	assert.NotContains(t, string(encoded), "integration_reason")
}

func TestToJSONItemIntegrationReasonPresentWhenIntegrated(t *testing.T) {
	item := models.ListItem{Kind: models.KindWorktree, Branch: "merged-feature"}
	item.Integration = models.Loaded(models.IntegrationFlags{CommittedTreesMatch: true})
	status.Recompute(&item, false)

	out := ToJSONItems([]models.ListItem{item}, models.PositionMask{})
	encoded, err := json.Marshal(out[0])
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, "trees_match", decoded["integration_reason"])
}

func TestRunJSONProducesValidArray(t *testing.T) {
	repo, _, _ := setupListFixture(t)

	var buf bytes.Buffer
	err := Run(context.Background(), repo, &buf, RunOptions{DefaultBranch: "main", JSON: true})
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Len(t, decoded, 2)
}
