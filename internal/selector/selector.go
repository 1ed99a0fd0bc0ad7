// Package selector defines the contract `wt select` depends on for picking
// one worktree or branch interactively. The fuzzy picker itself — a
// terminal UI over the candidate list — is a separate binary; this package
// only carries the interface and a stub that reports it isn't wired in,
// so `internal/cli` has something concrete to call.
package selector

import (
	"context"
	"fmt"

	"github.com/worktrunk/worktrunk/internal/models"
)

// Picker lets a caller choose one item from a candidate list
// interactively. A nil result with a nil error means the user canceled
// without picking anything.
type Picker interface {
	Pick(ctx context.Context, items []models.ListItem) (*models.ListItem, error)
}

// Unavailable is the stub Picker wired in by default: it always fails,
// naming the missing external picker rather than silently picking
// nothing.
type Unavailable struct{}

func (Unavailable) Pick(ctx context.Context, items []models.ListItem) (*models.ListItem, error) {
	return nil, fmt.Errorf("interactive selection requires a fuzzy-picker binary on PATH, which this build does not provide")
}
