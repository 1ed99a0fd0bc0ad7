package gitrepo

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/worktrunk/worktrunk/internal/models"
)

// AheadBehind computes (A, B) ahead/behind counts between two refs via
// `rev-list --count --left-right A...B`.
func (r *Repository) AheadBehind(ctx context.Context, a, b string) (models.AheadBehind, error) {
	out, err := r.run(ctx, []string{"rev-list", "--count", "--left-right", a + "..." + b})
	if err != nil {
		return models.AheadBehind{}, err
	}
	parts := strings.Fields(out)
	if len(parts) != 2 {
		return models.AheadBehind{}, fmt.Errorf("unexpected rev-list output %q", out)
	}
	ahead, _ := strconv.Atoi(parts[0])
	behind, _ := strconv.Atoi(parts[1])
	return models.AheadBehind{Ahead: ahead, Behind: behind}, nil
}

// BranchDiffStat returns the shortstat line-count diff of `main...HEAD`.
func (r *Repository) BranchDiffStat(ctx context.Context, main, head string) (models.LineDiff, error) {
	out, err := r.run(ctx, []string{"diff", "--shortstat", main + "..." + head})
	if err != nil {
		return models.LineDiff{}, err
	}
	return parseShortstat(out), nil
}

func parseShortstat(out string) models.LineDiff {
	var d models.LineDiff
	if idx := strings.Index(out, "insertion"); idx >= 0 {
		d.Added = lastIntBefore(out, idx)
	}
	if idx := strings.Index(out, "deletion"); idx >= 0 {
		d.Deleted = lastIntBefore(out, idx)
	}
	return d
}

func lastIntBefore(s string, idx int) int {
	i := idx
	for i > 0 && s[i-1] == ' ' {
		i--
	}
	j := i
	for j > 0 && s[j-1] >= '0' && s[j-1] <= '9' {
		j--
	}
	n, _ := strconv.Atoi(s[j:i])
	return n
}

// WorkingTreeStatus is the parsed result of `status --porcelain -z`.
type WorkingTreeStatus struct {
	Staged, Modified, Untracked, Renamed, Deleted bool
}

// WorkingTreeStatus runs `status --porcelain -z` in cwd and parses it into
// the five booleans {staged, modified, untracked, renamed, deleted}.
func (r *Repository) WorkingTreeStatus(ctx context.Context, cwd string) (WorkingTreeStatus, error) {
	out, err := r.runIn(ctx, cwd, []string{"status", "--porcelain", "-z"})
	if err != nil {
		return WorkingTreeStatus{}, err
	}
	return parseWorkingTreeStatus(out), nil
}

// parseWorkingTreeStatus parses `status --porcelain -z` output into the
// five booleans. Rename entries consume an extra NUL-separated old path,
// which this parser skips correctly.
func parseWorkingTreeStatus(out string) WorkingTreeStatus {
	var st WorkingTreeStatus
	fields := strings.Split(out, "\x00")
	for i := 0; i < len(fields); i++ {
		f := fields[i]
		if len(f) < 3 {
			continue
		}
		x, y := f[0], f[1]
		if x == '?' && y == '?' {
			st.Untracked = true
			continue
		}
		if x == 'R' || y == 'R' || x == 'C' || y == 'C' {
			st.Renamed = true
			i++ // consume the old-path field
		}
		if x == 'D' || y == 'D' {
			st.Deleted = true
		}
		if x != ' ' && x != '?' {
			st.Staged = true
		}
		if y != ' ' && y != '?' {
			st.Modified = true
		}
	}
	return st
}

// WorkingDiffStat returns the shortstat line-count diff of uncommitted
// changes in cwd (`diff --shortstat`, unstaged+staged combined via HEAD).
func (r *Repository) WorkingDiffStat(ctx context.Context, cwd string) (models.LineDiff, error) {
	out, err := r.runIn(ctx, cwd, []string{"diff", "--shortstat", "HEAD"})
	if err != nil {
		return models.LineDiff{}, err
	}
	return parseShortstat(out), nil
}

// WorkingDiffStatVsRef returns the shortstat line-count diff between cwd's
// working tree and ref, used for the "diff vs main" cell.
func (r *Repository) WorkingDiffStatVsRef(ctx context.Context, cwd, ref string) (models.LineDiff, error) {
	out, err := r.runIn(ctx, cwd, []string{"diff", "--shortstat", ref})
	if err != nil {
		return models.LineDiff{}, err
	}
	return parseShortstat(out), nil
}

// MergeBase returns the merge-base SHA of a and b.
func (r *Repository) MergeBase(ctx context.Context, a, b string) (string, error) {
	out, err := r.run(ctx, []string{"merge-base", a, b})
	return strings.TrimSpace(out), err
}

// CountCommits returns the number of commits reachable from head but not
// from base (`git rev-list --count base..head`).
func (r *Repository) CountCommits(ctx context.Context, base, head string) (int, error) {
	out, err := r.run(ctx, []string{"rev-list", "--count", base + ".." + head})
	if err != nil {
		return 0, err
	}
	n, _ := strconv.Atoi(strings.TrimSpace(out))
	return n, nil
}

// CommitTimestamp returns ref's author date.
func (r *Repository) CommitTimestamp(ctx context.Context, ref string) (time.Time, error) {
	out, err := r.run(ctx, []string{"show", "-s", "--format=%aI", ref})
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, strings.TrimSpace(out))
}

// CommitMessageHeadline returns ref's first commit-message line.
func (r *Repository) CommitMessageHeadline(ctx context.Context, ref string) (string, error) {
	out, err := r.run(ctx, []string{"show", "-s", "--format=%s", ref})
	return strings.TrimSpace(out), err
}

// CommitSubjects returns the subject line of every commit in from..to,
// most-recent-first (the order `git log` emits by default).
func (r *Repository) CommitSubjects(ctx context.Context, cwd, from, to string) ([]string, error) {
	out, err := r.runIn(ctx, cwd, []string{"log", "--format=%s", from + ".." + to})
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// UpstreamBranch returns the `@{u}` of branch, or "" if none is configured.
func (r *Repository) UpstreamBranch(ctx context.Context, branch string) (string, error) {
	out, err := r.run(ctx, []string{"rev-parse", "--abbrev-ref", branch + "@{u}"})
	if err != nil {
		return "", nil // no upstream configured is not an error condition
	}
	return strings.TrimSpace(out), nil
}

// IsAncestor reports whether ancestor is reachable from ref.
func (r *Repository) IsAncestor(ctx context.Context, ancestor, ref string) bool {
	return r.RunChecked(ctx, []string{"merge-base", "--is-ancestor", ancestor, ref})
}

// TreeOf returns ref^{tree}, used for the CommittedTreesMatch integration
// predicate.
func (r *Repository) TreeOf(ctx context.Context, ref string) (string, error) {
	out, err := r.run(ctx, []string{"rev-parse", ref + "^{tree}"})
	return strings.TrimSpace(out), err
}

// MergeTreeWouldAddNothing reports whether `merge-tree --write-tree main
// branch` produces main's own tree — MergeAddsNothing.
func (r *Repository) MergeTreeWouldAddNothing(ctx context.Context, main, branch string) (bool, error) {
	mainTree, err := r.TreeOf(ctx, main)
	if err != nil {
		return false, err
	}
	out, err := r.run(ctx, []string{"merge-tree", "--write-tree", main, branch})
	if err != nil {
		// A non-zero exit from merge-tree --write-tree means conflicts;
		// that is not "adds nothing".
		return false, nil
	}
	resultTree := strings.Fields(strings.TrimSpace(out))
	if len(resultTree) == 0 {
		return false, nil
	}
	return resultTree[0] == mainTree, nil
}
