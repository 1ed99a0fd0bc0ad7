package gitrepo

import (
	"context"
	"strings"
)

const defaultBranchConfigKey = "worktrunk.default-branch"

var commonDefaultBranches = []string{"main", "master", "develop", "trunk"}

// DefaultBranch resolves and caches the repository's default branch,
// following a four-step algorithm: (1) the persisted git
// config key, if the branch still exists locally; (2) origin/HEAD via
// local refs; (3) `ls-remote --symref origin HEAD`; (4) local inference.
// The result is written back to git config.
func (r *Repository) DefaultBranch(ctx context.Context) (string, error) {
	r.cache.mu.RLock()
	if r.cache.defaultBranchSet {
		branch := r.cache.defaultBranch
		r.cache.mu.RUnlock()
		return branch, nil
	}
	r.cache.mu.RUnlock()

	branch, invalid := r.resolveDefaultBranch(ctx)

	r.cache.mu.Lock()
	if !r.cache.defaultBranchSet {
		r.cache.defaultBranch = branch
		r.cache.defaultBranchSet = true
		r.cache.defaultBranchInvalid = invalid
	}
	r.cache.mu.Unlock()

	if branch != "" {
		_, _ = r.run(ctx, []string{"config", defaultBranchConfigKey, branch})
	}
	return branch, nil
}

func (r *Repository) resolveDefaultBranch(ctx context.Context) (branch string, persistedInvalid bool) {
	if out, err := r.run(ctx, []string{"config", "--get", defaultBranchConfigKey}); err == nil {
		candidate := strings.TrimSpace(out)
		if candidate != "" && r.localBranchExists(ctx, candidate) {
			return candidate, false
		}
		if candidate != "" {
			persistedInvalid = true
		}
	}

	if out, err := r.run(ctx, []string{"symbolic-ref", "--short", "refs/remotes/origin/HEAD"}); err == nil {
		if b := strings.TrimPrefix(strings.TrimSpace(out), "origin/"); b != "" {
			return b, persistedInvalid
		}
	}

	if out, err := r.run(ctx, []string{"ls-remote", "--symref", "origin", "HEAD"}); err == nil {
		for _, line := range strings.Split(out, "\n") {
			fields := strings.Fields(line)
			if len(fields) >= 2 && fields[0] == "ref:" {
				return strings.TrimPrefix(fields[1], "refs/heads/"), persistedInvalid
			}
		}
	}

	if b := r.inferDefaultBranchLocally(ctx); b != "" {
		return b, persistedInvalid
	}

	return "", persistedInvalid
}

func (r *Repository) localBranchExists(ctx context.Context, branch string) bool {
	return r.RunChecked(ctx, []string{"show-ref", "--verify", "--quiet", "refs/heads/" + branch})
}

func (r *Repository) inferDefaultBranchLocally(ctx context.Context) string {
	out, err := r.run(ctx, []string{"branch", "--format=%(refname:short)"})
	if err == nil {
		branches := strings.Fields(out)
		if len(branches) == 1 {
			return branches[0]
		}
	}

	if out, err := r.run(ctx, []string{"symbolic-ref", "--short", "HEAD"}); err == nil {
		if b := strings.TrimSpace(out); b != "" && r.localBranchExists(ctx, b) {
			return b
		}
	}

	if out, err := r.run(ctx, []string{"config", "--get", "init.defaultBranch"}); err == nil {
		if b := strings.TrimSpace(out); b != "" && r.localBranchExists(ctx, b) {
			return b
		}
	}

	for _, candidate := range commonDefaultBranches {
		if r.localBranchExists(ctx, candidate) {
			return candidate
		}
	}
	return ""
}

// DefaultBranchInvalid reports whether DefaultBranch had to discard a
// persisted but now-invalid config value.
func (r *Repository) DefaultBranchInvalid() bool {
	r.cache.mu.RLock()
	defer r.cache.mu.RUnlock()
	return r.cache.defaultBranchInvalid
}
