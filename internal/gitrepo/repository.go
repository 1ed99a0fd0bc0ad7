// Package gitrepo is the git adapter: it runs `git`
// subprocesses, parses their porcelain output, and exposes the operations
// the rest of worktrunk needs and nothing more. Every method is
// deterministic given a fixed repository state; every call is traced
// through internal/tracelog.
package gitrepo

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"sync"

	"github.com/worktrunk/worktrunk/internal/tracelog"
	"github.com/worktrunk/worktrunk/internal/werrors"
)

// cache is the per-repository-handle shared cache (default branch name and
// whether it had to be re-resolved). Cloned handles share the same *cache
// pointer. Writes go through a set-once primitive.
type cache struct {
	mu                   sync.RWMutex
	defaultBranch        string
	defaultBranchSet     bool
	defaultBranchInvalid bool
	extra                map[string]any
}

// Repository is an opaque handle rooted at a worktree directory.
type Repository struct {
	dir       string // the worktree directory this handle is rooted at
	commonDir string // git-common-dir, resolved lazily
	cache     *cache
	semaphore chan struct{}
}

// limitFor sizes the subprocess semaphore: 2x NumCPU, clamped to [4, 32].
func limitFor() int {
	n := runtime.NumCPU() * 2
	if n < 4 {
		n = 4
	}
	if n > 32 {
		n = 32
	}
	return n
}

// Open resolves dir (or the process cwd if empty) to its repository root
// and returns a handle. It fails if dir is not inside a git working tree.
func Open(ctx context.Context, dir string) (*Repository, error) {
	repo := &Repository{
		dir:       dir,
		cache:     &cache{},
		semaphore: make(chan struct{}, limitFor()),
	}
	for i := 0; i < cap(repo.semaphore); i++ {
		repo.semaphore <- struct{}{}
	}
	top, err := repo.run(ctx, []string{"rev-parse", "--show-toplevel"})
	if err != nil {
		return nil, fmt.Errorf("not a git repository: %w", err)
	}
	repo.dir = strings.TrimSpace(top)
	common, err := repo.run(ctx, []string{"rev-parse", "--git-common-dir"})
	if err != nil {
		return nil, fmt.Errorf("resolving git-common-dir: %w", err)
	}
	repo.commonDir = strings.TrimSpace(common)
	return repo, nil
}

// Clone returns a handle sharing this repository's cache, rooted at a
// different worktree directory (e.g. one belonging to the same repo).
func (r *Repository) Clone(dir string) *Repository {
	return &Repository{dir: dir, commonDir: r.commonDir, cache: r.cache, semaphore: r.semaphore}
}

// Dir returns the worktree directory this handle is rooted at.
func (r *Repository) Dir() string { return r.dir }

// CommonDir returns the shared git-common-dir (same across all worktrees).
func (r *Repository) CommonDir() string { return r.commonDir }

func (r *Repository) acquire() func() {
	<-r.semaphore
	return func() { r.semaphore <- struct{}{} }
}

// run executes `git <args...>` with r.dir as the working directory,
// returning stdout. Tracing and the bounded semaphore are applied to every
// call.
func (r *Repository) run(ctx context.Context, args []string) (string, error) {
	return r.runIn(ctx, r.dir, args)
}

func (r *Repository) runIn(ctx context.Context, cwd string, args []string) (string, error) {
	release := r.acquire()
	defer release()

	var stdout, stderr bytes.Buffer
	err := tracelog.Timed("gitrepo", "git "+strings.Join(args, " "), func() error {
		// #nosec G204 -- args are built by internal callers, never from raw user shell input
		cmd := exec.CommandContext(ctx, "git", args...)
		if cwd != "" {
			cmd.Dir = cwd
		}
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
		return cmd.Run()
	})
	if err != nil {
		return stdout.String(), fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// RunChecked runs git args and reports only success/failure, discarding
// stdout.
func (r *Repository) RunChecked(ctx context.Context, args []string) bool {
	_, err := r.run(ctx, args)
	return err == nil
}

// CombinedOutput runs git args and returns combined stdout+stderr, used by
// operations (push, rebase) whose error messages matter to the caller.
func (r *Repository) CombinedOutput(ctx context.Context, args []string, cwd string) (string, error) {
	release := r.acquire()
	defer release()
	if cwd == "" {
		cwd = r.dir
	}
	var out bytes.Buffer
	err := tracelog.Timed("gitrepo", "git "+strings.Join(args, " "), func() error {
		// #nosec G204 -- args are built by internal callers, never from raw user shell input
		cmd := exec.CommandContext(ctx, "git", args...)
		cmd.Dir = cwd
		cmd.Stdout = &out
		cmd.Stderr = &out
		return cmd.Run()
	})
	return out.String(), err
}

// CurrentBranch returns the checked-out branch name, or an error wrapping
// werrors.KindDetachedHEAD if HEAD is detached.
func (r *Repository) CurrentBranch(ctx context.Context) (string, error) {
	out, err := r.run(ctx, []string{"rev-parse", "--abbrev-ref", "HEAD"})
	if err != nil {
		return "", werrors.Wrap(werrors.KindInvalidRef, "resolving current branch", err)
	}
	branch := strings.TrimSpace(out)
	if branch == "HEAD" {
		return "", werrors.New(werrors.KindDetachedHEAD, "HEAD is detached")
	}
	return branch, nil
}

// HasUncommittedChanges reports whether the worktree has any staged,
// modified, or untracked changes.
func (r *Repository) HasUncommittedChanges(ctx context.Context) (bool, error) {
	st, err := r.WorkingTreeStatus(ctx, r.dir)
	if err != nil {
		return false, err
	}
	return st.Staged || st.Modified || st.Untracked || st.Renamed || st.Deleted, nil
}
