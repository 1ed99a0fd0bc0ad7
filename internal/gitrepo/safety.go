package gitrepo

import (
	"context"
	"fmt"
	"strings"
)

// SafetyBackup writes sha to refs/wt-backup/<branch> with a reflog message
// and returns the short SHA plus a restoration command to show the user
//.
func (r *Repository) SafetyBackup(ctx context.Context, branch, sha string) (shortSHA, restoreCmd string, err error) {
	ref := "refs/wt-backup/" + branch
	if _, err = r.run(ctx, []string{"update-ref", "-m", "worktrunk: safety backup before squash", ref, sha}); err != nil {
		return "", "", fmt.Errorf("writing safety backup: %w", err)
	}
	out, err := r.run(ctx, []string{"rev-parse", "--short", sha})
	if err != nil {
		return "", "", err
	}
	shortSHA = strings.TrimSpace(out)
	restoreCmd = fmt.Sprintf("git reset --hard %s", ref)
	return shortSHA, restoreCmd, nil
}
