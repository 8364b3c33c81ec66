package host

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/Dheerajkumar69/AutoReadme/internal/utils"
)

// Git reads baselines from the repository containing dir.
type Git struct {
	dir string
}

func NewGit(dir string) *Git {
	return &Git{dir: dir}
}

// ChangedFiles lists files modified or added relative to HEAD, untracked
// files included, as paths relative to dir.
func (g *Git) ChangedFiles(ctx context.Context) ([]string, error) {
	tracked, err := g.run(ctx, "diff", "--name-only", "--relative", "--diff-filter=AM", "HEAD")
	if err != nil {
		return nil, fmt.Errorf("failed to list changed files: %w", err)
	}

	untracked, err := g.run(ctx, "ls-files", "--others", "--exclude-standard")
	if err != nil {
		return nil, fmt.Errorf("failed to list untracked files: %w", err)
	}

	return utils.ParseFileList(tracked, untracked), nil
}

// Baseline returns path's content at HEAD, or "" when HEAD does not have it.
func (g *Git) Baseline(ctx context.Context, path string) (string, error) {
	listed, err := g.run(ctx, "ls-tree", "--name-only", "HEAD", "--", path)
	if err != nil {
		return "", fmt.Errorf("failed to look up %s at HEAD: %w", path, err)
	}
	if strings.TrimSpace(listed) == "" {
		return "", nil
	}

	content, err := g.run(ctx, "show", "HEAD:./"+path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s at HEAD: %w", path, err)
	}
	return content, nil
}

func (g *Git) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", g.dir}, args...)...)
	output, err := cmd.Output()
	if err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) && len(exitError.Stderr) > 0 {
			return "", fmt.Errorf("git %s: %s", args[0], strings.TrimSpace(string(exitError.Stderr)))
		}
		return "", err
	}
	return string(output), nil
}
