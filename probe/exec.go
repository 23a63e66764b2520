package probe

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CommandRunner runs external commands. The concrete implementation shells
// out; tests substitute a fake so no probe or maintenance logic depends on
// the host system.
type CommandRunner interface {
	// Run executes the command and returns its combined output, trimmed.
	// A non-zero exit or a missing binary is returned as an error.
	Run(ctx context.Context, name string, args ...string) (string, error)

	// LookPath reports whether the named binary is on PATH.
	LookPath(name string) bool
}

// NewExecRunner returns the subprocess-backed CommandRunner.
func NewExecRunner() CommandRunner {
	return execRunner{}
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	if _, err := exec.LookPath(name); err != nil {
		return "", fmt.Errorf("%w: %s", ErrToolMissing, name)
	}

	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	output := strings.TrimSpace(string(out))
	if err != nil {
		if output != "" {
			return output, fmt.Errorf("%s: %w: %s", name, err, output)
		}
		return output, fmt.Errorf("%s: %w", name, err)
	}
	return output, nil
}

func (execRunner) LookPath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
