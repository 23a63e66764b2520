package maintain

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// TransientArtifactsTaskConfig configures the transient artifact sweep.
type TransientArtifactsTaskConfig struct {
	// Root is the directory swept for artifacts. Default: the home dir.
	Root string

	// Patterns are the file name patterns removed, in filepath.Match
	// syntax. Default: .DS_Store, *~, .netrwhist
	Patterns []string

	// MaxDepth bounds the sweep below Root. Default: 3
	MaxDepth int
}

// TransientArtifactsTask removes known transient OS artifact files under a
// root directory: editor backups, Finder droppings and similar debris with
// fixed, well-known names.
type TransientArtifactsTask struct {
	config TransientArtifactsTaskConfig
}

// NewTransientArtifactsTask creates the artifact sweep task.
func NewTransientArtifactsTask(config TransientArtifactsTaskConfig) *TransientArtifactsTask {
	if config.Root == "" {
		if home, err := os.UserHomeDir(); err == nil {
			config.Root = home
		}
	}
	if len(config.Patterns) == 0 {
		config.Patterns = []string{".DS_Store", "*~", ".netrwhist"}
	}
	if config.MaxDepth <= 0 {
		config.MaxDepth = 3
	}
	return &TransientArtifactsTask{config: config}
}

// Name returns the name of this task.
func (t *TransientArtifactsTask) Name() string {
	return "transient-artifacts"
}

// Run sweeps the root and removes matches. Individual unremovable files are
// noted but do not fail the task; only an unreadable root does.
func (t *TransientArtifactsTask) Run(ctx context.Context) TaskResult {
	start := time.Now()
	result := TaskResult{Task: t.Name()}

	if t.config.Root == "" {
		result.Detail = "no sweep root resolved"
		result.Duration = time.Since(start)
		return result
	}

	removed, failed := 0, 0
	walkErr := filepath.WalkDir(t.config.Root, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err != nil {
			// Unreadable subtree: keep sweeping the rest.
			if path == t.config.Root {
				return err
			}
			return fs.SkipDir
		}
		if d.IsDir() {
			if t.depth(path) >= t.config.MaxDepth {
				return fs.SkipDir
			}
			return nil
		}
		if !t.matches(d.Name()) {
			return nil
		}
		if err := os.Remove(path); err != nil {
			failed++
			return nil
		}
		removed++
		return nil
	})

	result.Duration = time.Since(start)
	if walkErr != nil {
		result.Detail = walkErr.Error()
		return result
	}

	result.Succeeded = true
	result.Detail = fmt.Sprintf("removed %d artifacts (%d unremovable)", removed, failed)
	return result
}

func (t *TransientArtifactsTask) matches(name string) bool {
	for _, pattern := range t.config.Patterns {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

func (t *TransientArtifactsTask) depth(path string) int {
	rel, err := filepath.Rel(t.config.Root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}
