package maintain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// CacheTool is one third-party tool whose cache the agent clears.
type CacheTool struct {
	// Bin is the binary probed for on PATH.
	Bin string

	// Args is the cache-clearing invocation.
	Args []string
}

// DefaultCacheTools returns the known cache-clearing invocations.
func DefaultCacheTools() []CacheTool {
	return []CacheTool{
		{Bin: "npm", Args: []string{"cache", "clean", "--force"}},
		{Bin: "go", Args: []string{"clean", "-cache"}},
		{Bin: "brew", Args: []string{"cleanup", "-s"}},
	}
}

// ToolCachesTask clears the caches of third-party tools, each gated on the
// tool being installed. A tool that is absent is recorded and skipped; only
// a present tool whose invocation fails counts against the task.
type ToolCachesTask struct {
	runner CommandRunner
	tools  []CacheTool
}

// NewToolCachesTask creates the cache clearing task. Tools defaults to
// DefaultCacheTools.
func NewToolCachesTask(runner CommandRunner, tools []CacheTool) *ToolCachesTask {
	if len(tools) == 0 {
		tools = DefaultCacheTools()
	}
	return &ToolCachesTask{runner: runner, tools: tools}
}

// Name returns the name of this task.
func (t *ToolCachesTask) Name() string {
	return "tool-caches"
}

// Run clears each present tool's cache.
func (t *ToolCachesTask) Run(ctx context.Context) TaskResult {
	start := time.Now()

	var notes []string
	present, failed := 0, 0

	for _, tool := range t.tools {
		if !t.runner.LookPath(tool.Bin) {
			notes = append(notes, tool.Bin+": not installed")
			continue
		}
		present++
		if _, err := t.runner.Run(ctx, tool.Bin, tool.Args...); err != nil {
			failed++
			notes = append(notes, fmt.Sprintf("%s: %v", tool.Bin, err))
			continue
		}
		notes = append(notes, tool.Bin+": cleared")
	}

	result := TaskResult{
		Task:     t.Name(),
		Duration: time.Since(start),
		Detail:   strings.Join(notes, "; "),
	}

	switch {
	case present == 0:
		result.Skipped = true
	case failed == present:
		// Every installed tool failed.
	default:
		result.Succeeded = true
	}
	return result
}
