package maintain

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// fakeRunner scripts subprocess results for task tests.
type fakeRunner struct {
	onPath map[string]bool
	output map[string]string
	errs   map[string]error
	calls  []string
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	key := strings.Join(append([]string{name}, args...), " ")
	f.calls = append(f.calls, key)
	return f.output[key], f.errs[key]
}

func (f *fakeRunner) LookPath(name string) bool {
	if f.onPath == nil {
		return true
	}
	return f.onPath[name]
}

func TestGarbageCollectTask(t *testing.T) {
	runner := &fakeRunner{
		output: map[string]string{
			"nix-collect-garbage --delete-older-than 7d": "freed 2.1 GiB",
		},
	}

	result := NewGarbageCollectTask(runner, "").Run(context.Background())

	if !result.Succeeded {
		t.Errorf("Succeeded = false: %s", result.Detail)
	}
	if result.Detail != "freed 2.1 GiB" {
		t.Errorf("Detail = %q, want command output", result.Detail)
	}
	if len(runner.calls) != 1 || !strings.Contains(runner.calls[0], "--delete-older-than 7d") {
		t.Errorf("calls = %v, want default 7d retention", runner.calls)
	}
}

func TestGarbageCollectTask_CustomRetention(t *testing.T) {
	runner := &fakeRunner{}
	NewGarbageCollectTask(runner, "14d").Run(context.Background())

	if !strings.Contains(runner.calls[0], "--delete-older-than 14d") {
		t.Errorf("calls = %v, want 14d retention", runner.calls)
	}
}

func TestGarbageCollectTask_Failure(t *testing.T) {
	cmdErr := errors.New("nix-collect-garbage: exit status 1")
	runner := &fakeRunner{
		errs: map[string]error{
			"nix-collect-garbage --delete-older-than 7d": cmdErr,
		},
	}

	result := NewGarbageCollectTask(runner, "").Run(context.Background())

	if result.Succeeded {
		t.Error("Succeeded = true for failing command")
	}
	if !strings.Contains(result.Detail, "exit status 1") {
		t.Errorf("Detail = %q, want captured error text", result.Detail)
	}
}

func TestOptimiseStoreTask(t *testing.T) {
	runner := &fakeRunner{}
	result := NewOptimiseStoreTask(runner).Run(context.Background())

	if !result.Succeeded {
		t.Errorf("Succeeded = false: %s", result.Detail)
	}
	if runner.calls[0] != "nix-store --optimise" {
		t.Errorf("calls[0] = %q, want nix-store --optimise", runner.calls[0])
	}
}

func TestSelfCleanupTask(t *testing.T) {
	runner := &fakeRunner{}
	result := NewSelfCleanupTask(runner, 0).Run(context.Background())

	if !result.Succeeded {
		t.Errorf("Succeeded = false: %s", result.Detail)
	}
	if runner.calls[0] != "nix-env --delete-generations +5" {
		t.Errorf("calls[0] = %q, want default keep of 5", runner.calls[0])
	}
}

func TestTransientArtifactsTask(t *testing.T) {
	root := t.TempDir()
	keep := filepath.Join(root, "keep.txt")
	junk1 := filepath.Join(root, ".DS_Store")
	sub := filepath.Join(root, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	junk2 := filepath.Join(sub, "notes.txt~")
	for _, p := range []string{keep, junk1, junk2} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	result := NewTransientArtifactsTask(TransientArtifactsTaskConfig{Root: root}).Run(context.Background())

	if !result.Succeeded {
		t.Fatalf("Succeeded = false: %s", result.Detail)
	}
	if _, err := os.Stat(keep); err != nil {
		t.Error("keep.txt was removed")
	}
	for _, p := range []string{junk1, junk2} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("%s survived the sweep", p)
		}
	}
	if !strings.Contains(result.Detail, "removed 2") {
		t.Errorf("Detail = %q, want removed 2", result.Detail)
	}
}

func TestTransientArtifactsTask_DepthBound(t *testing.T) {
	root := t.TempDir()
	deep := filepath.Join(root, "a", "b", "c", "d")
	if err := os.MkdirAll(deep, 0o755); err != nil {
		t.Fatal(err)
	}
	tooDeep := filepath.Join(deep, ".DS_Store")
	if err := os.WriteFile(tooDeep, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	result := NewTransientArtifactsTask(TransientArtifactsTaskConfig{Root: root, MaxDepth: 2}).Run(context.Background())

	if !result.Succeeded {
		t.Fatalf("Succeeded = false: %s", result.Detail)
	}
	if _, err := os.Stat(tooDeep); err != nil {
		t.Error("file beyond max depth was removed")
	}
}

func TestToolCachesTask_GatedOnPresence(t *testing.T) {
	runner := &fakeRunner{
		onPath: map[string]bool{"npm": true, "go": false, "brew": false},
	}

	result := NewToolCachesTask(runner, nil).Run(context.Background())

	if !result.Succeeded {
		t.Errorf("Succeeded = false: %s", result.Detail)
	}
	if len(runner.calls) != 1 || !strings.HasPrefix(runner.calls[0], "npm") {
		t.Errorf("calls = %v, want only npm invoked", runner.calls)
	}
	if !strings.Contains(result.Detail, "go: not installed") {
		t.Errorf("Detail = %q, want absent tools noted", result.Detail)
	}
}

func TestToolCachesTask_AllAbsentIsSkipped(t *testing.T) {
	runner := &fakeRunner{onPath: map[string]bool{}}

	result := NewToolCachesTask(runner, nil).Run(context.Background())

	if !result.Skipped {
		t.Error("Skipped = false when no tool is installed")
	}
	if result.Succeeded {
		t.Error("Succeeded = true for skipped task")
	}
}

func TestToolCachesTask_AllPresentFail(t *testing.T) {
	runner := &fakeRunner{
		onPath: map[string]bool{"npm": true},
		errs:   map[string]error{"npm cache clean --force": errors.New("exit status 1")},
	}

	result := NewToolCachesTask(runner, []CacheTool{{Bin: "npm", Args: []string{"cache", "clean", "--force"}}}).Run(context.Background())

	if result.Succeeded || result.Skipped {
		t.Errorf("result = %+v, want plain failure", result)
	}
}

func TestDefaultTasks_Order(t *testing.T) {
	tasks := DefaultTasks(&fakeRunner{}, Config{})

	want := []string{"garbage-collect", "optimise-store", "transient-artifacts", "tool-caches", "profile-cleanup"}
	if len(tasks) != len(want) {
		t.Fatalf("got %d tasks, want %d", len(tasks), len(want))
	}
	for i, name := range want {
		if tasks[i].Name() != name {
			t.Errorf("tasks[%d].Name() = %q, want %q", i, tasks[i].Name(), name)
		}
	}
}
