package maintain

// Config carries the externally configurable knobs of the default task
// sequence. Zero values fall back to the per-task defaults.
type Config struct {
	// Retention is the nix-collect-garbage age cutoff, e.g. "7d".
	Retention string

	// KeepGenerations is how many profile generations survive cleanup.
	KeepGenerations int

	// ArtifactRoot is the directory swept for transient artifacts.
	ArtifactRoot string
}

// DefaultTasks returns the fixed maintenance sequence in its declared
// order: garbage collection, store optimisation, artifact sweep, tool
// cache clearing, profile cleanup.
func DefaultTasks(runner CommandRunner, cfg Config) []Task {
	return []Task{
		NewGarbageCollectTask(runner, cfg.Retention),
		NewOptimiseStoreTask(runner),
		NewTransientArtifactsTask(TransientArtifactsTaskConfig{Root: cfg.ArtifactRoot}),
		NewToolCachesTask(runner, nil),
		NewSelfCleanupTask(runner, cfg.KeepGenerations),
	}
}
