// Package observe provides the agent's logging and metrics plumbing.
//
// Logging is a minimal structured interface backed by a JSON line logger on
// stderr; every run-scoped component receives a Logger at construction and
// nothing logs through package globals. Metrics are OpenTelemetry
// instruments flushed once at the end of each run, since the agent is a
// short-lived process rather than a server with a scrape endpoint.
//
//	logger := observe.NewLogger("info")
//	logger.Info(ctx, "run started", observe.Field{Key: "mode", Value: "check"})
//
//	metrics, _ := observe.NewMetrics(ctx, "stdout")
//	defer metrics.Shutdown(ctx)
package observe
