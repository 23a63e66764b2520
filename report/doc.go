// Package report persists one immutable RunRecord per agent invocation.
//
// Two artifacts are produced: a timestamped human-readable report file in
// the reports directory, and append-only lines in a small set of
// category-specific log files (health-check, maintenance, performance,
// alerts). Log files are only ever opened O_APPEND and each line lands in a
// single write, so an external tail -f reader never observes a torn line
// and files are never truncated or rewritten in place.
//
// Report filenames embed the run timestamp at millisecond precision and
// take a numeric suffix on collision: writing N reports in the same instant
// still yields N distinct files.
package report
