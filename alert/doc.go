// Package alert dispatches critical-condition notifications.
//
// The dispatcher fires only when a run detects at least one critical issue.
// It writes a distinguished entry to the alerts log and, when a webhook is
// configured, POSTs a JSON payload to it. The hook call is best-effort: its
// failure is logged and reported in the outcome but never changes the run's
// own exit status.
package alert
