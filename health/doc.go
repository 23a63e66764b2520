// Package health provides the measurement, threshold and classification
// primitives for the machine health agent.
//
// This package is the pure core of the agent: it defines what a probe
// measurement looks like, how measurements are compared against configured
// thresholds to produce issues, and how a list of issues is collapsed into
// a single overall status. Nothing here touches the filesystem, the network
// or subprocesses; probes live in the probe package and feed their output in.
//
// # Core Concepts
//
// A Measurement is the typed output of one probe sample. A Threshold pairs a
// comparator with a numeric limit for a probe family. Evaluate compares
// measurements against thresholds and emits Issues; Classify collapses the
// issue list into a Status.
//
// # Basic Usage
//
//	issues := health.Evaluate(measurements, health.DefaultThresholds())
//	status := health.Classify(issues)
//	if status == health.StatusPoor {
//	    // raise the alarm
//	}
//
// Both Evaluate and Classify are pure functions: calling them twice on the
// same input yields the same output, and no state is carried between runs.
package health
