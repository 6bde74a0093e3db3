// Package generator turns discovered flow scripts into deployment manifest
// files. It is a single synchronous pass: scan, derive, render, write. Runs
// are idempotent; an interrupted run is simply re-run and overwrites its own
// partial output.
package generator
