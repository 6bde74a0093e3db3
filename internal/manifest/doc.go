// Package manifest models a single Prefect deployment manifest and renders
// it to prefect.yaml syntax. Key order is fixed by the document struct, so
// rendering the same descriptor twice yields byte-identical output.
package manifest
