// Package report renders a human-readable summary of a generation pass.
package report

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/vk/flowdeploy/internal/generator"
)

// Summary prints one row per written manifest to w. Nothing is printed for
// an empty pass.
func Summary(w io.Writer, results []generator.Result) {
	if len(results) == 0 {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"PROJECT", "DEPLOYMENT", "ENTRYPOINT", "FILE"})

	for _, r := range results {
		t.AppendRow(table.Row{r.Unit.Project, r.Unit.Name, r.Entrypoint, r.OutFile})
	}

	t.Render()
}
