package main

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"semcheck/internal/domain"
	"semcheck/internal/render"
	"semcheck/internal/workflow"
)

// runHeadless loads each file into a slot, runs the analysis for mode and
// prints the rendered result. It returns the process exit code.
func runHeadless(ctx context.Context, gw domain.Gateway, mode domain.Mode, files []string, stdout, stderr io.Writer) int {
	want := 1
	if mode == domain.ModeCompare {
		want = 2
	}
	if len(files) != want {
		fmt.Fprintf(stderr, "%s mode needs %d file(s), got %d\n", mode, want, len(files))
		return 2
	}
	for _, f := range files {
		if !workflow.Accepts(f) {
			fmt.Fprintf(stderr, "%s: only .txt and .docx files are supported\n", f)
			return 2
		}
	}

	wf := workflow.New(gw, mode)
	for i, f := range files {
		wf.Run(ctx, wf.ExtractFromFile(domain.Slot(i), workflow.OpenFile(f)))
		if msg := wf.Snapshot().Error; msg != "" {
			fmt.Fprintf(stderr, "%s: %s\n", f, msg)
			return 1
		}
	}

	wf.Run(ctx, wf.PrimaryAction())
	st := wf.Snapshot()
	if st.Error != "" {
		fmt.Fprintln(stderr, st.Error)
		return 1
	}
	printView(stdout, render.Project(st.Mode, st.Result))
	return 0
}

func printView(w io.Writer, v render.View) {
	switch v.Kind {
	case render.KindCompare:
		fmt.Fprintf(w, "%s: %s (%s)\n", v.Title, render.Percent(v.Score), v.Band)
	case render.KindCheck:
		fmt.Fprintf(w, "%s: %s (%s)\n", v.Title, render.Percent(v.Score), v.Band)
		fmt.Fprintf(w, "(%s)\n", v.Note)
		if len(v.Rows) == 0 {
			fmt.Fprintf(w, "No documents above %.0f%% similarity.\n", render.DisplayThreshold)
			return
		}
		t := table.New().
			Border(lipgloss.NormalBorder()).
			StyleFunc(func(row, col int) lipgloss.Style { return cellStyle }).
			Headers("Document", "Similarity", "Preview")
		for _, r := range v.Rows {
			t.Row(r.DocumentName, render.Percent(r.Similarity), r.Preview)
		}
		fmt.Fprintln(w, t.Render())
		if v.Hidden > 0 {
			fmt.Fprintf(w, "%d low-similarity document(s) hidden\n", v.Hidden)
		}
	}
}

var cellStyle = lipgloss.NewStyle().Padding(0, 1)
