package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/presentation/tui"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show the kinds and tree of a definition",
	Long:  `Prints a report of the registered widget kinds (states, transitions, event routes) and the declared tree structure.`,
	Run: func(cmd *cobra.Command, args []string) {
		a, err := newApp(cmd, false)
		if err != nil {
			fmt.Printf("Error initializing arbor: %v\n", err)
			os.Exit(1)
		}
		defer a.close()

		tui.PrintBanner(arbor.Version)

		report := buildReport(a)

		render := tui.NewRenderer()
		if out, err := render(report); err == nil {
			fmt.Print(out)
		} else {
			fmt.Print(report)
		}
	},
}

func buildReport(a *app) string {
	var b strings.Builder

	b.WriteString("# Kinds\n\n")
	for _, name := range a.engine.Kinds().Names() {
		kind, err := a.engine.Kinds().Kind(name)
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "## %s\n\n", name)
		fmt.Fprintf(&b, "- start: `%s`\n", strings.Join(kind.StartStates(), " → "))
		fmt.Fprintf(&b, "- states: `%s`\n", strings.Join(kind.States(), "`, `"))
		for _, state := range kind.States() {
			if next, ok := kind.Next(state); ok {
				fmt.Fprintf(&b, "- transition: `%s` → `%s`\n", state, next)
			}
		}
		events := kind.Events()
		types := make([]string, 0, len(events))
		for evt := range events {
			types = append(types, evt)
		}
		sort.Strings(types)
		for _, evt := range types {
			fmt.Fprintf(&b, "- event: `%s` → `%s`\n", evt, events[evt])
		}
		b.WriteString("\n")
	}

	if a.def.Tree != nil {
		b.WriteString("# Tree\n\n")
		root, err := a.def.Seed(a.engine.Kinds())()
		if err != nil {
			fmt.Fprintf(&b, "tree definition error: %v\n", err)
		} else {
			writeTree(&b, root, 0)
		}
	}
	return b.String()
}

func writeTree(b *strings.Builder, w *domain.Widget, depth int) {
	marker := ""
	if !w.IsVisible() {
		marker = " _(hidden)_"
	}
	fmt.Fprintf(b, "%s- **%s** (%s)%s\n", strings.Repeat("  ", depth), w.ID, w.Kind.Name(), marker)
	for _, c := range w.Children() {
		writeTree(b, c, depth+1)
	}
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
