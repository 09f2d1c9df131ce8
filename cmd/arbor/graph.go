package main

import (
	"fmt"
	"os"

	"github.com/aretw0/arbor/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the tree or kind visualization",
	Long:  `Outputs a Mermaid diagram (graph TD) of the declared widget tree, or of one kind's state machine when --kind is given.`,
	Run: func(cmd *cobra.Command, args []string) {
		kindName, _ := cmd.Flags().GetString("kind")

		a, err := newApp(cmd, false)
		if err != nil {
			fmt.Printf("Error initializing arbor: %v\n", err)
			os.Exit(1)
		}
		defer a.close()

		if kindName != "" {
			kind, err := a.engine.Kinds().Kind(kindName)
			if err != nil {
				fmt.Printf("Error resolving kind: %v\n", err)
				os.Exit(1)
			}
			fmt.Print(graph.KindMermaid(kind))
			return
		}

		root, err := a.def.Seed(a.engine.Kinds())()
		if err != nil {
			fmt.Printf("Error building tree: %v\n", err)
			os.Exit(1)
		}
		fmt.Print(graph.TreeMermaid(root, nil))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("kind", "", "Graph this kind's state machine instead of the tree")
}
