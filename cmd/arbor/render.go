package main

import (
	"fmt"
	"os"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the tree once and print the markup",
	Long:  `Builds the tree from its definition, runs one render pass and prints the resulting markup to stdout. Useful for template debugging and golden files.`,
	Run: func(cmd *cobra.Command, args []string) {
		widgetID, _ := cmd.Flags().GetString("widget")
		view, _ := cmd.Flags().GetString("view")

		a, err := newApp(cmd, false)
		if err != nil {
			fmt.Printf("Error initializing arbor: %v\n", err)
			os.Exit(1)
		}
		defer a.close()

		root, err := a.def.Seed(a.engine.Kinds())()
		if err != nil {
			fmt.Printf("Error building tree: %v\n", err)
			os.Exit(1)
		}

		target := root
		if widgetID != "" {
			target = root.Find(widgetID)
			if target == nil {
				fmt.Printf("Widget not found: %s\n", widgetID)
				os.Exit(1)
			}
		}

		update, err := a.engine.Render(cmd.Context(), target, domain.RenderOptions{View: view})
		if err != nil {
			fmt.Printf("Render error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(update.Content.Body)
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().String("widget", "", "Render a specific widget instead of the root")
	renderCmd.Flags().String("view", "", "Override the view name")
}
