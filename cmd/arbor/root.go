package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "arbor",
	Short: "Arbor is a server-side widget tree engine",
	Long:  `Arbor composes stateful widgets into trees defined in YAML, renders them through HTML templates, and serves the resulting page updates over HTTP or MCP.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("tree", "arbor.yaml", "Tree definition file")
	rootCmd.PersistentFlags().String("views", "views", "Directory containing view templates")
}
