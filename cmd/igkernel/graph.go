package main

import (
	"fmt"

	"github.com/aretw0/igkernel/internal/cli"
	"github.com/aretw0/igkernel/internal/presentation/graph"
	"github.com/aretw0/igkernel/internal/runtime"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the state machine visualization",
	Long: `Outputs a Mermaid diagram (graph TD) of the IG state machine.
With --instance, the state published by that IG is highlighted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		instance, _ := cmd.Flags().GetString("instance")

		var overlay *graph.Overlay
		if instance != "" {
			configPath, _ := cmd.Flags().GetString("config")
			status, err := cli.LoadStatus(cmd.Context(), cli.RunOptions{ConfigPath: configPath}, instance)
			if err != nil {
				return err
			}
			overlay = &graph.Overlay{Current: status.State}
		}

		fmt.Print(graph.GenerateMermaid(runtime.Edges(), overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)

	graphCmd.Flags().String("instance", "", "Highlight the current state of this IG instance")
}
