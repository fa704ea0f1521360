package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "igkernel",
	Short: "igkernel is a CIGI Image Generator kernel",
	Long: `igkernel runs the frame loop of a CIGI 3.3 Image Generator: it answers the Host
with Start-Of-Frame, follows IG Control mode changes and drives plugins once per frame.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the YAML configuration file")
}
