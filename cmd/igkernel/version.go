package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/igkernel"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of igkernel",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("igkernel version %s\n", strings.TrimSpace(igkernel.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
