package main

import (
	"fmt"

	"github.com/aretw0/igkernel/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration file",
	Long:  `Loads the configuration over the defaults and reports every invalid field.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := cli.LoadConfig(cli.RunOptions{ConfigPath: configPath})
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Printf("Configuration is valid: listen %s, host %s\n", cfg.Listen, cfg.Host)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
