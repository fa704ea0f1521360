package main

import (
	"github.com/aretw0/igkernel/internal/cli"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the Image Generator",
	Long:  `Opens the CIGI sockets and runs frames until the Host session ends with SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		hostAddr, _ := cmd.Flags().GetString("host")
		hostPort, _ := cmd.Flags().GetInt("host-port")
		listenAddr, _ := cmd.Flags().GetString("listen")
		listenPort, _ := cmd.Flags().GetInt("listen-port")
		frameRate, _ := cmd.Flags().GetFloat64("frame-rate")
		policy, _ := cmd.Flags().GetString("policy")
		logLevel, _ := cmd.Flags().GetString("log-level")
		metricsAddr, _ := cmd.Flags().GetString("metrics")
		noBanner, _ := cmd.Flags().GetBool("no-banner")

		return cli.Execute(cmd.Context(), cli.RunOptions{
			ConfigPath:    configPath,
			HostAddress:   hostAddr,
			HostPort:      hostPort,
			ListenAddress: listenAddr,
			ListenPort:    listenPort,
			FrameRate:     frameRate,
			Policy:        policy,
			LogLevel:      logLevel,
			MetricsAddr:   metricsAddr,
			NoBanner:      noBanner,
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("host", "", "Host address Start-Of-Frame is sent to")
	runCmd.Flags().Int("host-port", 0, "Host UDP port")
	runCmd.Flags().String("listen", "", "Local address to receive Host messages on")
	runCmd.Flags().Int("listen-port", 0, "Local UDP port")
	runCmd.Flags().Float64("frame-rate", 0, "Target frame rate in Hz")
	runCmd.Flags().String("policy", "", "Message processing policy (all, one_per_frame)")
	runCmd.Flags().String("log-level", "", "Log level (debug, info, warn, error)")
	runCmd.Flags().String("metrics", "", "Address for the /metrics and /healthz endpoint")
	runCmd.Flags().Bool("no-banner", false, "Do not print the startup banner")

	rootCmd.RunE = runCmd.RunE
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
}
