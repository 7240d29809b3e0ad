package main

import (
	"context"

	"github.com/aretw0/strider/internal/cli"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one mission against a robot",
	Long: `Connects to the robot, runs the configured behavior under a lease and prints
a session report. Flags override the mission file. The password is read from
STRIDER_PASSWORD or prompted for.`,
	Example: `  strider run --simulate --behavior capture --camera all
  strider run --bridge http://10.0.0.2:8080 --user operator --behavior move
  strider run -c mission.yaml --redis redis://localhost:6379/0 --metrics-addr :9090`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		opts := cli.RunOptions{Out: cmd.OutOrStdout()}
		opts.ConfigPath, _ = flags.GetString("config")
		opts.Debug, _ = flags.GetBool("debug")
		opts.LogLevel, _ = flags.GetString("log-level")
		opts.Host, _ = flags.GetString("host")
		opts.Bridge, _ = flags.GetString("bridge")
		opts.User, _ = flags.GetString("user")
		opts.Simulate, _ = flags.GetBool("simulate")
		opts.Behavior, _ = flags.GetString("behavior")
		opts.Source, _ = flags.GetString("source")
		opts.Cameras, _ = flags.GetStringSlice("camera")
		opts.Output, _ = flags.GetString("output")
		opts.Redis, _ = flags.GetString("redis")
		opts.MetricsAddr, _ = flags.GetString("metrics-addr")
		opts.ReportPath, _ = flags.GetString("report")
		opts.Quiet, _ = flags.GetBool("quiet")

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		_, err := cli.Run(sigCtx, opts)
		return err
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	f := runCmd.Flags()
	f.String("host", "", "Robot host name or address")
	f.String("bridge", "", "URL of the HTTP robot bridge")
	f.StringP("user", "u", "", "Robot user name")
	f.Bool("simulate", false, "Use the built-in simulated robot")
	f.StringP("behavior", "b", "", "Behavior to run: move, capture or noop")
	f.String("source", "", "Camera source for a single capture, e.g. back_fisheye_image")
	f.StringSlice("camera", nil, "Camera position to blend-capture (repeatable, or 'all')")
	f.StringP("output", "o", "", "Directory for captured images")
	f.String("redis", "", "Redis URL for cross-process lease arbitration")
	f.String("metrics-addr", "", "Address to serve Prometheus metrics on")
	f.String("report", "", "Write a markdown session report to this path")
	f.BoolP("quiet", "q", false, "Only print errors")
}
