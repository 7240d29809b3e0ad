package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "strider",
	Short: "Strider drives a legged robot through one leased session",
	Long: `Strider acquires the robot lease, powers the motors, stands, runs a move plan
or a camera capture, and hands everything back in reverse order.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging and lifecycle traces on stderr")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Mission file (YAML)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error (default warn)")
}
