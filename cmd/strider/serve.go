package main

import (
	"context"

	"github.com/aretw0/strider/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a simulated robot over the HTTP bridge",
	Long:  `Starts an in-process simulated robot behind the HTTP bridge API, for trying out missions without hardware.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := cli.ServeOptions{Out: cmd.OutOrStdout()}
		opts.Addr, _ = cmd.Flags().GetString("addr")
		opts.User, _ = cmd.Flags().GetString("user")
		opts.Password, _ = cmd.Flags().GetString("password")
		opts.Debug, _ = cmd.Flags().GetBool("debug")
		opts.LogLevel, _ = cmd.Flags().GetString("log-level")

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()
		return cli.Serve(sigCtx, opts)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on")
	serveCmd.Flags().StringP("user", "u", "", "Accepted user name (empty accepts any)")
	serveCmd.Flags().String("password", "", "Accepted password")
}
