// Command deskhub runs the reference marketplace backend and performs
// session-aware API calls against a backend.
//
//	deskhub mock-api --demo
//	deskhub call --role vendor --email v@example.com --password ... GET /profile
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type rootFlags struct {
	configFile string
	envFile    string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "deskhub",
		Short:         "Session-aware marketplace API client and reference backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configFile, "config", "", "config file (default: search ./cmd/deskhub, ./config, .)")
	root.PersistentFlags().StringVar(&flags.envFile, "env-file", "", ".env file (default: search like --config)")

	root.AddCommand(
		newMockAPICmd(flags),
		newCallCmd(flags),
		newVersionCmd(),
	)
	return root
}
