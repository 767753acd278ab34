package cmd

import (
	"fmt"
	"os"

	"devconnector/config"

	"github.com/spf13/cobra"
)

// RootCmd runs the API server when called without a subcommand.
var RootCmd = &cobra.Command{
	Use:           "devconnector [command] [flags]",
	Short:         "devconnector: posts and users API",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          serve,
}

var useMemory bool

func init() {
	RootCmd.Flags().BoolVar(&useMemory, "memory", false, "keep data in process memory instead of MongoDB")
}

// Execute is called by main.main.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() config.Config {
	return config.LoadConfig()
}
