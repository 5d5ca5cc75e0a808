package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fwdslash/dynkv/cmd/kv"
)

const (
	Version = "0.3.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "dynkv",
		Short: "chunked dynamic key-value store",
		Long: fmt.Sprintf(`dynkv (v%s)

A JSON-capable key-value store built on a flat, size-constrained
property backend, with transparent chunking of oversized values.`, Version),
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of dynkv",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dynkv v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(kv.KeyValueCommands)
	RootCmd.AddCommand(versionCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
