// Package main provides the PackZen command line client.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/packzen/packzen-client/internal/di"
)

var (
	cfgFile string
	tripID  string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "packzen",
	Short: "PackZen packing list client",
	Long: `packzen drives a PackZen trip's packing list from the command line:
list and watch items, toggle packed state, move items between bags and
containers, and run batch operations over a selection.

The backend URL and session token come from the config file or the
PACKZEN_SERVER_URL / PACKZEN_SESSION_TOKEN environment variables.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		di.ConfigPath = cfgFile
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $PACKZEN_CONFIG or none)")
	rootCmd.PersistentFlags().StringVarP(&tripID, "trip", "t", "", "trip id to operate on")
	_ = rootCmd.MarkPersistentFlagRequired("trip")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(skipCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(refreshCmd)
}
