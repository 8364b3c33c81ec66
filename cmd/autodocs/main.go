package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var configFile string

var rootCmd = &cobra.Command{
	Use:   "autodocs",
	Short: "Comment meaningful code changes as you save them",
	Long: `autodocs diffs every saved file against its last known text, decides whether
the change is worth a comment and, when it is, asks the generation service for one
and places it above the changed code.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "autodocs version %s\n", version)
	},
}

func init() {
	rootCmd.SetVersionTemplate("autodocs version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "autodocs.json", "Path to configuration file")
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
