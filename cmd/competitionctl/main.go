package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	host string
)

var rootCmd = &cobra.Command{
	Use:   "competitionctl",
	Short: "Operator tool for the competition engine",
	Long: `competitionctl applies database migrations, previews bracket layouts
offline, issues operator tokens and reads standings and brackets from a
running competition engine.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&host, "host", "http://localhost:8080", "The host address of the server")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "competitionctl: %s\n", err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
