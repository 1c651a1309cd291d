package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sampad",
	Short: "Sampad event registration service",
	Long: `Sampad accepts event registrations over HTTP, enforces unique national codes
and phone numbers, and answers with the payment details for the participant's fee tier.

Configuration is read from the environment (HTTP_ADDR, STORAGE_BACKEND, DATABASE_URL, ...).
Running without a subcommand starts the server.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
