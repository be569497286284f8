package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	host  string
	token string
)

var rootCmd = &cobra.Command{
	Use:   "tournament-cli",
	Short: "A CLI to interact with the tournament server",
	Long: `A command-line interface for driving the tournament lifecycle
endpoints: enrollment, session generation, results and rewards.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&host, "host", "http://localhost:8080", "The host address of the server")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "Bearer token for authenticated endpoints")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "There was an error while executing your command: %s\n", err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
