package main

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(participantsCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(rankingCmd)
	rootCmd.AddCommand(openEnrollmentCmd)
	rootCmd.AddCommand(closeEnrollmentCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(finalizeCmd)
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(rewardsCmd)
	rootCmd.AddCommand(metricsCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/healthz")
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tournaments",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/tournaments")
	},
}

var getCmd = &cobra.Command{
	Use:   "get [tournamentID]",
	Short: "Show one tournament with roster, sessions and ranking",
	Args:  requireTournamentID,
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/tournaments/"+args[0])
	},
}

var participantsCmd = &cobra.Command{
	Use:   "participants [tournamentID]",
	Short: "List the enrolled participants of a tournament",
	Args:  requireTournamentID,
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/tournaments/"+args[0]+"/participants")
	},
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions [tournamentID]",
	Short: "List the sessions of a tournament",
	Args:  requireTournamentID,
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/tournaments/"+args[0]+"/sessions")
	},
}

var rankingCmd = &cobra.Command{
	Use:   "ranking [tournamentID]",
	Short: "Show the current ranking of a tournament",
	Args:  requireTournamentID,
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/tournaments/"+args[0]+"/ranking")
	},
}

var openEnrollmentCmd = &cobra.Command{
	Use:   "open-enrollment [tournamentID]",
	Short: "Open enrollment for a tournament (organizer token required)",
	Args:  requireTournamentID,
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/tournaments/"+args[0]+"/enrollment")
	},
}

var closeEnrollmentCmd = &cobra.Command{
	Use:   "close-enrollment [tournamentID]",
	Short: "Freeze the roster of a tournament (organizer token required)",
	Args:  requireTournamentID,
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodDelete, "/tournaments/"+args[0]+"/enrollment")
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate [tournamentID]",
	Short: "Generate sessions for a tournament (organizer token required)",
	Args:  requireTournamentID,
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/tournaments/"+args[0]+"/sessions")
	},
}

var finalizeCmd = &cobra.Command{
	Use:   "finalize [tournamentID]",
	Short: "Finalize the group stage of a hybrid tournament (organizer token required)",
	Args:  requireTournamentID,
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/tournaments/"+args[0]+"/group-stage/finalize")
	},
}

var completeCmd = &cobra.Command{
	Use:   "complete [tournamentID]",
	Short: "Complete a tournament and compute the final ranking (organizer token required)",
	Args:  requireTournamentID,
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/tournaments/"+args[0]+"/complete")
	},
}

var rewardsCmd = &cobra.Command{
	Use:   "rewards [tournamentID]",
	Short: "Distribute rewards for a completed tournament (organizer token required)",
	Args:  requireTournamentID,
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/tournaments/"+args[0]+"/rewards")
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/metrics")
	},
}

func requireTournamentID(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected exactly one argument: the tournament ID")
	}
	if id, err := strconv.Atoi(args[0]); err != nil || id <= 0 {
		return fmt.Errorf("tournament ID must be a positive integer, got %q", args[0])
	}
	return nil
}

func performRequest(method, endpoint string) error {
	url := host + endpoint
	fmt.Printf("Making %s request to %s\n", method, url)

	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}
