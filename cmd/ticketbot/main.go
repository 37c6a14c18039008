package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/ticketbot/internal/client"
	"github.com/alfredjeanlab/ticketbot/internal/ui"
)

var (
	httpURL    string
	authToken  string
	jsonOutput bool
	noColor    bool

	ticketsClient client.TicketsClient
)

func defaultHTTPURL() string {
	if s := os.Getenv("TICKETBOT_HTTP_URL"); s != "" {
		return s
	}
	return "http://localhost:8080"
}

var rootCmd = &cobra.Command{
	Use:           "ticketbot <command>",
	Short:         "Escrow ticket bot for Discord",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		ui.SetColor(!noColor && ui.ShouldUseColor(os.Stdout))
		ticketsClient = client.NewHTTPClient(httpURL, authToken)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if ticketsClient != nil {
			ticketsClient.Close()
		}
	},
}

// noClient is used by commands that work without the ops API.
func noClient(cmd *cobra.Command, args []string) error {
	ui.SetColor(!noColor && ui.ShouldUseColor(os.Stdout))
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&httpURL, "http-url", defaultHTTPURL(), "ops HTTP API URL")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", os.Getenv("TICKETBOT_AUTH_TOKEN"), "bearer token for the ops API")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable coloured output")

	rootCmd.AddGroup(
		&cobra.Group{ID: "tickets", Title: "Tickets:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)
	cobra.EnableCommandSorting = false

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(exportCmd)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(healthCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
