package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/ticketbot/internal/client"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List tickets",
	GroupID: "tickets",
	RunE: func(cmd *cobra.Command, args []string) error {
		req := &client.ListTicketsRequest{}
		if cmd.Flags().Changed("pending") {
			pending, _ := cmd.Flags().GetBool("pending")
			req.Pending = &pending
		}
		req.Limit, _ = cmd.Flags().GetInt("limit")

		resp, err := ticketsClient.ListTickets(context.Background(), req)
		if err != nil {
			return fmt.Errorf("listing tickets: %w", err)
		}

		if jsonOutput {
			return printJSON(os.Stdout, resp.Tickets)
		}
		printTicketTable(os.Stdout, resp.Tickets, time.Now())
		return nil
	},
}

func init() {
	listCmd.Flags().Bool("pending", false, "only tickets still waiting for a counterparty (--pending=false for completed)")
	listCmd.Flags().Int("limit", 0, "maximum number of tickets")
}
