package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/ticketbot/internal/client"
	"github.com/alfredjeanlab/ticketbot/internal/model"
)

var showCmd = &cobra.Command{
	Use:     "show <id>",
	Short:   "Show a ticket by ID, or by channel with --channel",
	GroupID: "tickets",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		byChannel, _ := cmd.Flags().GetBool("channel")

		var (
			t   *model.Ticket
			err error
		)
		if byChannel {
			t, err = ticketsClient.GetTicketByChannel(context.Background(), args[0])
		} else {
			t, err = ticketsClient.GetTicket(context.Background(), args[0])
		}
		if client.IsNotFound(err) {
			return fmt.Errorf("no ticket %s", args[0])
		}
		if err != nil {
			return fmt.Errorf("getting ticket: %w", err)
		}

		if jsonOutput {
			return printJSON(os.Stdout, t)
		}
		printTicket(os.Stdout, t)
		return nil
	},
}

func init() {
	showCmd.Flags().Bool("channel", false, "treat the argument as a Discord channel ID")
}
