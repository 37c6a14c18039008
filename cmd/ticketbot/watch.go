package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/ticketbot/internal/client"
	"github.com/alfredjeanlab/ticketbot/internal/events"
	"github.com/alfredjeanlab/ticketbot/internal/model"
	"github.com/alfredjeanlab/ticketbot/internal/ui"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Short:   "Follow ticket changes as they happen",
	GroupID: "tickets",
	RunE: func(cmd *cobra.Command, args []string) error {
		interval, _ := cmd.Flags().GetDuration("interval")
		natsURL, _ := cmd.Flags().GetString("nats-url")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if natsURL != "" {
			return watchNATS(ctx, natsURL)
		}

		req := &client.ListTicketsRequest{}
		seen := make(map[string]time.Time)
		if err := pollAndPrint(ctx, req, seen); err != nil {
			return err
		}
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(interval):
			}
			if err := pollAndPrint(ctx, req, seen); err != nil {
				return err
			}
		}
	},
}

// watchNATS prints every ticket event from the bus until ctx is done.
func watchNATS(ctx context.Context, natsURL string) error {
	sub, err := events.NewNATSSubscriber(natsURL,
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats: disconnected", "err", err)
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			slog.Info("nats: reconnected")
		}),
	)
	if err != nil {
		return err
	}
	defer sub.Close()

	ch, cancel, err := sub.Subscribe(events.TopicAll)
	if err != nil {
		return err
	}
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			printEvent(msg)
		}
	}
}

func printEvent(msg events.Message) {
	if jsonOutput {
		fmt.Printf("{\"topic\":%q,\"data\":%s}\n", msg.Topic, msg.Data)
		return
	}
	fmt.Printf("%s %s %s\n",
		ui.RenderMuted(time.Now().Format(timeLayout)),
		ui.RenderAccent(msg.Topic),
		msg.Data,
	)
}

// pollAndPrint lists tickets and prints those that are new or changed.
func pollAndPrint(ctx context.Context, req *client.ListTicketsRequest, seen map[string]time.Time) error {
	resp, err := ticketsClient.ListTickets(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("listing tickets: %w", err)
	}
	changed := diffTickets(resp.Tickets, seen)
	if len(changed) == 0 {
		return nil
	}
	if jsonOutput {
		return printJSON(os.Stdout, changed)
	}
	printTicketTable(os.Stdout, changed, time.Now())
	return nil
}

// diffTickets returns tickets that are new or carry a different updated_at
// than last seen. It updates seen in place.
func diffTickets(tickets []*model.Ticket, seen map[string]time.Time) []*model.Ticket {
	var changed []*model.Ticket
	for _, t := range tickets {
		prev, ok := seen[t.ID]
		if !ok || !t.UpdatedAt.Equal(prev) {
			changed = append(changed, t)
		}
		seen[t.ID] = t.UpdatedAt
	}
	return changed
}

func init() {
	watchCmd.Flags().Duration("interval", 5*time.Second, "polling interval when no NATS URL is set")
	watchCmd.Flags().String("nats-url", os.Getenv("TICKETBOT_NATS_URL"), "subscribe to ticket events on this NATS server instead of polling")
}
