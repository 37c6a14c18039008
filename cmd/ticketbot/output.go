package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/alfredjeanlab/ticketbot/internal/model"
	"github.com/alfredjeanlab/ticketbot/internal/ui"
)

const timeLayout = "2006-01-02 15:04:05"

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// warningNames lists the warnings a ticket has received, in a stable order.
func warningNames(ws model.Warnings) string {
	var names []string
	for _, w := range []model.Warning{model.WarnSelf, model.WarnRestricted, model.WarnInvalid} {
		if ws.Has(w) {
			names = append(names, w.String())
		}
	}
	return strings.Join(names, ",")
}

func printTicket(w io.Writer, t *model.Ticket) {
	fmt.Fprintf(w, "ID:           %s\n", ui.RenderAccent(t.ID))
	fmt.Fprintf(w, "State:        %s\n", ui.RenderState(t.UserAddPending))
	fmt.Fprintf(w, "Currency:     %s (%s)\n", t.Currency.Label(), t.Currency)
	fmt.Fprintf(w, "Requester:    %s\n", t.RequesterID)
	if t.CounterpartyID != "" {
		fmt.Fprintf(w, "Counterparty: %s\n", t.CounterpartyID)
	}
	fmt.Fprintf(w, "Channel:      %s\n", t.ChannelID)
	if names := warningNames(t.Warned); names != "" {
		fmt.Fprintf(w, "Warnings:     %s\n", ui.RenderWarn(names))
	}
	if !t.CreatedAt.IsZero() {
		fmt.Fprintf(w, "Created At:   %s\n", ui.RenderMuted(t.CreatedAt.Local().Format(timeLayout)))
	}
	if !t.UpdatedAt.IsZero() {
		fmt.Fprintf(w, "Updated At:   %s\n", ui.RenderMuted(t.UpdatedAt.Local().Format(timeLayout)))
	}
}

func printTicketTable(w io.Writer, tickets []*model.Ticket, now time.Time) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATE\tCURRENCY\tREQUESTER\tCOUNTERPARTY\tCHANNEL\tAGE")
	for _, t := range tickets {
		counterparty := t.CounterpartyID
		if counterparty == "" {
			counterparty = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID,
			ui.RenderState(t.UserAddPending),
			t.Currency,
			t.RequesterID,
			counterparty,
			t.ChannelID,
			age(now, t.CreatedAt),
		)
	}
	tw.Flush()
	fmt.Fprintf(w, "\n%d tickets\n", len(tickets))
}

// age renders the time since ts coarsely, e.g. "3h" or "2d".
func age(now, ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	d := now.Sub(ts)
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}
