package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/ticketbot/internal/store/postgres"
	ticketsync "github.com/alfredjeanlab/ticketbot/internal/sync"
)

var exportCmd = &cobra.Command{
	Use:               "export",
	Short:             "Write all tickets from the database as JSONL",
	GroupID:           "tickets",
	PersistentPreRunE: noClient,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbURL, _ := cmd.Flags().GetString("database-url")
		if dbURL == "" {
			return errors.New("--database-url or TICKETBOT_DATABASE_URL is required")
		}
		outPath, _ := cmd.Flags().GetString("output")

		store, err := postgres.New(dbURL)
		if err != nil {
			return err
		}
		defer store.Close()

		out := os.Stdout
		if outPath != "" && outPath != "-" {
			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("create %s: %w", outPath, err)
			}
			defer f.Close()
			out = f
		}
		return ticketsync.ExportJSONL(context.Background(), store, out)
	},
}

func init() {
	exportCmd.Flags().String("database-url", os.Getenv("TICKETBOT_DATABASE_URL"), "Postgres connection URL")
	exportCmd.Flags().StringP("output", "o", "-", "output file (- for stdout)")
}
