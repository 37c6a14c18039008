package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/ticketbot/internal/client"
)

var healthCmd = &cobra.Command{
	Use:     "health",
	Short:   "Check whether the bot is connected",
	GroupID: "system",
	RunE: func(cmd *cobra.Command, args []string) error {
		grpcAddr, _ := cmd.Flags().GetString("grpc-addr")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		status, err := ticketsClient.Health(ctx)
		if err != nil {
			return fmt.Errorf("checking health: %w", err)
		}
		out := map[string]string{"http": status}

		if grpcAddr != "" {
			hc, err := client.NewHealthClient(grpcAddr)
			if err != nil {
				return err
			}
			defer hc.Close()
			grpcStatus, err := hc.Check(ctx)
			if err != nil {
				return err
			}
			out["grpc"] = grpcStatus
		}

		if jsonOutput {
			if err := printJSON(os.Stdout, out); err != nil {
				return err
			}
		} else {
			fmt.Printf("Health: %s\n", status)
			if g, ok := out["grpc"]; ok {
				fmt.Printf("gRPC:   %s\n", g)
			}
		}

		if status != "ok" {
			return fmt.Errorf("unhealthy: %s", status)
		}
		return nil
	},
}

func init() {
	healthCmd.Flags().String("grpc-addr", "", "also query the gRPC health service at this address")
}
