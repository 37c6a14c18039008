package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/ticketbot/internal/bot"
	"github.com/alfredjeanlab/ticketbot/internal/config"
	"github.com/alfredjeanlab/ticketbot/internal/events"
	"github.com/alfredjeanlab/ticketbot/internal/server"
	"github.com/alfredjeanlab/ticketbot/internal/store/postgres"
	ticketsync "github.com/alfredjeanlab/ticketbot/internal/sync"
)

const gatewayIntents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent

var runCmd = &cobra.Command{
	Use:               "run",
	Short:             "Connect to Discord and serve tickets",
	GroupID:           "system",
	PersistentPreRunE: noClient,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		store, err := postgres.New(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.Error("error closing store", "err", err)
			}
		}()

		var publisher events.Publisher
		if cfg.NATSURL != "" {
			pub, err := events.NewNATSPublisher(cfg.NATSURL)
			if err != nil {
				return err
			}
			publisher = pub
			logger.Info("events enabled", "nats_url", cfg.NATSURL)
		} else {
			publisher = &events.NoopPublisher{}
			logger.Info("events disabled (TICKETBOT_NATS_URL not set)")
		}
		defer func() {
			if err := publisher.Close(); err != nil {
				logger.Error("error closing publisher", "err", err)
			}
		}()

		session, err := discordgo.New("Bot " + cfg.DiscordToken)
		if err != nil {
			return fmt.Errorf("create discord session: %w", err)
		}
		session.Identify.Intents = gatewayIntents

		grpcServer, health := server.NewGRPCServer(cfg.AuthToken)

		ticketBot := bot.New(session, store, bot.Options{
			GuildID:      cfg.GuildID,
			CategoryID:   cfg.CategoryID,
			OwnerID:      cfg.OwnerID,
			Restricted:   bot.NewRestrictedSet(cfg.RestrictedIDs),
			CloseDelay:   cfg.CloseDelay,
			ThumbnailURL: cfg.ThumbnailURL,
			Publisher:    publisher,
			Logger:       logger,
			OnReady:      func() { server.SetServing(health, true) },
		})
		ticketBot.Register(session)

		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			return err
		}
		go func() {
			logger.Info("gRPC server listening", "addr", cfg.GRPCAddr)
			if err := grpcServer.Serve(lis); err != nil {
				logger.Error("gRPC server error", "err", err)
			}
		}()

		ops := server.NewOpsServer(store, ticketBot.Ready, logger)
		httpServer := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           ops.NewHTTPHandler(cfg.AuthToken),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("HTTP server error", "err", err)
			}
		}()

		scheduler := startSync(cfg, store, logger)

		if err := session.Open(); err != nil {
			grpcServer.Stop()
			_ = httpServer.Close()
			if scheduler != nil {
				scheduler.Stop()
			}
			return fmt.Errorf("open discord gateway: %w", err)
		}
		logger.Info("ticket bot started",
			"guild", cfg.GuildID,
			"restricted", len(cfg.RestrictedIDs),
			"close_delay", cfg.CloseDelay,
		)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)

		server.SetServing(health, false)
		if err := session.Close(); err != nil {
			logger.Error("error closing discord session", "err", err)
		}
		ticketBot.Close()
		logger.Info("bot stopped")

		if scheduler != nil {
			scheduler.Stop()
			logger.Info("sync scheduler stopped")
		}

		grpcServer.GracefulStop()
		logger.Info("gRPC server stopped")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "err", err)
		}
		logger.Info("HTTP server stopped")

		logger.Info("shutdown complete")
		return nil
	},
}

// startSync starts the archive scheduler when an interval and at least one
// destination are configured.
func startSync(cfg *config.Config, tickets ticketsync.TicketLister, logger *slog.Logger) *ticketsync.Scheduler {
	if cfg.SyncInterval <= 0 {
		return nil
	}

	var dests []ticketsync.Destination
	if cfg.SyncS3Bucket != "" {
		s3Dest, err := ticketsync.NewS3Destination(context.Background(),
			cfg.SyncS3Bucket, cfg.SyncS3Key, cfg.SyncS3Region, cfg.SyncS3Endpoint)
		if err != nil {
			logger.Error("failed to create S3 sync destination", "err", err)
		} else {
			dests = append(dests, s3Dest)
		}
	}
	if cfg.SyncGitRepo != "" {
		dests = append(dests, ticketsync.NewGitDestination(cfg.SyncGitRepo, cfg.SyncGitFile, cfg.SyncGitBranch))
	}
	if len(dests) == 0 {
		logger.Warn("sync interval set but no destinations configured")
		return nil
	}

	for _, d := range dests {
		logger.Info("sync destination enabled", "destination", d.String())
	}
	scheduler := ticketsync.NewScheduler(tickets, dests, cfg.SyncInterval, logger)
	scheduler.Start()
	logger.Info("sync scheduler started", "interval", cfg.SyncInterval)
	return scheduler
}
