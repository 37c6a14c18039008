package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	DiscordToken  string        // TICKETBOT_DISCORD_TOKEN (required)
	DatabaseURL   string        // TICKETBOT_DATABASE_URL (required)
	GuildID       string        // TICKETBOT_GUILD_ID (required)
	CategoryID    string        // TICKETBOT_CATEGORY_ID (parent of ticket channels)
	OwnerID       string        // TICKETBOT_OWNER_ID (empty = operator commands disabled)
	RestrictedIDs []string      // TICKETBOT_RESTRICTED_IDS (comma-separated)
	CloseDelay    time.Duration // TICKETBOT_CLOSE_DELAY (default 5s)
	ThumbnailURL  string        // TICKETBOT_THUMBNAIL_URL (welcome embed thumbnail)

	NATSURL   string // TICKETBOT_NATS_URL (optional, empty = no events)
	HTTPAddr  string // TICKETBOT_HTTP_ADDR (default ":8080")
	GRPCAddr  string // TICKETBOT_GRPC_ADDR (default ":9090")
	AuthToken string // TICKETBOT_AUTH_TOKEN (optional, empty = auth disabled)

	// Sync settings
	SyncInterval   time.Duration // TICKETBOT_SYNC_INTERVAL (default 0 = disabled)
	SyncS3Bucket   string        // TICKETBOT_SYNC_S3_BUCKET (enables S3 when set)
	SyncS3Endpoint string        // TICKETBOT_SYNC_S3_ENDPOINT (custom endpoint for MinIO)
	SyncS3Region   string        // TICKETBOT_SYNC_S3_REGION (default "us-east-1")
	SyncS3Key      string        // TICKETBOT_SYNC_S3_KEY (default "tickets/backup.jsonl")
	SyncGitRepo    string        // TICKETBOT_SYNC_GIT_REPO (enables git when set; path to clone)
	SyncGitFile    string        // TICKETBOT_SYNC_GIT_FILE (default "tickets.jsonl")
	SyncGitBranch  string        // TICKETBOT_SYNC_GIT_BRANCH (default "main")
}

// fileConfig is the TOML layout of the optional file named by TICKETBOT_CONFIG.
// Environment variables take precedence over values from the file.
type fileConfig struct {
	DiscordToken  string   `toml:"discord_token"`
	DatabaseURL   string   `toml:"database_url"`
	GuildID       string   `toml:"guild_id"`
	CategoryID    string   `toml:"category_id"`
	OwnerID       string   `toml:"owner_id"`
	RestrictedIDs []string `toml:"restricted_ids"`
	CloseDelay    string   `toml:"close_delay"`
	ThumbnailURL  string   `toml:"thumbnail_url"`
	NATSURL       string   `toml:"nats_url"`
	HTTPAddr      string   `toml:"http_addr"`
	GRPCAddr      string   `toml:"grpc_addr"`
	AuthToken     string   `toml:"auth_token"`

	Sync struct {
		Interval   string `toml:"interval"`
		S3Bucket   string `toml:"s3_bucket"`
		S3Endpoint string `toml:"s3_endpoint"`
		S3Region   string `toml:"s3_region"`
		S3Key      string `toml:"s3_key"`
		GitRepo    string `toml:"git_repo"`
		GitFile    string `toml:"git_file"`
		GitBranch  string `toml:"git_branch"`
	} `toml:"sync"`
}

func Load() (*Config, error) {
	var fc fileConfig
	if path := os.Getenv("TICKETBOT_CONFIG"); path != "" {
		if _, err := toml.DecodeFile(path, &fc); err != nil {
			return nil, fmt.Errorf("TICKETBOT_CONFIG: %w", err)
		}
	}

	c := &Config{
		DiscordToken:   envOrDefault("TICKETBOT_DISCORD_TOKEN", fc.DiscordToken),
		DatabaseURL:    envOrDefault("TICKETBOT_DATABASE_URL", fc.DatabaseURL),
		GuildID:        envOrDefault("TICKETBOT_GUILD_ID", fc.GuildID),
		CategoryID:     envOrDefault("TICKETBOT_CATEGORY_ID", fc.CategoryID),
		OwnerID:        envOrDefault("TICKETBOT_OWNER_ID", fc.OwnerID),
		ThumbnailURL:   envOrDefault("TICKETBOT_THUMBNAIL_URL", fc.ThumbnailURL),
		NATSURL:        envOrDefault("TICKETBOT_NATS_URL", fc.NATSURL),
		HTTPAddr:       envOrDefault("TICKETBOT_HTTP_ADDR", orDefault(fc.HTTPAddr, ":8080")),
		GRPCAddr:       envOrDefault("TICKETBOT_GRPC_ADDR", orDefault(fc.GRPCAddr, ":9090")),
		AuthToken:      envOrDefault("TICKETBOT_AUTH_TOKEN", fc.AuthToken),
		SyncS3Bucket:   envOrDefault("TICKETBOT_SYNC_S3_BUCKET", fc.Sync.S3Bucket),
		SyncS3Endpoint: envOrDefault("TICKETBOT_SYNC_S3_ENDPOINT", fc.Sync.S3Endpoint),
		SyncS3Region:   envOrDefault("TICKETBOT_SYNC_S3_REGION", orDefault(fc.Sync.S3Region, "us-east-1")),
		SyncS3Key:      envOrDefault("TICKETBOT_SYNC_S3_KEY", orDefault(fc.Sync.S3Key, "tickets/backup.jsonl")),
		SyncGitRepo:    envOrDefault("TICKETBOT_SYNC_GIT_REPO", fc.Sync.GitRepo),
		SyncGitFile:    envOrDefault("TICKETBOT_SYNC_GIT_FILE", orDefault(fc.Sync.GitFile, "tickets.jsonl")),
		SyncGitBranch:  envOrDefault("TICKETBOT_SYNC_GIT_BRANCH", orDefault(fc.Sync.GitBranch, "main")),
	}

	if v := os.Getenv("TICKETBOT_RESTRICTED_IDS"); v != "" {
		c.RestrictedIDs = SplitIDs(v)
	} else {
		c.RestrictedIDs = SplitIDs(strings.Join(fc.RestrictedIDs, ","))
	}

	for _, req := range []struct{ name, val string }{
		{"TICKETBOT_DISCORD_TOKEN", c.DiscordToken},
		{"TICKETBOT_DATABASE_URL", c.DatabaseURL},
		{"TICKETBOT_GUILD_ID", c.GuildID},
	} {
		if req.val == "" {
			return nil, fmt.Errorf("%s is required", req.name)
		}
	}

	var err error
	if c.CloseDelay, err = parseDuration("TICKETBOT_CLOSE_DELAY", orDefault(fc.CloseDelay, "5s")); err != nil {
		return nil, err
	}
	if c.SyncInterval, err = parseDuration("TICKETBOT_SYNC_INTERVAL", orDefault(fc.Sync.Interval, "0")); err != nil {
		return nil, err
	}

	return c, nil
}

// SplitIDs parses a comma-separated ID list, trimming blanks and dropping empties.
func SplitIDs(s string) []string {
	var ids []string
	for _, part := range strings.Split(s, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: must not be negative", key)
	}
	return d, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func orDefault(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
