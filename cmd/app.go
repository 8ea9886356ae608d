package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jfmyers9/crates/internal/config"
	"github.com/jfmyers9/crates/internal/output"
	"github.com/jfmyers9/crates/internal/store"
	"github.com/jfmyers9/crates/pkg/discogs"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// lowRemaining is the number of remaining calls below which a warning is logged.
const lowRemaining = 5

// app holds what a command needs to talk to Discogs and print results.
type app struct {
	cfg        *config.Config
	logger     zerolog.Logger
	client     *discogs.Client
	requestLog *store.RequestLog // nil when disabled or unavailable
	format     output.Format
	out        io.Writer
	ctx        context.Context
	cancel     context.CancelFunc
}

// newApp loads configuration and builds the client. Callers must Close it.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logLevel := cfg.LogLevel
	if logLevelFlag != "" {
		logLevel = logLevelFlag
	}
	logger := setupLogger(logFileFlag, logLevel)

	formatName := cfg.Output
	if outputFlag != "" {
		formatName = outputFlag
	}
	format, err := output.ParseFormat(formatName)
	if err != nil {
		return nil, err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	a := &app{
		cfg:    cfg,
		logger: logger,
		format: format,
		out:    cmd.OutOrStdout(),
		ctx:    ctx,
		cancel: cancel,
	}

	if cfg.RequestLog.Enabled {
		a.requestLog = openRequestLog(cfg, logger)
	}

	if err := a.connect(cfg.ClientConfig()); err != nil {
		a.Close()
		return nil, err
	}

	return a, nil
}

// connect (re)builds the client from a client configuration, adding the
// logger and response hook.
func (a *app) connect(clientCfg discogs.Config) error {
	clientCfg.Logger = newDiscogsLogger(a.logger.With().Str("component", "discogs").Logger())
	clientCfg.OnResponse = a.onResponse

	client, err := discogs.NewClient(clientCfg)
	if err != nil {
		return fmt.Errorf("failed to create discogs client: %w", err)
	}
	a.client = client
	return nil
}

// onResponse logs and records every attempt that reached the server.
func (a *app) onResponse(info discogs.ResponseInfo) {
	event := a.logger.Debug()
	if info.StatusCode == 429 {
		event = a.logger.Warn()
	}
	event = event.
		Str("method", info.Method).
		Str("url", info.URL).
		Int("status", info.StatusCode).
		Int("attempt", info.Attempt).
		Dur("duration", info.Duration)
	if rl := info.RateLimit; rl != nil {
		event = event.Int("ratelimit_remaining", rl.Remaining).Int("ratelimit_limit", rl.Limit)
	}
	event.Msg("Discogs response")

	if rl := info.RateLimit; rl != nil && rl.Remaining < lowRemaining {
		a.logger.Warn().
			Int("remaining", rl.Remaining).
			Int("limit", rl.Limit).
			Msg("Discogs rate limit nearly used up")
	}

	if a.requestLog == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := a.requestLog.Record(ctx, store.EntryFromResponse(info, time.Now())); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to record request")
	}
}

// write renders a result in the selected output format.
func (a *app) write(r output.Result) error {
	return output.Write(a.out, a.format, r)
}

// Close removes expired request log entries and releases resources.
func (a *app) Close() {
	if a.requestLog != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		deleted, err := a.requestLog.Cleanup(ctx, a.cfg.RequestLog.Retention)
		cancel()
		if err != nil {
			a.logger.Warn().Err(err).Msg("Failed to clean up request log")
		} else if deleted > 0 {
			a.logger.Debug().Int64("deleted", deleted).Msg("Cleaned up request log")
		}
		_ = a.requestLog.Close()
	}
	a.cancel()
}

// username returns the explicit username, the configured one, or the
// authenticated user's.
func (a *app) username(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if a.cfg.Discogs.Username != "" {
		return a.cfg.Discogs.Username, nil
	}
	identity, _, err := a.client.User().GetIdentity(a.ctx)
	if err != nil {
		return "", fmt.Errorf("failed to determine username (pass one or run 'crates auth'): %w", err)
	}
	return identity.Username, nil
}

// dataDir resolves the data directory from the flag, the config, or the default.
func dataDir(cfg *config.Config) (string, error) {
	dir := dataDirFlag
	if dir == "" {
		dir = cfg.DataDir
	}
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(homeDir, ".local", "share", "crates")
	}

	// Ensure data directory exists
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	return dir, nil
}

// openRequestLog opens the request log. Failures are logged and disable it;
// a missing log never blocks an API call.
func openRequestLog(cfg *config.Config, logger zerolog.Logger) *store.RequestLog {
	dir, err := dataDir(cfg)
	if err != nil {
		logger.Warn().Err(err).Msg("Request log disabled")
		return nil
	}

	requestLog, err := store.NewRequestLog(filepath.Join(dir, "requests.db"))
	if err != nil {
		logger.Warn().Err(err).Msg("Request log disabled")
		return nil
	}
	return requestLog
}
