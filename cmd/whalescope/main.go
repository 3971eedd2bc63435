package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"whaleScope/internal/bot"
	"whaleScope/internal/config"
	"whaleScope/internal/filter"
	"whaleScope/internal/model"
	"whaleScope/internal/notify"
	"whaleScope/internal/store"
	"whaleScope/internal/token"
	"whaleScope/internal/watch"
)

func main() {
	root := &cobra.Command{
		Use:          "whalescope",
		Short:        "Multi-chain whale transfer watcher",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the watcher",
		RunE:  runWatcher,
	}

	runCmd.Flags().String("bot-token", "", "Telegram bot token")
	runCmd.Flags().Int64("chat-id", 0, "default alert chat id")
	runCmd.Flags().Int64("owner-id", 0, "owner chat id for broadcast mirroring")
	runCmd.Flags().Int64("broadcast-chat-id", 0, "broadcast channel chat id")
	runCmd.Flags().String("rpc-eth", "", "Ethereum RPC URL")
	runCmd.Flags().String("rpc-arb", "", "Arbitrum RPC URL")
	runCmd.Flags().String("rpc-polygon", "", "Polygon RPC URL")
	runCmd.Flags().String("rpc-bsc", "", "BSC RPC URL")
	runCmd.Flags().String("mode", config.ModeSingleShot, "watch mode (single-shot, per-subscriber)")
	runCmd.Flags().Duration("poll-interval", 10*time.Minute, "sleep between poll cycles")
	runCmd.Flags().Uint64("block-window", 6, "trailing blocks polled per cycle")
	runCmd.Flags().Duration("poll-timeout", 30*time.Second, "deadline per chain poll")
	runCmd.Flags().Float64("threshold-usd", model.DefaultThresholdUSD, "default alert threshold in USD")
	runCmd.Flags().Duration("cache-ttl", token.DefaultCacheTTL, "token metadata cache freshness window")
	runCmd.Flags().String("subscribers-file", "./data/subscribers.json", "subscriber store JSON path")
	runCmd.Flags().String("pg-dsn", "", "Postgres DSN for the subscriber store (overrides the file store)")
	runCmd.Flags().Int("max-retries", 3, "maximum retry attempts per RPC call")
	runCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	runCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(runCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runWatcher(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load()

	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.BotToken == "" {
		return fmt.Errorf("bot token is required")
	}
	chains := cfg.Chains()
	if len(chains) == 0 && cfg.Mode == config.ModeSingleShot {
		return fmt.Errorf("at least one chain RPC URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backing, closeStore, err := newStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	registry, err := store.NewRegistry(ctx, backing, chains, logger)
	if err != nil {
		return err
	}

	poller, err := watch.NewPoller(watch.PollerConfig{
		BlockWindow:  cfg.BlockWindow,
		PollTimeout:  cfg.PollTimeout,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, nil, logger)
	if err != nil {
		return err
	}

	resolver := token.NewResolver(token.NewCoinGecko(), cfg.CacheTTL, logger)
	engine := filter.NewEngine()

	telegram := notify.NewTelegram(cfg.BotToken)
	dispatcher := notify.NewDispatcher(telegram, cfg.OwnerID, cfg.BroadcastChatID, logger)

	runner, err := watch.NewRunner(watch.RunConfig{
		Mode:          cfg.Mode,
		Chains:        chains,
		Interval:      cfg.PollInterval,
		DefaultChatID: cfg.ChatID,
		ThresholdUSD:  cfg.ThresholdUSD,
	}, poller, resolver, engine, dispatcher, registry, logger)
	if err != nil {
		return err
	}

	commandBot := bot.New(telegram, registry, chains, logger)
	go func() {
		if err := commandBot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("command bot stopped", zap.Error(err))
		}
	}()

	logger.Info("whalescope start",
		zap.String("mode", cfg.Mode),
		zap.Int("chains", len(chains)),
		zap.Duration("poll_interval", cfg.PollInterval),
		zap.Uint64("block_window", cfg.BlockWindow),
	)

	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func newStore(ctx context.Context, cfg config.Config) (store.Store, func(), error) {
	if cfg.PgDSN != "" {
		pg, err := store.NewPostgresStore(ctx, cfg.PgDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect subscriber store: %w", err)
		}
		return pg, pg.Close, nil
	}
	return store.NewFileStore(cfg.SubscribersFile), func() {}, nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
