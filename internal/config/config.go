package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"whaleScope/internal/model"
)

// Watch modes supported by the scheduler.
const (
	ModeSingleShot    = "single-shot"
	ModePerSubscriber = "per-subscriber"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	BotToken        string
	ChatID          int64
	OwnerID         int64
	BroadcastChatID int64

	RPCEthereum string
	RPCArbitrum string
	RPCPolygon  string
	RPCBSC      string

	Mode         string
	PollInterval time.Duration
	BlockWindow  uint64
	PollTimeout  time.Duration
	ThresholdUSD float64
	CacheTTL     time.Duration

	SubscribersFile string
	PgDSN           string

	MaxRetries   int
	RetryBackoff time.Duration
	LogLevel     string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("WHALESCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("mode", ModeSingleShot)
	v.SetDefault("poll-interval", 10*time.Minute)
	v.SetDefault("block-window", uint64(6))
	v.SetDefault("poll-timeout", 30*time.Second)
	v.SetDefault("threshold-usd", float64(model.DefaultThresholdUSD))
	v.SetDefault("cache-ttl", 5*time.Minute)
	v.SetDefault("subscribers-file", "./data/subscribers.json")
	v.SetDefault("max-retries", 3)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		BotToken:        v.GetString("bot-token"),
		ChatID:          v.GetInt64("chat-id"),
		OwnerID:         v.GetInt64("owner-id"),
		BroadcastChatID: v.GetInt64("broadcast-chat-id"),
		RPCEthereum:     v.GetString("rpc-eth"),
		RPCArbitrum:     v.GetString("rpc-arb"),
		RPCPolygon:      v.GetString("rpc-polygon"),
		RPCBSC:          v.GetString("rpc-bsc"),
		Mode:            v.GetString("mode"),
		PollInterval:    v.GetDuration("poll-interval"),
		BlockWindow:     v.GetUint64("block-window"),
		PollTimeout:     v.GetDuration("poll-timeout"),
		ThresholdUSD:    v.GetFloat64("threshold-usd"),
		CacheTTL:        v.GetDuration("cache-ttl"),
		SubscribersFile: v.GetString("subscribers-file"),
		PgDSN:           v.GetString("pg-dsn"),
		MaxRetries:      v.GetInt("max-retries"),
		RetryBackoff:    v.GetDuration("retry-backoff"),
		LogLevel:        v.GetString("log-level"),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	switch c.Mode {
	case ModeSingleShot, ModePerSubscriber:
	default:
		return fmt.Errorf("unknown mode: %s", c.Mode)
	}
	if c.BlockWindow == 0 {
		return fmt.Errorf("block window must be greater than zero")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}
	return nil
}

// Chains returns the configured networks in fixed precedence order.
// Chains without an endpoint are omitted; single-shot mode gives the
// first returned chain early-exit priority.
func (c Config) Chains() []model.ChainConfig {
	all := []model.ChainConfig{
		{Key: "eth", Name: "Ethereum", RPCURL: c.RPCEthereum},
		{Key: "arb", Name: "Arbitrum", RPCURL: c.RPCArbitrum},
		{Key: "polygon", Name: "Polygon", RPCURL: c.RPCPolygon},
		{Key: "bsc", Name: "BSC", RPCURL: c.RPCBSC},
	}

	chains := make([]model.ChainConfig, 0, len(all))
	for _, chain := range all {
		if strings.TrimSpace(chain.RPCURL) == "" {
			continue
		}
		chains = append(chains, chain)
	}
	return chains
}
