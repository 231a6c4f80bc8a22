package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Ledger LedgerConfig `mapstructure:"ledger"`
	Wallet WalletConfig `mapstructure:"wallet"`
	Demo   DemoConfig   `mapstructure:"demo"`
	Redis  RedisConfig  `mapstructure:"redis"`
	Server ServerConfig `mapstructure:"server"`
	JWT    JWTConfig    `mapstructure:"jwt"`
	Log    LogConfig    `mapstructure:"log"`
}

type LedgerConfig struct {
	RPCURL         string        `mapstructure:"rpc_url"`
	FaucetURL      string        `mapstructure:"faucet_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	ConfirmTimeout time.Duration `mapstructure:"confirm_timeout"` // upper bound on the finality wait
	PollInterval   time.Duration `mapstructure:"poll_interval"`
	LedgerOffset   uint32        `mapstructure:"ledger_offset"` // LastLedgerSequence = validated + offset
	MaxFeeDrops    uint64        `mapstructure:"max_fee_drops"`
	NetworkID      uint32        `mapstructure:"network_id"` // signed into payments only when above 1024
}

// WalletConfig carries the signing identity. Seed is a secret: source it from
// XRPLW_WALLET_SEED or a .env file, never from a committed config file.
type WalletConfig struct {
	Seed      string `mapstructure:"seed"`
	Algorithm string `mapstructure:"algorithm"` // ed25519, secp256k1 (fresh wallets only)
}

// DemoConfig parameterises the `run` demonstration script.
type DemoConfig struct {
	Destination string `mapstructure:"destination"`
	Amount      string `mapstructure:"amount"`    // XRP
	Threshold   string `mapstructure:"threshold"` // XRP; pay only when balance exceeds this
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type ServerConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Mode      string `mapstructure:"mode"`       // debug, release, test
	RateLimit int64  `mapstructure:"rate_limit"` // payment requests per client per minute
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
	Issuer string        `mapstructure:"issuer"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from a .env file, a config file and environment variables.
// Environment variables override file values. Prefix: XRPLW_.
// Nested keys use underscore: XRPLW_LEDGER_RPC_URL, XRPLW_WALLET_SEED, etc.
func Load(path string) (*Config, error) {
	// .env is optional; a missing file is not an error.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()

	v.SetDefault("ledger.rpc_url", "https://s.altnet.rippletest.net:51234")
	v.SetDefault("ledger.faucet_url", "https://faucet.altnet.rippletest.net/accounts")
	v.SetDefault("ledger.request_timeout", "15s")
	v.SetDefault("ledger.confirm_timeout", "2m")
	v.SetDefault("ledger.poll_interval", "1s")
	v.SetDefault("ledger.ledger_offset", 20)
	v.SetDefault("ledger.max_fee_drops", 2000000)
	v.SetDefault("ledger.network_id", 0)
	v.SetDefault("wallet.seed", "")
	v.SetDefault("wallet.algorithm", "ed25519")
	v.SetDefault("demo.destination", "rPT1Sjq2YGrBMTttX4GZHjKu9dyfzbpAYe")
	v.SetDefault("demo.amount", "10")
	v.SetDefault("demo.threshold", "10")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.rate_limit", 30)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry", "1h")
	v.SetDefault("jwt.issuer", "xrpl-wallet")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// XRPLW_LEDGER_RPC_URL -> ledger.rpc_url
	v.SetEnvPrefix("XRPLW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Ledger.RPCURL == "" {
		return errors.New("ledger.rpc_url must be set")
	}
	if c.Ledger.PollInterval <= 0 {
		return errors.New("ledger.poll_interval must be positive")
	}
	// The submission lock TTL is derived from it, so it must bound the wait.
	if c.Ledger.ConfirmTimeout <= 0 {
		return errors.New("ledger.confirm_timeout must be positive")
	}
	switch c.Wallet.Algorithm {
	case "ed25519", "secp256k1":
	default:
		return fmt.Errorf("wallet.algorithm %q is not supported", c.Wallet.Algorithm)
	}
	return nil
}
