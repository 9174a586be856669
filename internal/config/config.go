// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is built once at startup and passed to every component that needs it.
type Config struct {
	RPCURL                     string  `mapstructure:"rpc_url"`
	CacheDir                   string  `mapstructure:"cache_dir"`
	PairsCacheTTLMs            int64   `mapstructure:"pairs_cache_ttl_ms"`
	RedisURL                   string  `mapstructure:"redis_url"`
	JitoUUID                   string  `mapstructure:"jito_uuid"`
	NozomiAPIKey               string  `mapstructure:"nozomi_api_key"`
	NozomiAPIKeyAntiMEV        string  `mapstructure:"nozomi_api_key_antimev"`
	AstralaneAPIKey            string  `mapstructure:"astralane_api_key"`
	DisableDevTip              bool    `mapstructure:"disable_dev_tip"`
	PumpSwapPoolReadyTimeoutMs int64   `mapstructure:"pumpswap_pool_ready_timeout_ms"`
	ConfirmTimeoutMs           int64   `mapstructure:"confirm_timeout_ms"`
	ConfirmPollIntervalMs      int64   `mapstructure:"confirm_poll_interval_ms"`
	RelayRateLimit             float64 `mapstructure:"relay_rate_limit"`
	FallbackQuoteURL           string  `mapstructure:"fallback_quote_url"`
	LogFile                    string  `mapstructure:"log_file"`
	DebugLogging               bool    `mapstructure:"debug_logging"`
}

const (
	DefaultRPCURL                     = "https://api.mainnet-beta.solana.com"
	DefaultCacheDir                   = ".cache"
	DefaultPairsCacheTTLMs            = 300_000
	DefaultPumpSwapPoolReadyTimeoutMs = 5_000
	DefaultConfirmTimeoutMs           = 45_000
	DefaultConfirmPollIntervalMs      = 500
	DefaultLogFile                    = "trader.log"
)

// envKeys связывает ключи конфигурации с переменными окружения.
var envKeys = map[string]string{
	"rpc_url":                        "RPC_URL",
	"cache_dir":                      "CACHE_DIR",
	"pairs_cache_ttl_ms":             "PAIRS_CACHE_TTL_MS",
	"redis_url":                      "REDIS_URL",
	"jito_uuid":                      "JITO_UUID",
	"nozomi_api_key":                 "NOZOMI_API_KEY",
	"nozomi_api_key_antimev":         "NOZOMI_API_KEY_ANTIMEV",
	"astralane_api_key":              "ASTRALANE_API_KEY",
	"disable_dev_tip":                "DISABLE_DEV_TIP",
	"pumpswap_pool_ready_timeout_ms": "PUMPSWAP_POOL_READY_TIMEOUT_MS",
	"confirm_timeout_ms":             "CONFIRM_TIMEOUT_MS",
	"confirm_poll_interval_ms":       "CONFIRM_POLL_INTERVAL_MS",
	"relay_rate_limit":               "RELAY_RATE_LIMIT",
	"fallback_quote_url":             "FALLBACK_QUOTE_URL",
	"log_file":                       "LOG_FILE",
	"debug_logging":                  "DEBUG_LOGGING",
}

// Default returns a configuration with every default applied and no credentials.
func Default() *Config {
	return &Config{
		RPCURL:                     DefaultRPCURL,
		CacheDir:                   DefaultCacheDir,
		PairsCacheTTLMs:            DefaultPairsCacheTTLMs,
		PumpSwapPoolReadyTimeoutMs: DefaultPumpSwapPoolReadyTimeoutMs,
		ConfirmTimeoutMs:           DefaultConfirmTimeoutMs,
		ConfirmPollIntervalMs:      DefaultConfirmPollIntervalMs,
		LogFile:                    DefaultLogFile,
	}
}

// LoadConfig reads an optional config file (path may be empty) and applies
// environment overrides on top of it.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	defaults := map[string]interface{}{
		"rpc_url":                        DefaultRPCURL,
		"cache_dir":                      DefaultCacheDir,
		"pairs_cache_ttl_ms":             DefaultPairsCacheTTLMs,
		"pumpswap_pool_ready_timeout_ms": DefaultPumpSwapPoolReadyTimeoutMs,
		"confirm_timeout_ms":             DefaultConfirmTimeoutMs,
		"confirm_poll_interval_ms":       DefaultConfirmPollIntervalMs,
		"relay_rate_limit":               0,
		"disable_dev_tip":                false,
		"debug_logging":                  false,
		"log_file":                       DefaultLogFile,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if err := bindEnvironment(v); err != nil {
		return nil, err
	}
	v.Set("disable_dev_tip", flagEnabled(v.Get("disable_dev_tip")))

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	return &cfg, cfg.Validate()
}

func bindEnvironment(v *viper.Viper) error {
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, env := range envKeys {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}
	return nil
}

// flagEnabled reads an on/off switch. Values strconv.ParseBool understands keep
// their meaning; any other non-empty value turns the switch on.
func flagEnabled(raw interface{}) bool {
	switch val := raw.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		val = strings.TrimSpace(val)
		if val == "" {
			return false
		}
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
		return true
	default:
		return fmt.Sprint(val) != "0"
	}
}

// Validate checks URLs and numeric ranges.
func (c *Config) Validate() error {
	if c.RPCURL == "" {
		return errors.New("rpc_url is empty")
	}
	if err := validateURL(c.RPCURL, "http"); err != nil {
		return fmt.Errorf("invalid rpc_url: %w", err)
	}
	if c.FallbackQuoteURL != "" {
		if err := validateURL(c.FallbackQuoteURL, "http"); err != nil {
			return fmt.Errorf("invalid fallback_quote_url: %w", err)
		}
	}
	if c.RedisURL != "" {
		if err := validateURL(c.RedisURL, "redis"); err != nil {
			return fmt.Errorf("invalid redis_url: %w", err)
		}
	}
	return validateNumericParams(c)
}

func validateNumericParams(c *Config) error {
	if c.PairsCacheTTLMs < 0 {
		return errors.New("invalid pairs_cache_ttl_ms")
	}
	if c.PumpSwapPoolReadyTimeoutMs < 0 {
		return errors.New("invalid pumpswap_pool_ready_timeout_ms")
	}
	if c.ConfirmTimeoutMs <= 0 {
		return errors.New("invalid confirm_timeout_ms")
	}
	if c.ConfirmPollIntervalMs <= 0 {
		return errors.New("invalid confirm_poll_interval_ms")
	}
	if c.RelayRateLimit < 0 {
		return errors.New("invalid relay_rate_limit")
	}
	return nil
}

func validateURL(rawURL string, protocol string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	return nil
}

// PairsCacheTTL returns the global pool list TTL.
func (c *Config) PairsCacheTTL() time.Duration {
	return time.Duration(c.PairsCacheTTLMs) * time.Millisecond
}

// ConfirmTimeout returns the confirmation monitor deadline.
func (c *Config) ConfirmTimeout() time.Duration {
	return time.Duration(c.ConfirmTimeoutMs) * time.Millisecond
}

// ConfirmPollInterval returns the signature status polling period.
func (c *Config) ConfirmPollInterval() time.Duration {
	return time.Duration(c.ConfirmPollIntervalMs) * time.Millisecond
}

// PumpSwapPoolReadyTimeout bounds the wait for a freshly created pool.
func (c *Config) PumpSwapPoolReadyTimeout() time.Duration {
	return time.Duration(c.PumpSwapPoolReadyTimeoutMs) * time.Millisecond
}

// HasJito reports whether a Jito credential is configured.
func (c *Config) HasJito() bool { return c.JitoUUID != "" }

// HasNozomi reports whether any Nozomi key is configured.
func (c *Config) HasNozomi() bool { return c.NozomiAPIKey != "" || c.NozomiAPIKeyAntiMEV != "" }

// HasAstralane reports whether an Astralane key is configured.
func (c *Config) HasAstralane() bool { return c.AstralaneAPIKey != "" }
