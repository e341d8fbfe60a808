package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// DNSConfig controls the authentication resolver.
type DNSConfig struct {
	Timeout     time.Duration
	Workers     int
	CacheTTL    time.Duration
	Selectors   []string
	DeepSPF     bool
	RedisURL    string
	RedisPrefix string
}

// ScoringConfig carries the verdict thresholds for both aggregation
// schemes. Weight tables themselves are fixed in code; thresholds are the
// operational knobs.
type ScoringConfig struct {
	PhishingThreshold   float64
	SuspiciousThreshold float64
}

// TimingConfig decides which direction the Received chain is read in.
// Most MTAs prepend, so newest-first is the default assumption.
type TimingConfig struct {
	NewestFirst bool
}

type Config struct {
	Env      string
	LogLevel string
	LogPath  string
	ApiPort  string

	DatabaseURL      string
	MaxDBConnections int

	DNS     DNSConfig
	Scoring ScoringConfig
	Timing  TimingConfig

	// RulesPath points to an optional YAML file overriding the built-in
	// TLD deny-list and trusted-brand tables.
	RulesPath string
}

// LoadConfig reads config.yaml (working dir or cmd/phishguard) and the
// environment into a typed Config, applying defaults for anything unset.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("cmd/phishguard")

	viper.SetDefault("env", "development")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.path", "logs")
	viper.SetDefault("api.port", "8081")
	viper.SetDefault("database.max_connections", 10)
	viper.SetDefault("dns.timeout", 3*time.Second)
	viper.SetDefault("dns.workers", 5)
	viper.SetDefault("dns.cache_ttl", 4*time.Hour)
	viper.SetDefault("dns.selectors", []string{"default", "selector1", "selector2"})
	viper.SetDefault("dns.deep_spf", false)
	viper.SetDefault("dns.redis_prefix", "phishguard")
	viper.SetDefault("scoring.phishing_threshold", 70.0)
	viper.SetDefault("scoring.suspicious_threshold", 40.0)
	viper.SetDefault("timing.newest_first", true)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No file is fine, defaults plus environment apply.
	}

	viper.AutomaticEnv()

	cfg := &Config{
		Env:              viper.GetString("env"),
		LogLevel:         viper.GetString("log.level"),
		LogPath:          viper.GetString("log.path"),
		ApiPort:          viper.GetString("api.port"),
		DatabaseURL:      viper.GetString("database.url"),
		MaxDBConnections: viper.GetInt("database.max_connections"),
		DNS: DNSConfig{
			Timeout:     viper.GetDuration("dns.timeout"),
			Workers:     viper.GetInt("dns.workers"),
			CacheTTL:    viper.GetDuration("dns.cache_ttl"),
			Selectors:   viper.GetStringSlice("dns.selectors"),
			DeepSPF:     viper.GetBool("dns.deep_spf"),
			RedisURL:    viper.GetString("dns.redis_url"),
			RedisPrefix: viper.GetString("dns.redis_prefix"),
		},
		Scoring: ScoringConfig{
			PhishingThreshold:   viper.GetFloat64("scoring.phishing_threshold"),
			SuspiciousThreshold: viper.GetFloat64("scoring.suspicious_threshold"),
		},
		Timing: TimingConfig{
			NewestFirst: viper.GetBool("timing.newest_first"),
		},
		RulesPath: viper.GetString("rules.path"),
	}

	return cfg, nil
}
