package config

import (
	"os"
	"strconv"
	"time"
)

// Config centralizes env-driven settings for the settlement core.
type Config struct {
	Env  string
	Host string
	Port string

	PostgresDSN string
	RedisAddr   string

	// Base URL of the score/odds source consumed by the scheduler.
	ScoreAPIURL string

	MetricsPort string

	// Maximum payout credited on a single winning bet (stake + pnl cap).
	MaxPayout float64

	SportsSweepInterval time.Duration
	FancySweepInterval  time.Duration
	VoidSweepInterval   time.Duration
	OddsRefreshInterval time.Duration

	// Pause between two settlements inside one sweep, keeps sweeps
	// strictly sequential per user.
	SweepPacing time.Duration

	// A bet still OPEN after this long is voided with a full refund.
	SafetyTimeout time.Duration

	// Look-back window: bets older than EventTime+grace are swept.
	SettleGrace time.Duration
}

func Load() Config {
	return Config{
		Env:  getEnv("ENV", "local"),
		Host: getEnv("HOST", "127.0.0.1"),
		Port: getEnv("PORT", "3000"),

		PostgresDSN: getEnv("POSTGRES_DSN", ""),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),

		ScoreAPIURL: getEnv("SCORE_API_URL", "http://localhost:7070"),

		MetricsPort: getEnv("METRICS_PORT", "9105"),

		MaxPayout: getFloat("MAX_PAYOUT", 500000),

		SportsSweepInterval: getDuration("SPORTS_SWEEP_INTERVAL", 30*time.Minute),
		FancySweepInterval:  getDuration("FANCY_SWEEP_INTERVAL", time.Hour),
		VoidSweepInterval:   getDuration("VOID_SWEEP_INTERVAL", 10*time.Minute),
		OddsRefreshInterval: getDuration("ODDS_REFRESH_INTERVAL", 15*time.Second),

		SweepPacing: getDuration("SWEEP_PACING", 200*time.Millisecond),

		SafetyTimeout: getDuration("SAFETY_TIMEOUT", 72*time.Hour),
		SettleGrace:   getDuration("SETTLE_GRACE", 4*time.Hour),
	}
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
