package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the process settings, read from the environment at startup.
type Config struct {
	Addr           string        `env:"LOTTERY_ADDR"            envDefault:":8080"`
	CountdownTicks int           `env:"LOTTERY_COUNTDOWN_TICKS" envDefault:"10"`
	TickInterval   time.Duration `env:"LOTTERY_TICK_INTERVAL"   envDefault:"1s"`
	// Seed fixes the draw's random sequence. Zero seeds from the clock.
	Seed           int64  `env:"LOTTERY_SEED"`
	DefaultBackups int    `env:"LOTTERY_DEFAULT_BACKUPS" envDefault:"2"`
	Verbose        bool   `env:"LOTTERY_VERBOSE"         envDefault:"true"`
	GinMode        string `env:"LOTTERY_GIN_MODE"        envDefault:"release"`
}

// Load parses the environment into a Config and normalizes out-of-range values.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.CountdownTicks < 1 {
		cfg.CountdownTicks = 1
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	if cfg.DefaultBackups < 0 {
		cfg.DefaultBackups = 0
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	return cfg, nil
}
