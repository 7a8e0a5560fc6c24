package config

import (
	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	Server struct {
		Port   int    `env:"PORT" envDefault:"3000"`
		Origin string `env:"ORIGIN" envDefault:"http://localhost:3000"`
	}

	Redis struct {
		Host     string `env:"REDIS_HOST" envDefault:"localhost"`
		Port     int    `env:"REDIS_PORT" envDefault:"6379"`
		Password string `env:"REDIS_PASSWORD" envDefault:""`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
	}

	Bot struct {
		// Redis key holding the persisted bot state document.
		StateKey string `env:"STATE_KEY" envDefault:"bot:state"`

		// Reaction that counts as a giveaway entry.
		EntryEmoji string `env:"ENTRY_EMOJI" envDefault:"🎉"`

		// Minimum giveaway duration in minutes.
		MinDurationMinutes int `env:"MIN_DURATION_MINUTES" envDefault:"1"`
	}
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		// .env is optional; in production the variables are set directly.
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		panic(err)
	}

	return cfg
}
