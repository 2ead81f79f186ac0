package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port           string   `env:"PORT" envDefault:"8080"`
	Environment    string   `env:"ENVIRONMENT" envDefault:"development"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	SupabaseURL        string `env:"SUPABASE_URL"`
	SupabaseServiceKey string `env:"SUPABASE_SERVICE_ROLE_KEY"`

	JWTSecret string `env:"JWT_SECRET"`

	UltraMsgInstanceID string `env:"ULTRAMSG_INSTANCE_ID"`
	UltraMsgToken      string `env:"ULTRAMSG_API_TOKEN"`
	UltraMsgBaseURL    string `env:"ULTRAMSG_BASE_URL" envDefault:"https://api.ultramsg.com"`

	// AdminPhone receives a copy of every booking notification.
	AdminPhone string `env:"ADMIN_PHONE"`

	// CountryCode replaces the trunk "0" when normalizing local numbers.
	CountryCode string `env:"COUNTRY_CALLING_CODE" envDefault:"972"`

	CutoffHours int    `env:"BOOKING_CUTOFF_HOURS" envDefault:"24"`
	OpeningTime string `env:"OPENING_TIME" envDefault:"08:00"`
	ClosingTime string `env:"CLOSING_TIME" envDefault:"20:00"`

	// Timezone is the salon's civil timezone. Appointment date/time strings
	// are never converted; it is only used for "today" and cutoff arithmetic.
	Timezone string `env:"TIMEZONE" envDefault:"Asia/Jerusalem"`

	loc *time.Location
}

func NewConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}
	cfg.loc = loc
	return cfg, nil
}

func (c *Config) Location() *time.Location {
	if c.loc == nil {
		loc, err := time.LoadLocation(c.Timezone)
		if err != nil {
			return time.Local
		}
		c.loc = loc
	}
	return c.loc
}

func (c *Config) Cutoff() time.Duration {
	return time.Duration(c.CutoffHours) * time.Hour
}
