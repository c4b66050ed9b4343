package config

import (
	"time"

	"github.com/peladahub/pelada-service/internal/logger"
)

// Config is the root application configuration, populated from config.yaml
// plus APP_-prefixed environment overrides.
type Config struct {
	Server    Server        `mapstructure:"server"`
	Logger    logger.Config `mapstructure:"logger"`
	Postgres  Postgres      `mapstructure:"postgres"`
	Match     Match         `mapstructure:"match"`
	NATS      NATS          `mapstructure:"nats"`
	RateLimit RateLimit     `mapstructure:"rate_limit"`
	CORS      CORS          `mapstructure:"cors"`
}

// Server holds HTTP listener settings.
type Server struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Postgres holds connection pool settings. An empty Host selects the
// in-memory stores, mirroring the mobile client's mock-data mode.
type Postgres struct {
	Host              string `mapstructure:"host"`
	Port              int    `mapstructure:"port"`
	User              string `mapstructure:"user"`
	Password          string `mapstructure:"password"`
	DBName            string `mapstructure:"dbname"`
	SSLMode           string `mapstructure:"sslmode"`
	MaxConns          int32  `mapstructure:"max_conns"`
	MinConns          int32  `mapstructure:"min_conns"`
	MaxConnLifetime   int    `mapstructure:"max_conn_lifetime"`   // seconds
	MaxConnIdleTime   int    `mapstructure:"max_conn_idle_time"`  // seconds
	HealthCheckPeriod int    `mapstructure:"health_check_period"` // seconds
}

// Match carries the session rules the operator plays by.
type Match struct {
	DurationSeconds     int    `mapstructure:"duration_seconds"`
	GoldenGoalThreshold int    `mapstructure:"golden_goal_threshold"` // negative disables
	PlayersPerTeam      int    `mapstructure:"players_per_team"`
	TieBreakPolicy      string `mapstructure:"tie_break_policy"` // home_stays | away_advances
}

// NATS configures the optional archived-match event publication.
// An empty URL disables publishing.
type NATS struct {
	URL     string `mapstructure:"url"`
	Subject string `mapstructure:"subject"`
}

// RateLimit configures per-IP API throttling.
type RateLimit struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
	Burst             int `mapstructure:"burst"`
}

// CORS lists origins allowed to call the API (the mobile client in dev).
type CORS struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func (c *Config) setDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Match.DurationSeconds == 0 {
		c.Match.DurationSeconds = 360
	}
	if c.Match.GoldenGoalThreshold == 0 {
		c.Match.GoldenGoalThreshold = 2
	}
	if c.Match.PlayersPerTeam == 0 {
		c.Match.PlayersPerTeam = 4
	}
	if c.Match.TieBreakPolicy == "" {
		c.Match.TieBreakPolicy = "home_stays"
	}
	if c.NATS.Subject == "" {
		c.NATS.Subject = "pelada.matches.archived"
	}
	if c.RateLimit.RequestsPerMinute == 0 {
		c.RateLimit.RequestsPerMinute = 120
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 30
	}
}
