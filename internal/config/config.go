// Package config handles runtime settings for the server: defaults first,
// then an environment overlay.
package config

import (
	"os"
	"time"
)

type Config struct {
	Addr          string
	DBPath        string
	TemplateDir   string
	SessionSecret string
	SessionTTL    time.Duration
}

// LoadDefaults populates Config with development defaults. The session secret
// is insecure and must be overridden outside development.
func (c *Config) LoadDefaults() {
	c.Addr = ":8080"
	c.DBPath = "tracker.db"
	c.TemplateDir = "web/templates"
	c.SessionSecret = "dev-secret"
	c.SessionTTL = 24 * time.Hour
}

// Load builds a Config by applying defaults and then the environment.
func Load() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	cfg.applyEnv()
	return cfg
}

func (c *Config) applyEnv() {
	if v := os.Getenv("ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("TEMPLATE_DIR"); v != "" {
		c.TemplateDir = v
	}
	if v := os.Getenv("SESSION_SECRET"); v != "" {
		c.SessionSecret = v
	}
	if v := os.Getenv("SESSION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.SessionTTL = d
		}
	}
}
