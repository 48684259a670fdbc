package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// DevToken is the bearer secret used when api_token is unset outside production.
const DevToken = "default-dev-token"

type Config struct {
	HTTP struct {
		Addr   string
		Prefix string
	}
	DB struct {
		Driver string
		DSN    string
	}
	Log struct {
		Level string
	}
	Metrics struct {
		Refresh string
	}
	Env          string
	APIToken     string
	ClientOrigin string
}

// Production reports whether the hardened error mode should be used.
func (c *Config) Production() bool { return c.Env == "production" }

// Load reads config from environment (BOOKMARKS_ prefix) and optional bookmarks.yaml.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BOOKMARKS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigName("bookmarks")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional config file

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.prefix", "")
	v.SetDefault("db.driver", "sqlite3")
	v.SetDefault("db.dsn", "bookmarks.db")
	v.SetDefault("env", "development")
	v.SetDefault("log.level", "info")
	v.SetDefault("client_origin", "http://localhost:3000")
	v.SetDefault("metrics.refresh", "@every 1m")

	cfg := &Config{}
	cfg.HTTP.Addr = v.GetString("http.addr")
	cfg.HTTP.Prefix = strings.TrimRight(v.GetString("http.prefix"), "/")
	cfg.DB.Driver = v.GetString("db.driver")
	cfg.DB.DSN = v.GetString("db.dsn")
	cfg.Log.Level = v.GetString("log.level")
	cfg.Metrics.Refresh = v.GetString("metrics.refresh")
	cfg.Env = v.GetString("env")
	cfg.APIToken = v.GetString("api_token")
	cfg.ClientOrigin = v.GetString("client_origin")

	switch cfg.Env {
	case "development", "production", "test":
	default:
		return nil, fmt.Errorf("BOOKMARKS_ENV must be development, production, or test (got %q)", cfg.Env)
	}

	if cfg.HTTP.Prefix != "" && !strings.HasPrefix(cfg.HTTP.Prefix, "/") {
		return nil, fmt.Errorf("BOOKMARKS_HTTP_PREFIX must start with a slash (got %q)", cfg.HTTP.Prefix)
	}

	if cfg.APIToken == "" {
		if cfg.Production() {
			return nil, fmt.Errorf("BOOKMARKS_API_TOKEN is required in production")
		}
		cfg.APIToken = DevToken
	}

	if cfg.DB.Driver == "" {
		return nil, fmt.Errorf("BOOKMARKS_DB_DRIVER is required (sqlite3, mysql, postgres)")
	}
	if cfg.DB.DSN == "" {
		return nil, fmt.Errorf("BOOKMARKS_DB_DSN is required")
	}

	return cfg, nil
}
