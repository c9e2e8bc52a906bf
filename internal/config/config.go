// Package config loads runtime settings from flags, FINANCE_* environment
// variables, an optional config file and a .env file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/rogerio-castellano/finance-dashboard/internal/auth"
	"github.com/rogerio-castellano/finance-dashboard/internal/session"
)

const EnvPrefix = "FINANCE"

const (
	OfflineOff    = "off"
	OfflineMemory = "memory"
	OfflineRedis  = "redis"
)

type Config struct {
	APIURL string

	AuthMode      string
	AdminEmail    string
	AdminPassword string
	JWTSecret     string
	TokenTTL      time.Duration

	SessionBackend  string
	SessionFile     string
	RedisAddr       string
	RedisSessionKey string

	OfflineCache    string
	OfflineRemember bool

	SummaryHonorsFilters bool
	RecentLimit          int

	LogLevel string
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "finance-dashboard", "session.json")
}

// NewViper returns a viper instance with defaults and environment binding.
// Flags are bound onto it by the caller.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("api_url", "http://localhost:8080")
	v.SetDefault("auth_mode", string(auth.ModeDelegated))
	v.SetDefault("admin_email", "")
	v.SetDefault("admin_password", "")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("token_ttl", auth.DefaultTokenTTL)
	v.SetDefault("session_backend", session.BackendFile)
	v.SetDefault("session_file", defaultSessionFile())
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_session_key", session.DefaultRedisKey)
	v.SetDefault("offline_cache", OfflineOff)
	v.SetDefault("offline_remember", false)
	v.SetDefault("summary_honors_filters", false)
	v.SetDefault("recent_limit", 6)
	v.SetDefault("log_level", "warn")
	return v
}

// Load reads .env (if present) and configFile (if set) into v and returns
// the resulting Config. It does not validate.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	// a missing .env is normal outside development
	_ = godotenv.Load()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	return &Config{
		APIURL:               v.GetString("api_url"),
		AuthMode:             v.GetString("auth_mode"),
		AdminEmail:           v.GetString("admin_email"),
		AdminPassword:        v.GetString("admin_password"),
		JWTSecret:            v.GetString("jwt_secret"),
		TokenTTL:             v.GetDuration("token_ttl"),
		SessionBackend:       v.GetString("session_backend"),
		SessionFile:          v.GetString("session_file"),
		RedisAddr:            v.GetString("redis_addr"),
		RedisSessionKey:      v.GetString("redis_session_key"),
		OfflineCache:         v.GetString("offline_cache"),
		OfflineRemember:      v.GetBool("offline_remember"),
		SummaryHonorsFilters: v.GetBool("summary_honors_filters"),
		RecentLimit:          v.GetInt("recent_limit"),
		LogLevel:             v.GetString("log_level"),
	}, nil
}

// Validate reports every invalid setting in one error.
func (c *Config) Validate() error {
	var errs []error

	if u, err := url.Parse(c.APIURL); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, fmt.Errorf("invalid api_url %q: must be an absolute http(s) URL", c.APIURL))
	}

	mode, err := auth.ParseMode(c.AuthMode)
	if err != nil {
		errs = append(errs, err)
	}
	if mode == auth.ModeLocalMint {
		if c.AdminEmail == "" {
			errs = append(errs, errors.New("admin_email is required when auth_mode is local"))
		}
		if c.AdminPassword == "" {
			errs = append(errs, errors.New("admin_password is required when auth_mode is local"))
		}
		if c.JWTSecret == "" {
			errs = append(errs, errors.New("jwt_secret is required when auth_mode is local"))
		}
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("invalid token_ttl %s: must be positive", c.TokenTTL))
	}

	switch c.SessionBackend {
	case session.BackendMemory:
	case session.BackendFile:
		if c.SessionFile == "" {
			errs = append(errs, errors.New("session_file cannot be empty with the file session backend"))
		}
	case session.BackendRedis:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("redis_addr cannot be empty with the redis session backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid session_backend %q: must be one of memory, file, redis", c.SessionBackend))
	}

	switch c.OfflineCache {
	case OfflineOff, OfflineMemory:
	case OfflineRedis:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("redis_addr cannot be empty with the redis offline cache"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid offline_cache %q: must be one of off, memory, redis", c.OfflineCache))
	}

	if c.RecentLimit <= 0 {
		errs = append(errs, fmt.Errorf("invalid recent_limit %d: must be positive", c.RecentLimit))
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("invalid log_level %q", c.LogLevel))
	}

	return errors.Join(errs...)
}

// UsesRedis reports whether any component needs a Redis connection.
func (c *Config) UsesRedis() bool {
	return c.SessionBackend == session.BackendRedis || c.OfflineCache == OfflineRedis
}
