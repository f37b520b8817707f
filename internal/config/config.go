// Package config handles the XDG configuration directory, .env files and
// TASKFLOW_* environment settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// AppName is the application directory name.
	AppName = "taskflow"

	// EnvFile is the optional dotenv file read from the config directory.
	EnvFile = ".env"

	// StoreDirName is the subdirectory holding file-backed slots.
	StoreDirName = "store"

	// DefaultPostsURL is the remote collection endpoint.
	DefaultPostsURL = "https://jsonplaceholder.typicode.com/posts"

	// DefaultListenAddr is the address used by the serve command.
	DefaultListenAddr = ":8080"
)

// Store backends.
const (
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// PostsURL is the endpoint returning the JSON array of posts.
	PostsURL string

	// APIToken, when set, is sent as a bearer token to PostsURL.
	APIToken string

	// Store selects the slot backend: file, redis or memory.
	Store string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// LogLevel is one of debug, info, warn, error.
	LogLevel string

	// LogJSON selects the JSON log handler.
	LogJSON bool

	// ListenAddr is the HTTP listen address for serve.
	ListenAddr string
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/taskflow or $HOME/.config/taskflow.
//
// Settings come from the process environment; <dir>/.env and ./.env fill in
// variables that are not already set.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}

	// Missing files are fine; godotenv never overrides existing variables.
	_ = godotenv.Load(filepath.Join(dir, EnvFile))
	_ = godotenv.Load()

	cfg := &Config{
		Dir:        dir,
		PostsURL:   getenv("TASKFLOW_POSTS_URL", DefaultPostsURL),
		APIToken:   os.Getenv("TASKFLOW_API_TOKEN"),
		Store:      strings.ToLower(getenv("TASKFLOW_STORE", StoreFile)),
		RedisAddr:  os.Getenv("TASKFLOW_REDIS_ADDR"),
		LogLevel:   getenv("TASKFLOW_LOG_LEVEL", "warn"),
		LogJSON:    strings.EqualFold(os.Getenv("TASKFLOW_LOG_FORMAT"), "json"),
		ListenAddr: getenv("TASKFLOW_LISTEN", DefaultListenAddr),
	}
	cfg.RedisPassword = os.Getenv("TASKFLOW_REDIS_PASSWORD")

	if v := os.Getenv("TASKFLOW_REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid TASKFLOW_REDIS_DB: %s", v)
		}
		cfg.RedisDB = n
	}

	switch cfg.Store {
	case StoreFile, StoreRedis, StoreMemory:
	default:
		return nil, fmt.Errorf("invalid TASKFLOW_STORE: %s (want file, redis or memory)", cfg.Store)
	}
	if cfg.Store == StoreRedis && cfg.RedisAddr == "" {
		return nil, fmt.Errorf("TASKFLOW_STORE=redis requires TASKFLOW_REDIS_ADDR")
	}

	return cfg, nil
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// StoreDir returns the directory holding file-backed slots.
func (c *Config) StoreDir() string {
	return filepath.Join(c.Dir, StoreDirName)
}

// EffectiveLogLevel returns debug when --debug is set, LogLevel otherwise.
func (c *Config) EffectiveLogLevel() string {
	if c.Debug {
		return "debug"
	}
	return c.LogLevel
}
