package cfg

import (
	"cmp"
	"errors"
	"fmt"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	ConfigPath string `short:"c" long:"config" env:"CONFIG" default:"config.yml" description:"Path to the YAML configuration file"`
	Verbose    []bool `short:"v" long:"verbose" description:"Increase log verbosity (repeatable: -v info, -vvv debug)"`

	WorkerCount   int    `long:"workers" env:"WORKERS" default:"1" description:"Number of users synced in parallel"`
	DBPath        string `long:"db-path" env:"DB_PATH" description:"SQLite shift archive path (empty disables the archive)"`
	RetentionDays int    `long:"retention-days" env:"RETENTION_DAYS" default:"365" description:"Days archived shifts stay in the calendar"`
	UserAgent     string `long:"user-agent" env:"USER_AGENT" description:"User agent string for HTTP requests"`

	Serve        bool   `long:"serve" env:"SERVE" description:"Keep running, resync periodically and serve calendars over HTTP"`
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	SyncInterval int    `long:"sync-interval" env:"SYNC_INTERVAL" default:"1800" description:"Serve mode sync interval in seconds"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`
}

// Load parses the process arguments and environment. It returns nil, nil
// when help was requested.
func Load(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		ConfigPath:    raw.ConfigPath,
		Verbosity:     len(raw.Verbose),
		WorkerCount:   raw.WorkerCount,
		DBPath:        raw.DBPath,
		RetentionDays: raw.RetentionDays,
		UserAgent:     cmp.Or(raw.UserAgent, "oscar-feed/"+GetVersion()),
		Serve:         raw.Serve,
		Port:          raw.Port,
		SyncInterval:  raw.SyncInterval,
		APIAccessKey:  raw.APIAccessKey,
		Version:       GetVersion(),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Cfg) validate() error {
	if c.WorkerCount < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.WorkerCount)
	}
	if c.RetentionDays < 0 {
		return fmt.Errorf("retention-days must not be negative, got %d", c.RetentionDays)
	}
	if c.Serve && c.SyncInterval < 1 {
		return fmt.Errorf("sync-interval must be at least 1 second, got %d", c.SyncInterval)
	}
	return nil
}
