package cfg

import "time"

type Cfg struct {
	// Input and output
	ConfigPath string
	Verbosity  int

	// Run configuration
	WorkerCount   int
	DBPath        string
	RetentionDays int
	UserAgent     string

	// Serve mode
	Serve        bool
	Port         string
	SyncInterval int
	APIAccessKey string

	Version string
}

// GetRetention returns how long archived shifts are kept
func (c *Cfg) GetRetention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

// GetSyncInterval returns the serve mode sync interval
func (c *Cfg) GetSyncInterval() time.Duration {
	return time.Duration(c.SyncInterval) * time.Second
}
