package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

const (
	DefaultTimezone       = "Europe/Luxembourg"
	DefaultDateFormat     = "02/01/06"
	DefaultLoginMarker    = "usertext"
	DefaultOwnShiftMarker = "span.own-shift"
	DefaultShiftName      = "Permanence"
	DefaultFeedPrefix     = "Perma "
	DefaultOutputDir      = "./calendars"
)

// Loader handles loading and validation of the YAML configuration
type Loader struct {
	path string
}

// NewLoader creates a new configuration loader
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load reads, defaults and validates the configuration file
func (l *Loader) Load() (*Config, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	config, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", l.path, err)
	}

	slog.Debug("Configuration loaded", "path", l.path, "users", len(config.Users), "host", config.Portal.Host)

	return config, nil
}

// Parse decodes YAML data into a defaulted and validated Config
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	setDefaults(&config)

	if err := validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults applies default values to configuration
func setDefaults(config *Config) {
	if config.Portal.Timezone == "" {
		config.Portal.Timezone = DefaultTimezone
	}
	if config.Portal.DateFormat == "" {
		config.Portal.DateFormat = DefaultDateFormat
	}
	if config.Portal.LoginMarker == "" {
		config.Portal.LoginMarker = DefaultLoginMarker
	}
	if config.Portal.OwnShiftMarker == "" {
		config.Portal.OwnShiftMarker = DefaultOwnShiftMarker
	}
	if config.Portal.Timeout == 0 {
		config.Portal.Timeout = 30 // seconds
	}
	config.Portal.Host = strings.TrimRight(config.Portal.Host, "/")

	if config.OutputDir == "" {
		config.OutputDir = DefaultOutputDir
	}
	if config.FeedPrefix == "" {
		config.FeedPrefix = DefaultFeedPrefix
	}

	for i := range config.Users {
		if config.Users[i].ShiftName == "" {
			config.Users[i].ShiftName = DefaultShiftName
		}
	}
}

// validate validates the configuration
func validate(config *Config) error {
	requiredFields := map[string]string{
		"portal host":            config.Portal.Host,
		"portal shift list page": config.Portal.Pages.ShiftList,
		"portal shift page":      config.Portal.Pages.Shift,
	}

	for fieldName, fieldValue := range requiredFields {
		if fieldValue == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
	}

	if err := validateURL(config.Portal.Host); err != nil {
		return fmt.Errorf("invalid portal host: %w", err)
	}

	if config.Portal.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative")
	}

	if _, err := time.LoadLocation(config.Portal.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", config.Portal.Timezone, err)
	}

	if len(config.Users) == 0 {
		return fmt.Errorf("at least one user is required")
	}

	seen := make(map[string]bool)
	for i, user := range config.Users {
		if err := validateUser(user); err != nil {
			return fmt.Errorf("users[%d]: %w", i, err)
		}
		if seen[user.Name] {
			return fmt.Errorf("users[%d]: duplicate user name %q", i, user.Name)
		}
		seen[user.Name] = true
	}

	return nil
}

func validateUser(user User) error {
	requiredFields := map[string]string{
		"user name": user.Name,
		"username":  user.Username,
		"password":  user.Password,
	}

	for fieldName, fieldValue := range requiredFields {
		if fieldValue == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
	}

	if strings.ContainsAny(user.Name, `/\`) || user.Name == "." || user.Name == ".." {
		return fmt.Errorf("user name %q cannot be used as a file name", user.Name)
	}

	for i, feed := range user.Feeds {
		if feed.Name == "" {
			return fmt.Errorf("feeds[%d]: feed name is required", i)
		}
		if feed.URL == "" {
			return fmt.Errorf("feeds[%d]: feed URL is required", i)
		}
		if err := validateURL(feed.URL); err != nil {
			return fmt.Errorf("feeds[%d]: invalid feed URL: %w", i, err)
		}
	}

	return nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}
