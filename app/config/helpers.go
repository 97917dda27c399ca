package config

import (
	"time"
)

// GetTimeout returns the per-request timeout as time.Duration
func (p *Portal) GetTimeout() time.Duration {
	if p.Timeout <= 0 {
		return 30 * time.Second // default 30 seconds
	}
	return time.Duration(p.Timeout) * time.Second
}

// GetLocation returns the portal timezone, falling back to UTC
func (p *Portal) GetLocation() *time.Location {
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// FeedLabel returns the shift name used for events of the given feed
func (c *Config) FeedLabel(feed Feed) string {
	return c.FeedPrefix + feed.Name
}

// GetUser returns the user with the given name
func (c *Config) GetUser(name string) (User, bool) {
	for _, user := range c.Users {
		if user.Name == name {
			return user, true
		}
	}
	return User{}, false
}
