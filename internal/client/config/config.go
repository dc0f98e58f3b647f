package config

import "time"

// Config holds runtime settings for the gatekeeper CLI.
type Config struct {
	ServerEndpointAddr string
	SessionDB          string
	RequestTimeout     time.Duration
	RenewBefore        time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.SessionDB = "session.db"
	c.RequestTimeout = 10 * time.Second
	c.RenewBefore = 72 * time.Hour
}

// LoadConfig applies defaults, then the JSON file (if any), then flags.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
