package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gatekeeper/internal/flagx"
	"github.com/dmitrijs2005/gatekeeper/internal/timex"
)

// JSONConfig is a DTO used exclusively for JSON unmarshalling.
type JSONConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	SessionDB          string         `json:"session_db"`
	RequestTimeout     timex.Duration `json:"request_timeout"`
	RenewBefore        timex.Duration `json:"renew_before"`
}

// parseJSON overlays cfg with the file named by -c / -config. Keys missing
// from the file keep their current values.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	jc := JSONConfig{
		ServerEndpointAddr: cfg.ServerEndpointAddr,
		SessionDB:          cfg.SessionDB,
		RequestTimeout:     timex.Duration{Duration: cfg.RequestTimeout},
		RenewBefore:        timex.Duration{Duration: cfg.RenewBefore},
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	cfg.SessionDB = jc.SessionDB
	cfg.RequestTimeout = jc.RequestTimeout.Duration
	cfg.RenewBefore = jc.RenewBefore.Duration
	return nil
}
