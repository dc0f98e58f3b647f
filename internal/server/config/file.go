package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/gatekeeper/internal/server/ratelimit"
	"github.com/dmitrijs2005/gatekeeper/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of Config. Durations accept "90s" style
// strings or integer nanoseconds.
type FileConfig struct {
	EndpointAddrHTTP     string           `json:"endpoint_addr_http" yaml:"endpoint_addr_http"`
	EndpointAddrGRPC     string           `json:"endpoint_addr_grpc" yaml:"endpoint_addr_grpc"`
	DatabaseDSN          string           `json:"database_dsn" yaml:"database_dsn"`
	SecretKey            string           `json:"secret_key" yaml:"secret_key"`
	PublicURL            string           `json:"public_url" yaml:"public_url"`
	TokenTTL             timex.Duration   `json:"token_ttl" yaml:"token_ttl"`
	SignInPadding        timex.Duration   `json:"sign_in_padding" yaml:"sign_in_padding"`
	PendingUserTTL       timex.Duration   `json:"pending_user_ttl" yaml:"pending_user_ttl"`
	HasherSlots          int              `json:"hasher_slots" yaml:"hasher_slots"`
	HasherMemoryKiB      uint32           `json:"hasher_memory_kib" yaml:"hasher_memory_kib"`
	HasherIterations     uint32           `json:"hasher_iterations" yaml:"hasher_iterations"`
	HasherAcquireTimeout timex.Duration   `json:"hasher_acquire_timeout" yaml:"hasher_acquire_timeout"`
	RateLimits           ratelimit.Limits `json:"rate_limits" yaml:"rate_limits"`
	S3RootUser           string           `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword       string           `json:"s3_root_password" yaml:"s3_root_password"`
	S3Bucket             string           `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region             string           `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint       string           `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	PresignTTL           timex.Duration   `json:"presign_ttl" yaml:"presign_ttl"`
	LogLevel             string           `json:"log_level" yaml:"log_level"`
	LogJSON              bool             `json:"log_json" yaml:"log_json"`
}

func toFile(c *Config) *FileConfig {
	return &FileConfig{
		EndpointAddrHTTP:     c.EndpointAddrHTTP,
		EndpointAddrGRPC:     c.EndpointAddrGRPC,
		DatabaseDSN:          c.DatabaseDSN,
		SecretKey:            c.SecretKey,
		PublicURL:            c.PublicURL,
		TokenTTL:             timex.Duration{Duration: c.TokenTTL},
		SignInPadding:        timex.Duration{Duration: c.SignInPadding},
		PendingUserTTL:       timex.Duration{Duration: c.PendingUserTTL},
		HasherSlots:          c.HasherSlots,
		HasherMemoryKiB:      c.HasherMemoryKiB,
		HasherIterations:     c.HasherIterations,
		HasherAcquireTimeout: timex.Duration{Duration: c.HasherAcquireTimeout},
		RateLimits:           c.RateLimits,
		S3RootUser:           c.S3RootUser,
		S3RootPassword:       c.S3RootPassword,
		S3Bucket:             c.S3Bucket,
		S3Region:             c.S3Region,
		S3BaseEndpoint:       c.S3BaseEndpoint,
		PresignTTL:           timex.Duration{Duration: c.PresignTTL},
		LogLevel:             c.LogLevel,
		LogJSON:              c.LogJSON,
	}
}

func (f *FileConfig) apply(c *Config) {
	c.EndpointAddrHTTP = f.EndpointAddrHTTP
	c.EndpointAddrGRPC = f.EndpointAddrGRPC
	c.DatabaseDSN = f.DatabaseDSN
	c.SecretKey = f.SecretKey
	c.PublicURL = f.PublicURL
	c.TokenTTL = f.TokenTTL.Duration
	c.SignInPadding = f.SignInPadding.Duration
	c.PendingUserTTL = f.PendingUserTTL.Duration
	c.HasherSlots = f.HasherSlots
	c.HasherMemoryKiB = f.HasherMemoryKiB
	c.HasherIterations = f.HasherIterations
	c.HasherAcquireTimeout = f.HasherAcquireTimeout.Duration
	c.RateLimits = f.RateLimits
	c.S3RootUser = f.S3RootUser
	c.S3RootPassword = f.S3RootPassword
	c.S3Bucket = f.S3Bucket
	c.S3Region = f.S3Region
	c.S3BaseEndpoint = f.S3BaseEndpoint
	c.PresignTTL = f.PresignTTL.Duration
	c.LogLevel = f.LogLevel
	c.LogJSON = f.LogJSON
}

// parseFile overlays the file at path onto config. Keys missing from the
// file keep their current value. Files ending in .yaml or .yml are read as
// YAML, everything else as JSON.
func parseFile(config *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	fc := toFile(config)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, fc)
	default:
		err = json.Unmarshal(data, fc)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	fc.apply(config)
	return nil
}
