// Package config loads runtime configuration for the gatekeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string     address:port of the gRPC endpoint
//	-db string    path of the local session database
//	-t duration   per-request timeout
//	-r duration   renew the saved token when it expires within this window
//
// # JSON schema
//
// Durations are timex.Duration, so "3s" and integer nanoseconds both work:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "session_db": "session.db",
//	  "request_timeout": "10s",
//	  "renew_before": "72h"
//	}
package config
