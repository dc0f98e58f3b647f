// Package client talks to the gatekeeper gRPC endpoint and opens the local
// session database.
package client
