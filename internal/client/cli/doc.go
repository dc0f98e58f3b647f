// Package cli provides the interactive gatekeeper command-line client.
//
// It wires configuration, the local session database and the gRPC client,
// then runs a REPL. On start it renews a saved renewable token that is close
// to expiry.
package cli
