// Package common contains shared constants, sentinel errors and small helpers
// used across gatekeeper components.
package common

// TokenHeaderName is the HTTP header and gRPC metadata key carrying the
// base64-encoded bearer token.
const TokenHeaderName = "token"

// MaxEmailLength is the longest e-mail address accepted on sign-in and sign-up.
const MaxEmailLength = 128
