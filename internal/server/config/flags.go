package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/gatekeeper/internal/flagx"
)

var knownFlags = []string{
	"-a", "-g", "-d", "-s", "-u", "-t", "-pad", "-pending-ttl",
	"-k", "-m", "-i", "-w",
	"-rate-minute", "-rate-hour", "-rate-day",
	"-s3-user", "-s3-password", "-s3-bucket", "-s3-region", "-s3-endpoint", "-presign-ttl",
	"-l", "-log-json",
}

// parseFlags overlays command-line flags onto config.
//
//	-a string          HTTP bind address (":8080")
//	-g string          gRPC bind address (":50051")
//	-d string          PostgreSQL DSN
//	-s string          secret for verification links
//	-u string          public base URL used in e-mails
//	-t duration        bearer token lifetime, 0 = never expires
//	-pad duration      sign-in failure padding
//	-pending-ttl       how long a sign-up waits for verification
//	-k int             hasher slots
//	-m uint            hasher memory per slot, KiB
//	-i uint            hasher iterations
//	-w duration        max wait for a hasher slot, 0 = fail fast
//	-rate-minute/-rate-hour/-rate-day int
//	-s3-user, -s3-password, -s3-bucket, -s3-region, -s3-endpoint string
//	-presign-ttl       lifetime of presigned avatar URLs
//	-l string          log level
//	-log-json          JSON log output
//
// Flags other components own are filtered out first with flagx.FilterArgs.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, knownFlags)

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.PublicURL, "u", config.PublicURL, "public base URL")
	fs.DurationVar(&config.TokenTTL, "t", config.TokenTTL, "token lifetime")
	fs.DurationVar(&config.SignInPadding, "pad", config.SignInPadding, "sign-in failure padding")
	fs.DurationVar(&config.PendingUserTTL, "pending-ttl", config.PendingUserTTL, "sign-up verification window")

	fs.IntVar(&config.HasherSlots, "k", config.HasherSlots, "hasher slots")
	memory := fs.Uint("m", uint(config.HasherMemoryKiB), "hasher memory per slot (KiB)")
	iterations := fs.Uint("i", uint(config.HasherIterations), "hasher iterations")
	fs.DurationVar(&config.HasherAcquireTimeout, "w", config.HasherAcquireTimeout, "hasher slot wait")

	fs.IntVar(&config.RateLimits.Minute, "rate-minute", config.RateLimits.Minute, "requests per minute")
	fs.IntVar(&config.RateLimits.Hour, "rate-hour", config.RateLimits.Hour, "requests per hour")
	fs.IntVar(&config.RateLimits.Day, "rate-day", config.RateLimits.Day, "requests per day")

	fs.StringVar(&config.S3RootUser, "s3-user", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "s3-password", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "s3-bucket", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "s3-region", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "s3-endpoint", config.S3BaseEndpoint, "S3 base endpoint")
	fs.DurationVar(&config.PresignTTL, "presign-ttl", config.PresignTTL, "presigned URL lifetime")

	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.BoolVar(&config.LogJSON, "log-json", config.LogJSON, "JSON logs")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	config.HasherMemoryKiB = uint32(*memory)
	config.HasherIterations = uint32(*iterations)
	return nil
}
