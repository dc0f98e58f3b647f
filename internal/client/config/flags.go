package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/gatekeeper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
// Flags it does not know are filtered out with flagx.FilterArgs.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-db", "-t", "-r"})

	fs := flag.NewFlagSet("gatekeeper-cli", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port of the gRPC endpoint")
	fs.StringVar(&cfg.SessionDB, "db", cfg.SessionDB, "local session database")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "per-request timeout")
	fs.DurationVar(&cfg.RenewBefore, "r", cfg.RenewBefore, "renew the token when it expires within this window")

	return fs.Parse(args)
}
