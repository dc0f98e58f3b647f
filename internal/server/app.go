// Package server wires the gatekeeper components together and runs the
// HTTP and gRPC transports until the process is signalled.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/gatekeeper/internal/logging"
	"github.com/dmitrijs2005/gatekeeper/internal/server/config"
	"github.com/dmitrijs2005/gatekeeper/internal/server/hasher"
	"github.com/dmitrijs2005/gatekeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/gatekeeper/internal/server/mail"
	"github.com/dmitrijs2005/gatekeeper/internal/server/objects"
	"github.com/dmitrijs2005/gatekeeper/internal/server/ratelimit"
	"github.com/dmitrijs2005/gatekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gatekeeper/internal/server/services"
	"github.com/dmitrijs2005/gatekeeper/internal/server/tokens"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/gatekeeper/internal/server/grpc"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	pool    *hasher.Pool
	limiter *ratelimit.Limiter
	auth    *services.AuthService
	tokens  *tokens.Service
	avatars httpapi.Avatars
}

// openDB is replaced in tests.
var openDB = repomanager.Open

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger, err := logging.New(logging.Options{Level: c.LogLevel, JSON: c.LogJSON})
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	db, err := openDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	app, err := newApp(ctx, c, logger, db, rm)
	if err != nil {
		db.Close()
		return nil, err
	}
	return app, nil
}

// newApp builds the services on top of an open database.
func newApp(ctx context.Context, c *config.Config, logger logging.Logger, db *sql.DB, rm repomanager.RepositoryManager) (*App, error) {

	pool, err := hasher.New(hasher.Params{
		Slots:          c.HasherSlots,
		MemoryKiB:      c.HasherMemoryKiB,
		Iterations:     c.HasherIterations,
		AcquireTimeout: c.HasherAcquireTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("hasher init error: %w", err)
	}

	limiter, err := ratelimit.New(c.RateLimits)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("rate limiter init error: %w", err)
	}

	policy := tokens.NewPolicy(c.TokenTTL)
	ts := tokens.NewService(db, rm, policy, logger)
	as := services.NewAuthService(db, rm, pool, policy, mail.NewLogSender(logger), c, logger)

	app := &App{config: c, logger: logger, db: db, pool: pool, limiter: limiter, auth: as, tokens: ts}

	if c.S3Bucket != "" {
		store, err := objects.New(ctx, c)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("object store init error: %w", err)
		}
		app.avatars = store
	}

	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves both transports until ctx is cancelled, a signal arrives or one
// of them fails. The hasher pool and the database are closed on return.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	httpSrv := httpapi.NewServer(app.config.EndpointAddrHTTP, app.auth, app.tokens, app.avatars, app.limiter, app.logger)
	grpcSrv := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.auth, app.tokens, app.avatars, app.limiter)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return httpSrv.Run(gctx) })
	g.Go(func() error { return grpcSrv.Run(gctx) })

	err := g.Wait()
	if err != nil {
		app.logger.Error(ctx, "server stopped", "error", err)
	}

	app.pool.Close()
	if cerr := app.db.Close(); cerr != nil {
		app.logger.Error(ctx, "db close error", "error", cerr)
	}

	app.logger.Info(ctx, "App stopped")
	return err
}
