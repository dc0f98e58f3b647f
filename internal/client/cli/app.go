package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log"
	"os"

	"github.com/dmitrijs2005/gatekeeper/internal/client/client"
	"github.com/dmitrijs2005/gatekeeper/internal/client/config"
	"github.com/dmitrijs2005/gatekeeper/internal/client/services"
)

type App struct {
	config      *config.Config
	authService services.AuthService
	avatars     services.AvatarService
	email       string
	reader      *bufio.Reader
	out         io.Writer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	db, err := client.InitDatabase(ctx, c.SessionDB)
	if err != nil {
		log.Printf("error initializing database: %s", err.Error())
		return nil, err
	}

	apiClient, err := client.NewGatekeeperClient(c.ServerEndpointAddr, c.RequestTimeout)
	if err != nil {
		db.Close()
		return nil, err
	}

	as := services.NewAuthService(apiClient, db)

	return &App{
		config:      c,
		authService: as,
		avatars:     services.NewAvatarService(apiClient, as),
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
	}, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.authService.Close(ctx)

	a.restoreSession(ctx)

	printlnFn("Welcome to gatekeeper CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}

// restoreSession loads the saved session and renews it when it is about to
// expire.
func (a *App) restoreSession(ctx context.Context) {
	s, err := a.authService.Session(ctx)
	if err != nil {
		if !errors.Is(err, services.ErrNotSignedIn) {
			log.Printf("could not load session: %s", err.Error())
		}
		return
	}
	a.email = s.Email

	if s.Renewable && s.ExpiresWithin(timeNow(), a.config.RenewBefore) {
		if _, err := a.authService.Renew(ctx); err != nil {
			log.Printf("token renewal failed: %s", err.Error())
			return
		}
		log.Printf("token renewed")
	}
}

func (a *App) isSignedIn() bool {
	return a.email != ""
}

func (a *App) getStatus() string {
	if a.email == "" {
		return "(signed out)"
	}
	return "(" + a.email + ")"
}
