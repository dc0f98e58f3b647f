// Package httpapi is the HTTP transport of the server, built on gin.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/logging"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
	"github.com/dmitrijs2005/gatekeeper/internal/server/objects"
	"github.com/dmitrijs2005/gatekeeper/internal/server/ratelimit"
	"github.com/gin-gonic/gin"
)

// Authenticator is what the handlers need from services.AuthService.
type Authenticator interface {
	SignIn(ctx context.Context, email string, passwordHash []byte, renewable bool) (*models.Token, error)
	SignUp(ctx context.Context, username, email string, passwordHash []byte) (string, error)
	VerifyEmail(ctx context.Context, id, token string) error
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// TokenResolver is what the handlers need from tokens.Service.
type TokenResolver interface {
	Resolve(ctx context.Context, raw []byte) (*models.Token, error)
	Renew(ctx context.Context, userID string) (*models.Token, error)
}

// Avatars signs object store URLs. It may be nil, which disables the
// avatar routes.
type Avatars interface {
	AvatarUpload(ctx context.Context, userID string) (*objects.Presigned, error)
	AvatarDownload(ctx context.Context, userID string) (*objects.Presigned, error)
}

// Admitter decides whether a remote address may send another request.
type Admitter interface {
	Allow(addr string) ratelimit.Decision
}

type Server struct {
	address string
	auth    Authenticator
	tokens  TokenResolver
	avatars Avatars
	limiter Admitter
	logger  logging.Logger
}

func NewServer(address string, auth Authenticator, tokens TokenResolver, avatars Avatars, limiter Admitter, l logging.Logger) *Server {
	return &Server{
		address: address,
		auth:    auth,
		tokens:  tokens,
		avatars: avatars,
		limiter: limiter,
		logger:  l.With("module", "http_server"),
	}
}

// Router builds the gin engine. Every route is rate limited; the token
// routes except sign-in also require a valid token.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests(), RateLimit(s.limiter, s.logger))

	r.POST("/token", LimitBody(maxBodyBytes), s.signIn)
	r.POST("/user", LimitBody(maxBodyBytes), s.signUp)
	r.GET("/user/:id/verify/:token", s.verifyEmail)

	authed := r.Group("")
	authed.Use(RequireToken(s.tokens, s.logger))
	authed.GET("/token", s.renew)
	authed.GET("/token/validate", s.validate)
	authed.GET("/token/user", s.tokenUser)
	authed.GET("/user/:id", s.getUser)
	if s.avatars != nil {
		authed.GET("/avatar/upload", s.avatarUpload)
		authed.GET("/user/:id/avatar", s.avatarDownload)
	}

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

func (s *Server) Serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	stop := make(chan struct{})
	shutdownDone := make(chan error, 1)
	go func() {
		select {
		case <-ctx.Done():
		case <-stop:
			shutdownDone <- nil
			return
		}
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		shutdownDone <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	// Serve returns as soon as Shutdown starts; in-flight requests are only
	// done once Shutdown itself returns.
	if err := srv.Serve(listen); !errors.Is(err, http.ErrServerClosed) {
		close(stop)
		<-shutdownDone
		return err
	}
	if err := <-shutdownDone; err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"remote", c.RemoteIP(),
			"elapsed", time.Since(start))
	}
}
