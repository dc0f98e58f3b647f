package client

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/logging"
	gs "github.com/dmitrijs2005/gatekeeper/internal/server/grpc"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
	"github.com/dmitrijs2005/gatekeeper/internal/server/objects"
	"github.com/dmitrijs2005/gatekeeper/internal/server/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"
)

var serverToken = bytes.Repeat([]byte{4}, models.TokenSize)

type stubAuth struct{ signUpErr error }

func (s *stubAuth) SignIn(_ context.Context, email string, hash []byte, renewable bool) (*models.Token, error) {
	if email != "alice@example.com" || len(hash) != 64 {
		return nil, common.ErrAuthenticationFailed
	}
	exp := time.Unix(1_900_000_000, 0)
	return &models.Token{UserID: "alice", Value: serverToken, Expiry: &exp, Renewable: renewable}, nil
}

func (s *stubAuth) SignUp(context.Context, string, string, []byte) (string, error) {
	return "pending", s.signUpErr
}

func (s *stubAuth) VerifyEmail(context.Context, string, string) error { return nil }

func (s *stubAuth) GetUser(context.Context, string) (*models.User, error) {
	return nil, common.ErrorNotFound
}

type stubTokens struct{}

func (stubTokens) Resolve(_ context.Context, raw []byte) (*models.Token, error) {
	if !bytes.Equal(raw, serverToken) {
		return nil, common.ErrorUnauthorized
	}
	return &models.Token{UserID: "alice", Value: raw, Renewable: true}, nil
}

func (stubTokens) Renew(_ context.Context, userID string) (*models.Token, error) {
	return &models.Token{UserID: userID, Value: bytes.Repeat([]byte{5}, 64), Renewable: true}, nil
}

type stubAvatars struct{}

func (stubAvatars) AvatarUpload(_ context.Context, userID string) (*objects.Presigned, error) {
	return &objects.Presigned{Key: objects.AvatarKey(userID), URL: "https://s3/put", Method: "PUT", ExpiresAt: time.Unix(1_800_000_000, 0)}, nil
}

func (stubAvatars) AvatarDownload(context.Context, string) (*objects.Presigned, error) {
	return nil, common.ErrorNotFound
}

func newTestClient(t *testing.T, limits ratelimit.Limits) (*GRPCClient, *stubAuth) {
	t.Helper()

	lim, err := ratelimit.New(limits)
	require.NoError(t, err)
	auth := &stubAuth{}
	srv := gs.NewGRPCServer("", logging.Nop(), auth, stubTokens{}, stubAvatars{}, lim)

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = srv.Serve(ctx, lis) }()

	c, err := NewGatekeeperClient("passthrough:///bufnet", time.Second,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }))
	require.NoError(t, err)

	t.Cleanup(func() {
		c.Close()
		cancel()
	})
	return c, auth
}

func TestGRPCClient_SignInRenewValidate(t *testing.T) {
	c, _ := newTestClient(t, ratelimit.DefaultLimits())
	ctx := context.Background()

	tok, err := c.SignIn(ctx, "alice@example.com", make([]byte, 64), true)
	require.NoError(t, err)
	assert.Equal(t, serverToken, tok.Value)
	require.NotNil(t, tok.Expiry)
	assert.Equal(t, int64(1_900_000_000), tok.Expiry.Unix())

	uid, err := c.Validate(ctx, tok.Value)
	require.NoError(t, err)
	assert.Equal(t, "alice", uid)

	fresh, err := c.Renew(ctx, tok.Value)
	require.NoError(t, err)
	assert.Nil(t, fresh.Expiry)
	assert.True(t, fresh.Renewable)

	up, err := c.AvatarUpload(ctx, tok.Value)
	require.NoError(t, err)
	assert.Equal(t, "avatars/alice", up.Key)
	assert.Equal(t, "https://s3/put", up.URL)

	require.NoError(t, c.Ping(ctx))
}

func TestGRPCClient_ErrorMapping(t *testing.T) {
	c, auth := newTestClient(t, ratelimit.DefaultLimits())
	ctx := context.Background()

	_, err := c.SignIn(ctx, "mallory@example.com", make([]byte, 64), false)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = c.Validate(ctx, []byte("nope"))
	assert.ErrorIs(t, err, ErrUnauthorized)

	auth.signUpErr = common.ErrorAlreadyExists
	err = c.SignUp(ctx, "alice1", "alice@example.com", make([]byte, 64))
	assert.ErrorIs(t, err, ErrRejected)
}

func TestGRPCClient_RateLimited(t *testing.T) {
	c, _ := newTestClient(t, ratelimit.Limits{Minute: 1, Hour: 5, Day: 5})
	ctx := context.Background()

	_, err := c.Validate(ctx, serverToken)
	require.NoError(t, err)

	_, err = c.Validate(ctx, serverToken)
	assert.ErrorIs(t, err, ErrRateLimited)
}
