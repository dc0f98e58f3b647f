package client

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	gs "github.com/dmitrijs2005/gatekeeper/internal/server/grpc"
	"github.com/dmitrijs2005/gatekeeper/internal/server/identity"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	timeout     time.Duration
}

func withToken(ctx context.Context, token []byte) context.Context {
	return metadata.AppendToOutgoingContext(ctx, common.TokenHeaderName, identity.EncodeToken(token))
}

// NewGatekeeperClient dials lazily; the first call opens the connection.
func NewGatekeeperClient(endpointURL string, timeout time.Duration, opts ...grpc.DialOption) (*GRPCClient, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(gs.CodecName)),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, opts...)
	if err != nil {
		return nil, err
	}
	return &GRPCClient{endpointURL: endpointURL, conn: conn, timeout: timeout}, nil
}

func (s *GRPCClient) invoke(ctx context.Context, method string, req, resp any) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return s.mapError(s.conn.Invoke(ctx, method, req, resp))
}

func toToken(r *gs.TokenResponse) *Token {
	t := &Token{Value: r.Token, Renewable: r.Renewable}
	if r.TokenExpiry != 0 {
		exp := time.Unix(r.TokenExpiry, 0)
		t.Expiry = &exp
	}
	return t
}

func (s *GRPCClient) SignIn(ctx context.Context, email string, passwordHash []byte, allowRenew bool) (*Token, error) {
	var resp gs.TokenResponse
	req := &gs.SignInRequest{Email: email, PasswordHash: passwordHash, AllowRenew: allowRenew}
	if err := s.invoke(ctx, gs.MethodSignIn, req, &resp); err != nil {
		return nil, err
	}
	return toToken(&resp), nil
}

func (s *GRPCClient) SignUp(ctx context.Context, username, email string, passwordHash []byte) error {
	req := &gs.SignUpRequest{UserName: username, Email: email, PasswordHash: passwordHash}
	return s.invoke(ctx, gs.MethodSignUp, req, &emptypb.Empty{})
}

func (s *GRPCClient) Renew(ctx context.Context, token []byte) (*Token, error) {
	var resp gs.TokenResponse
	if err := s.invoke(withToken(ctx, token), gs.MethodRenew, &emptypb.Empty{}, &resp); err != nil {
		return nil, err
	}
	return toToken(&resp), nil
}

func (s *GRPCClient) Validate(ctx context.Context, token []byte) (string, error) {
	var resp gs.ValidateResponse
	if err := s.invoke(withToken(ctx, token), gs.MethodValidate, &emptypb.Empty{}, &resp); err != nil {
		return "", err
	}
	return resp.UserID, nil
}

func (s *GRPCClient) AvatarUpload(ctx context.Context, token []byte) (*Upload, error) {
	var resp gs.AvatarUploadResponse
	if err := s.invoke(withToken(ctx, token), gs.MethodAvatarUpload, &emptypb.Empty{}, &resp); err != nil {
		return nil, err
	}
	return &Upload{Key: resp.Key, URL: resp.URL, ExpiresAt: time.Unix(resp.ExpiresAt, 0)}, nil
}

// Ping asks the health service whether the gatekeeper service is serving.
func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := healthpb.NewHealthClient(s.conn).Check(ctx,
		&healthpb.HealthCheckRequest{Service: gs.ServiceName}, grpc.CallContentSubtype("proto"))
	if err != nil {
		return s.mapError(err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.PermissionDenied:
		return ErrForbidden
	case codes.ResourceExhausted:
		return ErrRateLimited
	case codes.Unimplemented:
		return fmt.Errorf("%w: %s", ErrRejected, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.InvalidArgument, codes.AlreadyExists, codes.FailedPrecondition, codes.NotFound:
		return fmt.Errorf("%w: %s", ErrRejected, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
