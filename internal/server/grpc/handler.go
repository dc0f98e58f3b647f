package grpc

import (
	"context"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/server/apierr"
	"github.com/dmitrijs2005/gatekeeper/internal/server/identity"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

// statusError converts a service error to a gRPC status.
func (s *GRPCServer) statusError(ctx context.Context, method string, err error) error {
	info := apierr.From(err)
	if info.Code == apierr.CodeInternal {
		s.logger.Error(ctx, "request failed", "method", method, "error", err)
	}
	msg := info.Message
	if msg == "" {
		msg = info.Code
	}
	return status.Error(info.GRPCCode, msg)
}

func tokenResponse(t *models.Token) *TokenResponse {
	r := &TokenResponse{Token: t.Value, Renewable: t.Renewable}
	if t.Expiry != nil {
		r.TokenExpiry = t.Expiry.Unix()
	}
	return r
}

func (s *GRPCServer) SignIn(ctx context.Context, req *SignInRequest) (*TokenResponse, error) {
	t, err := s.auth.SignIn(ctx, req.Email, req.PasswordHash, req.AllowRenew)
	if err != nil {
		return nil, s.statusError(ctx, MethodSignIn, err)
	}
	return tokenResponse(t), nil
}

func (s *GRPCServer) SignUp(ctx context.Context, req *SignUpRequest) (*emptypb.Empty, error) {
	if _, err := s.auth.SignUp(ctx, req.UserName, req.Email, req.PasswordHash); err != nil {
		return nil, s.statusError(ctx, MethodSignUp, err)
	}
	s.logger.Info(ctx, "Sign-up pending verification", "username", req.UserName)
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) Renew(ctx context.Context, _ *emptypb.Empty) (*TokenResponse, error) {
	t, ok := identity.Token(ctx)
	if !ok {
		return nil, s.statusError(ctx, MethodRenew, common.ErrorUnauthorized)
	}
	if !t.Renewable {
		return nil, s.statusError(ctx, MethodRenew, common.ErrorForbidden)
	}

	fresh, err := s.tokens.Renew(ctx, t.UserID)
	if err != nil {
		return nil, s.statusError(ctx, MethodRenew, err)
	}
	return tokenResponse(fresh), nil
}

func (s *GRPCServer) Validate(ctx context.Context, _ *emptypb.Empty) (*ValidateResponse, error) {
	return &ValidateResponse{UserID: identity.UserID(ctx)}, nil
}

func (s *GRPCServer) AvatarUpload(ctx context.Context, _ *emptypb.Empty) (*AvatarUploadResponse, error) {
	if s.avatars == nil {
		return nil, status.Error(codes.Unimplemented, "avatars are disabled")
	}
	p, err := s.avatars.AvatarUpload(ctx, identity.UserID(ctx))
	if err != nil {
		return nil, s.statusError(ctx, MethodAvatarUpload, err)
	}
	return &AvatarUploadResponse{Key: p.Key, URL: p.URL, Method: p.Method, ExpiresAt: p.ExpiresAt.Unix()}, nil
}
