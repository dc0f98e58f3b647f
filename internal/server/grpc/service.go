package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
)

const ServiceName = "gatekeeper.v1.Gatekeeper"

const (
	MethodSignIn   = "/" + ServiceName + "/SignIn"
	MethodSignUp   = "/" + ServiceName + "/SignUp"
	MethodRenew    = "/" + ServiceName + "/Renew"
	MethodValidate = "/" + ServiceName + "/Validate"
	// MethodAvatarUpload signs an object store PUT for the caller's avatar.
	MethodAvatarUpload = "/" + ServiceName + "/AvatarUpload"
)

// authenticated lists the methods that need a token in the metadata.
var authenticated = map[string]bool{
	MethodRenew:        true,
	MethodValidate:     true,
	MethodAvatarUpload: true,
}

type SignInRequest struct {
	Email        string `json:"email"`
	PasswordHash []byte `json:"password_hash"`
	AllowRenew   bool   `json:"allow_renew"`
}

type SignUpRequest struct {
	UserName     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash []byte `json:"password_hash"`
}

type TokenResponse struct {
	Token       []byte `json:"token"`
	TokenExpiry int64  `json:"token_expiry,omitempty"`
	Renewable   bool   `json:"renewable"`
}

type ValidateResponse struct {
	UserID string `json:"user_id"`
}

type AvatarUploadResponse struct {
	Key       string `json:"key"`
	URL       string `json:"url"`
	Method    string `json:"method"`
	ExpiresAt int64  `json:"expires_at"`
}

// GatekeeperServer is implemented by *GRPCServer.
type GatekeeperServer interface {
	SignIn(context.Context, *SignInRequest) (*TokenResponse, error)
	SignUp(context.Context, *SignUpRequest) (*emptypb.Empty, error)
	Renew(context.Context, *emptypb.Empty) (*TokenResponse, error)
	Validate(context.Context, *emptypb.Empty) (*ValidateResponse, error)
	AvatarUpload(context.Context, *emptypb.Empty) (*AvatarUploadResponse, error)
}

func unaryHandler[Req any, Resp any](method string, call func(GatekeeperServer, context.Context, *Req) (Resp, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(GatekeeperServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(GatekeeperServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*GatekeeperServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SignIn", Handler: unaryHandler(MethodSignIn, GatekeeperServer.SignIn)},
		{MethodName: "SignUp", Handler: unaryHandler(MethodSignUp, GatekeeperServer.SignUp)},
		{MethodName: "Renew", Handler: unaryHandler(MethodRenew, GatekeeperServer.Renew)},
		{MethodName: "Validate", Handler: unaryHandler(MethodValidate, GatekeeperServer.Validate)},
		{MethodName: "AvatarUpload", Handler: unaryHandler(MethodAvatarUpload, GatekeeperServer.AvatarUpload)},
	},
	Metadata: "gatekeeper/v1/gatekeeper",
}
