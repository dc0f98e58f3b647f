package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/server/identity"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
)

// peerAddress is the host part of the connection's remote address.
func peerAddress(ctx context.Context) string {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return ""
	}
	addr := p.Addr.String()
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

func (s *GRPCServer) rateLimitInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	addr := peerAddress(ctx)
	if d := s.limiter.Allow(addr); !d.Allowed {
		s.logger.Info(ctx, "rate limited", "remote", addr, "window", string(d.Exceeded))
		return nil, s.statusError(ctx, info.FullMethod, common.ErrRateLimited)
	}
	return handler(ctx, req)
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	if !authenticated[info.FullMethod] {
		return handler(ctx, req)
	}

	var header string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(common.TokenHeaderName); len(values) > 0 {
			header = values[0]
		} else if values := md.Get("authorization"); len(values) > 0 {
			header = values[0]
		}
	}

	raw, err := identity.DecodeToken(header)
	if err != nil {
		return nil, s.statusError(ctx, info.FullMethod, err)
	}

	t, err := s.tokens.Resolve(ctx, raw)
	if err != nil {
		return nil, s.statusError(ctx, info.FullMethod, err)
	}

	return handler(identity.WithToken(ctx, t), req)
}
