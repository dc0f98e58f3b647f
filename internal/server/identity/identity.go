// Package identity carries the resolved bearer token through a request.
package identity

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
)

type ctxKey struct{}

// WithToken attaches t to ctx.
func WithToken(ctx context.Context, t *models.Token) context.Context {
	return context.WithValue(ctx, ctxKey{}, t)
}

// Token returns the token attached by the auth middleware, if any.
func Token(ctx context.Context) (*models.Token, bool) {
	t, ok := ctx.Value(ctxKey{}).(*models.Token)
	return t, ok && t != nil
}

// UserID returns the owner of the attached token or "".
func UserID(ctx context.Context) string {
	if t, ok := Token(ctx); ok {
		return t.UserID
	}
	return ""
}

// EncodeToken is the wire form of a token value in the token header.
func EncodeToken(value []byte) string {
	return base64.StdEncoding.EncodeToString(value)
}

// DecodeToken reads a token header value, with or without a "Bearer "
// prefix.
func DecodeToken(header string) ([]byte, error) {
	header = strings.TrimSpace(header)
	if rest, ok := strings.CutPrefix(header, "Bearer "); ok {
		header = strings.TrimSpace(rest)
	}
	if header == "" {
		return nil, common.ErrorUnauthorized
	}
	value, err := base64.StdEncoding.DecodeString(header)
	if err != nil {
		return nil, fmt.Errorf("%w: token is not base64", common.ErrorUnauthorized)
	}
	return value, nil
}
