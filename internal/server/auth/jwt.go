// Package auth signs and checks the links sent in verification e-mails.
package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// ErrLinkExpired is returned for a well-signed link past its expiry.
var ErrLinkExpired = fmt.Errorf("verification link expired: %w", common.ErrInvalidToken)

// VerificationClaims ties a link to one pending sign-up. Nonce must match the
// nonce stored with the pending row, so a reissued sign-up invalidates older
// links.
type VerificationClaims struct {
	jwt.RegisteredClaims
	PendingID string `json:"pid"`
	Nonce     string `json:"nonce"`
}

// Verification is the decoded content of a valid link.
type Verification struct {
	PendingID string
	Nonce     []byte
}

// GenerateVerificationToken signs a link for pendingID valid until expiry.
func GenerateVerificationToken(pendingID string, nonce []byte, secretKey []byte, expiry time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, VerificationClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   pendingID,
			ExpiresAt: jwt.NewNumericDate(expiry),
		},
		PendingID: pendingID,
		Nonce:     base64.RawURLEncoding.EncodeToString(nonce),
	})

	return token.SignedString(secretKey)
}

// ParseVerificationToken checks signature and expiry against now.
func ParseVerificationToken(tokenString string, secretKey []byte, now time.Time) (*Verification, error) {
	claims := &VerificationClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) { return secretKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrLinkExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if !token.Valid || claims.PendingID == "" {
		return nil, common.ErrInvalidToken
	}

	nonce, err := base64.RawURLEncoding.DecodeString(claims.Nonce)
	if err != nil {
		return nil, fmt.Errorf("%w: bad nonce", common.ErrInvalidToken)
	}

	return &Verification{PendingID: claims.PendingID, Nonce: nonce}, nil
}
