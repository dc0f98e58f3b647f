// Package tokens issues bearer tokens and resolves presented ones.
package tokens

import (
	"crypto/rand"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
)

// DefaultTTL is how long a sign-in token lives.
const DefaultTTL = 30 * 24 * time.Hour

// Policy decides what a new token looks like and whether one is still good.
type Policy struct {
	ttl  time.Duration
	now  func() time.Time
	rand io.Reader
}

// NewPolicy returns a Policy issuing tokens that expire after ttl. A zero
// ttl issues tokens that never expire.
func NewPolicy(ttl time.Duration) *Policy {
	return &Policy{ttl: ttl, now: time.Now, rand: rand.Reader}
}

func (p *Policy) TTL() time.Duration { return p.ttl }

// Now is the policy's clock.
func (p *Policy) Now() time.Time { return p.now() }

// Issue creates a token for userID with a fresh random value.
func (p *Policy) Issue(userID string, renewable bool) (*models.Token, error) {
	value := make([]byte, models.TokenSize)
	if _, err := io.ReadFull(p.rand, value); err != nil {
		return nil, fmt.Errorf("token entropy: %w", err)
	}

	t := &models.Token{UserID: userID, Value: value, Renewable: renewable}
	if p.ttl > 0 {
		exp := p.now().Add(p.ttl)
		t.Expiry = &exp
	}
	return t, nil
}

// Valid reports whether t can be used right now.
func (p *Policy) Valid(t *models.Token) bool {
	return t != nil && t.ValidAt(p.now())
}
