package httpapi

import (
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/server/identity"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
	"github.com/gin-gonic/gin"
)

// SignInRequest is the body of POST /token. PasswordHash is the client-side
// pre-hash, base64 in JSON.
type SignInRequest struct {
	Email        string `json:"email" binding:"required"`
	PasswordHash []byte `json:"password_hash" binding:"required"`
	AllowRenew   bool   `json:"allow_renew"`
}

// TokenResponse carries a new token. TokenExpiry is seconds since the epoch
// and is omitted for tokens that never expire.
type TokenResponse struct {
	Token       []byte `json:"token"`
	TokenExpiry int64  `json:"token_expiry,omitempty"`
	Renewable   bool   `json:"renewable"`
}

func newTokenResponse(t *models.Token) *TokenResponse {
	r := &TokenResponse{Token: t.Value, Renewable: t.Renewable}
	if t.Expiry != nil {
		r.TokenExpiry = t.Expiry.Unix()
	}
	return r
}

func (s *Server) signIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, fmt.Errorf("%w: %v", common.ErrValidation, err))
		return
	}

	t, err := s.auth.SignIn(c.Request.Context(), req.Email, req.PasswordHash, req.AllowRenew)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newTokenResponse(t))
}

// renew issues a fresh token. Only renewable tokens may ask.
func (s *Server) renew(c *gin.Context) {
	t, _ := identity.Token(c.Request.Context())
	if !t.Renewable {
		s.fail(c, common.ErrorForbidden)
		return
	}

	fresh, err := s.tokens.Renew(c.Request.Context(), t.UserID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newTokenResponse(fresh))
}

func (s *Server) validate(c *gin.Context) {
	c.Status(http.StatusOK)
}

func (s *Server) tokenUser(c *gin.Context) {
	u, err := s.auth.GetUser(c.Request.Context(), identity.UserID(c.Request.Context()))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u.PublicProfile())
}
