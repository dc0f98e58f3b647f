package httpapi

import (
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/server/identity"
	"github.com/gin-gonic/gin"
)

// SignUpRequest is the body of POST /user.
type SignUpRequest struct {
	UserName     string `json:"username" binding:"required"`
	Email        string `json:"email" binding:"required"`
	PasswordHash []byte `json:"password_hash" binding:"required"`
}

func (s *Server) signUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, fmt.Errorf("%w: %v", common.ErrValidation, err))
		return
	}

	if _, err := s.auth.SignUp(c.Request.Context(), req.UserName, req.Email, req.PasswordHash); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (s *Server) verifyEmail(c *gin.Context) {
	if err := s.auth.VerifyEmail(c.Request.Context(), c.Param("id"), c.Param("token")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// getUser shows the full profile to its owner and the public one to others.
func (s *Server) getUser(c *gin.Context) {
	u, err := s.auth.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u.ViewFor(identity.UserID(c.Request.Context())))
}

func (s *Server) avatarUpload(c *gin.Context) {
	p, err := s.avatars.AvatarUpload(c.Request.Context(), identity.UserID(c.Request.Context()))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) avatarDownload(c *gin.Context) {
	u, err := s.auth.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	p, err := s.avatars.AvatarDownload(c.Request.Context(), u.ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
