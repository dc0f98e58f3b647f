package httpapi

import (
	"github.com/dmitrijs2005/gatekeeper/internal/server/apierr"
	"github.com/gin-gonic/gin"
)

func abortWithError(c *gin.Context, err error) {
	info := apierr.From(err)
	c.AbortWithStatusJSON(info.HTTPStatus, info)
}

// fail reports err to the client and logs anything the client is not told.
func (s *Server) fail(c *gin.Context, err error) {
	info := apierr.From(err)
	if info.Code == apierr.CodeInternal {
		s.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
	}
	c.AbortWithStatusJSON(info.HTTPStatus, info)
}
