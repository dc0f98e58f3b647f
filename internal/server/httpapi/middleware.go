package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/logging"
	"github.com/dmitrijs2005/gatekeeper/internal/server/identity"
	"github.com/dmitrijs2005/gatekeeper/internal/server/ratelimit"
	"github.com/gin-gonic/gin"
)

const tokenKey = "token"

// maxBodyBytes caps JSON request bodies. Sign-in and sign-up payloads are a
// few hundred bytes.
const maxBodyBytes = 4 << 10

var retryAfter = map[ratelimit.Window]int{
	ratelimit.WindowMinute: 60,
	ratelimit.WindowHour:   3600,
	ratelimit.WindowDay:    86400,
}

// RateLimit admits or rejects a request by the address of the connection.
// Forwarding headers are ignored so clients cannot pick their own bucket.
func RateLimit(limiter Admitter, logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		addr := c.RemoteIP()
		d := limiter.Allow(addr)
		if !d.Allowed {
			logger.Info(c.Request.Context(), "rate limited", "remote", addr, "window", string(d.Exceeded))
			c.Header("Retry-After", strconv.Itoa(retryAfter[d.Exceeded]))
			abortWithError(c, common.ErrRateLimited)
			return
		}
		c.Next()
	}
}

// RequireToken resolves the token header (or Authorization: Bearer) and
// attaches it to the request. Missing, unknown and expired tokens get 401.
func RequireToken(tokens TokenResolver, logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(common.TokenHeaderName)
		if header == "" {
			header = c.GetHeader("Authorization")
		}

		raw, err := identity.DecodeToken(header)
		if err != nil {
			abortWithError(c, common.ErrorUnauthorized)
			return
		}

		t, err := tokens.Resolve(c.Request.Context(), raw)
		if err != nil {
			logger.Debug(c.Request.Context(), "token rejected", "error", err)
			abortWithError(c, err)
			return
		}

		c.Set(tokenKey, t)
		c.Request = c.Request.WithContext(identity.WithToken(c.Request.Context(), t))
		c.Next()
	}
}

// LimitBody rejects request bodies larger than n bytes while they are read.
func LimitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > n {
			abortWithError(c, fmt.Errorf("%w: request body larger than %d bytes", common.ErrValidation, n))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}
