package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"huddle_backend/internal/auth"
	"huddle_backend/pkg/apperrors"
)

const identityKey = "identity"

// Auth verifies the bearer token and stores the caller's identity on the
// request context.
func Auth(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("Missing bearer token"))
			return
		}

		identity, err := tokens.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// CurrentIdentity returns the authenticated identity set by Auth. It
// panics if called on an unprotected route, which is a wiring bug.
func CurrentIdentity(c *gin.Context) *auth.Identity {
	value, ok := c.Get(identityKey)
	if !ok {
		panic("middleware: CurrentIdentity called without Auth")
	}
	return value.(*auth.Identity)
}
