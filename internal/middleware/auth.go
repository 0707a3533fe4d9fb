package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/foreningshub/backend/internal/auth"
	"github.com/foreningshub/backend/pkg/errors"
	"github.com/foreningshub/backend/pkg/response"
)

const (
	CtxClaimsKey = "authClaims"
	CtxUserIDKey = "userID"
)

// Auth enforces JWT authentication using the supplied JWT service.
func Auth(jwt *iauth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			unauthorized(c)
			return
		}

		claims, err := jwt.ValidateAccessToken(token)
		if err != nil {
			// All validation failures collapse to 401.
			c.Header("WWW-Authenticate", "Bearer")
			unauthorized(c)
			return
		}

		c.Set(CtxClaimsKey, claims)
		c.Set(CtxUserIDKey, claims.UserID)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	if len(header) < 8 || !strings.EqualFold(header[:7], "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[7:])
	return token, token != ""
}

func unauthorized(c *gin.Context) {
	response.Error(c, errors.ErrUnauthorized)
	c.Abort()
}
