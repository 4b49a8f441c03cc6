package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/jengzang/expense-audit-go/pkg/response"
)

// contextUserKey is where the authenticated subject lands in the gin context.
const contextUserKey = "auth_user"

// Claims are the JWT claims expected on mutating endpoints.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

// AuthRequired validates a Bearer token signed with the shared secret and
// stores the subject in the request context.
func AuthRequired(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		tokenStr, found := strings.CutPrefix(header, "Bearer ")
		if !found {
			response.Unauthorized(c, "authorization header must be a bearer token")
			c.Abort()
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return key, nil
		})
		if err != nil || !token.Valid {
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}

		c.Set(contextUserKey, claims.Subject)
		c.Next()
	}
}

// AuthUser returns the authenticated subject, if any.
func AuthUser(c *gin.Context) (string, bool) {
	user, ok := c.Get(contextUserKey)
	if !ok {
		return "", false
	}
	s, ok := user.(string)
	return s, ok
}
