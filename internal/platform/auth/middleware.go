package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ridloal/e-commerce-checkout/internal/user/domain"
)

const principalKey = "auth.principal"

// Gate is the gin side of the authorization gate.
type Gate struct {
	tokens *TokenManager
}

func NewGate(tokens *TokenManager) *Gate {
	return &Gate{tokens: tokens}
}

// Authenticate rejects requests without a valid "Authorization: Bearer <token>" header.
func (g *Gate) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString := ""
		if len(header) > len("Bearer ") && strings.EqualFold(header[:len("Bearer ")], "bearer ") {
			tokenString = strings.TrimSpace(header[len("Bearer "):])
		}

		principal, err := g.tokens.Parse(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.Set(principalKey, principal)
		c.Next()
	}
}

// RequireRole must run after Authenticate.
func (g *Gate) RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := PrincipalFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": ErrMissingToken.Error()})
			return
		}
		for _, role := range roles {
			if principal.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
	}
}

func PrincipalFrom(c *gin.Context) (domain.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return domain.Principal{}, false
	}
	p, ok := v.(domain.Principal)
	return p, ok
}
