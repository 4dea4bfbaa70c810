package delivery

import (
	"net/http"
	"strings"

	authdomain "smartrfq/internal/auth/domain"
	"smartrfq/internal/auth/usecase"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Context keys set by AuthMiddleware.
const (
	UserKey   = "user"
	UserIDKey = "userID"
	OrgIDKey  = "orgID"
)

// AuthMiddleware verifies the bearer token and scopes the request to the
// caller's organization. Users without an organization work in a personal
// scope keyed by their user id. failures may be nil.
func AuthMiddleware(authUsecase usecase.AuthUsecase, failures prometheus.Counter) gin.HandlerFunc {
	reject := func(c *gin.Context, msg string) {
		if failures != nil {
			failures.Inc()
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
	}

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			reject(c, "authorization header required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			reject(c, "invalid authorization header format")
			return
		}

		user, err := authUsecase.ValidateToken(parts[1])
		if err != nil {
			reject(c, "invalid or expired token")
			return
		}

		c.Set(UserKey, user)
		c.Set(UserIDKey, user.ID)
		c.Set(OrgIDKey, Scope(user))
		c.Next()
	}
}

// Scope is the organization a user's data belongs to.
func Scope(user *authdomain.User) string {
	if user.OrgID != "" {
		return user.OrgID
	}
	return "user:" + user.ID
}

// CurrentUser returns the user stored by AuthMiddleware.
func CurrentUser(c *gin.Context) *authdomain.User {
	v, ok := c.Get(UserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*authdomain.User)
	return user
}
