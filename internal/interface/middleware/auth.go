package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/users-api/internal/application"
	"github.com/oksasatya/users-api/pkg/response"
)

// CtxAuthEmailKey holds the authenticated email for downstream handlers.
const CtxAuthEmailKey = "authEmail"

const unauthorizedDetail = "Could not validate credentials"

// TokenAuthenticator is satisfied by *application.AuthService.
type TokenAuthenticator interface {
	Authenticate(token string) (application.Identity, error)
}

// Auth requires an "Authorization: Bearer <token>" header carrying a valid
// access token. It sets authEmail in the Gin context on success.
func Auth(auth TokenAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthorized(c, "Not authenticated")
			return
		}
		id, err := auth.Authenticate(token)
		if err != nil {
			abortUnauthorized(c, unauthorizedDetail)
			return
		}
		c.Set(CtxAuthEmailKey, id.Email)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func abortUnauthorized(c *gin.Context, detail string) {
	c.Header("WWW-Authenticate", "Bearer")
	response.Error(c, http.StatusUnauthorized, detail, nil)
}
