package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bigjohnmusic/bigjohn-api/identity"
	"github.com/bigjohnmusic/bigjohn-api/utils"
)

const (
	// ContextUserIDKey is the key used to store the authenticated subject in Gin context.
	ContextUserIDKey = "user_id"
	// ContextEmailKey stores the authenticated email inside Gin context.
	ContextEmailKey = "email"
)

// AuthRequired ensures the request carries a bearer token the identity
// provider considers valid. This middleware is the real enforcement
// point; client-side route guards are cosmetic.
func AuthRequired(verifier identity.TokenVerifier) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token, ok := BearerToken(ctx)
		if !ok {
			utils.Message(ctx, http.StatusUnauthorized, "authorization header missing or malformed")
			ctx.Abort()
			return
		}

		claims, err := verifier.Verify(ctx.Request.Context(), token)
		if err != nil {
			utils.Message(ctx, http.StatusUnauthorized, "invalid token")
			ctx.Abort()
			return
		}

		ctx.Set(ContextUserIDKey, claims.Subject)
		ctx.Set(ContextEmailKey, claims.Email)
		ctx.Next()
	}
}

// BearerToken extracts the bearer token from the Authorization header.
func BearerToken(ctx *gin.Context) (string, bool) {
	authHeader := ctx.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// Subject returns the authenticated user id stored by AuthRequired.
func Subject(ctx *gin.Context) (string, bool) {
	value, exists := ctx.Get(ContextUserIDKey)
	if !exists {
		return "", false
	}
	s, ok := value.(string)
	return s, ok && s != ""
}
