package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"persona-agent/shared/models"
)

const (
	// InterServiceTokenHeader carries the inter-service JWT.
	InterServiceTokenHeader = "X-Internal-Service-Token"
	// ServiceIDKey is the gin context key holding the caller's service name.
	ServiceIDKey = "service_id"
)

// InterServiceTokenVerifier validates an inter-service token.
type InterServiceTokenVerifier interface {
	VerifyInterServiceToken(ctx context.Context, tokenString string) (*jwt.RegisteredClaims, error)
}

// InterServiceAuth rejects requests without a valid inter-service token.
// The token is read from X-Internal-Service-Token, or from a Bearer
// Authorization header when that is absent.
func InterServiceAuth(verifier InterServiceTokenVerifier, logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("InterServiceAuth")
	return func(c *gin.Context) {
		token := c.GetHeader(InterServiceTokenHeader)
		if token == "" {
			if bearer, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer "); ok {
				token = strings.TrimSpace(bearer)
			}
		}
		if token == "" {
			log.Warn("Missing inter-service token", zap.String("path", c.Request.URL.Path))
			abortUnauthorized(c, "Missing inter-service token")
			return
		}

		claims, err := verifier.VerifyInterServiceToken(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrTokenExpired):
				abortUnauthorized(c, "Inter-service token expired")
			case errors.Is(err, models.ErrTokenMalformed), errors.Is(err, models.ErrTokenInvalid):
				abortUnauthorized(c, "Invalid inter-service token")
			default:
				log.Error("Inter-service token verification failed", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{
					Code:    models.ErrCodeInternal,
					Message: "Token verification failed",
				})
			}
			return
		}

		c.Set(ServiceIDKey, claims.Subject)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Code: models.ErrCodeUnauthorized, Message: message})
}
