package authutils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"persona-agent/shared/models"
)

// JWTVerifier checks HMAC-signed inter-service tokens.
type JWTVerifier struct {
	secret []byte
	logger *zap.Logger
}

// NewJWTVerifier creates a JWTVerifier. A nil logger is replaced by a no-op one.
func NewJWTVerifier(secret string, logger *zap.Logger) (*JWTVerifier, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: JWT secret cannot be empty", models.ErrConfig)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JWTVerifier{secret: []byte(secret), logger: logger.Named("JWTVerifier")}, nil
}

// VerifyInterServiceToken validates the signature and expiry of tokenString
// and returns its claims. The subject names the calling service.
func (v *JWTVerifier) VerifyInterServiceToken(ctx context.Context, tokenString string) (*jwt.RegisteredClaims, error) {
	log := v.logger.With(zap.String("tokenSnippet", tokenSnippet(tokenString)))
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			log.Warn("Unexpected signing method", zap.Any("alg", token.Header["alg"]))
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		log.Warn("Failed to parse or verify inter-service token", zap.Error(err))
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, models.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, models.ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, models.ErrTokenInvalid
		}
		return nil, fmt.Errorf("%w: %v", models.ErrTokenInvalid, err)
	}
	if !token.Valid {
		return nil, models.ErrTokenInvalid
	}
	if claims.Subject == "" {
		log.Warn("Inter-service token missing subject")
		return nil, fmt.Errorf("%w: subject missing", models.ErrTokenInvalid)
	}

	log.Debug("Inter-service token verified", zap.String("service", claims.Subject))
	return claims, nil
}

// GenerateInterServiceToken signs an HS256 token for serviceName that
// expires ttl after now.
func GenerateInterServiceToken(secret, issuer, serviceName string, ttl time.Duration, now time.Time) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("%w: JWT secret cannot be empty", models.ErrConfig)
	}
	if serviceName == "" {
		return "", fmt.Errorf("%w: service name is required", models.ErrInvalidInput)
	}
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   serviceName,
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ID:        uuid.NewString(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// tokenSnippet returns a prefix of the token that is safe to log.
func tokenSnippet(tokenString string) string {
	const limit = 15
	if len(tokenString) > limit {
		return tokenString[:limit] + "..."
	}
	return tokenString
}
