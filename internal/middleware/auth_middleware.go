package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	apperrors "portfolio-analytics/internal/errors"
)

type AuthMiddleware struct {
	secretKey []byte
	issuer    string
	skipPaths map[string]bool
}

type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type AuthConfig struct {
	SecretKey string
	Issuer    string
	SkipPaths []string
}

func NewAuthMiddleware(config *AuthConfig) *AuthMiddleware {
	skipPaths := make(map[string]bool)
	for _, path := range config.SkipPaths {
		skipPaths[path] = true
	}

	return &AuthMiddleware{
		secretKey: []byte(config.SecretKey),
		issuer:    config.Issuer,
		skipPaths: skipPaths,
	}
}

func (a *AuthMiddleware) ValidateToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if a.skipPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "AUTH_MISSING", "Authorization header is required")
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			abortUnauthorized(c, "AUTH_INVALID_FORMAT", "Authorization header must be in 'Bearer <token>' format")
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if tokenString == "" {
			abortUnauthorized(c, "AUTH_EMPTY_TOKEN", "Token cannot be empty")
			return
		}

		claims, err := a.parseToken(tokenString)
		if err != nil {
			abortUnauthorized(c, "AUTH_INVALID_TOKEN", "Invalid or expired token")
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)
		c.Set("user_role", claims.Role)
		c.Set("token_claims", claims)

		c.Next()
	}
}

// parseToken verifies the HMAC signature and the registered claims.
// Expiry and not-before are checked by the parser.
func (a *AuthMiddleware) parseToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"})}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secretKey, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// abortUnauthorized answers with ErrUnauthorized, narrowed to the failing check
func abortUnauthorized(c *gin.Context, code, message string) {
	appErr := apperrors.WithMessage(apperrors.ErrUnauthorized, message)
	appErr.Code = code
	c.AbortWithStatusJSON(appErr.StatusCode, gin.H{"error": appErr})
}
