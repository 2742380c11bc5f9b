package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aosagula/adm/internal/domain"
	"github.com/gofiber/fiber/v3"
)

// JWTConfig holds JWT middleware configuration.
type JWTConfig struct {
	Secret    string
	Issuer    string
	ExpiresIn time.Duration
}

// JWTMiddleware creates a Fiber middleware that validates JWT bearer tokens
// and injects a Principal into the request context.
func JWTMiddleware(cfg JWTConfig) fiber.Handler {
	return func(c fiber.Ctx) error {
		var token string

		authHeader := c.Get("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
				token = parts[1]
			}
		}

		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing authorization",
			})
		}

		claims, err := ParseToken(token, cfg.Secret, cfg.Issuer)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		c.Locals("principal", &domain.Principal{
			UserID:         claims.Subject,
			Email:          claims.Email,
			OrganizationID: claims.OrganizationID,
			Permissions:    claims.Permissions,
		})

		return c.Next()
	}
}

// GetPrincipal extracts the authenticated Principal from Fiber locals.
func GetPrincipal(c fiber.Ctx) *domain.Principal {
	p, ok := c.Locals("principal").(*domain.Principal)
	if !ok {
		return nil
	}
	return p
}

// --- JWT Claims & Helpers ---

// Claims represents the JWT payload.
type Claims struct {
	Subject        string   `json:"sub"`
	Email          string   `json:"email"`
	OrganizationID string   `json:"org"`
	Permissions    []string `json:"perms,omitempty"`
	Issuer         string   `json:"iss"`
	IssuedAt       int64    `json:"iat"`
	ExpiresAt      int64    `json:"exp"`
}

// GenerateToken creates a new signed JWT for the given user.
func GenerateToken(user *domain.User, cfg JWTConfig) (string, error) {
	now := time.Now()
	claims := Claims{
		Subject:        user.ID,
		Email:          user.Email,
		OrganizationID: user.OrganizationID,
		Permissions:    user.Permissions(),
		Issuer:         cfg.Issuer,
		IssuedAt:       now.Unix(),
		ExpiresAt:      now.Add(cfg.ExpiresIn).Unix(),
	}

	header := map[string]string{"alg": "HS256", "typ": "JWT"}
	headerJSON, _ := json.Marshal(header)
	claimsJSON, _ := json.Marshal(claims)

	headerB64 := base64.RawURLEncoding.EncodeToString(headerJSON)
	claimsB64 := base64.RawURLEncoding.EncodeToString(claimsJSON)

	signingInput := headerB64 + "." + claimsB64
	signature := signHS256(signingInput, cfg.Secret)

	return signingInput + "." + signature, nil
}

// ParseToken verifies the signature, expiration and issuer of a token and
// returns its claims.
func ParseToken(tokenStr, secret, expectedIssuer string) (*Claims, error) {
	parts := strings.Split(tokenStr, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("invalid token format")
	}

	// Verify signature
	signingInput := parts[0] + "." + parts[1]
	expectedSig := signHS256(signingInput, secret)
	if !hmac.Equal([]byte(parts[2]), []byte(expectedSig)) {
		return nil, fmt.Errorf("invalid token signature")
	}

	// Decode claims
	claimsJSON, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("invalid token encoding")
	}

	var claims Claims
	if err := json.Unmarshal(claimsJSON, &claims); err != nil {
		return nil, fmt.Errorf("invalid token claims")
	}

	// Validate expiration
	if time.Now().Unix() > claims.ExpiresAt {
		return nil, fmt.Errorf("token expired")
	}

	// Validate issuer
	if claims.Issuer != expectedIssuer {
		return nil, fmt.Errorf("invalid token issuer")
	}

	return &claims, nil
}

func signHS256(input, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(input))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
