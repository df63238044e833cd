// internal/auth/session.go
package auth

import (
	"crypto/ed25519"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	signingKey ed25519.PrivateKey
	verifyKey  ed25519.PublicKey

	// TokenTTL is the lifetime applied to issued tokens. Zero means tokens
	// never expire, which suits ephemeral guest sessions.
	TokenTTL time.Duration
)

func parseTokenTTL() {
	raw := os.Getenv("TOKEN_EXPIRE_TIME")
	if raw == "" || raw == "0" || raw == "never" {
		TokenTTL = 0
		return
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		fmt.Printf("failed to parse TOKEN_EXPIRE_TIME: %v\n", err)
		os.Exit(1)
	}
	TokenTTL = d
}

// Init generates a runtime ed25519 key pair. Tokens do not survive a
// restart, which matches the in-memory lifetime of rooms.
func Init() {
	var err error
	verifyKey, signingKey, err = ed25519.GenerateKey(nil)
	if err != nil {
		fmt.Printf("failed to generate ed25519 key pair: %v\n", err)
		os.Exit(1)
	}
	parseTokenTTL()
}

// InitFromPath loads a persistent ed25519 key pair from disk instead,
// letting sessions outlive a process restart.
func InitFromPath(privatePath, publicPath string) error {
	priv, err := os.ReadFile(privatePath)
	if err != nil {
		return fmt.Errorf("failed to read private key file: %w", err)
	}
	pub, err := os.ReadFile(publicPath)
	if err != nil {
		return fmt.Errorf("failed to read public key file: %w", err)
	}
	signingKey = ed25519.PrivateKey(priv)
	verifyKey = ed25519.PublicKey(pub)
	parseTokenTTL()
	return nil
}

// CreateJWT signs a token whose "sub" claim is the user ID.
func CreateJWT(userID string) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
	}
	if TokenTTL > 0 {
		claims["exp"] = time.Now().Add(TokenTTL).Unix()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(signingKey)
}

// AuthenticateJWT verifies a token string and returns its "sub" claim.
func AuthenticateJWT(tokenString string) (string, error) {
	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return verifyKey, nil
	})
	if err != nil {
		return "", fmt.Errorf("jwt parse error: %w", err)
	}
	if !t.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid jwt claims")
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return "", fmt.Errorf("missing sub in jwt")
	}
	return sub, nil
}
