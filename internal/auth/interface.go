package auth

import "lexdesk/internal/domain/models"

// JWTVerifier validates bearer tokens.
// The middleware only depends on this interface, so tests can swap in a static verifier.
type JWTVerifier interface {
	// VerifyToken validates a JWT and returns its claims.
	// Invalid, expired or wrongly signed tokens fail with domain.ErrUnauthorized.
	VerifyToken(tokenString string) (*models.Claims, error)

	// Close releases any resources held by the verifier
	Close() error
}
