package providers

import "context"

// AuthProvider verifies the bearer tokens presented to the report service.
type AuthProvider interface {
	VerifyToken(ctx context.Context, idToken string) (*TokenClaims, error)
}

type TokenClaims struct {
	UID string `json:"uid"`
}
