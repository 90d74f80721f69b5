package providers

import (
	"context"
	"fmt"
)

var _ AuthProvider = &StaticAuthProvider{}

// StaticAuthProvider accepts a fixed set of tokens, each mapped to a user id.
// It is meant for local report servers and tests.
type StaticAuthProvider struct {
	tokens map[string]string
}

func NewStaticAuthProvider(tokens map[string]string) *StaticAuthProvider {
	copied := make(map[string]string, len(tokens))
	for token, uid := range tokens {
		copied[token] = uid
	}
	return &StaticAuthProvider{
		tokens: copied,
	}
}

func (p *StaticAuthProvider) VerifyToken(ctx context.Context, idToken string) (*TokenClaims, error) {
	uid, ok := p.tokens[idToken]
	if !ok || idToken == "" {
		return nil, fmt.Errorf("unknown token")
	}
	return &TokenClaims{
		UID: uid,
	}, nil
}
