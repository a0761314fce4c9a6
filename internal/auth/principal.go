package auth

import (
	"context"
	"errors"
	"strings"
)

// ErrNoPrincipal is returned when an operation needs an identity and none was supplied.
var ErrNoPrincipal = errors.New("missing principal")

// Principal is the identity a request acts as.
//
// The wire protocol names the user on every request and never checks a password
// or token, so a Principal built from a request is a claim, not a proof: any peer
// can act as any username.
type Principal struct {
	Name string
	// Verified is false for identities taken verbatim from a request.
	Verified bool
}

type principalKey struct{}

// WithPrincipal stores the principal in context.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext retrieves the principal from context (if any).
func FromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}

// ClaimFromRequest builds the unverified identity named by a request.
func ClaimFromRequest(username string) *Principal {
	return &Principal{Name: username}
}

// RequirePrincipal ensures a principal with a non-empty name is present in context.
func RequirePrincipal(ctx context.Context) (*Principal, error) {
	p, ok := FromContext(ctx)
	if !ok || strings.TrimSpace(p.Name) == "" {
		return nil, ErrNoPrincipal
	}
	return p, nil
}
