package auth

import (
	"context"
	"errors"
	"testing"
)

func TestRequirePrincipal(t *testing.T) {
	if _, err := RequirePrincipal(context.Background()); !errors.Is(err, ErrNoPrincipal) {
		t.Fatalf("expected ErrNoPrincipal without identity, got %v", err)
	}

	ctx := WithPrincipal(context.Background(), ClaimFromRequest(""))
	if _, err := RequirePrincipal(ctx); !errors.Is(err, ErrNoPrincipal) {
		t.Fatalf("expected ErrNoPrincipal for empty name, got %v", err)
	}

	ctx = WithPrincipal(context.Background(), ClaimFromRequest("User1"))
	p, err := RequirePrincipal(ctx)
	if err != nil {
		t.Fatalf("RequirePrincipal: %v", err)
	}
	if p.Name != "User1" || p.Verified {
		t.Fatalf("unexpected principal: %+v", p)
	}
}
