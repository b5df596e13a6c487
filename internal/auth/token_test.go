package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ticketdesk/ticketdesk/internal/model"
)

func testUser() *model.User {
	return &model.User{ID: "01HX0000000000000000000001", Username: "alice", IsAdmin: true}
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer("secret", 0)
	token, err := issuer.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Fatalf("expected compact JWS, got %q", token)
	}

	got, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if got.UserID != testUser().ID || got.Username != "alice" || !got.IsAdmin {
		t.Errorf("unexpected identity: %+v", got)
	}
}

func TestTokenIssuer_NoExpiryByDefault(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer("secret", 0)
	token, _ := issuer.Issue(testUser())

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		t.Fatalf("ParseUnverified: %v", err)
	}
	if claims.ExpiresAt != nil {
		t.Errorf("expected no exp claim, got %v", claims.ExpiresAt)
	}

	// Still valid far in the future.
	issuer.now = func() time.Time { return time.Now().Add(10 * 365 * 24 * time.Hour) }
	if _, err := issuer.Verify(token); err != nil {
		t.Errorf("token without exp should stay valid: %v", err)
	}
}

func TestTokenIssuer_Expired(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer("secret", time.Hour)
	token, err := issuer.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	issuer.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := issuer.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestTokenIssuer_WrongSecret(t *testing.T) {
	t.Parallel()

	token, _ := NewTokenIssuer("secret-a", 0).Issue(testUser())
	if _, err := NewTokenIssuer("secret-b", 0).Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenIssuer_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	claims := Claims{ID: "u1", Username: "mallory", IsAdmin: true}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign hs512: %v", err)
	}

	issuer := NewTokenIssuer("secret", 0)
	for _, tok := range []string{unsigned, hs512} {
		if _, err := issuer.Verify(tok); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	}
}

func TestTokenIssuer_Garbage(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer("secret", 0)
	for _, tok := range []string{"", "abc", "a.b.c", "Bearer x"} {
		if _, err := issuer.Verify(tok); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Verify(%q) expected ErrInvalidToken, got %v", tok, err)
		}
	}
}

func TestContextWithAuth(t *testing.T) {
	t.Parallel()

	ctx := ContextWithAuth(context.Background(), &model.AuthContext{UserID: "u1"})
	if got := UserIDFromContext(ctx); got != "u1" {
		t.Errorf("UserIDFromContext = %q, want u1", got)
	}
	if AuthFromContext(context.Background()) != nil {
		t.Error("expected nil auth on bare context")
	}
	if UserIDFromContext(context.Background()) != "" {
		t.Error("expected empty user id on bare context")
	}
}

func TestMustAuthFromContext_PanicsWithoutCaller(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("expected panic on a context without a caller")
		}
	}()
	MustAuthFromContext(context.Background())
}
