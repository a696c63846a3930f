package session

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"
)

// makeToken builds an unsigned three-segment token with the given payload.
// Signature verification is never performed client-side, so the signature
// segment only has to be well-formed base64.
func makeToken(t *testing.T, payload map[string]any) string {
	t.Helper()

	header, err := json.Marshal(map[string]string{"alg": "HS256", "typ": "JWT"})
	if err != nil {
		t.Fatalf("failed to marshal header: %v", err)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}

	enc := base64.RawURLEncoding
	return enc.EncodeToString(header) + "." + enc.EncodeToString(body) + "." + enc.EncodeToString([]byte("sig"))
}

func TestDecodeClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()
	token := makeToken(t, map[string]any{
		"id":       42,
		"username": "admin@futb.edu.ng",
		"roles":    []string{"ROLE_ADMIN", "ROLE_STAFF"},
		"exp":      exp,
	})

	claims := DecodeClaims(token)
	if claims == nil {
		t.Fatal("expected claims, got nil")
	}
	if claims.UserID != 42 {
		t.Errorf("expected user id 42, got %d", claims.UserID)
	}
	if claims.Email != "admin@futb.edu.ng" {
		t.Errorf("unexpected email %q", claims.Email)
	}
	if len(claims.Roles) != 2 || claims.Roles[0] != "ROLE_ADMIN" {
		t.Errorf("unexpected roles %v", claims.Roles)
	}
	if claims.ExpiresAt.Unix() != exp {
		t.Errorf("expected exp %d, got %d", exp, claims.ExpiresAt.Unix())
	}
}

func TestDecodeClaimsEmailFallback(t *testing.T) {
	token := makeToken(t, map[string]any{
		"email": "staff@futb.edu.ng",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	claims := DecodeClaims(token)
	if claims == nil {
		t.Fatal("expected claims, got nil")
	}
	if claims.Email != "staff@futb.edu.ng" {
		t.Errorf("unexpected email %q", claims.Email)
	}
}

func TestDecodeClaimsMalformed(t *testing.T) {
	for _, raw := range []string{
		"not-a-jwt",
		"",
		"a.b",
		"a.b.c.d",
		"!!!.???.###",
	} {
		if claims := DecodeClaims(raw); claims != nil {
			t.Errorf("expected nil claims for %q, got %+v", raw, claims)
		}
	}
}

func TestIsExpiredSkewBuffer(t *testing.T) {
	// Inside the 5 second buffer: treated as expired.
	soon := makeToken(t, map[string]any{"exp": time.Now().Add(3 * time.Second).Unix()})
	if !IsExpired(soon) {
		t.Error("token expiring in 3s should be expired")
	}

	// Outside the buffer: still usable.
	later := makeToken(t, map[string]any{"exp": time.Now().Add(10 * time.Second).Unix()})
	if IsExpired(later) {
		t.Error("token expiring in 10s should not be expired")
	}
}

func TestIsExpiredFailsClosed(t *testing.T) {
	if !IsExpired("not-a-jwt") {
		t.Error("malformed token should be expired")
	}

	// Missing exp claim.
	noExp := makeToken(t, map[string]any{"username": "x"})
	if !IsExpired(noExp) {
		t.Error("token without exp should be expired")
	}

	past := makeToken(t, map[string]any{"exp": time.Now().Add(-10 * time.Minute).Unix()})
	if !IsExpired(past) {
		t.Error("token expired 10 minutes ago should be expired")
	}
}
