package session

import (
	"time"

	"github.com/lestrrat-go/jwx/v2/jwt"
)

// ExpirySkew is subtracted from the token expiry when evaluating freshness.
// It absorbs clock skew and in-flight request latency, so a request never
// starts with a token that expires mid-flight.
const ExpirySkew = 5 * time.Second

// Claims represents the fields we care about from a portal access token.
// Decoding never verifies the signature; that is the server's job. This is
// a client-side optimization only, never a security boundary.
type Claims struct {
	UserID    int       `json:"id"`
	Email     string    `json:"email"`
	Roles     []string  `json:"roles"`
	ExpiresAt time.Time `json:"exp"`
}

// DecodeClaims extracts claims from a signed token without verification.
// Returns nil for anything that is not a well-formed three-segment token
// with a JSON payload; malformed input fails closed, it never panics.
func DecodeClaims(raw string) *Claims {
	tok, err := jwt.Parse([]byte(raw), jwt.WithVerify(false), jwt.WithValidate(false))
	if err != nil {
		return nil
	}

	claims := &Claims{
		ExpiresAt: tok.Expiration(),
	}

	// The portal issues the login email under "username"; fall back to a
	// literal "email" claim when present.
	if v, ok := tok.Get("username"); ok {
		if s, ok := v.(string); ok {
			claims.Email = s
		}
	}
	if claims.Email == "" {
		if v, ok := tok.Get("email"); ok {
			if s, ok := v.(string); ok {
				claims.Email = s
			}
		}
	}

	if v, ok := tok.Get("id"); ok {
		if f, ok := v.(float64); ok {
			claims.UserID = int(f)
		}
	}

	if v, ok := tok.Get("roles"); ok {
		if vs, ok := v.([]interface{}); ok {
			for _, r := range vs {
				if s, ok := r.(string); ok {
					claims.Roles = append(claims.Roles, s)
				}
			}
		}
	}

	return claims
}

// IsExpired reports whether a token is unusable: malformed, missing an
// expiry claim, or expiring within the skew buffer. Never errors.
func IsExpired(raw string) bool {
	claims := DecodeClaims(raw)
	if claims == nil || claims.ExpiresAt.IsZero() {
		return true
	}
	return !time.Now().Before(claims.ExpiresAt.Add(-ExpirySkew))
}
