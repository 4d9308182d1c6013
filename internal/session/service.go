// Package session exchanges the shared console admin token for short-lived
// JWT session tokens and verifies them on subsequent requests.
package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "atrium/pkg/domain-errors"
	"atrium/pkg/secrets"
)

const subject = "console-admin"

// Issuer mints and verifies console session tokens.
type Issuer struct {
	signingKey     []byte
	adminTokenHash string
	ttl            time.Duration
	now            func() time.Time
}

// NewIssuer creates a session issuer. adminTokenHash is the bcrypt hash of
// the shared admin token; an empty hash disables the exchange entirely.
func NewIssuer(signingKey, adminTokenHash string, ttl time.Duration) *Issuer {
	return &Issuer{
		signingKey:     []byte(signingKey),
		adminTokenHash: adminTokenHash,
		ttl:            ttl,
		now:            time.Now,
	}
}

// Exchange validates the shared admin token and returns a session JWT.
func (i *Issuer) Exchange(adminToken string) (string, time.Time, error) {
	if err := i.VerifyAdminToken(adminToken); err != nil {
		return "", time.Time{}, err
	}

	now := i.now()
	expiry := now.Add(i.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ID:        uuid.New().String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiry),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.signingKey)
	if err != nil {
		return "", time.Time{}, dErrors.Wrap(err, dErrors.CodeInternal, "could not sign session token")
	}
	return signed, expiry, nil
}

// VerifyAdminToken checks the shared admin token against the configured hash.
func (i *Issuer) VerifyAdminToken(token string) error {
	if i.adminTokenHash == "" {
		return dErrors.New(dErrors.CodeUnauthorized, "admin access is not configured")
	}
	return secrets.Verify(token, i.adminTokenHash)
}

// VerifySession validates a session JWT's signature, subject, and expiry.
func (i *Issuer) VerifySession(token string) error {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "unexpected signing method")
		}
		return i.signingKey, nil
	}, jwt.WithTimeFunc(func() time.Time { return i.now() }))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid session token")
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject != subject {
		return dErrors.New(dErrors.CodeUnauthorized, "invalid session token")
	}
	return nil
}
