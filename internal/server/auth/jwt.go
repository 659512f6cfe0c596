// Package auth implements signing and verification of the bearer tokens
// issued by the session layer. Access and refresh tokens are HS256 JWTs
// signed with independent secrets, so a token of one kind can never stand in
// for the other even if its signature is valid.
package auth

import (
	"errors"
	"time"

	"github.com/avelins/cliptube/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenKind distinguishes the two token classes.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// clockSkewLeeway is the fixed tolerance applied to expiry checks, absorbing
// small clock differences between the issuing and verifying hosts.
const clockSkewLeeway = 2 * time.Second

// Claims includes the registered JWT claims plus the subject user id and the
// token kind.
type Claims struct {
	jwt.RegisteredClaims
	UserID string    `json:"uid"`
	Kind   TokenKind `json:"kind"`
}

// Codec signs and verifies token pairs. Secrets and lifetimes are injected at
// construction; the time source is replaceable so tests can simulate expiry
// without real delays.
type Codec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewCodec(accessSecret, refreshSecret []byte, accessTTL, refreshTTL time.Duration) *Codec {
	return &Codec{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

// WithClock replaces the codec's time source and returns the codec.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	c.now = now
	return c
}

// TTL returns the validity duration configured for the given kind.
func (c *Codec) TTL(kind TokenKind) time.Duration {
	if kind == TokenKindRefresh {
		return c.refreshTTL
	}
	return c.accessTTL
}

func (c *Codec) secretFor(kind TokenKind) ([]byte, error) {
	switch kind {
	case TokenKindAccess:
		return c.accessSecret, nil
	case TokenKindRefresh:
		return c.refreshSecret, nil
	}
	return nil, common.ErrInvalidToken
}

// Issue signs a token of the given kind for userID, valid from now until
// now+TTL(kind).
func (c *Codec) Issue(userID string, kind TokenKind) (string, error) {
	secret, err := c.secretFor(kind)
	if err != nil {
		return "", err
	}

	// The random jti keeps two tokens minted within the same second from
	// colliding, so a rotated refresh token always differs from its
	// predecessor.
	now := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.TTL(kind))),
		},
		UserID: userID,
		Kind:   kind,
	})

	return token.SignedString(secret)
}

// Verify parses tokenString, checks the signature against the secret of the
// expected kind, and returns the subject user id.
//
// Failures are distinguishable: an expired token yields
// common.ErrTokenExpired; a malformed token, a bad signature, or a kind
// mismatch yields common.ErrInvalidToken.
func (c *Codec) Verify(tokenString string, kind TokenKind) (string, error) {
	secret, err := c.secretFor(kind)
	if err != nil {
		return "", err
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(clockSkewLeeway),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.Kind != kind {
		return "", common.ErrInvalidToken
	}

	return claims.UserID, nil
}
