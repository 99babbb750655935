// Package token issues and verifies the bearer tokens handed out at login.
// A token is an HS256 JWT whose subject is the user id and whose jti is the
// id of the stored auth_tokens row, which is what logout revokes.
package token

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "lumina"

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	jwt.RegisteredClaims
}

func (c *Claims) UserId() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

func (c *Claims) TokenId() (uuid.UUID, error) {
	return uuid.Parse(c.ID)
}

type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue signs a token for userId. The returned expiry is zero when the
// manager was built without a TTL.
func (m *Manager) Issue(userId, tokenId uuid.UUID, now time.Time) (string, time.Time, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   issuer,
			Subject:  userId.String(),
			ID:       tokenId.String(),
			IssuedAt: jwt.NewNumericDate(now),
		},
	}

	var expiresAt time.Time
	if m.ttl > 0 {
		expiresAt = now.Add(m.ttl)
		claims.ExpiresAt = jwt.NewNumericDate(expiresAt)
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func (m *Manager) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
	)
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	if _, err := claims.UserId(); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Hash is the form a token is stored and cached under.
func Hash(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
