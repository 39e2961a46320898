package session

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const (
	CookieName = "hover_session"
	issuer     = "hover-booking"
)

var ErrInvalidToken = errors.New("invalid session token")

// Tokens issues and verifies the signed cookie value carrying a session id.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens signs with secret. An empty secret is replaced by random bytes, so sessions do not
// survive a restart.
func NewTokens(secret string, ttl time.Duration) (*Tokens, error) {
	key := []byte(secret)

	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, err
		}
	}

	return &Tokens{secret: key, ttl: ttl, now: time.Now}, nil
}

func (t *Tokens) TTL() time.Duration {
	return t.ttl
}

// Issue creates a new session id and its token.
func (t *Tokens) Issue() (token string, id string, err error) {
	id = uuid.New().String()
	now := t.now()

	claims := jwt.RegisteredClaims{
		ID:        id,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}

	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", "", err
	}

	return token, id, nil
}

// Parse returns the session id of a valid, unexpired token.
func (t *Tokens) Parse(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !parsed.Valid || claims.Issuer != issuer {
		return "", ErrInvalidToken
	}

	if _, err := uuid.Parse(claims.ID); err != nil {
		return "", ErrInvalidToken
	}

	return claims.ID, nil
}
