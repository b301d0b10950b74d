package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AlgorithmHS256 is the only signing algorithm the token service accepts.
const AlgorithmHS256 = "HS256"

// ErrInvalidToken covers every verification failure: bad signature,
// unparsable payload, missing claim, and expiry. Callers get one kind on
// purpose so responses do not reveal which check failed.
var ErrInvalidToken = errors.New("invalid token")

type accessClaims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies signed bearer tokens carrying a user identity.
// Verification is stateless; issued tokens cannot be revoked before expiry.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens builds a token service from the configured signing key,
// algorithm identifier and time-to-live.
func NewTokens(secret, algorithm string, ttl time.Duration) (*Tokens, error) {
	if secret == "" {
		return nil, errors.New("signing key is required")
	}
	if !strings.EqualFold(algorithm, AlgorithmHS256) {
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue returns a compact signed token embedding userID and an absolute
// expiry of now plus the configured ttl.
func (t *Tokens) Issue(userID uint) (string, error) {
	now := t.now()
	claims := accessClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Verify validates the signature and expiry of token and returns the
// embedded user id.
func (t *Tokens) Verify(token string) (uint, error) {
	parsed, err := jwt.ParseWithClaims(token, &accessClaims{},
		func(tok *jwt.Token) (any, error) {
			if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrInvalidToken
			}
			return t.secret, nil
		},
		jwt.WithValidMethods([]string{AlgorithmHS256}),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !parsed.Valid {
		return 0, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*accessClaims)
	if !ok || claims.UserID == 0 {
		return 0, ErrInvalidToken
	}
	return claims.UserID, nil
}
