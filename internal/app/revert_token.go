package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/form3tech-oss/jwt-go"
)

var ErrRevertTokenInvalid = errors.New("revert token is invalid")

// RevertSigner signs the revert commands listed in moderator status reports, so
// a revert can only target the history entry it was issued for.
type RevertSigner struct {
	secret string
	issuer string
	ttl    time.Duration
}

func NewRevertSigner(secret, issuer string, ttl time.Duration) *RevertSigner {
	if ttl <= 0 {
		ttl = 48 * time.Hour
	}
	return &RevertSigner{secret: secret, issuer: issuer, ttl: ttl}
}

// Sign issues a token for reverting gameID to the history entry at index, which
// must carry tag.
func (s *RevertSigner) Sign(gameID string, index int, tag string) (string, error) {
	if s == nil {
		return "", fmt.Errorf("revert signer is nil")
	}
	if s.secret == "" {
		return "", fmt.Errorf("revert secret is not configured")
	}
	if gameID == "" {
		return "", fmt.Errorf("game id is required")
	}

	claims := jwt.MapClaims{
		"iss": s.issuer,
		"sub": gameID,
		"exp": time.Now().Add(s.ttl).Unix(),
		"idx": index,
		"tag": tag,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

// Verify checks a token against the game and index it is being used for and
// returns the history tag it was issued for.
func (s *RevertSigner) Verify(tokenString, gameID string, index int) (string, error) {
	if s == nil || s.secret == "" {
		return "", fmt.Errorf("%w: signer not configured", ErrRevertTokenInvalid)
	}
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRevertTokenInvalid, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrRevertTokenInvalid
	}
	if iss, _ := claims["iss"].(string); iss != s.issuer {
		return "", fmt.Errorf("%w: issuer mismatch", ErrRevertTokenInvalid)
	}
	if sub, _ := claims["sub"].(string); sub != gameID {
		return "", fmt.Errorf("%w: issued for another game", ErrRevertTokenInvalid)
	}
	if idx, ok := claims["idx"].(float64); !ok || int(idx) != index {
		return "", fmt.Errorf("%w: issued for another history entry", ErrRevertTokenInvalid)
	}
	tag, _ := claims["tag"].(string)
	return tag, nil
}
