package auth

import (
	"errors"
	"fmt"

	"github.com/spec-kit/token-auth/internal/clock"
)

var (
	// ErrInvalidToken covers decode, signature and missing-claim failures.
	// Callers should require a fresh login.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned for a genuine token past its expiry.
	ErrExpiredToken = errors.New("token expired")
)

// TokenValidator verifies tokens of one kind against that kind's secret.
type TokenValidator struct {
	signer *Signer
	clock  clock.Clock
	kind   Kind
	secret []byte
}

// NewTokenValidator builds a validator bound to secret.
func NewTokenValidator(signer *Signer, clk clock.Clock, kind Kind, secret []byte) *TokenValidator {
	return &TokenValidator{signer: signer, clock: clk, kind: kind, secret: secret}
}

// Kind reports which token kind the validator accepts.
func (v *TokenValidator) Kind() Kind {
	return v.kind
}

// Validate decodes the token and enforces expiry. A token whose expiry
// equals the current instant is already expired.
func (v *TokenValidator) Validate(tokenStr string) (Payload, error) {
	payload, err := v.signer.Verify(tokenStr, v.secret)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if payload.Subject == "" {
		return Payload{}, fmt.Errorf("%w: missing sub claim", ErrInvalidToken)
	}
	if payload.ExpiresAt.IsZero() {
		return Payload{}, fmt.Errorf("%w: missing exp claim", ErrInvalidToken)
	}

	if !payload.ExpiresAt.After(v.clock.Now()) {
		return Payload{}, ErrExpiredToken
	}
	return payload, nil
}
