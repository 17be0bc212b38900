package auth

import (
	"fmt"

	"github.com/spec-kit/token-auth/internal/clock"
	"github.com/spec-kit/token-auth/internal/config"
)

// Tokens wires the issuer and both validators from one auth config.
type Tokens struct {
	Issuer  *TokenIssuer
	Access  *TokenValidator
	Refresh *TokenValidator
}

// NewTokens validates cfg and builds the token components around clk.
func NewTokens(cfg config.AuthConfig, clk clock.Clock) (*Tokens, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	signer, err := NewSigner(cfg.Algorithm)
	if err != nil {
		return nil, err
	}

	accessSecret := []byte(cfg.AccessSecret)
	refreshSecret := []byte(cfg.RefreshSecret)

	return &Tokens{
		Issuer: NewTokenIssuer(signer, clk, IssuerSettings{
			AccessSecret:  accessSecret,
			RefreshSecret: refreshSecret,
			AccessTTL:     cfg.AccessTTL(),
			RefreshTTL:    cfg.RefreshTTL(),
		}),
		Access:  NewTokenValidator(signer, clk, KindAccess, accessSecret),
		Refresh: NewTokenValidator(signer, clk, KindRefresh, refreshSecret),
	}, nil
}

// Validator returns the validator for kind.
func (t *Tokens) Validator(kind Kind) (*TokenValidator, error) {
	switch kind {
	case KindAccess:
		return t.Access, nil
	case KindRefresh:
		return t.Refresh, nil
	default:
		return nil, fmt.Errorf("unknown token kind %q", kind)
	}
}

// Issue signs a token of the given kind.
func (t *Tokens) Issue(kind Kind, subject string) (IssuedToken, error) {
	switch kind {
	case KindAccess:
		return t.Issuer.IssueAccessToken(subject)
	case KindRefresh:
		return t.Issuer.IssueRefreshToken(subject)
	default:
		return IssuedToken{}, fmt.Errorf("unknown token kind %q", kind)
	}
}
