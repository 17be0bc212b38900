package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/token-auth/internal/clock"
)

// ErrEmptySubject is returned when a token is requested for a blank subject.
var ErrEmptySubject = errors.New("token subject is empty")

// Kind distinguishes access tokens from refresh tokens.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// IssuedToken is a signed token string plus the expiry it encodes.
type IssuedToken struct {
	Value     string
	Kind      Kind
	ExpiresAt time.Time
}

// TokenPair bundles the tokens handed out together.
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}

// IssuerSettings holds the per-kind secrets and lifetimes.
type IssuerSettings struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// TokenIssuer signs access and refresh tokens for a subject.
type TokenIssuer struct {
	signer   *Signer
	clock    clock.Clock
	settings IssuerSettings
}

// NewTokenIssuer builds an issuer.
func NewTokenIssuer(signer *Signer, clk clock.Clock, settings IssuerSettings) *TokenIssuer {
	return &TokenIssuer{signer: signer, clock: clk, settings: settings}
}

// IssueAccessToken signs a short-lived access token with the access secret.
func (i *TokenIssuer) IssueAccessToken(subject string) (IssuedToken, error) {
	return i.issue(KindAccess, subject, i.settings.AccessSecret, i.settings.AccessTTL)
}

// IssueRefreshToken signs a long-lived refresh token with the refresh secret.
func (i *TokenIssuer) IssueRefreshToken(subject string) (IssuedToken, error) {
	return i.issue(KindRefresh, subject, i.settings.RefreshSecret, i.settings.RefreshTTL)
}

// IssuePair issues an access and a refresh token for the same subject.
func (i *TokenIssuer) IssuePair(subject string) (TokenPair, error) {
	access, err := i.IssueAccessToken(subject)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := i.IssueRefreshToken(subject)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

func (i *TokenIssuer) issue(kind Kind, subject string, secret []byte, ttl time.Duration) (IssuedToken, error) {
	if subject == "" {
		return IssuedToken{}, ErrEmptySubject
	}

	// NumericDate carries whole seconds; truncate so the reported expiry
	// matches what the token encodes.
	now := i.clock.Now()
	payload := Payload{
		Subject:   subject,
		IssuedAt:  now.Truncate(jwt.TimePrecision),
		ExpiresAt: now.Add(ttl).Truncate(jwt.TimePrecision),
	}

	value, err := i.signer.Sign(payload, secret)
	if err != nil {
		return IssuedToken{}, fmt.Errorf("sign %s token: %w", kind, err)
	}
	return IssuedToken{Value: value, Kind: kind, ExpiresAt: payload.ExpiresAt}, nil
}
