package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// ErrMalformedToken is returned when a token cannot be decoded or its
// signature does not match the secret and algorithm.
var ErrMalformedToken = errors.New("malformed token")

var errEmptySecret = errors.New("empty signing secret")

// Payload is the fixed-shape body of every issued token.
type Payload struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Signer encodes and decodes HMAC-signed JWTs for a single algorithm.
type Signer struct {
	method *jwt.SigningMethodHMAC
}

// NewSigner builds a signer for an HMAC algorithm name such as HS256.
func NewSigner(algorithm string) (*Signer, error) {
	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}
	return &Signer{method: method}, nil
}

// Algorithm returns the JWT alg header value the signer emits and accepts.
func (s *Signer) Algorithm() string {
	return s.method.Alg()
}

// Sign serializes the payload as {sub, iat, exp} claims and signs it.
func (s *Signer) Sign(payload Payload, secret []byte) (string, error) {
	if len(secret) == 0 {
		return "", errEmptySecret
	}

	claims := jwt.RegisteredClaims{Subject: payload.Subject}
	if !payload.ExpiresAt.IsZero() {
		claims.ExpiresAt = jwt.NewNumericDate(payload.ExpiresAt)
	}
	if !payload.IssuedAt.IsZero() {
		claims.IssuedAt = jwt.NewNumericDate(payload.IssuedAt)
	}

	return jwt.NewWithClaims(s.method, claims).SignedString(secret)
}

// Verify checks the signature and decodes the payload. Expiry is not judged
// here; see TokenValidator.
func (s *Signer) Verify(tokenStr string, secret []byte) (Payload, error) {
	if len(secret) == 0 {
		return Payload{}, fmt.Errorf("%w: %v", ErrMalformedToken, errEmptySecret)
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithoutClaimsValidation(),
		jwt.WithStrictDecoding(),
	)
	parsed, err := parser.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{}, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid {
		return Payload{}, ErrMalformedToken
	}

	payload := Payload{Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		payload.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	if claims.IssuedAt != nil {
		payload.IssuedAt = claims.IssuedAt.Time.UTC()
	}
	return payload, nil
}
