package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/token-auth/internal/domain"
	"github.com/spec-kit/token-auth/internal/observability"
	apperrors "github.com/spec-kit/token-auth/pkg/util/errorutil"
)

const identityKey = "auth_identity"

// Auth outcome labels recorded per request.
const (
	OutcomeAuthenticated      = "authenticated"
	OutcomeMissingCredentials = "missing_credentials"
	OutcomeInvalidToken       = "invalid_token"
	OutcomeExpiredToken       = "expired_token"
	OutcomeUserNotFound       = "user_not_found"
	OutcomeError              = "error"
)

// AuthMiddleware validates bearer tokens and loads the caller identity.
type AuthMiddleware struct {
	gateway *AuthGateway
	metrics *observability.Metrics
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(gateway *AuthGateway, metrics *observability.Metrics) *AuthMiddleware {
	return &AuthMiddleware{gateway: gateway, metrics: metrics}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	token, ok := ExtractBearer(c.Get(fiber.HeaderAuthorization))
	if !ok {
		m.metrics.RecordAuthOutcome(OutcomeMissingCredentials)
		return Challenge(c, apperrors.NewUnauthorized("missing or malformed bearer token"))
	}

	identity, err := m.gateway.Authenticate(c.UserContext(), token)
	if err != nil {
		m.metrics.RecordAuthOutcome(Outcome(err))
		return Challenge(c, RejectionError(err))
	}

	m.metrics.RecordAuthOutcome(OutcomeAuthenticated)
	c.Locals(identityKey, identity)
	return c.Next()
}

// IdentityFromContext retrieves the authenticated caller.
func IdentityFromContext(c *fiber.Ctx) (domain.Identity, bool) {
	identity, ok := c.Locals(identityKey).(domain.Identity)
	return identity, ok
}

// ExtractBearer pulls the token out of an Authorization header value.
func ExtractBearer(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}

// Challenge marks the response with a Bearer challenge and returns err for
// the error middleware to render.
func Challenge(c *fiber.Ctx, err error) error {
	c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	return err
}

// RejectionError maps token and lookup failures to their HTTP-facing form.
func RejectionError(err error) error {
	switch {
	case errors.Is(err, ErrExpiredToken):
		return apperrors.NewExpiredToken()
	case errors.Is(err, ErrInvalidToken):
		return apperrors.NewInvalidToken()
	case errors.Is(err, ErrUserNotFound):
		return apperrors.NewUserNotFound()
	default:
		return apperrors.MapError(err)
	}
}

// Outcome returns the metrics label for an authentication failure.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeAuthenticated
	case errors.Is(err, ErrExpiredToken):
		return OutcomeExpiredToken
	case errors.Is(err, ErrInvalidToken):
		return OutcomeInvalidToken
	case errors.Is(err, ErrUserNotFound):
		return OutcomeUserNotFound
	default:
		return OutcomeError
	}
}
