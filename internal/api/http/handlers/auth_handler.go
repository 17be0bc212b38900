package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/token-auth/internal/api/dto"
	"github.com/spec-kit/token-auth/internal/auth"
	"github.com/spec-kit/token-auth/internal/service"
	apperrors "github.com/spec-kit/token-auth/pkg/util/errorutil"
)

// AuthHandler exposes the caller identity and the refresh exchange.
type AuthHandler struct {
	tokens *service.TokenService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(tokens *service.TokenService) *AuthHandler {
	return &AuthHandler{tokens: tokens}
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return auth.Challenge(c, apperrors.NewUnauthorized("not authenticated"))
	}
	return c.JSON(fiber.Map{"data": identity})
}

// Refresh handles POST /auth/token/refresh.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.RefreshToken == "" {
		return apperrors.NewValidationError("refresh_token required", nil)
	}

	pair, err := h.tokens.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return auth.Challenge(c, auth.RejectionError(err))
	}

	return c.JSON(fiber.Map{
		"data": dto.TokenPairResponse{
			TokenType:        "Bearer",
			AccessToken:      pair.Access.Value,
			AccessExpiresAt:  pair.Access.ExpiresAt,
			RefreshToken:     pair.Refresh.Value,
			RefreshExpiresAt: pair.Refresh.ExpiresAt,
		},
	})
}
