package middleware

import (
	"github.com/SundayYogurt/member_service/internal/domain"
	"github.com/SundayYogurt/member_service/internal/helper"
	"github.com/SundayYogurt/member_service/internal/helper/utils"
	"github.com/SundayYogurt/member_service/internal/xerrors"
	"github.com/gofiber/fiber/v2"
)

const userLocal = "user"

// VerifiedUserFinder re-resolves a token subject against the current database state.
type VerifiedUserFinder interface {
	FindVerifiedByIDAndMembership(userID string, membershipID uint) (*domain.User, error)
}

// RequireVerified accepts a request only when its token is valid and its user
// is still VERIFIED with the same membership id. Every failure is the same 401.
func RequireVerified(auth helper.Auth, users VerifiedUserFinder) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		raw := ExtractorFor(ctx).Extract(ctx)
		if raw == "" {
			return unauthorized(ctx)
		}

		claims, err := auth.VerifyToken(raw)
		if err != nil {
			return unauthorized(ctx)
		}

		user, err := users.FindVerifiedByIDAndMembership(claims.UserID, claims.MembershipID)
		if err != nil || user == nil {
			return unauthorized(ctx)
		}

		ctx.Locals(userLocal, user)
		return ctx.Next()
	}
}

// AdminOnly must run after RequireVerified.
func AdminOnly() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		user := CurrentUser(ctx)
		if user == nil {
			return unauthorized(ctx)
		}
		if !user.IsAdmin() {
			return utils.ResponseError(ctx, fiber.StatusForbidden, xerrors.ErrAdminOnly.Error())
		}
		return ctx.Next()
	}
}

// CurrentUser returns the user resolved by RequireVerified, or nil.
func CurrentUser(ctx *fiber.Ctx) *domain.User {
	user, _ := ctx.Locals(userLocal).(*domain.User)
	return user
}

func unauthorized(ctx *fiber.Ctx) error {
	return utils.ResponseError(ctx, fiber.StatusUnauthorized, xerrors.ErrUnauthorized.Error())
}
