package middleware

import (
	"net/url"
	"strings"

	"github.com/SundayYogurt/member_service/internal/domain"
	"github.com/SundayYogurt/member_service/internal/helper"
	"github.com/SundayYogurt/member_service/internal/helper/utils"
	"github.com/SundayYogurt/member_service/internal/xerrors"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ProtectedPages require a session; AdminPages additionally require ADMIN.
var (
	ProtectedPages = []string{"/gallery", "/downloads", "/news-letter", "/dashboard", "/admin"}
	AdminPages     = []string{"/admin"}
)

// RoleSource resolves a user's current role, typically through the role cache.
type RoleSource interface {
	Role(userID string) (domain.UserRole, error)
}

// PageGate guards the page routes. Web clients are redirected to the login
// page (or home, when an authenticated non-admin opens an admin page); mobile
// clients get a 401 or 403.
func PageGate(auth helper.Auth, roles RoleSource, log *zap.Logger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		path := ctx.Path()
		if !matchesAny(path, ProtectedPages) {
			return ctx.Next()
		}

		mobile := IsMobile(ctx)
		raw := ExtractorFor(ctx).Extract(ctx)

		claims, err := auth.VerifyToken(raw)
		if raw == "" || err != nil {
			if mobile {
				return unauthorized(ctx)
			}
			return ctx.Redirect("/login?return="+url.QueryEscape(ctx.OriginalURL()), fiber.StatusFound)
		}

		if matchesAny(path, AdminPages) {
			role, err := roles.Role(claims.UserID)
			if err != nil && xerrors.KindOf(err) != xerrors.KindNotFound {
				log.Error("page gate role lookup", zap.String("user_id", claims.UserID), zap.Error(err))
				return utils.ResponseError(ctx, fiber.StatusInternalServerError, "internal server error")
			}
			if role != domain.RoleAdmin {
				if mobile {
					return utils.ResponseError(ctx, fiber.StatusForbidden, xerrors.ErrAdminOnly.Error())
				}
				return ctx.Redirect("/", fiber.StatusFound)
			}
		}

		return ctx.Next()
	}
}

func matchesAny(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}
