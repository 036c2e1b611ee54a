package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	AccessTokenCookie = "access_token"
	ClientTypeHeader  = "x-client-type"
	ClientTypeMobile  = "mobile"
)

// user agents sent by the mobile SDKs we ship
var mobileAgents = []string{"okhttp", "dart/", "cfnetwork", "expo"}

// CredentialExtractor pulls the raw session token out of a request.
type CredentialExtractor interface {
	Extract(ctx *fiber.Ctx) string
	Channel() string
}

// CookieExtractor reads the http-only session cookie of the web channel.
type CookieExtractor struct{}

func (CookieExtractor) Extract(ctx *fiber.Ctx) string {
	return strings.TrimSpace(ctx.Cookies(AccessTokenCookie))
}

func (CookieExtractor) Channel() string { return "web" }

// BearerExtractor reads "Authorization: Bearer <token>" for the mobile channel.
type BearerExtractor struct{}

func (BearerExtractor) Extract(ctx *fiber.Ctx) string {
	h := strings.TrimSpace(ctx.Get(fiber.HeaderAuthorization))
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

func (BearerExtractor) Channel() string { return ClientTypeMobile }

// IsMobile reports whether the request comes from the mobile channel, either
// by the explicit client-type header or a known SDK user agent.
func IsMobile(ctx *fiber.Ctx) bool {
	if strings.EqualFold(strings.TrimSpace(ctx.Get(ClientTypeHeader)), ClientTypeMobile) {
		return true
	}
	ua := strings.ToLower(ctx.Get(fiber.HeaderUserAgent))
	for _, sig := range mobileAgents {
		if strings.Contains(ua, sig) {
			return true
		}
	}
	return false
}

func ExtractorFor(ctx *fiber.Ctx) CredentialExtractor {
	if IsMobile(ctx) {
		return BearerExtractor{}
	}
	return CookieExtractor{}
}
