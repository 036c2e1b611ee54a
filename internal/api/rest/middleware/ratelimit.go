package middleware

import (
	"time"

	"github.com/SundayYogurt/member_service/internal/cache"
	"github.com/SundayYogurt/member_service/internal/helper/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"go.uber.org/zap"
)

const (
	DefaultRateLimitMax    = 10
	DefaultRateLimitWindow = time.Minute
)

// RateLimit caps requests per client IP over a sliding window, answering 429
// once max is exceeded. The previous window's hits count in proportion to how
// much of it still overlaps the current one, so a burst straddling a window
// boundary cannot double the limit. Counters live in a bounded in-process LRU.
func RateLimit(max int, window time.Duration, log *zap.Logger) fiber.Handler {
	if max <= 0 {
		max = DefaultRateLimitMax
	}
	if window <= 0 {
		window = DefaultRateLimitWindow
	}

	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        window,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator: func(ctx *fiber.Ctx) string {
			return ctx.IP()
		},
		LimitReached: func(ctx *fiber.Ctx) error {
			log.Warn("rate limit exceeded", zap.String("ip", ctx.IP()), zap.String("path", ctx.Path()))
			return utils.ResponseError(ctx, fiber.StatusTooManyRequests, "too many requests")
		},
		// an entry must outlive the current window plus the one it is weighed against
		Storage: cache.NewLimiterStorage(cache.DefaultLimiterCapacity, 2*window),
	})
}
