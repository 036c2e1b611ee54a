package utils

import (
	"github.com/SundayYogurt/member_service/internal/xerrors"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func ResponseError(ctx *fiber.Ctx, status int, msg string) error {
	return ctx.Status(status).JSON(fiber.Map{
		"error": msg,
	})
}

// create a generic response function for success
func ResponseSuccess(ctx *fiber.Ctx, status int, data interface{}) error {
	return ctx.Status(status).JSON(fiber.Map{"data": data})
}

// ResponseFromError writes the client message for known errors and a generic
// message for everything else. Server-side failures are logged.
func ResponseFromError(ctx *fiber.Ctx, log *zap.Logger, err error) error {
	status := xerrors.Status(err)
	if status >= fiber.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", ctx.Method()),
			zap.String("path", ctx.Path()),
			zap.Error(err),
		)
	}
	if xerrors.KindOf(err) == xerrors.KindInternal {
		return ResponseError(ctx, status, "internal server error")
	}
	return ResponseError(ctx, status, err.Error())
}
