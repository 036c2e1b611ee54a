package handlers

import (
	"github.com/SundayYogurt/member_service/internal/dto"
	"github.com/SundayYogurt/member_service/internal/xerrors"
	"github.com/gofiber/fiber/v2"
)

// Guards are the auth middlewares shared by the route groups.
type Guards struct {
	Verified fiber.Handler
	Admin    fiber.Handler
}

func bindBody(ctx *fiber.Ctx, out any) error {
	if err := ctx.BodyParser(out); err != nil {
		return xerrors.ErrInvalidInput
	}
	return dto.Validate(out)
}

func bindQuery(ctx *fiber.Ctx, out any) error {
	if err := ctx.QueryParser(out); err != nil {
		return xerrors.ErrInvalidInput
	}
	return dto.Validate(out)
}
