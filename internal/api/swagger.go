package api

import (
	docs "github.com/SundayYogurt/member_service/docs"
	"github.com/gofiber/fiber/v2"
	fiberSwagger "github.com/swaggo/fiber-swagger"
)

func RegisterSwagger(app *fiber.App) {
	// host and scheme follow whatever the caller used to reach us
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		docs.SwaggerInfo.Host = c.Hostname()
		docs.SwaggerInfo.Schemes = []string{c.Protocol()}
		return c.Next()
	}, fiberSwagger.WrapHandler)
}
