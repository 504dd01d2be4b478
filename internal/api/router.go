package api

import (
	"argos-engine/docs"
	"argos-engine/internal/api/handlers"
	"argos-engine/internal/dto"
	"argos-engine/pkg/config"
	"argos-engine/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

type Handlers struct {
	Ask    *handlers.AskHandler
	Ledger *handlers.LedgerHandler
	Chart  *handlers.ChartHandler
}

func SetupRouter(
	h Handlers,
	cfg *config.Config,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "argos-engine",
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			msg := "Internal server error"
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
				msg = e.Message
			} else {
				appLogger.Error("Unhandled request error", zap.String("path", c.Path()), zap.Error(err))
			}
			return c.Status(code).JSON(dto.ErrorResponse{Error: msg})
		},
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,X-Request-ID",
	}))
	app.Use(middleware.RequestLogger(appLogger))

	// Importing docs registers the API document through init().
	_ = docs.SwaggerInfo
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/health", h.Ledger.Health)
	app.Get("/charts/:name", h.Chart.Serve)

	api := app.Group("/api", middleware.RateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, appLogger))
	api.Post("/ask", h.Ask.Ask)
	api.Get("/trends", h.Ledger.Trends)
	api.Post("/refresh", h.Ledger.Refresh)

	return app
}
