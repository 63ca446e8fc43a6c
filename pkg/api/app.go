package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jpuchoc/st-report/pkg/api/routes"
	"github.com/jpuchoc/st-report/pkg/report"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewApp builds the web app without binding it, so tests can drive it through
// fiber's Test helper.
func NewApp(service *report.Service) *fiber.App {
	webApp := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	webApp.Use(NewLogger())

	webApp.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	group := webApp.Group("/report")

	group.Get("/version", routes.APIVersion)

	routes.ReportRouter(group, service)

	return webApp
}
