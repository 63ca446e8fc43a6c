package api

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jpuchoc/st-report/pkg/api/routes"
	"github.com/rs/zerolog/log"
)

// NewLogger logs one line per request, tagged with the report window and the
// pipeline run status when the route produced one.
func NewLogger() fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		startTime := time.Now()
		err = c.Next()

		msg := "HTTP Request"
		if err != nil {
			msg = err.Error()
		}

		code := c.Response().StatusCode()

		requestContext := log.With().
			Int("status", code).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("window", c.Query("window")).
			Str("ip", c.IP()).
			Dur("latency", time.Since(startTime)).
			Str("user-agent", c.Get(fiber.HeaderUserAgent))

		// Only report routes run the pipeline.
		if runStatus, ok := c.Locals(routes.RunStatusLocal).(string); ok {
			requestContext = requestContext.Str("run", runStatus)
		}
		requestLogger := requestContext.Logger()

		switch {
		case c.Path() == "/metrics":
			requestLogger.Debug().Msg(msg)
		case code >= fiber.StatusBadRequest && code < fiber.StatusInternalServerError:
			requestLogger.Warn().Msg(msg)
		case code >= http.StatusInternalServerError:
			requestLogger.Error().Msg(msg)
		default:
			requestLogger.Info().Msg(msg)
		}

		return err
	}
}
