package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/textile-stock-api/pkg/logger"
)

// RequestLogger registra método, ruta, status, latencia y usuario de cada petición.
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		chainErr := c.Next()
		status := c.Response().StatusCode()
		if chainErr != nil {
			if fe, ok := chainErr.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		ev := log.Info()
		if status >= fiber.StatusInternalServerError {
			ev = log.Error()
			if err, ok := c.Locals(localError).(error); ok {
				ev = ev.Err(err)
			} else if chainErr != nil {
				ev = ev.Err(chainErr)
			}
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("user_id", GetUserID(c)).
			Msg("request")
		return chainErr
	}
}
