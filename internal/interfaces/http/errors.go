package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/textile-stock-api/internal/application/dto"
	"github.com/jhoicas/textile-stock-api/internal/domain"
)

// localError guarda el error original para el log de la petición.
const localError = "error"

// writeError traduce errores de dominio a respuestas HTTP.
// Los errores no esperados responden un mensaje genérico; el detalle queda en el log.
func writeError(c *fiber.Ctx, err error) error {
	status, code, msg := fiber.StatusInternalServerError, "INTERNAL", "error interno del servidor"
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status, code, msg = fiber.StatusNotFound, "NOT_FOUND", err.Error()
	case errors.Is(err, domain.ErrInvalidInput):
		status, code, msg = fiber.StatusBadRequest, "VALIDATION", err.Error()
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		status, code, msg = fiber.StatusConflict, "EMAIL_EXISTS", err.Error()
	case errors.Is(err, domain.ErrDuplicate):
		status, code, msg = fiber.StatusConflict, "CONFLICT", err.Error()
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrUserNotFound):
		status, code, msg = fiber.StatusUnauthorized, "UNAUTHORIZED", domain.ErrUnauthorized.Error()
	case errors.Is(err, domain.ErrInactiveAccount):
		status, code, msg = fiber.StatusForbidden, "ACCOUNT_INACTIVE", err.Error()
	case errors.Is(err, domain.ErrForbidden):
		status, code, msg = fiber.StatusForbidden, "FORBIDDEN", err.Error()
	default:
		c.Locals(localError, err)
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
