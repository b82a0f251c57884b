package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/pkg/logger"
)

// ErrorHandler traduce los errores devueltos por los handlers a respuestas JSON.
// Con hideInternal los errores 500 no exponen el detalle.
func ErrorHandler(hideInternal bool, log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: statusCode(fe.Code), Message: fe.Message})
		}

		var short *domain.InsufficientStockError
		if errors.As(err, &short) {
			return c.Status(fiber.StatusConflict).JSON(insufficientStockResponse(short))
		}

		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
		case errors.Is(err, domain.ErrEmailAlreadyExists):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "EMAIL_EXISTS", Message: err.Error()})
		case errors.Is(err, domain.ErrDuplicate):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()})
		case errors.Is(err, domain.ErrConflict):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
		case errors.Is(err, domain.ErrUnauthorized):
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: err.Error()})
		case errors.Is(err, domain.ErrForbidden):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: err.Error()})
		}

		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
		msg := err.Error()
		if hideInternal {
			msg = "error interno del servidor"
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: msg})
	}
}

func insufficientStockResponse(e *domain.InsufficientStockError) dto.InsufficientStockResponse {
	out := dto.InsufficientStockResponse{
		Code:      "INSUFFICIENT_STOCK",
		Message:   domain.ErrInsufficientStock.Error(),
		Shortages: make([]dto.ShortageResponse, 0, len(e.Shortages)),
	}
	for _, s := range e.Shortages {
		out.Shortages = append(out.Shortages, dto.ShortageResponse{
			ItemID:    s.ItemID,
			ItemName:  s.ItemName,
			Unit:      s.Unit,
			Required:  s.Required,
			Available: s.Available,
			Missing:   s.Missing(),
		})
	}
	return out
}

func statusCode(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusBadRequest:
		return "INVALID_REQUEST"
	case fiber.StatusRequestEntityTooLarge:
		return "BODY_TOO_LARGE"
	default:
		return "INTERNAL"
	}
}

// invalidBody respuesta común para cuerpos JSON mal formados.
func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

// pageQuery lee limit/offset del query string.
func pageQuery(c *fiber.Ctx) dto.PageRequest {
	p := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	p.DefaultPage()
	return p
}
