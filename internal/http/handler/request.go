package handler

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// The helpers below write the error response themselves and report ok=false;
// callers then return nil.

// page reads limit and offset query parameters. Bounds are applied by the services.
func page(c *fiber.Ctx) (limit, offset int, ok bool) {
	limit, err := strconv.Atoi(c.Query("limit", "10"))
	if err != nil {
		_ = writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		return 0, 0, false
	}
	offset, err = strconv.Atoi(c.Query("offset", "0"))
	if err != nil {
		_ = writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		return 0, 0, false
	}
	return limit, offset, true
}

// uuidParam returns the named path parameter when it is a valid UUID.
func uuidParam(c *fiber.Ctx, name string) (string, bool) {
	id := c.Params(name)
	if _, err := uuid.Parse(id); err != nil {
		_ = writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		return "", false
	}
	return id, true
}

// bind decodes a JSON body into dst and validates its tags.
func bind(c *fiber.Ctx, dst any) bool {
	if err := c.BodyParser(dst); err != nil {
		_ = writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		_ = writeError(c, fiber.StatusBadRequest, "INVALID_INPUT", err.Error())
		return false
	}
	return true
}
