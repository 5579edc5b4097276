package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"docaudit/internal/service"
)

// ListAuditTrail pages through audit entries, newest first. since and until are
// RFC 3339 timestamps; until is exclusive.
//
// @Summary List audit trail entries
// @Tags audit
// @Produce json
// @Param actor_id query string false "Actor"
// @Param action query string false "Action, e.g. document.upload"
// @Param entity_type query string false "Entity type"
// @Param entity_id query string false "Entity ID"
// @Param since query string false "RFC 3339 lower bound"
// @Param until query string false "RFC 3339 upper bound (exclusive)"
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} service.AuditListResult
// @Router /audit-trail [get]
func ListAuditTrail(svc service.AuditService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, ok := page(c)
		if !ok {
			return nil
		}
		since, ok := timeQuery(c, "since")
		if !ok {
			return nil
		}
		until, ok := timeQuery(c, "until")
		if !ok {
			return nil
		}
		res, err := svc.List(c.UserContext(), service.AuditListInput{
			ActorID:    c.Query("actor_id"),
			Action:     c.Query("action"),
			EntityType: c.Query("entity_type"),
			EntityID:   c.Query("entity_id"),
			Since:      since,
			Until:      until,
			Limit:      limit,
			Offset:     offset,
		})
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(res)
	}
}

func timeQuery(c *fiber.Ctx, key string) (time.Time, bool) {
	v := c.Query(key)
	if v == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		_ = writeError(c, fiber.StatusBadRequest, "INVALID_INPUT", "invalid "+key+" timestamp")
		return time.Time{}, false
	}
	return t, true
}
