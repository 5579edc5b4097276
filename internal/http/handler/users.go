package handler

import (
	"github.com/gofiber/fiber/v2"

	"docaudit/internal/http/middleware"
	"docaudit/internal/service"
)

type profileRequest struct {
	Email    string `json:"email" validate:"omitempty,email,max=320"`
	FullName string `json:"full_name" validate:"max=200"`
}

type assignRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin auditor reviewer viewer"`
}

// @Summary Get my profile
// @Tags users
// @Produce json
// @Success 200 {object} model.UserProfile
// @Router /users/me [get]
func GetMyProfile(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := svc.GetProfile(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(p)
	}
}

// @Summary Create or update my profile
// @Tags users
// @Accept json
// @Produce json
// @Param body body profileRequest true "Profile"
// @Success 200 {object} model.UserProfile
// @Router /users/me [put]
func PutMyProfile(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req profileRequest
		if !bind(c, &req) {
			return nil
		}
		p, err := svc.UpsertProfile(c.UserContext(), middleware.UserID(c), service.UpsertProfileInput{
			Email:    req.Email,
			FullName: req.FullName,
		})
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(p)
	}
}

// @Summary List a user's roles
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {array} model.UserRole
// @Router /users/{id}/roles [get]
func ListUserRoles(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		roles, err := svc.ListRoles(c.UserContext(), c.Params("id"))
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(fiber.Map{"data": roles})
	}
}

// @Summary Grant a role
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param body body assignRoleRequest true "Role"
// @Success 201 {object} model.UserRole
// @Router /users/{id}/roles [post]
func AssignUserRole(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req assignRoleRequest
		if !bind(c, &req) {
			return nil
		}
		r, err := svc.AssignRole(c.UserContext(), c.Params("id"), req.Role, middleware.UserID(c))
		if err != nil {
			return handleError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(r)
	}
}

// @Summary Revoke a role
// @Tags users
// @Param id path string true "User ID"
// @Param role path string true "Role"
// @Success 204
// @Router /users/{id}/roles/{role} [delete]
func RevokeUserRole(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.RevokeRole(c.UserContext(), c.Params("id"), c.Params("role"), middleware.UserID(c)); err != nil {
			return handleError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
