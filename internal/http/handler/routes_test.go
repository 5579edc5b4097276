package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"docaudit/internal/http/middleware"
	"docaudit/internal/model"
	"docaudit/internal/rbac"
	"docaudit/internal/service"
	serviceMocks "docaudit/internal/service/mocks"
)

// fakeAuth trusts the X-Test-User header as the authenticated subject.
func fakeAuth(c *fiber.Ctx) error {
	uid := c.Get("X-Test-User")
	if uid == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
	}
	c.Locals(middleware.UserIDLocalKey, uid)
	return c.Next()
}

func newRoutedApp(svc Services) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	RegisterRoutes(app, nil, svc, fakeAuth)
	return app
}

func TestRouting(t *testing.T) {
	app := newRoutedApp(Services{Users: new(serviceMocks.MockUserService)})

	t.Run("not found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/non-existent", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/healthz", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		assert.Equal(t, "METHOD_NOT_ALLOWED", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/documents", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		res := decodeError(t, resp.Body)
		assert.Equal(t, "UNAUTHORIZED", res.Error.Code)
		assert.Equal(t, "missing bearer token", res.Error.Message)
	})
}

func TestRouting_Permissions(t *testing.T) {
	users := new(serviceMocks.MockUserService)
	docs := new(serviceMocks.MockDocumentService)
	audit := new(serviceMocks.MockAuditService)
	app := newRoutedApp(Services{Users: users, Documents: docs, Audit: audit})

	t.Run("viewer cannot delete", func(t *testing.T) {
		users.On("HasPermission", mock.Anything, "viewer-1", rbac.DocumentsDelete).Return(false, nil).Once()

		req := httptest.NewRequest(http.MethodDelete, "/documents/"+uuid.New().String(), nil)
		req.Header.Set("X-Test-User", "viewer-1")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		res := decodeError(t, resp.Body)
		assert.Equal(t, "FORBIDDEN", res.Error.Code)
		assert.Equal(t, "missing permission documents:delete", res.Error.Message)
		docs.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("granted", func(t *testing.T) {
		id := uuid.New().String()
		users.On("HasPermission", mock.Anything, "admin-1", rbac.DocumentsDelete).Return(true, nil).Once()
		docs.On("Delete", mock.Anything, id, "admin-1").Return(nil).Once()

		req := httptest.NewRequest(http.MethodDelete, "/documents/"+id, nil)
		req.Header.Set("X-Test-User", "admin-1")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		docs.AssertExpectations(t)
	})

	t.Run("role lookup fails", func(t *testing.T) {
		users.On("HasPermission", mock.Anything, "auditor-1", rbac.AuditRead).Return(false, errors.New("db down")).Once()

		req := httptest.NewRequest(http.MethodGet, "/audit-trail", nil)
		req.Header.Set("X-Test-User", "auditor-1")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "INTERNAL_ERROR", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("profile needs no permission", func(t *testing.T) {
		users.On("GetProfile", mock.Anything, "viewer-1").
			Return(&model.UserProfile{ID: "viewer-1", Email: "v@example.com"}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
		req.Header.Set("X-Test-User", "viewer-1")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		users.AssertExpectations(t)
	})

	t.Run("not found from service", func(t *testing.T) {
		id := uuid.New().String()
		users.On("HasPermission", mock.Anything, "viewer-1", rbac.DocumentsRead).Return(true, nil).Once()
		docs.On("Get", mock.Anything, id).Return(nil, service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/"+id, nil)
		req.Header.Set("X-Test-User", "viewer-1")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
