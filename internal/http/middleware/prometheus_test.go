package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMetricsApp(t *testing.T) (*fiber.App, *PrometheusMiddleware, *prometheus.Registry) {
	t.Helper()
	// A fresh registry per test avoids duplicate registration.
	reg := prometheus.NewRegistry()
	m, err := NewPrometheusMiddleware(reg)
	require.NoError(t, err)

	app := fiber.New()
	app.Use(m.Handler())
	return app, m, reg
}

func TestPrometheusMiddleware_Labels(t *testing.T) {
	app, m, _ := newMetricsApp(t)

	app.Get("/documents/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Delete("/documents/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Post("/workflow-instances/:id/actions", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusConflict, "instance is not in progress")
	})
	app.Get("/audit-trail", func(c *fiber.Ctx) error {
		return fiber.ErrForbidden
	})

	tests := []struct {
		method string
		target string
		route  string
		status string
	}{
		{"GET", "/documents/4b1e1d7c-0b4e-4a55-9a8e-0a6a1c1f0d01", "/documents/:id", "200"},
		{"DELETE", "/documents/4b1e1d7c-0b4e-4a55-9a8e-0a6a1c1f0d01", "/documents/:id", "204"},
		{"POST", "/workflow-instances/abc/actions", "/workflow-instances/:id/actions", "409"},
		{"GET", "/audit-trail", "/audit-trail", "403"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.route, func(t *testing.T) {
			app.Test(httptest.NewRequest(tt.method, tt.target, nil))

			got := testutil.ToFloat64(m.requestCount.WithLabelValues(tt.method, tt.route, tt.status))
			assert.Equal(t, 1.0, got)
		})
	}

	assert.Equal(t, 4, testutil.CollectAndCount(m.requestDuration))
}

func TestPrometheusMiddleware_SameRouteDifferentIDs(t *testing.T) {
	app, m, _ := newMetricsApp(t)
	app.Get("/documents/:id/compliance-checks", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	for _, id := range []string{"a", "b", "c"} {
		app.Test(httptest.NewRequest("GET", "/documents/"+id+"/compliance-checks", nil))
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(m.requestCount.WithLabelValues("GET", "/documents/:id/compliance-checks", "200")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.requestCount))
}

func TestPrometheusMiddleware_SkipsMetricsEndpoint(t *testing.T) {
	app, _, reg := newMetricsApp(t)
	app.Get("/metrics", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	app.Test(httptest.NewRequest("GET", "/metrics", nil))

	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() == "http_requests_total" {
			assert.Empty(t, mf.GetMetric())
		}
	}
}

func TestNewPrometheusMiddleware_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheusMiddleware(reg)
	require.NoError(t, err)

	_, err = NewPrometheusMiddleware(reg)
	assert.Error(t, err)
}
