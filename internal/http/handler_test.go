package http_test

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealkart/internal/analytics"
	"dealkart/internal/products"
	"dealkart/internal/testsupport"
)

func TestHealthEndpoint(t *testing.T) {
	ta := testsupport.SetupTestApp(t)

	resp, err := ta.Fiber.Test(httptest.NewRequest("GET", "/_health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["time"])
}

func TestPublicProductsEndpoint(t *testing.T) {
	ta := testsupport.SetupTestApp(t)
	testsupport.CreateTestProduct(t, ta.DB, "Headphones")

	resp, err := ta.Fiber.Test(httptest.NewRequest("GET", "/api/v1/products", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var list []products.Product
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, "Headphones", list[0].Title)
}

func TestLoginEndpoint(t *testing.T) {
	ta := testsupport.SetupTestApp(t)
	testsupport.CreateTestUserForAuth(t, ta.DB, "admin@example.com", "s3cret-pass")

	t.Run("valid credentials issue a token", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/login",
			strings.NewReader(`{"email":"admin@example.com","password":"s3cret-pass"}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := ta.Fiber.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body struct {
			Success bool   `json:"success"`
			Token   string `json:"token"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.True(t, body.Success)
		assert.NotEmpty(t, body.Token)
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/login",
			strings.NewReader(`{"email":"admin@example.com","password":"wrong"}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := ta.Fiber.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "INVALID_CREDENTIALS", body["code"])
	})
}

func TestAdminRoutesRequireAuth(t *testing.T) {
	ta := testsupport.SetupTestApp(t)

	routes := []struct {
		method string
		path   string
	}{
		{"GET", "/admin/api/analytics"},
		{"GET", "/admin/api/auth/verify"},
		{"POST", "/admin/api/products"},
		{"PUT", "/admin/api/products/some-id"},
		{"DELETE", "/admin/api/products/some-id"},
		{"POST", "/admin/api/scrape"},
		{"POST", "/admin/api/account/password"},
	}

	for _, route := range routes {
		resp, err := ta.Fiber.Test(httptest.NewRequest(route.method, route.path, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode,
			"%s %s should require auth", route.method, route.path)
	}
}

func TestVerifyTokenEndpoint(t *testing.T) {
	ta := testsupport.SetupTestApp(t)
	token := testsupport.LoginTestUser(t, ta, "admin@example.com", "s3cret-pass")

	req := httptest.NewRequest("GET", "/admin/api/auth/verify", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := ta.Fiber.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["valid"])
	assert.Equal(t, "admin@example.com", body["email"])
}

func TestProductAdminCRUD(t *testing.T) {
	ta := testsupport.SetupTestApp(t)
	token := testsupport.LoginTestUser(t, ta, "admin@example.com", "s3cret-pass")

	var productID string

	t.Run("create", func(t *testing.T) {
		payload := `{"title":"Smart Band","price":1999,"originalPrice":3499,` +
			`"platform":"Flipkart","affiliateLink":"https://www.flipkart.com/p/1?affid=deals"}`
		req := httptest.NewRequest("POST", "/admin/api/products", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := ta.Fiber.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

		var created products.Product
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, "Smart Band", created.Title)
		assert.Equal(t, "General", created.Category)
		productID = created.ID
	})

	t.Run("create rejects invalid payloads", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/admin/api/products",
			strings.NewReader(`{"title":"No Link"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := ta.Fiber.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("update", func(t *testing.T) {
		req := httptest.NewRequest("PUT", "/admin/api/products/"+productID,
			strings.NewReader(`{"price":1499}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := ta.Fiber.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var updated products.Product
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&updated))
		assert.Equal(t, 1499, updated.Price)
		assert.Equal(t, "Smart Band", updated.Title)
	})

	t.Run("update unknown product returns 404", func(t *testing.T) {
		req := httptest.NewRequest("PUT", "/admin/api/products/missing-id",
			strings.NewReader(`{"price":1}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := ta.Fiber.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})

	t.Run("delete", func(t *testing.T) {
		req := httptest.NewRequest("DELETE", "/admin/api/products/"+productID, nil)
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := ta.Fiber.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		_, err = products.FindByID(ta.DB, productID)
		assert.ErrorIs(t, err, products.ErrProductNotFound)
	})

	t.Run("delete again returns 404", func(t *testing.T) {
		req := httptest.NewRequest("DELETE", "/admin/api/products/"+productID, nil)
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := ta.Fiber.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})
}

func TestAnalyticsEndpoint(t *testing.T) {
	ta := testsupport.SetupTestApp(t)
	token := testsupport.LoginTestUser(t, ta, "admin@example.com", "s3cret-pass")

	require.NoError(t, ta.EventLog.AppendVisitor(testsupport.MakeVisitor("s1", "/", time.Hour)))
	require.NoError(t, ta.EventLog.AppendVisitor(testsupport.MakeVisitor("s1", "/products", 30*time.Minute)))
	require.NoError(t, ta.EventLog.AppendClick(testsupport.MakeClick("s1", "p1", "Headphones", 20*time.Minute)))

	t.Run("returns the aggregated read-model", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/admin/api/analytics?days=7", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := ta.Fiber.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var model analytics.ReadModel
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&model))
		assert.Equal(t, 2, model.Summary.TotalVisitors)
		assert.Equal(t, 1, model.Summary.TotalClicks)
		assert.Equal(t, 50.0, model.Summary.ConversionRate)
		assert.Len(t, model.ChartData, 7)
		assert.Nil(t, model.Visitors)
	})

	t.Run("visitors appear only when requested", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/admin/api/analytics?days=7&visitors=true", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := ta.Fiber.Test(req)
		require.NoError(t, err)

		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(raw), `"visitors"`)

		var model analytics.ReadModel
		require.NoError(t, json.Unmarshal(raw, &model))
		require.NotNil(t, model.Visitors)
		require.Len(t, *model.Visitors, 1)
		assert.Equal(t, "s1", (*model.Visitors)[0].SessionID)
	})

	t.Run("invalid days falls back to the default window", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/admin/api/analytics?days=-5", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := ta.Fiber.Test(req)
		require.NoError(t, err)

		var model analytics.ReadModel
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&model))
		assert.Len(t, model.ChartData, analytics.DefaultWindowDays)
	})
}

func TestScrapeEndpoint(t *testing.T) {
	ta := testsupport.SetupTestApp(t)
	token := testsupport.LoginTestUser(t, ta, "admin@example.com", "s3cret-pass")

	t.Run("missing URL is a 400", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/admin/api/scrape", strings.NewReader(`{"url":""}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := ta.Fiber.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unreachable URL yields a fallback draft", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/admin/api/scrape",
			strings.NewReader(`{"url":"http://127.0.0.1:1/amazon-product"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := ta.Fiber.Test(req, 10000)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, true, body["fetchFailed"])
	})
}

func TestChangePasswordEndpoint(t *testing.T) {
	ta := testsupport.SetupTestApp(t)
	token := testsupport.LoginTestUser(t, ta, "admin@example.com", "old-pass")

	t.Run("wrong current password is rejected", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/admin/api/account/password",
			strings.NewReader(`{"currentPassword":"wrong","newPassword":"new-pass"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := ta.Fiber.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("valid change succeeds and old password stops working", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/admin/api/account/password",
			strings.NewReader(`{"currentPassword":"old-pass","newPassword":"new-pass"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := ta.Fiber.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		login := httptest.NewRequest("POST", "/login",
			strings.NewReader(`{"email":"admin@example.com","password":"old-pass"}`))
		login.Header.Set("Content-Type", "application/json")
		resp, err = ta.Fiber.Test(login)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}
