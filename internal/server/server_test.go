package server

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sliramanoel/venda/internal/config"
	"github.com/sliramanoel/venda/internal/infrastructure"
	"github.com/sliramanoel/venda/internal/model"
	"github.com/sliramanoel/venda/internal/pix"
	"github.com/sliramanoel/venda/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const webhookSecret = "whsec-test"

func init() {
	gin.SetMode(gin.TestMode)
}

type testAPI struct {
	t      *testing.T
	router *gin.Engine
	svcs   *Services
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "test", Language: "pt-BR", AllowedOrigins: []string{"*"}},
		Database: config.DatabaseConfig{
			Driver:   "sqlite",
			Path:     filepath.Join(t.TempDir(), "api.db"),
			LogLevel: "silent",
		},
		Payment: config.PaymentConfig{
			Gateway:           "orionpay",
			TestMode:          true,
			ExpirationMinutes: 30,
			WebhookSecret:     webhookSecret,
			MerchantName:      "NeuroVita",
			QRSize:            128,
		},
		Auth:      config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour},
		RateLimit: config.RateLimitConfig{RPS: 1000, Burst: 1000},
	}

	db, err := infrastructure.ConnectDatabase(cfg.Database)
	require.NoError(t, err)
	require.NoError(t, infrastructure.MigrateAllSchemas(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	svcs, err := NewServices(cfg, db)
	require.NoError(t, err)
	return &testAPI{t: t, router: NewRouter(cfg, svcs), svcs: svcs}
}

func (a *testAPI) do(method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	a.t.Helper()

	var payload []byte
	switch b := body.(type) {
	case nil:
	case []byte:
		payload = b
	case string:
		payload = []byte(b)
	default:
		var err error
		payload, err = json.Marshal(b)
		require.NoError(a.t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func orderBody() map[string]any {
	return map[string]any{
		"name":          "José Silva",
		"email":         "joao.silva@gmail.com",
		"phone":         "(11) 98888-7777",
		"cep":           "01310-100",
		"address":       "Avenida Paulista",
		"number":        "1000",
		"neighborhood":  "Bela Vista",
		"city":          "São Paulo",
		"state":         "SP",
		"quantity":      1,
		"productPrice":  97.0,
		"shippingPrice": 0.0,
		"totalPrice":    97.0,
	}
}

func (a *testAPI) createOrder() model.Order {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/orders", orderBody(), nil)
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	return decode[model.Order](a.t, w)
}

func (a *testAPI) adminToken() string {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/auth/register", map[string]any{
		"email": "admin@neurovita.com.br", "password": "secret1", "name": "Admin",
	}, nil)
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	return decode[model.TokenResponse](a.t, w).AccessToken
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)
	w := api.do(http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestCreateOrderEndpoint(t *testing.T) {
	api := newTestAPI(t)

	order := api.createOrder()
	assert.Regexp(t, `^NV-\d{8}-[A-Z0-9]{6}$`, order.OrderNumber)
	assert.Equal(t, model.OrderStatusPending, order.Status)

	body := orderBody()
	body["quantity"] = 4
	w := api.do(http.MethodPost, "/api/orders", body, map[string]string{"Accept-Language": "en"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode[struct {
		Error   string            `json:"error"`
		Details map[string]string `json:"details"`
	}](t, w)
	assert.Contains(t, resp.Details, "quantity")

	body = orderBody()
	body["name"] = "A B"
	w = api.do(http.MethodPost, "/api/orders", body, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp = decode[struct {
		Error   string            `json:"error"`
		Details map[string]string `json:"details"`
	}](t, w)
	assert.NotEmpty(t, resp.Details["name"])

	w = api.do(http.MethodPost, "/api/orders", "{broken", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestValidateContactEndpoint(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/api/orders/validate", map[string]any{
		"name": "José Silva", "email": "test@example.com", "phone": "(11) 98888-7777",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[struct {
		Valid  bool              `json:"valid"`
		Errors map[string]string `json:"errors"`
	}](t, w)
	assert.False(t, resp.Valid)
	assert.Contains(t, resp.Errors, "email")
	assert.NotContains(t, resp.Errors, "name")
}

func TestGetOrderEndpoint(t *testing.T) {
	api := newTestAPI(t)
	order := api.createOrder()

	w := api.do(http.MethodGet, "/api/orders/"+order.OrderNumber, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, order.ID, decode[model.Order](t, w).ID)

	w = api.do(http.MethodGet, "/api/orders/NV-20240101-AAAAAA", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPixFlow(t *testing.T) {
	api := newTestAPI(t)
	order := api.createOrder()

	w := api.do(http.MethodPost, "/api/payments/pix/generate?order_id="+order.ID, nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	first := decode[map[string]any](t, w)
	assert.Equal(t, true, first["success"])
	assert.Equal(t, true, first["testMode"])
	_, err := pix.Decode(first["pixCode"].(string))
	assert.NoError(t, err)
	assert.Contains(t, first["qrCode"], "data:image/png;base64,")

	w = api.do(http.MethodPost, "/api/payments/pix/generate?order_id="+order.OrderNumber, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	second := decode[map[string]any](t, w)
	assert.Equal(t, first, second)

	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodPost, "/api/payments/pix/generate", nil, nil).Code)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodPost, "/api/payments/pix/generate?order_id=missing", nil, nil).Code)

	w = api.do(http.MethodGet, "/api/payments/pix/status/"+order.ID, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	status := decode[model.PaymentStatus](t, w)
	assert.False(t, status.IsPaid)
	require.NotNil(t, status.TransactionID)
	assert.Equal(t, first["transactionId"], *status.TransactionID)

	event := []byte(`{"event":"payment.success","data":{"transactionId":"` + *status.TransactionID + `"}}`)
	w = api.do(http.MethodPost, "/api/webhooks/orionpay", event, map[string]string{"X-Webhook-Signature": "deadbeef"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	mac := hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write(event)
	w = api.do(http.MethodPost, "/api/webhooks/orionpay", event, map[string]string{"X-Webhook-Signature": hex.EncodeToString(mac.Sum(nil))})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"received":true,"event":"payment.success"}`, w.Body.String())

	w = api.do(http.MethodGet, "/api/payments/pix/status/"+order.OrderNumber, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[model.PaymentStatus](t, w).IsPaid)
}

func TestWebhookEndpointErrors(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/api/webhooks/orionpay", "{not json", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPost, "/api/webhooks/orionpay", `{"event":"refund.created","data":[1,2]}`, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"received":true,"event":"refund.created"}`, w.Body.String())

	w = api.do(http.MethodGet, "/api/webhooks/orionpay/test", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminEndpoints(t *testing.T) {
	api := newTestAPI(t)
	order := api.createOrder()

	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/api/orders", nil, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodPatch, "/api/orders/"+order.ID+"/status", map[string]any{"status": "paid"}, nil).Code)

	token := api.adminToken()

	w := api.do(http.MethodPost, "/api/auth/register", map[string]any{
		"email": "other@neurovita.com.br", "password": "secret1", "name": "Other",
	}, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodGet, "/api/orders?page=1&limit=10", nil, bearer(token))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	page := decode[service.OrderPage](t, w)
	assert.Equal(t, int64(1), page.Total)

	w = api.do(http.MethodPatch, "/api/orders/"+order.ID+"/status", map[string]any{"status": "paid"}, bearer(token))
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[model.Order](t, w)
	assert.Equal(t, model.OrderStatusPaid, updated.Status)
	assert.NotNil(t, updated.PaidAt)

	w = api.do(http.MethodPatch, "/api/orders/"+order.ID+"/status", map[string]any{"status": "lost"}, bearer(token))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/api/orders/"+order.ID+"/history", nil, nil).Code)
	w = api.do(http.MethodGet, "/api/orders/"+order.OrderNumber+"/history", nil, bearer(token))
	require.Equal(t, http.StatusOK, w.Code)
	history := decode[struct {
		Events []model.OrderEvent `json:"events"`
	}](t, w)
	require.Len(t, history.Events, 1)
	assert.Equal(t, model.OrderStatusPaid, history.Events[0].ToStatus)
	assert.Equal(t, "admin@neurovita.com.br", history.Events[0].ChangedBy)

	w = api.do(http.MethodGet, "/api/auth/me", nil, bearer(token))
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[struct {
		User        model.AdminUser `json:"user"`
		Permissions []string        `json:"permissions"`
	}](t, w)
	assert.Equal(t, "admin@neurovita.com.br", me.User.Email)
	assert.Contains(t, me.Permissions, "settings:write")

	w = api.do(http.MethodPost, "/api/auth/login", map[string]any{"email": "admin@neurovita.com.br", "password": "wrong1"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(http.MethodPost, "/api/auth/verify", nil, bearer(token))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOperatorCannotEditSettings(t *testing.T) {
	api := newTestAPI(t)
	_, err := api.svcs.Users.CreateUser(context.Background(), &service.CreateUserRequest{
		Email: "op@neurovita.com.br", Password: "secret1", Name: "Operator", Role: model.RoleOperator,
	})
	require.NoError(t, err)

	w := api.do(http.MethodPost, "/api/auth/login", map[string]any{"email": "op@neurovita.com.br", "password": "secret1"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	token := decode[model.TokenResponse](t, w).AccessToken

	w = api.do(http.MethodPut, "/api/settings", map[string]any{"name": "Hacked"}, bearer(token))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodGet, "/api/analytics/stats/overview", nil, bearer(token))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSettingsEndpoints(t *testing.T) {
	api := newTestAPI(t)
	token := api.adminToken()

	w := api.do(http.MethodGet, "/api/settings", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "NeuroVita", decode[model.SiteSettings](t, w).Name)

	w = api.do(http.MethodPut, "/api/settings", `{"name":"Vita Max","instagram":null}`, bearer(token))
	require.Equal(t, http.StatusOK, w.Code)
	settings := decode[model.SiteSettings](t, w)
	assert.Equal(t, "Vita Max", settings.Name)
	assert.Equal(t, model.DefaultSiteSettings().Instagram, settings.Instagram)

	w = api.do(http.MethodPut, "/api/images", `{"main":"https://cdn.example/a.jpg"}`, bearer(token))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://cdn.example/a.jpg", decode[model.ProductImages](t, w).Main)

	w = api.do(http.MethodGet, "/api/images", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://cdn.example/a.jpg", decode[model.ProductImages](t, w).Main)
}

func TestAnalyticsEndpoints(t *testing.T) {
	api := newTestAPI(t)
	token := api.adminToken()

	ua := map[string]string{"User-Agent": "Mozilla/5.0 (Windows NT 10.0) Chrome/120.0"}
	assert.Equal(t, http.StatusOK, api.do(http.MethodPost, "/api/analytics/track/pageview", map[string]any{"page": "/"}, ua).Code)
	assert.Equal(t, http.StatusOK, api.do(http.MethodPost, "/api/analytics/track/action", map[string]any{"action": "click_cta"}, ua).Code)
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodPost, "/api/analytics/track/pageview", map[string]any{}, ua).Code)

	w := api.do(http.MethodGet, "/api/analytics/stats/overview?period=today", nil, bearer(token))
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[model.OverviewStats](t, w)
	assert.Equal(t, int64(1), stats.TotalPageviews)
	assert.Equal(t, int64(1), stats.UniqueVisitors)
	assert.Equal(t, int64(1), stats.Actions["click_cta"])
}
