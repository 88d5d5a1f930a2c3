package routes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/backoffice/api/controllers"
	"github.com/angelmondragon/backoffice/internal/backoffice"
	"github.com/angelmondragon/backoffice/internal/ledger"
	"github.com/angelmondragon/backoffice/pkg/clock"
	"github.com/angelmondragon/backoffice/pkg/config"
	"github.com/angelmondragon/backoffice/pkg/db/models"
	"github.com/angelmondragon/backoffice/pkg/logger"
	"github.com/angelmondragon/backoffice/pkg/metrics"
	"github.com/angelmondragon/backoffice/pkg/pagination"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error {
	return s.err
}

type memoryIdempotencyStore struct {
	data map[string]string
}

func (m *memoryIdempotencyStore) Get(_ context.Context, key string) (string, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (m *memoryIdempotencyStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = fmt.Sprint(value)
	return true, nil
}

func (m *memoryIdempotencyStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.data[key] = fmt.Sprint(value)
	return nil
}

func (m *memoryIdempotencyStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *memoryIdempotencyStore) IdempotencyKey(scope, id string) string {
	return scope + ":" + id
}

type testEnv struct {
	handler http.Handler
	svc     *backoffice.Service
	store   *ledger.Store
}

func testConfig() *config.Config {
	return &config.Config{
		App:         config.AppConfig{Env: "test", CORSOrigins: []string{"http://localhost:3000"}},
		Metrics:     config.MetricsConfig{Enabled: true, Path: "/metrics"},
		Idempotency: config.IdempotencyConfig{DefaultTTL: time.Hour, SaleTTL: 2 * time.Hour},
	}
}

func newTestEnv(t *testing.T, deps Deps) testEnv {
	t.Helper()
	clk := clock.NewFixed(time.Date(2026, 3, 14, 11, 0, 0, 0, time.UTC))
	store := ledger.New(ledger.Options{Clock: clk})
	require.NoError(t, store.SeedReferenceData(ledger.ReferenceData{
		Investors: []models.Investor{{
			ID:                  "inv-1",
			Name:                "Ana",
			InvestmentAmount:    decimal.NewFromInt(500000),
			PercentageOwnership: decimal.RequireFromString("0.25"),
		}},
		FinancialRecords: []models.FinancialRecord{
			{Period: "2026-01", TotalProfit: decimal.NewFromInt(100000)},
		},
	}))
	_, err := store.UpsertInventoryItem(models.InventoryItem{
		ID:             "A",
		Name:           "Tote",
		Category:       "bags",
		WholesalePrice: decimal.NewFromInt(400),
		SellingPrice:   decimal.NewFromInt(1000),
		Quantity:       10,
	})
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	svc, err := backoffice.NewService(backoffice.Deps{Store: store, Metrics: metrics.NewLedgerMetrics(reg), Logger: logger.Nop()})
	require.NoError(t, err)
	if deps.Gatherer == nil {
		deps.Gatherer = reg
	}
	return testEnv{handler: NewRouter(testConfig(), logger.Nop(), svc, deps), svc: svc, store: store}
}

func (e testEnv) do(t *testing.T, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func TestHealthRoutes(t *testing.T) {
	env := newTestEnv(t, Deps{Readiness: map[string]controllers.Pinger{"database": stubPinger{}, "redis": nil}})

	live := env.do(t, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, live.Code)
	assert.Equal(t, "test", live.Header().Get("X-Backoffice-Env"))

	ready := env.do(t, http.MethodGet, "/health/ready", "", nil)
	require.Equal(t, http.StatusOK, ready.Code)
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, ready).Data, &body))
	assert.Equal(t, "ready", body.Status)
	assert.Equal(t, map[string]string{"database": "ok", "redis": "disabled"}, body.Checks)
}

func TestHealthReadyReportsFailingDependency(t *testing.T) {
	env := newTestEnv(t, Deps{Readiness: map[string]controllers.Pinger{"database": stubPinger{err: errors.New("refused")}}})

	rec := env.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "DEPENDENCY_ERROR", decodeEnvelope(t, rec).Error.Code)
}

func TestCommitSaleOverHTTP(t *testing.T) {
	env := newTestEnv(t, Deps{})
	headers := map[string]string{"X-Actor-Id": "cashier-7"}

	rec := env.do(t, http.MethodPost, "/api/v1/sales", `{
		"lines": [{"item_id": "A", "quantity": 3, "unit_price_charged": "1000"}],
		"discount_percent": "10",
		"payment_method": "card"
	}`, headers)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var sale models.SaleRecord
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &sale))
	assert.True(t, sale.Total.Equal(decimal.NewFromInt(2700)))
	assert.Equal(t, "cashier-7", sale.SoldBy)

	item, err := env.store.Item("A")
	require.NoError(t, err)
	assert.Equal(t, 7, item.Quantity)

	list := env.do(t, http.MethodGet, "/api/v1/sales", "", nil)
	var page pagination.Page[models.SaleRecord]
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, list).Data, &page))
	assert.Len(t, page.Items, 1)
	assert.Empty(t, page.NextCursor)
}

func TestListSalesPages(t *testing.T) {
	env := newTestEnv(t, Deps{})
	for i := 0; i < 3; i++ {
		rec := env.do(t, http.MethodPost, "/api/v1/sales", `{"lines": [{"item_id": "A", "quantity": 1, "unit_price_charged": "1000"}], "payment_method": "cash", "sold_by": "m"}`, nil)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	first := env.do(t, http.MethodGet, "/api/v1/sales?limit=2", "", nil)
	require.Equal(t, http.StatusOK, first.Code)
	var page pagination.Page[models.SaleRecord]
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, first).Data, &page))
	assert.Len(t, page.Items, 2)
	require.NotEmpty(t, page.NextCursor)

	second := env.do(t, http.MethodGet, "/api/v1/sales?limit=2&cursor="+page.NextCursor, "", nil)
	require.Equal(t, http.StatusOK, second.Code)
	var rest pagination.Page[models.SaleRecord]
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, second).Data, &rest))
	assert.Len(t, rest.Items, 1)
	assert.Empty(t, rest.NextCursor)

	bad := env.do(t, http.MethodGet, "/api/v1/sales?limit=500", "", nil)
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestCommitSaleRejections(t *testing.T) {
	env := newTestEnv(t, Deps{})

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"empty cart", `{"lines": [], "payment_method": "cash", "sold_by": "m"}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"bad payment", `{"lines": [{"item_id": "A", "quantity": 1, "unit_price_charged": "1"}], "payment_method": "barter", "sold_by": "m"}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"no seller", `{"lines": [{"item_id": "A", "quantity": 1, "unit_price_charged": "1"}], "payment_method": "cash"}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"over stock", `{"lines": [{"item_id": "A", "quantity": 11, "unit_price_charged": "1"}], "payment_method": "cash", "sold_by": "m"}`, http.StatusConflict, "INSUFFICIENT_STOCK"},
		{"unknown item", `{"lines": [{"item_id": "Z", "quantity": 1, "unit_price_charged": "1"}], "payment_method": "cash", "sold_by": "m"}`, http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/v1/sales", tt.body, nil)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, decodeEnvelope(t, rec).Error.Code)
		})
	}

	item, err := env.store.Item("A")
	require.NoError(t, err)
	assert.Equal(t, 10, item.Quantity)
}

func TestCommitSaleIsIdempotent(t *testing.T) {
	store := &memoryIdempotencyStore{data: map[string]string{}}
	env := newTestEnv(t, Deps{Idempotency: store})
	body := `{"lines": [{"item_id": "A", "quantity": 2, "unit_price_charged": "1000"}], "payment_method": "cash", "sold_by": "m"}`
	headers := map[string]string{"Idempotency-Key": "register-1-0001", "X-Actor-Id": "cashier-7"}

	first := env.do(t, http.MethodPost, "/api/v1/sales", body, headers)
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	replay := env.do(t, http.MethodPost, "/api/v1/sales", body, headers)
	require.Equal(t, http.StatusCreated, replay.Code)
	assert.JSONEq(t, first.Body.String(), replay.Body.String())
	assert.Equal(t, "true", replay.Header().Get("Idempotent-Replayed"))

	item, err := env.store.Item("A")
	require.NoError(t, err)
	assert.Equal(t, 8, item.Quantity)
	assert.Len(t, env.svc.ListSales(context.Background()), 1)

	missing := env.do(t, http.MethodPost, "/api/v1/sales", body, map[string]string{"X-Actor-Id": "cashier-7"})
	assert.Equal(t, http.StatusBadRequest, missing.Code)
}

func TestInventoryRoutes(t *testing.T) {
	env := newTestEnv(t, Deps{})

	created := env.do(t, http.MethodPost, "/api/v1/inventory", `{"id": "S", "name": "Scarf", "category": "accessories", "wholesale_price": "200", "selling_price": "450", "quantity": 2}`, nil)
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())
	var item models.InventoryItem
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, created).Data, &item))
	assert.Equal(t, "low-stock", string(item.Status))

	adjusted := env.do(t, http.MethodPost, "/api/v1/inventory/S/adjust", `{"delta": 10, "reason": "restock"}`, nil)
	require.Equal(t, http.StatusOK, adjusted.Code, adjusted.Body.String())
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, adjusted).Data, &item))
	assert.Equal(t, 12, item.Quantity)
	assert.Equal(t, "in-stock", string(item.Status))

	badReason := env.do(t, http.MethodPost, "/api/v1/inventory/S/adjust", `{"delta": 1, "reason": "gift"}`, nil)
	assert.Equal(t, http.StatusBadRequest, badReason.Code)

	priced := env.do(t, http.MethodPatch, "/api/v1/inventory/S/price", `{"selling_price": "150"}`, nil)
	require.Equal(t, http.StatusOK, priced.Code, priced.Body.String())
	var price struct {
		Item           models.InventoryItem `json:"item"`
		NegativeMargin bool                 `json:"negative_margin"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, priced).Data, &price))
	assert.True(t, price.NegativeMargin)

	emptyPrice := env.do(t, http.MethodPatch, "/api/v1/inventory/S/price", `{}`, nil)
	assert.Equal(t, http.StatusBadRequest, emptyPrice.Code)

	removed := env.do(t, http.MethodDelete, "/api/v1/inventory/S", "", nil)
	assert.Equal(t, http.StatusOK, removed.Code)
	missing := env.do(t, http.MethodDelete, "/api/v1/inventory/S", "", nil)
	assert.Equal(t, http.StatusNotFound, missing.Code)

	listed := env.do(t, http.MethodGet, "/api/v1/inventory", "", nil)
	var items []models.InventoryItem
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, listed).Data, &items))
	require.Len(t, items, 1)
	assert.Equal(t, "A", items[0].ID)
}

func TestWithdrawalLifecycleOverHTTP(t *testing.T) {
	env := newTestEnv(t, Deps{})

	over := env.do(t, http.MethodPost, "/api/v1/withdrawals", `{"investor_id": "inv-1", "amount": "25001", "month": "2026-03"}`, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, over.Code)
	assert.Equal(t, "OVER_WITHDRAWAL", decodeEnvelope(t, over).Error.Code)

	created := env.do(t, http.MethodPost, "/api/v1/withdrawals", `{"investor_id": "inv-1", "amount": "10000", "month": "2026-03"}`, nil)
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())
	var record models.WithdrawalRecord
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, created).Data, &record))
	assert.Equal(t, "pending", string(record.Status))

	early := env.do(t, http.MethodPost, "/api/v1/withdrawals/"+record.ID+"/complete", "", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, early.Code)

	for _, step := range []string{"approve", "complete"} {
		rec := env.do(t, http.MethodPost, "/api/v1/withdrawals/"+record.ID+"/"+step, "", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	summary := env.do(t, http.MethodGet, "/api/v1/investors/inv-1/summary", "", nil)
	require.Equal(t, http.StatusOK, summary.Code)
	var body struct {
		WithdrawnAmount  decimal.Decimal `json:"withdrawn_amount"`
		AvailableBalance decimal.Decimal `json:"available_balance"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, summary).Data, &body))
	assert.True(t, body.WithdrawnAmount.Equal(decimal.NewFromInt(10000)))
	assert.True(t, body.AvailableBalance.Equal(decimal.NewFromInt(15000)))

	cancel := env.do(t, http.MethodPost, "/api/v1/withdrawals/"+record.ID+"/cancel", "", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, cancel.Code)

	unknown := env.do(t, http.MethodGet, "/api/v1/investors/nobody/summary", "", nil)
	assert.Equal(t, http.StatusNotFound, unknown.Code)
}

func TestReportsAndNotifications(t *testing.T) {
	env := newTestEnv(t, Deps{})
	sale := env.do(t, http.MethodPost, "/api/v1/sales", `{"lines": [{"item_id": "A", "quantity": 6, "unit_price_charged": "1000"}], "payment_method": "cash", "sold_by": "m"}`, nil)
	require.Equal(t, http.StatusCreated, sale.Code, sale.Body.String())

	report := env.do(t, http.MethodGet, "/api/v1/reports/sales?from=2026-03-01&to=2026-04-01&sold_by=m", "", nil)
	require.Equal(t, http.StatusOK, report.Code, report.Body.String())
	var summary struct {
		Count int `json:"sale_count"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, report).Data, &summary))
	assert.Equal(t, 1, summary.Count)

	badRange := env.do(t, http.MethodGet, "/api/v1/reports/sales?from=2026-04-01&to=2026-03-01", "", nil)
	assert.Equal(t, http.StatusBadRequest, badRange.Code)
	badStatus := env.do(t, http.MethodGet, "/api/v1/reports/sales?status=refunded", "", nil)
	assert.Equal(t, http.StatusBadRequest, badStatus.Code)

	alerts := env.do(t, http.MethodGet, "/api/v1/reports/stock-alerts", "", nil)
	require.Equal(t, http.StatusOK, alerts.Code)
	var alertRows []map[string]any
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, alerts).Data, &alertRows))
	assert.Len(t, alertRows, 1)

	valuation := env.do(t, http.MethodGet, "/api/v1/reports/valuation", "", nil)
	assert.Equal(t, http.StatusOK, valuation.Code)

	feed := env.do(t, http.MethodGet, "/api/v1/notifications?limit=10", "", nil)
	require.Equal(t, http.StatusOK, feed.Code)
	var list struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
		UnreadCount int `json:"unread_count"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, feed).Data, &list))
	require.NotEmpty(t, list.Items)
	assert.Equal(t, len(list.Items), list.UnreadCount)

	read := env.do(t, http.MethodPost, "/api/v1/notifications/"+list.Items[0].ID+"/read", "", nil)
	assert.Equal(t, http.StatusOK, read.Code)
	missing := env.do(t, http.MethodPost, "/api/v1/notifications/nope/read", "", nil)
	assert.Equal(t, http.StatusNotFound, missing.Code)

	all := env.do(t, http.MethodPost, "/api/v1/notifications/read-all", "", nil)
	require.Equal(t, http.StatusOK, all.Code)
	var updated struct {
		Updated int `json:"updated"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, all).Data, &updated))
	assert.Equal(t, list.UnreadCount-1, updated.Updated)
}

func TestMetricsRoute(t *testing.T) {
	env := newTestEnv(t, Deps{})
	env.do(t, http.MethodPost, "/api/v1/sales", `{"lines": [{"item_id": "A", "quantity": 1, "unit_price_charged": "1000"}], "payment_method": "cash", "sold_by": "m"}`, nil)

	rec := env.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `backoffice_operation_success_total{operation="commit_sale"} 1`)
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t, Deps{})
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/sales", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Idempotency-Key")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
