package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/textileledger/internal/adapter/http/handler"
	apimiddleware "github.com/iho/textileledger/internal/adapter/http/middleware"
	"github.com/iho/textileledger/internal/adapter/spreadsheet"
	"github.com/iho/textileledger/internal/domain"
	"github.com/iho/textileledger/internal/infrastructure/auth"
	"github.com/iho/textileledger/internal/infrastructure/metrics"
	"github.com/iho/textileledger/internal/usecase"
	"github.com/iho/textileledger/internal/usecase/mocks"
)

var testNow = time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC)

type stubIdempotencyStore struct {
	checkCalled bool
}

func (s *stubIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	s.checkCalled = true
	return false, nil, nil
}

func (s *stubIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return nil
}

func newRouterConfig(opts ...func(*RouterConfig)) RouterConfig {
	store := mocks.NewStore()
	clock := mocks.NewFixedClock(testNow)
	ids := &mocks.SequentialIDGenerator{}

	deps := usecase.LedgerDeps{
		TxManager:       &mocks.StoreTxManager{Store: store},
		ItemRepo:        &mocks.StoreItemRepository{Store: store},
		TransactionRepo: &mocks.StoreTransactionRepository{Store: store},
		StakeholderRepo: &mocks.StoreStakeholderRepository{Store: store},
		PackagingRepo:   &mocks.StorePackagingStyleRepository{Store: store},
		OutboxRepo:      &mocks.StoreOutboxRepository{Store: store},
		AuditRepo:       &mocks.StoreAuditRepository{Store: store},
		IDGen:           ids,
		Clock:           clock,
	}

	var ledgers []*handler.LedgerHandler
	for _, kind := range []domain.ItemKind{domain.ItemKindYarn, domain.ItemKindRaw, domain.ItemKindWarpBeam} {
		ledgers = append(ledgers, handler.NewLedgerHandler(
			usecase.NewLedgerUseCase(kind, deps), spreadsheet.NewStatementWriter(), spreadsheet.ContentType))
	}

	ok := handler.PingerFunc(func(context.Context) error { return nil })

	cfg := RouterConfig{
		ItemHandler: handler.NewItemHandler(usecase.NewItemUseCase(
			deps.TxManager, deps.ItemRepo, deps.TransactionRepo, deps.OutboxRepo, deps.AuditRepo, ids, clock)),
		StakeholderHandler:    handler.NewStakeholderHandler(usecase.NewStakeholderUseCase(deps.StakeholderRepo, ids, clock)),
		PackagingStyleHandler: handler.NewPackagingStyleHandler(usecase.NewPackagingStyleUseCase(deps.PackagingRepo, ids, clock)),
		ReconciliationHandler: handler.NewReconciliationHandler(usecase.NewReconciliationUseCase(deps.ItemRepo, deps.TransactionRepo, clock)),
		HealthHandler:         handler.NewHealthHandler(ok, nil),
		AuditHandler:          handler.NewAuditHandler(usecase.NewAuditUseCase(deps.AuditRepo)),
		LedgerHandlers:        ledgers,
		Logger:                zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

func do(t *testing.T, router http.Handler, method, path, body, token string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var decoded map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded), rec.Body.String())
	}
	return rec, decoded
}

func dataField(t *testing.T, resp map[string]any, key string) any {
	t.Helper()
	data, ok := resp["data"].(map[string]any)
	require.True(t, ok, "response has no data object: %v", resp)
	return data[key]
}

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec, _ := do(t, router, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, router, http.MethodGet, "/ready", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewRouter_LedgerFlow(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec, resp := do(t, router, http.MethodPost, "/api/v1/items", `{"kind":"yarn","name":"Cotton 40s"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	itemID := dataField(t, resp, "id").(string)

	rec, resp = do(t, router, http.MethodPost, "/api/v1/yarn/transactions",
		`{"item_id":"`+itemID+`","direction":"inbound","quantity":"18.9","count":10,"external_ref":"INV-1"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "YT-20240315-0001", dataField(t, resp, "code"))
	assert.Equal(t, "18.9", dataField(t, resp, "quantity_balance"))

	rec, resp = do(t, router, http.MethodPost, "/api/v1/yarn/transactions",
		`{"item_id":"`+itemID+`","direction":"outbound","quantity":"20","count":1}`, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, false, resp["success"])

	rec, resp = do(t, router, http.MethodPost, "/api/v1/yarn/transactions",
		`{"item_id":"`+itemID+`","direction":"outbound","quantity":"1.89","count":1}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "17.01", dataField(t, resp, "quantity_balance"))

	rec, resp = do(t, router, http.MethodGet, "/api/v1/yarn/items/"+itemID+"/balance", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "17.01", dataField(t, resp, "quantity"))
	assert.Equal(t, float64(9), dataField(t, resp, "count"))

	// The raw ledger does not see yarn items.
	rec, _ = do(t, router, http.MethodGet, "/api/v1/raw/items/"+itemID+"/balance", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, resp = do(t, router, http.MethodGet, "/api/v1/yarn/transactions?item_id="+itemID, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), dataField(t, resp, "total"))
	assert.Equal(t, float64(2), dataField(t, resp, "count"))
	assert.Equal(t, float64(50), dataField(t, resp, "limit"))

	rec, _ = do(t, router, http.MethodGet, "/api/v1/yarn/items/"+itemID+"/statement.xlsx", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, spreadsheet.ContentType, rec.Header().Get("Content-Type"))
	assert.NotZero(t, rec.Body.Len())

	rec, resp = do(t, router, http.MethodPost, "/api/v1/yarn/items/"+itemID+"/reset", `{"reason":"annual count"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, true, dataField(t, resp, "is_reset"))
	assert.Equal(t, "0", dataField(t, resp, "quantity_balance"))

	rec, resp = do(t, router, http.MethodGet, "/api/v1/reconciliation", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), dataField(t, resp, "reconciled_items"))

	rec, _ = do(t, router, http.MethodDelete, "/api/v1/items/"+itemID, "", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestNewRouter_AuthEnforcesRoles(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	m := metrics.NewWithRegisterer(prometheus.NewRegistry())
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.AuthEnabled = true
		cfg.TokenVerifier = jwtManager
		cfg.Metrics = m
	}))

	token := func(role domain.Role) string {
		tok, err := jwtManager.Generate(domain.Actor{ID: string(role) + "-1", Name: string(role), Role: role})
		require.NoError(t, err)
		return tok
	}
	admin, operator, viewer := token(domain.RoleAdmin), token(domain.RoleOperator), token(domain.RoleViewer)

	rec, _ := do(t, router, http.MethodGet, "/api/v1/items", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.AuthFailures.WithLabelValues("missing_header")))

	rec, _ = do(t, router, http.MethodGet, "/api/v1/items", "", viewer)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, router, http.MethodPost, "/api/v1/items", `{"kind":"raw","name":"Polyester"}`, viewer)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, resp := do(t, router, http.MethodPost, "/api/v1/items", `{"kind":"raw","name":"Polyester"}`, operator)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "operator", dataField(t, resp, "created_by"))
	itemID := dataField(t, resp, "id").(string)

	rec, _ = do(t, router, http.MethodPost, "/api/v1/raw/transactions", `{"item_id":"`+itemID+`","direction":"inbound","quantity":"5"}`, operator)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec, _ = do(t, router, http.MethodPost, "/api/v1/raw/items/"+itemID+"/reset", `{"reason":"recount"}`, operator)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = do(t, router, http.MethodPost, "/api/v1/raw/items/"+itemID+"/reset", `{"reason":"recount"}`, admin)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec, _ = do(t, router, http.MethodGet, "/api/v1/audit", "", operator)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, resp = do(t, router, http.MethodGet, "/api/v1/audit?action=transaction.reset", "", admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, float64(1), dataField(t, resp, "count"))
	entries := dataField(t, resp, "items").([]any)
	require.Len(t, entries, 1)
	assert.Equal(t, "admin", entries[0].(map[string]any)["user_id"])

	// Health endpoints stay open.
	rec, _ = do(t, router, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	rl := apimiddleware.NewRateLimiter(1, 1)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.RateLimiter = rl
	}))

	req1 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req1.RemoteAddr = "1.2.3.4:1234"
	rec1 := httptest.NewRecorder()
	router.ServeHTTP(rec1, req1)
	if rec1.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", rec1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req2.RemoteAddr = "1.2.3.4:1234"
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", rec2.Code)
	}
}

func TestNewRouter_IdempotencyMiddlewareInvokesStore(t *testing.T) {
	store := &stubIdempotencyStore{}
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.IdempotencyStore = store
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/items", strings.NewReader(`{"kind":"yarn","name":"Wool"}`))
	req.Header.Set(apimiddleware.IdempotencyKeyHeader, "key-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if !store.checkCalled {
		t.Fatalf("expected idempotency store to be used")
	}
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.MetricsHandler = http.NotFoundHandler()
	}))

	chiRoutes, ok := router.(chi.Routes)
	if !ok {
		t.Fatal("router does not implement chi.Routes")
	}

	var got []string
	err := chi.Walk(chiRoutes, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		got = append(got, method+" "+strings.TrimSuffix(route, "/"))
		return nil
	})
	require.NoError(t, err)
	sort.Strings(got)

	expected := []string{
		"GET /health",
		"GET /ready",
		"GET /metrics",
		"POST /api/v1/items",
		"GET /api/v1/items",
		"GET /api/v1/items/{id}",
		"PUT /api/v1/items/{id}",
		"DELETE /api/v1/items/{id}",
		"PUT /api/v1/items/{id}/status",
		"GET /api/v1/items/{id}/lineage",
		"POST /api/v1/stakeholders",
		"PUT /api/v1/stakeholders/{id}/status",
		"POST /api/v1/packaging-styles",
		"GET /api/v1/packaging-styles/{id}",
		"GET /api/v1/reconciliation",
		"GET /api/v1/audit",
	}
	for _, kind := range []string{"yarn", "raw", "warp-beams"} {
		expected = append(expected,
			"POST /api/v1/"+kind+"/transactions",
			"GET /api/v1/"+kind+"/transactions",
			"GET /api/v1/"+kind+"/transactions/{id}",
			"GET /api/v1/"+kind+"/items/{id}/balance",
			"POST /api/v1/"+kind+"/items/{id}/reset",
			"GET /api/v1/"+kind+"/items/{id}/statement.xlsx",
		)
	}

	for _, route := range expected {
		assert.Contains(t, got, route)
	}
}

func TestKindSegment(t *testing.T) {
	assert.Equal(t, "yarn", KindSegment(domain.ItemKindYarn))
	assert.Equal(t, "raw", KindSegment(domain.ItemKindRaw))
	assert.Equal(t, "warp-beams", KindSegment(domain.ItemKindWarpBeam))
}
