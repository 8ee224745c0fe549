package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"laplata/internal/analysis"
	"laplata/internal/auth"
	"laplata/internal/config"
	"laplata/internal/ledger"
	applog "laplata/internal/log"
	"laplata/internal/services"
	"laplata/internal/storage"
)

func testConfig() *config.Config {
	cfg := config.Load()
	cfg.SummaryCacheSize = 8
	cfg.SummaryCacheTTL = time.Minute
	cfg.RateLimitPerMinute = 1000
	return cfg
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	kv := storage.NewMemoryKV()
	store := ledger.NewStore(kv)

	mock := analysis.NewMock()
	mock.ReceiptDelay = 0
	mock.AudioDelay = 0
	mock.FileDelay = 0

	runner := services.NewAnalysisService(store, mock, mock, mock)
	ledgerSvc := services.NewLedgerService(store, nil, runner)
	authSvc := auth.NewService(kv)

	logger := applog.New(applog.DefaultConfig())
	return NewServer(testConfig(), ledgerSvc, authSvc, kv, logger)
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d, want 200", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/readyz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("readyz status = %d, want 200", rec.Code)
	}
}

func TestSummarySeededMonth(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/summary?month=2024-01", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}

	var got SummaryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode summary: %v", err)
	}

	if got.MonthlyIncome != 5300 {
		t.Errorf("MonthlyIncome = %v, want 5300", got.MonthlyIncome)
	}
	if got.MonthlyExpense != 595.50 {
		t.Errorf("MonthlyExpense = %v, want 595.50", got.MonthlyExpense)
	}
	if len(got.Accounts) != 3 {
		t.Errorf("len(Accounts) = %d, want 3", len(got.Accounts))
	}
	if len(got.Budgets) != 3 {
		t.Errorf("len(Budgets) = %d, want 3", len(got.Budgets))
	}
	if len(got.Goals) != 2 {
		t.Errorf("len(Goals) = %d, want 2", len(got.Goals))
	}
}

func TestSummaryRejectsBadMonth(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/summary?month=January", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateTransactionInvalidatesSummary(t *testing.T) {
	srv := newTestServer(t)

	// Prime the cache.
	doJSON(t, srv, http.MethodGet, "/api/summary?month=2024-01", nil)

	rec := doJSON(t, srv, http.MethodPost, "/api/transactions", map[string]any{
		"description": "Assinatura streaming",
		"amount":      -39.90,
		"category":    "Lazer",
		"date":        "2024-01-20",
		"type":        "expense",
		"account":     "Conta Corrente",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body %s", rec.Code, rec.Body.String())
	}

	var created createdResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created response: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected a transaction id")
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/summary?month=2024-01", nil)
	var got SummaryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if diff := got.MonthlyExpense - 635.40; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("MonthlyExpense after write = %v, want 635.40", got.MonthlyExpense)
	}
}

func TestCreateTransactionRejectsInvalid(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/transactions", map[string]any{
		"description": "",
		"amount":      10.0,
		"category":    "Renda",
		"date":        "2024-01-20",
		"type":        "income",
		"account":     "Conta Corrente",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestListTransactionsByMonth(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/transactions?month=2024-01", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var txs []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &txs); err != nil {
		t.Fatalf("decode transactions: %v", err)
	}
	if len(txs) != 5 {
		t.Errorf("len(transactions) = %d, want 5 seeded entries", len(txs))
	}
}

func TestCreateBudgetAndGoal(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/budgets", map[string]any{
		"category": "Viagem",
		"limit":    900.0,
		"month":    "2024-02",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("budget status = %d, want 201, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/goals", map[string]any{
		"name":          "Reserva",
		"targetAmount":  5000.0,
		"currentAmount": 100.0,
		"deadline":      "2030-12-31",
		"category":      "economia",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("goal status = %d, want 201, body %s", rec.Code, rec.Body.String())
	}
}

func TestProductStatsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	// An inline receipt analysis attaches products to a new transaction.
	rec := doJSON(t, srv, http.MethodPost, "/api/analyze/receipt", map[string]any{
		"contentType": "image/jpeg",
		"filename":    "nota.jpg",
		"account":     "Conta Corrente",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("analyze status = %d, want 200 inline, body %s", rec.Code, rec.Body.String())
	}

	var res analyzeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode analyze response: %v", err)
	}
	if res.Status != "completed" {
		t.Fatalf("Status = %q, want completed", res.Status)
	}
	if res.JobID == "" {
		t.Fatal("expected a job id")
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/products/stats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats status = %d, want 200", rec.Code)
	}

	var stats struct {
		TotalProducts int     `json:"totalProducts"`
		TotalValue    float64 `json:"totalValue"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.TotalProducts != 15 {
		t.Errorf("TotalProducts = %d, want 15 receipt items", stats.TotalProducts)
	}
}

func TestAnalyzeRejectsNonPost(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/analyze/audio", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); allow != "POST" {
		t.Errorf("Allow = %q, want POST", allow)
	}
}

func TestAuthFlow(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/auth/login", map[string]any{
		"email":    "joao@email.com",
		"password": "whatever",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/auth/session", nil)
	var session struct {
		IsAuthenticated bool `json:"isAuthenticated"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if !session.IsAuthenticated {
		t.Fatal("expected an authenticated session after login")
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/auth/logout", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("logout status = %d, want 204", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/auth/session", nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if session.IsAuthenticated {
		t.Fatal("expected a signed-out session after logout")
	}
}

func TestAuthLoginUnknownEmail(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/auth/login", map[string]any{
		"email": "nobody@email.com",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAuthRegisterDuplicate(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/auth/register", map[string]any{
		"name":  "Outro João",
		"email": "joao@email.com",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestSecurityHeadersApplied(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/healthz", nil)
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q, want DENY", got)
	}
}

func TestRateLimitOnWrites(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitPerMinute = 2

	kv := storage.NewMemoryKV()
	store := ledger.NewStore(kv)
	mock := analysis.NewMock()
	runner := services.NewAnalysisService(store, mock, mock, mock)
	logger := applog.New(applog.DefaultConfig())
	srv := NewServer(cfg, services.NewLedgerService(store, nil, runner), auth.NewService(kv), kv, logger)

	body := map[string]any{
		"category": "Teste",
		"limit":    10.0,
		"month":    "2024-03",
	}

	for i := 0; i < 2; i++ {
		if rec := doJSON(t, srv, http.MethodPost, "/api/budgets", body); rec.Code != http.StatusCreated {
			t.Fatalf("request %d status = %d, want 201", i, rec.Code)
		}
	}

	rec := doJSON(t, srv, http.MethodPost, "/api/budgets", body)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q, want 60", rec.Header().Get("Retry-After"))
	}
}
