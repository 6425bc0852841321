package http

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"finly/internal/core"
	"finly/internal/health"
	"finly/internal/ledger"
	"finly/internal/storage"
)

var testNow = time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*Server, *ledger.Ledger) {
	t.Helper()
	l := ledger.New(storage.NewStore(storage.NewMemoryKV()),
		ledger.WithClock(func() time.Time { return testNow }))
	s := NewServer(":0", l, Options{RateLimitPerMinute: 1000})
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s, l
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	s.Handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

func TestHealthAndReady(t *testing.T) {
	s, _ := newTestServer(t)

	rr := do(t, s, http.MethodGet, "/healthz", "")
	if rr.Code != http.StatusOK || rr.Body.String() != "ok" {
		t.Fatalf("healthz: %d %q", rr.Code, rr.Body.String())
	}
	rr = do(t, s, http.MethodGet, "/readyz", "")
	if rr.Code != http.StatusOK || rr.Body.String() != "ready" {
		t.Fatalf("readyz: %d %q", rr.Code, rr.Body.String())
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected a request id header")
	}
}

func TestReadyFailure(t *testing.T) {
	l := ledger.New(storage.NewStore(storage.NewMemoryKV()))
	s := NewServer(":0", l, Options{Ready: func(context.Context) error { return context.DeadlineExceeded }})
	defer s.Shutdown(context.Background())

	if rr := do(t, s, http.MethodGet, "/readyz", ""); rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
}

func TestErrorStatusMapping(t *testing.T) {
	s, _ := newTestServer(t)
	if rr := do(t, s, http.MethodPost, "/api/goals", `{"name":"Liburan","target_amount":1000000}`); rr.Code != http.StatusCreated {
		t.Fatalf("seed goal: %d %s", rr.Code, rr.Body.String())
	}

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"malformed json", http.MethodPost, "/api/transactions", `{`, http.StatusBadRequest},
		{"empty body", http.MethodPost, "/api/transactions", ``, http.StatusBadRequest},
		{"zero amount", http.MethodPost, "/api/transactions", `{"date":"2025-06-10","type":"expense","category":"Makan","amount":0}`, http.StatusUnprocessableEntity},
		{"bad date", http.MethodPost, "/api/transactions", `{"date":"10/06/2025","type":"expense","category":"Makan","amount":5}`, http.StatusUnprocessableEntity},
		{"unknown type filter", http.MethodGet, "/api/transactions?type=transfer", ``, http.StatusUnprocessableEntity},
		{"missing transaction", http.MethodDelete, "/api/transactions/nope", ``, http.StatusNotFound},
		{"duplicate goal", http.MethodPost, "/api/goals", `{"name":"Liburan","target_amount":5}`, http.StatusConflict},
		{"missing goal progress", http.MethodGet, "/api/goals/nope/progress", ``, http.StatusNotFound},
		{"deposit zero", http.MethodPost, "/api/goals/nope/deposits", `{"amount":0}`, http.StatusUnprocessableEntity},
		{"deposit missing goal", http.MethodPost, "/api/goals/nope/deposits", `{"amount":10}`, http.StatusNotFound},
		{"pay missing debt", http.MethodPost, "/api/debts/nope/payments", `{"amount":10}`, http.StatusNotFound},
		{"unknown bank", http.MethodPut, "/api/banks/active", `{"bank_ids":["cash","atlantis"]}`, http.StatusUnprocessableEntity},
		{"month out of range", http.MethodGet, "/api/reports/monthly?month=13", ``, http.StatusUnprocessableEntity},
		{"bad category type", http.MethodGet, "/api/reports/categories?type=gift", ``, http.StatusUnprocessableEntity},
		{"empty chat", http.MethodPost, "/api/chat", `{"message":"  "}`, http.StatusUnprocessableEntity},
		{"unknown route", http.MethodGet, "/api/nothing", ``, http.StatusNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := do(t, s, tc.method, tc.path, tc.body)
			if rr.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, rr.Code, rr.Body.String())
			}
			body := decode[errorBody](t, rr)
			if body.Error == "" {
				t.Fatal("expected an error message")
			}
		})
	}
}

func TestSavingsGoalScenario(t *testing.T) {
	s, _ := newTestServer(t)

	rr := do(t, s, http.MethodPost, "/api/goals", `{"name":"Motor","target_amount":"10.000.000"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create goal: %d %s", rr.Code, rr.Body.String())
	}
	goal := decode[core.SavingsGoal](t, rr)

	rr = do(t, s, http.MethodPost, "/api/goals/"+goal.ID+"/deposits", `{"amount":5000000}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("deposit: %d %s", rr.Code, rr.Body.String())
	}
	tx := decode[core.Transaction](t, rr)
	if tx.Type != core.Expense || tx.Category != ledger.SavingsCategoryName("Motor") || tx.Date != core.NewDate(2025, 6, 10) {
		t.Fatalf("unexpected deposit transaction %+v", tx)
	}

	rr = do(t, s, http.MethodGet, "/api/goals/"+goal.ID+"/progress", "")
	progress := decode[core.SavingsGoalProgress](t, rr)
	if progress.CollectedAmount != 5_000_000 || progress.ProgressPercent != 50 || progress.RemainingAmount != 5_000_000 {
		t.Fatalf("unexpected progress %+v", progress)
	}

	rr = do(t, s, http.MethodGet, "/api/categories?active=true", "")
	cats := decode[[]core.Category](t, rr)
	found := false
	for _, c := range cats {
		if c.SavingsGoalID == goal.ID {
			found = c.IsSavings && c.IsActive
		}
	}
	if !found {
		t.Fatal("expected an active savings category for the goal")
	}

	rr = do(t, s, http.MethodGet, "/api/goals", "")
	views := decode[[]ledger.GoalView](t, rr)
	if len(views) != 1 || views[0].Progress.ProgressPercent != 50 {
		t.Fatalf("unexpected goal views %+v", views)
	}

	if rr := do(t, s, http.MethodDelete, "/api/goals/"+goal.ID, ""); rr.Code != http.StatusNoContent {
		t.Fatalf("deactivate: %d", rr.Code)
	}
}

func TestBalanceCachePurgedOnChange(t *testing.T) {
	s, _ := newTestServer(t)

	rr := do(t, s, http.MethodGet, "/api/balance", "")
	if got := decode[core.Balance](t, rr); got.Balance != 0 {
		t.Fatalf("expected empty balance, got %+v", got)
	}
	if s.balance.Size() != 1 {
		t.Fatal("expected balance to be cached")
	}

	rr = do(t, s, http.MethodPost, "/api/transactions", `{"date":"2025-06-10","type":"income","category":"Gaji","amount":1000000}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rr.Code, rr.Body.String())
	}
	if s.balance.Size() != 0 {
		t.Fatal("expected the change signal to purge the cache")
	}

	rr = do(t, s, http.MethodGet, "/api/balance", "")
	got := decode[core.Balance](t, rr)
	if got.Balance != 1_000_000 || got.TotalIncome != 1_000_000 {
		t.Fatalf("unexpected balance %+v", got)
	}
}

func TestTransactionsHistory(t *testing.T) {
	s, l := newTestServer(t)
	ctx := context.Background()
	for _, tx := range []core.Transaction{
		{Date: core.NewDate(2025, 5, 2), Type: core.Expense, Category: "Makan", Amount: 20_000},
		{Date: core.NewDate(2025, 6, 1), Type: core.Expense, Category: "Transport", Amount: 15_000},
		{Date: core.NewDate(2025, 6, 3), Type: core.Income, Category: "Gaji", Amount: 3_000_000},
	} {
		if _, err := l.SaveTransaction(ctx, tx); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	rr := do(t, s, http.MethodGet, "/api/transactions?month=2025-06&type=expense", "")
	txs := decode[[]core.Transaction](t, rr)
	if len(txs) != 1 || txs[0].Category != "Transport" {
		t.Fatalf("unexpected history %+v", txs)
	}

	rr = do(t, s, http.MethodGet, "/api/transactions/months", "")
	months := decode[[]string](t, rr)
	if len(months) != 2 {
		t.Fatalf("unexpected months %v", months)
	}

	rr = do(t, s, http.MethodGet, "/api/reports/monthly?year=2025&month=6", "")
	monthly := decode[core.MonthlyData](t, rr)
	if monthly.Income != 3_000_000 || monthly.Expense != 15_000 || monthly.Difference != 2_985_000 {
		t.Fatalf("unexpected monthly data %+v", monthly)
	}
}

func TestDebtPaymentFlow(t *testing.T) {
	s, _ := newTestServer(t)

	rr := do(t, s, http.MethodPost, "/api/debts",
		`{"party_name":"Toko A","type":"debt","amount":1000000,"loan_date":"2025-05-01","due_date":"2025-06-01"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create debt: %d %s", rr.Code, rr.Body.String())
	}
	debt := decode[core.DebtRecord](t, rr)

	rr = do(t, s, http.MethodGet, "/api/debts/overdue", "")
	if overdue := decode[[]core.DebtRecord](t, rr); len(overdue) != 1 {
		t.Fatalf("expected one overdue debt, got %+v", overdue)
	}

	rr = do(t, s, http.MethodPost, "/api/debts/"+debt.ID+"/payments", `{"amount":400000,"bank_id":"bca"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("pay: %d %s", rr.Code, rr.Body.String())
	}
	paid := decode[paymentResponse](t, rr)
	if paid.Debt.PaidAmount != 400_000 || paid.Transaction.Type != core.DebtPayment || paid.Transaction.DebtID != debt.ID {
		t.Fatalf("unexpected payment %+v", paid)
	}

	rr = do(t, s, http.MethodGet, "/api/debts/progress", "")
	progress := decode[core.DebtFreeProgress](t, rr)
	if progress.TotalDebt != 1_000_000 || progress.PaidAmount != 400_000 || progress.ProgressPercent != 40 {
		t.Fatalf("unexpected progress %+v", progress)
	}
}

func TestNotificationsDismiss(t *testing.T) {
	s, l := newTestServer(t)
	saved, err := l.SaveTransaction(context.Background(), core.Transaction{
		Date: core.NewDate(2025, 6, 10), Type: core.Income, Category: "Gaji", Amount: 1_000_000,
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	rr := do(t, s, http.MethodGet, "/api/notifications", "")
	if !strings.Contains(rr.Body.String(), "income-"+saved.ID) {
		t.Fatalf("expected income notification, got %s", rr.Body.String())
	}
	if rr := do(t, s, http.MethodPost, "/api/notifications/income-"+saved.ID+"/dismiss", ""); rr.Code != http.StatusNoContent {
		t.Fatalf("dismiss: %d", rr.Code)
	}
	rr = do(t, s, http.MethodGet, "/api/notifications", "")
	if strings.Contains(rr.Body.String(), "income-"+saved.ID) {
		t.Fatalf("expected notification to be hidden, got %s", rr.Body.String())
	}
}

func TestBanksEndpoints(t *testing.T) {
	s, _ := newTestServer(t)

	rr := do(t, s, http.MethodPut, "/api/banks/active", `{"bank_ids":["cash","jago"]}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("set: %d %s", rr.Code, rr.Body.String())
	}
	rr = do(t, s, http.MethodGet, "/api/banks/active", "")
	got := decode[activeBanksRequest](t, rr)
	if len(got.BankIDs) != 2 || got.BankIDs[1] != "jago" {
		t.Fatalf("unexpected active banks %+v", got)
	}
}

func TestHealthScoreEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	rr := do(t, s, http.MethodGet, "/api/health-score", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("health: %d", rr.Code)
	}
	if got := decode[health.Result](t, rr); got.Available {
		t.Fatalf("expected no score without data, got %+v", got)
	}
}

func TestChatWithoutAdvisorFallsBack(t *testing.T) {
	s, _ := newTestServer(t)
	rr := do(t, s, http.MethodPost, "/api/chat", `{"message":"Bagaimana cara menabung?"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("chat: %d %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"fallback":true`) {
		t.Fatalf("expected fallback reply, got %s", rr.Body.String())
	}
}

func TestRateLimitSkipsProbes(t *testing.T) {
	l := ledger.New(storage.NewStore(storage.NewMemoryKV()))
	s := NewServer(":0", l, Options{RateLimitPerMinute: 1})
	defer s.Shutdown(context.Background())

	if rr := do(t, s, http.MethodGet, "/api/balance", ""); rr.Code != http.StatusOK {
		t.Fatalf("first: %d", rr.Code)
	}
	rr := do(t, s, http.MethodGet, "/api/balance", "")
	if rr.Code != http.StatusTooManyRequests || rr.Header().Get("Retry-After") == "" {
		t.Fatalf("expected 429 with Retry-After, got %d", rr.Code)
	}
	if rr := do(t, s, http.MethodGet, "/healthz", ""); rr.Code != http.StatusOK {
		t.Fatalf("healthz should not be limited, got %d", rr.Code)
	}
}

func TestEventsStream(t *testing.T) {
	s, l := newTestServer(t)
	ts := httptest.NewServer(s.Handler)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	if err != nil || !strings.HasPrefix(line, ": connected") {
		t.Fatalf("expected connected comment, got %q (%v)", line, err)
	}

	if _, err := l.SaveTransaction(context.Background(), core.Transaction{
		Date: core.NewDate(2025, 6, 10), Type: core.Expense, Category: "Makan", Amount: 10_000,
	}); err != nil {
		t.Fatalf("save: %v", err)
	}

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if strings.TrimSpace(line) == "event: changed" {
			return
		}
	}
}

func TestParseMonthParams(t *testing.T) {
	now := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		query   string
		want    MonthParams
		wantErr bool
	}{
		{"", MonthParams{2025, time.June}, false},
		{"year=2024&month=12", MonthParams{2024, time.December}, false},
		{"month=1", MonthParams{2025, time.January}, false},
		{"month=0", MonthParams{}, true},
		{"month=13", MonthParams{}, true},
		{"year=abc", MonthParams{}, true},
	}
	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/?"+tc.query, nil)
			got, err := ParseMonthParams(req.URL.Query(), now)
			if tc.wantErr {
				if !core.IsValidation(err) {
					t.Fatalf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil || got != tc.want {
				t.Fatalf("expected %+v, got %+v (%v)", tc.want, got, err)
			}
		})
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("  Makan\x00 siang\x07 "); got != "Makan siang" {
		t.Fatalf("got %q", got)
	}
}
