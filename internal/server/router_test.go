package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nusakarya/construction-api/internal/auth"
	"github.com/nusakarya/construction-api/internal/db"
	"github.com/nusakarya/construction-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	DB      *gorm.DB
	Server  *httptest.Server
	Token   string
	Project models.Project
	Stone   models.Milestone
	Expense models.Account
	Bank    models.Account
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(conn))

	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	ts := httptest.NewServer(New(conn, tokens))
	t.Cleanup(ts.Close)

	env := &testEnv{DB: conn, Server: ts}

	// register over the wire so the token path is exercised end to end
	res := env.do(t, http.MethodPost, "/api/auth/register", map[string]any{
		"email": "pm@nusakarya.co.id", "password": "rahasia-kuat", "name": "Rina",
	}, "")
	require.Equal(t, http.StatusCreated, res.Code)
	env.Token = res.Body["token"].(string)

	env.Project = models.Project{Name: "Ruko Blok A"}
	require.NoError(t, conn.Create(&env.Project).Error)
	env.Stone = models.Milestone{
		ProjectID: env.Project.ID, Title: "Struktur Lantai 1",
		Budget: 10_000_000, CategoryName: "struktur",
	}
	require.NoError(t, conn.Create(&env.Stone).Error)
	env.Expense = models.Account{Code: "5101.01", Name: "Beban Material", Type: models.AccountTypeExpense}
	env.Bank = models.Account{
		Code: "1101.02", Name: "Bank BCA", Type: models.AccountTypeAsset,
		SubType: models.AccountSubTypeCashAndBank, CurrentBalance: 10_000_000, IsActive: true,
	}
	require.NoError(t, conn.Create(&env.Expense).Error)
	require.NoError(t, conn.Create(&env.Bank).Error)
	return env
}

type testResponse struct {
	Code int
	Body map[string]any
}

func (e *testEnv) do(t *testing.T, method, path string, payload any, token string) testResponse {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req, err := http.NewRequest(method, e.Server.URL+path, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	out := testResponse{Code: res.StatusCode}
	if res.StatusCode != http.StatusNoContent {
		_ = json.NewDecoder(res.Body).Decode(&out.Body)
	}
	return out
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	res := env.do(t, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "ok", res.Body["status"])
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)
	res := env.do(t, http.MethodGet, "/api/accounts", nil, "")
	assert.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Equal(t, "unauthorized", res.Body["error"])

	res = env.do(t, http.MethodGet, "/api/accounts", nil, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	res := env.do(t, http.MethodPost, "/api/auth/login", map[string]any{
		"email": "pm@nusakarya.co.id", "password": "rahasia-kuat",
	}, "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.NotEmpty(t, res.Body["token"])

	res = env.do(t, http.MethodPost, "/api/auth/login", map[string]any{
		"email": "pm@nusakarya.co.id", "password": "salah",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Equal(t, "invalid_credentials", res.Body["error"])
}

func TestRABItemLifecycleOverHTTP(t *testing.T) {
	env := newTestEnv(t)

	res := env.do(t, http.MethodPost, "/api/rab-items", map[string]any{
		"projectId": env.Project.ID, "category": "struktur", "description": "Besi beton",
		"itemType": "material", "unit": "kg", "quantity": 100, "unitPrice": 14_000,
	}, env.Token)
	require.Equal(t, http.StatusCreated, res.Code)
	data := res.Body["data"].(map[string]any)
	assert.Equal(t, float64(1_400_000), data["plannedAmount"])
	itemID := uint(data["id"].(float64))

	res = env.do(t, http.MethodPost, fmt.Sprintf("/api/rab-items/%d/approve", itemID), nil, env.Token)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "approved", res.Body["data"].(map[string]any)["approvalStatus"])

	// second approval conflicts
	res = env.do(t, http.MethodPost, fmt.Sprintf("/api/rab-items/%d/approve", itemID), nil, env.Token)
	assert.Equal(t, http.StatusConflict, res.Code)
}

func TestRecordRealizationOverHTTP(t *testing.T) {
	env := newTestEnv(t)

	// snake_case keys from the legacy client still normalize
	res := env.do(t, http.MethodPost, "/api/realizations", map[string]any{
		"milestone_id":       env.Stone.ID,
		"amount":             2_000_000,
		"cost_category":      "materials",
		"expense_account_id": env.Expense.ID,
		"source_account_id":  env.Bank.ID,
	}, env.Token)
	require.Equal(t, http.StatusCreated, res.Code)
	data := res.Body["data"].(map[string]any)
	assert.Equal(t, "materials", data["category"])
	assert.Equal(t, "draft", data["status"])

	var bank models.Account
	require.NoError(t, env.DB.First(&bank, env.Bank.ID).Error)
	assert.Equal(t, int64(8_000_000), bank.CurrentBalance)
}

func TestMilestoneScopedRealizationCreate(t *testing.T) {
	env := newTestEnv(t)

	// the path segment overrides whatever milestone id the body claims
	res := env.do(t, http.MethodPost, fmt.Sprintf("/api/milestones/%d/realizations", env.Stone.ID), map[string]any{
		"milestoneId":      9999,
		"amount":           1_000_000,
		"category":         "labor",
		"expenseAccountId": env.Expense.ID,
	}, env.Token)
	require.Equal(t, http.StatusCreated, res.Code)
	data := res.Body["data"].(map[string]any)
	assert.Equal(t, float64(env.Stone.ID), data["milestoneId"])
}

func TestInsufficientBalanceResponseShape(t *testing.T) {
	env := newTestEnv(t)

	res := env.do(t, http.MethodPost, "/api/realizations", map[string]any{
		"milestoneId":      env.Stone.ID,
		"amount":           12_000_000,
		"category":         "other",
		"expenseAccountId": env.Expense.ID,
		"sourceAccountId":  env.Bank.ID,
	}, env.Token)
	require.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "insufficient_balance", res.Body["error"])
	details := res.Body["details"].(map[string]any)
	assert.Equal(t, "Bank BCA", details["accountName"])
	assert.Equal(t, float64(10_000_000), details["currentBalance"])
	assert.Equal(t, float64(12_000_000), details["requestedAmount"])
	assert.Equal(t, float64(2_000_000), details["shortfall"])
}

func TestBudgetSummaryOverHTTP(t *testing.T) {
	env := newTestEnv(t)

	res := env.do(t, http.MethodPost, "/api/realizations", map[string]any{
		"milestoneId":      env.Stone.ID,
		"amount":           6_500_000,
		"category":         "other",
		"expenseAccountId": env.Expense.ID,
	}, env.Token)
	require.Equal(t, http.StatusCreated, res.Code)

	res = env.do(t, http.MethodGet, fmt.Sprintf("/api/milestones/%d/budget-summary", env.Stone.ID), nil, env.Token)
	require.Equal(t, http.StatusOK, res.Code)
	sum := res.Body["data"].(map[string]any)
	assert.Equal(t, float64(3_500_000), sum["variance"])
	assert.Equal(t, "under", sum["status"])
	assert.Equal(t, float64(35), sum["variancePercent"])
}

func TestWorkflowSyncOverHTTP(t *testing.T) {
	env := newTestEnv(t)

	now := time.Now()
	require.NoError(t, env.DB.Create(&models.PurchaseOrder{
		ProjectID: env.Project.ID, Category: "struktur", PONumber: "PO-100",
		TotalAmount: 1_000_000, Status: models.POStatusApproved, ApprovedAt: &now,
	}).Error)

	res := env.do(t, http.MethodPost, fmt.Sprintf("/api/milestones/%d/sync", env.Stone.ID), nil, env.Token)
	require.Equal(t, http.StatusOK, res.Code)
	data := res.Body["data"].(map[string]any)
	assert.NotNil(t, data["last_synced"])
	// one approved PO out of one: 20 * (1/1)
	assert.Equal(t, float64(20), data["overall_progress"])

	stages := data["stages"].([]any)
	require.Len(t, stages, 5)
	first := stages[0].(map[string]any)
	assert.Equal(t, "rab_approved", first["name"])
	assert.Equal(t, "pending", first["status"])
}

func TestExportContentType(t *testing.T) {
	env := newTestEnv(t)

	req, err := http.NewRequest(http.MethodGet,
		fmt.Sprintf("%s/api/milestones/%d/budget/export?token=%s", env.Server.URL, env.Stone.ID, env.Token), nil)
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.Header.Get("Content-Type"), "spreadsheetml")
}
