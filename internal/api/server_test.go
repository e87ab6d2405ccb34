package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/books/internal/app"
	"github.com/cleared-dev/books/internal/expenses"
	"github.com/cleared-dev/books/internal/period"
	"github.com/cleared-dev/books/internal/sales"
)

func setupTestServer(t *testing.T) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	a, err := app.Init(ctx, t.TempDir(), app.InitOptions{Name: "Test Biz", EntityType: "sole_trader"}, io.Discard)
	require.NoError(t, err)

	_, err = a.Sales.PlaceOrder(ctx, period.Lock{}, sales.OrderInput{
		CustomerID: "cus_1", Date: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		Subtotal: decimal.NewFromInt(1000), TaxAmount: decimal.NewFromInt(180), ShippingCost: decimal.NewFromInt(50),
	})
	require.NoError(t, err)
	_, err = a.Expenses.Record(ctx, period.Lock{}, expenses.Input{
		Category: "Rent", Amount: decimal.NewFromInt(5000), Date: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	return NewRouter(a)
}

func get(t *testing.T, h http.Handler, path string, out any) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if out != nil && rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec.Code
}

func TestHealth(t *testing.T) {
	h := setupTestServer(t)
	var body map[string]string
	require.Equal(t, http.StatusOK, get(t, h, "/health", &body))
	assert.Equal(t, "Test Biz", body["business"])
}

func TestAccounts(t *testing.T) {
	h := setupTestServer(t)
	var accts []map[string]any
	require.Equal(t, http.StatusOK, get(t, h, "/accounts", &accts))
	require.NotEmpty(t, accts)

	balances := map[string]string{}
	var prevCode float64
	for _, a := range accts {
		code := a["code"].(float64)
		assert.Greater(t, code, prevCode, "ordered by code")
		prevCode = code
		balances[a["id"].(string)] = a["balance"].(string)
	}
	assert.Equal(t, "1230", balances["accounts_receivable"])
	assert.Equal(t, "-5000", balances["bank"])
	assert.Equal(t, "5000", balances["rent_expense"])
}

func TestEntries(t *testing.T) {
	h := setupTestServer(t)

	var all []map[string]any
	require.Equal(t, http.StatusOK, get(t, h, "/entries", &all))
	assert.Len(t, all, 3)

	var jan []map[string]any
	require.Equal(t, http.StatusOK, get(t, h, "/entries?from=2025-01-01&to=2025-01-31", &jan))
	assert.Len(t, jan, 2)

	var rent []map[string]any
	require.Equal(t, http.StatusOK, get(t, h, "/entries?account=rent_expense", &rent))
	require.Len(t, rent, 1)
	assert.Equal(t, "JE-2025-02-001", rent[0]["id"])

	var none []map[string]any
	require.Equal(t, http.StatusOK, get(t, h, "/entries?from=2030-01-01", &none))
	assert.NotNil(t, none)
	assert.Empty(t, none)

	assert.Equal(t, http.StatusBadRequest, get(t, h, "/entries?from=yesterday", nil))
}

func TestProfitLoss(t *testing.T) {
	h := setupTestServer(t)
	var pl struct {
		Revenue struct {
			Total     string `json:"total"`
			Breakdown []struct {
				Name   string `json:"name"`
				Amount string `json:"amount"`
			} `json:"breakdown"`
		} `json:"revenue"`
		COGS            string `json:"cogs"`
		NetProfit       string `json:"netProfit"`
		NetProfitMargin string `json:"netProfitMargin"`
	}
	require.Equal(t, http.StatusOK, get(t, h, "/reports/profit-loss", &pl))
	assert.Equal(t, "1050", pl.Revenue.Total)
	assert.Len(t, pl.Revenue.Breakdown, 2)
	assert.Equal(t, "400", pl.COGS)
	assert.Equal(t, "-4350", pl.NetProfit)
	assert.Equal(t, "-414.29", pl.NetProfitMargin)

	require.Equal(t, http.StatusOK, get(t, h, "/reports/profit-loss?to=2025-01-31", &pl))
	assert.Equal(t, "650", pl.NetProfit)
}

func TestTaxAndLedgerReports(t *testing.T) {
	h := setupTestServer(t)

	var tax map[string]any
	require.Equal(t, http.StatusOK, get(t, h, "/reports/tax", &tax))
	assert.Equal(t, "180", tax["collected"])
	assert.Equal(t, false, tax["isRegistered"])

	var tb map[string]any
	require.Equal(t, http.StatusOK, get(t, h, "/reports/trial-balance", &tb))
	assert.Equal(t, true, tb["balanced"])

	var checks []map[string]any
	require.Equal(t, http.StatusOK, get(t, h, "/reports/reconcile", &checks))
	require.Len(t, checks, 2)
	assert.Equal(t, true, checks[0]["ok"])

	var invoices []map[string]any
	require.Equal(t, http.StatusOK, get(t, h, "/invoices?outstanding=true", &invoices))
	assert.Len(t, invoices, 1)

	var bills []map[string]any
	require.Equal(t, http.StatusOK, get(t, h, "/bills", &bills))
	assert.Empty(t, bills)

	assert.Equal(t, http.StatusNotFound, get(t, h, "/nope", nil))
}

func TestCORS(t *testing.T) {
	h := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://ui.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_Allowlist(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := gin.New()
	h.Use(allowOrigins([]string{"https://ui.example.com"}))
	h.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://ui.example.com")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://ui.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
