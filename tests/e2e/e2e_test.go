//go:build integration

package e2e

// End-to-end integration tests for StockPOS using real Postgres + Redis via
// testcontainers. Run with: go test -tags integration ./tests/e2e/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stockpos/internal/config"
	"stockpos/internal/infra"
	"stockpos/internal/model"
	"stockpos/internal/router"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// ── Test Suite Setup ─────────────────────────────────────────────────────────

type testEnv struct {
	server  *httptest.Server
	token   string // admin JWT
	db      *gorm.DB
	storeID uuid.UUID
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("stockpos_test"),
		tcPostgres.WithUsername("stockpos"),
		tcPostgres.WithPassword("stockpos"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:                 8000,
		Env:                  "test",
		JWTSecret:            "test-secret-key",
		JWTExpirationHours:   8,
		JWTRefreshHours:      24,
		DatabaseURL:          pgURL,
		RedisURL:             rdURL,
		SaleTxTimeoutSeconds: 15,
		WorkerPoolSize:       1,
		PDFStoragePath:       t.TempDir(),
		DefaultTaxID:         "30-71234567-9",
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	// Seed admin + store. The owner is created first with a zero store id,
	// then pointed at the store once it exists.
	hash, err := bcrypt.GenerateFromPassword([]byte("stockpos2026"), bcrypt.MinCost)
	require.NoError(t, err)
	admin := &model.User{
		Username:     "admin-e2e",
		Name:         "Admin E2E",
		PasswordHash: string(hash),
		Role:         "admin",
		Active:       true,
	}
	require.NoError(t, db.Create(admin).Error)

	store := &model.Store{
		Name:    "E2E Store",
		OwnerID: admin.ID,
		TaxID:   cfg.DefaultTaxID,
		Active:  true,
	}
	require.NoError(t, db.Create(store).Error)
	require.NoError(t, db.Model(admin).Update("store_id", store.ID).Error)

	r := router.New(cfg, db, rdb)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	loginResp := do(t, srv, "POST", "/v1/auth/login",
		jsonBody(t, map[string]string{"username": "admin-e2e", "password": "stockpos2026"}),
		"",
	)
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	var loginBody struct {
		AccessToken string `json:"access_token"`
	}
	decodeJSON(t, loginResp, &loginBody)
	require.NotEmpty(t, loginBody.AccessToken)

	return &testEnv{
		server:  srv,
		token:   loginBody.AccessToken,
		db:      db,
		storeID: store.ID,
	}
}

func (env *testEnv) createRoom(t *testing.T, name string, forSale bool) string {
	t.Helper()
	resp := do(t, env.server, "POST", "/v1/rooms",
		jsonBody(t, map[string]any{"name": name, "for_sale": forSale}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var room struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &room)
	return room.ID
}

func (env *testEnv) createProduct(t *testing.T, sku, name, price string) string {
	t.Helper()
	resp := do(t, env.server, "POST", "/v1/products",
		jsonBody(t, map[string]any{"sku": sku, "name": name, "price": price}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var prod struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &prod)
	return prod.ID
}

func (env *testEnv) restock(t *testing.T, productID, roomID string, qty int, cost string) {
	t.Helper()
	resp := do(t, env.server, "POST", "/v1/inventory/restock",
		jsonBody(t, map[string]any{
			"product_id": productID,
			"room_id":    roomID,
			"quantity":   qty,
			"cost":       cost,
		}), env.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

type inventoryItemView struct {
	ProductID   string `json:"product_id"`
	RoomID      string `json:"room_id"`
	Quantity    int    `json:"quantity"`
	AverageCost string `json:"average_cost"`
}

func (env *testEnv) listInventory(t *testing.T) []inventoryItemView {
	t.Helper()
	resp := do(t, env.server, "GET", "/v1/inventory?limit=100", nil, env.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Data []inventoryItemView `json:"data"`
	}
	decodeJSON(t, resp, &body)
	return body.Data
}

func itemIn(items []inventoryItemView, productID, roomID string) *inventoryItemView {
	for i := range items {
		if items[i].ProductID == productID && items[i].RoomID == roomID {
			return &items[i]
		}
	}
	return nil
}

func assertCost(t *testing.T, want string, got string) {
	t.Helper()
	g, err := decimal.NewFromString(got)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString(want).Equal(g), "cost %s, want %s", got, want)
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestE2E_FullSaleCycle(t *testing.T) {
	env := setupTestEnv(t)

	floor := env.createRoom(t, "Sales Floor", true)
	prodID := env.createProduct(t, "SKU-001", "Soda 500ml", "2.50")
	env.restock(t, prodID, floor, 20, "1.50")

	saleResp := do(t, env.server, "POST", "/v1/sales",
		jsonBody(t, map[string]any{
			"items":          []map[string]any{{"product_id": prodID, "quantity": 3}},
			"total":          "7.50",
			"payment_method": "debit",
		}), env.token)
	require.Equal(t, http.StatusCreated, saleResp.StatusCode)
	var created struct {
		Success bool `json:"success"`
		Sale    struct {
			ID            string `json:"id"`
			InvoiceNumber string `json:"invoice_number"`
			Total         string `json:"total"`
			Status        string `json:"status"`
			TaxID         string `json:"tax_id"`
		} `json:"sale"`
	}
	decodeJSON(t, saleResp, &created)
	assert.True(t, created.Success)
	assert.Equal(t, "0001", created.Sale.InvoiceNumber)
	assert.Equal(t, "completed", created.Sale.Status)
	assert.Equal(t, "30-71234567-9", created.Sale.TaxID)

	// Stock deducted on the sales floor.
	item := itemIn(env.listInventory(t), prodID, floor)
	require.NotNil(t, item)
	assert.Equal(t, 17, item.Quantity)

	// Sale shows up in today's listing.
	listResp := do(t, env.server, "GET",
		fmt.Sprintf("/v1/sales?date=%s", time.Now().Format("2006-01-02")), nil, env.token)
	require.Equal(t, http.StatusOK, listResp.StatusCode)
	var list struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
		Total int64 `json:"total"`
	}
	decodeJSON(t, listResp, &list)
	require.EqualValues(t, 1, list.Total)
	assert.Equal(t, created.Sale.ID, list.Data[0].ID)
}

func TestE2E_InvoiceNumbersAreSequential(t *testing.T) {
	env := setupTestEnv(t)

	floor := env.createRoom(t, "Sales Floor", true)
	prodID := env.createProduct(t, "SKU-002", "Water 1L", "1.00")
	env.restock(t, prodID, floor, 10, "0.40")

	var invoices []string
	for i := 0; i < 3; i++ {
		resp := do(t, env.server, "POST", "/v1/sales",
			jsonBody(t, map[string]any{
				"items":          []map[string]any{{"product_id": prodID, "quantity": 1}},
				"total":          "1.00",
				"payment_method": "cash",
				"cash_received":  "1.00",
			}), env.token)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		var created struct {
			Sale struct {
				InvoiceNumber string `json:"invoice_number"`
			} `json:"sale"`
		}
		decodeJSON(t, resp, &created)
		invoices = append(invoices, created.Sale.InvoiceNumber)
	}
	assert.Equal(t, []string{"0001", "0002", "0003"}, invoices)
}

func TestE2E_WeightedAverageCostAcrossRestocks(t *testing.T) {
	env := setupTestEnv(t)

	storage := env.createRoom(t, "Back Storage", false)
	prodID := env.createProduct(t, "SKU-003", "Olive Oil", "12.00")

	env.restock(t, prodID, storage, 10, "2.00")
	env.restock(t, prodID, storage, 5, "5.00")

	item := itemIn(env.listInventory(t), prodID, storage)
	require.NotNil(t, item)
	assert.Equal(t, 15, item.Quantity)
	assertCost(t, "3", item.AverageCost)
}

func TestE2E_TransferPairsLedgerRows(t *testing.T) {
	env := setupTestEnv(t)

	storage := env.createRoom(t, "Back Storage", false)
	floor := env.createRoom(t, "Sales Floor", true)
	prodID := env.createProduct(t, "SKU-004", "Rice 1kg", "3.00")
	env.restock(t, prodID, storage, 30, "1.20")

	transferResp := do(t, env.server, "POST", "/v1/inventory/transfer",
		jsonBody(t, map[string]any{
			"product_id":          prodID,
			"source_room_id":      storage,
			"destination_room_id": floor,
			"quantity":            12,
		}), env.token)
	require.Equal(t, http.StatusNoContent, transferResp.StatusCode)
	transferResp.Body.Close()

	items := env.listInventory(t)
	src := itemIn(items, prodID, storage)
	dst := itemIn(items, prodID, floor)
	require.NotNil(t, src)
	require.NotNil(t, dst)
	assert.Equal(t, 18, src.Quantity)
	assert.Equal(t, 12, dst.Quantity)
	assertCost(t, "1.20", dst.AverageCost) // inherits the source cost basis

	ledgerResp := do(t, env.server, "GET", "/v1/inventory/ledger?type=TRANSFER", nil, env.token)
	require.Equal(t, http.StatusOK, ledgerResp.StatusCode)
	var ledger struct {
		Data []struct {
			Quantity    int     `json:"quantity"`
			TransferRef *string `json:"transfer_ref"`
		} `json:"data"`
	}
	decodeJSON(t, ledgerResp, &ledger)
	require.Len(t, ledger.Data, 2)
	require.NotNil(t, ledger.Data[0].TransferRef)
	require.NotNil(t, ledger.Data[1].TransferRef)
	assert.Equal(t, *ledger.Data[0].TransferRef, *ledger.Data[1].TransferRef)
	assert.Zero(t, ledger.Data[0].Quantity+ledger.Data[1].Quantity)
}

func TestE2E_SaleIgnoresNonSellableRooms(t *testing.T) {
	env := setupTestEnv(t)

	storage := env.createRoom(t, "Back Storage", false)
	prodID := env.createProduct(t, "SKU-005", "Flour 1kg", "2.00")
	env.restock(t, prodID, storage, 100, "0.80")

	// Plenty of stock, but none of it on a sellable floor.
	resp := do(t, env.server, "POST", "/v1/sales",
		jsonBody(t, map[string]any{
			"items":          []map[string]any{{"product_id": prodID, "quantity": 5}},
			"total":          "10.00",
			"payment_method": "cash",
			"cash_received":  "10.00",
		}), env.token)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var conflict struct {
		Requested int `json:"requested"`
		Available int `json:"available"`
	}
	decodeJSON(t, resp, &conflict)
	assert.Equal(t, 5, conflict.Requested)
	assert.Equal(t, 0, conflict.Available)

	// The aborted sale must not burn an invoice number.
	var store model.Store
	require.NoError(t, env.db.First(&store, "id = ?", env.storeID).Error)
	assert.Equal(t, 0, store.InvoiceCounter)
}

func TestE2E_TotalMismatchRejected(t *testing.T) {
	env := setupTestEnv(t)

	floor := env.createRoom(t, "Sales Floor", true)
	prodID := env.createProduct(t, "SKU-006", "Chocolate Bar", "1.75")
	env.restock(t, prodID, floor, 10, "0.90")

	resp := do(t, env.server, "POST", "/v1/sales",
		jsonBody(t, map[string]any{
			"items":          []map[string]any{{"product_id": prodID, "quantity": 2}},
			"total":          "3.49",
			"payment_method": "cash",
			"cash_received":  "3.49",
		}), env.token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// No deduction happened.
	item := itemIn(env.listInventory(t), prodID, floor)
	require.NotNil(t, item)
	assert.Equal(t, 10, item.Quantity)
}

func TestE2E_MultiLineSaleRollsBackOnShortfall(t *testing.T) {
	env := setupTestEnv(t)

	floor := env.createRoom(t, "Sales Floor", true)
	coffee := env.createProduct(t, "SKU-007", "Coffee 250g", "4.00")
	sugar := env.createProduct(t, "SKU-008", "Sugar 1kg", "1.50")
	env.restock(t, coffee, floor, 10, "2.00")
	env.restock(t, sugar, floor, 2, "0.60")

	// The first line is coverable; the second asks for 5 with only 2 on the
	// floor. The shortfall must undo the first line's deduction too.
	resp := do(t, env.server, "POST", "/v1/sales",
		jsonBody(t, map[string]any{
			"items": []map[string]any{
				{"product_id": coffee, "quantity": 3},
				{"product_id": sugar, "quantity": 5},
			},
			"total":          "19.50",
			"payment_method": "cash",
			"cash_received":  "19.50",
		}), env.token)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var conflict struct {
		ProductID string `json:"product_id"`
		Requested int    `json:"requested"`
		Available int    `json:"available"`
	}
	decodeJSON(t, resp, &conflict)
	assert.Equal(t, sugar, conflict.ProductID)
	assert.Equal(t, 5, conflict.Requested)
	assert.Equal(t, 2, conflict.Available)

	// Both rooms hold exactly what they held before the attempt.
	items := env.listInventory(t)
	itemCoffee := itemIn(items, coffee, floor)
	itemSugar := itemIn(items, sugar, floor)
	require.NotNil(t, itemCoffee)
	require.NotNil(t, itemSugar)
	assert.Equal(t, 10, itemCoffee.Quantity)
	assert.Equal(t, 2, itemSugar.Quantity)

	// Nothing of the sale survived the rollback.
	var saleCount, lineCount int64
	require.NoError(t, env.db.Model(&model.Sale{}).Count(&saleCount).Error)
	require.NoError(t, env.db.Model(&model.SaleItem{}).Count(&lineCount).Error)
	assert.Zero(t, saleCount)
	assert.Zero(t, lineCount)

	var store model.Store
	require.NoError(t, env.db.First(&store, "id = ?", env.storeID).Error)
	assert.Equal(t, 0, store.InvoiceCounter)

	// The sale goes through once the cart fits the available stock.
	retry := do(t, env.server, "POST", "/v1/sales",
		jsonBody(t, map[string]any{
			"items": []map[string]any{
				{"product_id": coffee, "quantity": 3},
				{"product_id": sugar, "quantity": 2},
			},
			"total":          "15.00",
			"payment_method": "cash",
			"cash_received":  "15.00",
		}), env.token)
	require.Equal(t, http.StatusCreated, retry.StatusCode)
	var created struct {
		Sale struct {
			InvoiceNumber string `json:"invoice_number"`
		} `json:"sale"`
	}
	decodeJSON(t, retry, &created)
	assert.Equal(t, "0001", created.Sale.InvoiceNumber)
}
