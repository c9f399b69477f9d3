package shop_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gangland/internal/auth/token"
	"gangland/internal/catalog/catalogtest"
	"gangland/internal/shop"
	"gangland/internal/user"
	"gangland/internal/user/store"
	"gangland/pkg/testutil"
)

const knownUUID = "0b6c2f4e-6f0e-5d8b-9a1e-3f1c2a4b5c6d"

func newRouter(t *testing.T) (chi.Router, *store.InMemoryStore) {
	t.Helper()
	users := store.NewInMemoryStore()
	require.NoError(t, users.Insert(context.Background(), &user.User{UUID: knownUUID, Inventory: `{"inventory":{}}`}))

	content := catalogtest.Load(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := shop.NewService(users, content.Consumables(), content.Inventory,
		shop.WithLogger(logger),
		shop.WithRand(func(int) int { return 0 }),
	)
	r := chi.NewRouter()
	shop.NewHandler(svc, token.NewLegacyService(time.Hour), logger).Register(r)
	return r, users
}

func TestVoucherTransactions(t *testing.T) {
	r, _ := newRouter(t)

	t.Run("whitelisted voucher", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/store/vouchers/transactions",
			map[string]string{"voucher_id": "640144eb-7862-5186-90d0-606211ec2271"})
		rr := testutil.DoRequest(r, req)
		require.Equal(t, http.StatusCreated, rr.Code)
		assert.JSONEq(t, `{"transaction_id":"640144eb-7862-5186-90d0-606211ec2271"}`, rr.Body.String())
	})

	t.Run("unknown voucher", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/store/vouchers/transactions",
			map[string]string{"voucher_id": "nope"})
		testutil.AssertText(t, testutil.DoRequest(r, req), http.StatusBadRequest, "Invalid or missing voucher ID")
	})

	t.Run("missing voucher", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/store/vouchers/transactions", map[string]string{})
		testutil.AssertText(t, testutil.DoRequest(r, req), http.StatusBadRequest, "Invalid or missing voucher ID")
	})
}

func TestPurchaseTransactions(t *testing.T) {
	r, _ := newRouter(t)

	t.Run("json offer", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/store/purchases/transactions", map[string]any{"offer_id": 42})
		rr := testutil.DoRequest(r, req)
		require.Equal(t, http.StatusCreated, rr.Code)
		assert.JSONEq(t, `{"transaction_id":42}`, rr.Body.String())
	})

	t.Run("form offer", func(t *testing.T) {
		req := testutil.NewFormRequest(t, "/store/purchases/transactions", url.Values{"offer_id": {"offer-1"}})
		rr := testutil.DoRequest(r, req)
		require.Equal(t, http.StatusCreated, rr.Code)
		assert.JSONEq(t, `{"transaction_id":"offer-1"}`, rr.Body.String())
	})

	t.Run("missing offer", func(t *testing.T) {
		for _, body := range []map[string]any{{}, {"offer_id": ""}, {"offer_id": 0}, {"offer_id": false}} {
			req := testutil.NewJSONRequest(t, http.MethodPost, "/store/purchases/transactions", body)
			testutil.AssertText(t, testutil.DoRequest(r, req), http.StatusBadRequest, "Missing offer_id in request body")
		}
	})
}

func TestProcessTransaction(t *testing.T) {
	t.Run("consumables bundle", func(t *testing.T) {
		r, users := newRouter(t)
		req := testutil.WithBearer(testutil.NewRequest(t, http.MethodPut, "/store/vouchers/"+shop.ConsumablesBundle), knownUUID)

		rr := testutil.DoRequest(r, req)
		require.Equal(t, http.StatusCreated, rr.Code)
		assert.JSONEq(t, `{"items":{"consumable-a":5}}`, rr.Body.String())

		u, err := users.FindByUUID(context.Background(), knownUUID)
		require.NoError(t, err)
		var doc struct {
			Inventory map[string]int `json:"inventory"`
		}
		require.NoError(t, json.Unmarshal([]byte(u.Inventory), &doc))
		assert.Equal(t, map[string]int{"consumable-a": 5}, doc.Inventory)
	})

	t.Run("other purchase grants nothing", func(t *testing.T) {
		r, _ := newRouter(t)
		req := testutil.WithBearer(testutil.NewRequest(t, http.MethodPut, "/store/purchases/offer-1"), knownUUID)
		rr := testutil.DoRequest(r, req)
		require.Equal(t, http.StatusCreated, rr.Code)
		assert.JSONEq(t, `{"items":{}}`, rr.Body.String())
	})

	t.Run("unknown user", func(t *testing.T) {
		r, _ := newRouter(t)
		req := testutil.WithBearer(testutil.NewRequest(t, http.MethodPut, "/store/vouchers/"+shop.ConsumablesBundle), "someone-else")
		testutil.AssertText(t, testutil.DoRequest(r, req), http.StatusInternalServerError, "Internal server error: User not found")
	})

	t.Run("missing authorization", func(t *testing.T) {
		r, _ := newRouter(t)
		req := testutil.NewRequest(t, http.MethodPut, "/store/vouchers/x")
		testutil.AssertText(t, testutil.DoRequest(r, req), http.StatusBadRequest, "Invalid authorization header: Missing")
	})

	t.Run("malformed authorization", func(t *testing.T) {
		r, _ := newRouter(t)
		req := testutil.NewRequest(t, http.MethodPut, "/store/vouchers/x")
		req.Header.Set("Authorization", "Basic abc")
		testutil.AssertText(t, testutil.DoRequest(r, req), http.StatusBadRequest, "Invalid authorization header: Malformed or missing token")
	})
}
