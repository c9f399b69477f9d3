package catalog_test

import (
	"encoding/base64"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"gangland/internal/catalog"
	"gangland/internal/catalog/catalogtest"
	"gangland/pkg/testutil"
)

func newRouter(t *testing.T) chi.Router {
	r := chi.NewRouter()
	catalog.NewHandler(catalogtest.Load(t), slog.New(slog.NewTextHandler(io.Discard, nil))).Register(r)
	return r
}

func TestHandler(t *testing.T) {
	r := newRouter(t)

	t.Run("netvars are base64 wrapped", func(t *testing.T) {
		rr := testutil.DoRequest(r, testutil.NewRequest(t, http.MethodGet, "/files/netvars.dat"))
		assert.Equal(t, http.StatusOK, rr.Code)
		body := testutil.UnmarshalResponse[map[string]string](t, rr)
		assert.Equal(t, base64.StdEncoding.EncodeToString([]byte(catalogtest.Netvars)), (*body)["data"])
	})

	t.Run("motd", func(t *testing.T) {
		rr := testutil.DoRequest(r, testutil.NewRequest(t, http.MethodGet, "/motd"))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, catalogtest.MOTD, rr.Body.String())
	})

	t.Run("general catalog", func(t *testing.T) {
		rr := testutil.DoRequest(r, testutil.NewRequest(t, http.MethodGet, "/store/catalog/general"))
		assert.JSONEq(t, catalogtest.Catalog, rr.Body.String())
	})

	t.Run("vendor 4 selects credits", func(t *testing.T) {
		rr := testutil.DoRequest(r, testutil.NewRequest(t, http.MethodGet, "/store/offers?vendor=4"))
		assert.JSONEq(t, catalogtest.Credits, rr.Body.String())
	})

	t.Run("other vendors get the store", func(t *testing.T) {
		for _, q := range []string{"?vendor=1", "", "?vendor=abc"} {
			rr := testutil.DoRequest(r, testutil.NewRequest(t, http.MethodGet, "/store/offers"+q))
			assert.JSONEq(t, catalogtest.Store, rr.Body.String())
		}
	})
}
