package profile_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gangland/internal/auth/token"
	"gangland/internal/catalog/catalogtest"
	"gangland/internal/profile"
	"gangland/internal/user"
	"gangland/internal/user/store"
	"gangland/pkg/testutil"
)

const (
	alice = "aaaaaaaa-aaaa-5aaa-8aaa-aaaaaaaaaaaa"
	bob   = "bbbbbbbb-bbbb-5bbb-8bbb-bbbbbbbbbbbb"
	ghost = "cccccccc-cccc-5ccc-8ccc-cccccccccccc"
)

func newRouter(t *testing.T, opts ...profile.Option) (chi.Router, *store.InMemoryStore) {
	t.Helper()
	users := store.NewInMemoryStore()
	ctx := context.Background()
	require.NoError(t, users.Insert(ctx, &user.User{UUID: alice}))
	require.NoError(t, users.Insert(ctx, &user.User{UUID: bob, Inventory: `{"inventory":{"bobs":2}}`, Data: `{"data":{"AccountXPLevel":9}}`}))

	content := catalogtest.Load(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts = append([]profile.Option{profile.WithLogger(logger)}, opts...)
	svc := profile.NewService(users, profile.Defaults{Inventory: content.Inventory, Save: content.Save}, opts...)

	r := chi.NewRouter()
	profile.NewHandler(svc, token.NewLegacyService(time.Hour), logger).Register(r)
	return r, users
}

func TestGetUser(t *testing.T) {
	r, users := newRouter(t)

	t.Run("me", func(t *testing.T) {
		rr := testutil.DoRequest(r, testutil.WithBearer(testutil.NewRequest(t, http.MethodGet, "/users/me"), alice))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"user_id":"`+alice+`"}`, rr.Body.String())
	})

	t.Run("own uuid", func(t *testing.T) {
		rr := testutil.DoRequest(r, testutil.WithBearer(testutil.NewRequest(t, http.MethodGet, "/users/"+alice), alice))
		assert.JSONEq(t, `{"user_id":"`+alice+`"}`, rr.Body.String())
	})

	t.Run("another user", func(t *testing.T) {
		rr := testutil.DoRequest(r, testutil.WithBearer(testutil.NewRequest(t, http.MethodGet, "/users/"+bob+"/inventory"), alice))
		testutil.AssertText(t, rr, http.StatusForbidden, "Forbidden: Cannot access another user's data.")
	})

	t.Run("inventory default is persisted", func(t *testing.T) {
		rr := testutil.DoRequest(r, testutil.WithBearer(testutil.NewRequest(t, http.MethodGet, "/users/me/inventory"), alice))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, catalogtest.Inventory, rr.Body.String())

		u, err := users.FindByUUID(context.Background(), alice)
		require.NoError(t, err)
		assert.JSONEq(t, catalogtest.Inventory, u.Inventory)
	})

	t.Run("stored inventory", func(t *testing.T) {
		rr := testutil.DoRequest(r, testutil.WithBearer(testutil.NewRequest(t, http.MethodGet, "/users/"+bob+"/inventory"), bob))
		assert.JSONEq(t, `{"inventory":{"bobs":2}}`, rr.Body.String())
	})

	t.Run("private profile", func(t *testing.T) {
		rr := testutil.DoRequest(r, testutil.WithBearer(testutil.NewRequest(t, http.MethodGet, "/users/"+bob+"/profile/private"), bob))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"data":{"AccountXPLevel":9}}`, rr.Body.String())
	})

	t.Run("private profile default is persisted", func(t *testing.T) {
		rr := testutil.DoRequest(r, testutil.WithBearer(testutil.NewRequest(t, http.MethodGet, "/users/"+alice+"/profile/private"), alice))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, catalogtest.Save, rr.Body.String())

		u, err := users.FindByUUID(context.Background(), alice)
		require.NoError(t, err)
		assert.JSONEq(t, catalogtest.Save, u.Data)
	})

	t.Run("other profile sub-resource", func(t *testing.T) {
		rr := testutil.DoRequest(r, testutil.WithBearer(testutil.NewRequest(t, http.MethodGet, "/users/"+alice+"/profile/public"), alice))
		require.Equal(t, http.StatusNotFound, rr.Code)
		assert.JSONEq(t, `{"message":"Profile sub-resource not found or not implemented."}`, rr.Body.String())
	})

	t.Run("profile through me is not routed", func(t *testing.T) {
		rr := testutil.DoRequest(r, testutil.WithBearer(testutil.NewRequest(t, http.MethodGet, "/users/me/profile/private"), alice))
		require.Equal(t, http.StatusNotFound, rr.Code)
		assert.JSONEq(t, `{"message":"Resource not found or not implemented."}`, rr.Body.String())
	})

	t.Run("unknown user", func(t *testing.T) {
		rr := testutil.DoRequest(r, testutil.WithBearer(testutil.NewRequest(t, http.MethodGet, "/users/me/inventory"), ghost))
		testutil.AssertText(t, rr, http.StatusNotFound, "User not found")
	})

	t.Run("missing authorization", func(t *testing.T) {
		rr := testutil.DoRequest(r, testutil.NewRequest(t, http.MethodGet, "/users/me"))
		testutil.AssertText(t, rr, http.StatusUnauthorized, "Unauthorized: Missing Authorization header")
	})

	t.Run("malformed authorization", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/users/me")
		req.Header.Set("Authorization", "Bearer")
		testutil.AssertText(t, testutil.DoRequest(r, req), http.StatusUnauthorized, "Unauthorized: Invalid Authorization header format")
	})
}

func putProfile(t *testing.T, path, bearer, body string) *http.Request {
	return testutil.WithBearer(testutil.NewRequestWithBody(t, http.MethodPut, path, body), bearer)
}

func TestPutUser(t *testing.T) {
	t.Run("save profile", func(t *testing.T) {
		r, users := newRouter(t)
		rr := testutil.DoRequest(r, putProfile(t, "/users/me/profile/private", alice, `{"data":{"AccountXPLevel":12}}`))
		require.Equal(t, http.StatusNoContent, rr.Code)
		assert.Empty(t, rr.Body.String())

		u, err := users.FindByUUID(context.Background(), alice)
		require.NoError(t, err)
		assert.JSONEq(t, `{"data":{"AccountXPLevel":12}}`, u.Data)
	})

	t.Run("xp floor", func(t *testing.T) {
		r, users := newRouter(t, profile.WithMinXPLevel(24))
		rr := testutil.DoRequest(r, putProfile(t, "/users/"+alice+"/profile/private", alice, `{"data":{"AccountXPLevel":2,"jokerXPLevel":40}}`))
		require.Equal(t, http.StatusNoContent, rr.Code)

		u, err := users.FindByUUID(context.Background(), alice)
		require.NoError(t, err)
		assert.JSONEq(t, `{"data":{"AccountXPLevel":24,"jokerXPLevel":40}}`, u.Data)
	})

	t.Run("invalid body", func(t *testing.T) {
		r, _ := newRouter(t)
		for _, body := range []string{`{}`, `{"data":{}}`, `not json`, `{"data":[1]}`} {
			rr := testutil.DoRequest(r, putProfile(t, "/users/me/profile/private", alice, body))
			testutil.AssertText(t, rr, http.StatusBadRequest, "Invalid request body: Missing required fields (e.g., data.AccountXPLevel)")
		}
	})

	t.Run("wbnet stub", func(t *testing.T) {
		r, _ := newRouter(t)
		rr := testutil.DoRequest(r, putProfile(t, "/users/me/wbnet", alice, `{"email":"x"}`))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"message":"No WBNet user linked","code":2600}`, rr.Body.String())
	})

	t.Run("wbnet by uuid is not routed", func(t *testing.T) {
		r, _ := newRouter(t)
		rr := testutil.DoRequest(r, putProfile(t, "/users/"+alice+"/wbnet", alice, `{}`))
		require.Equal(t, http.StatusNotFound, rr.Code)
		assert.JSONEq(t, `{"message":"Resource for update not found or not implemented."}`, rr.Body.String())
	})

	t.Run("another user", func(t *testing.T) {
		r, _ := newRouter(t)
		rr := testutil.DoRequest(r, putProfile(t, "/users/"+bob+"/profile/private", alice, `{"data":{"AccountXPLevel":1}}`))
		testutil.AssertText(t, rr, http.StatusForbidden, "Forbidden: Cannot modify another user's data.")
	})

	t.Run("unknown user", func(t *testing.T) {
		r, _ := newRouter(t)
		rr := testutil.DoRequest(r, putProfile(t, "/users/me/profile/private", ghost, `{"data":{"AccountXPLevel":1}}`))
		testutil.AssertText(t, rr, http.StatusNotFound, "User not found")
	})
}
