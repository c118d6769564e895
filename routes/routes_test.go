package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go-storefront/cart"
	"go-storefront/controllers"
	"go-storefront/middleware"
	"go-storefront/models"
	"go-storefront/utils"
)

type catalog map[int64]models.Product

func (c catalog) FindProduct(_ context.Context, id int64) (models.Product, error) {
	p, ok := c[id]
	if !ok {
		return models.Product{}, controllers.ErrProductNotFound
	}
	return p, nil
}

func newRouter(t *testing.T) (*mux.Router, *utils.TokenManager) {
	t.Helper()
	sessions := cart.NewSessions(cart.NewMemoryMirror())
	t.Cleanup(func() { _ = sessions.Close(context.Background()) })

	tokens := utils.NewTokenManager("test-secret")
	router := mux.NewRouter()
	RegisterRoutes(router, Handlers{
		Cart: controllers.NewCartController(sessions, catalog{
			7: {ID: 7, Name: "Amp", Price: 50},
		}),
	}, tokens, zap.NewNop())
	return router, tokens
}

func serve(router http.Handler, method, target, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	for _, c := range cookies {
		r.AddCookie(c)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

func TestRoutes_CartFollowsSessionCookie(t *testing.T) {
	router, _ := newRouter(t)

	w := serve(router, http.MethodPost, "/cart/items", `{"product_id":7,"quantity":2}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, middleware.SessionCookie, cookies[0].Name)
	session := cookies[0]

	w = serve(router, http.MethodGet, "/cart", "", session)
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, w.Result().Cookies())
	var resp struct {
		ItemCount int  `json:"item_count"`
		IsLoaded  bool `json:"is_loaded"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.ItemCount)
	require.True(t, resp.IsLoaded)

	w = serve(router, http.MethodGet, "/cart", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 0, resp.ItemCount)
}

func TestRoutes_AdminRequiresAdminRole(t *testing.T) {
	router, tokens := newRouter(t)

	w := serve(router, http.MethodPost, "/admin/products", `{}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	userToken, err := tokens.GenerateJWT("ada@example.com", utils.RoleUser)
	require.NoError(t, err)
	w = serve(router, http.MethodDelete, "/admin/brands/1", "", &http.Cookie{Name: middleware.TokenCookie, Value: userToken})
	require.Equal(t, http.StatusForbidden, w.Code)

	w = serve(router, http.MethodGet, "/orders", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
