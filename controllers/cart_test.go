package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-storefront/cart"
	"go-storefront/middleware"
	"go-storefront/models"
	"go-storefront/storage"
)

type fakeProducts map[int64]models.Product

func (f fakeProducts) FindProduct(_ context.Context, id int64) (models.Product, error) {
	p, ok := f[id]
	if !ok {
		return models.Product{}, ErrProductNotFound
	}
	return p, nil
}

var catalog = fakeProducts{
	1: {ID: 1, Name: "Guitar", Price: 100, Image: "g.png", Category: "instruments", Brand: "Fender"},
	2: {ID: 2, Name: "Pick", Price: 1, Image: "p.png"},
}

type fakeOrders struct {
	mu       sync.Mutex
	placed   []models.Order
	placeErr error
}

func (f *fakeOrders) Place(_ context.Context, order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.placeErr != nil {
		return f.placeErr
	}
	order.ID = primitive.NewObjectID()
	f.placed = append(f.placed, *order)
	return nil
}

func (f *fakeOrders) ListByEmail(_ context.Context, email string) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Order
	for _, o := range f.placed {
		if o.UserEmail == email {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrders) SetPaymentStatus(_ context.Context, id primitive.ObjectID, status string) (models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.placed {
		if f.placed[i].ID == id {
			f.placed[i].PaymentStatus = status
			return f.placed[i], nil
		}
	}
	return models.Order{}, storage.ErrOrderNotFound
}

type sentMail struct{ to, subject string }

type fakeMailer struct {
	sent chan sentMail
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{sent: make(chan sentMail, 16)}
}

func (m *fakeMailer) SendEmail(to, subject, _ string) error {
	m.sent <- sentMail{to: to, subject: subject}
	return nil
}

func newSessions(t *testing.T) (*cart.Sessions, *cart.MemoryMirror) {
	t.Helper()
	mirror := cart.NewMemoryMirror()
	sessions := cart.NewSessions(mirror, cart.WithTaxRate(decimal.RequireFromString("0.1")))
	t.Cleanup(func() { _ = sessions.Close(context.Background()) })
	return sessions, mirror
}

// request builds a request carrying a session id and optional mux vars.
func request(method, target, body, session string, vars map[string]string) *http.Request {
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	ctx := context.WithValue(r.Context(), middleware.SessionContextKey, session)
	r = r.WithContext(ctx)
	if vars != nil {
		r = mux.SetURLVars(r, vars)
	}
	return r
}

func decodeCart(t *testing.T, w *httptest.ResponseRecorder) cartResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp cartResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestCartController_Flow(t *testing.T) {
	sessions, _ := newSessions(t)
	cc := NewCartController(sessions, catalog)

	w := httptest.NewRecorder()
	cc.GetCart(w, request(http.MethodGet, "/cart", "", "s1", nil))
	resp := decodeCart(t, w)
	require.True(t, resp.IsLoaded)
	require.Empty(t, resp.Items)
	require.NotNil(t, resp.Items)

	w = httptest.NewRecorder()
	cc.AddItem(w, request(http.MethodPost, "/cart/items", `{"product_id":1,"quantity":2}`, "s1", nil))
	decodeCart(t, w)

	w = httptest.NewRecorder()
	cc.AddItem(w, request(http.MethodPost, "/cart/items", `{"product_id":2,"quantity":10}`, "s1", nil))
	resp = decodeCart(t, w)
	require.True(t, resp.Subtotal.Equal(decimal.NewFromInt(210)))
	require.True(t, resp.Tax.Equal(decimal.NewFromInt(21)))
	require.True(t, resp.Total.Equal(decimal.NewFromInt(231)))
	require.Equal(t, 12, resp.ItemCount)
	require.Equal(t, "instruments", resp.Items[0].Category())
	require.Contains(t, resp.Items[0].Extra, "brand")

	w = httptest.NewRecorder()
	cc.UpdateItem(w, request(http.MethodPatch, "/cart/items/1", `{"quantity":1}`, "s1", map[string]string{"id": "1"}))
	resp = decodeCart(t, w)
	require.True(t, resp.Subtotal.Equal(decimal.NewFromInt(111)))

	w = httptest.NewRecorder()
	cc.RemoveItem(w, request(http.MethodDelete, "/cart/items/2", "", "s1", map[string]string{"id": "2"}))
	resp = decodeCart(t, w)
	require.Equal(t, 1, resp.ItemCount)

	w = httptest.NewRecorder()
	cc.ClearCart(w, request(http.MethodDelete, "/cart", "", "s1", nil))
	resp = decodeCart(t, w)
	require.Equal(t, 0, resp.ItemCount)
}

func TestCartController_SessionsAreIsolated(t *testing.T) {
	sessions, _ := newSessions(t)
	cc := NewCartController(sessions, catalog)

	cc.AddItem(httptest.NewRecorder(), request(http.MethodPost, "/cart/items", `{"product_id":1}`, "a", nil))

	w := httptest.NewRecorder()
	cc.GetCart(w, request(http.MethodGet, "/cart", "", "b", nil))
	require.Equal(t, 0, decodeCart(t, w).ItemCount)

	w = httptest.NewRecorder()
	cc.GetCart(w, request(http.MethodGet, "/cart", "", "a", nil))
	require.Equal(t, 1, decodeCart(t, w).ItemCount)
}

func TestCartController_Errors(t *testing.T) {
	sessions, _ := newSessions(t)
	cc := NewCartController(sessions, catalog)

	tests := []struct {
		name   string
		call   func(w http.ResponseWriter)
		status int
	}{
		{"unknown product", func(w http.ResponseWriter) {
			cc.AddItem(w, request(http.MethodPost, "/cart/items", `{"product_id":99}`, "s", nil))
		}, http.StatusNotFound},
		{"bad body", func(w http.ResponseWriter) {
			cc.AddItem(w, request(http.MethodPost, "/cart/items", `{`, "s", nil))
		}, http.StatusBadRequest},
		{"missing quantity", func(w http.ResponseWriter) {
			cc.UpdateItem(w, request(http.MethodPatch, "/cart/items/1", `{}`, "s", map[string]string{"id": "1"}))
		}, http.StatusBadRequest},
		{"bad id", func(w http.ResponseWriter) {
			cc.RemoveItem(w, request(http.MethodDelete, "/cart/items/x", "", "s", map[string]string{"id": "x"}))
		}, http.StatusBadRequest},
		{"add above max quantity", func(w http.ResponseWriter) {
			cc.AddItem(w, request(http.MethodPost, "/cart/items", `{"product_id":1,"quantity":9223372036854775807}`, "s", nil))
		}, http.StatusBadRequest},
		{"update above max quantity", func(w http.ResponseWriter) {
			cc.UpdateItem(w, request(http.MethodPatch, "/cart/items/1", `{"quantity":10000}`, "s", map[string]string{"id": "1"}))
		}, http.StatusBadRequest},
		{"no session", func(w http.ResponseWriter) {
			cc.GetCart(w, httptest.NewRequest(http.MethodGet, "/cart", nil))
		}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.call(w)
			require.Equal(t, tt.status, w.Code)
		})
	}

	w := httptest.NewRecorder()
	cc.GetCart(w, request(http.MethodGet, "/cart", "", "s", nil))
	require.Equal(t, 0, decodeCart(t, w).ItemCount)
}

func TestCartController_RepeatedAddsStayCapped(t *testing.T) {
	sessions, _ := newSessions(t)
	cc := NewCartController(sessions, catalog)

	body := fmt.Sprintf(`{"product_id":2,"quantity":%d}`, cart.MaxQuantity)
	cc.AddItem(httptest.NewRecorder(), request(http.MethodPost, "/cart/items", body, "s", nil))
	w := httptest.NewRecorder()
	cc.AddItem(w, request(http.MethodPost, "/cart/items", body, "s", nil))

	resp := decodeCart(t, w)
	require.Equal(t, cart.MaxQuantity, resp.ItemCount)
	require.True(t, resp.Subtotal.IsPositive())
}

type brokenProducts struct{}

func (brokenProducts) FindProduct(context.Context, int64) (models.Product, error) {
	return models.Product{}, errors.New("connection refused")
}

func TestCartController_CatalogFailure(t *testing.T) {
	sessions, _ := newSessions(t)
	cc := NewCartController(sessions, brokenProducts{})

	w := httptest.NewRecorder()
	cc.AddItem(w, request(http.MethodPost, "/cart/items", `{"product_id":1}`, "s", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCartController_EndSessionPersistsAndExpiresCookie(t *testing.T) {
	sessions, mirror := newSessions(t)
	cc := NewCartController(sessions, catalog)

	cc.AddItem(httptest.NewRecorder(), request(http.MethodPost, "/cart/items", `{"product_id":2,"quantity":3}`, "s1", nil))

	w := httptest.NewRecorder()
	cc.EndSession(w, request(http.MethodDelete, "/cart/session", "", "s1", nil))
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, 0, sessions.Len())

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, middleware.SessionCookie, cookies[0].Name)
	require.Negative(t, cookies[0].MaxAge)

	data, err := mirror.Load(context.Background(), cart.SessionKey("s1"))
	require.NoError(t, err)
	var stored cart.Cart
	require.NoError(t, json.Unmarshal(data, &stored))
	require.Equal(t, 3, stored.ItemCount())
}
