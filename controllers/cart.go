package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"go-storefront/cart"
	"go-storefront/middleware"
	"go-storefront/models"
)

// ProductFinder is the catalog lookup used to snapshot a product into the cart.
type ProductFinder interface {
	FindProduct(ctx context.Context, id int64) (models.Product, error)
}

// CartController exposes the cart of the caller's session.
type CartController struct {
	Sessions *cart.Sessions
	Products ProductFinder
}

func NewCartController(sessions *cart.Sessions, products ProductFinder) *CartController {
	return &CartController{
		Sessions: sessions,
		Products: products,
	}
}

type cartResponse struct {
	Items     []cart.Item     `json:"items"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
	IsLoaded  bool            `json:"is_loaded"`
}

func newCartResponse(c cart.Cart, rate decimal.Decimal, loaded bool) cartResponse {
	return cartResponse{
		Items:     c.Items(),
		Subtotal:  c.Subtotal(),
		Tax:       c.Tax(rate),
		Total:     c.Total(rate),
		ItemCount: c.ItemCount(),
		IsLoaded:  loaded,
	}
}

// sessionStore returns the store of the request's session. The load is
// detached from the request so a client hanging up cannot leave the session
// with an empty cart.
func sessionStore(w http.ResponseWriter, r *http.Request, sessions *cart.Sessions) (*cart.Store, bool) {
	id, ok := middleware.SessionIDFrom(r.Context())
	if !ok {
		http.Error(w, "Missing cart session", http.StatusBadRequest)
		return nil, false
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), requestTimeout)
	defer cancel()
	return sessions.Get(ctx, id), true
}

func (cc *CartController) respond(w http.ResponseWriter, store *cart.Store, c cart.Cart) {
	writeJSON(w, http.StatusOK, newCartResponse(c, store.TaxRate(), store.IsLoaded()))
}

// GetCart returns the items and totals of the session cart.
func (cc *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	store, ok := sessionStore(w, r, cc.Sessions)
	if !ok {
		return
	}
	cc.respond(w, store, store.Snapshot())
}

// AddItem adds a catalog product to the cart. The price, name and image are
// taken from the catalog at this moment.
func (cc *CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID int64 `json:"product_id"`
		Quantity  int   `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	if req.Quantity > cart.MaxQuantity {
		http.Error(w, "Quantity is too large", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	product, err := cc.Products.FindProduct(ctx, req.ProductID)
	if errors.Is(err, ErrProductNotFound) {
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Error fetching product", http.StatusInternalServerError)
		return
	}

	store, ok := sessionStore(w, r, cc.Sessions)
	if !ok {
		return
	}
	cc.respond(w, store, store.AddToCart(cartProduct(product), req.Quantity))
}

func cartProduct(p models.Product) cart.Product {
	var extra map[string]json.RawMessage
	if p.Brand != "" {
		raw, _ := json.Marshal(p.Brand)
		extra = map[string]json.RawMessage{"brand": raw}
	}
	return cart.Product{
		ID:       p.ID,
		Name:     p.Name,
		Price:    decimal.NewFromFloat(p.Price),
		Image:    p.Image,
		Category: p.Category,
		Extra:    extra,
	}
}

// UpdateItem sets the quantity of a line. Zero or less removes it.
func (cc *CartController) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := intVar(r, "id")
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}
	var req struct {
		Quantity *int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Quantity == nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	if *req.Quantity > cart.MaxQuantity {
		http.Error(w, "Quantity is too large", http.StatusBadRequest)
		return
	}

	store, ok := sessionStore(w, r, cc.Sessions)
	if !ok {
		return
	}
	cc.respond(w, store, store.UpdateQuantity(id, *req.Quantity))
}

// RemoveItem drops a line. Removing an absent line succeeds.
func (cc *CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, err := intVar(r, "id")
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}

	store, ok := sessionStore(w, r, cc.Sessions)
	if !ok {
		return
	}
	cc.respond(w, store, store.RemoveFromCart(id))
}

// ClearCart empties the cart.
func (cc *CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	store, ok := sessionStore(w, r, cc.Sessions)
	if !ok {
		return
	}
	cc.respond(w, store, store.ClearCart())
}

// EndSession writes the cart out, drops it from memory and expires the
// session cookie.
func (cc *CartController) EndSession(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.SessionIDFrom(r.Context())
	if !ok {
		http.Error(w, "Missing cart session", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), requestTimeout)
	defer cancel()

	if err := cc.Sessions.Release(ctx, id); err != nil {
		http.Error(w, "Error closing cart session", http.StatusInternalServerError)
		return
	}
	middleware.EndSession(w)
	w.WriteHeader(http.StatusNoContent)
}
