// controllers/order.go
package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"go-storefront/cart"
	"go-storefront/middleware"
	"go-storefront/models"
	"go-storefront/storage"
	"go-storefront/utils"
)

// deliveryDays approximates 7 working days.
const deliveryDays = 10

// OrderStore persists orders.
type OrderStore interface {
	Place(ctx context.Context, order *models.Order) error
	ListByEmail(ctx context.Context, email string) ([]models.Order, error)
	SetPaymentStatus(ctx context.Context, id primitive.ObjectID, status string) (models.Order, error)
}

// OrderController turns session carts into orders.
type OrderController struct {
	Orders   OrderStore
	Sessions *cart.Sessions
	Mailer   utils.Mailer
	Logger   *zap.Logger
	now      func() time.Time
}

// NewOrderController creates a new OrderController
func NewOrderController(orders OrderStore, sessions *cart.Sessions, mailer utils.Mailer, logger *zap.Logger) *OrderController {
	return &OrderController{
		Orders:   orders,
		Sessions: sessions,
		Mailer:   mailer,
		Logger:   logger,
		now:      time.Now,
	}
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	return primitive.ParseDecimal128(d.StringFixed(2))
}

// newOrder freezes a cart into an order. Amounts are rounded to cents; the
// total is the rounded subtotal plus the rounded tax.
func newOrder(c cart.Cart, rate decimal.Decimal, email, method string, address models.Address, now time.Time) (models.Order, error) {
	items := make([]models.OrderItem, 0, c.Len())
	for _, it := range c.Items() {
		price, err := toDecimal128(it.Price)
		if err != nil {
			return models.Order{}, errors.Wrapf(err, "price of product %d", it.ID)
		}
		items = append(items, models.OrderItem{
			ProductID: it.ID,
			Name:      it.Name,
			Price:     price,
			Quantity:  it.Quantity,
		})
	}

	subtotal := c.Subtotal().Round(2)
	tax := c.Tax(rate).Round(2)
	amounts := make([]primitive.Decimal128, 3)
	for i, d := range []decimal.Decimal{subtotal, tax, subtotal.Add(tax)} {
		v, err := toDecimal128(d)
		if err != nil {
			return models.Order{}, errors.Wrap(err, "order amounts")
		}
		amounts[i] = v
	}

	status := models.PaymentPending
	if method == "card" {
		// No gateway integration yet: card orders are marked paid on placement.
		status = models.PaymentCompleted
	}

	return models.Order{
		Reference:     uuid.NewString(),
		UserEmail:     email,
		Items:         items,
		Subtotal:      amounts[0],
		Tax:           amounts[1],
		TotalAmount:   amounts[2],
		Address:       address,
		PaymentMethod: method,
		PaymentStatus: status,
		CreatedAt:     now.UTC(),
		DeliveryDate:  now.AddDate(0, 0, deliveryDays).Format("2006-01-02"),
	}, nil
}

// CreateOrder creates a new order from the session cart and empties the cart
// once the order is stored.
func (oc *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		PaymentMethod string         `json:"payment_method"`
		Address       models.Address `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	paymentMethod := strings.ToLower(req.PaymentMethod)
	if paymentMethod != "card" && paymentMethod != "crypto" {
		http.Error(w, "Invalid payment method", http.StatusBadRequest)
		return
	}

	store, ok := sessionStore(w, r, oc.Sessions)
	if !ok {
		return
	}
	snapshot := store.Snapshot()
	if snapshot.Len() == 0 {
		http.Error(w, "Cart is empty", http.StatusBadRequest)
		return
	}

	order, err := newOrder(snapshot, store.TaxRate(), claims.Email, paymentMethod, req.Address, oc.now())
	if err != nil {
		http.Error(w, "Failed to create order", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	err = oc.Orders.Place(ctx, &order)
	if errors.Is(err, storage.ErrInsufficientStock) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		oc.Logger.Error("failed to place order", zap.String("email", claims.Email), zap.Error(err))
		http.Error(w, "Failed to create order", http.StatusInternalServerError)
		return
	}

	store.ClearCart()

	go func(order models.Order) {
		subject, body := utils.OrderConfirmationMessage(order)
		if err := oc.Mailer.SendEmail(order.UserEmail, subject, body); err != nil {
			oc.Logger.Error("failed to send order confirmation", zap.String("email", order.UserEmail), zap.Error(err))
		}
	}(order)

	writeJSON(w, http.StatusCreated, map[string]any{
		"order_id":      order.ID,
		"reference":     order.Reference,
		"total_amount":  order.TotalAmount,
		"delivery_date": order.DeliveryDate,
		"message":       "Order created successfully. It will take 7 working days to arrive at your provided address.",
	})
}

// GetOrders retrieves all orders for the authenticated user
func (oc *OrderController) GetOrders(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	orders, err := oc.Orders.ListByEmail(ctx, claims.Email)
	if err != nil {
		http.Error(w, "Failed to retrieve orders", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// UpdateOrderPaymentStatus allows admin to update payment status
func (oc *OrderController) UpdateOrderPaymentStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid order ID", http.StatusBadRequest)
		return
	}

	var req struct {
		PaymentStatus string `json:"payment_status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.PaymentStatus != models.PaymentCompleted && req.PaymentStatus != models.PaymentFailed {
		http.Error(w, "Invalid payment status", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	order, err := oc.Orders.SetPaymentStatus(ctx, orderID, req.PaymentStatus)
	if errors.Is(err, storage.ErrOrderNotFound) {
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to update payment status", http.StatusInternalServerError)
		return
	}

	subject, body := utils.PaymentStatusMessage(order)
	if err := oc.Mailer.SendEmail(order.UserEmail, subject, body); err != nil {
		oc.Logger.Error("failed to send payment status email", zap.String("email", order.UserEmail), zap.Error(err))
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Payment status updated successfully"})
}
