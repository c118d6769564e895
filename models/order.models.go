package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment states of an order.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
)

// OrderItem is a cart line frozen into an order.
type OrderItem struct {
	ProductID int64                `bson:"product_id" json:"product_id"`
	Name      string               `bson:"name" json:"name"`
	Price     primitive.Decimal128 `bson:"price" json:"price"`
	Quantity  int                  `bson:"quantity" json:"quantity"`
}

// Order represents a user's order
type Order struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"id,omitempty"`
	Reference     string               `bson:"reference" json:"reference"`
	UserEmail     string               `bson:"user_email" json:"user_email"`
	Items         []OrderItem          `bson:"items" json:"items"`
	Subtotal      primitive.Decimal128 `bson:"subtotal" json:"subtotal"`
	Tax           primitive.Decimal128 `bson:"tax" json:"tax"`
	TotalAmount   primitive.Decimal128 `bson:"total_amount" json:"total_amount"`
	Address       Address              `bson:"address" json:"address"`
	PaymentMethod string               `bson:"payment_method" json:"payment_method"` // "card" or "crypto"
	PaymentStatus string               `bson:"payment_status" json:"payment_status"`
	CreatedAt     time.Time            `bson:"created_at" json:"created_at"`
	DeliveryDate  string               `bson:"delivery_date" json:"delivery_date"`
}
