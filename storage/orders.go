package storage

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go-storefront/models"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// OrderRepository places orders against the product stock and stores them.
type OrderRepository struct {
	Orders   *mongo.Collection
	Products *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{
		Orders:   db.Collection("orders"),
		Products: db.Collection("products"),
	}
}

// Place reserves stock for every line and inserts the order. Stock taken for
// earlier lines is given back when a later line cannot be served.
func (r *OrderRepository) Place(ctx context.Context, order *models.Order) error {
	reserved := make([]models.OrderItem, 0, len(order.Items))
	release := func() {
		for _, item := range reserved {
			_, _ = r.Products.UpdateOne(context.WithoutCancel(ctx),
				bson.M{"_id": item.ProductID},
				bson.M{"$inc": bson.M{"stock": item.Quantity}},
			)
		}
	}

	for _, item := range order.Items {
		res, err := r.Products.UpdateOne(ctx,
			bson.M{"_id": item.ProductID, "stock": bson.M{"$gte": item.Quantity}},
			bson.M{"$inc": bson.M{"stock": -item.Quantity}},
		)
		if err != nil {
			release()
			return errors.Wrapf(err, "reserve product %d", item.ProductID)
		}
		if res.MatchedCount == 0 {
			release()
			return errors.Wrapf(ErrInsufficientStock, "product %s", item.Name)
		}
		reserved = append(reserved, item)
	}

	res, err := r.Orders.InsertOne(ctx, order)
	if err != nil {
		release()
		return errors.Wrap(err, "insert order")
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		order.ID = id
	}
	return nil
}

// ListByEmail returns the orders of a customer, newest first.
func (r *OrderRepository) ListByEmail(ctx context.Context, email string) ([]models.Order, error) {
	cursor, err := r.Orders.Find(ctx,
		bson.M{"user_email": email},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, errors.Wrap(err, "find orders")
	}
	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, errors.Wrap(err, "decode orders")
	}
	return orders, nil
}

// SetPaymentStatus updates the payment status and returns the updated order.
func (r *OrderRepository) SetPaymentStatus(ctx context.Context, id primitive.ObjectID, status string) (models.Order, error) {
	var order models.Order
	err := r.Orders.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"payment_status": status}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Order{}, ErrOrderNotFound
	}
	if err != nil {
		return models.Order{}, errors.Wrap(err, "update payment status")
	}
	return order, nil
}
