package storage

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go-storefront/cart"
)

// CartSessionsCollection holds one document per cart session.
const CartSessionsCollection = "cart_sessions"

type cartRecord struct {
	Key       string    `bson:"_id"`
	Items     string    `bson:"items"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoMirror keeps cart records in a MongoDB collection. The record is
// stored verbatim as a JSON string so opaque item fields survive untouched.
type MongoMirror struct {
	Collection *mongo.Collection
}

func NewMongoMirror(db *mongo.Database) *MongoMirror {
	return &MongoMirror{Collection: db.Collection(CartSessionsCollection)}
}

func (m *MongoMirror) Load(ctx context.Context, key string) ([]byte, error) {
	var record cartRecord
	err := m.Collection.FindOne(ctx, bson.M{"_id": key}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, cart.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "find cart %s", key)
	}
	return []byte(record.Items), nil
}

func (m *MongoMirror) Save(ctx context.Context, key string, data []byte) error {
	_, err := m.Collection.UpdateOne(ctx,
		bson.M{"_id": key},
		bson.M{"$set": bson.M{
			"items":      string(data),
			"updated_at": time.Now().UTC(),
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return errors.Wrapf(err, "save cart %s", key)
	}
	return nil
}
