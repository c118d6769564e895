package models

import "time"

// Product is a catalog entry. Its integer ID is also the cart key.
type Product struct {
	ID          int64     `bson:"_id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Description string    `bson:"description" json:"description"`
	Price       float64   `bson:"price" json:"price"`
	Image       string    `bson:"image" json:"image"`
	Brand       string    `bson:"brand,omitempty" json:"brand,omitempty"`
	Category    string    `bson:"category,omitempty" json:"category,omitempty"`
	Stock       int       `bson:"stock" json:"stock"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}
