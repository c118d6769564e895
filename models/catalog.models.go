package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Brand of the products on sale.
type Brand struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name        string             `bson:"name" json:"name"`
	Slug        string             `bson:"slug" json:"slug"`
	Logo        string             `bson:"logo" json:"logo"`
	Description string             `bson:"description" json:"description"`
}

// Category groups products in the storefront navigation.
type Category struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name     string             `bson:"name" json:"name"`
	Slug     string             `bson:"slug" json:"slug"`
	Image    string             `bson:"image" json:"image"`
	Position int                `bson:"position" json:"position"`
}

// Certificate is a quality or dealer certificate shown on the site.
type Certificate struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Title      string             `bson:"title" json:"title"`
	IssuedBy   string             `bson:"issued_by" json:"issued_by"`
	Image      string             `bson:"image" json:"image"`
	ValidUntil *time.Time         `bson:"valid_until,omitempty" json:"valid_until,omitempty"`
}
