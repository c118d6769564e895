package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go-storefront/models"
)

// ErrProductNotFound is returned by ProductFinder for unknown ids.
var ErrProductNotFound = errors.New("product not found")

// ProductController handles product-related requests
type ProductController struct {
	Collection *mongo.Collection
	Counters   *mongo.Collection
}

// NewProductController creates a new ProductController
func NewProductController(db *mongo.Database) *ProductController {
	return &ProductController{
		Collection: db.Collection("products"),
		Counters:   db.Collection("counters"),
	}
}

// nextProductID hands out increasing integer ids from the counters collection.
func (pc *ProductController) nextProductID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := pc.Counters.FindOneAndUpdate(ctx,
		bson.M{"_id": "products"},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, errors.Wrap(err, "next product id")
	}
	return counter.Seq, nil
}

// FindProduct looks a product up by id.
func (pc *ProductController) FindProduct(ctx context.Context, id int64) (models.Product, error) {
	var product models.Product
	err := pc.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Product{}, ErrProductNotFound
	}
	if err != nil {
		return models.Product{}, errors.Wrapf(err, "find product %d", id)
	}
	return product, nil
}

// CreateProduct handles adding a new product (Admin only)
func (pc *ProductController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var product models.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	if product.Name == "" || product.Price < 0 {
		http.Error(w, "Name is required and price must not be negative", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id, err := pc.nextProductID(ctx)
	if err != nil {
		http.Error(w, "Error creating product", http.StatusInternalServerError)
		return
	}
	product.ID = id
	product.UpdatedAt = time.Now().UTC()

	if _, err := pc.Collection.InsertOne(ctx, product); err != nil {
		http.Error(w, "Error creating product", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, product)
}

// GetProducts lists products, optionally filtered by ?category= and ?brand=.
func (pc *ProductController) GetProducts(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if category := r.URL.Query().Get("category"); category != "" {
		filter["category"] = category
	}
	if brand := r.URL.Query().Get("brand"); brand != "" {
		filter["brand"] = brand
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	cursor, err := pc.Collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		http.Error(w, "Error fetching products", http.StatusInternalServerError)
		return
	}
	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		http.Error(w, "Error reading products", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// GetProductByID retrieves a single product by ID
func (pc *ProductController) GetProductByID(w http.ResponseWriter, r *http.Request) {
	id, err := intVar(r, "id")
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	product, err := pc.FindProduct(ctx, id)
	if errors.Is(err, ErrProductNotFound) {
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Error fetching product", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// UpdateProduct handles updating a product (Admin only)
func (pc *ProductController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := intVar(r, "id")
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}

	var product models.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	if product.Price < 0 {
		http.Error(w, "Price must not be negative", http.StatusBadRequest)
		return
	}
	product.ID = id
	product.UpdatedAt = time.Now().UTC()

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := pc.Collection.ReplaceOne(ctx, bson.M{"_id": id}, product)
	if err != nil {
		http.Error(w, "Error updating product", http.StatusInternalServerError)
		return
	}
	if result.MatchedCount == 0 {
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// DeleteProduct handles deleting a product (Admin only)
func (pc *ProductController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := intVar(r, "id")
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := pc.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		http.Error(w, "Error deleting product", http.StatusInternalServerError)
		return
	}
	if result.DeletedCount == 0 {
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
