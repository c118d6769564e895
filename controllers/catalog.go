package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CatalogController serves the simple back-office collections (brands,
// categories, certificates): public listing, admin create/update/delete.
type CatalogController[T any] struct {
	Collection *mongo.Collection
	noun       string
}

func NewCatalogController[T any](db *mongo.Database, collection, noun string) *CatalogController[T] {
	return &CatalogController[T]{
		Collection: db.Collection(collection),
		noun:       noun,
	}
}

// List returns every document in the collection.
func (cc *CatalogController[T]) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	cursor, err := cc.Collection.Find(ctx, bson.M{})
	if err != nil {
		http.Error(w, "Error fetching "+cc.noun+"s", http.StatusInternalServerError)
		return
	}
	docs := []T{}
	if err := cursor.All(ctx, &docs); err != nil {
		http.Error(w, "Error reading "+cc.noun+"s", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, docs)
}

// Create inserts a document (Admin only)
func (cc *CatalogController[T]) Create(w http.ResponseWriter, r *http.Request) {
	var doc T
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := cc.Collection.InsertOne(ctx, doc)
	if err != nil {
		http.Error(w, "Error creating "+cc.noun, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"id": result.InsertedID})
}

// Update replaces the fields of a document (Admin only)
func (cc *CatalogController[T]) Update(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid "+cc.noun+" ID", http.StatusBadRequest)
		return
	}

	var doc T
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := cc.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": doc})
	if err != nil {
		http.Error(w, "Error updating "+cc.noun, http.StatusInternalServerError)
		return
	}
	if result.MatchedCount == 0 {
		http.Error(w, cc.noun+" not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete removes a document (Admin only)
func (cc *CatalogController[T]) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid "+cc.noun+" ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := cc.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		http.Error(w, "Error deleting "+cc.noun, http.StatusInternalServerError)
		return
	}
	if result.DeletedCount == 0 {
		http.Error(w, cc.noun+" not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
