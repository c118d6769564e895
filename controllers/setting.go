package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go-storefront/models"
)

// SettingsController reads and edits the single shop settings document.
type SettingsController struct {
	Collection *mongo.Collection
}

func NewSettingsController(db *mongo.Database) *SettingsController {
	return &SettingsController{Collection: db.Collection("settings")}
}

// GetSettings returns the shop settings, or empty values if none were saved.
func (sc *SettingsController) GetSettings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var settings models.Settings
	err := sc.Collection.FindOne(ctx, bson.M{"_id": models.SiteSettingsID}).Decode(&settings)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		http.Error(w, "Error fetching settings", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, settings)
}

// UpdateSettings replaces the shop settings (Admin only)
func (sc *SettingsController) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var settings models.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	settings.ID = models.SiteSettingsID

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	_, err := sc.Collection.ReplaceOne(ctx, bson.M{"_id": models.SiteSettingsID}, settings, options.Replace().SetUpsert(true))
	if err != nil {
		http.Error(w, "Error saving settings", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, settings)
}
