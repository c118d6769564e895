package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"go-storefront/models"
	"go-storefront/utils"
)

// ContactController stores contact form messages and forwards them to the
// shop admin.
type ContactController struct {
	Collection *mongo.Collection
	Mailer     utils.Mailer
	AdminEmail string
	Logger     *zap.Logger
}

func NewContactController(db *mongo.Database, mailer utils.Mailer, adminEmail string, logger *zap.Logger) *ContactController {
	return &ContactController{
		Collection: db.Collection("contacts"),
		Mailer:     mailer,
		AdminEmail: adminEmail,
		Logger:     logger,
	}
}

// SubmitContact handles the public contact form.
func (cc *ContactController) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var contact models.Contact
	if err := json.NewDecoder(r.Body).Decode(&contact); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	contact.Name = strings.TrimSpace(contact.Name)
	contact.Message = strings.TrimSpace(contact.Message)
	if contact.Name == "" || contact.Message == "" {
		http.Error(w, "Name and message are required", http.StatusBadRequest)
		return
	}
	if _, err := mail.ParseAddress(contact.Email); err != nil {
		http.Error(w, "Invalid email address", http.StatusBadRequest)
		return
	}
	contact.ID = primitive.NilObjectID
	contact.CreatedAt = time.Now().UTC()

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if _, err := cc.Collection.InsertOne(ctx, contact); err != nil {
		http.Error(w, "Error saving message", http.StatusInternalServerError)
		return
	}

	if cc.AdminEmail != "" {
		go func(contact models.Contact) {
			subject, body := utils.ContactMessage(contact)
			if err := cc.Mailer.SendEmail(cc.AdminEmail, subject, body); err != nil {
				cc.Logger.Error("failed to forward contact message", zap.String("from", contact.Email), zap.Error(err))
			}
		}(contact)
	}

	writeJSON(w, http.StatusCreated, map[string]string{"message": "Thank you, we will get back to you soon."})
}

// ListContacts returns the received messages, newest first (Admin only)
func (cc *ContactController) ListContacts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	cursor, err := cc.Collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		http.Error(w, "Error fetching messages", http.StatusInternalServerError)
		return
	}
	contacts := []models.Contact{}
	if err := cursor.All(ctx, &contacts); err != nil {
		http.Error(w, "Error reading messages", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, contacts)
}

// DeleteContact removes a message (Admin only)
func (cc *ContactController) DeleteContact(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid message ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := cc.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		http.Error(w, "Error deleting message", http.StatusInternalServerError)
		return
	}
	if result.DeletedCount == 0 {
		http.Error(w, "Message not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
