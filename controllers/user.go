package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"go-storefront/middleware"
	"go-storefront/models"
	"go-storefront/utils"
)

const minPasswordLength = 8

// UserController handles user-related requests
type UserController struct {
	Collection *mongo.Collection
	Tokens     *utils.TokenManager
	Mailer     utils.Mailer
	BaseURL    string
	Logger     *zap.Logger
}

// NewUserController creates a new UserController
func NewUserController(db *mongo.Database, tokens *utils.TokenManager, mailer utils.Mailer, baseURL string, logger *zap.Logger) *UserController {
	return &UserController{
		Collection: db.Collection("users"),
		Tokens:     tokens,
		Mailer:     mailer,
		BaseURL:    baseURL,
		Logger:     logger,
	}
}

// Register handles user registration
func (uc *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string         `json:"name"`
		Email    string         `json:"email"`
		Password string         `json:"password"`
		Address  models.Address `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		http.Error(w, "Invalid email address", http.StatusBadRequest)
		return
	}
	if len(req.Password) < minPasswordLength {
		http.Error(w, "Password is too short", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	count, err := uc.Collection.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	if count > 0 {
		http.Error(w, "User already exists", http.StatusBadRequest)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Error hashing password", http.StatusInternalServerError)
		return
	}

	verificationToken, err := uc.Tokens.GenerateJWT(email, utils.RoleUser)
	if err != nil {
		http.Error(w, "Error generating verification token", http.StatusInternalServerError)
		return
	}

	user := models.User{
		Name:              req.Name,
		Email:             email,
		Password:          string(hashedPassword),
		Address:           req.Address,
		Role:              utils.RoleUser,
		VerificationToken: verificationToken,
		CreatedAt:         time.Now().UTC(),
	}
	if _, err := uc.Collection.InsertOne(ctx, user); err != nil {
		http.Error(w, "Error creating user", http.StatusInternalServerError)
		return
	}

	subject, body := utils.VerificationMessage(uc.BaseURL, verificationToken)
	if err := uc.Mailer.SendEmail(email, subject, body); err != nil {
		uc.Logger.Error("failed to send verification email", zap.String("email", email), zap.Error(err))
	}

	writeJSON(w, http.StatusCreated, "User registered successfully. Please check your email to verify your account.")
}

// VerifyEmail handles email verification
func (uc *UserController) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Verification token missing", http.StatusBadRequest)
		return
	}
	if _, err := uc.Tokens.ParseToken(token); err != nil {
		http.Error(w, "Invalid token", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := uc.Collection.UpdateOne(ctx, bson.M{"verification_token": token}, bson.M{
		"$set": bson.M{
			"is_verified":        true,
			"verification_token": "",
		},
	})
	if err != nil {
		http.Error(w, "Error updating user verification status", http.StatusInternalServerError)
		return
	}
	if result.MatchedCount == 0 {
		http.Error(w, "User not found or already verified", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, "Email verified successfully. You can now log in.")
}

// Login handles user authentication. The token is returned in the body and
// set as a cookie for browser clients.
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var user models.User
	err := uc.Collection.FindOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(creds.Email))}).Decode(&user)
	if err != nil {
		http.Error(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(creds.Password)); err != nil {
		http.Error(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}
	if !user.IsVerified {
		http.Error(w, "Email not verified", http.StatusUnauthorized)
		return
	}

	token, err := uc.Tokens.GenerateJWT(user.Email, user.Role)
	if err != nil {
		http.Error(w, "Error generating token", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// GetProfile retrieves the authenticated user's profile
func (uc *UserController) GetProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		http.Error(w, "Could not parse user from context", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var user models.User
	if err := uc.Collection.FindOne(ctx, bson.M{"email": claims.Email}).Decode(&user); err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
