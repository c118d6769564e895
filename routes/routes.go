// routes/routes.go
package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"go-storefront/controllers"
	"go-storefront/middleware"
	"go-storefront/models"
	"go-storefront/utils"
)

// Handlers groups the controllers mounted by RegisterRoutes.
type Handlers struct {
	Users        *controllers.UserController
	Products     *controllers.ProductController
	Brands       *controllers.CatalogController[models.Brand]
	Categories   *controllers.CatalogController[models.Category]
	Certificates *controllers.CatalogController[models.Certificate]
	Contacts     *controllers.ContactController
	Settings     *controllers.SettingsController
	Cart         *controllers.CartController
	Orders       *controllers.OrderController
	Docs         *controllers.DocsController
}

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(router *mux.Router, h Handlers, tokens middleware.TokenParser, logger *zap.Logger) {
	router.Use(middleware.RequestLogger(logger))
	auth := middleware.Auth(tokens)
	authed := func(f http.HandlerFunc) http.Handler { return auth(f) }

	// Public routes
	router.HandleFunc("/register", h.Users.Register).Methods(http.MethodPost)
	router.HandleFunc("/login", h.Users.Login).Methods(http.MethodPost)
	router.HandleFunc("/verify", h.Users.VerifyEmail).Methods(http.MethodGet)
	router.HandleFunc("/docs", h.Docs.GetDocs).Methods(http.MethodGet)

	// Storefront catalog
	router.HandleFunc("/products", h.Products.GetProducts).Methods(http.MethodGet)
	router.HandleFunc("/products/{id:[0-9]+}", h.Products.GetProductByID).Methods(http.MethodGet)
	router.HandleFunc("/brands", h.Brands.List).Methods(http.MethodGet)
	router.HandleFunc("/categories", h.Categories.List).Methods(http.MethodGet)
	router.HandleFunc("/certificates", h.Certificates.List).Methods(http.MethodGet)
	router.HandleFunc("/settings", h.Settings.GetSettings).Methods(http.MethodGet)
	router.HandleFunc("/contacts", h.Contacts.SubmitContact).Methods(http.MethodPost)

	// Protected routes
	router.Handle("/profile", authed(h.Users.GetProfile)).Methods(http.MethodGet)
	router.Handle("/orders", authed(h.Orders.GetOrders)).Methods(http.MethodGet)
	router.Handle("/order", middleware.Session(authed(h.Orders.CreateOrder))).Methods(http.MethodPost)

	// Session cart
	cart := router.PathPrefix("/cart").Subrouter()
	cart.Use(middleware.Session)
	cart.HandleFunc("", h.Cart.GetCart).Methods(http.MethodGet)
	cart.HandleFunc("", h.Cart.ClearCart).Methods(http.MethodDelete)
	cart.HandleFunc("/items", h.Cart.AddItem).Methods(http.MethodPost)
	cart.HandleFunc("/items/{id:[0-9]+}", h.Cart.UpdateItem).Methods(http.MethodPatch)
	cart.HandleFunc("/items/{id:[0-9]+}", h.Cart.RemoveItem).Methods(http.MethodDelete)
	cart.HandleFunc("/session", h.Cart.EndSession).Methods(http.MethodDelete)

	// Back office
	admin := router.PathPrefix("/admin").Subrouter()
	admin.Use(auth, middleware.RequireRole(utils.RoleAdmin))
	admin.HandleFunc("/products", h.Products.CreateProduct).Methods(http.MethodPost)
	admin.HandleFunc("/products/{id:[0-9]+}", h.Products.UpdateProduct).Methods(http.MethodPut)
	admin.HandleFunc("/products/{id:[0-9]+}", h.Products.DeleteProduct).Methods(http.MethodDelete)
	for path, c := range map[string]catalogRoutes{
		"/brands":       h.Brands,
		"/categories":   h.Categories,
		"/certificates": h.Certificates,
	} {
		admin.HandleFunc(path, c.Create).Methods(http.MethodPost)
		admin.HandleFunc(path+"/{id}", c.Update).Methods(http.MethodPut)
		admin.HandleFunc(path+"/{id}", c.Delete).Methods(http.MethodDelete)
	}
	admin.HandleFunc("/contacts", h.Contacts.ListContacts).Methods(http.MethodGet)
	admin.HandleFunc("/contacts/{id}", h.Contacts.DeleteContact).Methods(http.MethodDelete)
	admin.HandleFunc("/settings", h.Settings.UpdateSettings).Methods(http.MethodPut)
	admin.HandleFunc("/orders/{id}", h.Orders.UpdateOrderPaymentStatus).Methods(http.MethodPut)
}

type catalogRoutes interface {
	Create(http.ResponseWriter, *http.Request)
	Update(http.ResponseWriter, *http.Request)
	Delete(http.ResponseWriter, *http.Request)
}
