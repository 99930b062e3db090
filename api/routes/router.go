package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/luciagrant/mercadito-backend/api/controllers"
	"github.com/luciagrant/mercadito-backend/api/middleware"
	cartsvc "github.com/luciagrant/mercadito-backend/internal/cart"
	"github.com/luciagrant/mercadito-backend/internal/catalog"
	collectionsvc "github.com/luciagrant/mercadito-backend/internal/collections"
	"github.com/luciagrant/mercadito-backend/internal/settlement"
	usersvc "github.com/luciagrant/mercadito-backend/internal/users"
	"github.com/luciagrant/mercadito-backend/internal/whatsapp"
	"github.com/luciagrant/mercadito-backend/pkg/config"
	"github.com/luciagrant/mercadito-backend/pkg/enums"
	"github.com/luciagrant/mercadito-backend/pkg/logger"
	"github.com/luciagrant/mercadito-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient *redis.Client,
	catalogService catalog.Service,
	collectionsService collectionsvc.Service,
	cartService cartsvc.Service,
	usersService usersvc.Service,
	settlementService *settlement.Service,
	whatsappBuilder *whatsapp.Builder,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, redisClient, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.Idempotency(redisClient, logg))
				r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.Register(usersService, logg))
			})
			r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.Login(usersService, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(catalogService, logg))
			r.Get("/{slug}", controllers.GetProductBySlug(catalogService, logg))
		})
		r.Route("/collections", func(r chi.Router) {
			r.Get("/", controllers.ListCollections(collectionsService, logg))
			r.Get("/{slug}", controllers.GetCollectionBySlug(collectionsService, logg))
		})

		// Checkout works for guests; a bearer token attaches the order to
		// the account.
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(cfg.JWT, logg))
			r.Use(middleware.Idempotency(redisClient, logg))
			r.Post("/checkout", controllers.Checkout(settlementService, cartService, whatsappBuilder, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.Idempotency(redisClient, logg))
			r.Get("/", controllers.ListCart(cartService, logg))
			r.Delete("/", controllers.ClearCart(cartService, logg))
			r.Post("/items", controllers.AddCartItem(cartService, logg))
			r.Patch("/items/{itemID}", controllers.UpdateCartItem(cartService, logg))
			r.Delete("/items/{itemID}", controllers.RemoveCartItem(cartService, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(string(enums.UserRoleAdmin), logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.AdminListProducts(catalogService, logg))
			r.Post("/", controllers.AdminCreateProduct(catalogService, logg))
			r.Put("/{productID}", controllers.AdminUpdateProduct(catalogService, logg))
			r.Delete("/{productID}", controllers.AdminDeleteProduct(catalogService, logg))
		})
		r.Route("/collections", func(r chi.Router) {
			r.Post("/", controllers.AdminCreateCollection(collectionsService, logg))
			r.Put("/{collectionID}", controllers.AdminUpdateCollection(collectionsService, logg))
			r.Delete("/{collectionID}", controllers.AdminDeleteCollection(collectionsService, logg))
		})
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminListOrders(settlementService, logg))
			r.Post("/", controllers.AdminCreateOrder(settlementService, whatsappBuilder, logg))
			r.Get("/number/{orderNumber}", controllers.AdminGetOrderByNumber(settlementService, logg))
			r.Get("/{orderID}", controllers.AdminGetOrder(settlementService, logg))
			r.Post("/{orderID}/mark-paid", controllers.AdminMarkOrderPaid(settlementService, logg))
			r.Post("/{orderID}/cancel", controllers.AdminCancelOrder(settlementService, logg))
			r.Post("/{orderID}/status", controllers.AdminChangeOrderStatus(settlementService, logg))
			r.Patch("/{orderID}/shipping-cost", controllers.AdminUpdateShippingCost(settlementService, logg))
			r.Delete("/{orderID}", controllers.AdminDeleteOrder(settlementService, logg))
		})
	})

	return r
}
