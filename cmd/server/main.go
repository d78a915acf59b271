package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"events-marketplace-web/internal/config"
	"events-marketplace-web/internal/handlers"
	"events-marketplace-web/internal/middleware"
	"events-marketplace-web/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Create session store
	sessionStore := sessions.NewCookieStore([]byte(cfg.Session.Secret))

	// Configure session options
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   false, // Set to true in production with HTTPS
		SameSite: http.SameSiteLaxMode,
	}

	// Marketplace API clients
	catalog := services.NewCatalogService(cfg.API.BaseURL)
	promoAPI := services.NewPromoService(cfg.API.BaseURL)
	orders := services.NewOrderClient(cfg.API.BaseURL)
	identity := services.NewIdentityClient(cfg.API.BaseURL)

	// Card tokenization
	gateway := services.NewStripeGateway(cfg.Stripe.SecretKey)
	if !gateway.Ready() {
		log.Println("Warning: Stripe secret key not configured, card payments disabled")
	}

	checkoutService := services.NewCheckoutService(catalog, orders, promoAPI, identity, gateway, cfg.Checkout.SuccessDelay)

	// Handlers
	bookingHandler := handlers.NewBookingHandler(catalog, sessionStore)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService, sessionStore)
	authHandler := handlers.NewAuthHandler(sessionStore)

	authMiddleware := middleware.NewAuthMiddleware(sessionStore)
	promoLimiter := middleware.NewRateLimiter(10, time.Minute)

	r := chi.NewRouter()

	r.Use(middleware.LoggingMiddleware)
	r.Use(middleware.ErrorHandlingMiddleware)
	r.Use(middleware.SecurityHeaders)
	r.Use(authMiddleware.LoadAuthToken)

	// Static assets
	fileServer := http.FileServer(http.Dir("web/static"))
	r.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	// Auth
	r.Get("/login", authHandler.LoginPage)
	r.Get("/auth/callback", authHandler.Callback)
	r.Post("/auth/logout", authHandler.Logout)

	// Event page and ticket selection
	r.Get("/events/{id}", bookingHandler.EventPage)
	r.Post("/events/{id}/selection", bookingHandler.AdjustSelection)
	r.Post("/events/{id}/book", bookingHandler.CommitSelection)

	// Checkout
	r.Route("/checkout/{id}", func(r chi.Router) {
		r.Use(authMiddleware.RequireAuth)
		r.Get("/", checkoutHandler.CheckoutPage)
		r.With(promoLimiter.Limit).Post("/promo", checkoutHandler.ApplyPromo)
		r.Post("/promo/remove", checkoutHandler.RemovePromo)
		r.Post("/pay", checkoutHandler.Pay)
		r.Post("/back", checkoutHandler.BackAttempt)
		r.Post("/exit", checkoutHandler.Exit)
		r.Get("/confirmation", checkoutHandler.Confirmation)
	})

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on http://%s", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal("Server failed to start:", err)
	}
}
