package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
	"github.com/joho/godotenv"
	"github.com/zasious/supermarketMVC/internal/config"
	"github.com/zasious/supermarketMVC/internal/handlers"
	"github.com/zasious/supermarketMVC/internal/store"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// .env is optional; real env vars win either way.
	godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	db, err := store.NewStore(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize store", "error", err)
		os.Exit(1)
	}
	if err := db.Migrate(cfg.MigrationsDir); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		slog.Error("Failed to create upload directory", "error", err)
		os.Exit(1)
	}

	sessionStore := sessions.NewCookieStore(cfg.SessionKey)
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.Secure = cfg.CookieSecure
	sessionStore.Options.SameSite = http.SameSiteLaxMode
	sessionStore.Options.Path = "/"
	sessionStore.Options.MaxAge = 3600 // 1 hour
	if cfg.CookieDomain != "" {
		sessionStore.Options.Domain = cfg.CookieDomain
	}

	templates := handlers.NewTemplateCache()
	if err := templates.Load(cfg.TemplatesDir); err != nil {
		slog.Error("Failed to load templates", "error", err)
		os.Exit(1)
	}

	gate := &handlers.Gate{SessionStore: sessionStore}
	authHandler := &handlers.AuthHandler{
		Store:        db,
		Templates:    templates,
		SessionStore: sessionStore,
	}
	shopHandler := &handlers.ShopHandler{
		Store:        db,
		Templates:    templates,
		SessionStore: sessionStore,
	}
	cartHandler := &handlers.CartHandler{
		Store:        db,
		Templates:    templates,
		SessionStore: sessionStore,
	}
	orderHandler := &handlers.OrderHandler{
		Store:        db,
		Templates:    templates,
		SessionStore: sessionStore,
	}
	adminHandler := &handlers.AdminHandler{
		Store:        db,
		Templates:    templates,
		SessionStore: sessionStore,
		UploadDir:    cfg.UploadDir,
	}

	mux := http.NewServeMux()

	// Static Files
	fileServer := http.FileServer(http.Dir("./static"))
	mux.Handle("/static/", http.StripPrefix("/static", fileServer))

	// Public Routes
	mux.HandleFunc("/", authHandler.Home)
	mux.HandleFunc("GET /login", authHandler.LoginGet)
	mux.HandleFunc("POST /login", authHandler.LoginPost)
	mux.HandleFunc("GET /register", authHandler.RegisterGet)
	mux.HandleFunc("POST /register", authHandler.RegisterPost)
	mux.HandleFunc("GET /logout", authHandler.Logout)

	// Shopping (authenticated)
	mux.HandleFunc("GET /shopping", gate.RequireAuth(shopHandler.Shopping))
	mux.HandleFunc("GET /product/{id}", gate.RequireAuth(shopHandler.ProductDetail))

	// Cart (authenticated)
	mux.HandleFunc("GET /cart", gate.RequireAuth(cartHandler.View))
	mux.HandleFunc("POST /cart/add", gate.RequireAuth(cartHandler.Add))
	mux.HandleFunc("POST /cart/update", gate.RequireAuth(cartHandler.Update))
	mux.HandleFunc("POST /cart/remove", gate.RequireAuth(cartHandler.Remove))
	mux.HandleFunc("POST /cart/clear", gate.RequireAuth(cartHandler.Clear))
	mux.HandleFunc("POST /cart/checkout", gate.RequireAuth(cartHandler.Checkout))

	// Orders (authenticated, ownership-scoped)
	mux.HandleFunc("GET /orders", gate.RequireAuth(orderHandler.List))
	mux.HandleFunc("GET /orders/{id}", gate.RequireAuth(orderHandler.Detail))
	mux.HandleFunc("POST /orders/{id}/reviews", gate.RequireAuth(orderHandler.AddReview))

	// Inventory management (admin)
	mux.HandleFunc("GET /inventory", gate.RequireAuth(gate.RequireAdmin(adminHandler.Inventory)))
	mux.HandleFunc("GET /products/add", gate.RequireAuth(gate.RequireAdmin(adminHandler.AddProductForm)))
	mux.HandleFunc("POST /products/add", gate.RequireAuth(gate.RequireAdmin(adminHandler.CreateProduct)))
	mux.HandleFunc("GET /products/update/{id}", gate.RequireAuth(gate.RequireAdmin(adminHandler.UpdateProductForm)))
	mux.HandleFunc("POST /products/update/{id}", gate.RequireAuth(gate.RequireAdmin(adminHandler.UpdateProduct)))
	mux.HandleFunc("POST /products/delete/{id}", gate.RequireAuth(gate.RequireAdmin(adminHandler.DeleteProduct)))

	// Admin back-office
	mux.HandleFunc("GET /admin/dashboard", gate.RequireAuth(gate.RequireAdmin(adminHandler.Dashboard)))
	mux.HandleFunc("GET /admin/orders", gate.RequireAuth(gate.RequireAdmin(adminHandler.ListOrders)))
	mux.HandleFunc("GET /admin/users", gate.RequireAuth(gate.RequireAdmin(adminHandler.ListUsers)))
	mux.HandleFunc("POST /admin/users/{id}/delete", gate.RequireAuth(gate.RequireAdmin(adminHandler.DeleteUser)))

	CSRF := csrf.Protect(
		cfg.CSRFKey,
		csrf.Secure(cfg.CookieSecure),
		csrf.TrustedOrigins([]string{"localhost:" + cfg.Port, "127.0.0.1:" + cfg.Port, "localhost", "127.0.0.1"}),
	)

	// Chain: Logger -> Security Headers -> CSRF -> Mux
	handler := handlers.LoggingMiddleware(
		handlers.SecurityHeadersMiddleware(
			CSRF(mux),
		),
	)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to listen and serve", "error", err)
			os.Exit(1)
		}
	}()

	<-stop

	slog.Info("Shutting down server gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Server exited gracefully.")
}
