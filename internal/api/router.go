package api

import (
	"database/sql"
	"net/http"
)

// RouterConfig carries the settings the API needs beyond the database.
type RouterConfig struct {
	JWTSecret      string
	StartingPoints int
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: cfg.JWTSecret, StartingPoints: cfg.StartingPoints}
	usersHandler := &UsersHandler{DB: db}
	itemsHandler := &ItemsHandler{DB: db}
	swapsHandler := &SwapsHandler{DB: db}

	authMW := AuthMiddleware(db, cfg.JWTSecret)

	// Public: account creation, login, and browsing listings.
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/items", itemsHandler.List)
	mux.HandleFunc("GET /api/items/{id}", itemsHandler.Get)

	// Authenticated routes.
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("GET /api/users/me", authMW(http.HandlerFunc(usersHandler.Me)))

	// Listings.
	mux.Handle("POST /api/items", authMW(http.HandlerFunc(itemsHandler.Create)))
	mux.Handle("PUT /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Update)))
	mux.Handle("DELETE /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Delete)))

	// Swaps.
	mux.Handle("GET /api/swaps", authMW(http.HandlerFunc(swapsHandler.List)))
	mux.Handle("POST /api/swaps", authMW(http.HandlerFunc(swapsHandler.Create)))
	mux.Handle("GET /api/swaps/{id}", authMW(http.HandlerFunc(swapsHandler.Get)))
	mux.Handle("POST /api/swaps/{id}/accept", authMW(http.HandlerFunc(swapsHandler.Accept)))
	mux.Handle("POST /api/swaps/{id}/decline", authMW(http.HandlerFunc(swapsHandler.Decline)))
	mux.Handle("POST /api/swaps/{id}/cancel", authMW(http.HandlerFunc(swapsHandler.Cancel)))

	// User administration (admin only).
	mux.Handle("GET /api/users", authMW(RequireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("GET /api/users/{id}", authMW(RequireAdmin(http.HandlerFunc(usersHandler.Get))))
	mux.Handle("PUT /api/users/{id}/points", authMW(RequireAdmin(http.HandlerFunc(usersHandler.SetPoints))))
	mux.Handle("DELETE /api/users/{id}", authMW(RequireAdmin(http.HandlerFunc(usersHandler.Delete))))

	return mux
}
