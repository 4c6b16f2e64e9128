package http

import (
	"net/http"
	"os"

	"github.com/atinyakov/SecureTalk/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs the relay's HTTP handler.
//
// Routes:
//
//	POST /register  → authHandler.Register
//	POST /login     → authHandler.Login
//	POST /storekey  → keyHandler.StoreKey
//	POST /getkey    → keyHandler.GetKey
//	POST /send      → msgHandler.Send
//	POST /receive   → msgHandler.Receive
//	GET  /*         → files under staticDir, when it exists
//
// Every route gets a request ID, the real client IP, request logging and
// panic recovery. The API routes accept JSON or form-encoded bodies only.
func NewRouter(
	authHandler *AuthHandler,
	keyHandler *KeyHandler,
	msgHandler *MessageHandler,
	staticDir string,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(chiMiddleware.Recoverer)

	r.Group(func(r chi.Router) {
		r.Use(chiMiddleware.AllowContentType("application/json", "application/x-www-form-urlencoded"))

		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/storekey", keyHandler.StoreKey)
		r.Post("/getkey", keyHandler.GetKey)
		r.Post("/send", msgHandler.Send)
		r.Post("/receive", msgHandler.Receive)
	})

	if staticDir != "" {
		if fi, err := os.Stat(staticDir); err == nil && fi.IsDir() {
			r.Handle("/*", http.FileServer(http.Dir(staticDir)))
		} else {
			logger.Warn("static directory not served", zap.String("dir", staticDir))
		}
	}

	return r
}
