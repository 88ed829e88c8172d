package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-notes-api/internal/application/auth"
	"github.com/go-notes-api/internal/application/note"
	"github.com/go-notes-api/internal/application/user"
	"github.com/go-notes-api/internal/config"
	"github.com/go-notes-api/internal/transport/http/handler"
	appmiddleware "github.com/go-notes-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10 — applied to the public auth endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	authSvc := auth.NewService(auth.ServiceDeps{
		UserRepo:    deps.UserRepo,
		OTPStore:    deps.OTPStore,
		Mailer:      deps.Mailer,
		JWTProvider: deps.JWTProvider,
		OTPValidity: cfg.OTPValidity,
		OTPCooldown: cfg.OTPCooldown,
		SendTimeout: cfg.SMTPSendTimeout,
	})
	noteSvc := note.NewService(deps.NoteRepo)
	userSvc := user.NewService(deps.UserRepo, deps.NoteRepo)

	// Cookie lifetime tracks the token lifetime the provider was built with.
	authH := handler.NewAuthHandler(authSvc, cfg.AppEnv == "production", deps.JWTProvider.Expiry())
	noteH := handler.NewNoteHandler(noteSvc)
	userH := handler.NewUserHandler(userSvc)
	healthH := handler.NewHealthHandler()

	// ── Public routes (no auth) ──────────────────────────────────────────
	r.Get("/health-check/{action}", healthH.Ping)

	r.Route("/auth", func(r chi.Router) {
		r.Use(sensitiveRL.Limit)
		r.Post("/send-otp", authH.SendOTP)
		r.Post("/signup", authH.Signup)
		r.Post("/verify-otp", authH.VerifyOTP)
	})

	// ── Authenticated routes ─────────────────────────────────────────────
	r.Group(func(r chi.Router) {
		r.Use(appmiddleware.Auth(deps.JWTProvider))

		r.Get("/user", userH.Profile)
		r.Post("/notes/create", noteH.Create)
		r.Delete("/notes/delete", noteH.Delete)
	})

	return r
}
