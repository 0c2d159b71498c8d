// Package stubapi is a local stand-in for the remote legal-practice auth
// API. It mirrors the production endpoints and response envelopes closely
// enough to run the client SDK end to end in development and in tests; it
// is not a production authentication service.
package stubapi

import (
	"net"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/advocaid/auth-client/internal/configs"
	"github.com/advocaid/auth-client/pkg/mail"
)

const (
	accessTokenTTL = 24 * time.Hour
	otpTTL         = 5 * time.Minute
	resetTokenTTL  = 15 * time.Minute
)

type App struct {
	cfg    *configs.Config
	users  *UserStore
	cache  CacheService
	mailer mail.Mailer
	fiber  *fiber.App
}

func New(cfg *configs.Config, users *UserStore, cache CacheService, mailer mail.Mailer) *App {
	a := &App{
		cfg:    cfg,
		users:  users,
		cache:  cache,
		mailer: mailer,
	}

	app := fiber.New(fiber.Config{
		AppName:               "advocaid-stub-api",
		DisableStartupMessage: true,
	})

	// The client primes CSRF relative to its API base, which may or may
	// not include the /api prefix; answer on both.
	app.Get("/sanctum/csrf-cookie", a.handleCSRFCookie)
	app.Get("/api/sanctum/csrf-cookie", a.handleCSRFCookie)

	users_ := app.Group("/api/users")
	users_.Post("/create", a.handleRegister)
	users_.Post("/login", a.handleLogin)
	users_.Post("/otp/send", a.handleSendOTP)
	users_.Post("/otp/verify", a.handleVerifyOTP)
	users_.Post("/password/forgot", a.handleForgotPassword)
	users_.Post("/password/reset", a.handleResetPassword)

	authed := users_.Group("", a.requireAuth)
	authed.Post("/logout", a.handleLogout)
	authed.Get("/user", a.handleCurrentUser)
	authed.Post("/update/upi", a.handleUpdateUpi)

	a.fiber = app
	return a
}

func (a *App) Listen(addr string) error {
	return a.fiber.Listen(addr)
}

// Listener serves on an already-bound listener; the e2e tests use it with
// a random localhost port.
func (a *App) Listener(ln net.Listener) error {
	return a.fiber.Listener(ln)
}

func (a *App) Shutdown() error {
	return a.fiber.Shutdown()
}

func (a *App) handleCSRFCookie(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     "XSRF-TOKEN",
		Value:    uuid.NewString(),
		Path:     "/",
		HTTPOnly: false,
	})
	return c.SendStatus(fiber.StatusNoContent)
}
