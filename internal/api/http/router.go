package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/XAKEP-CMEPTU/Coldfire-Site/internal/api/http/handlers"
	"github.com/XAKEP-CMEPTU/Coldfire-Site/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Chats          *handlers.ChatsHandler
	Users          *handlers.UsersHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	authProtected := authGroup.Group("", cfg.AuthMiddleware.Handle)
	authProtected.Get("/me", cfg.Auth.Me)
	authProtected.Post("/logout", cfg.Auth.Logout)
	authProtected.Patch("/profile", cfg.Auth.UpdateProfile)

	chats := app.Group("/chats", cfg.AuthMiddleware.Handle)
	chats.Get("/", cfg.Chats.ListChats)
	chats.Post("/", cfg.Chats.CreateChat)
	chats.Get("/:id", cfg.Chats.GetChat)
	chats.Post("/:id/messages", cfg.Chats.PostMessage)
	chats.Patch("/:id", cfg.Chats.UpdateChat)

	users := app.Group("/users", cfg.AuthMiddleware.Handle)
	users.Get("/", auth.RequireAdmin(), cfg.Users.ListUsers)
	users.Get("/:username", cfg.Users.GetUser)
	users.Post("/:username/ban", auth.RequireStaff(), cfg.Users.Ban)
	users.Post("/:username/unban", auth.RequireStaff(), cfg.Users.Unban)
	users.Post("/:username/mute", auth.RequireStaff(), cfg.Users.Mute)
	users.Post("/:username/unmute", auth.RequireStaff(), cfg.Users.Unmute)
	users.Post("/:username/warn", auth.RequireStaff(), cfg.Users.Warn)
	users.Patch("/:username/role", auth.RequireAdmin(), cfg.Users.ChangeRole)
}
