package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"volunteerhub/internal/delivery/http/controllers"
	"volunteerhub/internal/delivery/http/middleware"
	"volunteerhub/internal/domain"
)

// Controllers bundles every controller the router mounts.
type Controllers struct {
	Auth          *controllers.AuthController
	Users         *controllers.UserController
	Events        *controllers.EventController
	Registrations *controllers.RegistrationController
	Posts         *controllers.PostController
	Chat          *controllers.ChatController
	Notifications *controllers.NotificationController
	Admin         *controllers.AdminController
}

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(c Controllers, verifier domain.TokenVerifier) *http.ServeMux {
	mux := http.NewServeMux()

	auth := middleware.RequireAuth(verifier)
	manager := middleware.RequireRole(domain.RoleManager, domain.RoleAdmin)
	admin := middleware.RequireRole(domain.RoleAdmin)

	// Auth
	mux.HandleFunc("POST /auth/signup", c.Auth.SignUp)
	mux.HandleFunc("POST /auth/login", c.Auth.Login)
	mux.HandleFunc("POST /auth/refresh", c.Auth.Refresh)
	mux.HandleFunc("POST /auth/logout", c.Auth.Logout)

	// Profile
	mux.HandleFunc("GET /users/me", auth(c.Users.Me))
	mux.HandleFunc("PUT /users/me", auth(c.Users.UpdateMe))
	mux.HandleFunc("GET /users/me/events", auth(c.Events.ListMine))
	mux.HandleFunc("GET /users/me/registrations", auth(c.Registrations.ListMine))
	mux.HandleFunc("GET /users/me/history", auth(c.Registrations.History))

	// Events
	mux.HandleFunc("GET /events", c.Events.List)
	mux.HandleFunc("GET /events/{eventID}", c.Events.Get)
	mux.HandleFunc("POST /events", auth(manager(c.Events.Create)))
	mux.HandleFunc("PUT /events/{eventID}", auth(c.Events.Update))
	mux.HandleFunc("DELETE /events/{eventID}", auth(c.Events.Delete))
	mux.HandleFunc("POST /events/{eventID}/cancel", auth(c.Events.Cancel))
	mux.HandleFunc("POST /events/{eventID}/like", auth(c.Events.ToggleLike))

	// Co-managers
	mux.HandleFunc("GET /events/{eventID}/managers", auth(c.Events.ListManagers))
	mux.HandleFunc("POST /events/{eventID}/managers", auth(c.Events.AddManager))
	mux.HandleFunc("DELETE /events/{eventID}/managers/{userID}", auth(c.Events.RemoveManager))

	// Registrations (participant side)
	mux.HandleFunc("POST /events/{eventID}/registrations", auth(c.Registrations.Join))
	mux.HandleFunc("DELETE /events/{eventID}/registrations", auth(c.Registrations.Leave))

	// Registrations (manager side)
	mux.HandleFunc("GET /manage/events/{eventID}/registrations", auth(c.Registrations.ListForEvent))
	mux.HandleFunc("POST /manage/events/{eventID}/registrations/{userID}/approve", auth(c.Registrations.Approve))
	mux.HandleFunc("POST /manage/events/{eventID}/registrations/{userID}/reject", auth(c.Registrations.Reject))
	mux.HandleFunc("POST /manage/events/{eventID}/registrations/{userID}/completion", auth(c.Registrations.MarkCompletion))

	// Posts
	mux.HandleFunc("GET /posts", c.Posts.List)
	mux.HandleFunc("GET /posts/{postID}", c.Posts.Get)
	mux.HandleFunc("POST /posts", auth(c.Posts.Create))
	mux.HandleFunc("PUT /posts/{postID}", auth(c.Posts.Update))
	mux.HandleFunc("DELETE /posts/{postID}", auth(c.Posts.Delete))
	mux.HandleFunc("POST /posts/{postID}/like", auth(c.Posts.ToggleLike))

	// Chat
	mux.HandleFunc("GET /channels", auth(c.Chat.ListChannels))
	mux.HandleFunc("POST /channels", auth(manager(c.Chat.CreateChannel)))
	mux.HandleFunc("GET /channels/{channelID}/messages", auth(c.Chat.ListMessages))
	mux.HandleFunc("POST /channels/{channelID}/messages", auth(c.Chat.PostMessage))
	mux.HandleFunc("GET /channels/{channelID}/ws", auth(c.Chat.Stream))

	// Notifications
	mux.HandleFunc("GET /notifications", auth(c.Notifications.List))
	mux.HandleFunc("POST /notifications/{notificationID}/read", auth(c.Notifications.MarkRead))
	mux.HandleFunc("GET /notifications/ws", auth(c.Chat.NotificationStream))

	// Admin
	mux.HandleFunc("GET /admin/users", auth(admin(c.Admin.ListUsers)))
	mux.HandleFunc("POST /admin/users/{userID}/ban", auth(admin(c.Admin.BanUser)))
	mux.HandleFunc("POST /admin/users/{userID}/unban", auth(admin(c.Admin.UnbanUser)))
	mux.HandleFunc("GET /admin/events/pending", auth(admin(c.Admin.ListPendingEvents)))
	mux.HandleFunc("POST /admin/events/{eventID}/approve", auth(admin(c.Admin.ApproveEvent)))
	mux.HandleFunc("POST /admin/events/{eventID}/reject", auth(admin(c.Admin.RejectEvent)))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
