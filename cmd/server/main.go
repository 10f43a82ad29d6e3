package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"volunteerhub/config"
	_ "volunteerhub/docs"
	authadapter "volunteerhub/internal/adapters/auth"
	"volunteerhub/internal/adapters/email"
	delivery "volunteerhub/internal/delivery/http"
	"volunteerhub/internal/delivery/http/controllers"
	"volunteerhub/internal/delivery/http/middleware"
	"volunteerhub/internal/realtime"
	"volunteerhub/internal/repository/postgres"
	"volunteerhub/internal/services"
)

// @title VolunteerHub API
// @version 1.0
// @description Volunteer event management API: events, registrations, posts, chat, and notifications.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Exit(1)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("ping database", "err", err)
		os.Exit(1)
	}

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	managerRepo := postgres.NewEventManagerRepository(db)
	registrationRepo := postgres.NewRegistrationRepository(db)
	likeRepo := postgres.NewLikeRepository(db)
	postRepo := postgres.NewPostRepository(db)
	channelRepo := postgres.NewChannelRepository(db)
	messageRepo := postgres.NewMessageRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)

	// Adapters
	hasher := authadapter.NewBcryptHasher(authadapter.DefaultBcryptCost)
	codec := authadapter.NewJWTCodec(cfg.JWTSecret)
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.MailerType,
		FromAddress: cfg.MailerFrom,
		FromName:    "VolunteerHub",
		SES: email.SESConfig{
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSKeyID,
			SecretAccessKey: cfg.AWSSecret,
		},
	})
	if err != nil {
		logger.Error("create mailer", "err", err)
		os.Exit(1)
	}
	renderer := email.NewTemplateRenderer()

	// Realtime hub
	hub := realtime.NewHub(logger)
	hub.Start()
	defer hub.Stop()

	// Services
	notificationService := services.NewNotificationService(notificationRepo, hub, mailer, renderer, logger)
	authService := services.NewAuthService(userRepo, hasher, codec, codec, cfg.AccessExpiry, cfg.RefreshExpiry)
	userService := services.NewUserService(userRepo)
	eventService := services.NewEventService(eventRepo, managerRepo, userRepo, notificationService, nil)
	registrationService := services.NewRegistrationService(eventRepo, registrationRepo, managerRepo, userRepo, notificationService, nil)
	likeService := services.NewLikeService(likeRepo)
	postService := services.NewPostService(postRepo, userRepo)
	chatService := services.NewChatService(channelRepo, messageRepo, hub)

	// Controllers
	mux := delivery.NewRouter(delivery.Controllers{
		Auth:          controllers.NewAuthController(logger, authService, cfg.RefreshExpiry, cfg.CookieSecure),
		Users:         controllers.NewUserController(logger, userService),
		Events:        controllers.NewEventController(logger, eventService, likeService),
		Registrations: controllers.NewRegistrationController(logger, registrationService),
		Posts:         controllers.NewPostController(logger, postService, likeService),
		Chat:          controllers.NewChatController(logger, chatService, hub),
		Notifications: controllers.NewNotificationController(logger, notificationService),
		Admin:         controllers.NewAdminController(logger, userService, eventService),
	}, codec)

	handler := middleware.CORS(cfg.CORSAllowedOrigins, middleware.LoggingMiddleware(logger, mux))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown", "err", err)
	}
}
