package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"rageroom-backend/config"
	"rageroom-backend/metrics"
	"rageroom-backend/routes"
	"rageroom-backend/services"
)

func main() {
	// Load .env (optional)
	if err := godotenv.Load(); err != nil {
		log.Println(".env not found or couldn't load it; continuing with environment variables")
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	settings, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger := config.NewLogger(os.Stdout, settings.Logging)
	level := config.ParseLevel(settings.Logging.Level)
	if level > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.ConnectDatabase(settings.Database, level)
	if err != nil {
		logger.Error("database connect failed", "err", err)
		os.Exit(1)
	}
	logger.Info("database connection established and migrations applied")

	var cache services.RoomInfoCache
	if settings.Redis.Address != "" {
		client := services.NewRedisClient(settings.Redis.Address, settings.Redis.Password, settings.Redis.DB)
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := services.PingRedis(pingCtx, client)
		cancel()
		if err != nil {
			logger.Warn("redis unavailable; room info will not be cached", "err", err)
		} else {
			cache = services.NewRedisRoomInfoCache(client, settings.Redis.CacheTTL)
			defer client.Close()
		}
	}

	if settings.Metrics.Enabled {
		metrics.Register()
	}

	hub := services.NewEventHub(logger)
	go hub.Run()
	defer hub.Stop()

	admins := services.NewAdminPolicy(settings.Auth.AdminEmails)
	tokens := services.NewTokenIssuer(settings.Auth.JWTSecret, settings.Auth.TokenTTL)
	authService := services.NewAuthService(db, tokens, admins, logger)
	if err := authService.EnsureAdmins(context.Background(), settings.Auth.AdminSeedPassword); err != nil {
		logger.Error("admin seeding failed", "err", err)
		os.Exit(1)
	}

	var mailer services.MailSender = services.LogMailer{Logger: logger}
	if settings.SMTP.Enabled() {
		mailer = settings.SMTP
	}
	go services.NewAdminNotifier(mailer, admins.Emails(), logger).Run(hub)

	rule := services.AdmissionRule{
		Slots:           settings.Booking.TimeSlots,
		DailyCapacity:   settings.Booking.DailyCapacity,
		AutoApproveFree: settings.Booking.AutoApproveFree,
	}
	bookingService := services.NewBookingService(services.NewGormBookingStore(db), rule, settings.Booking.OwnerDelete, hub, logger)
	roomInfoService := services.NewRoomInfoService(db, cache, services.NewImageStore(settings.UploadDir), logger)

	router := routes.SetupRouter(routes.Dependencies{
		DB:             db,
		Logger:         logger,
		CORSOrigins:    settings.CORSOrigins,
		MetricsEnabled: settings.Metrics.Enabled,
		AuthRateLimit:  settings.Auth.RateLimit,
		AuthRateBurst:  settings.Auth.RateBurst,
		Auth:           authService,
		Bookings:       bookingService,
		RoomInfo:       roomInfoService,
		Receipts:       services.NewReceiptService(settings.WhatsAppNumber),
		Events:         hub,
		WhatsAppNumber: settings.WhatsAppNumber,
		UploadDir:      settings.UploadDir,
	})

	addr := ":" + settings.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", addr,
			"slots", settings.Booking.TimeSlots, "daily_capacity", settings.Booking.DailyCapacity)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listen failed", "err", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with timeout
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("shutdown signal received, shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "err", err)
		return
	}

	logger.Info("server stopped gracefully")
}
