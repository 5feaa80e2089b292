package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"rageroom-backend/controllers"
	"rageroom-backend/metrics"
	"rageroom-backend/middleware"
	"rageroom-backend/services"
)

// Dependencies is everything the router wires into handlers.
type Dependencies struct {
	DB             *gorm.DB
	Logger         *slog.Logger
	CORSOrigins    []string
	MetricsEnabled bool
	AuthRateLimit  int
	AuthRateBurst  int

	Auth     *services.AuthService
	Bookings *services.BookingService
	RoomInfo *services.RoomInfoService
	Receipts *services.ReceiptService
	Events   *services.EventHub

	WhatsAppNumber string
	UploadDir      string
}

func corsOrigins(raw []string) []string {
	if len(raw) == 0 {
		return []string{"*"}
	}
	return raw
}

func SetupRouter(d Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(d.Logger))
	if d.MetricsEnabled {
		r.Use(middleware.Metrics())
	}

	origins := corsOrigins(d.CORSOrigins)
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	if d.UploadDir != "" {
		r.Static("/uploads", d.UploadDir)
	}

	r.GET("/health", func(c *gin.Context) {
		sqlDB, err := d.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if d.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	bc := controllers.NewBookingController(d.Bookings, d.RoomInfo, d.Receipts, d.WhatsAppNumber)
	ric := controllers.NewRoomInfoController(d.RoomInfo)
	ac := controllers.NewAuthController(d.Auth)
	ec := controllers.NewEventsController(d.Events, d.Logger)
	requireAuth := middleware.Authenticate(d.Auth)
	limiter := middleware.NewRateLimiter(d.AuthRateLimit, d.AuthRateBurst)

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/signup", limiter.Limit(), ac.Signup)
			auth.POST("/login", limiter.Limit(), ac.Login)
			auth.GET("/me", requireAuth, ac.Me)
		}

		api.GET("/slots", bc.GetSlots)
		api.GET("/room-info", ric.GetRoomInfo)
		api.PATCH("/room-info", requireAuth, ric.UpdateRoomInfo)

		bookings := api.Group("/bookings", requireAuth)
		{
			bookings.GET("", bc.GetBookings)
			bookings.POST("", bc.CreateBooking)

			// static paths before /:id
			bookings.GET("/availability", bc.GetAvailability)
			bookings.GET("/export", bc.ExportBookings)
			bookings.GET("/events", ec.Stream)

			bookings.GET("/:id", bc.GetBooking)
			bookings.PATCH("/:id", bc.UpdateBookingStatus)
			bookings.DELETE("/:id", bc.DeleteBooking)
			bookings.GET("/:id/whatsapp", bc.GetWhatsAppLink)
			bookings.GET("/:id/receipt", bc.GetReceipt)
		}
	}

	return r
}
