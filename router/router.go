package router

import (
	"net/http"

	"github.com/AlexHayrapetyan/RestoBook/config"
	"github.com/AlexHayrapetyan/RestoBook/controllers"
	"github.com/AlexHayrapetyan/RestoBook/middlewares"
	"github.com/AlexHayrapetyan/RestoBook/models"
	"github.com/AlexHayrapetyan/RestoBook/services"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// SetupRouter -> semua route HTTP. rdb boleh nil (rate limit lokal).
func SetupRouter(svcs *services.Services, cfg *config.Config, rdb *redis.Client, gatherer prometheus.Gatherer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// Apply security middlewares
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(cfg.CORSOrigin))
	if cfg.RateLimit.Enabled {
		r.Use(middlewares.NewRateLimiter(cfg.RateLimit, rdb).RateLimit())
	}

	// Inisialisasi controller
	userCtrl := controllers.NewUserController(svcs.Accounts)
	tableCtrl := controllers.NewTableController(svcs.Tables)
	reservationCtrl := controllers.NewReservationController(svcs.Booking)
	contactCtrl := controllers.NewContactController(svcs.Inquiries)
	notificationCtrl := controllers.NewNotificationController(svcs.Notifier)
	adminCtrl := controllers.NewAdminController(svcs)
	hubCtrl := controllers.NewHubController(svcs.Hub, cfg.CORSOrigin)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	// Rate limiter untuk login/signup
	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter(rdb))
	{
		public.POST("/signup", userCtrl.Signup)
		public.POST("/login", userCtrl.Login)
	}

	r.GET("/tables", tableCtrl.GetAllTables)
	r.GET("/tables/:table_id", tableCtrl.GetTableByID)
	r.GET("/tables/:table_id/availability", tableCtrl.CheckAvailability)

	r.POST("/contacting", contactCtrl.Contacting)
	r.POST("/contactingResto", contactCtrl.ContactingResto)

	// Floor view staff, token lewat query
	r.GET("/ws", middlewares.WebSocketAuthMiddleware(), hubCtrl.Handle)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/")
	auth.Use(middlewares.AuthMiddleware())
	{
		auth.POST("/logout", userCtrl.Logout)
		auth.GET("/profile", userCtrl.GetProfile)

		auth.POST("/reservations", reservationCtrl.CreateReservation)
		auth.GET("/reservations", reservationCtrl.GetMyReservations)
		auth.POST("/reservations/reminder", notificationCtrl.SendReminder)
	}

	// ----------------------------------------------------------------
	//                      STAFF ROUTES
	// ----------------------------------------------------------------
	admin := r.Group("/admin")
	admin.Use(middlewares.AuthMiddleware(), middlewares.RequireRole(models.RoleStaff))
	{
		admin.GET("/dashboard", adminCtrl.GetDashboardStats)
		admin.POST("/tables", tableCtrl.CreateTable)
		admin.PATCH("/tables/:table_id", tableCtrl.UpdateTableStatus)
		admin.POST("/reservations/:reservation_id/complete", reservationCtrl.CompleteReservation)
		admin.POST("/sweep", adminCtrl.RunSweep)
		admin.GET("/notifications", adminCtrl.GetNotifications)
	}

	return r
}
