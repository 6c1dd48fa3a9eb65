package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-ordering/controllers"
	"github.com/yeremiapane/restaurant-ordering/middlewares"
	"github.com/yeremiapane/restaurant-ordering/models"
	"github.com/yeremiapane/restaurant-ordering/services"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

type Options struct {
	CORSOrigins       []string
	RateLimitRequests int
	RateLimitInterval time.Duration
}

func SetupRouter(deps services.Deps, tokens *utils.TokenIssuer, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(opts.CORSOrigins))

	if opts.RateLimitRequests <= 0 {
		opts.RateLimitRequests = 120
	}
	if opts.RateLimitInterval <= 0 {
		opts.RateLimitInterval = time.Minute
	}
	limiter := middlewares.NewRateLimiter(opts.RateLimitRequests, opts.RateLimitInterval)

	sessionCtrl := controllers.NewSessionController(services.NewSessionService(deps))
	cartCtrl := controllers.NewCartController(services.NewCartService(deps))
	tableCtrl := controllers.NewTableController(services.NewTableCartService(deps))
	orderCtrl := controllers.NewOrderController(services.NewOrderService(deps))
	adminCtrl := controllers.NewAdminController(services.NewSettlementService(deps))
	notifCtrl := controllers.NewNotificationController(services.NewNotificationService(deps))
	userCtrl := controllers.NewUserController(deps.DB, tokens)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Rate limiter untuk login
	login := r.Group("/")
	login.Use(middlewares.NewStrictRateLimiter().RateLimit())
	{
		login.POST("/login", userCtrl.Login)
	}

	// ----------------------------------------------------------------
	//                      DINER ROUTES (no auth)
	// ----------------------------------------------------------------
	public := r.Group("/")
	public.Use(limiter.RateLimit())
	{
		tables := public.Group("/restaurants/:restaurant_id/tables/:table_id")
		tables.POST("/sessions", sessionCtrl.CreateSession)
		tables.POST("/orders", orderCtrl.CreateOrder)
		tables.GET("/cart", tableCtrl.GetTableCart)
		tables.POST("/cart", tableCtrl.AddToTableCart)
		tables.DELETE("/cart", tableCtrl.ClearTableCart)

		sessions := public.Group("/sessions/:session_id")
		sessions.GET("", sessionCtrl.GetSession)
		sessions.POST("/bill-request", sessionCtrl.RequestBill)
		sessions.DELETE("/bill-request", sessionCtrl.CancelBillRequest)
		sessions.GET("/cart", cartCtrl.GetCart)
		sessions.POST("/cart", cartCtrl.AddToCart)
		sessions.DELETE("/cart", cartCtrl.ClearCart)
	}

	// ----------------------------------------------------------------
	//                      STAFF ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/admin")
	auth.Use(middlewares.AuthMiddleware(tokens))
	auth.Use(middlewares.RequireRoles(models.RoleAdmin, models.RoleStaff))
	auth.Use(middlewares.StaffAuditLogger())
	{
		auth.GET("/profile", userCtrl.GetProfile)

		auth.GET("/orders/:order_id", orderCtrl.GetOrderByID)
		auth.PATCH("/orders/:order_id/status", orderCtrl.UpdateOrderStatus)

		restaurant := auth.Group("/restaurants/:restaurant_id")
		restaurant.GET("/notifications", notifCtrl.GetAllNotifications)
		restaurant.GET("/sessions/:session_id/orders", orderCtrl.ListSessionOrders)
		restaurant.POST("/sessions/:session_id/settle", adminCtrl.SettleBill)
	}

	return r
}
