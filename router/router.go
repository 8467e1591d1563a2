package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yeremiapane/demeter/config"
	"github.com/yeremiapane/demeter/controllers"
	"github.com/yeremiapane/demeter/kds"
	"github.com/yeremiapane/demeter/locker"
	"github.com/yeremiapane/demeter/middlewares"
	"github.com/yeremiapane/demeter/models"
	"github.com/yeremiapane/demeter/services"
	"github.com/yeremiapane/demeter/utils"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// Options wires the router. Only DB is required; nil fields get in-process defaults.
type Options struct {
	DB       *gorm.DB
	Hub      *kds.Hub
	Locks    locker.Locker
	Notifier services.Notifier // extra event sink next to the KDS hub, e.g. the kitchen queue
	Tokens   *utils.TokenManager
	Clock    clockwork.Clock

	AllowedOrigins     []string
	RateLimit          float64
	RateBurst          int
	LoginRatePerMinute int
	DeskLockWait       time.Duration
}

func (o *Options) defaults() {
	if o.Hub == nil {
		o.Hub = kds.NewHub()
	}
	if o.Locks == nil {
		o.Locks = locker.NewLocal()
	}
	if o.Tokens == nil {
		o.Tokens = utils.NewTokenManager(config.DefaultJWTSecret, 12*time.Hour)
	}
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	if len(o.AllowedOrigins) == 0 {
		o.AllowedOrigins = []string{"http://localhost:3000"}
	}
	if o.RateLimit <= 0 {
		o.RateLimit = 50
	}
	if o.RateBurst <= 0 {
		o.RateBurst = 100
	}
	if o.LoginRatePerMinute <= 0 {
		o.LoginRatePerMinute = 5
	}
}

func SetupRouter(opts Options) *gin.Engine {
	opts.defaults()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(opts.AllowedOrigins))
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.NewRateLimiter(rate.Limit(opts.RateLimit), opts.RateBurst).RateLimit())

	notifier := services.Notifiers{opts.Hub, opts.Notifier}
	desks := services.NewDeskRegistry(opts.DB, notifier)
	sessions := services.NewSessionManager(opts.DB, desks, opts.Locks, opts.Clock, notifier)
	if opts.DeskLockWait > 0 {
		sessions.LockWait = opts.DeskLockWait
	}
	requests := services.NewRequestWorkflow(opts.DB, notifier)
	catalog := services.NewCatalog(opts.DB)
	menu := services.NewMenuService(opts.DB, notifier)
	staff := services.NewStaffService(opts.DB)

	// controllers
	userCtrl := controllers.NewUserController(staff, opts.Tokens)
	deskCtrl := controllers.NewDeskController(desks, sessions)
	sessionCtrl := controllers.NewSessionController(sessions)
	requestCtrl := controllers.NewRequestController(requests)
	dishCtrl := controllers.NewDishController(catalog, menu)
	speciesCtrl := controllers.NewSpeciesController(menu)
	dinerCtrl := controllers.NewDinerController(desks, requests)
	kdsCtrl := controllers.NewKDSController(opts.Hub)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	login := r.Group("/")
	login.Use(middlewares.NewStrictRateLimiter(opts.LoginRatePerMinute).RateLimit())
	{
		login.POST("/login", userCtrl.Login)
	}

	r.GET("/dishes", dishCtrl.GetAllDishes)
	r.GET("/dishes/:dish_id", dishCtrl.GetDish)
	r.GET("/species", speciesCtrl.GetAllSpecies)
	r.GET("/species/:species_id", speciesCtrl.GetSpecies)

	// -- DINER (desk token from the QR code) --
	diner := r.Group("/diner/:token")
	{
		diner.GET("", dinerCtrl.GetDesk)
		diner.GET("/requests", dinerCtrl.GetRequests)
		diner.POST("/requests", dinerCtrl.CreateRequest)
	}

	// ----------------------------------------------------------------
	//                      STAFF ROUTES
	// ----------------------------------------------------------------
	staffGroup := r.Group("/staff")
	staffGroup.Use(middlewares.AuthMiddleware(opts.Tokens))
	staffGroup.Use(middlewares.RoleCheck(models.RoleStaff, models.RoleChef, models.RoleAdmin))
	{
		staffGroup.GET("/me", userCtrl.Me)
		staffGroup.POST("/logout", userCtrl.Logout)

		// DESKS & SESSIONS
		staffGroup.GET("/desks", deskCtrl.GetAllDesks)
		staffGroup.GET("/desks/:desk", deskCtrl.GetDesk)
		staffGroup.POST("/desks/:desk/session", sessionCtrl.StartSession)
		staffGroup.DELETE("/desks/:desk/session", sessionCtrl.EndSessionByDesk)
		staffGroup.POST("/desks/:desk/move", sessionCtrl.MoveSessionByDesk)

		staffGroup.GET("/sessions", sessionCtrl.GetAllSessions)
		staffGroup.GET("/sessions/:session_id", sessionCtrl.GetSession)
		staffGroup.POST("/sessions/:session_id/end", sessionCtrl.EndSession)
		staffGroup.POST("/sessions/:session_id/move", sessionCtrl.MoveSession)
		staffGroup.GET("/sessions/:session_id/requests", sessionCtrl.GetSessionRequests)
		staffGroup.POST("/sessions/:session_id/requests", requestCtrl.CreateRequest)

		// REQUESTS & KITCHEN
		staffGroup.GET("/requests", requestCtrl.GetRequests)
		staffGroup.GET("/requests/:request_id", requestCtrl.GetRequest)
		staffGroup.PUT("/requests/:request_id", requestCtrl.EditRequest)
		staffGroup.POST("/requests/:request_id/advance", requestCtrl.AdvanceRequest)
		staffGroup.DELETE("/requests/:request_id", requestCtrl.DeleteRequest)

		staffGroup.GET("/kds/ws", kdsCtrl.KDSHandler)
	}

	// ----------------------------------------------------------------
	//                      ADMIN ROUTES
	// ----------------------------------------------------------------
	admin := r.Group("/admin")
	admin.Use(middlewares.AuthMiddleware(opts.Tokens))
	admin.Use(middlewares.RoleCheck(models.RoleAdmin))
	{
		admin.POST("/staff", userCtrl.Register)

		admin.POST("/desks", deskCtrl.CreateDesk)
		admin.DELETE("/desks/:desk", deskCtrl.DeleteDesk)

		admin.POST("/dishes", dishCtrl.CreateDish)
		admin.POST("/dishes/import", dishCtrl.ImportDishes)
		admin.PUT("/dishes/:dish_id", dishCtrl.UpdateDish)
		admin.DELETE("/dishes/:dish_id", dishCtrl.DeleteDish)

		admin.POST("/species", speciesCtrl.CreateSpecies)
		admin.PUT("/species/:species_id", speciesCtrl.UpdateSpecies)
		admin.DELETE("/species/:species_id", speciesCtrl.DeleteSpecies)
	}

	return r
}
