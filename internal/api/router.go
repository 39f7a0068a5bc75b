package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"school-resource-backend/config"
	"school-resource-backend/internal/mw"
	"school-resource-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(s store.Store, sessions SessionManager, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, sessions)

	if len(cfg.CORS.AllowOrigins) > 0 {
		corsCfg := cors.DefaultConfig()
		corsCfg.AllowOrigins = cfg.CORS.AllowOrigins
		corsCfg.AllowCredentials = true
		corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
		r.Use(cors.New(corsCfg))
	}

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)

	// Cached reads expire on their own; no invalidation on writes.
	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	authed := mw.AuthRequired(sessions, s.DB())
	adminOnly := mw.AdminOnly()

	r.GET("/healthz", handler.Health)

	api := r.Group("/api")
	api.Use(rateLimiter)

	api.POST("/auth/login", handler.Login)
	api.POST("/auth/logout", authed, handler.Logout)
	api.GET("/auth/whoami", authed, handler.Whoami)

	users := api.Group("/users", authed)
	{
		users.POST("", adminOnly, handler.CreateUser)
		users.GET("", handler.ListUsers)
		users.GET("/:id", handler.GetUser)
		users.PUT("/:id", handler.UpdateUser)
		users.DELETE("/:id", adminOnly, handler.DeleteUser)
	}

	requests := api.Group("/resources/requests", authed)
	{
		requests.POST("", handler.CreateRequest)
		requests.GET("", handler.ListRequests)
		requests.GET("/recent", handler.RecentRequests)
		requests.GET("/:id", handler.GetRequest)
		requests.PUT("/:id", handler.UpdateRequest)
		requests.DELETE("/:id", handler.DeleteRequest)
	}

	labs := api.Group("/labs", authed)
	{
		labs.POST("", handler.CreateLab)
		labs.GET("", handler.ListLabs)
		labs.GET("/available", handler.AvailableLabs)

		labs.POST("/bookings", handler.CreateBooking)
		labs.GET("/bookings", handler.ListBookings)
		labs.GET("/bookings/recent", handler.RecentBookings)
		labs.GET("/bookings/:id", handler.GetBooking)
		labs.PUT("/bookings/:id", handler.UpdateBooking)
		labs.DELETE("/bookings/:id", handler.DeleteBooking)

		labs.GET("/:id", handler.GetLab)
		labs.PUT("/:id", handler.UpdateLab)
		labs.DELETE("/:id", handler.DeleteLab)
	}

	items := api.Group("/store", authed)
	{
		items.POST("", handler.CreateItem)
		items.GET("", handler.ListItems)
		items.GET("/low-stock", handler.LowStockItems)
		items.GET("/:id", handler.GetItem)
		items.PUT("/:id", handler.UpdateItem)
		items.DELETE("/:id", handler.DeleteItem)
	}

	library := api.Group("/library", authed)
	{
		library.POST("/books", handler.CreateBook)
		library.GET("/books", handler.ListBooks)
		library.GET("/books/:id", handler.GetBook)
		library.PUT("/books/:id", handler.UpdateBook)
		library.DELETE("/books/:id", handler.DeleteBook)

		library.POST("/borrows", handler.CreateBorrow)
		library.GET("/borrows", handler.ListBorrows)
		library.GET("/borrows/active", handler.ActiveBorrows)
		library.GET("/borrows/:id", handler.GetBorrow)
		library.POST("/borrows/:id/return", handler.ReturnBorrow)
	}

	admin := api.Group("/admin", authed, adminOnly)
	{
		admin.GET("/stats", caching, handler.AdminStats)
	}

	return r
}
