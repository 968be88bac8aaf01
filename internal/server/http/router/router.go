package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/yinshi/foodcourt/internal/server/http/handlers"
	"github.com/yinshi/foodcourt/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.CourtFacade, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	authHandler := handlers.NewAuthHandler(facade)
	orderHandler := handlers.NewOrderHandler(facade)
	cartHandler := handlers.NewCartHandler(facade)
	tradeHandler := handlers.NewTradeHandler(facade)
	callbackHandler := handlers.NewCallbackHandler(facade)

	api := engine.Group("/api")
	api.POST("/payment/callback", callbackHandler.Handle)

	user := api.Group("/user")
	user.POST("/register", authHandler.Register)
	user.POST("/login", authHandler.Login)

	userAuth := user.Group("")
	userAuth.Use(middleware.AuthRequired(facade))
	userAuth.POST("/orders", orderHandler.Create)
	userAuth.GET("/orders", orderHandler.List)
	userAuth.GET("/orders/:orders_id", orderHandler.Get)
	userAuth.GET("/orders/:orders_id/suborders", orderHandler.SubOrders)
	userAuth.GET("/orders/:orders_id/trades", tradeHandler.List)
	userAuth.POST("/cart", cartHandler.Add)
	userAuth.GET("/cart", cartHandler.List)
	userAuth.PUT("/cart/:dish_id", cartHandler.Update)
	userAuth.DELETE("/cart/:dish_id", cartHandler.Remove)

	return engine
}
