// Package router contains routing setup for the HTTP delivery.
package router

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"stampcard/internal/delivery/http/middleware"
	"stampcard/internal/delivery/http/router/handler"
	"stampcard/internal/domain/entity"
)

// RouterParams holds the handlers and middlewares injected by Fx.
type RouterParams struct {
	fx.In

	UserHandler     *handler.UserHandler
	QRHandler       *handler.QRHandler
	ScanHandler     *handler.ScanHandler
	ClientHandler   *handler.ClientHandler
	BusinessHandler *handler.BusinessHandler
	AuthMiddleware  *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	userHandler     *handler.UserHandler
	qrHandler       *handler.QRHandler
	scanHandler     *handler.ScanHandler
	clientHandler   *handler.ClientHandler
	businessHandler *handler.BusinessHandler
	authMiddleware  *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		userHandler:     params.UserHandler,
		qrHandler:       params.QRHandler,
		scanHandler:     params.ScanHandler,
		clientHandler:   params.ClientHandler,
		businessHandler: params.BusinessHandler,
		authMiddleware:  params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Auth routes
	authGroup := e.Group("/auth")
	{
		authGroup.POST("/register", r.userHandler.Register)
		authGroup.POST("/login", r.userHandler.Login)
	}

	// Profile routes
	meGroup := e.Group("/me")
	meGroup.Use(r.authMiddleware.Authenticate)
	{
		meGroup.GET("", r.userHandler.GetProfile)
		meGroup.PATCH("", r.userHandler.UpdateProfile)
	}

	// QR code routes
	qrGroup := e.Group("/qr")
	qrGroup.Use(r.authMiddleware.Authenticate)
	{
		qrGroup.POST("/generate", r.qrHandler.Generate)
		qrGroup.GET("/me", r.qrHandler.GetOwn)
		qrGroup.GET("/me/image", r.qrHandler.GetOwnImage)
		qrGroup.GET("/resolve/:code", r.qrHandler.ResolveCode)
	}

	// Scan routes, the role pair decides the action
	scanGroup := e.Group("/scan")
	scanGroup.Use(r.authMiddleware.Authenticate)
	{
		scanGroup.POST("", r.scanHandler.ProcessScan)
		scanGroup.POST("/subscribe", r.scanHandler.Subscribe)
		scanGroup.POST("/subscribe/code", r.scanHandler.SubscribeByCode)
		scanGroup.POST("/stamps", r.scanHandler.GrantStamps)
		scanGroup.POST("/stamps/code", r.scanHandler.GrantStampsByCode)
	}

	// Subscriptions from the caller's side of the relation
	subsGroup := e.Group("/subscriptions")
	subsGroup.Use(r.authMiddleware.Authenticate)
	{
		subsGroup.GET("", r.clientHandler.ListSubscriptions)
	}

	// Client loyalty routes
	clientGroup := e.Group("/client")
	clientGroup.Use(r.authMiddleware.Authenticate)
	{
		clientGroup.GET("/card", r.clientHandler.GetCard)
		clientGroup.GET("/stamps", r.clientHandler.GetStamps)
		clientGroup.POST("/redeem", r.clientHandler.Redeem)
	}

	// Business routes require the "business" role
	businessGroup := e.Group("/business")
	businessGroup.Use(r.authMiddleware.Authenticate)
	businessGroup.Use(r.authMiddleware.RequireRole(string(entity.RoleBusiness)))
	{
		businessGroup.GET("/rewards", r.businessHandler.ListRewards)
		businessGroup.POST("/rewards", r.businessHandler.CreateReward)
		businessGroup.PATCH("/rewards/:id", r.businessHandler.UpdateReward)
		businessGroup.DELETE("/rewards/:id", r.businessHandler.DeleteReward)
		businessGroup.GET("/stamps", r.businessHandler.StampHistory)
		businessGroup.GET("/subscribers", r.businessHandler.ListSubscribers)
		businessGroup.GET("/redemptions", r.businessHandler.ListRedemptions)
	}
}
