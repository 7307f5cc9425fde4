package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/bg-remover/internal/http/handlers"
	"github.com/phambaophuc/bg-remover/internal/http/middleware"
	"go.uber.org/zap"
)

type Router struct {
	imageHandler   *handlers.ImageHandler
	serviceHandler *handlers.ServiceHandler
	logger         *zap.Logger
}

func NewRouter(
	imageHandler *handlers.ImageHandler,
	serviceHandler *handlers.ServiceHandler,
	logger *zap.Logger,
) *Router {
	return &Router{
		imageHandler:   imageHandler,
		serviceHandler: serviceHandler,
		logger:         logger,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(r.logger))
	router.Use(middleware.ErrorHandler(r.logger))
	router.Use(middleware.CORS())
	router.Use(middleware.SecurityHeaders())

	router.GET("/", r.serviceHandler.Home)
	router.GET("/health", r.serviceHandler.HealthCheck)

	remove := router.Group("/remove")
	{
		remove.POST("", middleware.ValidateContentType(handlers.MsgNoImage, gin.MIMEMultipartPOSTForm, gin.MIMEJSON), r.imageHandler.RemoveBackground)
		remove.POST("/batch", r.imageHandler.BatchRemove)
	}

	router.GET("/download/:id", r.imageHandler.Download)

	return router
}
