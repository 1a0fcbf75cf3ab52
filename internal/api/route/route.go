package route

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/graceauto/catalogue/internal/api/middleware"
	"github.com/graceauto/catalogue/internal/app"
)

// SetupRoutes builds the gin engine with all middleware and resource routes.
func SetupRoutes(appCtx *app.App, log *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.HoneybadgerMiddleware(log))
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware(appCtx.Config.Server.AllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "UP",
		})
	})

	api := r.Group("/api")

	NewUpdateRouter(appCtx, api)
	NewCatalogRouter(appCtx, api)
	NewListingRouter(appCtx, api)
	NewReservationRouter(appCtx, api)
	NewSettingsRouter(appCtx, api)
	NewTransferRouter(appCtx, api)

	return r
}
