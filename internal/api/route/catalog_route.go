package route

import (
	"github.com/gin-gonic/gin"

	"github.com/graceauto/catalogue/internal/api/controller"
	"github.com/graceauto/catalogue/internal/api/middleware"
	"github.com/graceauto/catalogue/internal/app"
)

// NewCatalogRouter wires the read-only catalog endpoints.
func NewCatalogRouter(appCtx *app.App, group *gin.RouterGroup) {
	cc := controller.NewCatalogController(appCtx.Store)
	timeoutMiddleware := middleware.RequestTimeout(appCtx.Config.Server.RequestTimeout)

	group.GET("data", timeoutMiddleware, cc.Document)
	group.GET("vehicules", timeoutMiddleware, cc.Vehicules)
	group.GET("locations", timeoutMiddleware, cc.Locations)
	group.GET("residences", timeoutMiddleware, cc.Residences)
	group.GET("items", timeoutMiddleware, cc.Items)
	group.GET("items/:id", timeoutMiddleware, cc.ItemByID)
	group.GET("stats", timeoutMiddleware, cc.Stats)
}

// NewListingRouter wires the listing mutation endpoints.
func NewListingRouter(appCtx *app.App, group *gin.RouterGroup) {
	lc := controller.NewListingController(appCtx.Editor)
	timeoutMiddleware := middleware.RequestTimeout(appCtx.Config.Server.RequestTimeout)

	group.POST("listings/:kind", timeoutMiddleware, lc.Create)
	group.PATCH("listings/:kind/:id", timeoutMiddleware, lc.UpdateListing)
	group.DELETE("listings/:kind/:id", timeoutMiddleware, lc.DeleteListing)
	group.PATCH("items/:id", timeoutMiddleware, lc.UpdateItem)
	group.DELETE("items/:id", timeoutMiddleware, lc.DeleteItem)
}

// NewReservationRouter wires the reservation endpoints.
func NewReservationRouter(appCtx *app.App, group *gin.RouterGroup) {
	rc := controller.NewReservationController(appCtx.Store, appCtx.Editor)
	timeoutMiddleware := middleware.RequestTimeout(appCtx.Config.Server.RequestTimeout)

	group.GET("reservations", timeoutMiddleware, rc.List)
	group.POST("reservations", timeoutMiddleware, rc.Create)
	group.PUT("reservations/:id/statut", timeoutMiddleware, rc.UpdateStatus)
}

// NewSettingsRouter wires the settings endpoints.
func NewSettingsRouter(appCtx *app.App, group *gin.RouterGroup) {
	sc := controller.NewSettingsController(appCtx.Store, appCtx.Editor)
	timeoutMiddleware := middleware.RequestTimeout(appCtx.Config.Server.RequestTimeout)

	group.GET("settings", timeoutMiddleware, sc.Get)
	group.PUT("settings", timeoutMiddleware, sc.Update)
}

// NewTransferRouter wires export/import and the manual-sync status endpoint.
func NewTransferRouter(appCtx *app.App, group *gin.RouterGroup) {
	tc := controller.NewTransferController(appCtx.Editor)
	timeoutMiddleware := middleware.RequestTimeout(appCtx.Config.Server.RequestTimeout)

	group.GET("export", timeoutMiddleware, tc.Export)
	group.POST("import", timeoutMiddleware, tc.Import)
	group.GET("sync", timeoutMiddleware, tc.SyncStatus)
}
