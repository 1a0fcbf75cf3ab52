package route

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/graceauto/catalogue/internal/api/controller"
	"github.com/graceauto/catalogue/internal/api/middleware"
	"github.com/graceauto/catalogue/internal/app"
)

// NewUpdateRouter wires the legacy persistence endpoint. All HTTP methods are
// routed into the handler because the contract answers non-POST requests
// with its own "method not allowed" body instead of a 405.
//
// In manual-sync mode there is no server save path, so the endpoint is not
// registered and clients fall back to the download flow.
func NewUpdateRouter(appCtx *app.App, group *gin.RouterGroup) {
	if appCtx.Config.Data.ManualSync {
		group.Any("update", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"success": false, "message": "Sauvegarde serveur indisponible"})
		})
		return
	}

	handler := controller.NewUpdateController(appCtx.Repo, appCtx.Store)
	timeoutMiddleware := middleware.RequestTimeout(appCtx.Config.Server.RequestTimeout)

	group.Any("update", timeoutMiddleware, handler)
}
