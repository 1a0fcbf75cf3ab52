package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/graceauto/catalogue/internal/editor"
	"github.com/graceauto/catalogue/internal/store"
)

// SettingsEditor is the mutation API the settings handler needs.
type SettingsEditor interface {
	UpdateSettings(ctx context.Context, patch editor.Patch) (editor.PersistStatus, error)
}

// SettingsController handles the business settings endpoints.
type SettingsController struct {
	store  store.Reader
	editor SettingsEditor
}

func NewSettingsController(st store.Reader, ed SettingsEditor) *SettingsController {
	return &SettingsController{store: st, editor: ed}
}

// Get handles GET /api/settings.
func (sc *SettingsController) Get(c *gin.Context) {
	c.JSON(http.StatusOK, sc.store.Settings())
}

// Update handles PUT /api/settings. The patch is shallow-merged; a
// businessHours object in the patch replaces the stored one entirely.
func (sc *SettingsController) Update(c *gin.Context) {
	var patch editor.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid patch"})
		return
	}

	status, err := sc.editor.UpdateSettings(c.Request.Context(), patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": sc.store.Settings(), "status": status})
}
