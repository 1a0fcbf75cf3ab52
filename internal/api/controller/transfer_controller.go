package controller

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/graceauto/catalogue/internal/editor"
	"github.com/graceauto/catalogue/internal/logger"
	"github.com/graceauto/catalogue/internal/repository"
)

// TransferEditor is the export/import API the transfer handlers need.
type TransferEditor interface {
	Export(ctx context.Context) (repository.Document, error)
	Import(ctx context.Context, raw []byte) (editor.PersistStatus, error)
	Pending() (repository.Document, bool)
	ManualMode() bool
}

// TransferController handles whole-document export and import, plus the
// manual-sync status the admin panel polls in degraded mode.
type TransferController struct {
	editor TransferEditor
}

func NewTransferController(ed TransferEditor) *TransferController {
	return &TransferController{editor: ed}
}

// Export handles GET /api/export - the document as a dated attachment, the
// same file an operator installs by hand in manual-sync mode.
func (tc *TransferController) Export(c *gin.Context) {
	doc, err := tc.editor.Export(c.Request.Context())
	if err != nil {
		logger.WithComponent("transfer-controller").Errorf("export failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}

	filename := fmt.Sprintf("donnees-%s.json", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.JSON(http.StatusOK, doc)
}

// Import handles POST /api/import. The body replaces the stored document
// wholesale; the admin panel confirms with the operator before calling.
func (tc *TransferController) Import(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	status, err := tc.editor.Import(c.Request.Context(), raw)
	if err != nil {
		writeError(c, err)
		return
	}
	logger.WithComponent("transfer-controller").Info("document imported")
	c.JSON(http.StatusOK, gin.H{"status": status})
}

// SyncStatus handles GET /api/sync - whether the editor runs in manual-sync
// mode and whether a staged document still awaits installation.
func (tc *TransferController) SyncStatus(c *gin.Context) {
	_, pending := tc.editor.Pending()
	c.JSON(http.StatusOK, gin.H{
		"manualMode":  tc.editor.ManualMode(),
		"pendingSync": pending,
	})
}
