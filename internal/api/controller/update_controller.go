package controller

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/graceauto/catalogue/internal/logger"
	"github.com/graceauto/catalogue/internal/repository"
)

// DocumentSink is what the legacy endpoint needs to install a saved document
// into the running process.
type DocumentSink interface {
	Replace(doc repository.Document) error
}

// updateRequest is the legacy persistence contract: a full document plus an
// action tag.
type updateRequest struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

type updateResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Backupper persists documents and copies the stored file to the backup
// location.
type Backupper interface {
	repository.Saver
	Backup(ctx context.Context) error
}

// updateController implements the legacy persistence endpoint. The contract
// predates this server: every reply is HTTP 200 with a {success, message}
// body, including failures, so existing admin clients keep working.
type updateController struct {
	repo Backupper
	sink DocumentSink
}

// NewUpdateController creates the legacy endpoint handler.
func NewUpdateController(repo Backupper, sink DocumentSink) gin.HandlerFunc {
	uc := &updateController{repo: repo, sink: sink}
	return uc.Handle
}

// Handle processes POST /api/update. Any other method answers the contract's
// "method not allowed" body.
func (uc *updateController) Handle(c *gin.Context) {
	log := logger.WithComponent("update-endpoint")

	if c.Request.Method != http.MethodPost {
		c.JSON(http.StatusOK, updateResponse{Success: false, Message: "Méthode non autorisée"})
		return
	}

	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Debugf("bad request body: %v", err)
		c.JSON(http.StatusOK, updateResponse{Success: false, Message: "Requête invalide"})
		return
	}

	switch req.Action {
	case "save":
		if len(req.Data) == 0 || string(req.Data) == "null" {
			c.JSON(http.StatusOK, updateResponse{Success: false, Message: "Données manquantes"})
			return
		}

		var doc repository.Document
		if err := json.Unmarshal(req.Data, &doc); err != nil {
			log.Debugf("undecodable document: %v", err)
			c.JSON(http.StatusOK, updateResponse{Success: false, Message: "Données invalides"})
			return
		}
		doc.ApplyDefaults()

		// Save copies the previous file to the backup location first.
		if err := uc.repo.Save(c.Request.Context(), &doc); err != nil {
			log.Errorf("save failed: %v", err)
			c.JSON(http.StatusOK, updateResponse{Success: false, Message: "Échec de la sauvegarde"})
			return
		}
		if err := uc.sink.Replace(doc); err != nil {
			log.Errorf("replace after save failed: %v", err)
		}
		c.JSON(http.StatusOK, updateResponse{Success: true, Message: "Données sauvegardées"})

	case "backup":
		if err := uc.repo.Backup(c.Request.Context()); err != nil {
			log.Errorf("backup failed: %v", err)
			c.JSON(http.StatusOK, updateResponse{Success: false, Message: "Échec de la sauvegarde"})
			return
		}
		c.JSON(http.StatusOK, updateResponse{Success: true, Message: "Sauvegarde créée"})

	default:
		c.JSON(http.StatusOK, updateResponse{Success: false, Message: "Action non reconnue"})
	}
}
