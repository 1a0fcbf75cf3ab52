package controller

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/graceauto/catalogue/internal/editor"
	"github.com/graceauto/catalogue/internal/logger"
	"github.com/graceauto/catalogue/internal/repository"
	"github.com/graceauto/catalogue/internal/store"
)

// ReservationEditor is the mutation API the reservation handlers need.
type ReservationEditor interface {
	AddReservation(ctx context.Context, payload repository.Reservation) (repository.Reservation, editor.PersistStatus, error)
	UpdateReservationStatus(ctx context.Context, id int, statut string) (editor.PersistStatus, error)
}

// ReservationController handles reservation endpoints: creation comes from
// the public site, status changes from the admin panel.
type ReservationController struct {
	store  store.Reader
	editor ReservationEditor
}

// NewReservationController creates a controller over the reader and editor.
func NewReservationController(st store.Reader, ed ReservationEditor) *ReservationController {
	return &ReservationController{store: st, editor: ed}
}

// List handles GET /api/reservations.
func (rc *ReservationController) List(c *gin.Context) {
	c.JSON(http.StatusOK, rc.store.Reservations())
}

// Create handles POST /api/reservations. Statut and dateReservation are
// assigned server-side whatever the payload says.
func (rc *ReservationController) Create(c *gin.Context) {
	var payload repository.Reservation
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	created, status, err := rc.editor.AddReservation(c.Request.Context(), payload)
	if err != nil {
		writeError(c, err)
		return
	}
	logger.WithComponent("reservation-controller").Infof("reservation %d created for item %d", created.ID, created.ItemID)
	c.JSON(http.StatusCreated, gin.H{"reservation": created, "status": status})
}

type statusRequest struct {
	Statut string `json:"statut" binding:"required"`
}

// UpdateStatus handles PUT /api/reservations/:id/statut.
func (rc *ReservationController) UpdateStatus(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reservation id"})
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "statut is required"})
		return
	}

	status, err := rc.editor.UpdateReservationStatus(c.Request.Context(), id, req.Statut)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}
