package controller

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/graceauto/catalogue/internal/editor"
	"github.com/graceauto/catalogue/internal/logger"
	"github.com/graceauto/catalogue/internal/repository"
)

// ListingEditor is the mutation API the listing handlers need.
type ListingEditor interface {
	AddListing(ctx context.Context, kind repository.Kind, payload repository.Listing) (repository.Listing, editor.PersistStatus, error)
	UpdateItem(ctx context.Context, id int, patch editor.Patch) (editor.PersistStatus, error)
	UpdateListing(ctx context.Context, kind repository.Kind, id int, patch editor.Patch) (editor.PersistStatus, error)
	DeleteItem(ctx context.Context, id int) (editor.PersistStatus, error)
	DeleteListing(ctx context.Context, kind repository.Kind, id int) (editor.PersistStatus, error)
}

// ListingController handles listing create/update/delete endpoints.
type ListingController struct {
	editor ListingEditor
}

// NewListingController creates a controller over the given editor.
func NewListingController(ed ListingEditor) *ListingController {
	return &ListingController{editor: ed}
}

// Create handles POST /api/listings/:kind.
func (lc *ListingController) Create(c *gin.Context) {
	kind := repository.Kind(c.Param("kind"))
	logger.WithComponent("listing-controller").Debugf("POST /listings/%s handler called", kind)

	var payload repository.Listing
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	created, status, err := lc.editor.AddListing(c.Request.Context(), kind, payload)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"listing": created, "status": status})
}

// UpdateItem handles PATCH /api/items/:id - the id-only path. Vehicles are
// searched before residences, so a collided id patches the vehicle.
func (lc *ListingController) UpdateItem(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}

	var patch editor.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid patch"})
		return
	}

	status, err := lc.editor.UpdateItem(c.Request.Context(), id, patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

// UpdateListing handles PATCH /api/listings/:kind/:id - the unambiguous
// composite-key path.
func (lc *ListingController) UpdateListing(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}

	var patch editor.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid patch"})
		return
	}

	status, err := lc.editor.UpdateListing(c.Request.Context(), repository.Kind(c.Param("kind")), id, patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

// DeleteItem handles DELETE /api/items/:id.
func (lc *ListingController) DeleteItem(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}

	status, err := lc.editor.DeleteItem(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

// DeleteListing handles DELETE /api/listings/:kind/:id.
func (lc *ListingController) DeleteListing(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}

	status, err := lc.editor.DeleteListing(c.Request.Context(), repository.Kind(c.Param("kind")), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

// listingID parses the :id parameter, replying 400 on garbage.
func listingID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return 0, false
	}
	return id, true
}
