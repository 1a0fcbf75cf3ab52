package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/graceauto/catalogue/internal/logger"
	"github.com/graceauto/catalogue/internal/store"
)

// CatalogController serves the read-only projections of the catalog.
// Everything here answers from the in-memory document; nothing fetches.
type CatalogController struct {
	store store.Reader
}

// NewCatalogController creates a controller over the given reader.
func NewCatalogController(st store.Reader) *CatalogController {
	return &CatalogController{store: st}
}

// Document handles GET /api/data - the full current document. The no-store
// header is the server-side counterpart of the clients' cache-busting query
// parameter: repeated loads must never see a stale cached copy.
func (cc *CatalogController) Document(c *gin.Context) {
	snapshot, err := cc.store.Snapshot()
	if err != nil {
		logger.WithComponent("catalog-controller").Errorf("snapshot failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read document"})
		return
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, snapshot)
}

// Vehicules handles GET /api/vehicules - vehicles for sale.
func (cc *CatalogController) Vehicules(c *gin.Context) {
	c.JSON(http.StatusOK, cc.store.Vehicules())
}

// Locations handles GET /api/locations - vehicles for rent.
func (cc *CatalogController) Locations(c *gin.Context) {
	c.JSON(http.StatusOK, cc.store.Locations())
}

// Residences handles GET /api/residences.
func (cc *CatalogController) Residences(c *gin.Context) {
	c.JSON(http.StatusOK, cc.store.Residences())
}

// Items handles GET /api/items - vehicles and residences merged.
func (cc *CatalogController) Items(c *gin.Context) {
	c.JSON(http.StatusOK, cc.store.AllItems())
}

// ItemByID handles GET /api/items/:id. On a cross-sequence id collision the
// vehicle is returned; the response carries the resolved kind so callers can
// tell which one they got.
func (cc *CatalogController) ItemByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return
	}

	item, kind, ok := cc.store.ItemByID(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"kind": kind, "item": item})
}

// Stats handles GET /api/stats - the admin dashboard counters.
func (cc *CatalogController) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, cc.store.Stats())
}
