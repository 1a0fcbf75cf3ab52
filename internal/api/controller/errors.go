package controller

import (
	"net/http"

	"github.com/containerd/errdefs"
	"github.com/gin-gonic/gin"
)

// writeError maps editor failures onto HTTP statuses: missing targets are
// 404, rejected input is 400, everything else (transport, IO) is 500.
func writeError(c *gin.Context, err error) {
	switch {
	case errdefs.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errdefs.IsInvalidArgument(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
	}
}
