// Package handlers contains the gin request handlers for the HTTP API.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cinegraph/cinegraph/pkg/server/dto"
	"github.com/cinegraph/cinegraph/pkg/types"
)

// respondError maps a domain error to its HTTP status code.
func respondError(c *gin.Context, err error) {
	var partial *types.PartialImportError
	switch {
	case errors.As(err, &partial):
		c.JSON(http.StatusInternalServerError, dto.PartialImportResponse{
			Error:            partial.Error(),
			CommittedBatches: partial.CommittedBatches,
			FailedBatch:      partial.FailedBatch,
		})
	case errors.Is(err, types.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, types.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, types.ErrConflict):
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, types.ErrStorageUnavailable):
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}
}

// entityKindParam parses the :type path parameter.
func entityKindParam(c *gin.Context) (types.EntityKind, bool) {
	kind, err := types.ParseEntityKind(c.Param("type"))
	if err != nil {
		respondError(c, err)
		return "", false
	}
	return kind, true
}
