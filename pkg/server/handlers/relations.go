package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cinegraph/cinegraph"
	"github.com/cinegraph/cinegraph/pkg/server/dto"
)

// RelationHandler handles requests that attach people to movies.
type RelationHandler struct {
	graph cinegraph.Cinegraph
}

// NewRelationHandler creates a new relation handler.
func NewRelationHandler(g cinegraph.Cinegraph) *RelationHandler {
	return &RelationHandler{graph: g}
}

// ActorInMovie handles POST /actor_in_movie.
func (h *RelationHandler) ActorInMovie(c *gin.Context) {
	var req dto.ActorInMovieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.graph.AddActorToMovie(c.Request.Context(), req.ActorName, req.MovieTitle); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "actor linked to movie"})
}

// DirectorInMovie handles POST /director_in_movie.
func (h *RelationHandler) DirectorInMovie(c *gin.Context) {
	var req dto.DirectorInMovieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.graph.AddDirectorToMovie(c.Request.Context(), req.DirectorName, req.MovieTitle); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "director linked to movie"})
}
