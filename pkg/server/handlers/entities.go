package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cinegraph/cinegraph"
	"github.com/cinegraph/cinegraph/pkg/server/dto"
	"github.com/cinegraph/cinegraph/pkg/types"
)

// EntityHandler handles CRUD requests for movies, actors and directors.
type EntityHandler struct {
	graph cinegraph.Cinegraph
}

// NewEntityHandler creates a new entity handler.
func NewEntityHandler(g cinegraph.Cinegraph) *EntityHandler {
	return &EntityHandler{graph: g}
}

// CreateMovie handles POST /movies.
func (h *EntityHandler) CreateMovie(c *gin.Context) {
	var req dto.CreateMovieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	movie := &types.Movie{
		Title:        req.Title,
		EnglishTitle: req.EnglishTitle,
		Genres:       req.Genres,
		ReleaseDate:  req.ReleaseDate,
		CoverPath:    req.CoverPath,
	}
	if err := h.graph.CreateMovie(c.Request.Context(), movie); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewMovieResponse(movie))
}

// GetMovie handles GET /movies/:title.
func (h *EntityHandler) GetMovie(c *gin.Context) {
	movie, err := h.graph.GetMovie(c.Request.Context(), c.Param("title"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewMovieResponse(movie))
}

// ListMovies handles GET /movies.
func (h *EntityHandler) ListMovies(c *gin.Context) {
	movies, err := h.graph.ListMovies(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewMovieResponses(movies))
}

// DeleteMovie handles DELETE /movies/:title.
func (h *EntityHandler) DeleteMovie(c *gin.Context) {
	if err := h.graph.DeleteMovie(c.Request.Context(), c.Param("title")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "movie deleted"})
}

// CreateActor handles POST /actors.
func (h *EntityHandler) CreateActor(c *gin.Context) {
	var req dto.CreateActorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	actor := &types.Actor{Name: req.Name, PhotoPath: req.PhotoPath}
	if err := h.graph.CreateActor(c.Request.Context(), actor); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewActorResponse(actor))
}

// GetActor handles GET /actors/:name.
func (h *EntityHandler) GetActor(c *gin.Context) {
	actor, err := h.graph.GetActor(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewActorResponse(actor))
}

// ListActors handles GET /actors.
func (h *EntityHandler) ListActors(c *gin.Context) {
	actors, err := h.graph.ListActors(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewActorResponses(actors))
}

// DeleteActor handles DELETE /actors/:name.
func (h *EntityHandler) DeleteActor(c *gin.Context) {
	if err := h.graph.DeleteActor(c.Request.Context(), c.Param("name")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "actor deleted"})
}

// CreateDirector handles POST /directors.
func (h *EntityHandler) CreateDirector(c *gin.Context) {
	var req dto.CreateDirectorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	director := &types.Director{Name: req.Name, PhotoPath: req.PhotoPath}
	if err := h.graph.CreateDirector(c.Request.Context(), director); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewDirectorResponse(director))
}

// GetDirector handles GET /directors/:name.
func (h *EntityHandler) GetDirector(c *gin.Context) {
	director, err := h.graph.GetDirector(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewDirectorResponse(director))
}

// ListDirectors handles GET /directors.
func (h *EntityHandler) ListDirectors(c *gin.Context) {
	directors, err := h.graph.ListDirectors(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewDirectorResponses(directors))
}

// DeleteDirector handles DELETE /directors/:name.
func (h *EntityHandler) DeleteDirector(c *gin.Context) {
	if err := h.graph.DeleteDirector(c.Request.Context(), c.Param("name")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "director deleted"})
}
