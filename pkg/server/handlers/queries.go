package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cinegraph/cinegraph"
	"github.com/cinegraph/cinegraph/pkg/server/dto"
)

// QueryHandler handles filmography, collaboration and search requests.
type QueryHandler struct {
	graph cinegraph.Cinegraph
}

// NewQueryHandler creates a new query handler.
func NewQueryHandler(g cinegraph.Cinegraph) *QueryHandler {
	return &QueryHandler{graph: g}
}

// ActorFilmography handles GET /actors/:name/filmography.
func (h *QueryHandler) ActorFilmography(c *gin.Context) {
	result, err := h.graph.ActorFilmography(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FilmographyResponse{
		Name:   result.Actor.Name,
		Movies: dto.NewMovieResponses(result.Movies),
	})
}

// DirectorFilmography handles GET /directors/:name/filmography.
func (h *QueryHandler) DirectorFilmography(c *gin.Context) {
	result, err := h.graph.DirectorFilmography(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FilmographyResponse{
		Name:   result.Director.Name,
		Movies: dto.NewMovieResponses(result.Movies),
	})
}

// MovieCast handles GET /movies/:title/cast.
func (h *QueryHandler) MovieCast(c *gin.Context) {
	result, err := h.graph.MovieCast(c.Request.Context(), c.Param("title"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CastResponse{
		Title:  result.Movie.Title,
		People: dto.NewActorResponses(result.Actors),
	})
}

// MovieCrew handles GET /movies/:title/directors.
func (h *QueryHandler) MovieCrew(c *gin.Context) {
	result, err := h.graph.MovieCrew(c.Request.Context(), c.Param("title"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CastResponse{
		Title:  result.Movie.Title,
		People: dto.NewDirectorResponses(result.Directors),
	})
}

// ActorCollaborators handles GET /actors/:name/directors.
func (h *QueryHandler) ActorCollaborators(c *gin.Context) {
	result, err := h.graph.ActorCollaborators(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CollaboratorsResponse{
		Name:          result.Actor.Name,
		Collaborators: dto.NewDirectorResponses(result.Directors),
	})
}

// DirectorCollaborators handles GET /directors/:name/actors.
func (h *QueryHandler) DirectorCollaborators(c *gin.Context) {
	result, err := h.graph.DirectorCollaborators(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CollaboratorsResponse{
		Name:          result.Director.Name,
		Collaborators: dto.NewActorResponses(result.Actors),
	})
}

// Search handles GET /search/:type.
func (h *QueryHandler) Search(c *gin.Context) {
	kind, ok := entityKindParam(c)
	if !ok {
		return
	}

	query := c.Query("query")
	results, err := h.graph.Search(c.Request.Context(), kind, query)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SearchResponse{
		Query:   query,
		Results: dto.NewEntityResponses(results),
	})
}

// Autocomplete handles GET /autocomplete/:type.
func (h *QueryHandler) Autocomplete(c *gin.Context) {
	kind, ok := entityKindParam(c)
	if !ok {
		return
	}

	query := c.Query("query")
	names, err := h.graph.Autocomplete(c.Request.Context(), kind, query)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"query": query, "suggestions": names})
}
