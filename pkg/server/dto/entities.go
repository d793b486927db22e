package dto

import "github.com/cinegraph/cinegraph/pkg/types"

// CreateMovieRequest is the payload for POST /movies.
type CreateMovieRequest struct {
	Title        string   `json:"title" binding:"required"`
	EnglishTitle string   `json:"english_title"`
	Genres       []string `json:"genres"`
	ReleaseDate  string   `json:"release_date"`
	CoverPath    string   `json:"cover_path"`
}

// CreateActorRequest is the payload for POST /actors.
type CreateActorRequest struct {
	Name      string `json:"name" binding:"required"`
	PhotoPath string `json:"photo_path"`
}

// CreateDirectorRequest is the payload for POST /directors.
type CreateDirectorRequest struct {
	Name      string `json:"name" binding:"required"`
	PhotoPath string `json:"photo_path"`
}

// ActorInMovieRequest is the payload for POST /actor_in_movie.
type ActorInMovieRequest struct {
	ActorName  string `json:"actor_name" binding:"required"`
	MovieTitle string `json:"movie_title" binding:"required"`
}

// DirectorInMovieRequest is the payload for POST /director_in_movie.
type DirectorInMovieRequest struct {
	DirectorName string `json:"director_name" binding:"required"`
	MovieTitle   string `json:"movie_title" binding:"required"`
}

// MovieResponse is the JSON shape for a movie entity.
type MovieResponse struct {
	Title        string   `json:"title"`
	EnglishTitle string   `json:"english_title,omitempty"`
	Genres       []string `json:"genres,omitempty"`
	ReleaseDate  string   `json:"release_date,omitempty"`
	CoverPath    string   `json:"cover_path,omitempty"`
}

// PersonResponse is the JSON shape for an actor or director entity.
type PersonResponse struct {
	Name      string `json:"name"`
	PhotoPath string `json:"photo_path,omitempty"`
}

// NewMovieResponse converts a movie entity to its response shape.
func NewMovieResponse(m *types.Movie) MovieResponse {
	return MovieResponse{
		Title:        m.Title,
		EnglishTitle: m.EnglishTitle,
		Genres:       m.Genres,
		ReleaseDate:  m.ReleaseDate,
		CoverPath:    m.CoverPath,
	}
}

// NewMovieResponses converts a slice of movie entities.
func NewMovieResponses(movies []*types.Movie) []MovieResponse {
	out := make([]MovieResponse, 0, len(movies))
	for _, m := range movies {
		out = append(out, NewMovieResponse(m))
	}
	return out
}

// NewActorResponse converts an actor entity to its response shape.
func NewActorResponse(a *types.Actor) PersonResponse {
	return PersonResponse{Name: a.Name, PhotoPath: a.PhotoPath}
}

// NewActorResponses converts a slice of actor entities.
func NewActorResponses(actors []*types.Actor) []PersonResponse {
	out := make([]PersonResponse, 0, len(actors))
	for _, a := range actors {
		out = append(out, NewActorResponse(a))
	}
	return out
}

// NewDirectorResponse converts a director entity to its response shape.
func NewDirectorResponse(d *types.Director) PersonResponse {
	return PersonResponse{Name: d.Name, PhotoPath: d.PhotoPath}
}

// NewDirectorResponses converts a slice of director entities.
func NewDirectorResponses(directors []*types.Director) []PersonResponse {
	out := make([]PersonResponse, 0, len(directors))
	for _, d := range directors {
		out = append(out, NewDirectorResponse(d))
	}
	return out
}

// NewEntityResponses converts a mixed slice of entities, as returned by
// search, into their response shapes.
func NewEntityResponses(entities []types.Identifiable) []any {
	out := make([]any, 0, len(entities))
	for _, e := range entities {
		switch v := e.(type) {
		case *types.Movie:
			out = append(out, NewMovieResponse(v))
		case *types.Actor:
			out = append(out, NewActorResponse(v))
		case *types.Director:
			out = append(out, NewDirectorResponse(v))
		}
	}
	return out
}
