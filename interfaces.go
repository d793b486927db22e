package cinegraph

import (
	"context"

	"github.com/cinegraph/cinegraph/pkg/driver"
	"github.com/cinegraph/cinegraph/pkg/types"
)

// Focused interfaces over the client. Consumers should depend on the
// smallest interface that meets their needs; Cinegraph composes them all.

// EntityManager provides create/read/delete by identity for each entity
// type. Create is strict: an existing identity is a Conflict, unlike the
// upsert semantics used during ingestion.
type EntityManager interface {
	CreateMovie(ctx context.Context, movie *types.Movie) error
	GetMovie(ctx context.Context, title string) (*types.Movie, error)
	ListMovies(ctx context.Context) ([]*types.Movie, error)
	DeleteMovie(ctx context.Context, title string) error

	CreateActor(ctx context.Context, actor *types.Actor) error
	GetActor(ctx context.Context, name string) (*types.Actor, error)
	ListActors(ctx context.Context) ([]*types.Actor, error)
	DeleteActor(ctx context.Context, name string) error

	CreateDirector(ctx context.Context, director *types.Director) error
	GetDirector(ctx context.Context, name string) (*types.Director, error)
	ListDirectors(ctx context.Context) ([]*types.Director, error)
	DeleteDirector(ctx context.Context, name string) error
}

// RelationshipManager provides explicit relationship creation between
// existing entities. Cooperation edges are re-derived when cast or crew
// changes.
type RelationshipManager interface {
	AddActorToMovie(ctx context.Context, actorName, movieTitle string) error
	AddDirectorToMovie(ctx context.Context, directorName, movieTitle string) error
}

// GraphQuerier answers the read-only relationship and search queries.
// Queries are side-effect free and may be cancelled via their context.
type GraphQuerier interface {
	ActorFilmography(ctx context.Context, name string) (*types.ActorFilmography, error)
	DirectorFilmography(ctx context.Context, name string) (*types.DirectorFilmography, error)
	MovieCast(ctx context.Context, title string) (*types.MovieCast, error)
	MovieCrew(ctx context.Context, title string) (*types.MovieCrew, error)
	ActorCollaborators(ctx context.Context, name string) (*types.ActorCollaborators, error)
	DirectorCollaborators(ctx context.Context, name string) (*types.DirectorCollaborators, error)
	Search(ctx context.Context, kind types.EntityKind, query string) ([]types.Identifiable, error)
	Autocomplete(ctx context.Context, kind types.EntityKind, query string) ([]string, error)
}

// GraphAdmin provides maintenance operations. Clear must be serialized
// against other writers by the caller.
type GraphAdmin interface {
	Clear(ctx context.Context) error
	CreateIndices(ctx context.Context) error
	Stats(ctx context.Context) (*driver.GraphStats, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Cinegraph is the full surface of the movie graph catalog.
type Cinegraph interface {
	EntityManager
	RelationshipManager
	GraphQuerier
	GraphAdmin
}

var _ Cinegraph = (*Client)(nil)
