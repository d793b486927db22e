package cinegraph

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/cinegraph/cinegraph/pkg/search"
	"github.com/cinegraph/cinegraph/pkg/types"
)

// ActorFilmography returns the actor and the movies they acted in, newest
// first. NotFound if no actor with the name exists; an actor with zero
// movies yields an empty list.
func (c *Client) ActorFilmography(ctx context.Context, name string) (*types.ActorFilmography, error) {
	actor, err := c.GetActor(ctx, name)
	if err != nil {
		return nil, err
	}
	movies, err := c.driver.MoviesByPerson(ctx, types.KindActor, name)
	if err != nil {
		return nil, err
	}
	sortMovies(movies)
	return &types.ActorFilmography{Actor: actor, Movies: movies}, nil
}

// DirectorFilmography returns the director and the movies they directed,
// newest first.
func (c *Client) DirectorFilmography(ctx context.Context, name string) (*types.DirectorFilmography, error) {
	director, err := c.GetDirector(ctx, name)
	if err != nil {
		return nil, err
	}
	movies, err := c.driver.MoviesByPerson(ctx, types.KindDirector, name)
	if err != nil {
		return nil, err
	}
	sortMovies(movies)
	return &types.DirectorFilmography{Director: director, Movies: movies}, nil
}

// MovieCast returns the movie and its actors, sorted by name.
func (c *Client) MovieCast(ctx context.Context, title string) (*types.MovieCast, error) {
	movie, err := c.GetMovie(ctx, title)
	if err != nil {
		return nil, err
	}
	persons, err := c.driver.PersonsByMovie(ctx, title, types.RelActedIn)
	if err != nil {
		return nil, err
	}
	actors := make([]*types.Actor, len(persons))
	for i, p := range persons {
		actors[i] = p.(*types.Actor)
	}
	sort.Slice(actors, func(i, j int) bool { return actors[i].Name < actors[j].Name })
	return &types.MovieCast{Movie: movie, Actors: actors}, nil
}

// MovieCrew returns the movie and its directors, sorted by name.
func (c *Client) MovieCrew(ctx context.Context, title string) (*types.MovieCrew, error) {
	movie, err := c.GetMovie(ctx, title)
	if err != nil {
		return nil, err
	}
	persons, err := c.driver.PersonsByMovie(ctx, title, types.RelDirected)
	if err != nil {
		return nil, err
	}
	directors := make([]*types.Director, len(persons))
	for i, p := range persons {
		directors[i] = p.(*types.Director)
	}
	sort.Slice(directors, func(i, j int) bool { return directors[i].Name < directors[j].Name })
	return &types.MovieCrew{Movie: movie, Directors: directors}, nil
}

// ActorCollaborators returns the distinct directors the named actor has
// cooperated with, sorted by name for determinism.
func (c *Client) ActorCollaborators(ctx context.Context, name string) (*types.ActorCollaborators, error) {
	actor, err := c.GetActor(ctx, name)
	if err != nil {
		return nil, err
	}
	persons, err := c.driver.CollaboratorsOf(ctx, types.KindActor, name)
	if err != nil {
		return nil, err
	}
	directors := make([]*types.Director, len(persons))
	for i, p := range persons {
		directors[i] = p.(*types.Director)
	}
	sort.Slice(directors, func(i, j int) bool { return directors[i].Name < directors[j].Name })
	return &types.ActorCollaborators{Actor: actor, Directors: directors}, nil
}

// DirectorCollaborators returns the distinct actors the named director has
// cooperated with, sorted by name.
func (c *Client) DirectorCollaborators(ctx context.Context, name string) (*types.DirectorCollaborators, error) {
	director, err := c.GetDirector(ctx, name)
	if err != nil {
		return nil, err
	}
	persons, err := c.driver.CollaboratorsOf(ctx, types.KindDirector, name)
	if err != nil {
		return nil, err
	}
	actors := make([]*types.Actor, len(persons))
	for i, p := range persons {
		actors[i] = p.(*types.Actor)
	}
	sort.Slice(actors, func(i, j int) bool { return actors[i].Name < actors[j].Name })
	return &types.DirectorCollaborators{Director: director, Actors: actors}, nil
}

// Search performs a case-insensitive substring match against the kind's
// identity field, ranked exact before prefix before other substring, then
// by identity ascending, capped at 20 results. An empty query is invalid
// input, not match-everything.
func (c *Client) Search(ctx context.Context, kind types.EntityKind, query string) ([]types.Identifiable, error) {
	candidates, err := c.findCandidates(ctx, kind, query)
	if err != nil {
		return nil, err
	}
	return search.Rank(candidates, query, search.SearchLimit), nil
}

// Autocomplete returns up to 10 identity suggestions, ranked like Search.
func (c *Client) Autocomplete(ctx context.Context, kind types.EntityKind, query string) ([]string, error) {
	candidates, err := c.findCandidates(ctx, kind, query)
	if err != nil {
		return nil, err
	}
	ranked := search.Rank(candidates, query, search.AutocompleteLimit)
	suggestions := make([]string, len(ranked))
	for i, r := range ranked {
		suggestions[i] = r.IdentityKey()
	}
	return suggestions, nil
}

func (c *Client) findCandidates(ctx context.Context, kind types.EntityKind, query string) ([]types.Identifiable, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty search query", types.ErrInvalidInput)
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: entity kind %q", types.ErrInvalidInput, kind)
	}
	return c.driver.FindEntities(ctx, kind, query)
}

// sortMovies orders a filmography by release date descending with unknown
// dates after all known dates, tie-broken by title ascending. This is the
// single canonical sort; storage drivers return movies unordered.
func sortMovies(movies []*types.Movie) {
	sort.Slice(movies, func(i, j int) bool {
		a, b := movies[i], movies[j]
		if a.ReleaseDate != b.ReleaseDate {
			if a.ReleaseDate == "" {
				return false
			}
			if b.ReleaseDate == "" {
				return true
			}
			return a.ReleaseDate > b.ReleaseDate
		}
		return a.Title < b.Title
	})
}
