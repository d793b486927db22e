package cinegraph

import (
	"context"
	"errors"
	"fmt"

	"github.com/cinegraph/cinegraph/pkg/types"
)

// createEntity is the strict-create path: unlike upsert, an existing
// entity with the same identity is a Conflict. The existence check and the
// upsert are separate storage calls, so two racing creates of the same
// identity may both return success; the upsert underneath still collapses
// them to a single entity.
func (c *Client) createEntity(ctx context.Context, entity types.Identifiable) error {
	kind, key := entity.EntityKind(), entity.IdentityKey()
	if key == "" {
		return fmt.Errorf("%w: %s requires a non-empty %s", types.ErrInvalidInput, kind, kind.IdentityProperty())
	}

	if _, err := c.driver.GetEntity(ctx, kind, key); err == nil {
		return fmt.Errorf("%s %q: %w", kind, key, types.ErrConflict)
	} else if !errors.Is(err, types.ErrNotFound) {
		return err
	}

	if err := c.driver.UpsertEntity(ctx, kind, key); err != nil {
		return err
	}
	if err := c.driver.SetProperties(ctx, kind, key, entity.Properties()); err != nil {
		return err
	}
	c.logger.Info("entity created", "kind", kind, "key", key)
	return nil
}

// CreateMovie creates a movie; Conflict if the title already exists.
func (c *Client) CreateMovie(ctx context.Context, movie *types.Movie) error {
	return c.createEntity(ctx, movie)
}

// GetMovie returns the movie with the given title, or NotFound.
func (c *Client) GetMovie(ctx context.Context, title string) (*types.Movie, error) {
	entity, err := c.driver.GetEntity(ctx, types.KindMovie, title)
	if err != nil {
		return nil, err
	}
	return entity.(*types.Movie), nil
}

// ListMovies returns all movies, in unspecified order.
func (c *Client) ListMovies(ctx context.Context) ([]*types.Movie, error) {
	entities, err := c.driver.ListEntities(ctx, types.KindMovie)
	if err != nil {
		return nil, err
	}
	movies := make([]*types.Movie, len(entities))
	for i, e := range entities {
		movies[i] = e.(*types.Movie)
	}
	return movies, nil
}

// DeleteMovie removes the movie and every edge pointing at it. The actors
// and directors themselves remain.
func (c *Client) DeleteMovie(ctx context.Context, title string) error {
	return c.driver.DeleteEntity(ctx, types.KindMovie, title)
}

// CreateActor creates an actor; Conflict if the name already exists.
func (c *Client) CreateActor(ctx context.Context, actor *types.Actor) error {
	return c.createEntity(ctx, actor)
}

// GetActor returns the actor with the given name, or NotFound.
func (c *Client) GetActor(ctx context.Context, name string) (*types.Actor, error) {
	entity, err := c.driver.GetEntity(ctx, types.KindActor, name)
	if err != nil {
		return nil, err
	}
	return entity.(*types.Actor), nil
}

// ListActors returns all actors, in unspecified order.
func (c *Client) ListActors(ctx context.Context) ([]*types.Actor, error) {
	entities, err := c.driver.ListEntities(ctx, types.KindActor)
	if err != nil {
		return nil, err
	}
	actors := make([]*types.Actor, len(entities))
	for i, e := range entities {
		actors[i] = e.(*types.Actor)
	}
	return actors, nil
}

// DeleteActor removes the actor and every edge touching them.
func (c *Client) DeleteActor(ctx context.Context, name string) error {
	return c.driver.DeleteEntity(ctx, types.KindActor, name)
}

// CreateDirector creates a director; Conflict if the name already exists.
func (c *Client) CreateDirector(ctx context.Context, director *types.Director) error {
	return c.createEntity(ctx, director)
}

// GetDirector returns the director with the given name, or NotFound.
func (c *Client) GetDirector(ctx context.Context, name string) (*types.Director, error) {
	entity, err := c.driver.GetEntity(ctx, types.KindDirector, name)
	if err != nil {
		return nil, err
	}
	return entity.(*types.Director), nil
}

// ListDirectors returns all directors, in unspecified order.
func (c *Client) ListDirectors(ctx context.Context) ([]*types.Director, error) {
	entities, err := c.driver.ListEntities(ctx, types.KindDirector)
	if err != nil {
		return nil, err
	}
	directors := make([]*types.Director, len(entities))
	for i, e := range entities {
		directors[i] = e.(*types.Director)
	}
	return directors, nil
}

// DeleteDirector removes the director and every edge touching them.
func (c *Client) DeleteDirector(ctx context.Context, name string) error {
	return c.driver.DeleteEntity(ctx, types.KindDirector, name)
}

// AddActorToMovie links an existing actor to an existing movie. Both
// endpoints must already exist: this is the explicit relationship-create
// path, not the forgiving derivation path. Cooperation edges with the
// movie's directors are re-derived additively.
func (c *Client) AddActorToMovie(ctx context.Context, actorName, movieTitle string) error {
	if _, err := c.driver.GetEntity(ctx, types.KindActor, actorName); err != nil {
		return err
	}
	if _, err := c.driver.GetEntity(ctx, types.KindMovie, movieTitle); err != nil {
		return err
	}

	rel := types.Relation{Kind: types.RelActedIn, Source: actorName, Target: movieTitle}
	if err := c.driver.UpsertRelation(ctx, rel); err != nil {
		return err
	}

	// Cast changed: cooperation edges follow from co-occurrence.
	directors, err := c.driver.PersonsByMovie(ctx, movieTitle, types.RelDirected)
	if err != nil {
		return err
	}
	for _, d := range directors {
		coop := types.Relation{Kind: types.RelCooperatedWith, Source: actorName, Target: d.IdentityKey()}
		if err := c.driver.UpsertRelation(ctx, coop); err != nil {
			return err
		}
	}

	c.logger.Info("relationship added", "relation", rel.String())
	return nil
}

// AddDirectorToMovie links an existing director to an existing movie and
// re-derives cooperation edges with the movie's cast.
func (c *Client) AddDirectorToMovie(ctx context.Context, directorName, movieTitle string) error {
	if _, err := c.driver.GetEntity(ctx, types.KindDirector, directorName); err != nil {
		return err
	}
	if _, err := c.driver.GetEntity(ctx, types.KindMovie, movieTitle); err != nil {
		return err
	}

	rel := types.Relation{Kind: types.RelDirected, Source: directorName, Target: movieTitle}
	if err := c.driver.UpsertRelation(ctx, rel); err != nil {
		return err
	}

	actors, err := c.driver.PersonsByMovie(ctx, movieTitle, types.RelActedIn)
	if err != nil {
		return err
	}
	for _, a := range actors {
		coop := types.Relation{Kind: types.RelCooperatedWith, Source: a.IdentityKey(), Target: directorName}
		if err := c.driver.UpsertRelation(ctx, coop); err != nil {
			return err
		}
	}

	c.logger.Info("relationship added", "relation", rel.String())
	return nil
}
