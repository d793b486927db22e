package driver

import (
	"context"
	"time"

	"github.com/cinegraph/cinegraph/pkg/types"
)

// GraphProvider represents the type of graph database backing the store.
type GraphProvider string

const (
	GraphProviderNeo4j  GraphProvider = "neo4j"
	GraphProviderBadger GraphProvider = "badger"
)

// GraphDriver is the storage contract for the entity/edge graph. All
// mutation goes through upsert/merge operations keyed on the entity
// identity; two concurrent upserts of the same identity must not produce
// two entities.
type GraphDriver interface {
	// UpsertEntity creates the entity if absent, keyed on its identity.
	// Attributes of an existing entity are not touched; use SetProperties
	// to update them explicitly.
	UpsertEntity(ctx context.Context, kind types.EntityKind, key string) error

	// SetProperties replaces the named non-identity properties on an
	// existing entity. Returns ErrNotFound if the entity does not exist.
	SetProperties(ctx context.Context, kind types.EntityKind, key string, props map[string]any) error

	// GetEntity returns the entity with the given identity, or ErrNotFound.
	GetEntity(ctx context.Context, kind types.EntityKind, key string) (types.Identifiable, error)

	// ListEntities returns all entities of the kind. Order is unspecified.
	ListEntities(ctx context.Context, kind types.EntityKind) ([]types.Identifiable, error)

	// DeleteEntity removes the entity and every edge with it as an
	// endpoint. Returns ErrNotFound if the entity does not exist.
	DeleteEntity(ctx context.Context, kind types.EntityKind, key string) error

	// UpsertRelation merges the relation, creating either endpoint entity
	// if it is missing. Applying the same relation twice is a no-op.
	UpsertRelation(ctx context.Context, rel types.Relation) error

	// MoviesByPerson returns the movies reachable from the named person
	// via ACTED_IN (actors) or DIRECTED (directors). Unsorted; the query
	// engine owns ordering. The person not existing is not an error here,
	// callers check existence via GetEntity.
	MoviesByPerson(ctx context.Context, kind types.EntityKind, name string) ([]*types.Movie, error)

	// PersonsByMovie returns the people connected to the titled movie via
	// the given relation kind (ACTED_IN or DIRECTED). Unsorted.
	PersonsByMovie(ctx context.Context, title string, rel types.RelationKind) ([]types.Identifiable, error)

	// CollaboratorsOf returns the distinct COOPERATED_WITH endpoints for
	// the named person: directors for an actor, actors for a director.
	CollaboratorsOf(ctx context.Context, kind types.EntityKind, name string) ([]types.Identifiable, error)

	// FindEntities returns every entity of the kind whose identity
	// contains the query, case-insensitively. Unranked; the query engine
	// owns relevance ordering.
	FindEntities(ctx context.Context, kind types.EntityKind, query string) ([]types.Identifiable, error)

	// ApplyBatch applies all writes in the batch as a single all-or-nothing
	// unit.
	ApplyBatch(ctx context.Context, batch *Batch) error

	// Clear removes every entity and edge from the graph. Must not run
	// concurrently with other writers; callers serialize it.
	Clear(ctx context.Context) error

	// CreateIndices creates identity indexes on Movie.title, Actor.name
	// and Director.name. Idempotent.
	CreateIndices(ctx context.Context) error

	// Stats returns entity and edge counts by kind.
	Stats(ctx context.Context) (*GraphStats, error)

	// Ping checks storage reachability.
	Ping(ctx context.Context) error

	Provider() GraphProvider
	Close(ctx context.Context) error
}

// EntityWrite is one entity in a batch: upsert by identity plus an explicit
// property replacement. A nil Props map leaves existing properties alone.
type EntityWrite struct {
	Kind  types.EntityKind
	Key   string
	Props map[string]any
}

// Batch is a bounded group of writes applied atomically during bulk
// ingestion. Within a batch, application order does not affect the final
// graph: entities and relations are idempotent merges.
type Batch struct {
	Entities  []EntityWrite
	Relations []types.Relation
}

// Empty reports whether the batch carries no writes.
func (b *Batch) Empty() bool {
	return b == nil || (len(b.Entities) == 0 && len(b.Relations) == 0)
}

// GraphStats holds entity and edge counts for the health surface.
type GraphStats struct {
	Entities    map[types.EntityKind]int64   `json:"entities"`
	Relations   map[types.RelationKind]int64 `json:"relations"`
	LastUpdated time.Time                    `json:"last_updated"`
}
