package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/cinegraph/cinegraph/pkg/types"
)

// Neo4jDriver implements the GraphDriver interface for Neo4j databases.
// Entity kinds map to node labels, relation kinds to relationship types,
// and all merges are keyed on the identity property.
type Neo4jDriver struct {
	client   neo4j.DriverWithContext
	database string
}

// NewNeo4jDriver creates a new Neo4j driver instance.
func NewNeo4jDriver(uri, username, password, database string) (*Neo4jDriver, error) {
	client, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	if database == "" {
		database = "neo4j"
	}

	return &Neo4jDriver{
		client:   client,
		database: database,
	}, nil
}

func (n *Neo4jDriver) session(ctx context.Context) neo4j.SessionWithContext {
	return n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
}

// UpsertEntity merges the entity on its identity property only. Existing
// properties are left untouched.
func (n *Neo4jDriver) UpsertEntity(ctx context.Context, kind types.EntityKind, key string) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: entity kind %q", types.ErrInvalidInput, kind)
	}
	if key == "" {
		return fmt.Errorf("%w: empty identity key", types.ErrInvalidInput)
	}

	session := n.session(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := fmt.Sprintf("MERGE (n:%s {%s: $key})", kind, kind.IdentityProperty())
		_, err := tx.Run(ctx, query, map[string]any{"key": key})
		return nil, err
	})
	return err
}

// SetProperties replaces the named properties on an existing entity.
func (n *Neo4jDriver) SetProperties(ctx context.Context, kind types.EntityKind, key string, props map[string]any) error {
	session := n.session(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := fmt.Sprintf(`
			MATCH (n:%s {%s: $key})
			SET n += $props
			RETURN count(n) AS updated
		`, kind, kind.IdentityProperty())
		res, err := tx.Run(ctx, query, map[string]any{"key": key, "props": props})
		if err != nil {
			return nil, err
		}
		record, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		return record, nil
	})
	if err != nil {
		return err
	}

	record := result.(*db.Record)
	if updated, _ := record.Get("updated"); asInt64(updated) == 0 {
		return fmt.Errorf("%s %q: %w", kind, key, types.ErrNotFound)
	}
	return nil
}

// GetEntity retrieves an entity by its identity key.
func (n *Neo4jDriver) GetEntity(ctx context.Context, kind types.EntityKind, key string) (types.Identifiable, error) {
	session := n.session(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := fmt.Sprintf("MATCH (n:%s {%s: $key}) RETURN n", kind, kind.IdentityProperty())
		res, err := tx.Run(ctx, query, map[string]any{"key": key})
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, err
	}

	records := result.([]*db.Record)
	if len(records) == 0 {
		return nil, fmt.Errorf("%s %q: %w", kind, key, types.ErrNotFound)
	}
	return n.entityFromRecord(kind, records[0])
}

// ListEntities returns all entities of the kind, in storage order.
func (n *Neo4jDriver) ListEntities(ctx context.Context, kind types.EntityKind) ([]types.Identifiable, error) {
	query := fmt.Sprintf("MATCH (n:%s) RETURN n", kind)
	return n.collectEntities(ctx, kind, query, nil)
}

// DeleteEntity removes the entity and cascades to every incident edge.
func (n *Neo4jDriver) DeleteEntity(ctx context.Context, kind types.EntityKind, key string) error {
	session := n.session(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := fmt.Sprintf(`
			MATCH (n:%s {%s: $key})
			DETACH DELETE n
			RETURN count(n) AS deleted
		`, kind, kind.IdentityProperty())
		res, err := tx.Run(ctx, query, map[string]any{"key": key})
		if err != nil {
			return nil, err
		}
		return res.Single(ctx)
	})
	if err != nil {
		return err
	}

	record := result.(*db.Record)
	if deleted, _ := record.Get("deleted"); asInt64(deleted) == 0 {
		return fmt.Errorf("%s %q: %w", kind, key, types.ErrNotFound)
	}
	return nil
}

// UpsertRelation merges the relation, creating missing endpoints. Favoring
// graph completeness over referential pre-validation: an edge naming an
// unknown entity upserts it rather than failing.
func (n *Neo4jDriver) UpsertRelation(ctx context.Context, rel types.Relation) error {
	if !rel.Kind.Valid() {
		return fmt.Errorf("%w: relation kind %q", types.ErrInvalidInput, rel.Kind)
	}
	if rel.Source == "" || rel.Target == "" {
		return fmt.Errorf("%w: relation endpoints must be non-empty", types.ErrInvalidInput)
	}

	session := n.session(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		src, tgt := rel.Kind.SourceKind(), rel.Kind.TargetKind()
		query := fmt.Sprintf(`
			MERGE (s:%s {%s: $source})
			MERGE (t:%s {%s: $target})
			MERGE (s)-[:%s]->(t)
		`, src, src.IdentityProperty(), tgt, tgt.IdentityProperty(), rel.Kind)
		_, err := tx.Run(ctx, query, map[string]any{
			"source": rel.Source,
			"target": rel.Target,
		})
		return nil, err
	})
	return err
}

// MoviesByPerson returns the movies linked to the named actor or director.
func (n *Neo4jDriver) MoviesByPerson(ctx context.Context, kind types.EntityKind, name string) ([]*types.Movie, error) {
	rel := types.RelActedIn
	if kind == types.KindDirector {
		rel = types.RelDirected
	}

	query := fmt.Sprintf(`
		MATCH (p:%s {name: $key})-[:%s]->(n:Movie)
		RETURN n
	`, kind, rel)
	entities, err := n.collectEntities(ctx, types.KindMovie, query, map[string]any{"key": name})
	if err != nil {
		return nil, err
	}

	movies := make([]*types.Movie, 0, len(entities))
	for _, e := range entities {
		movies = append(movies, e.(*types.Movie))
	}
	return movies, nil
}

// PersonsByMovie returns the actors (ACTED_IN) or directors (DIRECTED) of
// the titled movie.
func (n *Neo4jDriver) PersonsByMovie(ctx context.Context, title string, rel types.RelationKind) ([]types.Identifiable, error) {
	kind := rel.SourceKind()
	query := fmt.Sprintf(`
		MATCH (n:%s)-[:%s]->(:Movie {title: $key})
		RETURN n
	`, kind, rel)
	return n.collectEntities(ctx, kind, query, map[string]any{"key": title})
}

// CollaboratorsOf returns the distinct COOPERATED_WITH endpoints for the
// named person.
func (n *Neo4jDriver) CollaboratorsOf(ctx context.Context, kind types.EntityKind, name string) ([]types.Identifiable, error) {
	var query string
	var resultKind types.EntityKind
	if kind == types.KindDirector {
		resultKind = types.KindActor
		query = `
			MATCH (n:Actor)-[:COOPERATED_WITH]->(:Director {name: $key})
			RETURN DISTINCT n
		`
	} else {
		resultKind = types.KindDirector
		query = `
			MATCH (:Actor {name: $key})-[:COOPERATED_WITH]->(n:Director)
			RETURN DISTINCT n
		`
	}
	return n.collectEntities(ctx, resultKind, query, map[string]any{"key": name})
}

// FindEntities returns all entities whose identity contains the query,
// case-insensitively. Relevance ordering is the query engine's job.
func (n *Neo4jDriver) FindEntities(ctx context.Context, kind types.EntityKind, query string) ([]types.Identifiable, error) {
	cypher := fmt.Sprintf(`
		MATCH (n:%s)
		WHERE toLower(n.%s) CONTAINS toLower($query)
		RETURN n
	`, kind, kind.IdentityProperty())
	return n.collectEntities(ctx, kind, cypher, map[string]any{"query": query})
}

// ApplyBatch applies the whole batch inside one managed write transaction.
func (n *Neo4jDriver) ApplyBatch(ctx context.Context, batch *Batch) error {
	if batch.Empty() {
		return nil
	}

	session := n.session(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		// Entities first so relation merges see fully-attributed nodes,
		// grouped by kind for UNWIND.
		byKind := map[types.EntityKind][]map[string]any{}
		for _, e := range batch.Entities {
			props := e.Props
			if props == nil {
				props = map[string]any{}
			}
			byKind[e.Kind] = append(byKind[e.Kind], map[string]any{"key": e.Key, "props": props})
		}
		for kind, rows := range byKind {
			query := fmt.Sprintf(`
				UNWIND $rows AS row
				MERGE (n:%s {%s: row.key})
				SET n += row.props
			`, kind, kind.IdentityProperty())
			if _, err := tx.Run(ctx, query, map[string]any{"rows": rows}); err != nil {
				return nil, err
			}
		}

		relsByKind := map[types.RelationKind][]map[string]any{}
		for _, rel := range batch.Relations {
			relsByKind[rel.Kind] = append(relsByKind[rel.Kind], map[string]any{
				"source": rel.Source,
				"target": rel.Target,
			})
		}
		for rk, rows := range relsByKind {
			src, tgt := rk.SourceKind(), rk.TargetKind()
			query := fmt.Sprintf(`
				UNWIND $rows AS row
				MERGE (s:%s {%s: row.source})
				MERGE (t:%s {%s: row.target})
				MERGE (s)-[:%s]->(t)
			`, src, src.IdentityProperty(), tgt, tgt.IdentityProperty(), rk)
			if _, err := tx.Run(ctx, query, map[string]any{"rows": rows}); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	return err
}

// Clear removes every node and edge. Callers serialize this against other
// writers.
func (n *Neo4jDriver) Clear(ctx context.Context) error {
	session := n.session(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx, "MATCH (n) DETACH DELETE n", nil)
		return nil, err
	})
	return err
}

// CreateIndices creates uniqueness constraints on the identity properties.
// MERGE on an unconstrained property can create duplicate nodes under
// concurrent transactions; the constraints make concurrent upserts of the
// same identity collapse to a single node, and the backing indexes give the
// ingestion pipeline acceptable merge performance on large tables.
func (n *Neo4jDriver) CreateIndices(ctx context.Context) error {
	session := n.session(ctx)
	defer session.Close(ctx)

	constraints := []string{
		"CREATE CONSTRAINT movie_title_unique IF NOT EXISTS FOR (m:Movie) REQUIRE m.title IS UNIQUE",
		"CREATE CONSTRAINT actor_name_unique IF NOT EXISTS FOR (a:Actor) REQUIRE a.name IS UNIQUE",
		"CREATE CONSTRAINT director_name_unique IF NOT EXISTS FOR (d:Director) REQUIRE d.name IS UNIQUE",
	}
	for _, constraintQuery := range constraints {
		if _, err := session.Run(ctx, constraintQuery, nil); err != nil {
			return fmt.Errorf("failed to create constraint: %w", err)
		}
	}
	return nil
}

// Stats returns entity and relation counts by kind.
func (n *Neo4jDriver) Stats(ctx context.Context) (*GraphStats, error) {
	session := n.session(ctx)
	defer session.Close(ctx)

	stats := &GraphStats{
		Entities:    map[types.EntityKind]int64{},
		Relations:   map[types.RelationKind]int64{},
		LastUpdated: time.Now().UTC(),
	}

	_, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, kind := range []types.EntityKind{types.KindMovie, types.KindActor, types.KindDirector} {
			res, err := tx.Run(ctx, fmt.Sprintf("MATCH (n:%s) RETURN count(n) AS c", kind), nil)
			if err != nil {
				return nil, err
			}
			record, err := res.Single(ctx)
			if err != nil {
				return nil, err
			}
			c, _ := record.Get("c")
			stats.Entities[kind] = asInt64(c)
		}
		for _, rel := range []types.RelationKind{types.RelActedIn, types.RelDirected, types.RelCooperatedWith} {
			res, err := tx.Run(ctx, fmt.Sprintf("MATCH ()-[r:%s]->() RETURN count(r) AS c", rel), nil)
			if err != nil {
				return nil, err
			}
			record, err := res.Single(ctx)
			if err != nil {
				return nil, err
			}
			c, _ := record.Get("c")
			stats.Relations[rel] = asInt64(c)
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// Ping checks connectivity to the Neo4j server.
func (n *Neo4jDriver) Ping(ctx context.Context) error {
	if err := n.client.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("%w: %v", types.ErrStorageUnavailable, err)
	}
	return nil
}

func (n *Neo4jDriver) Provider() GraphProvider { return GraphProviderNeo4j }

// Close releases the underlying connection pool.
func (n *Neo4jDriver) Close(ctx context.Context) error {
	return n.client.Close(ctx)
}

// collectEntities runs a read query returning nodes under alias "n" and
// maps them to typed entities of the given kind.
func (n *Neo4jDriver) collectEntities(ctx context.Context, kind types.EntityKind, query string, params map[string]any) ([]types.Identifiable, error) {
	session := n.session(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, err
	}

	records := result.([]*db.Record)
	entities := make([]types.Identifiable, 0, len(records))
	for _, record := range records {
		entity, err := n.entityFromRecord(kind, record)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

func (n *Neo4jDriver) entityFromRecord(kind types.EntityKind, record *db.Record) (types.Identifiable, error) {
	value, found := record.Get("n")
	if !found {
		return nil, fmt.Errorf("record has no node column")
	}
	node, ok := value.(dbtype.Node)
	if !ok {
		return nil, fmt.Errorf("unexpected type for node: got %T, expected dbtype.Node", value)
	}

	key, _ := node.Props[kind.IdentityProperty()].(string)
	return types.EntityFromProperties(kind, key, node.Props), nil
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}
