package driver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/cinegraph/cinegraph/pkg/types"
)

// BadgerDriver implements the GraphDriver interface on an embedded Badger
// key-value store. It needs no external service, which makes it the
// default driver and the one the test suite runs against.
//
// Key layout (segments joined by 0x00):
//
//	n <kind> <identity>          -> JSON property map
//	f <rel> <source> <target>    -> empty (forward edge index)
//	r <rel> <target> <source>    -> empty (reverse edge index)
//
// Every edge is stored under both indexes so traversals in either
// direction are single prefix scans.
type BadgerDriver struct {
	db *badger.DB
}

const badgerKeySep = "\x00"

var emptyProps = []byte("{}")

// NewBadgerDriver opens (or creates) a Badger database at path.
func NewBadgerDriver(path string) (*BadgerDriver, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store: %w", err)
	}
	return &BadgerDriver{db: db}, nil
}

func badgerKey(segments ...string) []byte {
	return []byte(strings.Join(segments, badgerKeySep))
}

func nodeKey(kind types.EntityKind, key string) []byte {
	return badgerKey("n", string(kind), key)
}

func fwdEdgeKey(rel types.RelationKind, source, target string) []byte {
	return badgerKey("f", string(rel), source, target)
}

func revEdgeKey(rel types.RelationKind, target, source string) []byte {
	return badgerKey("r", string(rel), target, source)
}

// update runs fn in a read-write transaction, retrying on optimistic
// conflicts so concurrent upserts of the same identity converge instead of
// failing.
func (b *BadgerDriver) update(fn func(txn *badger.Txn) error) error {
	for {
		err := b.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
}

func upsertNodeTxn(txn *badger.Txn, kind types.EntityKind, key string) error {
	k := nodeKey(kind, key)
	_, err := txn.Get(k)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return txn.Set(k, emptyProps)
	}
	return err
}

func setPropsTxn(txn *badger.Txn, kind types.EntityKind, key string, props map[string]any) error {
	k := nodeKey(kind, key)
	item, err := txn.Get(k)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("%s %q: %w", kind, key, types.ErrNotFound)
	}
	if err != nil {
		return err
	}

	existing := map[string]any{}
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &existing)
	}); err != nil {
		return err
	}
	for name, value := range props {
		existing[name] = value
	}

	raw, err := json.Marshal(existing)
	if err != nil {
		return err
	}
	return txn.Set(k, raw)
}

func putRelationTxn(txn *badger.Txn, rel types.Relation) error {
	if err := upsertNodeTxn(txn, rel.Kind.SourceKind(), rel.Source); err != nil {
		return err
	}
	if err := upsertNodeTxn(txn, rel.Kind.TargetKind(), rel.Target); err != nil {
		return err
	}
	if err := txn.Set(fwdEdgeKey(rel.Kind, rel.Source, rel.Target), nil); err != nil {
		return err
	}
	return txn.Set(revEdgeKey(rel.Kind, rel.Target, rel.Source), nil)
}

// UpsertEntity creates the entity if absent; an existing entity keeps its
// properties.
func (b *BadgerDriver) UpsertEntity(ctx context.Context, kind types.EntityKind, key string) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: entity kind %q", types.ErrInvalidInput, kind)
	}
	if key == "" {
		return fmt.Errorf("%w: empty identity key", types.ErrInvalidInput)
	}
	return b.update(func(txn *badger.Txn) error {
		return upsertNodeTxn(txn, kind, key)
	})
}

// SetProperties replaces the named properties on an existing entity.
func (b *BadgerDriver) SetProperties(ctx context.Context, kind types.EntityKind, key string, props map[string]any) error {
	return b.update(func(txn *badger.Txn) error {
		return setPropsTxn(txn, kind, key, props)
	})
}

// GetEntity retrieves an entity by its identity key.
func (b *BadgerDriver) GetEntity(ctx context.Context, kind types.EntityKind, key string) (types.Identifiable, error) {
	var entity types.Identifiable
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(nodeKey(kind, key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%s %q: %w", kind, key, types.ErrNotFound)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			props := map[string]any{}
			if err := json.Unmarshal(val, &props); err != nil {
				return err
			}
			entity = types.EntityFromProperties(kind, key, props)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return entity, nil
}

// ListEntities returns all entities of the kind, in key order.
func (b *BadgerDriver) ListEntities(ctx context.Context, kind types.EntityKind) ([]types.Identifiable, error) {
	var entities []types.Identifiable
	err := b.db.View(func(txn *badger.Txn) error {
		prefix := badgerKey("n", string(kind), "")
		it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix, PrefetchValues: true})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := string(item.Key()[len(prefix):])
			if err := item.Value(func(val []byte) error {
				props := map[string]any{}
				if err := json.Unmarshal(val, &props); err != nil {
					return err
				}
				entities = append(entities, types.EntityFromProperties(kind, key, props))
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entities, nil
}

// DeleteEntity removes the entity and every edge touching it.
func (b *BadgerDriver) DeleteEntity(ctx context.Context, kind types.EntityKind, key string) error {
	return b.update(func(txn *badger.Txn) error {
		k := nodeKey(kind, key)
		if _, err := txn.Get(k); errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%s %q: %w", kind, key, types.ErrNotFound)
		} else if err != nil {
			return err
		}

		doomed := [][]byte{k}
		for _, rel := range []types.RelationKind{types.RelActedIn, types.RelDirected, types.RelCooperatedWith} {
			if rel.SourceKind() == kind {
				doomed = append(doomed, edgePairsTxn(txn, badgerKey("f", string(rel), key, ""), rel, false)...)
			}
			if rel.TargetKind() == kind {
				doomed = append(doomed, edgePairsTxn(txn, badgerKey("r", string(rel), key, ""), rel, true)...)
			}
		}
		for _, dk := range doomed {
			if err := txn.Delete(dk); err != nil {
				return err
			}
		}
		return nil
	})
}

// edgePairsTxn scans one edge-index prefix and returns both index keys of
// every matching edge. reverse indicates the prefix is on the "r" index.
func edgePairsTxn(txn *badger.Txn, prefix []byte, rel types.RelationKind, reverse bool) [][]byte {
	var keys [][]byte
	it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix})
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		found := it.Item().KeyCopy(nil)
		segments := bytes.Split(found, []byte(badgerKeySep))
		if len(segments) != 4 {
			continue
		}
		a, z := string(segments[2]), string(segments[3])
		keys = append(keys, found)
		if reverse {
			keys = append(keys, fwdEdgeKey(rel, z, a))
		} else {
			keys = append(keys, revEdgeKey(rel, z, a))
		}
	}
	return keys
}

// UpsertRelation merges the relation, creating missing endpoints.
func (b *BadgerDriver) UpsertRelation(ctx context.Context, rel types.Relation) error {
	if !rel.Kind.Valid() {
		return fmt.Errorf("%w: relation kind %q", types.ErrInvalidInput, rel.Kind)
	}
	if rel.Source == "" || rel.Target == "" {
		return fmt.Errorf("%w: relation endpoints must be non-empty", types.ErrInvalidInput)
	}
	return b.update(func(txn *badger.Txn) error {
		return putRelationTxn(txn, rel)
	})
}

// MoviesByPerson returns the movies linked to the named actor or director.
func (b *BadgerDriver) MoviesByPerson(ctx context.Context, kind types.EntityKind, name string) ([]*types.Movie, error) {
	rel := types.RelActedIn
	if kind == types.KindDirector {
		rel = types.RelDirected
	}

	titles, err := b.scanEdgeEndpoints(badgerKey("f", string(rel), name, ""))
	if err != nil {
		return nil, err
	}

	movies := make([]*types.Movie, 0, len(titles))
	for _, title := range titles {
		entity, err := b.GetEntity(ctx, types.KindMovie, title)
		if err != nil {
			return nil, err
		}
		movies = append(movies, entity.(*types.Movie))
	}
	return movies, nil
}

// PersonsByMovie returns the actors or directors of the titled movie.
func (b *BadgerDriver) PersonsByMovie(ctx context.Context, title string, rel types.RelationKind) ([]types.Identifiable, error) {
	names, err := b.scanEdgeEndpoints(badgerKey("r", string(rel), title, ""))
	if err != nil {
		return nil, err
	}
	return b.loadEntities(ctx, rel.SourceKind(), names)
}

// CollaboratorsOf returns the distinct COOPERATED_WITH endpoints for the
// named person.
func (b *BadgerDriver) CollaboratorsOf(ctx context.Context, kind types.EntityKind, name string) ([]types.Identifiable, error) {
	var prefix []byte
	resultKind := types.KindDirector
	if kind == types.KindDirector {
		resultKind = types.KindActor
		prefix = badgerKey("r", string(types.RelCooperatedWith), name, "")
	} else {
		prefix = badgerKey("f", string(types.RelCooperatedWith), name, "")
	}

	names, err := b.scanEdgeEndpoints(prefix)
	if err != nil {
		return nil, err
	}
	return b.loadEntities(ctx, resultKind, names)
}

// FindEntities returns all entities whose identity contains the query,
// case-insensitively.
func (b *BadgerDriver) FindEntities(ctx context.Context, kind types.EntityKind, query string) ([]types.Identifiable, error) {
	all, err := b.ListEntities(ctx, kind)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	matched := all[:0]
	for _, e := range all {
		if strings.Contains(strings.ToLower(e.IdentityKey()), needle) {
			matched = append(matched, e)
		}
	}
	return matched, nil
}

// ApplyBatch applies the whole batch in one transaction.
func (b *BadgerDriver) ApplyBatch(ctx context.Context, batch *Batch) error {
	if batch.Empty() {
		return nil
	}
	return b.update(func(txn *badger.Txn) error {
		for _, e := range batch.Entities {
			if err := upsertNodeTxn(txn, e.Kind, e.Key); err != nil {
				return err
			}
			if len(e.Props) > 0 {
				if err := setPropsTxn(txn, e.Kind, e.Key, e.Props); err != nil {
					return err
				}
			}
		}
		for _, rel := range batch.Relations {
			if err := putRelationTxn(txn, rel); err != nil {
				return err
			}
		}
		return nil
	})
}

// Clear drops every key in the store.
func (b *BadgerDriver) Clear(ctx context.Context) error {
	return b.db.DropAll()
}

// CreateIndices is a no-op: the key layout is the index.
func (b *BadgerDriver) CreateIndices(ctx context.Context) error { return nil }

// Stats returns entity and relation counts by kind.
func (b *BadgerDriver) Stats(ctx context.Context) (*GraphStats, error) {
	stats := &GraphStats{
		Entities:    map[types.EntityKind]int64{},
		Relations:   map[types.RelationKind]int64{},
		LastUpdated: time.Now().UTC(),
	}
	err := b.db.View(func(txn *badger.Txn) error {
		for _, kind := range []types.EntityKind{types.KindMovie, types.KindActor, types.KindDirector} {
			stats.Entities[kind] = countPrefixTxn(txn, badgerKey("n", string(kind), ""))
		}
		for _, rel := range []types.RelationKind{types.RelActedIn, types.RelDirected, types.RelCooperatedWith} {
			stats.Relations[rel] = countPrefixTxn(txn, badgerKey("f", string(rel), ""))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func countPrefixTxn(txn *badger.Txn, prefix []byte) int64 {
	it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix})
	defer it.Close()

	var n int64
	for it.Rewind(); it.Valid(); it.Next() {
		n++
	}
	return n
}

// Ping reports whether the store is open.
func (b *BadgerDriver) Ping(ctx context.Context) error {
	if b.db.IsClosed() {
		return fmt.Errorf("%w: badger store is closed", types.ErrStorageUnavailable)
	}
	return nil
}

func (b *BadgerDriver) Provider() GraphProvider { return GraphProviderBadger }

// Close flushes and closes the store.
func (b *BadgerDriver) Close(ctx context.Context) error {
	return b.db.Close()
}

// scanEdgeEndpoints returns the final key segment of every edge-index
// entry under prefix.
func (b *BadgerDriver) scanEdgeEndpoints(prefix []byte) ([]string, error) {
	var endpoints []string
	err := b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			endpoints = append(endpoints, string(it.Item().Key()[len(prefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return endpoints, nil
}

func (b *BadgerDriver) loadEntities(ctx context.Context, kind types.EntityKind, keys []string) ([]types.Identifiable, error) {
	entities := make([]types.Identifiable, 0, len(keys))
	for _, key := range keys {
		entity, err := b.GetEntity(ctx, kind, key)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}
