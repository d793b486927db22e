package types

import "fmt"

// EntityKind identifies one of the three entity classes stored in the graph.
// It doubles as the node label in the backing graph store.
type EntityKind string

const (
	KindMovie    EntityKind = "Movie"
	KindActor    EntityKind = "Actor"
	KindDirector EntityKind = "Director"
)

// Valid reports whether k is one of the known entity kinds.
func (k EntityKind) Valid() bool {
	switch k {
	case KindMovie, KindActor, KindDirector:
		return true
	}
	return false
}

// IdentityProperty returns the property name that carries the identity key
// for this kind: "title" for movies, "name" for people.
func (k EntityKind) IdentityProperty() string {
	if k == KindMovie {
		return "title"
	}
	return "name"
}

// ParseEntityKind maps a lowercase search-type string ("movie", "actor",
// "director") to its EntityKind.
func ParseEntityKind(s string) (EntityKind, error) {
	switch s {
	case "movie":
		return KindMovie, nil
	case "actor":
		return KindActor, nil
	case "director":
		return KindDirector, nil
	}
	return "", fmt.Errorf("%w: unknown entity kind %q", ErrInvalidInput, s)
}

// RelationKind identifies one of the three relationship types. The source
// and target entity kinds are fixed by the relation kind.
type RelationKind string

const (
	RelActedIn        RelationKind = "ACTED_IN"        // Actor -> Movie
	RelDirected       RelationKind = "DIRECTED"        // Director -> Movie
	RelCooperatedWith RelationKind = "COOPERATED_WITH" // Actor -> Director, derived
)

// SourceKind returns the entity kind a relation of this kind originates from.
func (r RelationKind) SourceKind() EntityKind {
	if r == RelDirected {
		return KindDirector
	}
	return KindActor
}

// TargetKind returns the entity kind a relation of this kind points at.
func (r RelationKind) TargetKind() EntityKind {
	if r == RelCooperatedWith {
		return KindDirector
	}
	return KindMovie
}

// Valid reports whether r is one of the known relation kinds.
func (r RelationKind) Valid() bool {
	switch r {
	case RelActedIn, RelDirected, RelCooperatedWith:
		return true
	}
	return false
}

// Relation is a directed edge between two entities, identified by its
// (source, kind, target) triple. Relations carry no properties; applying
// the same relation twice is a no-op.
type Relation struct {
	Kind   RelationKind `json:"kind"`
	Source string       `json:"source"` // identity key of the source entity
	Target string       `json:"target"` // identity key of the target entity
}

// Key returns the dedupe key for the relation triple.
func (r Relation) Key() string {
	return string(r.Kind) + "\x00" + r.Source + "\x00" + r.Target
}

func (r Relation) String() string {
	return fmt.Sprintf("(%s)-[%s]->(%s)", r.Source, r.Kind, r.Target)
}
