package ingest

import "github.com/cinegraph/cinegraph/pkg/types"

// DeriveRelations computes the complete edge set for one movie from its
// delimited cast and crew fields:
//
//   - one ACTED_IN edge per cast name,
//   - one DIRECTED edge per crew name,
//   - one COOPERATED_WITH edge per (actor, director) pair on the movie.
//
// The result is a set: repeated names collapse to a single edge, and the
// same inputs always yield the same edges. Empty or missing fields yield
// zero edges of that kind.
func DeriveRelations(title, castField, crewField string) []types.Relation {
	actors := SplitNames(castField)
	directors := SplitNames(crewField)

	relations := make([]types.Relation, 0, len(actors)+len(directors)+len(actors)*len(directors))
	seen := make(map[string]struct{})

	add := func(rel types.Relation) {
		if _, dup := seen[rel.Key()]; dup {
			return
		}
		seen[rel.Key()] = struct{}{}
		relations = append(relations, rel)
	}

	for _, actor := range actors {
		add(types.Relation{Kind: types.RelActedIn, Source: actor, Target: title})
	}
	for _, director := range directors {
		add(types.Relation{Kind: types.RelDirected, Source: director, Target: title})
	}
	for _, actor := range actors {
		for _, director := range directors {
			add(types.Relation{Kind: types.RelCooperatedWith, Source: actor, Target: director})
		}
	}
	return relations
}
