package dto

import (
	"time"

	"github.com/cinegraph/cinegraph/pkg/driver"
)

// FilmographyResponse lists the movies a person worked on.
type FilmographyResponse struct {
	Name   string          `json:"name"`
	Movies []MovieResponse `json:"movies"`
}

// CastResponse lists the people attached to a movie.
type CastResponse struct {
	Title  string           `json:"title"`
	People []PersonResponse `json:"people"`
}

// CollaboratorsResponse lists the people a person has cooperated with.
type CollaboratorsResponse struct {
	Name          string           `json:"name"`
	Collaborators []PersonResponse `json:"collaborators"`
}

// SearchResponse is the payload for search and autocomplete results.
type SearchResponse struct {
	Query   string `json:"query"`
	Results []any  `json:"results"`
}

// StatsResponse reports entity and relationship counts.
type StatsResponse struct {
	Entities    map[string]int64 `json:"entities"`
	Relations   map[string]int64 `json:"relations"`
	LastUpdated time.Time        `json:"last_updated"`
}

// NewStatsResponse converts graph stats to their response shape.
func NewStatsResponse(s *driver.GraphStats) StatsResponse {
	out := StatsResponse{
		Entities:    make(map[string]int64, len(s.Entities)),
		Relations:   make(map[string]int64, len(s.Relations)),
		LastUpdated: s.LastUpdated,
	}
	for kind, n := range s.Entities {
		out.Entities[string(kind)] = n
	}
	for kind, n := range s.Relations {
		out.Relations[string(kind)] = n
	}
	return out
}
