// Package ingest converts flat tabular movie/actor/director records into
// graph writes: normalized entities, ACTED_IN/DIRECTED edges, and the
// derived COOPERATED_WITH edges.
package ingest

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

// ListSeparator is the documented separator for multi-valued cast and crew
// fields: the ideographic comma (U+3001). It is distinct from the ASCII
// comma used inside the genre field. A full-width comma (U+FF0C) is
// accepted as an equivalent and normalized away.
const (
	ListSeparator      = "、"
	fullWidthComma     = "，"
	UnknownDateValue   = "未知上映时间"
	DefaultCoverSuffix = "海报"
)

var releaseDatePattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// NormalizeReleaseDate coerces a free-text release date to either a
// YYYY-MM-DD string or "" for "no release date". The unknown-date sentinel
// and anything without an embedded YYYY-MM-DD date normalize to "".
func NormalizeReleaseDate(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" || s == UnknownDateValue {
		return ""
	}
	return releaseDatePattern.FindString(s)
}

// SplitNames splits a delimited cast or crew field into trimmed, non-empty,
// de-duplicated names, preserving first-occurrence order. An empty field
// yields an empty slice, never an error.
func SplitNames(field string) []string {
	normalized := strings.ReplaceAll(field, fullWidthComma, ListSeparator)
	parts := strings.Split(normalized, ListSeparator)

	seen := make(map[string]struct{}, len(parts))
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		name := strings.TrimSpace(p)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// PersonPhotoPath derives the photo path for a person from their 1-based
// row ordinal in the source table. The ordinal-to-path mapping is the only
// link between a tabular record and its asset file; re-ordering the source
// table between runs changes which asset maps to which entity.
func PersonPhotoPath(dir string, ordinal int) string {
	return path.Join(dir, fmt.Sprintf("%d.jpg", ordinal))
}

// MovieCoverPath derives the cover path for a movie from its 1-based row
// ordinal. suffix defaults to DefaultCoverSuffix when empty.
func MovieCoverPath(dir string, ordinal int, suffix string) string {
	if suffix == "" {
		suffix = DefaultCoverSuffix
	}
	return path.Join(dir, fmt.Sprintf("%d_%s.jpg", ordinal, suffix))
}
