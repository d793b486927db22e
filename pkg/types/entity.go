package types

import "strings"

// Identifiable is the shared capability of the three entity types: each
// exposes its kind and the identity key upsert operations are keyed on.
// Properties returns the non-identity attributes in the flat form the
// storage layer persists.
type Identifiable interface {
	EntityKind() EntityKind
	IdentityKey() string
	Properties() map[string]any
}

// Movie is an entity identified by its title.
type Movie struct {
	Title        string   `json:"title"`
	EnglishTitle string   `json:"english_title,omitempty"`
	Genres       []string `json:"genres"`
	ReleaseDate  string   `json:"release_date,omitempty"` // "YYYY-MM-DD" or "" when unknown
	CoverPath    string   `json:"cover_path,omitempty"`
}

func (m *Movie) EntityKind() EntityKind { return KindMovie }
func (m *Movie) IdentityKey() string    { return m.Title }

// Properties returns the scalar attributes. Genres are stored as a single
// comma-joined string, matching the source table format.
func (m *Movie) Properties() map[string]any {
	return map[string]any{
		"english_title": m.EnglishTitle,
		"genres":        strings.Join(m.Genres, ","),
		"release_date":  m.ReleaseDate,
		"cover_path":    m.CoverPath,
	}
}

// Actor is an entity identified by name. An Actor and a Director may share
// a name; they remain distinct entities.
type Actor struct {
	Name      string `json:"name"`
	PhotoPath string `json:"photo_path,omitempty"`
}

func (a *Actor) EntityKind() EntityKind { return KindActor }
func (a *Actor) IdentityKey() string    { return a.Name }
func (a *Actor) Properties() map[string]any {
	return map[string]any{"photo_path": a.PhotoPath}
}

// Director is an entity identified by name.
type Director struct {
	Name      string `json:"name"`
	PhotoPath string `json:"photo_path,omitempty"`
}

func (d *Director) EntityKind() EntityKind { return KindDirector }
func (d *Director) IdentityKey() string    { return d.Name }
func (d *Director) Properties() map[string]any {
	return map[string]any{"photo_path": d.PhotoPath}
}

// NewEntity returns an entity of the given kind with only the identity key
// set. Used by upsert paths that create missing endpoints.
func NewEntity(kind EntityKind, key string) Identifiable {
	switch kind {
	case KindMovie:
		return &Movie{Title: key}
	case KindDirector:
		return &Director{Name: key}
	default:
		return &Actor{Name: key}
	}
}

// EntityFromProperties rebuilds a typed entity from its stored identity key
// and property map. The type decision happens here, at the store boundary.
func EntityFromProperties(kind EntityKind, key string, props map[string]any) Identifiable {
	switch kind {
	case KindMovie:
		return &Movie{
			Title:        key,
			EnglishTitle: stringProp(props, "english_title"),
			Genres:       SplitGenres(stringProp(props, "genres")),
			ReleaseDate:  stringProp(props, "release_date"),
			CoverPath:    stringProp(props, "cover_path"),
		}
	case KindDirector:
		return &Director{Name: key, PhotoPath: stringProp(props, "photo_path")}
	default:
		return &Actor{Name: key, PhotoPath: stringProp(props, "photo_path")}
	}
}

// SplitGenres splits the stored comma-joined genre string into the ordered
// genre list, trimming whitespace and dropping empty items.
func SplitGenres(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	genres := make([]string, 0, len(parts))
	for _, p := range parts {
		if g := strings.TrimSpace(p); g != "" {
			genres = append(genres, g)
		}
	}
	return genres
}

func stringProp(props map[string]any, key string) string {
	if v, ok := props[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
