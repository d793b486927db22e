package types

// Query result shapes. Each pairs the queried entity with its related
// entities so callers can distinguish "entity absent" (an error) from
// "entity present, empty relationship set" (an empty slice here).

// ActorFilmography holds an actor and the movies they acted in, sorted by
// release date descending (unknown dates last), then title ascending.
type ActorFilmography struct {
	Actor  *Actor   `json:"actor"`
	Movies []*Movie `json:"movies"`
}

// DirectorFilmography holds a director and the movies they directed, with
// the same ordering as ActorFilmography.
type DirectorFilmography struct {
	Director *Director `json:"director"`
	Movies   []*Movie  `json:"movies"`
}

// MovieCast holds a movie and its actors, sorted by name ascending.
type MovieCast struct {
	Movie  *Movie   `json:"movie"`
	Actors []*Actor `json:"actors"`
}

// MovieCrew holds a movie and its directors, sorted by name ascending.
type MovieCrew struct {
	Movie     *Movie      `json:"movie"`
	Directors []*Director `json:"directors"`
}

// ActorCollaborators holds an actor and the distinct directors they
// cooperated with, sorted by name ascending.
type ActorCollaborators struct {
	Actor     *Actor      `json:"actor"`
	Directors []*Director `json:"directors"`
}

// DirectorCollaborators holds a director and the distinct actors they
// cooperated with, sorted by name ascending.
type DirectorCollaborators struct {
	Director *Director `json:"director"`
	Actors   []*Actor  `json:"actors"`
}
