package cinegraph_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinegraph/cinegraph"
	"github.com/cinegraph/cinegraph/pkg/types"
)

func seedGraph(t *testing.T, client *cinegraph.Client) {
	t.Helper()
	ctx := context.Background()

	movies := []*types.Movie{
		{Title: "霸王别姬", ReleaseDate: "1993-01-01"},
		{Title: "阿飞正传", ReleaseDate: "1990-12-15"},
		{Title: "风月", ReleaseDate: "1996-06-13"},
		{Title: "未定档", ReleaseDate: ""},
	}
	for _, m := range movies {
		require.NoError(t, client.CreateMovie(ctx, m))
	}
	for _, name := range []string{"张国荣", "张丰毅"} {
		require.NoError(t, client.CreateActor(ctx, &types.Actor{Name: name}))
	}
	for _, name := range []string{"陈凯歌", "王家卫"} {
		require.NoError(t, client.CreateDirector(ctx, &types.Director{Name: name}))
	}

	links := []struct{ director, movie string }{
		{"陈凯歌", "霸王别姬"},
		{"陈凯歌", "风月"},
		{"王家卫", "阿飞正传"},
	}
	for _, l := range links {
		require.NoError(t, client.AddDirectorToMovie(ctx, l.director, l.movie))
	}
	for _, movie := range []string{"霸王别姬", "阿飞正传", "风月", "未定档"} {
		require.NoError(t, client.AddActorToMovie(ctx, "张国荣", movie))
	}
	require.NoError(t, client.AddActorToMovie(ctx, "张丰毅", "霸王别姬"))
}

func movieTitles(movies []*types.Movie) []string {
	titles := make([]string, 0, len(movies))
	for _, m := range movies {
		titles = append(titles, m.Title)
	}
	return titles
}

func TestActorFilmography(t *testing.T) {
	client := newTestClient(t)
	seedGraph(t, client)
	ctx := context.Background()

	t.Run("newest first, unknown dates last", func(t *testing.T) {
		result, err := client.ActorFilmography(ctx, "张国荣")
		require.NoError(t, err)
		assert.Equal(t, []string{"风月", "霸王别姬", "阿飞正传", "未定档"}, movieTitles(result.Movies))
	})

	t.Run("unknown actor", func(t *testing.T) {
		_, err := client.ActorFilmography(ctx, "nope")
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("actor without movies gets empty list", func(t *testing.T) {
		require.NoError(t, client.CreateActor(ctx, &types.Actor{Name: "新人"}))

		result, err := client.ActorFilmography(ctx, "新人")
		require.NoError(t, err)
		assert.Empty(t, result.Movies)
	})
}

func TestFilmographyTieBreak(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.CreateActor(ctx, &types.Actor{Name: "a"}))
	for _, title := range []string{"b-film", "a-film", "c-film"} {
		require.NoError(t, client.CreateMovie(ctx, &types.Movie{Title: title, ReleaseDate: "2000-01-01"}))
		require.NoError(t, client.AddActorToMovie(ctx, "a", title))
	}

	result, err := client.ActorFilmography(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"a-film", "b-film", "c-film"}, movieTitles(result.Movies))
}

func TestDirectorFilmography(t *testing.T) {
	client := newTestClient(t)
	seedGraph(t, client)

	result, err := client.DirectorFilmography(context.Background(), "陈凯歌")
	require.NoError(t, err)
	assert.Equal(t, []string{"风月", "霸王别姬"}, movieTitles(result.Movies))
}

func TestMovieCastAndCrew(t *testing.T) {
	client := newTestClient(t)
	seedGraph(t, client)
	ctx := context.Background()

	t.Run("cast sorted by name", func(t *testing.T) {
		result, err := client.MovieCast(ctx, "霸王别姬")
		require.NoError(t, err)
		require.Len(t, result.Actors, 2)
		assert.Equal(t, "张丰毅", result.Actors[0].Name)
		assert.Equal(t, "张国荣", result.Actors[1].Name)
	})

	t.Run("crew", func(t *testing.T) {
		result, err := client.MovieCrew(ctx, "霸王别姬")
		require.NoError(t, err)
		require.Len(t, result.Directors, 1)
		assert.Equal(t, "陈凯歌", result.Directors[0].Name)
	})

	t.Run("unknown movie", func(t *testing.T) {
		_, err := client.MovieCast(ctx, "nope")
		assert.ErrorIs(t, err, types.ErrNotFound)

		_, err = client.MovieCrew(ctx, "nope")
		assert.ErrorIs(t, err, types.ErrNotFound)
	})
}

func TestCollaborators(t *testing.T) {
	client := newTestClient(t)
	seedGraph(t, client)
	ctx := context.Background()

	t.Run("actor side", func(t *testing.T) {
		result, err := client.ActorCollaborators(ctx, "张国荣")
		require.NoError(t, err)
		require.Len(t, result.Directors, 2)
		assert.Equal(t, "王家卫", result.Directors[0].Name)
		assert.Equal(t, "陈凯歌", result.Directors[1].Name)
	})

	t.Run("director side is distinct", func(t *testing.T) {
		// 陈凯歌 worked with 张国荣 on two movies; the pair appears once.
		result, err := client.DirectorCollaborators(ctx, "陈凯歌")
		require.NoError(t, err)
		require.Len(t, result.Actors, 2)
		assert.Equal(t, "张丰毅", result.Actors[0].Name)
		assert.Equal(t, "张国荣", result.Actors[1].Name)
	})
}

func TestSearch(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	for _, name := range []string{"Smith", "Smithsonian", "John Smith", "Doe"} {
		require.NoError(t, client.CreateActor(ctx, &types.Actor{Name: name}))
	}

	t.Run("ranked tiers", func(t *testing.T) {
		results, err := client.Search(ctx, types.KindActor, "Smith")
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, "Smith", results[0].IdentityKey())
		assert.Equal(t, "Smithsonian", results[1].IdentityKey())
		assert.Equal(t, "John Smith", results[2].IdentityKey())
	})

	t.Run("empty query invalid", func(t *testing.T) {
		_, err := client.Search(ctx, types.KindActor, "   ")
		assert.ErrorIs(t, err, types.ErrInvalidInput)
	})

	t.Run("invalid kind", func(t *testing.T) {
		_, err := client.Search(ctx, types.EntityKind("studio"), "Smith")
		assert.ErrorIs(t, err, types.ErrInvalidInput)
	})

	t.Run("no matches", func(t *testing.T) {
		results, err := client.Search(ctx, types.KindActor, "zzz")
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestAutocomplete(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		require.NoError(t, client.CreateMovie(ctx, &types.Movie{Title: string(rune('a'+i)) + "-movie"}))
	}

	suggestions, err := client.Autocomplete(ctx, types.KindMovie, "movie")
	require.NoError(t, err)
	require.Len(t, suggestions, 10)
	assert.Equal(t, "a-movie", suggestions[0])
}

func TestClientStats(t *testing.T) {
	client := newTestClient(t)
	seedGraph(t, client)
	ctx := context.Background()

	stats, err := client.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.Entities[types.KindMovie])
	assert.Equal(t, int64(2), stats.Entities[types.KindActor])
	assert.Equal(t, int64(2), stats.Entities[types.KindDirector])
	assert.Equal(t, int64(5), stats.Relations[types.RelActedIn])
	assert.Equal(t, int64(3), stats.Relations[types.RelDirected])
	assert.Equal(t, int64(3), stats.Relations[types.RelCooperatedWith])

	require.NoError(t, client.Clear(ctx))
	stats, err = client.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Entities[types.KindMovie])
}
