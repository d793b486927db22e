package driver_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinegraph/cinegraph/pkg/driver"
	"github.com/cinegraph/cinegraph/pkg/types"
)

// newTestDriver opens a badger driver in a temporary directory.
func newTestDriver(t *testing.T) *driver.BadgerDriver {
	t.Helper()
	d, err := driver.NewBadgerDriver(filepath.Join(t.TempDir(), "badger_test"))
	require.NoError(t, err)
	t.Cleanup(func() { d.Close(context.Background()) })
	return d
}

func TestBadgerUpsertEntity(t *testing.T) {
	d := newTestDriver(t)
	ctx := context.Background()

	t.Run("creates missing entity", func(t *testing.T) {
		require.NoError(t, d.UpsertEntity(ctx, types.KindActor, "张国荣"))

		entity, err := d.GetEntity(ctx, types.KindActor, "张国荣")
		require.NoError(t, err)
		assert.Equal(t, "张国荣", entity.IdentityKey())
	})

	t.Run("repeat upsert keeps properties", func(t *testing.T) {
		require.NoError(t, d.UpsertEntity(ctx, types.KindActor, "梁朝伟"))
		require.NoError(t, d.SetProperties(ctx, types.KindActor, "梁朝伟", map[string]any{"photo_path": "actors/3.jpg"}))

		require.NoError(t, d.UpsertEntity(ctx, types.KindActor, "梁朝伟"))

		entity, err := d.GetEntity(ctx, types.KindActor, "梁朝伟")
		require.NoError(t, err)
		actor := entity.(*types.Actor)
		assert.Equal(t, "actors/3.jpg", actor.PhotoPath)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		err := d.UpsertEntity(ctx, types.EntityKind("studio"), "x")
		assert.ErrorIs(t, err, types.ErrInvalidInput)

		err = d.UpsertEntity(ctx, types.KindActor, "")
		assert.ErrorIs(t, err, types.ErrInvalidInput)
	})
}

func TestBadgerConcurrentUpserts(t *testing.T) {
	d := newTestDriver(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- d.UpsertEntity(ctx, types.KindMovie, "霸王别姬")
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	movies, err := d.ListEntities(ctx, types.KindMovie)
	require.NoError(t, err)
	assert.Len(t, movies, 1)
}

func TestBadgerSetProperties(t *testing.T) {
	d := newTestDriver(t)
	ctx := context.Background()

	t.Run("missing entity", func(t *testing.T) {
		err := d.SetProperties(ctx, types.KindMovie, "nope", map[string]any{"english_title": "Nope"})
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("merges into existing properties", func(t *testing.T) {
		require.NoError(t, d.UpsertEntity(ctx, types.KindMovie, "无间道"))
		require.NoError(t, d.SetProperties(ctx, types.KindMovie, "无间道", map[string]any{
			"english_title": "Infernal Affairs",
		}))
		require.NoError(t, d.SetProperties(ctx, types.KindMovie, "无间道", map[string]any{
			"release_date": "2002-12-12",
		}))

		entity, err := d.GetEntity(ctx, types.KindMovie, "无间道")
		require.NoError(t, err)
		movie := entity.(*types.Movie)
		assert.Equal(t, "Infernal Affairs", movie.EnglishTitle)
		assert.Equal(t, "2002-12-12", movie.ReleaseDate)
	})
}

func TestBadgerRelations(t *testing.T) {
	d := newTestDriver(t)
	ctx := context.Background()

	rel := types.Relation{Kind: types.RelActedIn, Source: "张国荣", Target: "霸王别姬"}

	t.Run("creates missing endpoints", func(t *testing.T) {
		require.NoError(t, d.UpsertRelation(ctx, rel))

		_, err := d.GetEntity(ctx, types.KindActor, "张国荣")
		assert.NoError(t, err)
		_, err = d.GetEntity(ctx, types.KindMovie, "霸王别姬")
		assert.NoError(t, err)
	})

	t.Run("idempotent", func(t *testing.T) {
		require.NoError(t, d.UpsertRelation(ctx, rel))
		require.NoError(t, d.UpsertRelation(ctx, rel))

		movies, err := d.MoviesByPerson(ctx, types.KindActor, "张国荣")
		require.NoError(t, err)
		assert.Len(t, movies, 1)
	})

	t.Run("rejects empty endpoints", func(t *testing.T) {
		err := d.UpsertRelation(ctx, types.Relation{Kind: types.RelActedIn, Source: "", Target: "霸王别姬"})
		assert.ErrorIs(t, err, types.ErrInvalidInput)
	})
}

func TestBadgerTraversals(t *testing.T) {
	d := newTestDriver(t)
	ctx := context.Background()

	relations := []types.Relation{
		{Kind: types.RelActedIn, Source: "张国荣", Target: "霸王别姬"},
		{Kind: types.RelActedIn, Source: "张丰毅", Target: "霸王别姬"},
		{Kind: types.RelActedIn, Source: "张国荣", Target: "阿飞正传"},
		{Kind: types.RelDirected, Source: "陈凯歌", Target: "霸王别姬"},
		{Kind: types.RelCooperatedWith, Source: "张国荣", Target: "陈凯歌"},
		{Kind: types.RelCooperatedWith, Source: "张丰毅", Target: "陈凯歌"},
	}
	for _, rel := range relations {
		require.NoError(t, d.UpsertRelation(ctx, rel))
	}

	t.Run("movies by actor", func(t *testing.T) {
		movies, err := d.MoviesByPerson(ctx, types.KindActor, "张国荣")
		require.NoError(t, err)
		assert.Len(t, movies, 2)
	})

	t.Run("movies by director", func(t *testing.T) {
		movies, err := d.MoviesByPerson(ctx, types.KindDirector, "陈凯歌")
		require.NoError(t, err)
		require.Len(t, movies, 1)
		assert.Equal(t, "霸王别姬", movies[0].Title)
	})

	t.Run("persons by movie", func(t *testing.T) {
		actors, err := d.PersonsByMovie(ctx, "霸王别姬", types.RelActedIn)
		require.NoError(t, err)
		assert.Len(t, actors, 2)

		directors, err := d.PersonsByMovie(ctx, "霸王别姬", types.RelDirected)
		require.NoError(t, err)
		require.Len(t, directors, 1)
		assert.Equal(t, "陈凯歌", directors[0].IdentityKey())
	})

	t.Run("collaborators both directions", func(t *testing.T) {
		directors, err := d.CollaboratorsOf(ctx, types.KindActor, "张国荣")
		require.NoError(t, err)
		require.Len(t, directors, 1)
		assert.Equal(t, "陈凯歌", directors[0].IdentityKey())

		actors, err := d.CollaboratorsOf(ctx, types.KindDirector, "陈凯歌")
		require.NoError(t, err)
		assert.Len(t, actors, 2)
	})

	t.Run("no edges means empty result", func(t *testing.T) {
		require.NoError(t, d.UpsertEntity(ctx, types.KindActor, "王祖贤"))
		movies, err := d.MoviesByPerson(ctx, types.KindActor, "王祖贤")
		require.NoError(t, err)
		assert.Empty(t, movies)
	})
}

func TestBadgerDeleteEntity(t *testing.T) {
	d := newTestDriver(t)
	ctx := context.Background()

	require.NoError(t, d.UpsertRelation(ctx, types.Relation{Kind: types.RelActedIn, Source: "张国荣", Target: "霸王别姬"}))
	require.NoError(t, d.UpsertRelation(ctx, types.Relation{Kind: types.RelActedIn, Source: "张国荣", Target: "阿飞正传"}))
	require.NoError(t, d.UpsertRelation(ctx, types.Relation{Kind: types.RelDirected, Source: "陈凯歌", Target: "霸王别姬"}))

	t.Run("missing entity", func(t *testing.T) {
		err := d.DeleteEntity(ctx, types.KindMovie, "nope")
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("removes entity and its edges only", func(t *testing.T) {
		require.NoError(t, d.DeleteEntity(ctx, types.KindMovie, "霸王别姬"))

		_, err := d.GetEntity(ctx, types.KindMovie, "霸王别姬")
		assert.ErrorIs(t, err, types.ErrNotFound)

		// People survive; edges to the deleted movie are gone.
		movies, err := d.MoviesByPerson(ctx, types.KindActor, "张国荣")
		require.NoError(t, err)
		require.Len(t, movies, 1)
		assert.Equal(t, "阿飞正传", movies[0].Title)

		movies, err = d.MoviesByPerson(ctx, types.KindDirector, "陈凯歌")
		require.NoError(t, err)
		assert.Empty(t, movies)
	})
}

func TestBadgerFindEntities(t *testing.T) {
	d := newTestDriver(t)
	ctx := context.Background()

	for _, name := range []string{"John Smith", "Smith", "Smithsonian", "Jane Doe"} {
		require.NoError(t, d.UpsertEntity(ctx, types.KindActor, name))
	}

	t.Run("case-insensitive contains", func(t *testing.T) {
		found, err := d.FindEntities(ctx, types.KindActor, "smith")
		require.NoError(t, err)
		assert.Len(t, found, 3)
	})

	t.Run("no match", func(t *testing.T) {
		found, err := d.FindEntities(ctx, types.KindActor, "zzz")
		require.NoError(t, err)
		assert.Empty(t, found)
	})
}

func TestBadgerApplyBatchAndStats(t *testing.T) {
	d := newTestDriver(t)
	ctx := context.Background()

	batch := &driver.Batch{
		Entities: []driver.EntityWrite{
			{Kind: types.KindMovie, Key: "霸王别姬", Props: map[string]any{"release_date": "1993-01-01"}},
			{Kind: types.KindActor, Key: "张国荣"},
			{Kind: types.KindDirector, Key: "陈凯歌"},
		},
		Relations: []types.Relation{
			{Kind: types.RelActedIn, Source: "张国荣", Target: "霸王别姬"},
			{Kind: types.RelDirected, Source: "陈凯歌", Target: "霸王别姬"},
			{Kind: types.RelCooperatedWith, Source: "张国荣", Target: "陈凯歌"},
		},
	}
	require.NoError(t, d.ApplyBatch(ctx, batch))

	stats, err := d.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Entities[types.KindMovie])
	assert.Equal(t, int64(1), stats.Entities[types.KindActor])
	assert.Equal(t, int64(1), stats.Entities[types.KindDirector])
	assert.Equal(t, int64(1), stats.Relations[types.RelActedIn])
	assert.Equal(t, int64(1), stats.Relations[types.RelDirected])
	assert.Equal(t, int64(1), stats.Relations[types.RelCooperatedWith])

	t.Run("empty batch is a no-op", func(t *testing.T) {
		require.NoError(t, d.ApplyBatch(ctx, &driver.Batch{}))
	})

	t.Run("clear drops everything", func(t *testing.T) {
		require.NoError(t, d.Clear(ctx))

		stats, err := d.Stats(ctx)
		require.NoError(t, err)
		assert.Zero(t, stats.Entities[types.KindMovie])
		assert.Zero(t, stats.Relations[types.RelActedIn])
	})
}

func TestBadgerPing(t *testing.T) {
	d := newTestDriver(t)
	ctx := context.Background()

	assert.NoError(t, d.Ping(ctx))
	assert.Equal(t, driver.GraphProviderBadger, d.Provider())

	require.NoError(t, d.Close(ctx))
	assert.ErrorIs(t, d.Ping(ctx), types.ErrStorageUnavailable)
}
