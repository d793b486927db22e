package ingest_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinegraph/cinegraph/pkg/driver"
	"github.com/cinegraph/cinegraph/pkg/ingest"
	"github.com/cinegraph/cinegraph/pkg/types"
)

const (
	movieTable = "中文名,英文名,类型,上映时间,演员,导演\n" +
		"霸王别姬,Farewell My Concubine,\"剧情,爱情\",1993-01-01,张国荣、张丰毅,陈凯歌\n" +
		"阿飞正传,Days of Being Wild,剧情,未知上映时间,张国荣,王家卫\n"

	actorTable    = "姓名\n张国荣\n张丰毅\n"
	directorTable = "姓名\n陈凯歌\n王家卫\n"
)

func newTestImporter(t *testing.T, opts ingest.Options) (*ingest.Importer, *driver.BadgerDriver) {
	t.Helper()
	d, err := driver.NewBadgerDriver(filepath.Join(t.TempDir(), "import_test"))
	require.NoError(t, err)
	t.Cleanup(func() { d.Close(context.Background()) })
	return ingest.New(d, nil, opts), d
}

func testSource() ingest.Source {
	return ingest.Source{
		Movies:    strings.NewReader(movieTable),
		Actors:    strings.NewReader(actorTable),
		Directors: strings.NewReader(directorTable),
	}
}

func TestImportAll(t *testing.T) {
	imp, d := newTestImporter(t, ingest.Options{
		ActorPhotoDir:    "actors",
		DirectorPhotoDir: "directors",
		CoverDir:         "covers",
	})
	ctx := context.Background()

	report, err := imp.ImportAll(ctx, testSource())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Movies)
	assert.Equal(t, 2, report.Actors)
	assert.Equal(t, 2, report.Directors)
	assert.Zero(t, report.SkippedRows)

	t.Run("movie properties normalized", func(t *testing.T) {
		entity, err := d.GetEntity(ctx, types.KindMovie, "霸王别姬")
		require.NoError(t, err)
		movie := entity.(*types.Movie)
		assert.Equal(t, "Farewell My Concubine", movie.EnglishTitle)
		assert.Equal(t, []string{"剧情", "爱情"}, movie.Genres)
		assert.Equal(t, "1993-01-01", movie.ReleaseDate)
		assert.Equal(t, "covers/1_海报.jpg", movie.CoverPath)
	})

	t.Run("unknown release date stored empty", func(t *testing.T) {
		entity, err := d.GetEntity(ctx, types.KindMovie, "阿飞正传")
		require.NoError(t, err)
		assert.Empty(t, entity.(*types.Movie).ReleaseDate)
	})

	t.Run("ordinal photo paths", func(t *testing.T) {
		entity, err := d.GetEntity(ctx, types.KindActor, "张丰毅")
		require.NoError(t, err)
		assert.Equal(t, "actors/2.jpg", entity.(*types.Actor).PhotoPath)

		entity, err = d.GetEntity(ctx, types.KindDirector, "王家卫")
		require.NoError(t, err)
		assert.Equal(t, "directors/2.jpg", entity.(*types.Director).PhotoPath)
	})

	t.Run("relations derived", func(t *testing.T) {
		movies, err := d.MoviesByPerson(ctx, types.KindActor, "张国荣")
		require.NoError(t, err)
		assert.Len(t, movies, 2)

		directors, err := d.CollaboratorsOf(ctx, types.KindActor, "张国荣")
		require.NoError(t, err)
		assert.Len(t, directors, 2)

		actors, err := d.CollaboratorsOf(ctx, types.KindDirector, "陈凯歌")
		require.NoError(t, err)
		assert.Len(t, actors, 2)
	})
}

func TestImportAllIdempotent(t *testing.T) {
	imp, d := newTestImporter(t, ingest.Options{})
	ctx := context.Background()

	_, err := imp.ImportAll(ctx, testSource())
	require.NoError(t, err)

	before, err := d.Stats(ctx)
	require.NoError(t, err)

	_, err = imp.ImportAll(ctx, testSource())
	require.NoError(t, err)

	after, err := d.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, before.Entities, after.Entities)
	assert.Equal(t, before.Relations, after.Relations)
}

func TestImportAllSkipsRowsWithoutIdentity(t *testing.T) {
	imp, d := newTestImporter(t, ingest.Options{})
	ctx := context.Background()

	src := ingest.Source{
		Movies: strings.NewReader("中文名,演员\n,张国荣\n霸王别姬,张国荣\n"),
		Actors: strings.NewReader("姓名\n\n张国荣\n"),
	}
	report, err := imp.ImportAll(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Movies)
	assert.Equal(t, 1, report.Actors)
	assert.Equal(t, 2, report.SkippedRows)

	movies, err := d.ListEntities(ctx, types.KindMovie)
	require.NoError(t, err)
	assert.Len(t, movies, 1)
}

func TestImportAllMergesIntoExisting(t *testing.T) {
	imp, d := newTestImporter(t, ingest.Options{})
	ctx := context.Background()

	require.NoError(t, d.UpsertEntity(ctx, types.KindMovie, "无间道"))

	_, err := imp.ImportAll(ctx, testSource())
	require.NoError(t, err)

	// Merge keeps entities that are not in the source tables.
	_, err = d.GetEntity(ctx, types.KindMovie, "无间道")
	assert.NoError(t, err)
}

func TestReplace(t *testing.T) {
	imp, d := newTestImporter(t, ingest.Options{})
	ctx := context.Background()

	require.NoError(t, d.UpsertEntity(ctx, types.KindMovie, "无间道"))

	_, err := imp.Replace(ctx, testSource())
	require.NoError(t, err)

	_, err = d.GetEntity(ctx, types.KindMovie, "无间道")
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = d.GetEntity(ctx, types.KindMovie, "霸王别姬")
	assert.NoError(t, err)
}

func TestBulkImport(t *testing.T) {
	t.Run("matches row-at-a-time import", func(t *testing.T) {
		rowImp, rowDriver := newTestImporter(t, ingest.Options{CoverDir: "covers"})
		bulkImp, bulkDriver := newTestImporter(t, ingest.Options{CoverDir: "covers"})
		ctx := context.Background()

		_, err := rowImp.ImportAll(ctx, testSource())
		require.NoError(t, err)

		report, err := bulkImp.BulkImport(ctx, testSource())
		require.NoError(t, err)
		assert.Equal(t, 2, report.Movies)
		assert.Positive(t, report.Batches)

		rowStats, err := rowDriver.Stats(ctx)
		require.NoError(t, err)
		bulkStats, err := bulkDriver.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, rowStats.Entities, bulkStats.Entities)
		assert.Equal(t, rowStats.Relations, bulkStats.Relations)
	})

	t.Run("respects batch size", func(t *testing.T) {
		imp, _ := newTestImporter(t, ingest.Options{BatchSize: 1})

		report, err := imp.BulkImport(context.Background(), testSource())
		require.NoError(t, err)
		// One batch per row: 2 actors + 2 directors + 2 movies.
		assert.Equal(t, 6, report.Batches)
	})

	t.Run("cancellation surfaces as partial import", func(t *testing.T) {
		imp, _ := newTestImporter(t, ingest.Options{BatchSize: 1})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := imp.BulkImport(ctx, testSource())
		var partial *types.PartialImportError
		require.ErrorAs(t, err, &partial)
		assert.Zero(t, partial.CommittedBatches)
		assert.Equal(t, 1, partial.FailedBatch)
	})
}
