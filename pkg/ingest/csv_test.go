package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinegraph/cinegraph/pkg/types"
)

func TestReadMovieTable(t *testing.T) {
	t.Run("default headers", func(t *testing.T) {
		src := "中文名,英文名,类型,上映时间,演员,导演\n" +
			"霸王别姬,Farewell My Concubine,\"剧情,爱情\",1993-01-01,张国荣、张丰毅,陈凯歌\n"

		rows, err := ReadMovieTable(strings.NewReader(src), DefaultMovieColumns())
		require.NoError(t, err)
		require.Len(t, rows, 1)

		row := rows[0]
		assert.Equal(t, 1, row.Ordinal)
		assert.Equal(t, "霸王别姬", row.Title)
		assert.Equal(t, "Farewell My Concubine", row.EnglishTitle)
		assert.Equal(t, "剧情,爱情", row.GenresRaw)
		assert.Equal(t, "1993-01-01", row.ReleaseDateRaw)
		assert.Equal(t, "张国荣、张丰毅", row.CastRaw)
		assert.Equal(t, "陈凯歌", row.CrewRaw)
	})

	t.Run("utf-8 bom stripped", func(t *testing.T) {
		src := "\uFEFF中文名,演员,导演\n肖申克的救赎,蒂姆·罗宾斯,弗兰克·德拉邦特\n"

		rows, err := ReadMovieTable(strings.NewReader(src), DefaultMovieColumns())
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "肖申克的救赎", rows[0].Title)
	})

	t.Run("optional columns may be absent", func(t *testing.T) {
		src := "中文名\n霸王别姬\n"

		rows, err := ReadMovieTable(strings.NewReader(src), DefaultMovieColumns())
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "霸王别姬", rows[0].Title)
		assert.Empty(t, rows[0].EnglishTitle)
		assert.Empty(t, rows[0].CastRaw)
	})

	t.Run("missing identity column", func(t *testing.T) {
		src := "title,cast\nx,y\n"

		_, err := ReadMovieTable(strings.NewReader(src), DefaultMovieColumns())
		assert.ErrorIs(t, err, types.ErrInvalidInput)
	})

	t.Run("ragged rows tolerated", func(t *testing.T) {
		src := "中文名,英文名\n霸王别姬\n无间道,Infernal Affairs,extra\n"

		rows, err := ReadMovieTable(strings.NewReader(src), DefaultMovieColumns())
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Empty(t, rows[0].EnglishTitle)
		assert.Equal(t, "Infernal Affairs", rows[1].EnglishTitle)
	})

	t.Run("remapped headers", func(t *testing.T) {
		src := "title,actors\nFarewell,Leslie Cheung\n"
		cols := MovieColumns{Title: "title", Cast: "actors"}

		rows, err := ReadMovieTable(strings.NewReader(src), cols)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Farewell", rows[0].Title)
		assert.Equal(t, "Leslie Cheung", rows[0].CastRaw)
	})

	t.Run("empty stream", func(t *testing.T) {
		_, err := ReadMovieTable(strings.NewReader(""), DefaultMovieColumns())
		assert.ErrorIs(t, err, types.ErrInvalidInput)
	})
}

func TestReadPersonTable(t *testing.T) {
	t.Run("ordinals are 1-based", func(t *testing.T) {
		src := "姓名\n张国荣\n梁朝伟\n"

		rows, err := ReadPersonTable(strings.NewReader(src), DefaultPersonColumns())
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, 1, rows[0].Ordinal)
		assert.Equal(t, "张国荣", rows[0].Name)
		assert.Equal(t, 2, rows[1].Ordinal)
	})

	t.Run("missing name column", func(t *testing.T) {
		_, err := ReadPersonTable(strings.NewReader("name\nx\n"), DefaultPersonColumns())
		assert.ErrorIs(t, err, types.ErrInvalidInput)
	})
}
