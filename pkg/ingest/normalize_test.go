package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeReleaseDate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain date", "1993-01-01", "1993-01-01"},
		{"date with region suffix", "1993-01-01(中国香港)", "1993-01-01"},
		{"date embedded in text", "上映于1994-09-10，经典", "1994-09-10"},
		{"unknown sentinel", "未知上映时间", ""},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"year only", "1993", ""},
		{"year and month only", "1993-01", ""},
		{"garbage", "someday", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeReleaseDate(tt.raw))
		})
	}
}

func TestSplitNames(t *testing.T) {
	tests := []struct {
		name  string
		field string
		want  []string
	}{
		{"ideographic comma", "张国荣、张丰毅、巩俐", []string{"张国荣", "张丰毅", "巩俐"}},
		{"full-width comma normalized", "张国荣，张丰毅", []string{"张国荣", "张丰毅"}},
		{"mixed separators", "张国荣、张丰毅，巩俐", []string{"张国荣", "张丰毅", "巩俐"}},
		{"single name", "陈凯歌", []string{"陈凯歌"}},
		{"duplicates collapse", "张国荣、张国荣", []string{"张国荣"}},
		{"surrounding whitespace trimmed", " 张国荣 、 张丰毅 ", []string{"张国荣", "张丰毅"}},
		{"empty segments dropped", "张国荣、、张丰毅、", []string{"张国荣", "张丰毅"}},
		{"empty field", "", []string{}},
		{"ascii comma is not a separator", "Smith, John", []string{"Smith, John"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitNames(tt.field))
		})
	}
}

func TestAssetPaths(t *testing.T) {
	assert.Equal(t, "actors/1.jpg", PersonPhotoPath("actors", 1))
	assert.Equal(t, "directors/12.jpg", PersonPhotoPath("directors", 12))
	assert.Equal(t, "3.jpg", PersonPhotoPath("", 3))

	assert.Equal(t, "covers/1_海报.jpg", MovieCoverPath("covers", 1, ""))
	assert.Equal(t, "covers/7_poster.jpg", MovieCoverPath("covers", 7, "poster"))
}
