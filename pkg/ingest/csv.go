package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/cinegraph/cinegraph/pkg/types"
)

// MovieColumns names the movie-table columns by semantic role. The
// contract is column meaning, not literal header text; defaults match the
// source export.
type MovieColumns struct {
	Title        string
	EnglishTitle string
	Genres       string
	ReleaseDate  string
	Cast         string
	Crew         string
}

// DefaultMovieColumns returns the header names of the source movie table.
func DefaultMovieColumns() MovieColumns {
	return MovieColumns{
		Title:        "中文名",
		EnglishTitle: "英文名",
		Genres:       "类型",
		ReleaseDate:  "上映时间",
		Cast:         "演员",
		Crew:         "导演",
	}
}

// PersonColumns names the actor/director table columns by semantic role.
type PersonColumns struct {
	Name string
}

// DefaultPersonColumns returns the header names of the source people tables.
func DefaultPersonColumns() PersonColumns {
	return PersonColumns{Name: "姓名"}
}

// MovieRow is one raw movie record plus its 1-based position in the source
// table.
type MovieRow struct {
	Ordinal        int
	Title          string
	EnglishTitle   string
	GenresRaw      string
	ReleaseDateRaw string
	CastRaw        string
	CrewRaw        string
}

// PersonRow is one raw actor or director record plus its 1-based position.
type PersonRow struct {
	Ordinal int
	Name    string
}

// ReadMovieTable reads a movie CSV table. Rows are returned raw; field
// normalization happens during import so malformed rows can be skipped
// and logged instead of aborting the read.
func ReadMovieTable(r io.Reader, cols MovieColumns) ([]MovieRow, error) {
	records, header, err := readTable(r)
	if err != nil {
		return nil, err
	}

	titleIdx, ok := header[cols.Title]
	if !ok {
		return nil, fmt.Errorf("%w: movie table missing identity column %q", types.ErrInvalidInput, cols.Title)
	}

	rows := make([]MovieRow, 0, len(records))
	for i, record := range records {
		rows = append(rows, MovieRow{
			Ordinal:        i + 1,
			Title:          field(record, titleIdx),
			EnglishTitle:   field(record, columnIndex(header, cols.EnglishTitle)),
			GenresRaw:      field(record, columnIndex(header, cols.Genres)),
			ReleaseDateRaw: field(record, columnIndex(header, cols.ReleaseDate)),
			CastRaw:        field(record, columnIndex(header, cols.Cast)),
			CrewRaw:        field(record, columnIndex(header, cols.Crew)),
		})
	}
	return rows, nil
}

// ReadPersonTable reads an actor or director CSV table.
func ReadPersonTable(r io.Reader, cols PersonColumns) ([]PersonRow, error) {
	records, header, err := readTable(r)
	if err != nil {
		return nil, err
	}

	nameIdx, ok := header[cols.Name]
	if !ok {
		return nil, fmt.Errorf("%w: person table missing identity column %q", types.ErrInvalidInput, cols.Name)
	}

	rows := make([]PersonRow, 0, len(records))
	for i, record := range records {
		rows = append(rows, PersonRow{Ordinal: i + 1, Name: field(record, nameIdx)})
	}
	return rows, nil
}

// readTable parses a CSV stream into records plus a header-name index map.
// Tolerates a UTF-8 BOM and ragged rows.
func readTable(r io.Reader) ([][]string, map[string]int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read csv table: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%w: empty table", types.ErrInvalidInput)
	}

	header := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		if i == 0 {
			name = strings.TrimPrefix(name, "\uFEFF")
		}
		header[strings.TrimSpace(name)] = i
	}
	return records[1:], header, nil
}

// columnIndex returns the index of an optional column, or -1 when the
// table does not carry it.
func columnIndex(header map[string]int, name string) int {
	if idx, ok := header[name]; ok {
		return idx
	}
	return -1
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
