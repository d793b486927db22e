package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cinegraph/cinegraph/pkg/driver"
	"github.com/cinegraph/cinegraph/pkg/types"
)

// DefaultBatchSize is the reference batch size for bulk ingestion.
const DefaultBatchSize = 500

// Options configures an import run.
type Options struct {
	// BatchSize bounds each all-or-nothing unit in bulk mode.
	BatchSize int

	// Asset directories for ordinal-derived photo and cover paths.
	ActorPhotoDir    string
	DirectorPhotoDir string
	CoverDir         string
	CoverSuffix      string

	MovieColumns  MovieColumns
	PersonColumns PersonColumns
}

func (o *Options) withDefaults() {
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.CoverSuffix == "" {
		o.CoverSuffix = DefaultCoverSuffix
	}
	if o.MovieColumns == (MovieColumns{}) {
		o.MovieColumns = DefaultMovieColumns()
	}
	if o.PersonColumns == (PersonColumns{}) {
		o.PersonColumns = DefaultPersonColumns()
	}
}

// Source holds the three table streams of one import run. Any stream may
// be nil to skip that table.
type Source struct {
	Movies    io.Reader
	Actors    io.Reader
	Directors io.Reader
}

// Report summarizes an import run.
type Report struct {
	Movies      int           `json:"movies"`
	Actors      int           `json:"actors"`
	Directors   int           `json:"directors"`
	SkippedRows int           `json:"skipped_rows"`
	Batches     int           `json:"batches"`
	Elapsed     time.Duration `json:"elapsed"`
}

// Importer streams source tables into the graph. Both modes are
// idempotent: re-running against a non-empty store converges to the same
// graph, with last-writer-wins on scalar attributes of the same identity.
type Importer struct {
	driver driver.GraphDriver
	logger *slog.Logger
	opts   Options
}

// New creates an Importer over the given storage driver.
func New(d driver.GraphDriver, logger *slog.Logger, opts Options) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	opts.withDefaults()
	return &Importer{driver: d, logger: logger, opts: opts}
}

// ImportAll ingests all tables row-at-a-time, merging into whatever is
// already stored. People are imported before movies so their ordinal photo
// paths are in place when movie rows upsert them by name.
func (imp *Importer) ImportAll(ctx context.Context, src Source) (*Report, error) {
	start := time.Now()
	report := &Report{}

	if src.Actors != nil {
		if err := imp.importPersons(ctx, src.Actors, types.KindActor, imp.opts.ActorPhotoDir, report); err != nil {
			return report, err
		}
	}
	if src.Directors != nil {
		if err := imp.importPersons(ctx, src.Directors, types.KindDirector, imp.opts.DirectorPhotoDir, report); err != nil {
			return report, err
		}
	}
	if src.Movies != nil {
		if err := imp.importMovies(ctx, src.Movies, report); err != nil {
			return report, err
		}
	}

	report.Elapsed = time.Since(start)
	return report, nil
}

// Replace clears the graph and ingests all tables row-at-a-time. A failed
// clear leaves store state undefined; the run aborts.
func (imp *Importer) Replace(ctx context.Context, src Source) (*Report, error) {
	if err := imp.driver.Clear(ctx); err != nil {
		return nil, fmt.Errorf("failed to clear graph before import: %w", err)
	}
	return imp.ImportAll(ctx, src)
}

func (imp *Importer) importPersons(ctx context.Context, r io.Reader, kind types.EntityKind, photoDir string, report *Report) error {
	rows, err := ReadPersonTable(r, imp.opts.PersonColumns)
	if err != nil {
		return err
	}

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		if row.Name == "" {
			imp.logger.Warn("skipping person row without name", "kind", kind, "ordinal", row.Ordinal)
			report.SkippedRows++
			continue
		}

		if err := imp.driver.UpsertEntity(ctx, kind, row.Name); err != nil {
			return fmt.Errorf("failed to upsert %s %q: %w", kind, row.Name, err)
		}
		props := map[string]any{"photo_path": PersonPhotoPath(photoDir, row.Ordinal)}
		if err := imp.driver.SetProperties(ctx, kind, row.Name, props); err != nil {
			return fmt.Errorf("failed to set properties on %s %q: %w", kind, row.Name, err)
		}

		if kind == types.KindActor {
			report.Actors++
		} else {
			report.Directors++
		}
	}
	return nil
}

func (imp *Importer) importMovies(ctx context.Context, r io.Reader, report *Report) error {
	rows, err := ReadMovieTable(r, imp.opts.MovieColumns)
	if err != nil {
		return err
	}

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		if row.Title == "" {
			imp.logger.Warn("skipping movie row without title", "ordinal", row.Ordinal)
			report.SkippedRows++
			continue
		}

		if err := imp.driver.UpsertEntity(ctx, types.KindMovie, row.Title); err != nil {
			return fmt.Errorf("failed to upsert movie %q: %w", row.Title, err)
		}
		if err := imp.driver.SetProperties(ctx, types.KindMovie, row.Title, imp.movieProps(row)); err != nil {
			return fmt.Errorf("failed to set properties on movie %q: %w", row.Title, err)
		}
		for _, rel := range DeriveRelations(row.Title, row.CastRaw, row.CrewRaw) {
			if err := imp.driver.UpsertRelation(ctx, rel); err != nil {
				return fmt.Errorf("failed to merge relation %s: %w", rel, err)
			}
		}
		report.Movies++
	}
	return nil
}

func (imp *Importer) movieProps(row MovieRow) map[string]any {
	movie := types.Movie{
		Title:        row.Title,
		EnglishTitle: row.EnglishTitle,
		Genres:       types.SplitGenres(row.GenresRaw),
		ReleaseDate:  NormalizeReleaseDate(row.ReleaseDateRaw),
		CoverPath:    MovieCoverPath(imp.opts.CoverDir, row.Ordinal, imp.opts.CoverSuffix),
	}
	return movie.Properties()
}

// BulkImport clears the graph, ensures identity indexes exist, then applies
// each table in fixed-size all-or-nothing batches. A batch failure aborts
// the run and surfaces as PartialImportError; batches committed before it
// remain. Cancellation between batches leaves committed batches in place.
func (imp *Importer) BulkImport(ctx context.Context, src Source) (*Report, error) {
	start := time.Now()

	if err := imp.driver.Clear(ctx); err != nil {
		return nil, fmt.Errorf("failed to clear graph before bulk import: %w", err)
	}
	if err := imp.driver.CreateIndices(ctx); err != nil {
		return nil, fmt.Errorf("failed to create identity indexes: %w", err)
	}

	report := &Report{}
	var batches []*driver.Batch

	if src.Actors != nil {
		personBatches, err := imp.personBatches(src.Actors, types.KindActor, imp.opts.ActorPhotoDir, report)
		if err != nil {
			return report, err
		}
		batches = append(batches, personBatches...)
	}
	if src.Directors != nil {
		personBatches, err := imp.personBatches(src.Directors, types.KindDirector, imp.opts.DirectorPhotoDir, report)
		if err != nil {
			return report, err
		}
		batches = append(batches, personBatches...)
	}
	if src.Movies != nil {
		movieBatches, err := imp.movieBatches(src.Movies, report)
		if err != nil {
			return report, err
		}
		batches = append(batches, movieBatches...)
	}

	for i, batch := range batches {
		if err := ctx.Err(); err != nil {
			return report, &types.PartialImportError{CommittedBatches: i, FailedBatch: i + 1, Err: err}
		}
		if err := imp.driver.ApplyBatch(ctx, batch); err != nil {
			return report, &types.PartialImportError{CommittedBatches: i, FailedBatch: i + 1, Err: err}
		}
		report.Batches++
		imp.logger.Debug("batch committed", "batch", i+1, "of", len(batches))
	}

	report.Elapsed = time.Since(start)
	return report, nil
}

func (imp *Importer) personBatches(r io.Reader, kind types.EntityKind, photoDir string, report *Report) ([]*driver.Batch, error) {
	rows, err := ReadPersonTable(r, imp.opts.PersonColumns)
	if err != nil {
		return nil, err
	}

	var batches []*driver.Batch
	batch := &driver.Batch{}
	for _, row := range rows {
		if row.Name == "" {
			imp.logger.Warn("skipping person row without name", "kind", kind, "ordinal", row.Ordinal)
			report.SkippedRows++
			continue
		}
		batch.Entities = append(batch.Entities, driver.EntityWrite{
			Kind:  kind,
			Key:   row.Name,
			Props: map[string]any{"photo_path": PersonPhotoPath(photoDir, row.Ordinal)},
		})
		if kind == types.KindActor {
			report.Actors++
		} else {
			report.Directors++
		}
		if len(batch.Entities) >= imp.opts.BatchSize {
			batches = append(batches, batch)
			batch = &driver.Batch{}
		}
	}
	if !batch.Empty() {
		batches = append(batches, batch)
	}
	return batches, nil
}

func (imp *Importer) movieBatches(r io.Reader, report *Report) ([]*driver.Batch, error) {
	rows, err := ReadMovieTable(r, imp.opts.MovieColumns)
	if err != nil {
		return nil, err
	}

	var batches []*driver.Batch
	batch := &driver.Batch{}
	rowsInBatch := 0
	for _, row := range rows {
		if row.Title == "" {
			imp.logger.Warn("skipping movie row without title", "ordinal", row.Ordinal)
			report.SkippedRows++
			continue
		}
		batch.Entities = append(batch.Entities, driver.EntityWrite{
			Kind:  types.KindMovie,
			Key:   row.Title,
			Props: imp.movieProps(row),
		})
		batch.Relations = append(batch.Relations, DeriveRelations(row.Title, row.CastRaw, row.CrewRaw)...)
		report.Movies++
		rowsInBatch++
		if rowsInBatch >= imp.opts.BatchSize {
			batches = append(batches, batch)
			batch = &driver.Batch{}
			rowsInBatch = 0
		}
	}
	if !batch.Empty() {
		batches = append(batches, batch)
	}
	return batches, nil
}
