package cinegraph

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cinegraph/cinegraph/pkg/config"
	"github.com/cinegraph/cinegraph/pkg/ingest"
	"github.com/cinegraph/cinegraph/pkg/types"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import CSV tables into the graph store",
	Long: `Import the movie, actor and director CSV tables into the graph store.

Modes:
  replace  clear the graph, then import row by row (default)
  merge    upsert rows into the existing graph
  bulk     clear the graph, create indexes, then import in batched writes`,
	RunE: runImport,
}

var importMode string

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(&importMode, "mode", "replace", "Import mode (replace, merge, bulk)")
	importCmd.Flags().String("movies", "", "Path to the movie CSV table")
	importCmd.Flags().String("actors", "", "Path to the actor CSV table")
	importCmd.Flags().String("directors", "", "Path to the director CSV table")

	importCmd.Flags().String("db-driver", "badger", "Database driver (badger, neo4j)")
	importCmd.Flags().String("db-uri", "./cinegraph_db", "Database URI/path")
	importCmd.Flags().String("db-username", "", "Database username (not used for badger)")
	importCmd.Flags().String("db-password", "", "Database password (not used for badger)")
	importCmd.Flags().String("db-database", "", "Database name (not used for badger)")
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.Flags().Changed("movies") {
		cfg.Import.MoviesCSV, _ = cmd.Flags().GetString("movies")
	}
	if cmd.Flags().Changed("actors") {
		cfg.Import.ActorsCSV, _ = cmd.Flags().GetString("actors")
	}
	if cmd.Flags().Changed("directors") {
		cfg.Import.DirectorsCSV, _ = cmd.Flags().GetString("directors")
	}
	if cmd.Flags().Changed("db-driver") {
		cfg.Database.Driver, _ = cmd.Flags().GetString("db-driver")
	}
	if cmd.Flags().Changed("db-uri") {
		cfg.Database.URI, _ = cmd.Flags().GetString("db-uri")
	}
	if cmd.Flags().Changed("db-username") {
		cfg.Database.Username, _ = cmd.Flags().GetString("db-username")
	}
	if cmd.Flags().Changed("db-password") {
		cfg.Database.Password, _ = cmd.Flags().GetString("db-password")
	}
	if cmd.Flags().Changed("db-database") {
		cfg.Database.Database, _ = cmd.Flags().GetString("db-database")
	}

	if cfg.Import.MoviesCSV == "" && cfg.Import.ActorsCSV == "" && cfg.Import.DirectorsCSV == "" {
		return fmt.Errorf("no source tables configured")
	}

	logger, flush, err := buildLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer flush()

	ctx := context.Background()
	graphDriver, err := buildDriver(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize graph store: %w", err)
	}
	defer graphDriver.Close(ctx)

	src, closers, err := openImportSource(cfg.Import)
	if err != nil {
		return err
	}
	defer func() {
		for _, c := range closers {
			c.Close()
		}
	}()

	importer := ingest.New(graphDriver, logger, importOptions(cfg))

	var report *ingest.Report
	switch importMode {
	case "replace":
		report, err = importer.Replace(ctx, src)
	case "merge":
		report, err = importer.ImportAll(ctx, src)
	case "bulk":
		report, err = importer.BulkImport(ctx, src)
	default:
		return fmt.Errorf("unknown import mode: %s", importMode)
	}
	if err != nil {
		var partial *types.PartialImportError
		if errors.As(err, &partial) {
			fmt.Fprintf(os.Stderr, "bulk import failed at batch %d, %d batches committed\n",
				partial.FailedBatch, partial.CommittedBatches)
		}
		return err
	}

	fmt.Printf("Imported %d movies, %d actors, %d directors in %s (%d rows skipped)\n",
		report.Movies, report.Actors, report.Directors, report.Elapsed, report.SkippedRows)
	return nil
}

func openImportSource(cfg config.ImportConfig) (ingest.Source, []io.Closer, error) {
	var src ingest.Source
	var closers []io.Closer

	open := func(path string) (io.Reader, error) {
		if path == "" {
			return nil, nil
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		closers = append(closers, f)
		return f, nil
	}

	var err error
	if src.Movies, err = open(cfg.MoviesCSV); err != nil {
		return ingest.Source{}, closers, err
	}
	if src.Actors, err = open(cfg.ActorsCSV); err != nil {
		return ingest.Source{}, closers, err
	}
	if src.Directors, err = open(cfg.DirectorsCSV); err != nil {
		return ingest.Source{}, closers, err
	}
	return src, closers, nil
}
