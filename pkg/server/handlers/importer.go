package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cinegraph/cinegraph"
	"github.com/cinegraph/cinegraph/pkg/config"
	"github.com/cinegraph/cinegraph/pkg/ingest"
	"github.com/cinegraph/cinegraph/pkg/server/dto"
)

// Import job states.
const (
	JobRunning   = "running"
	JobCompleted = "completed"
	JobFailed    = "failed"
)

// importJob tracks one background import.
type importJob struct {
	ID         string
	Mode       string
	State      string
	Report     *ingest.Report
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

// maxFinishedJobs bounds how many completed or failed jobs the registry
// retains; the oldest finished jobs are evicted first. Running jobs are
// never evicted.
const maxFinishedJobs = 64

// jobRegistry is a concurrency-safe store of import jobs.
type jobRegistry struct {
	mu       sync.RWMutex
	jobs     map[string]*importJob
	finished []string
}

func newJobRegistry() *jobRegistry {
	return &jobRegistry{jobs: make(map[string]*importJob)}
}

func (r *jobRegistry) start(mode string) *importJob {
	job := &importJob{
		ID:        uuid.NewString(),
		Mode:      mode,
		State:     JobRunning,
		StartedAt: time.Now().UTC(),
	}
	r.mu.Lock()
	r.jobs[job.ID] = job
	r.mu.Unlock()
	return job
}

func (r *jobRegistry) finish(id string, report *ingest.Report, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return
	}
	job.Report = report
	job.Err = err
	job.FinishedAt = time.Now().UTC()
	if err != nil {
		job.State = JobFailed
	} else {
		job.State = JobCompleted
	}

	r.finished = append(r.finished, id)
	for len(r.finished) > maxFinishedJobs {
		delete(r.jobs, r.finished[0])
		r.finished = r.finished[1:]
	}
}

func (r *jobRegistry) get(id string) (*importJob, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, false
	}
	snapshot := *job
	return &snapshot, true
}

// ImportHandler handles dataset import requests.
type ImportHandler struct {
	graph    cinegraph.Cinegraph
	importer *ingest.Importer
	cfg      config.ImportConfig
	logger   *slog.Logger
	jobs     *jobRegistry
}

// NewImportHandler creates a new import handler.
func NewImportHandler(g cinegraph.Cinegraph, imp *ingest.Importer, cfg config.ImportConfig, logger *slog.Logger) *ImportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImportHandler{
		graph:    g,
		importer: imp,
		cfg:      cfg,
		logger:   logger,
		jobs:     newJobRegistry(),
	}
}

// openSource opens the configured CSV files. Missing paths are skipped so a
// deployment can ship only a subset of the tables.
func (h *ImportHandler) openSource() (ingest.Source, []io.Closer, error) {
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
	if src.Movies, err = open(h.cfg.MoviesCSV); err != nil {
		closeAll(closers)
		return ingest.Source{}, nil, err
	}
	if src.Actors, err = open(h.cfg.ActorsCSV); err != nil {
		closeAll(closers)
		return ingest.Source{}, nil, err
	}
	if src.Directors, err = open(h.cfg.DirectorsCSV); err != nil {
		closeAll(closers)
		return ingest.Source{}, nil, err
	}
	return src, closers, nil
}

func closeAll(closers []io.Closer) {
	for _, c := range closers {
		c.Close()
	}
}

// Import handles POST /import. The default mode replaces the dataset;
// ?mode=merge upserts into the existing graph instead.
func (h *ImportHandler) Import(c *gin.Context) {
	merge := c.Query("mode") == "merge"
	run := h.importer.Replace
	mode := "replace"
	if merge {
		run = h.importer.ImportAll
		mode = "merge"
	}
	h.runImport(c, mode, run)
}

// BulkImport handles POST /bulk_import - full rebuild in batched writes.
func (h *ImportHandler) BulkImport(c *gin.Context) {
	h.runImport(c, "bulk", h.importer.BulkImport)
}

// runImport executes an import synchronously, or in the background when
// ?async=true is set.
func (h *ImportHandler) runImport(c *gin.Context, mode string, run func(context.Context, ingest.Source) (*ingest.Report, error)) {
	src, closers, err := h.openSource()
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	if c.Query("async") == "true" {
		job := h.jobs.start(mode)
		go func() {
			defer closeAll(closers)
			report, err := run(context.Background(), src)
			if err != nil {
				h.logger.Error("background import failed", "job_id", job.ID, "mode", mode, "error", err)
			}
			h.jobs.finish(job.ID, report, err)
		}()
		c.JSON(http.StatusAccepted, dto.ImportJobResponse{
			ID:        job.ID,
			Mode:      job.Mode,
			State:     job.State,
			StartedAt: job.StartedAt,
		})
		return
	}

	defer closeAll(closers)
	report, err := run(c.Request.Context(), src)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewImportReportResponse(report))
}

// ImportJob handles GET /import/jobs/:id.
func (h *ImportHandler) ImportJob(c *gin.Context) {
	job, ok := h.jobs.get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "unknown import job"})
		return
	}

	resp := dto.ImportJobResponse{
		ID:        job.ID,
		Mode:      job.Mode,
		State:     job.State,
		StartedAt: job.StartedAt,
	}
	if job.Report != nil {
		report := dto.NewImportReportResponse(job.Report)
		resp.Report = &report
	}
	if job.Err != nil {
		resp.Error = job.Err.Error()
	}
	if !job.FinishedAt.IsZero() {
		finished := job.FinishedAt
		resp.FinishedAt = &finished
	}
	c.JSON(http.StatusOK, resp)
}

// Clear handles POST /clear - removes every entity and relationship.
func (h *ImportHandler) Clear(c *gin.Context) {
	if err := h.graph.Clear(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "graph cleared"})
}
