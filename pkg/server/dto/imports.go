package dto

import (
	"time"

	"github.com/cinegraph/cinegraph/pkg/ingest"
)

// ImportReportResponse summarizes a completed import.
type ImportReportResponse struct {
	Movies      int    `json:"movies"`
	Actors      int    `json:"actors"`
	Directors   int    `json:"directors"`
	SkippedRows int    `json:"skipped_rows"`
	Batches     int    `json:"batches,omitempty"`
	Elapsed     string `json:"elapsed"`
}

// NewImportReportResponse converts an import report to its response shape.
func NewImportReportResponse(r *ingest.Report) ImportReportResponse {
	return ImportReportResponse{
		Movies:      r.Movies,
		Actors:      r.Actors,
		Directors:   r.Directors,
		SkippedRows: r.SkippedRows,
		Batches:     r.Batches,
		Elapsed:     r.Elapsed.String(),
	}
}

// PartialImportResponse reports a bulk import that failed midway.
type PartialImportResponse struct {
	Error            string `json:"error"`
	CommittedBatches int    `json:"committed_batches"`
	FailedBatch      int    `json:"failed_batch"`
}

// ImportJobResponse reports the state of a background import job.
type ImportJobResponse struct {
	ID         string                `json:"id"`
	Mode       string                `json:"mode"`
	State      string                `json:"state"`
	Report     *ImportReportResponse `json:"report,omitempty"`
	Error      string                `json:"error,omitempty"`
	StartedAt  time.Time             `json:"started_at"`
	FinishedAt *time.Time            `json:"finished_at,omitempty"`
}
