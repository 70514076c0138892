package server

import "tunegrab/internal/progress"

// SubmitRequest is the body of a track submission.
type SubmitRequest struct {
	URL string `json:"url" binding:"required"`
}

// SubmitResponse acknowledges an accepted submission.
type SubmitResponse struct {
	JobID   string `json:"jobId"`
	Message string `json:"message"`
}

// JobListResponse is one page of job progress snapshots.
type JobListResponse struct {
	Jobs       []progress.Snapshot `json:"jobs"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"pageSize"`
	TotalJobs  int                 `json:"totalJobs"`
	TotalPages int                 `json:"totalPages"`
}

// MessageResponse represents a generic message payload used for success responses.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents a generic error payload used for error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}
