package server

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tunegrab/internal/progress"
)

// submitTrack handles a track submission
//
//	@Summary		Submit a track URL
//	@Description	Accepts a media URL and starts the resolve, download and tag pipeline for it.
//	@Tags			Tracks
//	@Accept			json
//	@Produce		json
//	@Param			request	body		SubmitRequest	true	"Submission parameters"
//	@Success		202		{object}	SubmitResponse
//	@Failure		400		{object}	ErrorResponse
//	@Router			/api/v1/tracks [post]
func (s *Server) submitTrack(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}

	jobID := uuid.New().String()

	// Seed the store before responding so an immediate poll finds the
	// job even when the goroutine has not been scheduled yet.
	s.tracker.Write(jobID, progress.Update{
		Phase:   progress.PhasePending,
		Message: "Job accepted",
	})

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		// Run records its own terminal state in the store.
		_ = s.runner.Run(ctx, jobID, req.URL)
	}()

	c.JSON(202, SubmitResponse{
		JobID:   jobID,
		Message: "Job accepted",
	})
}

// getTrackProgress handles progress polls
//
//	@Summary		Get job progress
//	@Description	Retrieves the current phase, percentage and timing estimate of a job.
//	@Tags			Tracks
//	@Produce		json
//	@Param			id	path		string				true	"Job ID"
//	@Success		200	{object}	progress.Snapshot
//	@Failure		404	{object}	ErrorResponse	"Job not found"
//	@Router			/api/v1/tracks/{id}/progress [get]
func (s *Server) getTrackProgress(c *gin.Context) {
	jobID := c.Param("id")

	snap, err := s.tracker.Read(jobID)
	if err != nil {
		c.JSON(404, gin.H{"error": fmt.Sprintf("%v: %s", progress.ErrNotFound, jobID)})
		return
	}

	c.JSON(200, snap)
}

// deleteTrackProgress handles progress record cleanup
//
//	@Summary		Delete a job's progress record
//	@Description	Removes the job from the progress store. The published file is not touched.
//	@Tags			Tracks
//	@Produce		json
//	@Param			id	path		string			true	"Job ID"
//	@Success		200	{object}	MessageResponse
//	@Failure		404	{object}	ErrorResponse	"Job not found"
//	@Router			/api/v1/tracks/{id}/progress [delete]
func (s *Server) deleteTrackProgress(c *gin.Context) {
	jobID := c.Param("id")

	if _, err := s.tracker.Read(jobID); err != nil {
		c.JSON(404, gin.H{"error": fmt.Sprintf("%v: %s", progress.ErrNotFound, jobID)})
		return
	}
	s.tracker.Delete(jobID)

	c.JSON(200, MessageResponse{Message: "Job deleted"})
}

// listTracks handles listing all jobs
//
//	@Summary		List jobs
//	@Description	Lists job progress snapshots oldest first, paginated.
//	@Tags			Tracks
//	@Produce		json
//	@Param			page		query		int	false	"Page number"
//	@Param			pageSize	query		int	false	"Page size (max 100)"
//	@Success		200			{object}	JobListResponse
//	@Router			/api/v1/tracks [get]
func (s *Server) listTracks(c *gin.Context) {
	page := 1
	pageSize := 10

	if p := c.Query("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
			page = parsed
		}
	}
	if ps := c.Query("pageSize"); ps != "" {
		if parsed, err := strconv.Atoi(ps); err == nil && parsed > 0 && parsed <= 100 {
			pageSize = parsed
		}
	}

	jobs := s.tracker.List()
	total := len(jobs)

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	c.JSON(200, JobListResponse{
		Jobs:       jobs[start:end],
		Page:       page,
		PageSize:   pageSize,
		TotalJobs:  total,
		TotalPages: (total + pageSize - 1) / pageSize,
	})
}
