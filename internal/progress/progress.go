// Package progress tracks the state of running jobs in a process-wide
// keyed store. Entries live from their first write until an explicit
// delete or process shutdown; there is no persistence and no expiry.
// Clients poll, so the store only answers point-in-time reads instead
// of pushing events.
package progress

import (
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrNotFound is returned when reading a job id that has never been
// written or has been deleted. Callers must distinguish it from a
// zero-percent state: a missing entry may mean the job has not reached
// the tracking side yet.
var ErrNotFound = errors.New("job not found")

// Phase is the stage a job is currently in. A job normally visits them
// in declaration order; Error is reachable from any non-terminal phase.
type Phase string

const (
	PhasePending     Phase = "pending"
	PhaseAnalyzing   Phase = "analyzing"
	PhaseDownloading Phase = "downloading"
	PhaseConverting  Phase = "converting"
	PhaseEnriching   Phase = "enriching"
	PhaseTagging     Phase = "tagging"
	PhaseCompleted   Phase = "completed"
	PhaseError       Phase = "error"
)

// Terminal reports whether the phase ends a job.
func (p Phase) Terminal() bool {
	return p == PhaseCompleted || p == PhaseError
}

// State is the stored progress of one job.
type State struct {
	JobID      string    `json:"jobId"`
	Phase      Phase     `json:"phase"`
	Percent    float64   `json:"percent"`
	Message    string    `json:"message,omitempty"`
	Operation  string    `json:"operation,omitempty"`
	BytesDone  int64     `json:"bytesDone,omitempty"`
	BytesTotal int64     `json:"bytesTotal,omitempty"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"startTime"`
}

// Snapshot is a State plus the timing fields derived at read time.
type Snapshot struct {
	State
	ElapsedSeconds   float64 `json:"elapsedSeconds"`
	RemainingSeconds float64 `json:"remainingSeconds"`
}

// Update carries one write. Phase, Percent, and Message always replace
// the stored values; the remaining fields only overlay when set, so a
// writer does not have to re-send byte counters on every phase change.
type Update struct {
	Phase      Phase
	Percent    float64
	Message    string
	Operation  string
	BytesDone  int64
	BytesTotal int64
	Error      string
}

// Store is a concurrent map of job id to progress state. Construct one
// per process and pass it to the job driver and the API handlers; tests
// inject their own isolated instance.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]State
	now  func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		jobs: make(map[string]State),
		now:  time.Now,
	}
}

// Write merges an update into the entry for jobID, creating it on first
// write. The start timestamp is set once and preserved across all later
// writes; the percentage is clamped to [0, 100]. There is no
// authorization check and no phase-transition validation.
func (s *Store) Write(jobID string, update Update) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, exists := s.jobs[jobID]
	if !exists {
		state = State{
			JobID:     jobID,
			StartedAt: s.now(),
		}
	}

	state.Phase = update.Phase
	state.Percent = clampPercent(update.Percent)
	state.Message = update.Message
	if update.Operation != "" {
		state.Operation = update.Operation
	}
	if update.BytesDone != 0 {
		state.BytesDone = update.BytesDone
	}
	if update.BytesTotal != 0 {
		state.BytesTotal = update.BytesTotal
	}
	if update.Error != "" {
		state.Error = update.Error
	}

	s.jobs[jobID] = state
}

// Read returns the current state of jobID with derived timing, or
// ErrNotFound if no entry exists.
func (s *Store) Read(jobID string) (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, exists := s.jobs[jobID]
	if !exists {
		return Snapshot{}, ErrNotFound
	}
	return s.snapshot(state), nil
}

// Delete removes the entry for jobID. Deleting an unknown id is a no-op.
func (s *Store) Delete(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, jobID)
}

// List returns a snapshot of every tracked job, oldest first.
func (s *Store) List() []Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshots := make([]Snapshot, 0, len(s.jobs))
	for _, state := range s.jobs {
		snapshots = append(snapshots, s.snapshot(state))
	}
	sort.Slice(snapshots, func(i, j int) bool {
		if snapshots[i].StartedAt.Equal(snapshots[j].StartedAt) {
			return snapshots[i].JobID < snapshots[j].JobID
		}
		return snapshots[i].StartedAt.Before(snapshots[j].StartedAt)
	})
	return snapshots
}

// snapshot derives the timing fields. The remaining-time estimate
// extrapolates linearly from elapsed time and percentage; it is zero
// once completed and also zero at 0% where the extrapolation is
// undefined.
func (s *Store) snapshot(state State) Snapshot {
	elapsed := s.now().Sub(state.StartedAt).Seconds()

	var remaining float64
	if state.Percent > 0 && state.Phase != PhaseCompleted {
		remaining = elapsed * (100/state.Percent - 1)
	}

	return Snapshot{
		State:            state,
		ElapsedSeconds:   elapsed,
		RemainingSeconds: remaining,
	}
}

func clampPercent(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
