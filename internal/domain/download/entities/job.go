package entities

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Conte777/mediaflow/internal/domain"
	downloaderrors "github.com/Conte777/mediaflow/internal/domain/download/errors"
	"github.com/Conte777/mediaflow/internal/domain/media"
	"github.com/Conte777/mediaflow/internal/domain/placement"
	pkgerrors "github.com/Conte777/mediaflow/pkg/errors"
)

// State is a step of the download job state machine
type State string

const (
	StateIdle      State = "idle"
	StateResolving State = "resolving"
	StateIterating State = "iterating"
	StateCompleted State = "completed"
	StateStopped   State = "stopped"
	StateFailed    State = "failed"
)

// IsTerminal returns true if the job has finished
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateStopped || s == StateFailed
}

// Constraints bound which messages a job considers. Start and End are
// inclusive. A nil Limit means no cap.
type Constraints struct {
	Start *time.Time
	End   *time.Time
	Limit *int
}

// EmptyRange reports whether Start is after End, which matches nothing
func (c Constraints) EmptyRange() bool {
	return c.Start != nil && c.End != nil && c.Start.After(*c.End)
}

// JobConfig is everything the caller supplies to start a download
type JobConfig struct {
	Target       domain.ConversationTarget
	Filters      media.FilterSet
	Constraints  Constraints
	Grouping     placement.Grouping
	SkipExisting bool
	Root         string
}

// Validate checks the configuration before a job is created
func (c JobConfig) Validate() error {
	if c.Target.ID == 0 && strings.TrimSpace(c.Target.Username) == "" {
		return pkgerrors.NewValidationError(downloaderrors.ErrNoTarget.Error())
	}
	if c.Filters.Empty() {
		return pkgerrors.NewValidationError(downloaderrors.ErrNoFilters.Error())
	}
	if c.Constraints.Limit != nil && *c.Constraints.Limit < 1 {
		return pkgerrors.NewValidationErrorf("%s, got %d", downloaderrors.ErrInvalidLimit, *c.Constraints.Limit)
	}
	if strings.TrimSpace(c.Root) == "" {
		return pkgerrors.NewValidationError(downloaderrors.ErrNoRoot.Error())
	}
	if _, err := placement.ParseGrouping(string(c.Grouping)); err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}
	return nil
}

// Layout returns the placement layout of the job
func (c JobConfig) Layout() placement.Layout {
	return placement.Layout{
		Root:         c.Root,
		Chat:         c.Target,
		Grouping:     c.Grouping,
		SkipExisting: c.SkipExisting,
	}
}

// Job is a running download. Counters only grow and are safe to read while
// the job runs.
type Job struct {
	ID     string
	Config JobConfig

	processed atomic.Int64
	saved     atomic.Int64
	skipped   atomic.Int64
	unmatched atomic.Int64
	failed    atomic.Int64
	bytes     atomic.Int64

	mu         sync.RWMutex
	state      State
	err        error
	current    string
	startedAt  time.Time
	finishedAt time.Time
}

// NewJob creates an idle job
func NewJob(id string, cfg JobConfig) *Job {
	return &Job{ID: id, Config: cfg, state: StateIdle}
}

func (j *Job) IncProcessed() { j.processed.Add(1) }

func (j *Job) IncSkipped() { j.skipped.Add(1) }

func (j *Job) IncUnmatched() { j.unmatched.Add(1) }

func (j *Job) IncFailed() { j.failed.Add(1) }

// AddSaved counts a saved file of n bytes
func (j *Job) AddSaved(n int64) {
	j.saved.Add(1)
	if n > 0 {
		j.bytes.Add(n)
	}
}

// Processed returns the number of matched messages handled so far
func (j *Job) Processed() int64 {
	return j.processed.Load()
}

// SetState moves the job to s
func (j *Job) SetState(s State) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.state == StateIdle && s != StateIdle {
		j.startedAt = time.Now()
	}
	if s.IsTerminal() {
		j.finishedAt = time.Now()
		j.current = ""
	}
	j.state = s
}

// Fail moves the job to Failed with err
func (j *Job) Fail(err error) {
	j.mu.Lock()
	j.err = err
	j.mu.Unlock()
	j.SetState(StateFailed)
}

// SetCurrent records the file being transferred
func (j *Job) SetCurrent(name string) {
	j.mu.Lock()
	j.current = name
	j.mu.Unlock()
}

// State returns the current state
func (j *Job) State() State {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.state
}

// Snapshot is a point-in-time copy of a job's progress
type Snapshot struct {
	ID          string        `json:"id"`
	Target      string        `json:"target"`
	State       State         `json:"state"`
	Processed   int64         `json:"processed"`
	Saved       int64         `json:"saved"`
	Skipped     int64         `json:"skipped"`
	Unmatched   int64         `json:"unmatched"`
	Failed      int64         `json:"failed"`
	Bytes       int64         `json:"bytes"`
	CurrentFile string        `json:"current_file,omitempty"`
	Error       string        `json:"error,omitempty"`
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration_ns"`
}

// Snapshot copies the job's counters and state
func (j *Job) Snapshot() Snapshot {
	j.mu.RLock()
	defer j.mu.RUnlock()

	s := Snapshot{
		ID:          j.ID,
		Target:      j.Config.Target.Identifier(),
		State:       j.state,
		Processed:   j.processed.Load(),
		Saved:       j.saved.Load(),
		Skipped:     j.skipped.Load(),
		Unmatched:   j.unmatched.Load(),
		Failed:      j.failed.Load(),
		Bytes:       j.bytes.Load(),
		CurrentFile: j.current,
		StartedAt:   j.startedAt,
	}
	if j.err != nil {
		s.Error = j.err.Error()
	}

	switch {
	case j.startedAt.IsZero():
	case j.finishedAt.IsZero():
		s.Duration = time.Since(j.startedAt)
	default:
		s.Duration = j.finishedAt.Sub(j.startedAt)
	}

	return s
}
