package model

import (
	"time"

	"github.com/google/uuid"
)

// TargetKind selects how a load materializes the index on the target.
type TargetKind string

const (
	// TargetDevice installs the viewer application and a data repository,
	// the layout used by the embedded player device.
	TargetDevice TargetKind = "device"

	// TargetSite writes a self-contained static website, the layout used
	// for portable USB disks.
	TargetSite TargetKind = "site"
)

// Valid reports whether k names a supported target kind.
func (k TargetKind) Valid() bool {
	return k == TargetDevice || k == TargetSite
}

// RunStatus is the outcome of a load run.
type RunStatus string

const (
	// RunRunning is the status of a run that has not finished.
	RunRunning RunStatus = "running"
	// RunCompleted is the status of a run that went through every step.
	RunCompleted RunStatus = "completed"
	// RunFailed is the status of a run stopped by a fatal error.
	RunFailed RunStatus = "failed"
	// RunCancelled is the status of a run stopped by the user.
	RunCancelled RunStatus = "cancelled"
)

// LoadRun carries the state of one pass through the load pipeline.
// Each pipeline step reads what earlier steps left on it and adds its own
// results.
type LoadRun struct {
	// ID uniquely identifies the run in the history database.
	ID string `json:"id"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// DataPath is the root of the archive tree being loaded.
	DataPath string `json:"data_path"`

	// TargetPath is the mount point or directory receiving the output.
	TargetPath string `json:"target_path"`

	TargetKind TargetKind `json:"target_kind"`

	// Entries are the item folders found by the walk step.
	Entries []ScanEntry `json:"entries,omitempty"`

	// OCFL lists folders recognised as OCFL objects, which are not indexed.
	OCFL []string `json:"ocfl,omitempty"`

	// Index is the index built from Entries.
	Index *Index `json:"index,omitempty"`

	// Installed holds the items as written to the target, with rewritten paths.
	Installed []*Item `json:"installed,omitempty"`

	// Messages keeps every observer event raised during the run.
	Messages []Message `json:"messages,omitempty"`

	// PerformedSteps lists the pipeline steps that ran, in order.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	Status       RunStatus `json:"status"`
	Error        error     `json:"-"`
	ErrorMessage string    `json:"error,omitempty"`
}

// NewLoadRun creates a run for the given source and target.
func NewLoadRun(dataPath, targetPath string, kind TargetKind) *LoadRun {
	return &LoadRun{
		ID:         uuid.NewString(),
		StartedAt:  time.Now(),
		DataPath:   dataPath,
		TargetPath: targetPath,
		TargetKind: kind,
		Status:     RunRunning,
	}
}

// Finish records the outcome of the run.
func (r *LoadRun) Finish(status RunStatus, err error) {
	r.FinishedAt = time.Now()
	r.Status = status
	if err != nil {
		r.Error = err
		r.ErrorMessage = err.Error()
	}
}

// ErrorCount returns the number of error-level messages raised during the run.
func (r *LoadRun) ErrorCount() int {
	n := 0
	for _, m := range r.Messages {
		if m.Level == LevelError {
			n++
		}
	}
	return n
}

// Observer returns an Observer that keeps every event on the run before
// handing it to next. A nil next is treated as NopObserver.
func (r *LoadRun) Observer(next Observer) Observer {
	if next == nil {
		next = NopObserver{}
	}
	return &runObserver{run: r, next: next}
}

type runObserver struct {
	run  *LoadRun
	next Observer
}

func (o *runObserver) Info(msg string) {
	o.run.Messages = append(o.run.Messages, Message{Text: msg, Level: LevelInfo})
	o.next.Info(msg)
}

func (o *runObserver) Error(msg string) {
	o.run.Messages = append(o.run.Messages, Message{Text: msg, Level: LevelError})
	o.next.Error(msg)
}

func (o *runObserver) Progress(n, total int) {
	o.next.Progress(n, total)
}

func (o *runObserver) Complete(msg string) {
	o.run.Messages = append(o.run.Messages, Message{Text: msg, Level: LevelInfo})
	o.next.Complete(msg)
}
