package report

import (
	"time"

	"github.com/nao1215/pdscload/internal/model"
)

// RunSummary is the reportable view of a LoadRun: counts and messages
// instead of the full index.
type RunSummary struct {
	ID             string          `json:"id"`
	StartedAt      time.Time       `json:"started_at"`
	FinishedAt     time.Time       `json:"finished_at"`
	DataPath       string          `json:"data_path"`
	TargetPath     string          `json:"target_path"`
	TargetKind     string          `json:"target_kind"`
	Status         string          `json:"status"`
	Error          string          `json:"error,omitempty"`
	Items          int             `json:"items"`
	Collections    int             `json:"collections"`
	Installed      int             `json:"installed"`
	Elements       int             `json:"elements"`
	ErrorCount     int             `json:"error_count"`
	PerformedSteps []string        `json:"performed_steps"`
	Errors         []string        `json:"errors,omitempty"`
	Messages       []model.Message `json:"messages,omitempty"`
}

// NewRunSummary summarizes a run.
func NewRunSummary(run *model.LoadRun) *RunSummary {
	s := &RunSummary{
		ID:             run.ID,
		StartedAt:      run.StartedAt,
		FinishedAt:     run.FinishedAt,
		DataPath:       run.DataPath,
		TargetPath:     run.TargetPath,
		TargetKind:     string(run.TargetKind),
		Status:         string(run.Status),
		Error:          run.ErrorMessage,
		Installed:      len(run.Installed),
		ErrorCount:     run.ErrorCount(),
		PerformedSteps: run.PerformedSteps,
		Messages:       run.Messages,
	}
	if s.PerformedSteps == nil {
		s.PerformedSteps = []string{}
	}
	if run.Index != nil {
		s.Items = len(run.Index.Items)
		s.Collections = len(run.Index.Collections)
	}

	items := run.Installed
	if len(items) == 0 && run.Index != nil {
		items = run.Index.Items
	}
	for _, item := range items {
		s.Elements += item.Elements
	}

	for _, m := range run.Messages {
		if m.Level == model.LevelError {
			s.Errors = append(s.Errors, m.Text)
		}
	}
	return s
}

// Duration returns how long the run took, or zero if it has not finished.
func (s *RunSummary) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt).Round(time.Millisecond)
}
