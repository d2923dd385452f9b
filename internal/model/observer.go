package model

import "sync"

// Level is the severity attached to an observer message.
type Level string

const (
	// LevelInfo marks informational progress messages.
	LevelInfo Level = "info"

	// LevelError marks recoverable problems: the run continues without the
	// affected folder, item or file.
	LevelError Level = "error"
)

// Message is one diagnostic event raised during a run.
type Message struct {
	Text  string `json:"msg"`
	Level Level  `json:"level"`
}

// Observer receives progress and diagnostic events from the load pipeline.
// Implementations must be safe for use from a single goroutine at a time;
// the pipeline never calls an observer concurrently.
type Observer interface {
	// Info reports normal progress.
	Info(msg string)

	// Error reports a recoverable problem.
	Error(msg string)

	// Progress reports that n of total units are done.
	Progress(n, total int)

	// Complete reports that the run finished.
	Complete(msg string)
}

// NopObserver discards every event.
type NopObserver struct{}

// Info implements Observer.
func (NopObserver) Info(string) {}

// Error implements Observer.
func (NopObserver) Error(string) {}

// Progress implements Observer.
func (NopObserver) Progress(int, int) {}

// Complete implements Observer.
func (NopObserver) Complete(string) {}

// Recorder is an Observer that keeps every event in memory.
// It is used by the pipeline to retain messages on the LoadRun and by tests.
type Recorder struct {
	mu        sync.Mutex
	messages  []Message
	progress  [][2]int
	completed []string
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Info implements Observer.
func (r *Recorder) Info(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{Text: msg, Level: LevelInfo})
}

// Error implements Observer.
func (r *Recorder) Error(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{Text: msg, Level: LevelError})
}

// Progress implements Observer.
func (r *Recorder) Progress(n, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = append(r.progress, [2]int{n, total})
}

// Complete implements Observer.
func (r *Recorder) Complete(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed = append(r.completed, msg)
}

// Messages returns a copy of the recorded messages in arrival order.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneSlice(r.messages)
}

// Errors returns the text of every recorded error message.
func (r *Recorder) Errors() []string {
	return r.textAt(LevelError)
}

// Infos returns the text of every recorded info message.
func (r *Recorder) Infos() []string {
	return r.textAt(LevelInfo)
}

func (r *Recorder) textAt(level Level) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, m := range r.messages {
		if m.Level == level {
			out = append(out, m.Text)
		}
	}
	return out
}

// ProgressEvents returns every recorded (n, total) pair.
func (r *Recorder) ProgressEvents() [][2]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneSlice(r.progress)
}

// Completed returns the messages passed to Complete.
func (r *Recorder) Completed() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneSlice(r.completed)
}

// MultiObserver fans every event out to several observers in order.
type MultiObserver []Observer

// Info implements Observer.
func (m MultiObserver) Info(msg string) {
	for _, o := range m {
		o.Info(msg)
	}
}

// Error implements Observer.
func (m MultiObserver) Error(msg string) {
	for _, o := range m {
		o.Error(msg)
	}
}

// Progress implements Observer.
func (m MultiObserver) Progress(n, total int) {
	for _, o := range m {
		o.Progress(n, total)
	}
}

// Complete implements Observer.
func (m MultiObserver) Complete(msg string) {
	for _, o := range m {
		o.Complete(msg)
	}
}
