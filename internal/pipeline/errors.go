package pipeline

import (
	"errors"
	"fmt"
)

// ErrFatalPrecondition marks failures that make the rest of a load
// pointless, such as an unusable target or an archive without items.
var ErrFatalPrecondition = errors.New("fatal precondition failed")

// FatalError is returned by a step whose failure ends the run, whatever
// WithContinueOnError says.
type FatalError struct {
	Step string
	Err  error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// Is reports ErrFatalPrecondition as a match so callers need not know the
// concrete type.
func (e *FatalError) Is(target error) bool {
	return target == ErrFatalPrecondition
}
