package agent

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is wrapped by every input validation failure.
var ErrInvalidInput = errors.New("invalid input")

// Result is the outcome shared by all agents. When Success is false the
// payload fields of the enclosing output must be ignored.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`

	// Err is the underlying error, kept for errors.Is and errors.As.
	Err error `json:"-"`
}

// Failure returns the error of a failed result, or nil on success.
func (r Result) Failure() error {
	if r.Success {
		return nil
	}
	if r.Err != nil {
		return r.Err
	}
	if r.Error != "" {
		return errors.New(r.Error)
	}
	return errors.New("agent failed without a message")
}

func succeeded() Result {
	return Result{Success: true}
}

func failed(err error) Result {
	return Result{Error: err.Error(), Err: err}
}

func invalidInput(format string, args ...any) Result {
	return failed(fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...)))
}
