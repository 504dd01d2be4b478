// Package apperr defines the failure kinds of the question answering pipeline.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	// KindDataSource: source unreachable or malformed. Recovered with an empty table.
	KindDataSource
	// KindPlanning: backend failed, timed out or produced an unusable plan.
	KindPlanning
	// KindExecution: a valid-looking plan failed against the table.
	KindExecution
	// KindValidation: malformed inbound request.
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindDataSource:
		return "data_source"
	case KindPlanning:
		return "planning"
	case KindExecution:
		return "execution"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s error", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func DataSource(op string, err error) error {
	return &Error{Kind: KindDataSource, Op: op, Err: err}
}

func Planning(op string, err error) error {
	return &Error{Kind: KindPlanning, Op: op, Err: err}
}

func Execution(op string, err error) error {
	return &Error{Kind: KindExecution, Op: op, Err: err}
}

func Validation(op string, err error) error {
	return &Error{Kind: KindValidation, Op: op, Err: err}
}

// KindOf reports the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
