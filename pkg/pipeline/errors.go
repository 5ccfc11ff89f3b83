package pipeline

import (
	"github.com/pkg/errors"
)

var (
	ErrPipelineMustBeSet = errors.New("pipeline must be set")
	ErrFuncMustBeSet     = errors.New("function must be set")
	ErrInvalidSourceKind = errors.New("input must be an iterable, an async iterable or a stepper")
)

// errStopIteration stops a terminal without reporting a failure.
var errStopIteration = errors.New("stop iteration")
