package container

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrNotFound matches every *NotFoundError.
	ErrNotFound = errors.New("container: not found")

	// ErrArgumentResolution matches every *ArgumentResolutionError.
	ErrArgumentResolution = errors.New("container: unresolvable argument")

	// ErrCircularDependency matches every *CircularDependencyError.
	ErrCircularDependency = errors.New("container: circular dependency")

	// ErrInvalidProducer is returned when a Static producer cannot be bound
	// to a method at call time.
	ErrInvalidProducer = errors.New("container: invalid producer")
)

// NotFoundError is returned by Get when an id has no binding and does not
// name an instantiable type.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("container: [%s] is not bound and is not an instantiable type", e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ArgumentResolutionError reports a required parameter that no resolution
// rule could satisfy.
type ArgumentResolutionError struct {
	Param    string
	Position int
	Type     reflect.Type
	Target   string
	File     string
	Line     int
}

func (e *ArgumentResolutionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "container: unable to resolve parameter %s (%s) of %s", e.Param, e.Type, e.Target)
	if e.File != "" {
		fmt.Fprintf(&b, " at %s:%d", e.File, e.Line)
	}
	return b.String()
}

func (e *ArgumentResolutionError) Is(target error) bool { return target == ErrArgumentResolution }

// CircularDependencyError is returned when an id is requested while it is
// already being produced further up the same resolution.
type CircularDependencyError struct {
	Chain []string
}

func (e *CircularDependencyError) Error() string {
	return "container: circular dependency: " + strings.Join(e.Chain, " -> ")
}

func (e *CircularDependencyError) Is(target error) bool { return target == ErrCircularDependency }

// ErrorKind classifies err as not_found, argument, circular,
// invalid_producer or producer.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrArgumentResolution):
		return "argument"
	case errors.Is(err, ErrCircularDependency):
		return "circular"
	case errors.Is(err, ErrInvalidProducer):
		return "invalid_producer"
	}
	return "producer"
}
