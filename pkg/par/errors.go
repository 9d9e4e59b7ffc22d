package par

import (
	"errors"
	"fmt"

	"github.com/OpenTraceLab/OpenTracePAR/pkg/pargraph"
)

// ErrInternal marks invariant violations inside the engine itself. These are
// bugs, not user errors: the top-level driver must terminate abruptly when it
// sees one, since continuing would silently produce an incorrect bitstream.
var ErrInternal = errors.New("par: internal invariant violation")

// ErrUnplaceable marks a placement failure: some netlist node could not be
// assigned a compatible device site. Recoverable by editing the design.
var ErrUnplaceable = errors.New("par: placement failed")

// ErrUnroutable marks a routing failure: a physical resource pool ran out of
// capacity. Recoverable by editing the design.
var ErrUnroutable = errors.New("par: routing failed")

// InternalErrorf builds an error wrapping ErrInternal.
func InternalErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInternal, fmt.Sprintf(format, args...))
}

// PlacementError reports the netlist nodes left unmated after the best-effort
// pass. The partial mate assignment is left intact so the caller can print a
// best-effort placement report.
type PlacementError struct {
	Unplaced []*pargraph.Node
	Names    []string
}

func (e *PlacementError) Error() string {
	if len(e.Names) == 1 {
		return fmt.Sprintf("par: no placement for netlist node %q", e.Names[0])
	}
	return fmt.Sprintf("par: no placement for %d netlist nodes (first: %q)", len(e.Names), e.Names[0])
}

func (e *PlacementError) Unwrap() error {
	return ErrUnplaceable
}

// RouteError reports the specific edge and pool that exhausted capacity.
type RouteError struct {
	Pool string
	Edge string
}

func (e *RouteError) Error() string {
	return fmt.Sprintf("par: routing pool %q exhausted while routing %s", e.Pool, e.Edge)
}

func (e *RouteError) Unwrap() error {
	return ErrUnroutable
}
