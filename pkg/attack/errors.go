package attack

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the four failure kinds the engine can raise.
// Callers distinguish them with errors.Is or the predicate helpers below.
var (
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidRange    = errors.New("invalid tactic range")
	ErrDataIntegrity   = errors.New("data integrity violation")
)

// Error provides structured context for an engine failure: the operation
// that failed, the entity kind involved (if any), and the offending IDs.
type Error struct {
	Op     string     // operation that failed, e.g. "BuildPath"
	Kind   EntityKind // entity kind involved, if known
	IDs    []string   // offending identifier(s)
	Detail string     // additional context
	Cause  error      // one of the sentinel errors above
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Kind != "" {
		b.WriteString(" " + string(e.Kind))
	}
	if len(e.IDs) > 0 {
		b.WriteString(" " + strings.Join(e.IDs, ", "))
	}
	if e.Detail != "" {
		b.WriteString(" (" + e.Detail + ")")
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap returns the underlying sentinel for error chain support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error's cause.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}

// NotFound builds a NotFoundError naming the missing entity.
func NotFound(op string, kind EntityKind, id string) error {
	return &Error{Op: op, Kind: kind, IDs: []string{id}, Cause: ErrNotFound}
}

// InvalidArgument builds an InvalidArgumentError with context.
func InvalidArgument(op, detail string) error {
	return &Error{Op: op, Detail: detail, Cause: ErrInvalidArgument}
}

// InvalidRange builds an InvalidRangeError naming both tactic IDs.
func InvalidRange(op, startID, endID string) error {
	return &Error{
		Op:     op,
		Kind:   KindTactic,
		IDs:    []string{startID, endID},
		Detail: "start must precede or equal end in the kill chain",
		Cause:  ErrInvalidRange,
	}
}

// IntegrityError builds a DataIntegrityError naming the offending IDs.
// Raised at snapshot build time only; a build that raises it must never
// replace a previously published snapshot.
func IntegrityError(op, detail string, ids ...string) error {
	return &Error{Op: op, IDs: ids, Detail: detail, Cause: ErrDataIntegrity}
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidArgument reports whether err is an InvalidArgumentError.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// IsInvalidRange reports whether err is an InvalidRangeError.
func IsInvalidRange(err error) bool {
	return errors.Is(err, ErrInvalidRange)
}

// IsDataIntegrity reports whether err is a DataIntegrityError.
func IsDataIntegrity(err error) bool {
	return errors.Is(err, ErrDataIntegrity)
}
