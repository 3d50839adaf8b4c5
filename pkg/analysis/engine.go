// Package analysis implements the three analytical operations layered on a
// relationship snapshot: attack-path construction across the kill chain,
// defensive coverage-gap analysis, and bounded-depth relationship
// traversal. Every operation is a pure, synchronous read over one
// immutable snapshot; concurrent callers need no coordination.
package analysis

import (
	"time"

	"github.com/gofastercloud/attackgraph/pkg/logging"
	"github.com/gofastercloud/attackgraph/pkg/metrics"
	"github.com/gofastercloud/attackgraph/pkg/snapshot"
)

// Engine exposes the analysis operations over the currently published
// snapshot. Each call resolves the snapshot once and works on it for the
// whole operation, so a concurrent refresh never bleeds into a running
// computation.
type Engine struct {
	handle *snapshot.Handle
	log    logging.Logger
	reg    *metrics.Registry
}

// NewEngine creates an engine reading from the given handle. logger may be
// nil (no logging); reg may be nil (no metrics).
func NewEngine(handle *snapshot.Handle, logger logging.Logger, reg *metrics.Registry) *Engine {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Engine{
		handle: handle,
		log:    logger.With(logging.Component("analysis")),
		reg:    reg,
	}
}

// Snapshot returns the snapshot the next operation would run against.
func (e *Engine) Snapshot() *snapshot.Snapshot {
	return e.handle.Current()
}

func (e *Engine) record(operation string, start time.Time, resultSize int, err error) {
	if e.reg == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	e.reg.RecordAnalysis(operation, status, time.Since(start), resultSize)
}
