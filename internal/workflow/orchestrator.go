// Package workflow coordinates mode selection, text acquisition and calls
// to the scoring service, holding at most one request in flight.
//
// An Orchestrator is owned by a single goroutine (the UI event loop).
// Actions mutate state synchronously and hand back a Call. The owner runs
// the Call wherever it likes and feeds the returned Settlement to Settle.
package workflow

import (
	"context"
	"fmt"

	"semcheck/internal/domain"
	"semcheck/internal/logging"
)

// Call performs the remote part of an action. It must not touch
// orchestrator state; it only reports back through its Settlement.
type Call func(ctx context.Context) Settlement

// Settlement is the outcome of a Call.
type Settlement struct {
	Generation uint64
	Op         domain.Operation
	Mode       domain.Mode
	Slot       domain.Slot
	Text       string
	Result     domain.Result
	Err        error
}

// State is a snapshot of everything the UI renders.
type State struct {
	Mode      domain.Mode
	Slots     [domain.NumSlots]domain.TextSlot
	Operation domain.Operation
	Result    domain.Result
	Error     string
}

// Orchestrator is the workflow state machine. Not safe for concurrent use.
type Orchestrator struct {
	gateway domain.Gateway
	state   State

	// generation advances on every dispatch and every mode switch; a
	// settlement whose generation is behind it is stale.
	generation uint64
	// inflight is the generation holding the operation lock, 0 if free.
	inflight uint64
}

// New creates an orchestrator in the given mode with empty slots.
func New(gw domain.Gateway, mode domain.Mode) *Orchestrator {
	return &Orchestrator{gateway: gw, state: State{Mode: mode}}
}

// Snapshot returns a copy of the current state.
func (o *Orchestrator) Snapshot() State { return o.state }

// Mode returns the selected mode.
func (o *Orchestrator) Mode() domain.Mode { return o.state.Mode }

// Operation returns the in-flight operation, OpNone when idle.
func (o *Orchestrator) Operation() domain.Operation { return o.state.Operation }

// Busy reports whether an operation holds the lock.
func (o *Orchestrator) Busy() bool { return o.state.Operation != domain.OpNone }

// SetMode selects a mode and clears any result or error. An in-flight
// operation keeps running, but its outcome will no longer be shown.
func (o *Orchestrator) SetMode(m domain.Mode) {
	o.state.Mode = m
	o.state.Result = nil
	o.state.Error = ""
	o.generation++
	logging.Debug("mode selected", "mode", m, "generation", o.generation)
}

// Settle applies a finished Call. The operation lock is released first,
// whatever the outcome.
func (o *Orchestrator) Settle(s Settlement) {
	if s.Generation == 0 || s.Generation != o.inflight {
		logging.Warn("settlement without matching lock", "generation", s.Generation, "inflight", o.inflight)
		return
	}
	o.inflight = 0
	o.state.Operation = domain.OpNone

	if s.Op == domain.OpExtracting {
		o.state.Slots[s.Slot].File = ""
		if s.Err == nil {
			o.state.Slots[s.Slot].Content = s.Text
		}
	}

	if s.Generation != o.generation {
		logging.Info("discarding stale outcome", "op", s.Op, "mode", s.Mode, "generation", s.Generation, "current", o.generation)
		return
	}
	if s.Err != nil {
		logging.Warn("operation failed", "op", s.Op, "mode", s.Mode, "err", s.Err)
		o.fail(s.Err)
		return
	}
	if s.Result != nil {
		o.state.Result = s.Result
	}
	logging.Debug("operation settled", "op", s.Op, "mode", s.Mode)
}

// Run executes call synchronously and settles it. A nil call is a no-op.
func (o *Orchestrator) Run(ctx context.Context, call Call) {
	if call == nil {
		return
	}
	o.Settle(call(ctx))
}

func (o *Orchestrator) fail(err error) {
	o.state.Result = nil
	o.state.Error = Normalize(err)
}

// begin takes the lock for op and clears the previous outcome.
func (o *Orchestrator) begin(op domain.Operation) uint64 {
	o.state.Result = nil
	o.state.Error = ""
	o.state.Operation = op
	o.generation++
	o.inflight = o.generation
	logging.Debug("operation started", "op", op, "mode", o.state.Mode, "generation", o.generation)
	return o.generation
}

// guard turns a panic inside a Call into a failed settlement so the lock
// is still released.
func guard(base Settlement, fn func(ctx context.Context) Settlement) Call {
	return func(ctx context.Context) (s Settlement) {
		defer func() {
			if r := recover(); r != nil {
				s = base
				s.Err = fmt.Errorf("panic during %s: %v", base.Op, r)
			}
		}()
		return fn(ctx)
	}
}
