// Package reconcile merges partial desired interface states into the observed network state
// and drives one observe/apply/observe cycle against a state backend.
package reconcile

import (
	"context"
	"fmt"
	"time"

	"golang-netstate/internal/pkg/logging"
	"golang-netstate/internal/port"
	"golang-netstate/internal/types"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
)

// Operation names, used for debug file names and the run journal.
const (
	OperationL3Interface = "l3_interface"
	OperationInterface   = "interface"
	OperationApply       = "apply"
	OperationPartial     = "apply_partial"
)

type phase string

const (
	phaseObserved  phase = "observed"
	phaseSimulated phase = "simulated"
	phaseApplied   phase = "applied"
	phaseReported  phase = "reported"
)

// Result is the outcome of one run. Debug fields are only set when debug output was requested.
type Result struct {
	Changed         bool                `json:"changed"`
	State           *types.NetworkState `json:"state,omitempty"`
	PreviousState   *types.NetworkState `json:"previous_state,omitempty"`
	NewPartialState *types.NetworkState `json:"new_partial_state,omitempty"`
	DesiredState    *types.NetworkState `json:"desired_state,omitempty"`
	DebugFile       string              `json:"debugfile,omitempty"`
}

// Reconciler runs reconciliation cycles against a StateBackend.
// It holds no state between runs.
type Reconciler struct {
	backend port.StateBackend
	debug   *DebugWriter
	journal port.Journal
	now     func() time.Time
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithJournal records every run in journal.
func WithJournal(journal port.Journal) Option {
	return func(r *Reconciler) {
		r.journal = journal
	}
}

// WithClock replaces the time source used for debug file names and journal entries.
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) {
		r.now = now
	}
}

// NewReconciler creates a reconciler for the given backend.
func NewReconciler(backend port.StateBackend, debug *DebugWriter, opts ...Option) *Reconciler {
	r := &Reconciler{
		backend: backend,
		debug:   debug,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// L3Interface adds, removes or replaces IP addresses on one or more interfaces.
func (r *Reconciler) L3Interface(ctx context.Context, p Params) (*Result, error) {
	result := &Result{}
	err := r.l3Interface(ctx, &p, result)
	r.record(ctx, OperationL3Interface, elementNames(p), p.CheckMode, result, err)
	return result, err
}

func (r *Reconciler) l3Interface(ctx context.Context, p *Params, result *Result) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := requireActions(p.State, ActionPresent, ActionAbsent); err != nil {
		return err
	}

	settings := CollectSettings(p.Elements())

	previous, err := r.observe(ctx, OperationL3Interface)
	if err != nil {
		return err
	}

	states, err := BuildL3States(previous.Interfaces, settings, p.State, p.Purge)
	if err != nil {
		return err
	}

	if len(states) == 0 {
		r.logger(OperationL3Interface).WithField("phase", phaseReported).Info("No interface state to apply")
		result.State = &previous
		return nil
	}

	return r.applyPartial(ctx, OperationL3Interface, result, previous, states, p.Debug, p.CheckMode)
}

// Interface changes link settings (mtu, ethernet, description, lifecycle state) of a single interface.
func (r *Reconciler) Interface(ctx context.Context, p Params) (*Result, error) {
	result := &Result{}
	err := r.linkInterface(ctx, &p, result)
	r.record(ctx, OperationInterface, elementNames(p), p.CheckMode, result, err)
	return result, err
}

func (r *Reconciler) linkInterface(ctx context.Context, p *Params, result *Result) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if len(p.Aggregate) > 0 {
		return &UnsupportedFeatureError{Feature: "aggregate"}
	}
	if p.Enabled != nil {
		r.logger(OperationInterface).WithField("enabled", *p.Enabled).Debug("Ignoring informational enabled parameter")
	}

	previous, err := r.observe(ctx, OperationInterface)
	if err != nil {
		return err
	}

	state, err := BuildInterfaceState(previous.Interfaces, *p)
	if err != nil {
		return err
	}
	if state == nil {
		r.logger(OperationInterface).WithField("phase", phaseReported).Info("No interface state to apply")
		result.State = &previous
		return nil
	}

	return r.applyPartial(ctx, OperationInterface, result, previous, []types.Interface{*state}, p.Debug, p.CheckMode)
}

// ApplyDesired applies a complete desired state document as-is. Check mode is not supported.
func (r *Reconciler) ApplyDesired(ctx context.Context, desired types.NetworkState, debug, checkMode bool) (*Result, error) {
	result := &Result{}
	err := r.applyDesired(ctx, desired, debug, checkMode, result)
	r.record(ctx, OperationApply, desired.InterfaceNames(), checkMode, result, err)
	return result, err
}

func (r *Reconciler) applyDesired(ctx context.Context, desired types.NetworkState, debug, checkMode bool, result *Result) error {
	if checkMode {
		return &UnsupportedFeatureError{Feature: "check mode for apply"}
	}

	previous, err := r.observe(ctx, OperationApply)
	if err != nil {
		return err
	}

	if debug {
		if err := r.attachDebug(OperationApply, result, previous, desired); err != nil {
			return err
		}
		result.DesiredState = &desired
	}

	if err := r.backend.Apply(ctx, desired); err != nil {
		return fmt.Errorf("failed to apply network state: %w", err)
	}
	r.logger(OperationApply).WithField("phase", phaseApplied).Debug("Desired state applied")

	return r.report(ctx, OperationApply, result, previous)
}

// ApplyPartial applies the interfaces section of a caller-built partial state, or only
// simulates it in check mode.
func (r *Reconciler) ApplyPartial(ctx context.Context, partial types.NetworkState, debug, checkMode bool) (*Result, error) {
	result := &Result{}
	err := r.applyPartialState(ctx, partial, debug, checkMode, result)
	r.record(ctx, OperationPartial, partial.InterfaceNames(), checkMode, result, err)
	return result, err
}

func (r *Reconciler) applyPartialState(ctx context.Context, partial types.NetworkState, debug, checkMode bool, result *Result) error {
	previous, err := r.observe(ctx, OperationPartial)
	if err != nil {
		return err
	}

	if len(partial.Interfaces) == 0 {
		r.logger(OperationPartial).WithField("phase", phaseReported).Info("No interface state to apply")
		result.State = &previous
		return nil
	}

	return r.applyPartial(ctx, OperationPartial, result, previous, partial.Clone().Interfaces, debug, checkMode)
}

// applyPartial sends the partial interface states to the backend, or only simulates the
// result in check mode, and fills in the change decision.
func (r *Reconciler) applyPartial(ctx context.Context, operation string, result *Result, previous types.NetworkState, interfaces []types.Interface, debug, checkMode bool) error {
	partial := types.NewPartialState(interfaces)
	logger := r.logger(operation).WithFields(logrus.Fields{
		"interfaces": partial.InterfaceNames(),
		"check_mode": checkMode,
	})

	if debug {
		if err := r.attachDebug(operation, result, previous, partial); err != nil {
			return err
		}
		result.NewPartialState = &partial
	}

	if checkMode {
		// Only the interfaces section is overlaid; no per-field merge is predicted.
		simulated := previous.Clone()
		simulated.Interfaces = partial.Clone().Interfaces
		result.Changed = !cmp.Equal(previous, simulated)
		result.State = &simulated
		logger.WithFields(logrus.Fields{
			"phase":   phaseSimulated,
			"changed": result.Changed,
		}).Info("Simulated partial state")
		return nil
	}

	if err := r.backend.Apply(ctx, partial); err != nil {
		return fmt.Errorf("failed to apply network state: %w", err)
	}
	logger.WithField("phase", phaseApplied).Debug("Partial state applied")

	return r.report(ctx, operation, result, previous)
}

func (r *Reconciler) attachDebug(operation string, result *Result, previous, desired types.NetworkState) error {
	result.PreviousState = &previous

	path, err := r.debug.Write(operation, desired, r.now())
	if err != nil {
		return err
	}
	result.DebugFile = path
	r.logger(operation).WithField("debugfile", path).Info("Wrote debug state")
	return nil
}

func (r *Reconciler) observe(ctx context.Context, operation string) (types.NetworkState, error) {
	state, err := r.backend.Observe(ctx)
	if err != nil {
		return types.NetworkState{}, fmt.Errorf("failed to observe network state: %w", err)
	}
	r.logger(operation).WithFields(logrus.Fields{
		"phase":      phaseObserved,
		"interfaces": len(state.Interfaces),
	}).Debug("Observed network state")
	return state, nil
}

// report observes the state after an apply and compares it with the state before.
func (r *Reconciler) report(ctx context.Context, operation string, result *Result, previous types.NetworkState) error {
	current, err := r.observe(ctx, operation)
	if err != nil {
		return err
	}

	result.Changed = !cmp.Equal(previous, current)
	result.State = &current

	logger := r.logger(operation).WithFields(logrus.Fields{
		"phase":   phaseReported,
		"changed": result.Changed,
	})
	if result.Changed && logger.Logger.IsLevelEnabled(logrus.DebugLevel) {
		logger.Debugf("State diff (-previous +current):\n%s", cmp.Diff(previous, current))
	}
	logger.Info("Reconciliation finished")
	return nil
}

func (r *Reconciler) record(ctx context.Context, operation string, interfaces []string, checkMode bool, result *Result, runErr error) {
	if r.journal == nil {
		return
	}

	entry := types.JournalEntry{
		Time:       r.now(),
		Operation:  operation,
		Interfaces: interfaces,
		CheckMode:  checkMode,
		Changed:    result.Changed,
	}
	if runErr != nil {
		entry.Error = runErr.Error()
	}

	// An interrupted run is still recorded.
	if err := r.journal.Record(context.WithoutCancel(ctx), entry); err != nil {
		r.logger(operation).WithError(err).Warn("Failed to record run in journal")
	}
}

func (r *Reconciler) logger(operation string) *logrus.Entry {
	return logging.WithOperation("reconcile", operation)
}

func elementNames(p Params) []string {
	seen := make(map[string]bool)
	var names []string
	for _, element := range p.Elements() {
		if element.Name == "" || seen[element.Name] {
			continue
		}
		seen[element.Name] = true
		names = append(names, element.Name)
	}
	return names
}
