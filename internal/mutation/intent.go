package mutation

import (
	"context"
	"fmt"
	"sync"

	"github.com/donaldgifford/secondhand-client/internal/metrics"
	domain "github.com/donaldgifford/secondhand-client/pkg/types"
)

// Phase is where an intent is in its lifecycle.
type Phase int

// Phases. An intent runs Staged, Confirmed, InFlight, then Applied, or back
// to Staged when the payload is invalid or the request fails. Applied and
// Cancelled are terminal and equivalent to Idle.
const (
	PhaseIdle Phase = iota
	PhaseStaged
	PhaseConfirmed
	PhaseInFlight
	PhaseApplied
	PhaseCancelled
)

var phaseNames = map[Phase]string{
	PhaseIdle:      "idle",
	PhaseStaged:    "staged",
	PhaseConfirmed: "confirmed",
	PhaseInFlight:  "in_flight",
	PhaseApplied:   "applied",
	PhaseCancelled: "cancelled",
}

func (p Phase) String() string {
	if s, ok := phaseNames[p]; ok {
		return s
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Done reports whether the intent has been dismissed.
func (p Phase) Done() bool {
	return p == PhaseIdle || p == PhaseApplied || p == PhaseCancelled
}

// Intent is one staged mutation awaiting confirmation. At most one request
// is outstanding per intent.
type Intent struct {
	id     string
	kind   Kind
	target domain.ListingSummary
	coll   Collection
	p      *Pipeline

	mu    sync.Mutex
	phase Phase
	edit  EditInput
	err   error
}

// ID returns the intent's unique id.
func (i *Intent) ID() string { return i.id }

// Kind returns the operation.
func (i *Intent) Kind() Kind { return i.kind }

// Target returns the listing the intent was staged against.
func (i *Intent) Target() domain.ListingSummary { return i.target }

// Phase returns the current phase.
func (i *Intent) Phase() Phase {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.phase
}

// Err returns the error from the most recent failed confirmation, if any.
func (i *Intent) Err() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.err
}

// Edit returns the working copy of an edit intent.
func (i *Intent) Edit() EditInput {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.edit
}

// SetEdit replaces the working copy. Only valid while Staged.
func (i *Intent) SetEdit(in EditInput) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.kind != KindEdit {
		return fmt.Errorf("%w: %s intent has no editable payload", domain.ErrInvalidArgument, i.kind)
	}
	if err := i.requireStagedLocked(); err != nil {
		return err
	}
	i.edit = in
	return nil
}

// Confirm dispatches the mutation. It is valid only while Staged; a second
// call while the first is outstanding returns ErrInFlight without sending
// anything. On success the owning collection is updated and the intent is
// Applied. On failure nothing local changes and the intent returns to
// Staged so Confirm can be retried as is.
func (i *Intent) Confirm(ctx context.Context) error {
	i.mu.Lock()
	if err := i.requireStagedLocked(); err != nil {
		i.mu.Unlock()
		return err
	}
	i.phase = PhaseConfirmed
	i.err = nil
	edit := i.edit
	i.mu.Unlock()
	i.p.notify(i, PhaseConfirmed)

	var fields domain.EditableFields
	if i.kind == KindEdit {
		f, err := edit.Parse()
		if err != nil {
			i.moveTo(PhaseStaged, err)
			metrics.MutationsTotal.WithLabelValues(string(i.kind), resultInvalid).Inc()
			return err
		}
		fields = f
	}

	i.moveTo(PhaseInFlight, nil)

	log := i.p.log.With("intent_id", i.id, "kind", i.kind, "listing_id", i.target.ID)
	log.Debug("mutation dispatched")

	if err := i.p.dispatch(ctx, i.kind, i.target.ID, fields); err != nil {
		i.moveTo(PhaseStaged, err)

		metrics.MutationsTotal.WithLabelValues(string(i.kind), failureResult(err)).Inc()
		log.Warn("mutation failed", "error", err)
		return fmt.Errorf("%s listing %s: %w", i.kind, i.target.ID, err)
	}

	if i.coll != nil && !i.apply(fields) {
		log.Debug("acknowledged listing not in collection")
	}

	i.moveTo(PhaseApplied, nil)

	metrics.MutationsTotal.WithLabelValues(string(i.kind), resultApplied).Inc()
	log.Info("mutation applied")
	return nil
}

// moveTo sets the phase and the last error, then notifies the pipeline's
// listener.
func (i *Intent) moveTo(p Phase, err error) {
	i.mu.Lock()
	i.phase = p
	i.err = err
	i.mu.Unlock()
	i.p.notify(i, p)
}

func (i *Intent) apply(f domain.EditableFields) bool {
	switch i.kind {
	case KindMarkSold:
		return i.coll.ApplySold(i.target.ID)
	case KindEdit:
		return i.coll.ApplyEdit(i.target.ID, f)
	case KindDelete:
		return i.coll.Remove(i.target.ID)
	}
	return false
}

// Cancel discards a Staged intent without any request or local change.
func (i *Intent) Cancel() error {
	i.mu.Lock()
	if err := i.requireStagedLocked(); err != nil {
		i.mu.Unlock()
		return err
	}
	i.phase = PhaseCancelled
	i.mu.Unlock()

	i.p.log.Debug("mutation cancelled", "intent_id", i.id, "kind", i.kind, "listing_id", i.target.ID)
	i.p.notify(i, PhaseCancelled)
	return nil
}

func (i *Intent) requireStagedLocked() error {
	switch i.phase {
	case PhaseStaged:
		return nil
	case PhaseConfirmed, PhaseInFlight:
		return ErrInFlight
	default:
		return fmt.Errorf("%w: intent is %s", ErrNotStaged, i.phase)
	}
}
