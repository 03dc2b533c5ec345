// Package mutation runs state-changing operations on listings through an
// explicit stage/confirm state machine. Local collections are updated only
// after the catalog API acknowledges a change, so a failed request never
// leaves local and remote state apart.
package mutation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/donaldgifford/secondhand-client/internal/metrics"
	domain "github.com/donaldgifford/secondhand-client/pkg/types"
)

// Intent lifecycle errors.
var (
	ErrInFlight  = errors.New("mutation already in flight")
	ErrNotStaged = errors.New("mutation is not staged")
)

// Kind is the operation an intent performs.
type Kind string

// Kinds.
const (
	KindMarkSold Kind = "mark_sold"
	KindEdit     Kind = "edit_fields"
	KindDelete   Kind = "delete"
)

// Result labels for mutation metrics.
const (
	resultApplied = "applied"
	resultFailed  = "failed"
	resultInvalid = "invalid"
	resultAuth    = "auth_required"
)

// Remote is the catalog API surface mutations are dispatched to.
type Remote interface {
	MarkSold(ctx context.Context, id string) error
	UpdateItem(ctx context.Context, id string, f domain.EditableFields) error
	DeleteItem(ctx context.Context, id string) error
	CreateListing(ctx context.Context, l *domain.NewListing) error
}

// Collection is a local listing collection that reflects acknowledged
// mutations. Each method reports whether the listing was present.
type Collection interface {
	ApplySold(id string) bool
	ApplyEdit(id string, f domain.EditableFields) bool
	Remove(id string) bool
}

// Pipeline creates intents and publishes new listings.
type Pipeline struct {
	remote Remote
	log    *slog.Logger
	limits  UploadLimits
	newID   func() string
	onPhase func(id string, kind Kind, p Phase)
}

// Option configures the Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		p.log = l
	}
}

// WithUploadLimits overrides the image limits applied by Publish.
func WithUploadLimits(l UploadLimits) Option {
	return func(p *Pipeline) {
		p.limits = l
	}
}

// WithPhaseListener registers fn to observe every phase an intent enters.
// fn runs on the goroutine driving the intent, outside its lock.
func WithPhaseListener(fn func(id string, kind Kind, p Phase)) Option {
	return func(p *Pipeline) {
		p.onPhase = fn
	}
}

// NewPipeline creates a Pipeline dispatching to remote.
func NewPipeline(remote Remote, opts ...Option) *Pipeline {
	p := &Pipeline{
		remote: remote,
		log:    slog.Default(),
		limits: DefaultUploadLimits(),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Stage creates a Staged intent for kind against target. coll is the
// collection the target was taken from; it may be nil when no collection is
// on screen. For KindEdit, edit is the initial working copy; nil seeds it
// from target.
func (p *Pipeline) Stage(coll Collection, target domain.ListingSummary, kind Kind, edit *EditInput) (*Intent, error) {
	if target.ID == "" {
		return nil, fmt.Errorf("%w: target listing has no id", domain.ErrInvalidArgument)
	}

	switch kind {
	case KindMarkSold:
		if target.Status == domain.StatusSold {
			return nil, domain.Invalid("status", "listing is already sold")
		}
		if !target.Status.CanTransition(domain.StatusSold) {
			return nil, domain.Invalid("status", fmt.Sprintf("cannot mark a %s listing as sold", target.Status))
		}
	case KindEdit, KindDelete:
		if target.Status == domain.StatusDeleted {
			return nil, domain.Invalid("status", "listing was deleted")
		}
	default:
		return nil, fmt.Errorf("%w: unknown mutation kind %q", domain.ErrInvalidArgument, kind)
	}

	in := &Intent{
		id:     p.newID(),
		kind:   kind,
		target: target,
		coll:   coll,
		p:      p,
		phase:  PhaseStaged,
	}
	if kind == KindEdit {
		if edit != nil {
			in.edit = *edit
		} else {
			in.edit = EditInput{Title: target.Title, Price: target.Price.String()}
		}
	}

	p.log.Debug("mutation staged",
		"intent_id", in.id,
		"kind", kind,
		"listing_id", target.ID,
	)
	p.notify(in, PhaseStaged)
	return in, nil
}

// Publish validates draft and creates the listing. Invalid drafts never
// reach the network.
func (p *Pipeline) Publish(ctx context.Context, draft *Draft) error {
	l, err := draft.Validate(p.limits)
	if err != nil {
		metrics.MutationsTotal.WithLabelValues("publish", resultInvalid).Inc()
		return err
	}

	if err := p.remote.CreateListing(ctx, l); err != nil {
		metrics.MutationsTotal.WithLabelValues("publish", failureResult(err)).Inc()
		p.log.Warn("publish failed", "title", l.Title, "error", err)
		return fmt.Errorf("publishing listing: %w", err)
	}

	metrics.MutationsTotal.WithLabelValues("publish", resultApplied).Inc()
	p.log.Info("listing published", "title", l.Title, "images", len(l.Images))
	return nil
}

func (p *Pipeline) dispatch(ctx context.Context, kind Kind, id string, f domain.EditableFields) error {
	switch kind {
	case KindMarkSold:
		return p.remote.MarkSold(ctx, id)
	case KindEdit:
		return p.remote.UpdateItem(ctx, id, f)
	case KindDelete:
		return p.remote.DeleteItem(ctx, id)
	default:
		return fmt.Errorf("%w: unknown mutation kind %q", domain.ErrInvalidArgument, kind)
	}
}

func failureResult(err error) string {
	if errors.Is(err, domain.ErrAuthRequired) {
		return resultAuth
	}
	return resultFailed
}

func (p *Pipeline) notify(in *Intent, ph Phase) {
	if p.onPhase != nil {
		p.onPhase(in.id, in.kind, ph)
	}
}
