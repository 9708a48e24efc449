package session

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"mapper-engine/internal/common"
	"mapper-engine/internal/mapping"
	"mapper-engine/internal/provider"
	"mapper-engine/internal/relation"
	"mapper-engine/internal/schema"
)

// State returns the negotiation state of side.
func (s *Session) State(side common.Side) (provider.State, error) {
	n, err := s.negotiator(side)
	if err != nil {
		return provider.State{}, err
	}

	return n.State(), nil
}

// SelectProvider starts the negotiation of side with kind.
func (s *Session) SelectProvider(ctx context.Context, side common.Side, kind provider.Kind) error {
	return s.negotiate(ctx, side, func(ctx context.Context, n *provider.Negotiator) error {
		return n.SelectProvider(ctx, kind)
	})
}

// SelectChild picks value at level index of side.
func (s *Session) SelectChild(ctx context.Context, side common.Side, index int, value string) error {
	return s.negotiate(ctx, side, func(ctx context.Context, n *provider.Negotiator) error {
		return n.SelectChild(ctx, index, value)
	})
}

// ResolveWildcard picks the wildcard node at level index with literal.
func (s *Session) ResolveWildcard(ctx context.Context, side common.Side, index int, literal string) error {
	return s.negotiate(ctx, side, func(ctx context.Context, n *provider.Negotiator) error {
		return n.ResolveWildcard(ctx, index, literal)
	})
}

// GoBack undoes the last resolved level of side.
func (s *Session) GoBack(ctx context.Context, side common.Side) error {
	return s.negotiate(ctx, side, func(ctx context.Context, n *provider.Negotiator) error {
		return n.GoBack(ctx)
	})
}

// SetProviderOptions changes the constructor options of side and
// re-fetches its record.
func (s *Session) SetProviderOptions(ctx context.Context, side common.Side, opts provider.Options) error {
	return s.negotiate(ctx, side, func(ctx context.Context, n *provider.Negotiator) error {
		return n.SetOptions(ctx, opts)
	})
}

// negotiate runs one negotiation step and applies its outcome to the
// canvas. Steps superseded by a newer step or by Reset leave the session
// untouched.
func (s *Session) negotiate(
	ctx context.Context,
	side common.Side,
	step func(context.Context, *provider.Negotiator) error,
) error {
	n, err := s.negotiator(side)
	if err != nil {
		return err
	}

	s.mu.Lock()
	gen := s.generation
	s.mu.Unlock()

	log := s.logger.WithSide(side).WithField("session_id", s.id)

	err = step(ctx, n)
	if errors.Is(err, provider.ErrStale) || errors.Is(err, provider.ErrBusy) {
		log.WithError(err).Debug("Negotiation step dropped")
		return err
	}

	s.mu.Lock()

	if gen != s.generation {
		s.mu.Unlock()
		log.Debug("Negotiation step superseded by reset")

		return provider.ErrStale
	}

	s.apply(log, side, n.State(), err)
	s.mu.Unlock()

	s.changed()

	return err
}

// apply moves the outcome of a negotiation step onto the canvas. A new
// provider identity invalidates every relation; a re-fetch of the same
// provider keeps the relations that still resolve. Callers hold s.mu.
func (s *Session) apply(log *logrus.Entry, side common.Side, st provider.State, stepErr error) {
	phase := provider.PhaseForSide(side)

	if stepErr != nil {
		var perr *provider.PhaseError
		if errors.As(stepErr, &perr) {
			s.errs[phase] = stepErr
			log.WithError(stepErr).Warn("Provider connection failed")
		}
	} else {
		delete(s.errs, phase)
	}

	cur := s.sides[side]

	if st.Record == nil {
		if cur.descriptor != nil && s.relations.Len() > 0 {
			log.Info("Provider deselected, relations cleared")
			s.relations.Reset()
		}

		s.sides[side] = &sideState{}

		return
	}

	next := &sideState{
		fields:     st.Record.Fields,
		descriptor: st.Descriptor,
		canManage:  st.Record.CanManageFields,
	}

	if next.descriptor != nil {
		log = s.logger.WithProvider(string(next.descriptor.Type)).WithFields(log.Data)
	}

	same := cur.descriptor != nil && next.descriptor != nil &&
		cur.descriptor.Identity() == next.descriptor.Identity()

	if same {
		custom := mapping.SideOptions{CustomFields: mapping.CustomFields(schema.Flatten(&cur.fields))}
		if err := custom.Graft(&next.fields); err != nil {
			log.WithError(err).Warn("Custom fields dropped after re-fetch")
		}

		s.sides[side] = next

		if pruned := s.pruneDangling(side); pruned > 0 {
			log.WithField("count", pruned).Warn("Relations to vanished fields removed")
		}

		return
	}

	if s.relations.Len() > 0 {
		log.Info("Provider changed, relations cleared")
		s.relations.Reset()
	}

	s.sides[side] = next
	log.Debug("Provider record resolved")
}

// pruneDangling unbinds relations pointing at fields missing from the
// tree of side. Callers hold s.mu.
func (s *Session) pruneDangling(side common.Side) int {
	fields := s.sides[side].fields
	flat := schema.Flatten(&fields)
	count := 0

	switch side {
	case common.SideOutputs:
		for _, path := range s.relations.OutputPaths() {
			if !flat.Has(path) {
				count += s.relations.RemoveFieldRelations(path, side)
			}
		}
	case common.SideInputs:
		for _, path := range s.relations.OutputPaths() {
			r, _ := s.relations.Get(path)
			if r.Source.Kind == relation.SourceField && flat.Index(r.Source.Field) < 0 {
				count += s.relations.RemoveFieldRelations(r.Source.Field.String(), side)
			}
		}
	}

	return count
}
