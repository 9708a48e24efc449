package session

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"mapper-engine/internal/common"
	"mapper-engine/internal/diagnostic"
	"mapper-engine/internal/draft"
	"mapper-engine/internal/mapping"
	"mapper-engine/internal/provider"
	"mapper-engine/internal/relation"
	"mapper-engine/internal/schema"
)

// Definition assembles the mapper definition of the current canvas.
func (s *Session) Definition() *mapping.Definition {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.definition()
}

func (s *Session) definition() *mapping.Definition {
	in, out := s.sides[common.SideInputs], s.sides[common.SideOutputs]

	return mapping.Build(
		s.meta,
		s.relations.Table(),
		mapping.SideSchema{Provider: in.descriptor, Fields: schema.Flatten(&in.fields)},
		mapping.SideSchema{Provider: out.descriptor, Fields: schema.Flatten(&out.fields)},
		s.keys,
	)
}

// Validate checks the current definition against the canvas trees.
func (s *Session) Validate() *diagnostic.Diagnostics {
	s.mu.Lock()
	defer s.mu.Unlock()

	return mapping.Validate(s.definition(), s.schemas())
}

// schemas returns the trees a definition is checked against. Callers
// hold s.mu.
func (s *Session) schemas() mapping.Schemas {
	out := mapping.Schemas{
		Inputs:  s.flat(common.SideInputs),
		Outputs: s.flat(common.SideOutputs),
		Keys:    s.keys,
	}

	if s.context != nil {
		out.Context = s.flat(common.SideContext)
		if out.Context == nil {
			out.Context = schema.FlatList{}
		}
	}

	return out
}

// IsValid reports whether the mapper may be submitted: the form is valid,
// at least one relation is live and no connection phase failed.
func (s *Session) IsValid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.errs) == 0 && s.definition().CanSubmit()
}

// Submit sends the definition to the host and drops the saved draft.
func (s *Session) Submit(ctx context.Context) error {
	s.mu.Lock()
	payload, err := s.definition().Payload()
	draftID := draft.ID(s.meta.TargetFile, s.id)
	s.mu.Unlock()

	if err != nil {
		return err
	}

	if err := s.host.Submit(ctx, payload); err != nil {
		return fmt.Errorf("submit mapper %s: %w", payload.Name, err)
	}

	s.log.WithField("mapper", payload.Name).
		WithField("relations", len(payload.Fields)).
		Info("Mapper submitted")

	if s.autosave != nil {
		s.autosave.Close()
	}

	if s.drafts != nil {
		if err := s.drafts.Delete(ctx, draftID); err != nil && !errors.Is(err, draft.ErrNotFound) {
			s.log.WithError(err).Warn("Failed to delete draft")
		}
	}

	return nil
}

// Resume opens a saved definition for editing. Both provider schemas and
// the default mapper keys are fetched concurrently; the saved custom
// fields are grafted back and relations written before names were
// escaped are repaired. contextFields is the static data tree, nil when
// the mapper has none. The returned diagnostics describe what no longer
// matches the fetched schemas.
func (s *Session) Resume(ctx context.Context, def *mapping.Definition, contextFields *schema.Fields) (*diagnostic.Diagnostics, error) {
	if def == nil {
		return nil, errors.New("resume: definition is nil")
	}

	s.mu.Lock()
	gen := s.generation
	s.mu.Unlock()

	var (
		inputs, outputs schema.Fields
		keys            relation.MapperKeys
	)

	g, gctx := errgroup.WithContext(ctx)

	if opts := def.Options.Input; opts != nil {
		g.Go(func() error {
			var err error
			inputs, err = s.fetchSide(gctx, s.inputs, opts, common.SideInputs)

			return err
		})
	}

	if opts := def.Options.Output; opts != nil {
		g.Go(func() error {
			var err error
			outputs, err = s.fetchSide(gctx, s.outputs, opts, common.SideOutputs)

			return err
		})
	}

	g.Go(func() error {
		var err error
		keys, err = provider.FetchMapperKeys(gctx, s.fetch)

		return err
	})

	if err := g.Wait(); err != nil {
		s.mu.Lock()
		var perr *provider.PhaseError
		if errors.As(err, &perr) {
			s.errs[perr.Phase] = err
		}
		s.mu.Unlock()

		s.log.WithError(err).Warn("Failed to resume mapper")

		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return nil, provider.ErrStale
	}

	s.generation++
	s.errs = make(map[provider.Phase]error)
	s.meta = def.Metadata
	s.setDefaultKeys(keys)

	s.resume(common.SideInputs, s.inputs, def.Options.Input, inputs)
	s.resume(common.SideOutputs, s.outputs, def.Options.Output, outputs)

	if contextFields != nil {
		c := contextFields.Clone()
		s.context = &c
	} else {
		s.context = nil
	}

	fixed := relation.FixRelations(def.Fields, s.flat(common.SideOutputs), s.flat(common.SideInputs))
	s.relations.Replace(fixed)

	res := mapping.Validate(s.definition(), s.schemas())

	s.log.WithField("mapper", def.Name).
		WithField("relations", len(fixed)).
		WithField("problems", len(res.Errors)+len(res.Warnings)).
		Info("Mapper resumed")

	return res, nil
}

// fetchSide fetches the saved schema of one side and grafts its custom
// fields back.
func (s *Session) fetchSide(
	ctx context.Context,
	n *provider.Negotiator,
	opts *mapping.SideOptions,
	side common.Side,
) (schema.Fields, error) {
	fields, err := provider.FetchSchema(ctx, s.fetch, n.Catalog(), opts.Descriptor, side)
	if err != nil {
		return schema.Fields{}, err
	}

	if err := opts.Graft(&fields); err != nil {
		return schema.Fields{}, fmt.Errorf("%s: %w", side, err)
	}

	return fields, nil
}

// resume installs a fetched side and points its negotiator at the saved
// descriptor. Callers hold s.mu.
func (s *Session) resume(side common.Side, n *provider.Negotiator, opts *mapping.SideOptions, fields schema.Fields) {
	if opts == nil {
		n.Reset()
		s.sides[side] = &sideState{}

		return
	}

	d := opts.Descriptor
	record := &provider.Record{Fields: fields.Clone(), CanManageFields: d.CanManageFields}

	n.Restore(provider.State{
		Kind:       d.Type,
		Options:    d.Options,
		Descriptor: &d,
		Record:     record,
	})

	s.sides[side] = &sideState{fields: fields, descriptor: &d, canManage: d.CanManageFields}
}
