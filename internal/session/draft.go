package session

import (
	"context"
	"errors"
	"maps"
	"slices"
	"time"

	"mapper-engine/internal/common"
	"mapper-engine/internal/draft"
	"mapper-engine/internal/provider"
	"mapper-engine/internal/schema"
)

// ErrNoDrafts is returned by draft operations of a session built
// without a draft store.
var ErrNoDrafts = errors.New("session has no draft store")

// DraftID returns the id the session's draft is saved under.
func (s *Session) DraftID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return draft.ID(s.meta.TargetFile, s.id)
}

// Snapshot captures the session as a draft.
func (s *Session) Snapshot() *draft.Draft {
	inState, outState := s.inputs.State(), s.outputs.State()

	s.mu.Lock()
	defer s.mu.Unlock()

	d := &draft.Draft{
		ID:             draft.ID(s.meta.TargetFile, s.id),
		InterfaceKind:  draft.InterfaceKind,
		Fields:         s.meta,
		SelectedFields: slices.Clone(s.selected),
		Diagram: draft.Diagram{
			Inputs:         s.sides[common.SideInputs].fields.Clone(),
			Outputs:        s.sides[common.SideOutputs].fields.Clone(),
			Relations:      s.relations.Table(),
			InputProvider:  inState,
			OutputProvider: outState,
			MapperKeys:     maps.Clone(s.keys),
		},
	}

	if s.context != nil {
		d.Diagram.Context = s.context.Clone()
	}

	return d
}

// RestoreDraft replaces the whole session with a saved draft. In-flight
// steps are superseded.
func (s *Session) RestoreDraft(d *draft.Draft) {
	if d == nil {
		return
	}

	dg := d.Diagram

	s.inputs.Restore(dg.InputProvider)
	s.outputs.Restore(dg.OutputProvider)

	s.mu.Lock()
	s.generation++
	s.meta = d.Fields
	s.selected = slices.Clone(d.SelectedFields)
	s.sides = map[common.Side]*sideState{
		common.SideInputs:  restoredSide(dg.Inputs.Clone(), dg.InputProvider),
		common.SideOutputs: restoredSide(dg.Outputs.Clone(), dg.OutputProvider),
	}
	s.context = nil

	if dg.Context.Len() > 0 {
		c := dg.Context.Clone()
		s.context = &c
	}

	s.relations.Replace(dg.Relations)
	s.errs = make(map[provider.Phase]error)

	if dg.MapperKeys != nil {
		s.keys = maps.Clone(dg.MapperKeys)
	}
	s.mu.Unlock()

	s.log.WithField("draft", d.ID).Debug("Draft restored")
}

func restoredSide(fields schema.Fields, st provider.State) *sideState {
	out := &sideState{fields: fields}
	if st.Descriptor != nil {
		d := *st.Descriptor
		out.descriptor = &d
		out.canManage = d.CanManageFields
	}

	return out
}

// LoadDraft restores the draft saved under id.
func (s *Session) LoadDraft(ctx context.Context, id string) error {
	if s.drafts == nil {
		return ErrNoDrafts
	}

	d, err := s.drafts.Load(ctx, id)
	if err != nil {
		return err
	}

	s.RestoreDraft(d)

	return nil
}

// SaveDraft writes the current snapshot now, bypassing the debounce.
// Snapshots without content are not written.
func (s *Session) SaveDraft(ctx context.Context) error {
	if s.drafts == nil {
		return ErrNoDrafts
	}

	d := s.Snapshot()
	if !d.HasContent() {
		return nil
	}

	d.SavedAt = time.Now().UTC()

	return s.drafts.Save(ctx, d)
}
