package session

import (
	"context"
	"errors"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"mapper-engine/internal/common"
	"mapper-engine/internal/draft"
	"mapper-engine/internal/host"
	"mapper-engine/internal/logger"
	"mapper-engine/internal/mapping"
	"mapper-engine/internal/provider"
	"mapper-engine/internal/relation"
	"mapper-engine/internal/schema"
)

var (
	// ErrUnknownSide is returned for a side that cannot hold a provider.
	ErrUnknownSide = errors.New("unknown mapper side")
	// ErrDropRejected is returned when a drop fails the type or uniqueness
	// check. Nothing is written.
	ErrDropRejected = errors.New("drop rejected")
	// ErrKeyConflict is returned when a key shares a unique role with a
	// key already on the relation.
	ErrKeyConflict = errors.New("key conflicts with the relation")
	// ErrUnknownKey is returned for keys missing from the mapper keys.
	ErrUnknownKey = errors.New("unknown mapper key")
	// ErrNotCustom is returned when a provider field is edited or removed.
	ErrNotCustom = errors.New("field is not a custom field")
	// ErrFieldsLocked is returned when fields are added to a record that
	// does not allow managing fields.
	ErrFieldsLocked = errors.New("record does not allow managing fields")
	// ErrUnknownType is returned for custom field types missing from the
	// base types.
	ErrUnknownType = errors.New("unknown field type")
)

// Host is the metadata host a session talks to.
type Host interface {
	provider.Fetcher
	Submit(ctx context.Context, payload any) error
	GetInterfaceFields(ctx context.Context, kind string, editing bool) (host.InterfaceFields, error)
}

// sideState is one provider side of the canvas.
type sideState struct {
	fields     schema.Fields
	descriptor *provider.Descriptor
	canManage  bool
}

// Session is the context object of one mapper editing session.
// It is safe for concurrent use.
type Session struct {
	id      string
	host    Host
	fetch   *host.Cached
	logger  *logger.Logger
	log     *logrus.Entry
	variant provider.Variant

	inputs  *provider.Negotiator
	outputs *provider.Negotiator

	drafts   draft.Store
	delay    time.Duration
	autosave *draft.Autosaver

	mu         sync.Mutex
	generation uint64
	meta       mapping.Metadata
	selected   []string
	sides      map[common.Side]*sideState
	context    *schema.Fields
	relations  *relation.Store
	keys       relation.MapperKeys
	errs       map[provider.Phase]error
}

// Option configures a Session.
type Option func(*Session)

// WithID sets the interface id instead of a generated one.
func WithID(id string) Option {
	return func(s *Session) {
		s.id = id
	}
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// WithVariant sets the negotiation variant of both sides.
func WithVariant(v provider.Variant) Option {
	return func(s *Session) {
		s.variant = v
	}
}

// WithDrafts saves a draft to store a delay after each change.
func WithDrafts(store draft.Store, delay time.Duration) Option {
	return func(s *Session) {
		s.drafts = store
		s.delay = delay
	}
}

// New returns a session talking to h.
func New(h Host, opts ...Option) *Session {
	s := &Session{
		id:        uuid.NewString(),
		host:      h,
		logger:    logger.Discard(),
		relations: relation.NewStore(nil),
		errs:      make(map[provider.Phase]error),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.resetSides()
	s.log = s.logger.WithSession(s.id)
	s.fetch = host.NewCached(h,
		provider.BaseTypesURL,
		provider.BaseTypesURL+"?soft=1",
		provider.DefaultMapperKeysURL,
	)

	s.inputs = provider.NewNegotiator(s.fetch, common.SideInputs, s.variant)
	s.outputs = provider.NewNegotiator(s.fetch, common.SideOutputs, s.variant,
		provider.WithMapperKeys(s.mergeKeys))

	if s.drafts != nil {
		s.autosave = draft.NewAutosaver(s.drafts, s.delay, s.Snapshot, func(err error) {
			s.log.WithError(err).Warn("Draft autosave failed")
		})
	}

	return s
}

// ID returns the interface id of the session.
func (s *Session) ID() string {
	return s.id
}

// Close saves a pending draft and stops the autosave.
func (s *Session) Close() {
	if s.autosave == nil {
		return
	}

	s.autosave.Flush()
	s.autosave.Close()
}

// Metadata returns the metadata form.
func (s *Session) Metadata() mapping.Metadata {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.meta
}

// SetMetadata replaces the metadata form.
func (s *Session) SetMetadata(m mapping.Metadata) {
	s.mu.Lock()
	s.meta = m
	s.mu.Unlock()

	s.changed()
}

// SelectedFields lists the optional form fields in use.
func (s *Session) SelectedFields() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return common.Clone(s.selected)
}

// SetSelectedFields replaces the optional form fields in use.
func (s *Session) SetSelectedFields(names []string) {
	s.mu.Lock()
	s.selected = common.Clone(names)
	s.mu.Unlock()

	s.changed()
}

// Fields returns a copy of the tree of side. The context side is empty
// when the mapper has no context.
func (s *Session) Fields(side common.Side) schema.Fields {
	s.mu.Lock()
	defer s.mu.Unlock()

	if side == common.SideContext {
		if s.context == nil {
			return schema.Fields{}
		}

		return s.context.Clone()
	}

	if st, ok := s.sides[side]; ok {
		return st.fields.Clone()
	}

	return schema.Fields{}
}

// Flat returns the flattened tree of side.
func (s *Session) Flat(side common.Side) schema.FlatList {
	fields := s.Fields(side)
	return schema.Flatten(&fields)
}

// Descriptor returns the resolved provider of side, or nil.
func (s *Session) Descriptor(side common.Side) *provider.Descriptor {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.sides[side]
	if !ok || st.descriptor == nil {
		return nil
	}

	d := *st.descriptor

	return &d
}

// Relations returns a copy of the relation table.
func (s *Session) Relations() relation.Table {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.relations.Table()
}

// Keys returns a copy of the mapper keys.
func (s *Session) Keys() relation.MapperKeys {
	s.mu.Lock()
	defer s.mu.Unlock()

	return maps.Clone(s.keys)
}

// Err returns the connection error of phase, or nil.
func (s *Session) Err(phase provider.Phase) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.errs[phase]
}

// CanEdit reports whether the canvas may be shown: the mapper keys are
// loaded and no connection phase failed.
func (s *Session) CanEdit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.keys != nil && len(s.errs) == 0
}

// LoadMapperKeys fetches the default mapper keys. Keys announced by the
// output provider are kept on top of them.
func (s *Session) LoadMapperKeys(ctx context.Context) error {
	keys, err := provider.FetchMapperKeys(ctx, s.fetch)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.errs[provider.PhaseMapperKeys] = err
		s.log.WithError(err).Warn("Failed to load mapper keys")

		return err
	}

	delete(s.errs, provider.PhaseMapperKeys)
	s.setDefaultKeys(keys)

	return nil
}

// BaseTypes returns the types custom fields of side may use.
func (s *Session) BaseTypes(ctx context.Context, side common.Side) (schema.BaseTypes, error) {
	return provider.FetchBaseTypes(ctx, s.fetch, side)
}

// Clear drops the record, tree and relations of side. A soft clear keeps
// the provider selection.
func (s *Session) Clear(side common.Side, soft bool) error {
	n, err := s.negotiator(side)
	if err != nil {
		return err
	}

	n.Clear(soft)

	s.mu.Lock()
	s.sides[side] = &sideState{}
	s.relations.Reset()
	delete(s.errs, provider.PhaseForSide(side))
	s.mu.Unlock()

	s.log.WithField("side", side.String()).WithField("soft", soft).Debug("Cleared mapper side")
	s.changed()

	return nil
}

// Reset returns the session to its initial state. The mapper keys stay
// loaded; in-flight steps are superseded.
func (s *Session) Reset() {
	s.inputs.Reset()
	s.outputs.Reset()

	s.mu.Lock()
	s.generation++
	s.meta = mapping.Metadata{}
	s.selected = nil
	s.context = nil
	s.resetSides()
	s.relations.Reset()
	s.errs = make(map[provider.Phase]error)
	s.mu.Unlock()

	s.log.Debug("Session reset")
}

func (s *Session) resetSides() {
	s.sides = map[common.Side]*sideState{
		common.SideInputs:  {},
		common.SideOutputs: {},
	}
}

func (s *Session) negotiator(side common.Side) (*provider.Negotiator, error) {
	switch side {
	case common.SideInputs:
		return s.inputs, nil
	case common.SideOutputs:
		return s.outputs, nil
	default:
		return nil, ErrUnknownSide
	}
}

// mergeKeys adds keys announced by the output provider.
func (s *Session) mergeKeys(keys relation.MapperKeys) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.keys == nil {
		s.keys = make(relation.MapperKeys, len(keys))
	}

	maps.Copy(s.keys, keys)
}

// setDefaultKeys installs the default keys below any announced ones.
// Callers hold s.mu.
func (s *Session) setDefaultKeys(defaults relation.MapperKeys) {
	merged := maps.Clone(defaults)
	if merged == nil {
		merged = relation.MapperKeys{}
	}

	maps.Copy(merged, s.keys)
	s.keys = merged
}

func (s *Session) changed() {
	if s.autosave != nil {
		s.autosave.Changed()
	}
}
