package provider

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/goccy/go-json"

	"mapper-engine/internal/common"
	"mapper-engine/internal/relation"
)

// Wildcard is the node name that stands for a caller-supplied literal.
const Wildcard = "*"

// Fetcher issues a request to the metadata host and returns the response
// body. Host-reported failures come back as errors.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Choice is one selectable node of a level.
type Choice struct {
	Name   string `json:"name"`
	Desc   string `json:"desc,omitempty"`
	URL    string `json:"url"`
	Suffix string `json:"suffix"`
}

// Level is one resolved or pending depth of the hierarchy.
type Level struct {
	Values []Choice `json:"values"`
	// Choice is the picked node, Value the name sent to the host. They
	// differ only for wildcard nodes.
	Choice string `json:"choice,omitempty"`
	Value  string `json:"value,omitempty"`
}

func (l Level) find(name string) (Choice, bool) {
	for _, c := range l.Values {
		if c.Name == name {
			return c, true
		}
	}

	return Choice{}, false
}

// State is a snapshot of a negotiation.
type State struct {
	Kind       Kind        `json:"provider,omitempty"`
	Levels     []Level     `json:"children,omitempty"`
	Options    Options     `json:"options,omitempty"`
	Descriptor *Descriptor `json:"descriptor,omitempty"`
	Record     *Record     `json:"-"`
	Loading    bool        `json:"-"`
	Err        error       `json:"-"`
}

// Negotiator drives the drill-down of one side of a mapper.
// It is safe for concurrent use.
type Negotiator struct {
	fetcher      Fetcher
	catalog      Catalog
	side         common.Side
	onMapperKeys func(relation.MapperKeys)

	mu           sync.Mutex
	generation   uint64
	kind         Kind
	levels       []Level
	options      Options
	descriptions []string
	loading      bool
	err          error
	record       *Record
	descriptor   *Descriptor
}

// NegotiatorOption configures a Negotiator.
type NegotiatorOption func(*Negotiator)

// WithMapperKeys registers a callback for mapper keys announced by output
// records.
func WithMapperKeys(fn func(relation.MapperKeys)) NegotiatorOption {
	return func(n *Negotiator) {
		n.onMapperKeys = fn
	}
}

// WithCatalog overrides the catalog built from the variant.
func WithCatalog(c Catalog) NegotiatorOption {
	return func(n *Negotiator) {
		n.catalog = c
	}
}

// NewNegotiator returns a negotiator for one side of a mapper.
func NewNegotiator(fetcher Fetcher, side common.Side, variant Variant, opts ...NegotiatorOption) *Negotiator {
	n := &Negotiator{
		fetcher: fetcher,
		catalog: NewCatalog(variant),
		side:    side,
	}

	for _, opt := range opts {
		opt(n)
	}

	return n
}

// Catalog returns the provider kinds this negotiator offers.
func (n *Negotiator) Catalog() Catalog {
	return n.catalog
}

// Side returns the mapper side being negotiated.
func (n *Negotiator) Side() common.Side {
	return n.side
}

// State returns a copy of the current state.
func (n *Negotiator) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()

	s := State{
		Kind:    n.kind,
		Levels:  cloneLevels(n.levels),
		Options: n.options.Clone(),
		Loading: n.loading,
		Err:     n.err,
	}

	if n.descriptor != nil {
		d := *n.descriptor
		s.Descriptor = &d
	}

	if n.record != nil {
		r := Record{Fields: n.record.Fields.Clone(), CanManageFields: n.record.CanManageFields}
		s.Record = &r
	}

	return s
}

// SelectProvider lists the root objects of kind and replaces the levels
// with a single pending level. Relations are left to the caller.
func (n *Negotiator) SelectProvider(ctx context.Context, kind Kind) error {
	spec, ok := n.catalog.Spec(kind)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	n.mu.Lock()
	n.generation++
	gen := n.generation
	n.kind = kind
	n.levels = nil
	n.descriptions = nil
	n.record = nil
	n.descriptor = nil
	n.err = nil
	n.loading = true
	n.mu.Unlock()

	data, err := n.fetcher.Fetch(ctx, spec.URL)

	var listing Listing
	if err == nil {
		err = json.Unmarshal(data, &listing)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if gen != n.generation {
		return ErrStale
	}

	n.loading = false

	if err != nil {
		n.err = &PhaseError{Phase: PhaseForSide(n.side), URL: spec.URL, Err: err}
		return n.err
	}

	children := n.catalog.Variant().FilterChildren(spec.FilterRoots(listing, n.side))

	values := make([]Choice, 0, len(children))
	for _, c := range children {
		values = append(values, Choice{Name: c.Name, Desc: c.Desc, URL: spec.URL, Suffix: spec.Suffix})
	}

	n.levels = []Level{{Values: values}}

	return nil
}

// SelectChild picks value at level index and drills down. The wildcard
// node is refused; use ResolveWildcard.
func (n *Negotiator) SelectChild(ctx context.Context, index int, value string) error {
	if value == Wildcard {
		return ErrWildcardValue
	}

	return n.drill(ctx, index, value, value, nil)
}

// ResolveWildcard picks the wildcard node at level index, sending literal
// in its place.
func (n *Negotiator) ResolveWildcard(ctx context.Context, index int, literal string) error {
	if strings.TrimSpace(literal) == "" || literal == Wildcard {
		return ErrWildcardValue
	}

	return n.drill(ctx, index, Wildcard, literal, nil)
}

// GoBack undoes the deepest selection: a trailing unresolved level is
// dropped, the last resolved level is popped and the value picked at the
// new last level is re-resolved. Popping the only level starts over from
// the provider list.
func (n *Negotiator) GoBack(ctx context.Context) error {
	n.mu.Lock()

	if n.kind == "" {
		n.mu.Unlock()
		return ErrNoProvider
	}

	if n.loading {
		n.mu.Unlock()
		return ErrBusy
	}

	kind := n.kind
	levels := n.levels

	if len(levels) > 0 && levels[len(levels)-1].Value == "" {
		levels = levels[:len(levels)-1]
	}

	if len(levels) > 0 {
		levels = levels[:len(levels)-1]
	}

	n.levels = cloneLevels(levels)
	n.record = nil
	n.descriptor = nil

	if len(n.levels) == 0 {
		n.mu.Unlock()
		return n.SelectProvider(ctx, kind)
	}

	index := len(n.levels) - 1
	last := n.levels[index]
	n.mu.Unlock()

	if last.Value == "" {
		return nil
	}

	return n.drill(ctx, index, last.Choice, last.Value, nil)
}

// SetOptions replaces the constructor options and re-fetches the deepest
// resolved level with them. The levels above it are kept.
func (n *Negotiator) SetOptions(ctx context.Context, opts Options) error {
	n.mu.Lock()

	if n.loading {
		n.mu.Unlock()
		return ErrBusy
	}

	index := -1

	for i := len(n.levels) - 1; i >= 0; i-- {
		if n.levels[i].Value != "" {
			index = i
			break
		}
	}

	if index < 0 {
		n.options = opts.Clone()
		n.mu.Unlock()

		return nil
	}

	level := n.levels[index]
	n.mu.Unlock()

	return n.drill(ctx, index, level.Choice, level.Value, &opts)
}

// Clear drops the resolved record and any error. A hard clear also drops
// the provider and its levels and supersedes in-flight steps.
func (n *Negotiator) Clear(soft bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.record = nil
	n.descriptor = nil
	n.err = nil

	if !soft {
		n.generation++
		n.kind = ""
		n.levels = nil
		n.descriptions = nil
		n.loading = false
	}
}

// Reset returns the negotiator to its initial state. Responses of steps
// started before the reset are dropped.
func (n *Negotiator) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.generation++
	n.kind = ""
	n.levels = nil
	n.options = nil
	n.descriptions = nil
	n.loading = false
	n.err = nil
	n.record = nil
	n.descriptor = nil
}

// Restore loads a saved state. The record is not re-fetched.
func (n *Negotiator) Restore(s State) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.generation++
	n.kind = s.Kind
	n.levels = cloneLevels(s.Levels)
	n.options = s.Options.Clone()
	n.loading = false
	n.err = nil
	n.record = s.Record
	n.descriptor = s.Descriptor
	n.descriptions = nil

	if s.Descriptor != nil {
		n.descriptions = slices.Clone(s.Descriptor.Descriptions)
	}
}

// drill fetches the details of a node and moves the negotiation on.
// Non-nil opts replace the constructor options once the step starts.
func (n *Negotiator) drill(ctx context.Context, index int, choiceName, value string, opts *Options) error {
	n.mu.Lock()

	if n.kind == "" {
		n.mu.Unlock()
		return ErrNoProvider
	}

	if n.loading {
		n.mu.Unlock()
		return ErrBusy
	}

	if index < 0 || index >= len(n.levels) {
		n.mu.Unlock()
		return fmt.Errorf("%w: level %d", ErrUnknownChoice, index)
	}

	choice, ok := n.levels[index].find(choiceName)
	if !ok {
		n.mu.Unlock()
		return fmt.Errorf("%w: %q at level %d", ErrUnknownChoice, choiceName, index)
	}

	spec, _ := n.catalog.Spec(n.kind)

	if opts != nil {
		n.options = opts.Clone()
	}

	n.generation++
	gen := n.generation
	n.loading = true
	n.record = nil
	n.descriptor = nil
	n.err = nil

	st := step{
		spec:    spec,
		variant: n.catalog.Variant(),
		side:    n.side,
		options: n.options.Clone(),
		choice:  choice,
		value:   value,
		index:   index,
	}
	n.mu.Unlock()

	out, failedURL, err := st.run(ctx, n.fetcher)

	n.mu.Lock()

	if gen != n.generation {
		n.mu.Unlock()
		return ErrStale
	}

	n.loading = false

	if err != nil {
		n.err = &PhaseError{Phase: PhaseForSide(n.side), URL: failedURL, Err: err}
		n.mu.Unlock()

		return n.err
	}

	levels := cloneLevels(n.levels[:index+1])
	levels[index].Choice = choiceName
	levels[index].Value = value

	descriptions := make([]string, index+1)
	copy(descriptions, n.descriptions)

	if out.details.Desc != "" {
		descriptions[index] = out.details.Desc
	}

	n.descriptions = descriptions

	if next, ok := st.nextLevel(out.details); ok {
		levels = append(levels, next)
	}

	n.levels = levels
	n.record = out.record

	if out.descriptor != nil {
		out.descriptor.Descriptions = compact(descriptions)
		n.descriptor = out.descriptor
	}

	notify := n.onMapperKeys
	n.mu.Unlock()

	if notify != nil && n.side == common.SideOutputs && len(out.details.MapperKeys) > 0 {
		notify(out.details.MapperKeys)
	}

	return nil
}

func cloneLevels(levels []Level) []Level {
	if levels == nil {
		return nil
	}

	out := make([]Level, len(levels))
	for i, l := range levels {
		out[i] = Level{Values: slices.Clone(l.Values), Choice: l.Choice, Value: l.Value}
	}

	return out
}

func compact(descriptions []string) []string {
	var out []string

	for _, d := range descriptions {
		if d != "" {
			out = append(out, d)
		}
	}

	return out
}
