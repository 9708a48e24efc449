package provider

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/goccy/go-json"

	"mapper-engine/internal/common"
)

const childDetails = "/childDetails"

// step is one drill-down request, detached from the negotiator state.
type step struct {
	spec    Spec
	variant Variant
	side    common.Side
	options Options
	choice  Choice
	value   string
	index   int
}

type stepResult struct {
	details    Details
	record     *Record
	descriptor *Descriptor
}

// run fetches the node details and, when the node is terminal, its record.
// On failure it also returns the URL that failed.
func (s step) run(ctx context.Context, f Fetcher) (stepResult, string, error) {
	var out stepResult

	url := s.detailsURL()

	data, err := f.Fetch(ctx, url)
	if err != nil {
		return out, url, err
	}

	if err := json.Unmarshal(data, &out.details); err != nil {
		return out, url, fmt.Errorf("decode details: %w", err)
	}

	d := out.details

	if d.Fields != nil {
		out.record = &Record{Fields: *d.Fields, CanManageFields: d.CanManageFields}
		out.descriptor = s.descriptor(d, d.CanManageFields)

		return out, "", nil
	}

	url, keep, ok := s.recordPlan(d)
	if !ok {
		return out, "", nil
	}

	data, err = f.Fetch(ctx, url)
	if err != nil {
		return out, url, err
	}

	rec, err := DecodeRecord(data, s.spec.RequiresRecord)
	if err != nil {
		return out, url, err
	}

	if keep {
		out.record = &rec
	}

	out.descriptor = s.descriptor(d, rec.CanManageFields)

	return out, "", nil
}

func (s step) optionsActive() bool {
	return s.spec.SuffixRequiresOptions && len(s.options) > 0
}

// detailsURL is <url>/<value><suffix>, with child details and options
// when the kind asks for them.
func (s step) detailsURL() string {
	suffix := s.choice.Suffix
	if s.spec.WithDetails {
		suffix += childDetails
	}

	if s.spec.SuffixRequiresOptions {
		switch {
		case len(s.options) > 0:
			suffix += "?" + s.options.QueryString()
		case s.index == 1:
			suffix = childDetails
		}
	}

	return s.choice.URL + "/" + s.value + suffix
}

// optionsRecordURL is the record URL of option-bearing kinds.
func (s step) optionsRecordURL() string {
	url := s.choice.URL + "/" + s.value + s.choice.Suffix + s.spec.RecordSuffix + "?" + s.options.QueryString()
	if s.side == common.SideOutputs {
		url += "&soft=true"
	}

	return url
}

// recordPlan decides whether the node's record is fetched, from where, and
// whether it becomes the resolved schema.
func (s step) recordPlan(d Details) (url string, keep, ok bool) {
	base := s.choice.URL + "/" + s.value

	if s.variant.ConfigItem || d.HasRecord || !s.spec.RequiresRecord {
		switch {
		case s.optionsActive():
			return s.optionsRecordURL(), true, true
		case s.spec.SuffixRequiresOptions:
			suffix := s.choice.Suffix
			if s.spec.WithDetails {
				suffix += childDetails
			}

			return base + suffix + s.spec.RecordSuffix, true, true
		default:
			return base + s.choice.Suffix + s.spec.RecordSuffix, true, true
		}
	}

	if d.hasType() || s.spec.Kind == KindFactory || (s.variant.RequiresRequest && d.SupportsRequest) {
		if s.optionsActive() {
			return s.optionsRecordURL(), d.hasType(), true
		}

		suffix := s.choice.Suffix
		if d.SupportsChildren || d.hasTypeFalse() {
			suffix += childDetails
		}

		if d.HasRecord {
			suffix += s.spec.RecordSuffix
		}

		return base + suffix, d.hasType(), true
	}

	return "", false, false
}

// nextLevel returns the level opened by the node: its children, or the
// request/response pair of request-capable nodes.
func (s step) nextLevel(d Details) (Level, bool) {
	url := s.choice.URL + "/" + s.value + s.choice.Suffix

	if len(d.Children) > 0 {
		children := s.variant.FilterChildren(d.Children)

		values := make([]Choice, 0, len(children))
		for _, c := range children {
			values = append(values, Choice{Name: c.Name, Desc: c.Desc, URL: url})
		}

		return Level{Values: values}, true
	}

	if d.SupportsRequest && !s.variant.RequiresRequest {
		return Level{Values: []Choice{
			{Name: SubtypeRequest, URL: url},
			{Name: SubtypeResponse, URL: url},
		}}, true
	}

	return Level{}, false
}

// descriptor describes the node as a resolved record. The name is the
// third segment of the node URL; the path is what lies below the name,
// without the kind's provider hop and the request/response subtype.
func (s step) descriptor(d Details, canManageFields bool) *Descriptor {
	full := s.choice.URL + "/" + s.value

	var name string
	if parts := strings.Split(full, "/"); len(parts) > 2 {
		name = parts[2]
	}

	segments := strings.Split(strings.TrimPrefix(full, s.spec.URL+"/"), "/")
	if len(segments) > 0 && segments[0] == name {
		segments = segments[1:]
	}

	if i := slices.Index(segments, "provider"); i >= 0 {
		segments = slices.Delete(segments, i, i+1)
	}

	var subtype string
	if s.value == SubtypeRequest || s.value == SubtypeResponse {
		subtype = s.value
		segments = segments[:len(segments)-1]
	}

	desc := &Descriptor{
		Type:            s.spec.Kind,
		Name:            name,
		Path:            leadingSlash(strings.Join(segments, "/")),
		Subtype:         subtype,
		IsAPICall:       s.variant.RequiresRequest,
		SupportsRequest: d.SupportsRequest,
		SupportsRead:    d.SupportsRead,
		SupportsUpdate:  d.SupportsUpdate,
		SupportsCreate:  d.SupportsCreate,
		SupportsDelete:  d.SupportsDelete,
		CanManageFields: canManageFields,
	}

	if s.spec.SuffixRequiresOptions && len(s.options) > 0 {
		desc.Options = s.options.Clone()
	}

	return desc
}
