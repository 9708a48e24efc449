package provider

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"mapper-engine/internal/common"
	"mapper-engine/internal/relation"
	"mapper-engine/internal/schema"
)

// BaseTypesURL lists the types custom fields may use.
const BaseTypesURL = "dataprovider/basetypes"

// DefaultMapperKeysURL lists the relation keys known to every mapper.
const DefaultMapperKeysURL = "system/default_mapper_keys"

// FetchBaseTypes loads the custom field type catalog for side. Output
// fields use the soft variants.
func FetchBaseTypes(ctx context.Context, f Fetcher, side common.Side) (schema.BaseTypes, error) {
	url := BaseTypesURL
	if side == common.SideOutputs {
		url += "?soft=1"
	}

	data, err := f.Fetch(ctx, url)
	if err != nil {
		return nil, &PhaseError{Phase: PhaseForSide(side), URL: url, Err: err}
	}

	var types schema.BaseTypes
	if err := json.Unmarshal(data, &types); err != nil {
		return nil, fmt.Errorf("decode base types: %w", err)
	}

	return types, nil
}

// FetchMapperKeys loads the default mapper keys.
func FetchMapperKeys(ctx context.Context, f Fetcher) (relation.MapperKeys, error) {
	data, err := f.Fetch(ctx, DefaultMapperKeysURL)
	if err != nil {
		return nil, &PhaseError{Phase: PhaseMapperKeys, URL: DefaultMapperKeysURL, Err: err}
	}

	var keys relation.MapperKeys
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, &PhaseError{Phase: PhaseMapperKeys, URL: DefaultMapperKeysURL, Err: fmt.Errorf("decode mapper keys: %w", err)}
	}

	return keys, nil
}

// FetchSchema loads the fields of a saved descriptor.
func FetchSchema(ctx context.Context, f Fetcher, c Catalog, d Descriptor, side common.Side) (schema.Fields, error) {
	url, err := c.SchemaURL(d)
	if err != nil {
		return schema.Fields{}, err
	}

	data, err := f.Fetch(ctx, url)
	if err != nil {
		return schema.Fields{}, &PhaseError{Phase: PhaseForSide(side), URL: url, Err: err}
	}

	fields, err := DecodeFields(data)
	if err != nil {
		return schema.Fields{}, &PhaseError{Phase: PhaseForSide(side), URL: url, Err: err}
	}

	return fields, nil
}
