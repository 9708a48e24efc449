package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions_QueryString(t *testing.T) {
	opts := Options{
		"table":  {Type: "string", Value: "orders"},
		"dsn":    {Value: "x"},
		"limit":  {Type: "int", Value: 10},
		"absent": {},
	}

	assert.Equal(t, "provider_yaml_options={absent=,dsn=eA==,limit=MTA=,table=b3JkZXJz}", opts.QueryString())
	assert.Equal(t, "provider_yaml_options={}", Options{}.QueryString())
}

func TestDescriptor_URL(t *testing.T) {
	tests := []struct {
		name string
		desc Descriptor
		opts URLOptions
		want string
	}{
		{
			name: "connection record",
			desc: Descriptor{Type: KindConnection, Name: "conn", Path: "/orders"},
			want: "remote/user/conn/provider/orders/record",
		},
		{
			name: "record search",
			desc: Descriptor{Type: KindDatasource, Name: "omq", Path: "/t"},
			opts: URLOptions{IsRecordSearch: true},
			want: "remote/datasources/omq/provider/t",
		},
		{
			name: "api call",
			desc: Descriptor{Type: KindRemote, Name: "r", Path: "/api", IsAPICall: true},
			want: "remote/qorus/r/provider/api",
		},
		{
			name: "subtype ending",
			desc: Descriptor{Type: KindConnection, Name: "c", Path: "/api/request"},
			want: "remote/user/c/provider/api/request",
		},
		{
			name: "type subtype",
			desc: Descriptor{Type: KindType, Name: "qore", Path: "/api/response"},
			want: "dataprovider/types/qore/api/response?action=type",
		},
		{
			name: "type record",
			desc: Descriptor{Type: KindType, Name: "qore", Path: "/hash"},
			want: "dataprovider/types/qore/hash?action=type",
		},
		{
			name: "factory options",
			desc: Descriptor{Type: KindFactory, Name: "db", Path: "/t", Options: Options{"dsn": {Value: "x"}}},
			want: "dataprovider/factories/db/provider/t/record?provider_yaml_options={dsn=eA==}",
		},
		{
			name: "factory constructor options",
			desc: Descriptor{Type: KindFactory, Name: "db"},
			opts: URLOptions{WithOptions: true, HasAPIContext: true},
			want: "dataprovider/factories/db/provider_info/constructor_options?context=ui&context=api",
		},
		{
			name: "connection constructor options",
			desc: Descriptor{Type: KindConnection, Name: "c"},
			opts: URLOptions{WithOptions: true},
			want: "remote/user/c/constructor_options?context=ui",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.desc.URL(tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Descriptor{Type: "bogus", Name: "x"}.URL(URLOptions{})
	require.ErrorIs(t, err, ErrUnknownKind)
}

func TestCatalog_SchemaURL(t *testing.T) {
	url, err := DefaultCatalog.SchemaURL(Descriptor{Type: KindConnection, Name: "c", Path: "/t"})
	require.NoError(t, err)
	assert.Equal(t, "remote/user/c/provider/t/record", url)

	url, err = DefaultCatalog.SchemaURL(Descriptor{Type: KindType, Name: "qore", Path: "/hash"})
	require.NoError(t, err)
	assert.Equal(t, "dataprovider/types/qore/hash", url)

	url, err = NewCatalog(Variant{ConfigItem: true}).SchemaURL(Descriptor{Type: KindFactory, Name: "db", Path: "/t"})
	require.NoError(t, err)
	assert.Equal(t, "dataprovider/factories/db/provider/t", url)
}

func TestParseDescriptor(t *testing.T) {
	tests := []struct {
		input string
		want  Descriptor
	}{
		{"connection/conn/orders", Descriptor{Type: KindConnection, Name: "conn", Path: "/orders"}},
		{"type/qore/hash/sub", Descriptor{Type: KindType, Name: "qore", Path: "/hash/sub"}},
		{"datasource/omq", Descriptor{Type: KindDatasource, Name: "omq"}},
		{
			"factory/db{dsn=eA==,table=t}/rows",
			Descriptor{Type: KindFactory, Name: "db", Path: "/rows", Options: Options{"dsn": {Value: "eA=="}, "table": {Value: "t"}}},
		},
		{
			"factory/db{a=1}/rows?options_changed",
			Descriptor{Type: KindFactory, Name: "db", Path: "/rows", Options: Options{"a": {Value: "1"}}, OptionsChanged: true},
		},
		{"factory/db/rows", Descriptor{Type: KindFactory, Name: "db", Path: "/rows"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDescriptor(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseDescriptor("")
	require.Error(t, err)

	_, err = ParseDescriptor("connection")
	require.Error(t, err)
}

func TestDescriptor_String(t *testing.T) {
	d := Descriptor{Type: KindFactory, Name: "db", Path: "/rows", Options: Options{"b": {Value: "2"}, "a": {Value: "1"}}}
	assert.Equal(t, "factory/db{a=1,b=2}/rows", d.String())

	back, err := ParseDescriptor(d.String())
	require.NoError(t, err)
	assert.Equal(t, d.Identity(), back.Identity())

	c := Descriptor{Type: KindConnection, Name: "conn", Path: "/t"}
	assert.Equal(t, "connection/conn/t", c.String())
}

func TestNewCatalog(t *testing.T) {
	assert.Equal(t, []Kind{KindType, KindConnection, KindRemote, KindDatasource, KindFactory}, DefaultCatalog.Kinds())

	ci := NewCatalog(Variant{ConfigItem: true})
	assert.Equal(t, []Kind{KindConnection, KindRemote, KindDatasource, KindFactory}, ci.Kinds())

	factory, ok := ci.Spec(KindFactory)
	require.True(t, ok)
	assert.False(t, factory.RequiresRecord)
	assert.Empty(t, factory.RecordSuffix)

	assert.Equal(t, []Kind{KindConnection, KindRemote, KindFactory}, NewCatalog(Variant{RequiresRequest: true}).Kinds())
	assert.NotContains(t, NewCatalog(Variant{RecordType: true}).Kinds(), KindType)
}
