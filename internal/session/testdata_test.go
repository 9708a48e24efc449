package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"mapper-engine/internal/common"
	"mapper-engine/internal/host"
	"mapper-engine/internal/mapping"
	"mapper-engine/internal/provider"
	"mapper-engine/internal/schema"
)

const (
	peopleRecordURL = "remote/user/src/provider/people/record"
	usersDetailsURL = "remote/user/dst/provider/users/childDetails"
	usersRecordURL  = "remote/user/dst/provider/users/record"
)

func leaf(name, typ string) string {
	return fmt.Sprintf(`%q:{"name":%q,"type":{"name":%q,"base_type":%q,"types_returned":[%q],"types_accepted":[%q]}}`,
		name, name, typ, typ, typ, typ)
}

func hash(name string, manage bool, children ...string) string {
	return fmt.Sprintf(`%q:{"name":%q,"type":{"name":"hash","base_type":"hash","types_returned":["hash"],`+
		`"types_accepted":["hash<auto>","hash"],"can_manage_fields":%t,"fields":{%s}}}`,
		name, name, manage, strings.Join(children, ","))
}

func object(entries ...string) string {
	return "{" + strings.Join(entries, ",") + "}"
}

var (
	peopleRecord = object(
		leaf("first_name", "string"),
		leaf("age", "int"),
		hash("address", false, leaf("city", "string")),
	)
	usersFields = object(
		leaf("fullname", "string"),
		leaf("years", "int"),
		hash("payload", false),
		hash("meta", true),
	)
)

const (
	defaultKeys = `{
		"name":{"unique_roles":["source"]},
		"use_input_record":{"unique_roles":["source"]},
		"context":{"unique_roles":["source"]},
		"constant":{"unique_roles":["source"],"value_type":"any","requires_field_type":true},
		"code":{"value_type":"string"}
	}`
	baseTypes = `[
		{"name":"string","typename":"string","base_type":"string","types_returned":["string"],"types_accepted":["string"]},
		{"name":"*string","typename":"*string","base_type":"string","types_returned":["string","nothing"],"types_accepted":["string","nothing"]},
		{"name":"int","typename":"int","base_type":"int","types_returned":["int"],"types_accepted":["int"]},
		{"name":"hash<auto>","typename":"hash<auto>","base_type":"hash","types_returned":["hash"],"types_accepted":["hash<auto>","hash"],"can_manage_fields":true}
	]`
)

// newHost serves a connection "src" exposing "people" and a connection
// "dst" exposing "users", whose details carry the fields.
func newHost(t *testing.T) *host.Memory {
	t.Helper()

	h := host.NewMemory()
	routes := map[string]string{
		provider.DefaultMapperKeysURL:            defaultKeys,
		provider.BaseTypesURL:                    baseTypes,
		provider.BaseTypesURL + "?soft=1":        baseTypes,
		"remote/user":                            `[{"name":"src","has_provider":true},{"name":"dst","has_provider":true}]`,
		"remote/user/src/provider/childDetails":  `{"desc":"Source","children":[{"name":"people","has_record":true}]}`,
		"remote/user/src/provider/people/childDetails": `{"desc":"People","has_record":true,"supports_read":true}`,
		peopleRecordURL:                         peopleRecord,
		"remote/user/dst/provider/childDetails": `{"desc":"Target","children":[{"name":"users","has_record":true}]}`,
		usersDetailsURL: `{"desc":"Users","supports_create":true,"can_manage_fields":true,` +
			`"mapper_keys":{"sequence":{"value_type":"string"}},"fields":` + usersFields + `}`,
		usersRecordURL: usersFields,
	}

	for url, body := range routes {
		require.NoError(t, h.Set(url, body))
	}

	return h
}

// connect resolves both sides and loads the mapper keys.
func connect(t *testing.T, s *Session) {
	t.Helper()

	ctx := context.Background()

	require.NoError(t, s.LoadMapperKeys(ctx))

	require.NoError(t, s.SelectProvider(ctx, common.SideInputs, provider.KindConnection))
	require.NoError(t, s.SelectChild(ctx, common.SideInputs, 0, "src"))
	require.NoError(t, s.SelectChild(ctx, common.SideInputs, 1, "people"))

	require.NoError(t, s.SelectProvider(ctx, common.SideOutputs, provider.KindConnection))
	require.NoError(t, s.SelectChild(ctx, common.SideOutputs, 0, "dst"))
	require.NoError(t, s.SelectChild(ctx, common.SideOutputs, 1, "users"))
}

func sampleMetadata() mapping.Metadata {
	return mapping.Metadata{
		Name:    "people-to-users",
		Version: "1.0",
		Desc:    "Copies people into users",
		Author:  mapping.Authors{"Jane"},
	}
}

func contextFields(names ...string) *schema.Fields {
	var fields schema.Fields
	for _, n := range names {
		fields.Set(&schema.Field{Name: n, Type: schema.FieldType{
			Name:          "string",
			TypesReturned: []string{"string"},
			TypesAccepted: []string{"string"},
		}})
	}

	return &fields
}

func hostInterface(kind string, fields *schema.Fields) host.InterfaceFields {
	return host.InterfaceFields{Kind: kind, Fields: fields.Clone()}
}

// gatedHost blocks fetches of one URL until the gate is closed.
type gatedHost struct {
	*host.Memory

	url     string
	gate    chan struct{}
	started chan struct{}
	once    sync.Once
}

func (g *gatedHost) Fetch(ctx context.Context, url string) ([]byte, error) {
	if url == g.url {
		g.once.Do(func() { close(g.started) })

		select {
		case <-g.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return g.Memory.Fetch(ctx, url)
}

// lateHost answers every fields request with the same message, as when
// an answer to an earlier request arrives late.
type lateHost struct {
	*host.Memory

	answer host.InterfaceFields
}

func (l *lateHost) GetInterfaceFields(context.Context, string, bool) (host.InterfaceFields, error) {
	return host.InterfaceFields{Kind: l.answer.Kind, Fields: l.answer.Fields.Clone()}, nil
}
