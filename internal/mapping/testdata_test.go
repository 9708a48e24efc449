package mapping

import (
	"mapper-engine/internal/relation"
	"mapper-engine/internal/schema"
)

const sampleYAML = `
name: order-export
desc: Exports orders to the warehouse
author:
  - Jane Doe
  - name: John Roe
fields:
  id:
    name: order_id
  customer.name:
    name: customer.name
  status:
    constant: new
  origin:
    context: "$static:{origin}"
  empty: {}
mapper_options:
  mapper-input:
    type: connection
    name: omq
    path: /orders
  mapper-output:
    type: type
    name: qore
    path: /hash
    custom-fields:
      note:
        name: note
        type:
          name: string
          types_accepted: [string]
        isCustom: true
        firstCustomInHierarchy: true
`

func typed(name string, types ...string) schema.FieldType {
	return schema.FieldType{Name: name, TypesReturned: types, TypesAccepted: types}
}

func inputTree() schema.Fields {
	return schema.NewFields(
		&schema.Field{Name: "order_id", Type: typed("int", "int")},
		&schema.Field{Name: "customer", Type: schema.FieldType{
			Name:   "hash",
			Fields: schema.NewFields(&schema.Field{Name: "name", Type: typed("string", "string")}),
		}},
	)
}

func outputTree() schema.Fields {
	return schema.NewFields(
		&schema.Field{Name: "id", Type: typed("int", "int")},
		&schema.Field{Name: "customer", Type: schema.FieldType{
			Name:   "hash",
			Fields: schema.NewFields(&schema.Field{Name: "name", Type: typed("string", "string")}),
		}},
		&schema.Field{Name: "status", Type: typed("string", "string")},
		&schema.Field{Name: "origin", Type: typed("string", "string")},
		&schema.Field{Name: "empty", Type: typed("string", "string")},
		&schema.Field{Name: "note", Type: typed("string", "string"), IsCustom: true, FirstCustomInHierarchy: true},
	)
}

func contextTree() schema.Fields {
	return schema.NewFields(&schema.Field{Name: "origin", Type: typed("string", "string")})
}

func flat(f schema.Fields) schema.FlatList {
	return schema.Flatten(&f)
}

func sampleKeys() relation.MapperKeys {
	return relation.MapperKeys{
		relation.KeyName:    {UniqueRoles: []string{"source"}},
		relation.KeyContext: {UniqueRoles: []string{"source"}},
		"constant":          {UniqueRoles: []string{"source"}, ValueType: "any", RequiresFieldType: true},
		"default":           {ValueType: "string"},
	}
}
