package draft

import (
	"crypto/md5"
	"encoding/hex"
	"time"

	"mapper-engine/internal/mapping"
	"mapper-engine/internal/provider"
	"mapper-engine/internal/relation"
	"mapper-engine/internal/schema"
)

// InterfaceKind is the kind recorded on mapper drafts.
const InterfaceKind = "mapper"

// Draft is the saved state of an editing session.
type Draft struct {
	ID            string `json:"interfaceId"`
	InterfaceKind string `json:"interfaceKind"`
	// Fields holds the metadata form.
	Fields mapping.Metadata `json:"fields"`
	// SelectedFields lists the optional form fields the user enabled.
	SelectedFields []string  `json:"selectedFields,omitempty"`
	Diagram        Diagram   `json:"diagram"`
	SavedAt        time.Time `json:"savedAt"`
}

// Diagram is the mapping canvas: both trees, the relations and the
// provider negotiations.
type Diagram struct {
	Inputs         schema.Fields       `json:"inputs"`
	Outputs        schema.Fields       `json:"outputs"`
	Context        schema.Fields       `json:"context"`
	Relations      relation.Table      `json:"relations"`
	InputProvider  provider.State      `json:"inputProvider"`
	OutputProvider provider.State      `json:"outputProvider"`
	MapperKeys     relation.MapperKeys `json:"mapperKeys,omitempty"`
}

// HasContent reports whether the draft is worth keeping: some metadata was
// typed, a provider was picked, or a relation exists.
func (d *Draft) HasContent() bool {
	if d == nil {
		return false
	}

	return d.Fields.Name != "" ||
		d.Fields.Desc != "" ||
		d.Diagram.InputProvider.Kind != "" ||
		d.Diagram.OutputProvider.Kind != "" ||
		len(d.Diagram.Relations.FilterEmpty()) > 0
}

// ID returns the draft id of a mapper: the md5 of its target file when it
// has one, the interface id otherwise.
func ID(targetFile, interfaceID string) string {
	if targetFile == "" {
		return interfaceID
	}

	sum := md5.Sum([]byte(targetFile))

	return hex.EncodeToString(sum[:])
}
