package diagnostic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mapper-engine/internal/common"
)

func TestDiagnostics_ErrorJoinsMessages(t *testing.T) {
	var d Diagnostics

	assert.True(t, d.IsValid())
	assert.NoError(t, d.Error())

	d.AddError("multiple_sources", "relation binds more than one source", common.SideOutputs, "out1")
	d.AddError("unknown_output", "output field not found", common.SideOutputs, "a.b")
	d.AddWarning("incompatible_context", "context binding removed", common.SideContext, "out2")

	require.True(t, d.HasErrors())
	err := d.Error()
	require.Error(t, err)
	assert.Equal(t,
		"[outputs] out1: [multiple_sources] relation binds more than one source; "+
			"[outputs] a.b: [unknown_output] output field not found",
		err.Error())
	assert.Equal(t, 1, d.Count("incompatible_context"))
	assert.Equal(t, 3, d.Len())
}

func TestDiagnostics_Merge(t *testing.T) {
	var a, b Diagnostics

	a.AddInfo("i", "info", "", "")
	b.AddWarning("w", "warn", "", "")
	b.AddError("e", "err", "", "")

	a.Merge(b)

	assert.Len(t, a.Infos, 1)
	assert.Len(t, a.Warnings, 1)
	assert.Len(t, a.Errors, 1)
	assert.Equal(t, "[e] err", a.Errors[0].String())
}

func TestDiagnostics_AllOrder(t *testing.T) {
	var d Diagnostics

	d.AddInfo("i", "info", "", "")
	d.AddWarning("w", "warn", "", "")
	d.AddError("e", "err", "", "")

	var codes []string
	for diag := range d.All() {
		codes = append(codes, diag.Code)
	}

	assert.Equal(t, []string{"e", "w", "i"}, codes)
}

func TestDiagnostic_Suggestions(t *testing.T) {
	var d Diagnostics

	d.AddError("unknown_input_field", "missing input", common.SideInputs, "nmae", "name", "names")

	assert.Equal(t, "[inputs] nmae: [unknown_input_field] missing input (did you mean name, names?)",
		d.Errors[0].String())
}

func TestSeverity_String(t *testing.T) {
	assert.Equal(t, "info", SeverityInfo.String())
	assert.Equal(t, "warning", SeverityWarning.String())
	assert.Equal(t, "error", SeverityError.String())
	assert.Equal(t, "unknown", Severity(42).String())
}
