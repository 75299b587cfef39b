// Package extract turns a locally cached profile file into per-depth
// measurement levels for a requested depth range and variable selection.
package extract

import (
	"strings"

	"github.com/oceandata/argo-explorer/internal/argo"
)

// depthVar is the pressure variable used directly as the depth proxy.
const depthVar = "PRES"

// qcSuffix marks per-variable quality-control flag variables.
const qcSuffix = "_QC"

// coreVariables and bioVariables are the fixed selections for the two
// named categories.
var (
	coreVariables = []string{"TEMP", "PSAL"}
	bioVariables  = []string{"CHLA", "DOXY", "NITRATE", "PH_IN_SITU_TOTAL", "BBP700", "DOWN_IRRADIANCE412"}
)

// Selection describes what to pull out of a profile file.
type Selection struct {
	Set      argo.VariableSet
	MinDepth float64
	MaxDepth float64
}

// Level is one per-depth measurement with its quality flags. Values uses
// NaN as the missing sentinel.
type Level struct {
	Depth  float64
	Values map[string]float64
	Flags  map[string]string
}

// Extractor reads measurement levels from a local profile file. Levels
// with an undefined depth or a depth outside the selection range are
// dropped. An unreadable or malformed file is a normal per-file failure;
// the session absorbs it and moves on.
type Extractor interface {
	Extract(path string, sel Selection) ([]Level, error)
}

// targetVariables resolves the fixed variable list for a named category.
// The "all" set is resolved per file from its discovered variables.
func targetVariables(set argo.VariableSet) []string {
	if set == argo.VariableSetBio {
		return bioVariables
	}
	return coreVariables
}

// discoverVariables filters a file's variable names down to measurement
// variables: flag variables and the depth variable itself are excluded.
// The depth variable's own value and flag are always carried separately.
func discoverVariables(names []string) []string {
	var out []string
	for _, name := range names {
		if name == depthVar || strings.HasSuffix(name, qcSuffix) {
			continue
		}
		out = append(out, name)
	}
	return out
}
