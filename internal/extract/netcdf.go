package extract

import (
	"fmt"
	"math"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"

	"github.com/oceandata/argo-explorer/internal/argo"
)

// NetCDF reads Argo profile files in NetCDF form. Variables are laid out
// as [N_PROF][N_LEVELS] arrays; quality flags are parallel char arrays
// named <VAR>_QC.
type NetCDF struct{}

// NewNetCDF returns the NetCDF-backed extractor.
func NewNetCDF() *NetCDF {
	return &NetCDF{}
}

// column is one selected measurement variable resolved against a file.
type column struct {
	name    string
	data    [][]float64
	fill    float64
	hasFill bool
	flags   []string
}

// Extract implements Extractor. A file without the pressure variable
// yields zero levels; variables absent from the file are simply not
// columns in its rows.
func (e *NetCDF) Extract(path string, sel Selection) ([]Level, error) {
	nc, err := netcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer nc.Close()

	presVar, err := nc.GetVariable(depthVar)
	if err != nil || presVar == nil {
		return nil, nil
	}
	pres, ok := floatMatrix(presVar.Values)
	if !ok {
		return nil, nil
	}
	presFill, hasPresFill := fillValue(presVar.Attributes)

	var names []string
	if sel.Set == argo.VariableSetAll {
		names = discoverVariables(nc.ListVariables())
	} else {
		names = targetVariables(sel.Set)
	}

	cols := resolveColumns(nc, names, pres)

	// In discovery mode the depth variable's own value and flag ride along
	// as a regular column.
	if sel.Set == argo.VariableSetAll {
		pc := column{name: depthVar, data: pres, fill: presFill, hasFill: hasPresFill}
		pc.flags = flagRows(nc, depthVar, len(pres))
		cols = append(cols, pc)
	}

	var levels []Level
	for p := range pres {
		for l := range pres[p] {
			depth := pres[p][l]
			if isMissing(depth, presFill, hasPresFill) {
				continue
			}
			if depth < sel.MinDepth || depth > sel.MaxDepth {
				continue
			}

			lvl := Level{
				Depth:  depth,
				Values: make(map[string]float64, len(cols)),
				Flags:  make(map[string]string),
			}
			for _, col := range cols {
				v := col.data[p][l]
				if isMissing(v, col.fill, col.hasFill) {
					v = math.NaN()
				}
				lvl.Values[col.name] = v

				if col.flags != nil && l < len(col.flags[p]) {
					lvl.Flags[col.name+qcSuffix] = string(col.flags[p][l])
				}
			}
			levels = append(levels, lvl)
		}
	}
	return levels, nil
}

// resolveColumns looks up each requested variable and keeps the ones whose
// data aligns with the pressure array.
func resolveColumns(nc api.Group, names []string, pres [][]float64) []column {
	var cols []column
	for _, name := range names {
		v, err := nc.GetVariable(name)
		if err != nil || v == nil {
			continue
		}
		m, ok := floatMatrix(v.Values)
		if !ok || !sameShape(m, pres) {
			continue
		}

		fill, hasFill := fillValue(v.Attributes)
		cols = append(cols, column{
			name:    name,
			data:    m,
			fill:    fill,
			hasFill: hasFill,
			flags:   flagRows(nc, name, len(pres)),
		})
	}
	return cols
}

// flagRows returns the <name>_QC char rows, or nil when the file has none.
func flagRows(nc api.Group, name string, rows int) []string {
	q, err := nc.GetVariable(name + qcSuffix)
	if err != nil || q == nil {
		return nil
	}
	s, ok := charMatrix(q.Values)
	if !ok || len(s) != rows {
		return nil
	}
	return s
}

func isMissing(v, fill float64, hasFill bool) bool {
	return math.IsNaN(v) || (hasFill && v == fill)
}

func sameShape(a, b [][]float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
	}
	return true
}

// floatMatrix coerces a variable's values into row-major float64 form.
// One-dimensional arrays become a single row.
func floatMatrix(values interface{}) ([][]float64, bool) {
	switch v := values.(type) {
	case [][]float64:
		return v, true
	case [][]float32:
		out := make([][]float64, len(v))
		for i, row := range v {
			out[i] = make([]float64, len(row))
			for j, x := range row {
				out[i][j] = float64(x)
			}
		}
		return out, true
	case []float64:
		return [][]float64{v}, true
	case []float32:
		row := make([]float64, len(v))
		for j, x := range v {
			row[j] = float64(x)
		}
		return [][]float64{row}, true
	default:
		return nil, false
	}
}

// charMatrix coerces a char variable into one string per profile row.
func charMatrix(values interface{}) ([]string, bool) {
	switch v := values.(type) {
	case []string:
		return v, true
	case string:
		return []string{v}, true
	default:
		return nil, false
	}
}

// fillValue reads the conventional _FillValue attribute when present.
func fillValue(attrs api.AttributeMap) (float64, bool) {
	if attrs == nil {
		return 0, false
	}
	raw, has := attrs.Get("_FillValue")
	if !has {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case []float64:
		if len(v) > 0 {
			return v[0], true
		}
	case []float32:
		if len(v) > 0 {
			return float64(v[0]), true
		}
	}
	return 0, false
}
