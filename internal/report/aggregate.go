// Package report renders the combined measurement rows of a session into
// the final CSV table.
package report

import (
	"encoding/csv"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/oceandata/argo-explorer/internal/argo"
)

// Identifying columns lead the table, trailing metadata closes it; data
// and flag columns in between come from whatever the rows actually carry.
var (
	leadingColumns  = []string{"date", "latitude", "longitude", "platform", "cycle", "depth"}
	trailingColumns = []string{"institution", "ocean", "file"}
)

// Combine renders the rows as CSV with a deterministic column order:
// identifying columns, then data variables sorted by name, then flag
// columns sorted by name, then trailing metadata. Columns present in no
// row are omitted; missing numeric values render as empty cells. The
// output is byte-identical for any permutation of the same row multiset:
// rows are ordered by date, source file, and depth before rendering.
func Combine(rows []argo.MeasurementRow) string {
	rows = append([]argo.MeasurementRow(nil), rows...)
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date < rows[j].Date
		}
		if rows[i].File != rows[j].File {
			return rows[i].File < rows[j].File
		}
		return rows[i].Depth < rows[j].Depth
	})

	dataCols, flagCols := collectColumns(rows)

	header := make([]string, 0, len(leadingColumns)+len(dataCols)+len(flagCols)+len(trailingColumns))
	header = append(header, leadingColumns...)
	header = append(header, dataCols...)
	header = append(header, flagCols...)
	header = append(header, trailingColumns...)

	var sb strings.Builder
	w := csv.NewWriter(&sb)
	w.Write(header)

	record := make([]string, len(header))
	for _, row := range rows {
		record = record[:0]
		record = append(record,
			row.Date,
			formatFloat(row.Lat),
			formatFloat(row.Lon),
			row.PlatformID,
			row.CycleNumber,
			formatFloat(row.Depth),
		)
		for _, col := range dataCols {
			v, ok := row.Values[col]
			if !ok || math.IsNaN(v) {
				record = append(record, "")
				continue
			}
			record = append(record, formatFloat(v))
		}
		for _, col := range flagCols {
			record = append(record, row.Flags[col])
		}
		record = append(record, row.Institution, row.Ocean, row.File)
		w.Write(record)
	}

	w.Flush()
	return sb.String()
}

// Filename suggests a download name encoding the variable category and the
// candidate profile count.
func Filename(set argo.VariableSet, profiles int) string {
	return fmt.Sprintf("argo_complete_dataset_%s_%d_profiles.csv", set, profiles)
}

// collectColumns unions the variable and flag names across all rows and
// sorts each group for a reproducible layout.
func collectColumns(rows []argo.MeasurementRow) (dataCols, flagCols []string) {
	dataSet := make(map[string]struct{})
	flagSet := make(map[string]struct{})
	for _, row := range rows {
		for name := range row.Values {
			dataSet[name] = struct{}{}
		}
		for name := range row.Flags {
			flagSet[name] = struct{}{}
		}
	}

	for name := range dataSet {
		dataCols = append(dataCols, name)
	}
	for name := range flagSet {
		flagCols = append(flagCols, name)
	}
	sort.Strings(dataCols)
	sort.Strings(flagCols)
	return dataCols, flagCols
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
