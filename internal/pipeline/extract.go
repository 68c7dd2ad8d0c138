package pipeline

import (
	"fmt"

	"github.com/assetdesk/importer/internal/csvio"
)

// extract locates the header row in parsed CSV records and turns every
// non-empty data row below it into a RawRow. Cells beyond the header
// width are dropped; missing trailing cells read as empty strings.
func extract(records [][]string) (headers []string, rows []RawRow, err error) {
	headerIdx := csvio.FindHeader(records)
	if headerIdx < 0 {
		return nil, nil, fmt.Errorf("no header row found in first %d rows", csvio.MaxHeaderSearchRows)
	}

	headers = make([]string, len(records[headerIdx]))
	for i, cell := range records[headerIdx] {
		headers[i] = csvio.CleanHeader(cell)
	}

	for i, record := range records[headerIdx+1:] {
		if csvio.IsEmptyRow(record) {
			continue
		}
		raw := make(map[string]string, len(headers))
		for j, h := range headers {
			if h == "" {
				continue
			}
			// Repeated header text keeps its leftmost column's value.
			if _, claimed := raw[h]; claimed {
				continue
			}
			var v string
			if j < len(record) {
				v = csvio.CleanCell(record[j])
			}
			raw[h] = v
		}
		rows = append(rows, RawRow{
			// 1-based file line: header line plus offset below it.
			RowNumber: headerIdx + 2 + i,
			Raw:       raw,
		})
	}
	return headers, rows, nil
}
