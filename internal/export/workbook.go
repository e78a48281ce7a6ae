// Package export turns a project's sheets into an xlsx workbook.
//
// Build produces a plain Workbook value so the sheet layout can be checked
// without touching excelize. Render writes that value out.
package export

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"dutoan_backend/internal/models"
)

// maxSheetName is the worksheet name limit imposed by Excel.
const maxSheetName = 31

// Worksheet is one tab of the workbook. Rows[0] is the header row.
type Worksheet struct {
	Name string
	Rows [][]any
}

type Workbook struct {
	Sheets []Worksheet
}

// Build lays out one worksheet per project sheet, in stored order. A
// project without sheets yields a workbook with no worksheets.
func Build(p *models.Project) *Workbook {
	wb := &Workbook{Sheets: make([]Worksheet, 0, len(p.Sheets))}
	used := make(map[string]bool, len(p.Sheets))

	for _, ns := range p.Sheets {
		header := make([]any, len(ns.Sheet.Headers))
		for i, h := range ns.Sheet.Headers {
			header[i] = h
		}
		rows := make([][]any, 0, len(ns.Sheet.Data)+1)
		rows = append(rows, header)

		for _, row := range ns.Sheet.Data {
			cells := make([]any, len(ns.Sheet.Headers))
			for i, h := range ns.Sheet.Headers {
				cells[i] = cellValue(row[h])
			}
			rows = append(rows, cells)
		}

		wb.Sheets = append(wb.Sheets, Worksheet{
			Name: uniqueSheetName(ns.Name, used),
			Rows: rows,
		})
	}
	return wb
}

// Render writes the workbook with excelize. The xlsx format needs at least
// one worksheet, so an empty Workbook renders excelize's blank default sheet.
func (wb *Workbook) Render() (*excelize.File, error) {
	f := excelize.NewFile()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	defaultSheet := f.GetSheetName(0)
	for i, ws := range wb.Sheets {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, ws.Name); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to name sheet %q: %w", ws.Name, err)
			}
		} else if _, err := f.NewSheet(ws.Name); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to add sheet %q: %w", ws.Name, err)
		}

		for r, row := range ws.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				f.Close()
				return nil, err
			}
			if err := f.SetSheetRow(ws.Name, cell, &row); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to write sheet %q row %d: %w", ws.Name, r+1, err)
			}
		}

		if len(ws.Rows) > 0 && len(ws.Rows[0]) > 0 {
			last, err := excelize.CoordinatesToCellName(len(ws.Rows[0]), 1)
			if err != nil {
				f.Close()
				return nil, err
			}
			if err := f.SetCellStyle(ws.Name, "A1", last, bold); err != nil {
				f.Close()
				return nil, err
			}
		}
	}

	if len(wb.Sheets) > 0 {
		f.SetActiveSheet(0)
	}
	return f, nil
}

// cellValue maps a row value to something excelize can store. Missing
// and null fields become empty strings; nested values are kept as JSON.
func cellValue(v any) any {
	switch val := v.(type) {
	case nil:
		return ""
	case json.Number:
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case string, bool, float64, float32, int, int64:
		return val
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}

var sheetNameReplacer = strings.NewReplacer(
	":", "_", "\\", "_", "/", "_", "?", "_",
	"*", "_", "[", "(", "]", ")",
)

// uniqueSheetName makes name acceptable to Excel and distinct from the
// names already handed out. Comparison is case-insensitive like Excel's.
func uniqueSheetName(name string, used map[string]bool) string {
	base := sheetNameReplacer.Replace(strings.TrimSpace(name))
	base = strings.Trim(base, "'")
	if base == "" {
		base = "Sheet"
	}
	base = truncateRunes(base, maxSheetName)

	candidate := base
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		candidate = truncateRunes(base, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
