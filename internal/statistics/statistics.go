// Package statistics rolls project rows up into per-material totals.
//
// Two row schemas feed the same rollup: rows of the "Vật liệu" sheet and
// the flat legacy rows of a project's data field. Both are turned into
// costLine values first and then go through one accumulator, so a
// material named the same in both schemas ends up in one bucket.
package statistics

import (
	"math"

	"dutoan_backend/internal/models"
)

// Row keys of the sheet schema and of the legacy schema.
const (
	fieldMaterialName = "tenVatTu"
	fieldQuantity     = "khoiLuong"
	fieldCostAverage  = "thanhTienGiaTB"
	fieldCostBase     = "thanhTienGiaGoc"
	fieldLegacyName   = "material"
	fieldLegacyQty    = "quantity"
	fieldLegacyPrice  = "unitPrice"
)

type MaterialTotal struct {
	Name          string  `json:"name"`
	TotalQuantity float64 `json:"totalQuantity"`
	TotalCost     float64 `json:"totalCost"`
}

type ProjectSummary struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Materials []MaterialTotal `json:"materials"`
	TotalCost float64         `json:"totalCost"`
	ItemCount int             `json:"itemCount"`
}

type Report struct {
	TotalProjects int              `json:"totalProjects"`
	Projects      []ProjectSummary `json:"projects"`
}

// Source tells which schema a cost line came from.
type Source int

const (
	SourceSheet Source = iota
	SourceLegacy
)

type costLine struct {
	source   Source
	name     string
	quantity float64
	cost     float64
}

// Compute builds the report for every project, in store order.
func Compute(projects []models.Project) Report {
	report := Report{
		TotalProjects: len(projects),
		Projects:      make([]ProjectSummary, 0, len(projects)),
	}
	for i := range projects {
		report.Projects = append(report.Projects, Summarize(&projects[i]))
	}
	return report
}

// Summarize rolls up a single project.
func Summarize(p *models.Project) ProjectSummary {
	acc := newAccumulator()
	itemCount := 0

	if p.Sheets != nil {
		for _, line := range sheetLines(p.Sheets) {
			acc.add(line)
		}
		itemCount = p.Sheets.RowCount()
	}

	if len(p.Data) > 0 {
		for _, line := range legacyLines(p.Data) {
			acc.add(line)
		}
		itemCount += len(p.Data)
	}

	return ProjectSummary{
		ID:        p.ID,
		Name:      p.Name,
		Materials: acc.totals(),
		TotalCost: acc.totalCost,
		ItemCount: itemCount,
	}
}

// sheetLines reads the "Vật liệu" sheet. Rows without a material name
// carry no cost line.
func sheetLines(sheets models.SheetSet) []costLine {
	sheet, ok := sheets.Get(models.SheetMaterials)
	if !ok {
		return nil
	}
	lines := make([]costLine, 0, len(sheet.Data))
	for _, row := range sheet.Data {
		name := row.Text(fieldMaterialName)
		if name == "" {
			continue
		}
		costField := fieldCostBase
		if row.Truthy(fieldCostAverage) {
			costField = fieldCostAverage
		}
		lines = append(lines, costLine{
			source:   SourceSheet,
			name:     name,
			quantity: row.Float(fieldQuantity),
			cost:     row.Float(costField),
		})
	}
	return lines
}

func legacyLines(rows []models.Row) []costLine {
	lines := make([]costLine, 0, len(rows))
	for _, row := range rows {
		name := row.Text(fieldLegacyName)
		if name == "" {
			continue
		}
		qty := row.Float(fieldLegacyQty)
		lines = append(lines, costLine{
			source:   SourceLegacy,
			name:     name,
			quantity: qty,
			cost:     qty * row.Float(fieldLegacyPrice),
		})
	}
	return lines
}

// accumulator keeps material buckets in first-seen order.
type accumulator struct {
	index     map[string]int
	buckets   []MaterialTotal
	totalCost float64
}

func newAccumulator() *accumulator {
	return &accumulator{index: make(map[string]int)}
}

func (a *accumulator) add(line costLine) {
	i, ok := a.index[line.name]
	if !ok {
		i = len(a.buckets)
		a.index[line.name] = i
		a.buckets = append(a.buckets, MaterialTotal{Name: line.name})
	}
	qty, cost := finiteOrZero(line.quantity), finiteOrZero(line.cost)
	a.buckets[i].TotalQuantity = addFinite(a.buckets[i].TotalQuantity, qty)
	a.buckets[i].TotalCost = addFinite(a.buckets[i].TotalCost, cost)
	a.totalCost = addFinite(a.totalCost, cost)
}

// Report values must stay JSON encodable, so overflowing products and
// sums never reach them.
func finiteOrZero(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// addFinite returns sum+v, or sum unchanged when the result overflows.
func addFinite(sum, v float64) float64 {
	if next := sum + v; !math.IsNaN(next) && !math.IsInf(next, 0) {
		return next
	}
	return sum
}

func (a *accumulator) totals() []MaterialTotal {
	if a.buckets == nil {
		return []MaterialTotal{}
	}
	return a.buckets
}
