package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Fixed category sheets every new project starts with.
const (
	SheetMaterials = "Vật liệu"
	SheetLabor     = "Nhân công"
	SheetMachinery = "Máy thi công"
	SheetSummary   = "Tổng hợp"
)

// DefaultSheetNames lists the category sheets in display order.
var DefaultSheetNames = []string{SheetMaterials, SheetLabor, SheetMachinery, SheetSummary}

type Sheet struct {
	Headers []string `json:"headers"`
	Data    []Row    `json:"data"`
}

// NamedSheet pairs a sheet with the name it is stored under.
type NamedSheet struct {
	Name  string
	Sheet Sheet
}

// SheetSet is the ordered sheets mapping of a project. A nil SheetSet
// means the project has no sheets field at all; an empty non-nil one
// encodes as {}.
type SheetSet []NamedSheet

// DefaultSheets returns the four empty category sheets.
func DefaultSheets() SheetSet {
	set := make(SheetSet, 0, len(DefaultSheetNames))
	for _, name := range DefaultSheetNames {
		set = append(set, NamedSheet{Name: name, Sheet: Sheet{Headers: []string{}, Data: []Row{}}})
	}
	return set
}

// Get returns the sheet stored under name.
func (s SheetSet) Get(name string) (*Sheet, bool) {
	for i := range s {
		if s[i].Name == name {
			return &s[i].Sheet, true
		}
	}
	return nil, false
}

// Names returns the sheet names in stored order.
func (s SheetSet) Names() []string {
	names := make([]string, 0, len(s))
	for _, ns := range s {
		names = append(names, ns.Name)
	}
	return names
}

// RowCount is the number of data rows across every sheet.
func (s SheetSet) RowCount() int {
	n := 0
	for _, ns := range s {
		n += len(ns.Sheet.Data)
	}
	return n
}

func (s SheetSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, ns := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(ns.Name)
		if err != nil {
			return nil, err
		}
		sheet := ns.Sheet
		if sheet.Headers == nil {
			sheet.Headers = []string{}
		}
		if sheet.Data == nil {
			sheet.Data = []Row{}
		}
		val, err := json.Marshal(sheet)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON keeps the key order of the document. A repeated key
// keeps its first position and its last value.
func (s *SheetSet) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("sheets: invalid JSON")
	}
	doc := gjson.ParseBytes(data)
	if doc.Type == gjson.Null {
		*s = nil
		return nil
	}
	if !doc.IsObject() {
		return fmt.Errorf("sheets: expected an object")
	}

	set := SheetSet{}
	var err error
	doc.ForEach(func(key, value gjson.Result) bool {
		var sheet Sheet
		if value.Type != gjson.Null {
			if !value.IsObject() {
				err = fmt.Errorf("sheet %q: expected an object", key.String())
				return false
			}
			if err = json.Unmarshal([]byte(value.Raw), &sheet); err != nil {
				err = fmt.Errorf("sheet %q: %w", key.String(), err)
				return false
			}
		}
		if sheet.Headers == nil {
			sheet.Headers = []string{}
		}
		if sheet.Data == nil {
			sheet.Data = []Row{}
		}
		if existing, ok := set.Get(key.String()); ok {
			*existing = sheet
			return true
		}
		set = append(set, NamedSheet{Name: key.String(), Sheet: sheet})
		return true
	})
	if err != nil {
		return err
	}
	*s = set
	return nil
}
