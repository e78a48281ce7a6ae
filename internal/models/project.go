package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tidwall/gjson"
)

// DefaultProjectName is used when a project is created without a name.
const DefaultProjectName = "New Project"

// TimestampLayout is the ISO-8601 UTC form used for createdAt/updatedAt.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Project is one construction-cost estimation workspace.
//
// Sheets is nil when the stored document has no sheets field. Data holds
// rows of the flat schema that predates sheets. Top-level fields the
// server does not know about are carried in extra so that a shallow
// merge never drops them.
type Project struct {
	ID        string
	Name      string
	CreatedAt string
	UpdatedAt string
	Sheets    SheetSet
	Data      []Row

	extra []extraField
}

type extraField struct {
	key   string
	value json.RawMessage
}

// FormatTimestamp renders t the way project timestamps are stored.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Extra returns the raw value of an unknown top-level field.
func (p *Project) Extra(key string) (json.RawMessage, bool) {
	for _, f := range p.extra {
		if f.key == key {
			return f.value, true
		}
	}
	return nil, false
}

func (p *Project) setExtra(key string, value json.RawMessage) {
	for i := range p.extra {
		if p.extra[i].key == key {
			p.extra[i].value = value
			return
		}
	}
	p.extra = append(p.extra, extraField{key: key, value: value})
}

// Clone returns a copy that shares no slices with p. Row maps are
// copied one level deep.
func (p *Project) Clone() Project {
	out := *p
	if p.Sheets != nil {
		out.Sheets = make(SheetSet, len(p.Sheets))
		for i, ns := range p.Sheets {
			out.Sheets[i] = NamedSheet{
				Name: ns.Name,
				Sheet: Sheet{
					Headers: append([]string(nil), ns.Sheet.Headers...),
					Data:    cloneRows(ns.Sheet.Data),
				},
			}
		}
	}
	out.Data = cloneRows(p.Data)
	out.extra = append([]extraField(nil), p.extra...)
	return out
}

func cloneRows(rows []Row) []Row {
	if rows == nil {
		return nil
	}
	out := make([]Row, len(rows))
	for i, r := range rows {
		c := make(Row, len(r))
		for k, v := range r {
			c[k] = v
		}
		out[i] = c
	}
	return out
}

func (p Project) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	write := func(key string, value any) error {
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("project field %q: %w", key, err)
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		k, _ := json.Marshal(key)
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(raw)
		return nil
	}

	if err := write("id", p.ID); err != nil {
		return nil, err
	}
	if err := write("name", p.Name); err != nil {
		return nil, err
	}
	if err := write("createdAt", p.CreatedAt); err != nil {
		return nil, err
	}
	if err := write("updatedAt", p.UpdatedAt); err != nil {
		return nil, err
	}
	if p.Sheets != nil {
		if err := write("sheets", p.Sheets); err != nil {
			return nil, err
		}
	}
	if p.Data != nil {
		if err := write("data", p.Data); err != nil {
			return nil, err
		}
	}
	for _, f := range p.extra {
		if err := write(f.key, f.value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (p *Project) UnmarshalJSON(data []byte) error {
	var out Project
	if err := out.apply(data, true); err != nil {
		return err
	}
	*p = out
	return nil
}

// Merge applies a partial project document on top of p. Every top-level
// key in patch replaces the stored value; keys absent from patch are
// left alone. id, createdAt and updatedAt are owned by the server and
// ignored.
func (p *Project) Merge(patch []byte) error {
	next := p.Clone()
	if err := next.apply(patch, false); err != nil {
		return err
	}
	*p = next
	return nil
}

func (p *Project) apply(data []byte, full bool) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("project: invalid JSON")
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return fmt.Errorf("project: expected an object")
	}

	var err error
	doc.ForEach(func(key, value gjson.Result) bool {
		switch k := key.String(); k {
		case "id", "createdAt", "updatedAt":
			if !full {
				return true
			}
			s := scalarString(value)
			switch k {
			case "id":
				p.ID = s
			case "createdAt":
				p.CreatedAt = s
			default:
				p.UpdatedAt = s
			}
		case "name":
			p.Name = scalarString(value)
		case "sheets":
			var sheets SheetSet
			if err = sheets.UnmarshalJSON([]byte(value.Raw)); err != nil {
				return false
			}
			p.Sheets = sheets
		case "data":
			if value.Type == gjson.Null {
				p.Data = nil
				return true
			}
			if !value.IsArray() {
				err = fmt.Errorf("project data: expected an array")
				return false
			}
			rows := []Row{}
			if err = json.Unmarshal([]byte(value.Raw), &rows); err != nil {
				err = fmt.Errorf("project data: %w", err)
				return false
			}
			p.Data = rows
		default:
			p.setExtra(k, json.RawMessage(value.Raw))
		}
		return true
	})
	return err
}

func scalarString(v gjson.Result) string {
	switch v.Type {
	case gjson.Null:
		return ""
	case gjson.String:
		return v.Str
	default:
		return v.Raw
	}
}
