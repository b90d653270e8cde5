package output

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"slices"
	"strings"
	"text/tabwriter"
	"time"
)

// TableFormatter formats data as aligned text tables.
type TableFormatter struct {
	Wide      bool
	NoHeaders bool
}

// Format writes data as one or more tables.
//
// A struct becomes FIELD/VALUE rows with nested struct and map fields
// flattened to dotted names. Slice fields of structs are summarized as
// "[n items]" unless Wide is set, in which case each is rendered as its own
// table after the main one. A slice of structs becomes a column table and a
// map becomes KEY/VALUE rows. Anything else is written as JSON.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	if data == nil {
		return nil
	}

	switch t := data.(type) {
	case *Table:
		return t.RenderWithOptions(w, f.NoHeaders)
	case Table:
		return t.RenderWithOptions(w, f.NoHeaders)
	}

	v := reflect.ValueOf(data)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Struct:
		return f.formatStruct(w, v)
	case reflect.Slice, reflect.Array:
		if t, ok := sliceToTable(v); ok {
			return t.RenderWithOptions(w, f.NoHeaders)
		}
	case reflect.Map:
		t := &Table{Headers: []string{"KEY", "VALUE"}}
		flattenMap(t, "", v)
		return t.RenderWithOptions(w, f.NoHeaders)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func (f *TableFormatter) formatStruct(w io.Writer, v reflect.Value) error {
	main := &Table{Headers: []string{"FIELD", "VALUE"}}
	var nested []namedTable
	flattenStruct(main, "", v, f.Wide, &nested)

	if err := main.RenderWithOptions(w, f.NoHeaders); err != nil {
		return err
	}
	for _, n := range nested {
		if _, err := fmt.Fprintf(w, "\n%s:\n", n.name); err != nil {
			return err
		}
		if err := n.table.RenderWithOptions(w, f.NoHeaders); err != nil {
			return err
		}
	}
	return nil
}

type namedTable struct {
	name  string
	table *Table
}

func flattenStruct(t *Table, prefix string, v reflect.Value, wide bool, nested *[]namedTable) {
	typ := v.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		name, ok := fieldName(field)
		if !ok {
			continue
		}
		name = prefix + name
		fv := indirect(v.Field(i))

		switch {
		case !fv.IsValid():
			t.AddRow(name, "")
		case fv.Kind() == reflect.Struct && fv.Type() != timeType:
			flattenStruct(t, name+".", fv, wide, nested)
		case fv.Kind() == reflect.Map:
			flattenMap(t, name+".", fv)
		case fv.Kind() == reflect.Slice && wide:
			if st, ok := sliceToTable(fv); ok {
				*nested = append(*nested, namedTable{name: name, table: st})
				continue
			}
			t.AddRow(name, formatValue(fv))
		default:
			t.AddRow(name, formatValue(fv))
		}
	}
}

func flattenMap(t *Table, prefix string, v reflect.Value) {
	if v.Len() == 0 {
		t.AddRow(strings.TrimSuffix(prefix, "."), "-")
		return
	}
	rows := make([][]string, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		rows = append(rows, []string{prefix + formatValue(iter.Key()), formatValue(iter.Value())})
	}
	slices.SortFunc(rows, func(a, b []string) int { return strings.Compare(a[0], b[0]) })
	t.Rows = append(t.Rows, rows...)
}

// sliceToTable renders a slice of structs with one column per field. It
// reports false for slices of anything else.
func sliceToTable(v reflect.Value) (*Table, bool) {
	elem := v.Type().Elem()
	for elem.Kind() == reflect.Pointer {
		elem = elem.Elem()
	}
	if elem.Kind() != reflect.Struct {
		return nil, false
	}

	var fields []int
	t := &Table{}
	for i := 0; i < elem.NumField(); i++ {
		name, ok := fieldName(elem.Field(i))
		if !ok {
			continue
		}
		t.Headers = append(t.Headers, strings.ToUpper(name))
		fields = append(fields, i)
	}

	for i := 0; i < v.Len(); i++ {
		ev := indirect(v.Index(i))
		row := make([]string, len(fields))
		if ev.IsValid() {
			for j, idx := range fields {
				row[j] = formatValue(ev.Field(idx))
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, true
}

// fieldName returns the display name of an exported field, taken from its
// json tag when present.
func fieldName(f reflect.StructField) (string, bool) {
	if !f.IsExported() {
		return "", false
	}
	if tag := f.Tag.Get("table"); tag == "-" {
		return "", false
	}
	if tag := f.Tag.Get("json"); tag != "" {
		name, _, _ := strings.Cut(tag, ",")
		if name == "-" {
			return "", false
		}
		if name != "" {
			return name, true
		}
	}
	return toSnakeCase(f.Name), true
}

func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

var (
	timeType     = reflect.TypeOf(time.Time{})
	durationType = reflect.TypeOf(time.Duration(0))
)

// formatValue formats a single value for a table cell.
func formatValue(v reflect.Value) string {
	v = indirect(v)
	if !v.IsValid() {
		return ""
	}

	switch v.Type() {
	case timeType:
		t := v.Interface().(time.Time)
		if t.IsZero() {
			return "-"
		}
		return t.Format("2006-01-02 15:04:05")
	case durationType:
		return time.Duration(v.Int()).Round(time.Microsecond).String()
	}

	switch v.Kind() {
	case reflect.String:
		if v.Len() == 0 {
			return "-"
		}
		return v.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return fmt.Sprintf("%d", v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fmt.Sprintf("%d", v.Uint())
	case reflect.Float32, reflect.Float64:
		return fmt.Sprintf("%.2f", v.Float())
	case reflect.Bool:
		if v.Bool() {
			return "true"
		}
		return "false"
	case reflect.Slice, reflect.Array:
		if v.Len() == 0 {
			return "-"
		}
		return fmt.Sprintf("[%d items]", v.Len())
	case reflect.Map:
		if v.Len() == 0 {
			return "-"
		}
		return fmt.Sprintf("{%d keys}", v.Len())
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}

// toSnakeCase converts CamelCase to snake_case.
func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Table represents tabular data.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Render renders the table to the writer.
func (t *Table) Render(w io.Writer) error {
	return t.RenderWithOptions(w, false)
}

// RenderWithOptions renders the table, optionally without the header row.
func (t *Table) RenderWithOptions(w io.Writer, noHeaders bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if !noHeaders && len(t.Headers) > 0 {
		if _, err := fmt.Fprintln(tw, strings.Join(t.Headers, "\t")); err != nil {
			return err
		}
	}
	for _, row := range t.Rows {
		if _, err := fmt.Fprintln(tw, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// AddRow adds a row to the table.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// SetHeaders sets the table headers.
func (t *Table) SetHeaders(headers ...string) {
	t.Headers = headers
}
