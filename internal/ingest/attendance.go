package ingest

import (
	"strconv"

	"github.com/minitcraft/minit/internal/jsondoc"
	"github.com/minitcraft/minit/internal/minutes"
)

// NormalizeAttendance converts attendance data in any historical shape into
// rows:
//
//   - {"Nama": [...], "Jawatan": [...], "Singkatan": [...]} (column-oriented)
//   - {"Nama": [{"nama": ..., "jawatan": ...}, ...]} (row-oriented)
//   - [{"nama": ..., ...}, ...] or ["name", ...] (bare sequence)
//
// Anything else yields no rows. The result has one row per entry of the
// name-bearing collection and is never nil.
func NormalizeAttendance(v *jsondoc.Value) []minutes.Attendee {
	if items, ok := v.Array(); ok {
		return attendanceSequence(items)
	}
	obj, ok := v.Object()
	if !ok {
		return []minutes.Attendee{}
	}
	names, _ := fieldNama.lookup(obj)
	items, ok := names.Array()
	if !ok {
		return []minutes.Attendee{}
	}
	if len(items) > 0 {
		if _, isRow := items[0].Object(); isRow {
			return attendanceRows(items)
		}
	}
	return attendanceColumns(obj, items)
}

func attendanceSequence(items []*jsondoc.Value) []minutes.Attendee {
	if len(items) > 0 {
		if _, isRow := items[0].Object(); isRow {
			return attendanceRows(items)
		}
	}
	return attendanceColumns(nil, items)
}

// attendanceRows maps per-person mappings. A stray scalar among them is taken
// as a bare name.
func attendanceRows(items []*jsondoc.Value) []minutes.Attendee {
	rows := make([]minutes.Attendee, 0, len(items))
	for i, item := range items {
		position := strconv.Itoa(i + 1)
		obj, ok := item.Object()
		if !ok {
			rows = append(rows, minutes.Attendee{Siri: position, Nama: item.Text()})
			continue
		}
		rows = append(rows, minutes.Attendee{
			Siri:      fieldSiri.text(obj, position),
			Nama:      fieldNama.text(obj, ""),
			Jawatan:   fieldJawatan.text(obj, ""),
			Singkatan: fieldSingkatan.text(obj, ""),
			Sebab:     fieldSebab.text(obj, ""),
		})
	}
	return rows
}

// attendanceColumns zips parallel arrays by the index of names. Shorter or
// missing columns pad with "" (siri pads with the 1-based position).
func attendanceColumns(obj *jsondoc.Obj, names []*jsondoc.Value) []minutes.Attendee {
	siri := column(obj, fieldSiri)
	jawatan := column(obj, fieldJawatan)
	singkatan := column(obj, fieldSingkatan)
	sebab := column(obj, fieldSebab)

	rows := make([]minutes.Attendee, 0, len(names))
	for i, name := range names {
		rows = append(rows, minutes.Attendee{
			Siri:      cell(siri, i, strconv.Itoa(i+1)),
			Nama:      name.Text(),
			Jawatan:   cell(jawatan, i, ""),
			Singkatan: cell(singkatan, i, ""),
			Sebab:     cell(sebab, i, ""),
		})
	}
	return rows
}

// column returns the array stored under f, or nil when f is absent or not an
// array.
func column(obj *jsondoc.Obj, f field) []*jsondoc.Value {
	if obj == nil {
		return nil
	}
	v, ok := f.lookup(obj)
	if !ok {
		return nil
	}
	items, _ := v.Array()
	return items
}

func cell(col []*jsondoc.Value, i int, def string) string {
	if i >= len(col) || col[i].IsNull() {
		return def
	}
	return col[i].Text()
}
