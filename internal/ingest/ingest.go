// Package ingest derives the next meeting's draft minutes from a previous
// meeting's document.
//
// The previous document may be in any schema the minutes have used over time:
// the current named-section record, the older numbered-agenda layout, or a mix
// of both. Keys are matched loosely (see FindKey) and field values may be
// strings, lists of lines, or nested mappings. Ingestion never fails on shape;
// whatever cannot be recognized is left at its default.
package ingest

import (
	"encoding/json"

	"github.com/minitcraft/minit/internal/jsondoc"
	"github.com/minitcraft/minit/internal/minutes"
)

// MattersSource names the path that produced the carried matters arising.
type MattersSource string

const (
	MattersNone       MattersSource = "none"
	MattersNewMatters MattersSource = "new_matters"
	MattersArising    MattersSource = "matters_arising"
	MattersLegacy     MattersSource = "legacy_agenda"
)

// Report summarizes an ingestion.
type Report struct {
	MattersSource   MattersSource `json:"matters_source"`
	MattersArising  int           `json:"matters_arising"`
	Hadir           int           `json:"hadir"`
	TidakHadir      int           `json:"tidak_hadir"`
	SiriIncremented bool          `json:"siri_incremented"`
	Unrecognized    bool          `json:"unrecognized"` // input was not a mapping
}

// Previous returns the next meeting's record derived from doc.
func Previous(doc *jsondoc.Value) minutes.Record {
	rec, _ := PreviousWithReport(doc)
	return rec
}

// PreviousWithReport is Previous plus a summary of what was carried.
//
// A top-level array is accepted when its first element is a mapping; any
// other non-mapping input yields the default record.
func PreviousWithReport(doc *jsondoc.Value) (minutes.Record, Report) {
	rec := minutes.Default()
	report := Report{MattersSource: MattersNone}

	root, ok := rootObject(doc)
	if !ok {
		report.Unrecognized = true
		return rec, report
	}

	prevSiri := ingestHeader(&rec, root)
	report.SiriIncremented = rec.Header.Siri != prevSiri

	carrySections(&rec, root)
	ingestAttendance(&rec, root)
	rec.MattersArising, report.MattersSource = mattersArising(root)
	rec.Annex = annex(root)

	report.MattersArising = len(rec.MattersArising)
	report.Hadir = len(rec.Attendance.Hadir)
	report.TidakHadir = len(rec.Attendance.TidakHadir)
	return rec, report
}

// PreviousJSON parses data as JSON and ingests it.
func PreviousJSON(data []byte) (minutes.Record, Report, error) {
	doc, err := jsondoc.Parse(data)
	if err != nil {
		return minutes.Default(), Report{MattersSource: MattersNone}, err
	}
	rec, report := PreviousWithReport(doc)
	return rec, report, nil
}

// PreviousYAML parses data as YAML and ingests it.
func PreviousYAML(data []byte) (minutes.Record, Report, error) {
	doc, err := jsondoc.ParseYAML(data)
	if err != nil {
		return minutes.Default(), Report{MattersSource: MattersNone}, err
	}
	rec, report := PreviousWithReport(doc)
	return rec, report, nil
}

// FromRecord ingests a stored canonical record.
func FromRecord(prev minutes.Record) (minutes.Record, Report, error) {
	prev.Complete()
	data, err := json.Marshal(prev)
	if err != nil {
		return minutes.Default(), Report{MattersSource: MattersNone}, err
	}
	return PreviousJSON(data)
}

func rootObject(doc *jsondoc.Value) (*jsondoc.Obj, bool) {
	if items, ok := doc.Array(); ok {
		if len(items) == 0 {
			return nil, false
		}
		return items[0].Object()
	}
	return doc.Object()
}

// ingestHeader fills the header from a "Header" mapping, or from the root
// when there is none. It returns the previous serial.
func ingestHeader(rec *minutes.Record, root *jsondoc.Obj) string {
	header := root
	if h, ok := member(root, "Header").Object(); ok {
		header = h
	}
	siri := fieldSiri.text(header, "")
	rec.Header = minutes.Header{
		Title:  fieldTitle.text(header, ""),
		Siri:   IncrementSiri(siri),
		Tarikh: fieldTarikh.text(header, ""),
		Masa:   fieldMasa.text(header, ""),
		Tempat: fieldTempat.text(header, ""),
		Jenis:  minutes.NormalizeJenis(fieldJenis.text(header, minutes.JenisAGM)),
	}
	return siri
}

// carrySections copies the standing section bodies forward. Headings keep
// their defaults.
func carrySections(rec *minutes.Record, root *jsondoc.Obj) {
	reports, _ := member(root, "Reports").Object()

	rec.ChairmanAddress.Keterangan = carrySection(member(root, "ChairmanAddress"), member(root, "Agenda_1"))
	rec.ApprovalOfPrevMinutes.Keterangan = carrySection(member(root, "ApprovalOfPrevMinutes"), member(root, "Agenda_2"))
	rec.Reports.Financial.Keterangan = carrySection(member(reports, "Financial"), member(root, "Agenda_5"))
	rec.Reports.Membership.Keterangan = carrySection(member(reports, "Membership"), member(root, "Agenda_4"))
}

// ingestAttendance resolves the absent list first so that its key is not
// also taken as the present list.
func ingestAttendance(rec *minutes.Record, root *jsondoc.Obj) {
	scope := root
	if a, ok := member(root, "Attendance").Object(); ok {
		scope = a
	}

	var exclude []string
	if key, ok := FindKey(scope, "Tidak hadir"); ok {
		rec.Attendance.TidakHadir = NormalizeAttendance(member(scope, key))
		exclude = append(exclude, key)
	}
	if key, ok := FindKey(scope, "Hadir", exclude...); ok {
		rows := NormalizeAttendance(member(scope, key))
		for i := range rows {
			rows[i].Sebab = ""
		}
		rec.Attendance.Hadir = rows
	}
}

// mattersArising applies the precedence: the previous meeting's new matters,
// else its unresolved matters arising, else the legacy agenda. The first
// source that produces items wins.
func mattersArising(root *jsondoc.Obj) ([]minutes.Item, MattersSource) {
	if key, ok := FindKey(root, "NewMatters"); ok {
		if items := fromNewMatters(member(root, key)); len(items) > 0 {
			return items, MattersNewMatters
		}
	}
	if key, ok := FindKey(root, "MattersArising"); ok {
		if items := fromMattersArising(member(root, key)); len(items) > 0 {
			return items, MattersArising
		}
	}
	if items := legacyMatters(root); len(items) > 0 {
		return items, MattersLegacy
	}
	return []minutes.Item{}, MattersNone
}

// fromNewMatters carries every new matter as pending.
func fromNewMatters(v *jsondoc.Value) []minutes.Item {
	entries, _ := v.Array()
	var out []minutes.Item
	for _, entry := range entries {
		item := minutes.Item{Keputusan: minutes.StatusPelaksanaan}
		if obj, ok := entry.Object(); ok {
			item.Perkara = fieldNewMatterTitle.text(obj, "")
			item.Keterangan = fieldNewMatterDetail.text(obj, "")
		} else {
			item.Perkara = entry.Text()
		}
		out = append(out, item)
	}
	return out
}

// fromMattersArising carries every item whose status is not exactly
// "Selesai", keeping the status as written. A missing status is pending.
func fromMattersArising(v *jsondoc.Value) []minutes.Item {
	entries, _ := v.Array()
	var out []minutes.Item
	for _, entry := range entries {
		obj, ok := entry.Object()
		if !ok {
			out = append(out, minutes.Item{Perkara: entry.Text(), Keputusan: minutes.StatusPelaksanaan})
			continue
		}
		status := fieldArisingStatus.text(obj, minutes.StatusPelaksanaan)
		if minutes.IsResolved(status) {
			continue
		}
		out = append(out, minutes.Item{
			Perkara:    fieldArisingTitle.text(obj, ""),
			Keputusan:  status,
			Keterangan: fieldArisingDetail.text(obj, ""),
		})
	}
	return out
}

// annex resolves the annex reference. A mapping contributes its Perkara.
func annex(root *jsondoc.Obj) string {
	key, ok := FindKey(root, "Kembaran")
	if !ok {
		key, ok = FindKey(root, "Annex")
	}
	if !ok {
		return ""
	}
	b := bodyOf(member(root, key))
	if b.kind == bodyStructured {
		return b.heading
	}
	return b.text
}
