package ops

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/minitcraft/minit/internal/config"
	"github.com/minitcraft/minit/internal/db"
	"github.com/minitcraft/minit/internal/errors"
	"github.com/minitcraft/minit/internal/minutes"
)

// presentValues are the "hadir" cells that mark a row as present.
var presentValues = []string{"true", "1", "t", "yes", "ya", "hadir"}

// AttendanceImportInput contains parameters for the ImportAttendance operation.
type AttendanceImportInput struct {
	ID    string
	Siri  string
	Jenis string

	// Exactly one of Path (a .csv file) or CSV (inline content).
	Path string
	CSV  []byte

	// Replace clears both lists before adding; the default appends.
	Replace bool
}

// AttendanceImportOutput contains the result of the ImportAttendance operation.
type AttendanceImportOutput struct {
	ID              string `json:"id"`
	AddedHadir      int    `json:"added_hadir"`
	AddedTidakHadir int    `json:"added_tidak_hadir"`
	Hadir           int    `json:"hadir"`
	TidakHadir      int    `json:"tidak_hadir"`
}

// ImportAttendance adds attendees from CSV to a stored meeting.
//
// Header names are case-insensitive. "nama" is required; "siri", "jawatan",
// "singkatan", "hadir" and "sebab" are optional. Without a "hadir" column
// everyone is present. Rows without siri are numbered by their final
// position in the list.
func ImportAttendance(ctx context.Context, database *sql.DB, cfg *config.Config, input AttendanceImportInput) (*AttendanceImportOutput, error) {
	addr, err := ValidateAddress(input.ID, input.Siri, input.Jenis)
	if err != nil {
		return nil, err
	}

	hasPath := strings.TrimSpace(input.Path) != ""
	if hasPath == (len(input.CSV) > 0) {
		return nil, errors.NewInvalidRequest("specify exactly one of path or csv")
	}

	data := input.CSV
	if hasPath {
		if err := ValidatePath(input.Path, PathCheckRead, cfg, attendanceExts...); err != nil {
			return nil, err
		}
		maxBytes := 0
		if cfg != nil {
			maxBytes = cfg.RecordMaxBytes
		}
		data, err = readFileNoFollow(input.Path, maxBytes)
		if err != nil {
			return nil, err
		}
	}

	hadir, tidak, err := parseAttendanceCSV(ctx, data)
	if err != nil {
		return nil, err
	}

	m, err := resolveMeeting(ctx, database, addr, false)
	if err != nil {
		return nil, err
	}

	att := &m.Record.Attendance
	if input.Replace {
		att.Hadir = []minutes.Attendee{}
		att.TidakHadir = []minutes.Attendee{}
	}
	att.Hadir = appendNumbered(att.Hadir, hadir)
	att.TidakHadir = appendNumbered(att.TidakHadir, tidak)

	if err := checkSize(cfg, m.Record); err != nil {
		return nil, err
	}
	if err := db.UpdateRecord(ctx, database, m); err != nil {
		return nil, err
	}

	return &AttendanceImportOutput{
		ID:              m.ID,
		AddedHadir:      len(hadir),
		AddedTidakHadir: len(tidak),
		Hadir:           len(att.Hadir),
		TidakHadir:      len(att.TidakHadir),
	}, nil
}

// parseAttendanceCSV splits CSV rows into present and absent attendees.
func parseAttendanceCSV(ctx context.Context, data []byte) (hadir, tidak []minutes.Attendee, err error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\ufeff"))))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if stderrors.Is(err, io.EOF) {
		return nil, nil, errors.NewInvalidRequest("csv is empty")
	}
	if err != nil {
		return nil, nil, errors.NewInvalidRequest(fmt.Sprintf("invalid csv: %v", err))
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, dup := cols[key]; !dup {
			cols[key] = i
		}
	}
	if _, ok := cols["nama"]; !ok {
		return nil, nil, errors.NewInvalidRequest("csv must contain a 'nama' column")
	}
	_, hasHadir := cols["hadir"]

	get := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	hadir, tidak = []minutes.Attendee{}, []minutes.Attendee{}
	for {
		if err := ctx.Err(); err != nil {
			return nil, nil, errors.NewCancelled("attendance import")
		}
		row, err := r.Read()
		if stderrors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, errors.NewInvalidRequest(fmt.Sprintf("invalid csv: %v", err))
		}

		a := minutes.Attendee{
			Siri:      get(row, "siri"),
			Nama:      get(row, "nama"),
			Jawatan:   get(row, "jawatan"),
			Singkatan: get(row, "singkatan"),
		}
		present := !hasHadir || slices.Contains(presentValues, strings.ToLower(get(row, "hadir")))
		if present {
			hadir = append(hadir, a)
			continue
		}
		a.Sebab = get(row, "sebab")
		tidak = append(tidak, a)
	}
	return hadir, tidak, nil
}

// appendNumbered appends rows to list, numbering blank siri by position.
func appendNumbered(list, rows []minutes.Attendee) []minutes.Attendee {
	if list == nil {
		list = []minutes.Attendee{}
	}
	for _, a := range rows {
		if a.Siri == "" {
			a.Siri = strconv.Itoa(len(list) + 1)
		}
		list = append(list, a)
	}
	return list
}
