package minutes

import "strings"

// Meeting types.
const (
	JenisAGM  = "agm"
	JenisExco = "exco"
)

// Status labels used in the matters-arising list.
const (
	StatusPelaksanaan = "Pelaksanaan"
	StatusSelesai     = "Selesai"
)

// Record is the canonical minutes document for one meeting. JSON keys follow
// the persisted format and must not be renamed.
type Record struct {
	Header                Header     `json:"Header" yaml:"Header"`
	Attendance            Attendance `json:"Attendance" yaml:"Attendance"`
	ChairmanAddress       Section    `json:"ChairmanAddress" yaml:"ChairmanAddress"`
	ApprovalOfPrevMinutes Section    `json:"ApprovalOfPrevMinutes" yaml:"ApprovalOfPrevMinutes"`
	MattersArising        []Item     `json:"MattersArising" yaml:"MattersArising"`
	Reports               Reports    `json:"Reports" yaml:"Reports"`
	NewMatters            []Item     `json:"NewMatters" yaml:"NewMatters"`
	Closing               string     `json:"Closing" yaml:"Closing"`
	Annex                 string     `json:"Annex" yaml:"Annex"`
}

// Header identifies the meeting.
type Header struct {
	Title  string `json:"Title" yaml:"Title"`
	Siri   string `json:"Siri" yaml:"Siri"` // "N/YYYY" or free text
	Tarikh string `json:"Tarikh" yaml:"Tarikh"`
	Masa   string `json:"Masa" yaml:"Masa"`
	Tempat string `json:"Tempat" yaml:"Tempat"`
	Jenis  string `json:"Jenis" yaml:"Jenis"`
}

// Attendance splits attendees into present and absent-with-excuse.
type Attendance struct {
	Hadir      []Attendee `json:"Hadir" yaml:"Hadir"`
	TidakHadir []Attendee `json:"Tidak Hadir" yaml:"Tidak Hadir"`
}

// Attendee is one attendance row. Siri is a display index only; rows have no
// identity beyond their position and duplicates are allowed.
type Attendee struct {
	Siri      string `json:"siri" yaml:"siri"`
	Nama      string `json:"nama" yaml:"nama"`
	Jawatan   string `json:"jawatan" yaml:"jawatan"`
	Singkatan string `json:"singkatan" yaml:"singkatan"`
	Sebab     string `json:"sebab,omitempty" yaml:"sebab,omitempty"` // absent rows only
}

// Section is a heading plus body. Keterangan may hold "@." list markers and
// markdown tables.
type Section struct {
	Perkara    string `json:"Perkara" yaml:"Perkara"`
	Keterangan string `json:"Keterangan" yaml:"Keterangan"`
}

// Reports holds the two standing report sections.
type Reports struct {
	Financial  Section `json:"Financial" yaml:"Financial"`
	Membership Section `json:"Membership" yaml:"Membership"`
}

// Item is an agenda, matters-arising or new-matters entry.
type Item struct {
	Perkara    string `json:"Perkara" yaml:"Perkara"`
	Keputusan  string `json:"Keputusan" yaml:"Keputusan"`
	Keterangan string `json:"Keterangan" yaml:"Keterangan"`
}

// Default returns a fresh record with every key populated.
func Default() Record {
	return Record{
		Header: Header{Jenis: JenisAGM},
		Attendance: Attendance{
			Hadir:      []Attendee{},
			TidakHadir: []Attendee{},
		},
		ChairmanAddress: Section{
			Perkara: "UCAPAN PEMBUKAAN OLEH PRESIDEN",
		},
		ApprovalOfPrevMinutes: Section{
			Perkara:    "MENGESAHKAN MINIT MESYUARAT JAWATANKUASA SIRI 3/2024 PADA 23 JUN 2024",
			Keterangan: "Timbalan Presiden mencadangkan minit diluluskan dan disokong oleh Naib Presiden (Udara).",
		},
		MattersArising: []Item{},
		Reports: Reports{
			Financial: Section{
				Perkara:    "LAPORAN KEWANGAN BERAKHIR",
				Keterangan: "Laporan oleh BK",
			},
			Membership: Section{
				Perkara:    "LAPORAN KEAHLIAN BERAKHIR",
				Keterangan: "Laporan oleh JK Keahlian",
			},
		},
		NewMatters: []Item{},
	}
}

// Complete restores the fully-populated invariant on a record that came from
// outside (storage, stdin, MCP arguments): nil sequences become empty and
// Jenis is normalized.
func (r *Record) Complete() {
	r.Header.Jenis = NormalizeJenis(r.Header.Jenis)
	if r.Attendance.Hadir == nil {
		r.Attendance.Hadir = []Attendee{}
	}
	if r.Attendance.TidakHadir == nil {
		r.Attendance.TidakHadir = []Attendee{}
	}
	if r.MattersArising == nil {
		r.MattersArising = []Item{}
	}
	if r.NewMatters == nil {
		r.NewMatters = []Item{}
	}
}

// NormalizeJenis maps any spelling of "exco" to JenisExco and everything else,
// including empty, to JenisAGM.
func NormalizeJenis(s string) string {
	if strings.EqualFold(strings.TrimSpace(s), JenisExco) {
		return JenisExco
	}
	return JenisAGM
}

// IsResolved reports whether a matters-arising status marks the item done.
// Only the exact label "Selesai" counts; any other spelling stays open.
func IsResolved(status string) bool {
	return status == StatusSelesai
}
