// Package render turns a minutes record into a readable document.
package render

import (
	"fmt"
	"strings"

	"github.com/minitcraft/minit/internal/minutes"
)

// Document titles by meeting type.
const (
	TitleAGM  = "MINIT MESYUARAT AGUNG TAHUNAN"
	TitleExco = "MINIT MESYUARAT JAWATANKUASA EKSEKUTIF"
)

const (
	noRecords  = "Tiada rekod."
	listMarker = "@."
)

// DocumentTitle returns the heading for a meeting type.
func DocumentTitle(jenis string) string {
	if minutes.NormalizeJenis(jenis) == minutes.JenisExco {
		return TitleExco
	}
	return TitleAGM
}

// Markdown renders rec as GitHub-flavored markdown.
func Markdown(rec minutes.Record) string {
	rec.Complete()
	h := rec.Header

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", DocumentTitle(h.Jenis))
	if t := strings.TrimSpace(h.Title); t != "" {
		fmt.Fprintf(&b, "**%s**\n\n", escape(t))
	}
	fmt.Fprintf(&b, "Siri %s pada %s\n\n", orNA(h.Siri), orNA(h.Tarikh))
	if m := strings.TrimSpace(h.Masa); m != "" {
		fmt.Fprintf(&b, "Masa: %s\n", escape(m))
	}
	if t := strings.TrimSpace(h.Tempat); t != "" {
		fmt.Fprintf(&b, "Tempat: %s\n", escape(t))
	}
	b.WriteString("\n")

	heading(&b, "HADIR")
	attendanceTable(&b, rec.Attendance.Hadir, false)
	if len(rec.Attendance.TidakHadir) > 0 {
		heading(&b, "TIDAK HADIR (DENGAN MAAF)")
		attendanceTable(&b, rec.Attendance.TidakHadir, true)
	}

	section(&b, "1. UCAPAN ALU-ALUAN PENGERUSI", rec.ChairmanAddress)
	section(&b, "2. PENGESAHAN MINIT MESYUARAT YANG LALU", rec.ApprovalOfPrevMinutes)
	mattersArising(&b, rec.MattersArising)
	section(&b, "4. LAPORAN KEWANGAN", rec.Reports.Financial)
	section(&b, "5. LAPORAN KEAHLIAN", rec.Reports.Membership)
	newMatters(&b, rec.NewMatters)

	if c := strings.TrimSpace(rec.Closing); c != "" {
		heading(&b, "PENUTUP")
		b.WriteString(body(rec.Closing))
		b.WriteString("\n\n")
	}
	if a := strings.TrimSpace(rec.Annex); a != "" {
		heading(&b, "KEMBARAN")
		b.WriteString(body(rec.Annex))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func heading(b *strings.Builder, title string) {
	fmt.Fprintf(b, "## %s\n\n", title)
}

func section(b *strings.Builder, title string, s minutes.Section) {
	heading(b, title)
	perkara := strings.TrimSpace(s.Perkara)
	text := strings.TrimSpace(s.Keterangan)
	if perkara == "" && text == "" {
		b.WriteString(noRecords + "\n\n")
		return
	}
	if perkara != "" {
		fmt.Fprintf(b, "**%s**\n\n", escape(perkara))
	}
	if text != "" {
		b.WriteString(body(s.Keterangan))
		b.WriteString("\n\n")
	}
}

func attendanceTable(b *strings.Builder, rows []minutes.Attendee, withSebab bool) {
	if len(rows) == 0 {
		b.WriteString(noRecords + "\n\n")
		return
	}
	if withSebab {
		b.WriteString("| Bil | Nama | Jawatan | Sebab |\n|---|---|---|---|\n")
	} else {
		b.WriteString("| Bil | Nama | Jawatan | Singkatan |\n|---|---|---|---|\n")
	}
	for i, r := range rows {
		bil := strings.TrimSpace(r.Siri)
		if bil == "" {
			bil = fmt.Sprint(i + 1)
		}
		last := r.Singkatan
		if withSebab {
			last = r.Sebab
		}
		fmt.Fprintf(b, "| %s | %s | %s | %s |\n", cell(bil), cell(r.Nama), cell(r.Jawatan), cell(last))
	}
	b.WriteString("\n")
}

func mattersArising(b *strings.Builder, items []minutes.Item) {
	heading(b, "3. PERKARA-PERKARA BERBANGKIT")
	if len(items) == 0 {
		b.WriteString(noRecords + "\n\n")
		return
	}
	b.WriteString("| Bil | Perkara | Status | Tindakan/Maklumbalas |\n|---|---|---|---|\n")
	for i, item := range items {
		fmt.Fprintf(b, "| 3.%d | %s | %s | %s |\n", i+1, cell(item.Perkara), cell(item.Keputusan), cell(item.Keterangan))
	}
	b.WriteString("\n")
}

func newMatters(b *strings.Builder, items []minutes.Item) {
	heading(b, "6. HAL-HAL LAIN")
	if len(items) == 0 {
		b.WriteString(noRecords + "\n\n")
		return
	}
	for i, item := range items {
		fmt.Fprintf(b, "### 6.%d %s\n\n", i+1, escape(strings.TrimSpace(item.Perkara)))
		if strings.TrimSpace(item.Keterangan) != "" {
			b.WriteString(body(item.Keterangan))
			b.WriteString("\n\n")
		}
		if k := strings.TrimSpace(item.Keputusan); k != "" {
			fmt.Fprintf(b, "**Keputusan:** %s\n\n", escape(k))
		}
	}
}

// body escapes free text and turns "@." lines into a numbered list. Blank
// lines are inserted around each list so it does not merge with paragraphs.
func body(text string) string {
	lines := strings.Split(strings.ReplaceAll(escape(text), "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	n := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(trimmed, listMarker); ok {
			if n == 0 && len(out) > 0 && out[len(out)-1] != "" {
				out = append(out, "")
			}
			n++
			out = append(out, fmt.Sprintf("%d. %s", n, strings.TrimSpace(rest)))
			continue
		}
		if n > 0 && trimmed != "" {
			out = append(out, "")
		}
		n = 0
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// cell makes text safe for a single table cell.
func cell(s string) string {
	s = escape(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", "<br>")
}

// escape neutralizes raw HTML in user text; the only HTML in the output is
// the <br> emitted by cell.
func escape(s string) string {
	return strings.ReplaceAll(s, "<", "&lt;")
}

func orNA(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "N/A"
	}
	return escape(s)
}
