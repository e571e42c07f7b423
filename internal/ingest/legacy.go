package ingest

import (
	"cmp"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/minitcraft/minit/internal/jsondoc"
	"github.com/minitcraft/minit/internal/minutes"
)

// Legacy documents keep the agenda as numbered slots ("Agenda_1".."Agenda_6")
// or as an "Agenda" mapping keyed by number. Slot 3 held matters arising and
// slot 6 new matters, as free text with "a." / "@." bullets.
var prioritySlots = []string{"Agenda_3", "Agenda_6"}

// infoKeywords mark a decision as for-notice rather than actionable.
var infoKeywords = []string{"makluman", "maklum", "noted", "information"}

const (
	agendaSlotPrefix = "Agenda_"
	followUpPrefix   = "Follow-up from: "
	leadInPhrase     = "berikut telah dilaksanakan"
	leadInMaxRunes   = 100
)

var (
	bulletSplit = regexp.MustCompile(`(?:\n|^)\s*(?:[a-z]\.|@\.)\s+`)
	boldLead    = regexp.MustCompile(`^\*\*(.*?)\*\*`)
	sentenceEnd = regexp.MustCompile(`[.!?]\s+`)
)

// agendaItem is one legacy agenda entry.
type agendaItem struct {
	slot       string // "Agenda_N" key; empty for entries of an "Agenda" mapping
	perkara    string
	keputusan  string
	keterangan string
}

// legacyMatters reconstructs matters arising from legacy agenda data: actionable
// agenda decisions are promoted, then the free-text bodies of the priority
// slots are split into one item per bullet.
func legacyMatters(root *jsondoc.Obj) []minutes.Item {
	items := promote(collectAgenda(root))
	return append(items, consolidate(root)...)
}

// collectAgenda gathers entries of an "Agenda" mapping and of top-level
// "Agenda_" keys, each group ordered by its numeric suffix.
func collectAgenda(root *jsondoc.Obj) []agendaItem {
	var items []agendaItem
	if agenda, ok := member(root, "Agenda").Object(); ok {
		for _, key := range sortAgendaKeys(agenda.Keys(), func(k string) string { return k }) {
			if obj, ok := member(agenda, key).Object(); ok {
				items = append(items, newAgendaItem("", obj))
			}
		}
	}

	var slots []string
	for _, key := range root.Keys() {
		if strings.HasPrefix(key, agendaSlotPrefix) {
			slots = append(slots, key)
		}
	}
	for _, key := range sortAgendaKeys(slots, slotNumber) {
		if obj, ok := member(root, key).Object(); ok {
			items = append(items, newAgendaItem(key, obj))
		}
	}
	return items
}

func newAgendaItem(slot string, obj *jsondoc.Obj) agendaItem {
	return agendaItem{
		slot:       slot,
		perkara:    fieldPerkara.text(obj, ""),
		keputusan:  fieldKeputusan.text(obj, ""),
		keterangan: fieldKeterangan.text(obj, ""),
	}
}

// slotNumber returns the segment after "Agenda_" up to any further "_".
func slotNumber(key string) string {
	rest := strings.TrimPrefix(key, agendaSlotPrefix)
	n, _, _ := strings.Cut(rest, "_")
	return n
}

// sortAgendaKeys orders keys by numeric value; non-numeric keys sort last in
// their original order.
func sortAgendaKeys(keys []string, number func(string) string) []string {
	out := slices.Clone(keys)
	slices.SortStableFunc(out, func(a, b string) int {
		na, okA := agendaRank(number(a))
		nb, okB := agendaRank(number(b))
		switch {
		case okA && !okB:
			return -1
		case !okA && okB:
			return 1
		case !okA && !okB:
			return 0
		}
		return cmp.Compare(na, nb)
	})
	return out
}

func agendaRank(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}

// isPrioritySlot reports whether a slot key names slot 3 or 6, including
// suffixed keys such as "Agenda_3_lama".
func isPrioritySlot(slot string) bool {
	if !strings.HasPrefix(slot, agendaSlotPrefix) {
		return false
	}
	n := slotNumber(slot)
	return n == "3" || n == "6"
}

// promote turns actionable legacy agenda entries into matters arising. Entries
// from the priority slots are left to consolidate.
func promote(items []agendaItem) []minutes.Item {
	var out []minutes.Item
	for _, it := range items {
		if isPrioritySlot(it.slot) {
			continue
		}
		switch {
		case it.keputusan != "" && !isInformational(it.keputusan):
			out = append(out, minutes.Item{
				Perkara:    it.perkara + ": " + it.keputusan,
				Keputusan:  minutes.StatusPelaksanaan,
				Keterangan: it.keterangan,
			})
		case strings.Contains(strings.ToLower(it.perkara), "berbangkit"):
			out = append(out, minutes.Item{
				Perkara:    followUpPrefix + it.perkara,
				Keputusan:  minutes.StatusPelaksanaan,
				Keterangan: it.keterangan,
			})
		}
	}
	return out
}

func isInformational(keputusan string) bool {
	lower := strings.ToLower(keputusan)
	for _, kw := range infoKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// consolidate splits the bodies of the priority slots on bullet markers and
// yields one item per segment. Short lead-in sentences such as "Perkara
// berikut telah dilaksanakan:" are dropped.
func consolidate(root *jsondoc.Obj) []minutes.Item {
	var out []minutes.Item
	for _, slot := range prioritySlots {
		obj, ok := member(root, slot).Object()
		if !ok {
			continue
		}
		content := fieldKeterangan.text(obj, "")
		if content == "" {
			continue
		}
		for _, seg := range bulletSplit.Split(content, -1) {
			seg = strings.TrimSpace(seg)
			if seg == "" {
				continue
			}
			if strings.Contains(strings.ToLower(seg), leadInPhrase) && utf8.RuneCountInString(seg) < leadInMaxRunes {
				continue
			}
			title, detail := splitSegment(seg)
			if detail == "" {
				detail = seg
			}
			out = append(out, minutes.Item{
				Perkara:    title,
				Keputusan:  minutes.StatusPelaksanaan,
				Keterangan: detail,
			})
		}
	}
	return out
}

// splitSegment derives a title and detail from one bullet. A leading
// **bold** run is the title; otherwise the first sentence is.
func splitSegment(seg string) (title, detail string) {
	if m := boldLead.FindStringSubmatchIndex(seg); m != nil {
		rest := strings.TrimSpace(seg[m[1]:])
		rest = strings.TrimSpace(strings.TrimLeft(rest, "."))
		return seg[m[2]:m[3]], rest
	}
	if loc := sentenceEnd.FindStringIndex(seg); loc != nil {
		return seg[:loc[0]+1], seg[loc[1]:]
	}
	return seg, ""
}
