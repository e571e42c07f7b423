package ingest

import (
	"slices"
	"strings"

	"github.com/minitcraft/minit/internal/jsondoc"
)

// keyFolder treats "_" and "-" as spaces when comparing keys.
var keyFolder = strings.NewReplacer("_", " ", "-", " ")

// foldKey lowercases s and folds separators to spaces.
func foldKey(s string) string {
	return keyFolder.Replace(strings.ToLower(s))
}

// FindKey returns the first key of obj, in document order, whose folded form
// contains the folded pattern. Keys named in exclude are skipped.
//
// Matching is by substring, so "Hadir" also matches "Tidak Hadir". Callers
// that need the narrower section resolve the more specific pattern first and
// pass its key in exclude.
func FindKey(obj *jsondoc.Obj, pattern string, exclude ...string) (string, bool) {
	if obj == nil {
		return "", false
	}
	want := foldKey(pattern)
	for _, key := range obj.Keys() {
		if slices.Contains(exclude, key) {
			continue
		}
		if strings.Contains(foldKey(key), want) {
			return key, true
		}
	}
	return "", false
}

// field lists the accepted spellings of one logical field, highest priority
// first. A null value counts as missing and the next spelling is tried.
type field []string

// Field-resolution table. Lowercase spellings come from early editors;
// item/outcome/status/keputusan are the columns of the first data-grid editor.
var (
	fieldTitle  = field{"Title", "title"}
	fieldSiri   = field{"Siri", "siri"}
	fieldTarikh = field{"Tarikh", "tarikh"}
	fieldMasa   = field{"Masa", "masa"}
	fieldTempat = field{"Tempat", "tempat"}
	fieldJenis  = field{"Jenis", "jenis"}

	fieldPerkara    = field{"Perkara", "perkara"}
	fieldKeputusan  = field{"Keputusan", "keputusan"}
	fieldKeterangan = field{"Keterangan", "keterangan"}

	fieldNama      = field{"Nama", "nama"}
	fieldJawatan   = field{"Jawatan", "jawatan"}
	fieldSingkatan = field{"Singkatan", "singkatan"}
	fieldSebab     = field{"Sebab", "sebab"}

	fieldNewMatterTitle  = field{"Perkara", "item"}
	fieldNewMatterDetail = field{"Keterangan", "keputusan"}
	fieldArisingTitle    = field{"item", "Perkara"}
	fieldArisingStatus   = field{"status", "Keputusan"}
	fieldArisingDetail   = field{"outcome", "Keterangan"}
)

// lookup returns the first non-null value under any spelling of f.
func (f field) lookup(obj *jsondoc.Obj) (*jsondoc.Value, bool) {
	for _, key := range f {
		if v, ok := obj.Get(key); ok && !v.IsNull() {
			return v, true
		}
	}
	return nil, false
}

// text returns the flattened text of f, or def when no spelling is present.
func (f field) text(obj *jsondoc.Obj, def string) string {
	v, ok := f.lookup(obj)
	if !ok {
		return def
	}
	return flatten(v)
}

// member returns obj[key] or nil.
func member(obj *jsondoc.Obj, key string) *jsondoc.Value {
	v, _ := obj.Get(key)
	return v
}
