package ingest

import (
	"strings"

	"github.com/minitcraft/minit/internal/jsondoc"
)

// bodyKind tags the shapes a section body has taken across schema versions.
type bodyKind int

const (
	bodyAbsent     bodyKind = iota
	bodyPlain               // "some text"
	bodyStructured          // {"Perkara": ..., "Keterangan": ...}
	bodyList                // ["line", "@. item", ...]
)

// body is a section body reduced to one variant.
type body struct {
	kind    bodyKind
	heading string
	text    string
	hasText bool // structured bodies may omit Keterangan
}

// bodyOf classifies v.
func bodyOf(v *jsondoc.Value) body {
	switch v.Kind() {
	case jsondoc.Null:
		return body{kind: bodyAbsent}
	case jsondoc.Object:
		obj, _ := v.Object()
		b := body{
			kind:    bodyStructured,
			heading: fieldPerkara.text(obj, ""),
		}
		if k, ok := fieldKeterangan.lookup(obj); ok {
			b.text = flatten(k)
			b.hasText = true
		}
		return b
	case jsondoc.Array:
		return body{kind: bodyList, text: flatten(v), hasText: true}
	default:
		return body{kind: bodyPlain, text: v.Text(), hasText: true}
	}
}

// keterangan returns the body text and whether the source supplied one.
func (b body) keterangan() (string, bool) {
	return b.text, b.hasText
}

// flatten coerces content to a string. Sequences are joined with newlines,
// each element trimmed; "@." markers pass through for the renderer to number.
func flatten(v *jsondoc.Value) string {
	items, ok := v.Array()
	if !ok {
		return v.Text()
	}
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = strings.TrimSpace(item.Text())
	}
	return strings.Join(parts, "\n")
}

// carrySection picks the body of a named-schema section, falling back to the
// legacy numbered agenda slot that held the same content.
func carrySection(named, legacy *jsondoc.Value) string {
	if text, ok := bodyOf(named).keterangan(); ok {
		return text
	}
	if text, ok := bodyOf(legacy).keterangan(); ok {
		return text
	}
	return ""
}
