package ooxml

import (
	"bytes"
	"encoding/xml"
	"io"
	"sort"
)

// element is a start tag located in the original bytes.
type element struct {
	Name  xml.Name
	Attrs []xml.Attr
	Start int64
	End   int64

	// Mirrors are copies of this element in other mc:AlternateContent
	// branches.
	Mirrors []element
}

// attr returns the value of the un-namespaced attribute local.
func (e element) attr(local string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Space == "" && a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// scanElements returns the start tags for which match returns true, in
// document order. Names are namespace-resolved. A nil match keeps all.
func scanElements(data []byte, match func(xml.StartElement) bool) ([]element, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}

	var out []element
	for {
		start := dec.InputOffset()
		tok, err := dec.Token()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		se, ok := tok.(xml.StartElement)
		if !ok || (match != nil && !match(se)) {
			continue
		}
		out = append(out, element{
			Name:  se.Name,
			Attrs: se.Attr,
			Start: start,
			End:   dec.InputOffset(),
		})
	}
}

// MarkupCompatibilityNS is the namespace of mc:AlternateContent.
const MarkupCompatibilityNS = "http://schemas.openxmlformats.org/markup-compatibility/2006"

func isMarkupCompat(name xml.Name, local string) bool {
	return name.Local == local && (name.Space == MarkupCompatibilityNS || name.Space == "mc")
}

// alternateContent tracks one open mc:AlternateContent.
type alternateContent struct {
	taken      bool
	first      int
	alternates []element
}

// scanPrimaryElements is scanElements restricted to the primary branch of
// every mc:AlternateContent: the first mc:Choice, or mc:Fallback when no
// choice exists. Matches in the other branches are alternative renderings
// of the same content; each is attached to the primary match with the same
// id as a mirror.
func scanPrimaryElements(data []byte, match func(xml.StartElement) bool) ([]element, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}

	var (
		out   []element
		open  []*alternateContent
		depth int // > 0 inside a skipped branch
	)
	for {
		start := dec.InputOffset()
		tok, err := dec.Token()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := element{Name: t.Name, Attrs: t.Attr, Start: start, End: dec.InputOffset()}
			matched := match == nil || match(t)

			if depth > 0 {
				depth++
				if matched {
					ac := open[len(open)-1]
					ac.alternates = append(ac.alternates, el)
				}
				continue
			}
			if isMarkupCompat(t.Name, "AlternateContent") {
				open = append(open, &alternateContent{first: len(out)})
				continue
			}
			if len(open) > 0 && (isMarkupCompat(t.Name, "Choice") || isMarkupCompat(t.Name, "Fallback")) {
				ac := open[len(open)-1]
				if ac.taken {
					depth = 1
				}
				ac.taken = true
				continue
			}
			if matched {
				out = append(out, el)
			}

		case xml.EndElement:
			if depth > 0 {
				depth--
				continue
			}
			if isMarkupCompat(t.Name, "AlternateContent") && len(open) > 0 {
				ac := open[len(open)-1]
				open = open[:len(open)-1]
				attachMirrors(out[ac.first:], ac.alternates)
			}
		}
	}
}

// attachMirrors pairs the n-th alternate carrying an id with the n-th
// primary element carrying the same id.
func attachMirrors(primary, alternates []element) {
	used := make(map[string]int)
	for _, alt := range alternates {
		id, _ := alt.attr("id")
		n := used[id]
		used[id]++
		for i := range primary {
			if pid, _ := primary[i].attr("id"); pid != id {
				continue
			}
			if n == 0 {
				primary[i].Mirrors = append(primary[i].Mirrors, alt)
				break
			}
			n--
		}
	}
}

// attrSpan locates one attribute inside a raw start tag. Offsets are
// relative to the tag.
type attrSpan struct {
	Name     string
	ValStart int
	ValEnd   int
}

// tagAttrs lexes the attributes of a raw start tag such as
// `<p:cNvPr id="2" name="Title 1"/>`. It returns the attribute spans and
// the offset just past the element name.
func tagAttrs(tag []byte) ([]attrSpan, int) {
	i := 0
	if i < len(tag) && tag[i] == '<' {
		i++
	}
	for i < len(tag) && !isSpace(tag[i]) && tag[i] != '/' && tag[i] != '>' {
		i++
	}
	nameEnd := i

	var spans []attrSpan
	for i < len(tag) {
		for i < len(tag) && isSpace(tag[i]) {
			i++
		}
		if i >= len(tag) || tag[i] == '/' || tag[i] == '>' {
			break
		}
		nameStart := i
		for i < len(tag) && tag[i] != '=' && !isSpace(tag[i]) {
			i++
		}
		name := string(tag[nameStart:i])
		for i < len(tag) && isSpace(tag[i]) {
			i++
		}
		if i >= len(tag) || tag[i] != '=' {
			break
		}
		i++
		for i < len(tag) && isSpace(tag[i]) {
			i++
		}
		if i >= len(tag) || (tag[i] != '"' && tag[i] != '\'') {
			break
		}
		quote := tag[i]
		i++
		valStart := i
		for i < len(tag) && tag[i] != quote {
			i++
		}
		spans = append(spans, attrSpan{Name: name, ValStart: valStart, ValEnd: i})
		i++
	}
	return spans, nameEnd
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// edit replaces data[Start:End] with Text.
type edit struct {
	Start int
	End   int
	Text  []byte
}

// setAttr builds the edit that sets the attribute named qname on el to
// value. A missing attribute is inserted after the element name.
func setAttr(data []byte, el element, qname, value string) edit {
	tag := data[el.Start:el.End]
	spans, nameEnd := tagAttrs(tag)
	escaped := escapeAttr(value)
	for _, s := range spans {
		if s.Name == qname {
			return edit{
				Start: int(el.Start) + s.ValStart,
				End:   int(el.Start) + s.ValEnd,
				Text:  escaped,
			}
		}
	}
	insert := make([]byte, 0, len(qname)+len(escaped)+4)
	insert = append(insert, ' ')
	insert = append(insert, qname...)
	insert = append(insert, '=', '"')
	insert = append(insert, escaped...)
	insert = append(insert, '"')
	pos := int(el.Start) + nameEnd
	return edit{Start: pos, End: pos, Text: insert}
}

// applyEdits returns a copy of data with non-overlapping edits applied.
// With no edits, data itself is returned.
func applyEdits(data []byte, edits []edit) []byte {
	if len(edits) == 0 {
		return data
	}
	sort.Slice(edits, func(i, j int) bool { return edits[i].Start < edits[j].Start })

	out := make([]byte, 0, len(data)+64)
	cursor := 0
	for _, e := range edits {
		out = append(out, data[cursor:e.Start]...)
		out = append(out, e.Text...)
		cursor = e.End
	}
	out = append(out, data[cursor:]...)
	return out
}

func escapeAttr(value string) []byte {
	var buf bytes.Buffer
	// EscapeText never fails on a bytes.Buffer.
	_ = xml.EscapeText(&buf, []byte(value))
	return buf.Bytes()
}
