// Package ooxmltest builds in-memory presentation packages for tests.
//
// NewDeck returns a small, structurally valid deck. The mutators inject
// the defects the repair stages exist to fix, so a test states only the
// defect it cares about.
package ooxmltest

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/custodia-labs/deckmend/internal/core/domain"
	"github.com/custodia-labs/deckmend/internal/ooxml"
)

// Namespaces used in generated parts.
const (
	NSPresentation = "http://schemas.openxmlformats.org/presentationml/2006/main"
	NSDrawing      = "http://schemas.openxmlformats.org/drawingml/2006/main"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

// Well-known part paths of a generated deck.
const (
	PresentationRelsPath = "ppt/_rels/presentation.xml.rels"
	LayoutPath           = "ppt/slideLayouts/slideLayout1.xml"
	MasterPath           = "ppt/slideMasters/slideMaster1.xml"
	ThemePath            = "ppt/theme/theme1.xml"
)

// Shape is one shape of a generated slide.
type Shape struct {
	ID    string
	Name  string
	Embed string
}

// Shapes returns one shape per id.
func Shapes(ids ...string) []Shape {
	shapes := make([]Shape, len(ids))
	for i, id := range ids {
		shapes[i] = Shape{ID: id, Name: "Shape " + strconv.Itoa(i)}
	}
	return shapes
}

// SlidePath returns the path of slide n (1-based).
func SlidePath(n int) string {
	return fmt.Sprintf("ppt/slides/slide%d.xml", n)
}

// SlideRelsPath returns the .rels path of slide n.
func SlideRelsPath(n int) string {
	return ooxml.RelsPathFor(SlidePath(n))
}

// Deck is a mutable description of a presentation package.
type Deck struct {
	order  []string
	slides map[string][]Shape
	rels   map[string][]domain.Relationship
	raw    map[string][]byte
	types  *ooxml.ContentTypes
}

// NewDeck returns a clean deck with the given number of slides. Every
// slide holds a tree root (id 1) and one title shape (id 2).
func NewDeck(slides int) *Deck {
	d := &Deck{
		slides: make(map[string][]Shape),
		rels:   make(map[string][]domain.Relationship),
		raw:    make(map[string][]byte),
		types:  ooxml.NewContentTypes(),
	}

	d.add(domain.ContentTypesPath)
	d.add(domain.RootRelsPath)
	d.rels[domain.RootRelsPath] = []domain.Relationship{
		{ID: "rId1", Type: ooxml.RelTypeOfficeDocument, Target: domain.PresentationPath},
	}

	presRels := []domain.Relationship{
		{ID: "rId1", Type: ooxml.RelTypeSlideMaster, Target: "slideMasters/slideMaster1.xml"},
	}
	for i := 1; i <= slides; i++ {
		presRels = append(presRels, domain.Relationship{
			ID:     "rId" + strconv.Itoa(i+1),
			Type:   ooxml.RelTypeSlide,
			Target: fmt.Sprintf("slides/slide%d.xml", i),
		})
	}
	presRels = append(presRels, domain.Relationship{
		ID: "rId" + strconv.Itoa(slides+2), Type: ooxml.RelTypeTheme, Target: "theme/theme1.xml",
	})

	d.add(domain.PresentationPath)
	d.raw[domain.PresentationPath] = presentationXML(slides)
	d.override(domain.PresentationPath, domain.ContentTypePresentation)
	d.add(PresentationRelsPath)
	d.rels[PresentationRelsPath] = presRels

	for i := 1; i <= slides; i++ {
		d.add(SlidePath(i))
		d.slides[SlidePath(i)] = []Shape{{ID: "1", Name: ""}, {ID: "2", Name: "Title 1"}}
		d.override(SlidePath(i), domain.ContentTypeSlide)
		d.add(SlideRelsPath(i))
		d.rels[SlideRelsPath(i)] = []domain.Relationship{
			{ID: "rId1", Type: ooxml.RelTypeSlideLayout, Target: "../slideLayouts/slideLayout1.xml"},
		}
	}

	d.add(LayoutPath)
	d.slides[LayoutPath] = []Shape{{ID: "1", Name: ""}}
	d.override(LayoutPath, domain.ContentTypeSlideLayout)
	d.add(ooxml.RelsPathFor(LayoutPath))
	d.rels[ooxml.RelsPathFor(LayoutPath)] = []domain.Relationship{
		{ID: "rId1", Type: ooxml.RelTypeSlideMaster, Target: "../slideMasters/slideMaster1.xml"},
	}

	d.add(MasterPath)
	d.raw[MasterPath] = masterXML()
	d.override(MasterPath, domain.ContentTypeSlideMaster)
	d.add(ooxml.RelsPathFor(MasterPath))
	d.rels[ooxml.RelsPathFor(MasterPath)] = []domain.Relationship{
		{ID: "rId1", Type: ooxml.RelTypeSlideLayout, Target: "../slideLayouts/slideLayout1.xml"},
		{ID: "rId2", Type: ooxml.RelTypeTheme, Target: "../theme/theme1.xml"},
	}

	d.add(ThemePath)
	d.raw[ThemePath] = []byte(xmlHeader + `<a:theme xmlns:a="` + NSDrawing + `" name="Office Theme"/>`)
	d.override(ThemePath, domain.ContentTypeTheme)
	return d
}

func (d *Deck) add(p string) {
	for _, existing := range d.order {
		if existing == p {
			return
		}
	}
	d.order = append(d.order, p)
}

func (d *Deck) override(p, contentType string) {
	d.types.Overrides = append(d.types.Overrides, domain.ContentTypeOverride{
		PartName:    ooxml.PartName(p),
		ContentType: contentType,
	})
}

// Set stores raw bytes at p, replacing any generated content.
func (d *Deck) Set(p string, data []byte) *Deck {
	d.add(p)
	d.raw[p] = data
	delete(d.slides, p)
	delete(d.rels, p)
	return d
}

// Remove deletes the part at p. Content-type declarations are left alone.
func (d *Deck) Remove(p string) *Deck {
	for i, existing := range d.order {
		if existing == p {
			d.order = append(d.order[:i:i], d.order[i+1:]...)
			break
		}
	}
	delete(d.raw, p)
	delete(d.slides, p)
	delete(d.rels, p)
	return d
}

// SetShapes replaces the shapes of the slide-like part at p. The first
// shape is the tree root.
func (d *Deck) SetShapes(p string, shapes ...Shape) *Deck {
	d.add(p)
	delete(d.raw, p)
	d.slides[p] = shapes
	return d
}

// SetSlide replaces the shapes of slide n.
func (d *Deck) SetSlide(n int, shapes ...Shape) *Deck {
	return d.SetShapes(SlidePath(n), shapes...)
}

// SetRels replaces the relationships stored at relsPath.
func (d *Deck) SetRels(relsPath string, rels ...domain.Relationship) *Deck {
	d.add(relsPath)
	delete(d.raw, relsPath)
	d.rels[relsPath] = rels
	return d
}

// Rels returns a copy of the relationships stored at relsPath.
func (d *Deck) Rels(relsPath string) []domain.Relationship {
	return append([]domain.Relationship(nil), d.rels[relsPath]...)
}

// AbsoluteTargets rewrites every internal target in relsPath to its
// package-root-absolute form.
func (d *Deck) AbsoluteTargets(relsPath string) *Deck {
	base := ooxml.RelsBaseDir(relsPath)
	for i, r := range d.rels[relsPath] {
		if r.IsExternal() || ooxml.IsAbsoluteTarget(r.Target) {
			continue
		}
		if resolved, ok := ooxml.ResolveTarget(base, r.Target); ok {
			d.rels[relsPath][i].Target = "/" + resolved
		}
	}
	return d
}

// AddPicture places a picture on slide n that embeds media through relID.
// The media part, its relationship and its Default are added.
func (d *Deck) AddPicture(n int, relID, media string) *Deck {
	mediaPath := "ppt/media/" + media
	d.add(mediaPath)
	d.raw[mediaPath] = []byte("\x89PNG\r\n\x1a\n")

	ext := domain.Extension(media)
	if _, ok := d.types.DefaultFor(ext); !ok {
		if ct, known := domain.MediaContentType(ext); known {
			d.types.Defaults = append(d.types.Defaults, domain.ContentTypeDefault{Extension: ext, ContentType: ct})
		}
	}

	relsPath := SlideRelsPath(n)
	d.add(relsPath)
	d.rels[relsPath] = append(d.rels[relsPath], domain.Relationship{
		ID: relID, Type: ooxml.RelTypeImage, Target: "../media/" + media,
	})
	return d.addShape(SlidePath(n), relID)
}

// DanglingReference places a picture on slide n whose embed names relID
// without adding a relationship for it.
func (d *Deck) DanglingReference(n int, relID string) *Deck {
	return d.addShape(SlidePath(n), relID)
}

func (d *Deck) addShape(p, embed string) *Deck {
	shapes := d.slides[p]
	next := 1
	for _, s := range shapes {
		if v, err := strconv.Atoi(s.ID); err == nil && v >= next {
			next = v + 1
		}
	}
	d.slides[p] = append(shapes, Shape{ID: strconv.Itoa(next), Name: "Picture " + strconv.Itoa(next), Embed: embed})
	return d
}

// DropOverride removes the content-type override for p.
func (d *Deck) DropOverride(p string) *Deck {
	name := ooxml.PartName(p)
	kept := d.types.Overrides[:0]
	for _, o := range d.types.Overrides {
		if o.PartName != name {
			kept = append(kept, o)
		}
	}
	d.types.Overrides = kept
	return d
}

// AddOverride declares contentType for p whether or not p exists.
func (d *Deck) AddOverride(p, contentType string) *Deck {
	d.override(p, contentType)
	return d
}

// DropDefault removes the Default declaration for ext.
func (d *Deck) DropDefault(ext string) *Deck {
	kept := d.types.Defaults[:0]
	for _, def := range d.types.Defaults {
		if !strings.EqualFold(def.Extension, ext) {
			kept = append(kept, def)
		}
	}
	d.types.Defaults = kept
	return d
}

// Parts renders the deck in part order.
func (d *Deck) Parts() []domain.Part {
	parts := make([]domain.Part, 0, len(d.order))
	for _, p := range d.order {
		parts = append(parts, domain.Part{Path: p, Data: d.render(p)})
	}
	return parts
}

func (d *Deck) render(p string) []byte {
	if data, ok := d.raw[p]; ok {
		return data
	}
	if shapes, ok := d.slides[p]; ok {
		return SlideXML(shapes...)
	}
	if rels, ok := d.rels[p]; ok {
		return ooxml.MarshalRelationships(rels)
	}
	if p == domain.ContentTypesPath {
		return d.types.Marshal()
	}
	return nil
}

// Package renders the deck as a Package.
func (d *Deck) Package(t testing.TB) *domain.Package {
	t.Helper()
	pkg, err := domain.NewPackage(d.Parts()...)
	if err != nil {
		t.Fatalf("building package: %v", err)
	}
	return pkg
}

// Bytes renders the deck as an encoded zip buffer.
func (d *Deck) Bytes(t testing.TB) []byte {
	t.Helper()
	buf, err := ooxml.NewCodec().Encode(d.Package(t))
	if err != nil {
		t.Fatalf("encoding package: %v", err)
	}
	return buf
}

// SlideXML renders a slide whose first shape is the tree root group and
// whose remaining shapes are shapes or, with an Embed, pictures.
func SlideXML(shapes ...Shape) []byte {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<p:sld xmlns:a="` + NSDrawing + `" xmlns:r="` + ooxml.OfficeRelationshipsNS + `" xmlns:p="` + NSPresentation + `">`)
	b.WriteString(`<p:cSld><p:spTree>`)
	for i, s := range shapes {
		switch {
		case i == 0:
			b.WriteString(`<p:nvGrpSpPr>` + cNvPr(s) + `<p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>`)
		case s.Embed != "":
			b.WriteString(`<p:pic><p:nvPicPr>` + cNvPr(s) + `<p:cNvPicPr/><p:nvPr/></p:nvPicPr>`)
			b.WriteString(`<p:blipFill><a:blip r:embed="` + s.Embed + `"/></p:blipFill><p:spPr/></p:pic>`)
		default:
			b.WriteString(`<p:sp><p:nvSpPr>` + cNvPr(s) + `<p:cNvSpPr/><p:nvPr/></p:nvSpPr><p:spPr/></p:sp>`)
		}
	}
	b.WriteString(`</p:spTree></p:cSld></p:sld>`)
	return []byte(b.String())
}

func cNvPr(s Shape) string {
	return `<p:cNvPr id="` + s.ID + `" name="` + s.Name + `"/>`
}

func presentationXML(slides int) []byte {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<p:presentation xmlns:a="` + NSDrawing + `" xmlns:r="` + ooxml.OfficeRelationshipsNS + `" xmlns:p="` + NSPresentation + `">`)
	b.WriteString(`<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst>`)
	b.WriteString(`<p:sldIdLst>`)
	for i := 1; i <= slides; i++ {
		fmt.Fprintf(&b, `<p:sldId id="%d" r:id="rId%d"/>`, 255+i, i+1)
	}
	b.WriteString(`</p:sldIdLst><p:sldSz cx="12192000" cy="6858000"/></p:presentation>`)
	return []byte(b.String())
}

func masterXML() []byte {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<p:sldMaster xmlns:a="` + NSDrawing + `" xmlns:r="` + ooxml.OfficeRelationshipsNS + `" xmlns:p="` + NSPresentation + `">`)
	b.WriteString(`<p:cSld><p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/></p:spTree></p:cSld>`)
	b.WriteString(`<p:sldLayoutIdLst><p:sldLayoutId id="2147483649" r:id="rId1"/></p:sldLayoutIdLst>`)
	b.WriteString(`</p:sldMaster>`)
	return []byte(b.String())
}
