package ooxml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/custodia-labs/deckmend/internal/core/domain"
)

// ContentTypesNS is the namespace of [Content_Types].xml.
const ContentTypesNS = "http://schemas.openxmlformats.org/package/2006/content-types"

// ContentTypes is the parsed [Content_Types].xml part.
type ContentTypes struct {
	Defaults  []domain.ContentTypeDefault
	Overrides []domain.ContentTypeOverride
}

type typesXML struct {
	XMLName   xml.Name      `xml:"Types"`
	Defaults  []defaultXML  `xml:"Default"`
	Overrides []overrideXML `xml:"Override"`
}

type defaultXML struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type overrideXML struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

// NewContentTypes returns the declarations every package starts with.
func NewContentTypes() *ContentTypes {
	return &ContentTypes{
		Defaults: []domain.ContentTypeDefault{
			{Extension: "rels", ContentType: domain.ContentTypeRelationships},
			{Extension: "xml", ContentType: domain.ContentTypeXML},
		},
	}
}

// ParseContentTypes parses a [Content_Types].xml part.
func ParseContentTypes(data []byte) (*ContentTypes, error) {
	var doc typesXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing content types: %w", err)
	}

	ct := &ContentTypes{
		Defaults:  make([]domain.ContentTypeDefault, 0, len(doc.Defaults)),
		Overrides: make([]domain.ContentTypeOverride, 0, len(doc.Overrides)),
	}
	for _, d := range doc.Defaults {
		ct.Defaults = append(ct.Defaults, domain.ContentTypeDefault{
			Extension:   d.Extension,
			ContentType: strings.TrimSpace(d.ContentType),
		})
	}
	for _, o := range doc.Overrides {
		ct.Overrides = append(ct.Overrides, domain.ContentTypeOverride{
			PartName:    o.PartName,
			ContentType: strings.TrimSpace(o.ContentType),
		})
	}
	return ct, nil
}

// DefaultFor returns the Default content type declared for ext.
func (c *ContentTypes) DefaultFor(ext string) (string, bool) {
	ext = strings.TrimPrefix(ext, ".")
	for _, d := range c.Defaults {
		if strings.EqualFold(d.Extension, ext) {
			return d.ContentType, true
		}
	}
	return "", false
}

// OverrideFor returns the first Override whose part name matches partPath.
func (c *ContentTypes) OverrideFor(partPath string) (domain.ContentTypeOverride, bool) {
	want := PartName(partPath)
	for _, o := range c.Overrides {
		if strings.EqualFold(PartName(o.PartName), want) {
			return o, true
		}
	}
	return domain.ContentTypeOverride{}, false
}

// Effective returns the content type a reader would assign to partPath:
// its Override if any, otherwise the Default for its extension.
func (c *ContentTypes) Effective(partPath string) (string, bool) {
	if o, ok := c.OverrideFor(partPath); ok {
		return o.ContentType, true
	}
	return c.DefaultFor(domain.Extension(partPath))
}

// Clone returns a deep copy.
func (c *ContentTypes) Clone() *ContentTypes {
	return &ContentTypes{
		Defaults:  append([]domain.ContentTypeDefault(nil), c.Defaults...),
		Overrides: append([]domain.ContentTypeOverride(nil), c.Overrides...),
	}
}

// Marshal serializes the declarations: Defaults first, then Overrides,
// each in list order.
func (c *ContentTypes) Marshal() []byte {
	var buf bytes.Buffer
	buf.WriteString(xmlDeclaration)
	buf.WriteString(`<Types xmlns="` + ContentTypesNS + `">`)
	for _, d := range c.Defaults {
		buf.WriteString(`<Default Extension="`)
		buf.Write(escapeAttr(d.Extension))
		buf.WriteString(`" ContentType="`)
		buf.Write(escapeAttr(d.ContentType))
		buf.WriteString(`"/>`)
	}
	for _, o := range c.Overrides {
		buf.WriteString(`<Override PartName="`)
		buf.Write(escapeAttr(o.PartName))
		buf.WriteString(`" ContentType="`)
		buf.Write(escapeAttr(o.ContentType))
		buf.WriteString(`"/>`)
	}
	buf.WriteString(`</Types>`)
	return buf.Bytes()
}
