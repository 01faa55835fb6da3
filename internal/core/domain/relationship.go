package domain

// TargetModeExternal marks a relationship whose target lies outside the package.
const TargetModeExternal = "External"

// Relationship is a typed pointer from one part to another, scoped to the
// .rels file of its owning part. ID is unique within that file.
type Relationship struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Target     string `json:"target"`
	TargetMode string `json:"target_mode,omitempty"`
}

// IsExternal returns true if the target is not a package address.
func (r Relationship) IsExternal() bool {
	return r.TargetMode == TargetModeExternal
}

// ContentTypeDefault declares the content type for every part with Extension.
type ContentTypeDefault struct {
	Extension   string `json:"extension"`
	ContentType string `json:"content_type"`
}

// ContentTypeOverride declares the content type of one specific part.
// PartName is absolute ("/ppt/slides/slide1.xml").
type ContentTypeOverride struct {
	PartName    string `json:"part_name"`
	ContentType string `json:"content_type"`
}

// NonVisualID is the id attribute of one shape's non-visual properties,
// in document order within its shape tree.
type NonVisualID struct {
	// Value is the raw attribute value.
	Value string
	// ID is the parsed value; meaningful only when Valid.
	ID uint32
	// Valid is false for values that are not positive integers.
	Valid bool
}

// RelationshipRef is an attribute whose value names a relationship Id.
type RelationshipRef struct {
	// Attr is the local attribute name (id, embed, link, ...).
	Attr string
	// ID is the referenced relationship Id.
	ID string
}
