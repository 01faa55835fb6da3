package domain

import (
	"path"
	"strings"
)

// Well-known part paths.
const (
	ContentTypesPath  = "[Content_Types].xml"
	RootRelsPath      = "_rels/.rels"
	PresentationPath  = "ppt/presentation.xml"
	relsExtension     = ".rels"
	relsDirectoryName = "_rels"
)

// Content types used by presentation packages.
const (
	ContentTypeRelationships      = "application/vnd.openxmlformats-package.relationships+xml"
	ContentTypeXML                = "application/xml"
	ContentTypePresentation       = "application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"
	ContentTypeSlide              = "application/vnd.openxmlformats-officedocument.presentationml.slide+xml"
	ContentTypeSlideLayout        = "application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"
	ContentTypeSlideMaster        = "application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"
	ContentTypeNotesSlide         = "application/vnd.openxmlformats-officedocument.presentationml.notesSlide+xml"
	ContentTypeNotesMaster        = "application/vnd.openxmlformats-officedocument.presentationml.notesMaster+xml"
	ContentTypeHandoutMaster      = "application/vnd.openxmlformats-officedocument.presentationml.handoutMaster+xml"
	ContentTypeTheme              = "application/vnd.openxmlformats-officedocument.theme+xml"
	ContentTypePresProps          = "application/vnd.openxmlformats-officedocument.presentationml.presProps+xml"
	ContentTypeViewProps          = "application/vnd.openxmlformats-officedocument.presentationml.viewProps+xml"
	ContentTypeTableStyles        = "application/vnd.openxmlformats-officedocument.presentationml.tableStyles+xml"
	ContentTypeCommentAuthors     = "application/vnd.openxmlformats-officedocument.presentationml.commentAuthors+xml"
	ContentTypeComment            = "application/vnd.openxmlformats-officedocument.presentationml.comments+xml"
	ContentTypeChart              = "application/vnd.openxmlformats-officedocument.drawingml.chart+xml"
	ContentTypeCoreProperties     = "application/vnd.openxmlformats-package.core-properties+xml"
	ContentTypeExtendedProperties = "application/vnd.openxmlformats-officedocument.extended-properties+xml"
	ContentTypeCustomProperties   = "application/vnd.openxmlformats-officedocument.custom-properties+xml"
	ContentTypeOLEObject          = "application/vnd.openxmlformats-officedocument.oleObject"
	ContentTypePrinterSettings    = "application/vnd.openxmlformats-officedocument.presentationml.printerSettings"
)

// PartKind classifies a part by its role in the package.
// The set is closed: stages switch over it exhaustively.
type PartKind int

// Part kinds.
const (
	PartKindOther PartKind = iota
	PartKindContentTypes
	PartKindRelationships
	PartKindPresentation
	PartKindSlide
	PartKindSlideLayout
	PartKindSlideMaster
	PartKindNotesSlide
	PartKindNotesMaster
	PartKindHandoutMaster
	PartKindTheme
	PartKindPresProps
	PartKindViewProps
	PartKindTableStyles
	PartKindCommentAuthors
	PartKindComment
	PartKindChart
	PartKindCoreProperties
	PartKindExtendedProperties
	PartKindCustomProperties
	PartKindMedia
	PartKindEmbedding
	PartKindPrinterSettings
)

var partKindNames = map[PartKind]string{
	PartKindOther:              "other",
	PartKindContentTypes:       "content-types",
	PartKindRelationships:      "relationships",
	PartKindPresentation:       "presentation",
	PartKindSlide:              "slide",
	PartKindSlideLayout:        "slide-layout",
	PartKindSlideMaster:        "slide-master",
	PartKindNotesSlide:         "notes-slide",
	PartKindNotesMaster:        "notes-master",
	PartKindHandoutMaster:      "handout-master",
	PartKindTheme:              "theme",
	PartKindPresProps:          "pres-props",
	PartKindViewProps:          "view-props",
	PartKindTableStyles:        "table-styles",
	PartKindCommentAuthors:     "comment-authors",
	PartKindComment:            "comment",
	PartKindChart:              "chart",
	PartKindCoreProperties:     "core-properties",
	PartKindExtendedProperties: "extended-properties",
	PartKindCustomProperties:   "custom-properties",
	PartKindMedia:              "media",
	PartKindEmbedding:          "embedding",
	PartKindPrinterSettings:    "printer-settings",
}

// String returns the string representation.
func (k PartKind) String() string {
	if name, ok := partKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ContentType returns the content type a part of this kind must declare.
// Media and Other return "" because their type depends on the extension.
func (k PartKind) ContentType() string {
	switch k {
	case PartKindContentTypes:
		return ""
	case PartKindRelationships:
		return ContentTypeRelationships
	case PartKindPresentation:
		return ContentTypePresentation
	case PartKindSlide:
		return ContentTypeSlide
	case PartKindSlideLayout:
		return ContentTypeSlideLayout
	case PartKindSlideMaster:
		return ContentTypeSlideMaster
	case PartKindNotesSlide:
		return ContentTypeNotesSlide
	case PartKindNotesMaster:
		return ContentTypeNotesMaster
	case PartKindHandoutMaster:
		return ContentTypeHandoutMaster
	case PartKindTheme:
		return ContentTypeTheme
	case PartKindPresProps:
		return ContentTypePresProps
	case PartKindViewProps:
		return ContentTypeViewProps
	case PartKindTableStyles:
		return ContentTypeTableStyles
	case PartKindCommentAuthors:
		return ContentTypeCommentAuthors
	case PartKindComment:
		return ContentTypeComment
	case PartKindChart:
		return ContentTypeChart
	case PartKindCoreProperties:
		return ContentTypeCoreProperties
	case PartKindExtendedProperties:
		return ContentTypeExtendedProperties
	case PartKindCustomProperties:
		return ContentTypeCustomProperties
	case PartKindEmbedding:
		return ContentTypeOLEObject
	case PartKindPrinterSettings:
		return ContentTypePrinterSettings
	case PartKindMedia, PartKindOther:
		return ""
	default:
		return ""
	}
}

// IsXML returns true if parts of this kind are XML documents.
func (k PartKind) IsXML() bool {
	switch k {
	case PartKindMedia, PartKindEmbedding, PartKindPrinterSettings:
		return false
	case PartKindOther:
		return false
	default:
		return true
	}
}

// HasShapeTree returns true if parts of this kind carry a p:spTree.
func (k PartKind) HasShapeTree() bool {
	switch k {
	case PartKindSlide, PartKindSlideLayout, PartKindSlideMaster,
		PartKindNotesSlide, PartKindNotesMaster, PartKindHandoutMaster:
		return true
	default:
		return false
	}
}

var mediaExtensions = map[string]string{
	"png":  "image/png",
	"jpeg": "image/jpeg",
	"jpg":  "image/jpeg",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"tif":  "image/tiff",
	"tiff": "image/tiff",
	"svg":  "image/svg+xml",
	"emf":  "image/x-emf",
	"wmf":  "image/x-wmf",
	"mp4":  "video/mp4",
	"m4a":  "audio/mp4",
	"mp3":  "audio/mpeg",
	"wav":  "audio/wav",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// MediaContentType returns the default content type for a media extension.
// The extension is compared without its dot and case-insensitively.
func MediaContentType(ext string) (string, bool) {
	ct, ok := mediaExtensions[strings.ToLower(strings.TrimPrefix(ext, "."))]
	return ct, ok
}

// Extension returns the lower-cased extension of p without its dot.
func Extension(p string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(p), "."))
}

// ClassifyPart returns the kind of the part stored at p.
func ClassifyPart(p string) PartKind {
	if p == ContentTypesPath {
		return PartKindContentTypes
	}
	if strings.HasSuffix(strings.ToLower(p), relsExtension) {
		return PartKindRelationships
	}

	lower := strings.ToLower(p)
	dir, file := path.Split(lower)

	switch {
	case lower == PresentationPath:
		return PartKindPresentation
	case lower == "ppt/presprops.xml":
		return PartKindPresProps
	case lower == "ppt/viewprops.xml":
		return PartKindViewProps
	case lower == "ppt/tablestyles.xml":
		return PartKindTableStyles
	case lower == "ppt/commentauthors.xml":
		return PartKindCommentAuthors
	case lower == "docprops/core.xml":
		return PartKindCoreProperties
	case lower == "docprops/app.xml":
		return PartKindExtendedProperties
	case lower == "docprops/custom.xml":
		return PartKindCustomProperties
	}

	if path.Ext(file) == ".xml" {
		switch dir {
		case "ppt/slides/":
			return PartKindSlide
		case "ppt/slidelayouts/":
			return PartKindSlideLayout
		case "ppt/slidemasters/":
			return PartKindSlideMaster
		case "ppt/notesslides/":
			return PartKindNotesSlide
		case "ppt/notesmasters/":
			return PartKindNotesMaster
		case "ppt/handoutmasters/":
			return PartKindHandoutMaster
		case "ppt/theme/":
			return PartKindTheme
		case "ppt/comments/":
			return PartKindComment
		case "ppt/charts/":
			return PartKindChart
		}
	}

	// .bin is shared by embedded objects and printer settings, so only the
	// directory tells them apart and neither gets an extension Default.
	if path.Ext(file) == ".bin" {
		switch dir {
		case "ppt/embeddings/":
			return PartKindEmbedding
		case "ppt/printersettings/":
			return PartKindPrinterSettings
		}
	}

	if _, ok := MediaContentType(path.Ext(file)); ok {
		return PartKindMedia
	}
	return PartKindOther
}

// IsRelationshipsPath returns true if p names a .rels part.
func IsRelationshipsPath(p string) bool {
	return ClassifyPart(p) == PartKindRelationships
}

// Part is one named entry within a Package.
// Data must be treated as read-only once the part is in a Package.
type Part struct {
	Path string
	Data []byte
	Kind PartKind
}

// NormalizePath converts an archive entry name to a package path:
// forward slashes, no leading slash, no "." segments.
func NormalizePath(name string) string {
	p := strings.ReplaceAll(name, "\\", "/")
	p = strings.TrimLeft(p, "/")
	if p == "" {
		return ""
	}
	cleaned := path.Clean(p)
	if cleaned == "." {
		return ""
	}
	return cleaned
}
