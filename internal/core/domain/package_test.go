package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPackage(t *testing.T) *Package {
	t.Helper()
	pkg, err := NewPackage(
		Part{Path: ContentTypesPath, Data: []byte("<Types/>")},
		Part{Path: "/_rels/.rels", Data: []byte("<Relationships/>")},
		Part{Path: "ppt\\presentation.xml", Data: []byte("<p:presentation/>")},
		Part{Path: "ppt/slides/slide1.xml", Data: []byte("<p:sld/>")},
	)
	require.NoError(t, err)
	return pkg
}

func TestNewPackage_NormalisesPaths(t *testing.T) {
	pkg := newTestPackage(t)

	assert.Equal(t, []string{
		ContentTypesPath,
		RootRelsPath,
		PresentationPath,
		"ppt/slides/slide1.xml",
	}, pkg.Paths())
	assert.Equal(t, 4, pkg.Len())
}

func TestNewPackage_RejectsDuplicates(t *testing.T) {
	_, err := NewPackage(
		Part{Path: "ppt/slides/slide1.xml"},
		Part{Path: "/ppt/slides/slide1.xml"},
	)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNewPackage_RejectsEmptyPath(t *testing.T) {
	_, err := NewPackage(Part{Path: "/"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPackage_PartKinds(t *testing.T) {
	pkg := newTestPackage(t)

	part, ok := pkg.Part("ppt/slides/slide1.xml")
	require.True(t, ok)
	assert.Equal(t, PartKindSlide, part.Kind)

	slides := pkg.PartsOfKind(PartKindSlide)
	require.Len(t, slides, 1)
	assert.Equal(t, "ppt/slides/slide1.xml", slides[0].Path)
}

func TestPackage_WithIsCopyOnWrite(t *testing.T) {
	pkg := newTestPackage(t)

	next := pkg.With("ppt/slides/slide1.xml", []byte("<p:sld id='2'/>"))
	added := next.With("ppt/slides/slide2.xml", []byte("<p:sld/>"))

	orig, _ := pkg.Part("ppt/slides/slide1.xml")
	assert.Equal(t, "<p:sld/>", string(orig.Data))

	changed, _ := next.Part("ppt/slides/slide1.xml")
	assert.Equal(t, "<p:sld id='2'/>", string(changed.Data))

	assert.Equal(t, 4, next.Len(), "replacing keeps position and count")
	assert.Equal(t, 5, added.Len())
	assert.Equal(t, "ppt/slides/slide2.xml", added.Paths()[4])
	assert.False(t, pkg.Has("ppt/slides/slide2.xml"))
}

func TestPackage_Without(t *testing.T) {
	pkg := newTestPackage(t)

	next := pkg.Without(PresentationPath)
	assert.False(t, next.Has(PresentationPath))
	assert.True(t, pkg.Has(PresentationPath))
	assert.Equal(t, 3, next.Len())

	same := pkg.Without("missing.xml")
	assert.Equal(t, pkg.Paths(), same.Paths())
}

func TestPackage_LookupIgnoresCase(t *testing.T) {
	pkg := newTestPackage(t)

	part, ok := pkg.Lookup("/PPT/Slides/Slide1.xml")
	require.True(t, ok)
	assert.Equal(t, "ppt/slides/slide1.xml", part.Path)

	_, ok = pkg.Lookup("ppt/slides/slide9.xml")
	assert.False(t, ok)
}

func TestPackage_NilSafe(t *testing.T) {
	var pkg *Package
	assert.Equal(t, 0, pkg.Len())
	assert.Nil(t, pkg.Paths())
	assert.Nil(t, pkg.Parts())
	assert.False(t, pkg.Has("x"))
	_, ok := pkg.Lookup("x")
	assert.False(t, ok)
}
