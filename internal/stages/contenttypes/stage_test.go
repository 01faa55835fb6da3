package contenttypes_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/deckmend/internal/core/domain"
	"github.com/custodia-labs/deckmend/internal/core/ports/driven"
	"github.com/custodia-labs/deckmend/internal/ooxml"
	"github.com/custodia-labs/deckmend/internal/ooxml/ooxmltest"
	"github.com/custodia-labs/deckmend/internal/stages/contenttypes"
)

func apply(t *testing.T, s *contenttypes.Stage, pkg *domain.Package) *driven.StageOutcome {
	t.Helper()
	outcome, err := s.Apply(context.Background(), pkg)
	require.NoError(t, err)
	return outcome
}

func declarations(t *testing.T, pkg *domain.Package) *ooxml.ContentTypes {
	t.Helper()
	part, ok := pkg.Part(domain.ContentTypesPath)
	require.True(t, ok)
	ct, err := ooxml.ParseContentTypes(part.Data)
	require.NoError(t, err)
	return ct
}

func TestStage_Name(t *testing.T) {
	assert.Equal(t, "content-types", contenttypes.New().Name())
}

func TestStage_CleanPackageIsUntouched(t *testing.T) {
	pkg := ooxmltest.NewDeck(2).AddPicture(1, "rId2", "image1.png").Package(t)

	outcome := apply(t, contenttypes.New(), pkg)

	assert.Same(t, pkg, outcome.Package)
	assert.Equal(t, map[string]any{"addedOverrides": 0, "removedDangling": 0}, outcome.Stats["diff"])
	assert.Equal(t, false, outcome.Stats["created"])
}

func TestStage_DiffCorrectness(t *testing.T) {
	pkg := ooxmltest.NewDeck(3).
		DropOverride(ooxmltest.SlidePath(2)).
		DropOverride(ooxmltest.LayoutPath).
		DropOverride(ooxmltest.ThemePath).
		AddOverride("ppt/slides/slide9.xml", domain.ContentTypeSlide).
		AddOverride("ppt/notesSlides/notesSlide1.xml", domain.ContentTypeNotesSlide).
		Package(t)

	first := apply(t, contenttypes.New(), pkg)
	assert.Equal(t, 3, first.Stats["addedOverrides"])
	assert.Equal(t, 2, first.Stats["removedDangling"])
	assert.Equal(t, map[string]any{"addedOverrides": 3, "removedDangling": 2}, first.Stats["diff"])

	ct := declarations(t, first.Package)
	for _, p := range []string{ooxmltest.SlidePath(2), ooxmltest.LayoutPath, ooxmltest.ThemePath} {
		part, _ := first.Package.Part(p)
		got, ok := ct.Effective(p)
		assert.True(t, ok, p)
		assert.Equal(t, part.Kind.ContentType(), got, p)
	}
	_, ok := ct.OverrideFor("ppt/slides/slide9.xml")
	assert.False(t, ok)

	second := apply(t, contenttypes.New(), first.Package)
	assert.Same(t, first.Package, second.Package)
	assert.Equal(t, 0, second.Stats["addedOverrides"])
	assert.Equal(t, 0, second.Stats["removedDangling"])
}

func TestStage_CorrectsWrongTypeInPlace(t *testing.T) {
	pkg := ooxmltest.NewDeck(1).
		DropOverride(ooxmltest.SlidePath(1)).
		AddOverride(ooxmltest.SlidePath(1), domain.ContentTypeSlideLayout).
		Package(t)
	before := declarations(t, pkg)

	outcome := apply(t, contenttypes.New(), pkg)

	assert.Equal(t, 1, outcome.Stats["addedOverrides"])
	after := declarations(t, outcome.Package)
	assert.Len(t, after.Overrides, len(before.Overrides))

	o, ok := after.OverrideFor(ooxmltest.SlidePath(1))
	require.True(t, ok)
	assert.Equal(t, domain.ContentTypeSlide, o.ContentType)
}

func TestStage_RemovesDuplicateOverrides(t *testing.T) {
	pkg := ooxmltest.NewDeck(1).
		AddOverride(ooxmltest.SlidePath(1), domain.ContentTypeSlide).
		Package(t)

	outcome := apply(t, contenttypes.New(), pkg)

	assert.Equal(t, 1, outcome.Stats["removedDuplicates"])
	assert.Equal(t, 0, outcome.Stats["addedOverrides"])
	assert.Equal(t, declarations(t, ooxmltest.NewDeck(1).Package(t)), declarations(t, outcome.Package))
}

func TestStage_MissingContentTypesPart(t *testing.T) {
	deck := ooxmltest.NewDeck(2)
	want := declarations(t, deck.Package(t))
	pkg := deck.Remove(domain.ContentTypesPath).Package(t)

	outcome := apply(t, contenttypes.New(), pkg)

	assert.Equal(t, true, outcome.Stats["created"])
	assert.Equal(t, 2, outcome.Stats["addedDefaults"])
	assert.Equal(t, len(want.Overrides), outcome.Stats["addedOverrides"])
	assert.Equal(t, domain.ContentTypesPath, outcome.Package.Paths()[outcome.Package.Len()-1])

	got := declarations(t, outcome.Package)
	byPart := func(ct *ooxml.ContentTypes) map[string]string {
		m := make(map[string]string)
		for _, o := range ct.Overrides {
			m[o.PartName] = o.ContentType
		}
		return m
	}
	if diff := cmp.Diff(byPart(want), byPart(got)); diff != "" {
		t.Errorf("overrides mismatch (-want +got):\n%s", diff)
	}
}

func TestStage_DeclaresMediaDefaults(t *testing.T) {
	pkg := ooxmltest.NewDeck(1).
		AddPicture(1, "rId2", "image1.png").
		DropDefault("png").
		Package(t)

	outcome := apply(t, contenttypes.New(), pkg)

	assert.Equal(t, 1, outcome.Stats["addedDefaults"])
	got, ok := declarations(t, outcome.Package).DefaultFor("png")
	assert.True(t, ok)
	assert.Equal(t, "image/png", got)
}

func TestStage_BinaryPartsGetOverridesByDirectory(t *testing.T) {
	printer := "ppt/printerSettings/printerSettings1.bin"
	embedding := "ppt/embeddings/oleObject1.bin"
	pkg := ooxmltest.NewDeck(1).
		Set(printer, []byte{1, 2}).
		Set(embedding, []byte{3, 4}).
		Package(t)

	outcome := apply(t, contenttypes.New(), pkg)

	assert.Equal(t, 0, outcome.Stats["addedDefaults"])
	assert.Equal(t, 2, outcome.Stats["addedOverrides"])
	ct := declarations(t, outcome.Package)
	_, ok := ct.DefaultFor("bin")
	assert.False(t, ok)

	got, ok := ct.Effective(printer)
	assert.True(t, ok)
	assert.Equal(t, domain.ContentTypePrinterSettings, got)
	got, ok = ct.Effective(embedding)
	assert.True(t, ok)
	assert.Equal(t, domain.ContentTypeOLEObject, got)
}

func TestStage_ExtraDefaults(t *testing.T) {
	pkg := ooxmltest.NewDeck(1).Set("ppt/embeddings/data.foo", []byte{1, 2, 3}).Package(t)

	outcome := apply(t, contenttypes.New(), pkg)
	assert.Same(t, pkg, outcome.Package)

	outcome = apply(t, contenttypes.New(contenttypes.WithDefault(".FOO", "application/x-foo")), pkg)
	assert.Equal(t, 1, outcome.Stats["addedDefaults"])
	got, ok := declarations(t, outcome.Package).DefaultFor("foo")
	assert.True(t, ok)
	assert.Equal(t, "application/x-foo", got)
}

func TestStage_MalformedContentTypes(t *testing.T) {
	pkg := ooxmltest.NewDeck(1).Set(domain.ContentTypesPath, []byte("<Types><Default")).Package(t)

	_, err := contenttypes.New().Apply(context.Background(), pkg)
	assert.ErrorIs(t, err, domain.ErrDecode)
}
