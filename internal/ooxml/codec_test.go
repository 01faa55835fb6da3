package ooxml_test

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/deckmend/internal/core/domain"
	"github.com/custodia-labs/deckmend/internal/ooxml"
	"github.com/custodia-labs/deckmend/internal/ooxml/ooxmltest"
)

func TestCodec_RoundTrip(t *testing.T) {
	deck := ooxmltest.NewDeck(2)
	buf := deck.Bytes(t)

	codec := ooxml.NewCodec()
	pkg, err := codec.Decode(buf)
	require.NoError(t, err)

	want := deck.Package(t)
	assert.Equal(t, want.Paths(), pkg.Paths())
	for _, part := range want.Parts() {
		got, ok := pkg.Part(part.Path)
		require.True(t, ok, part.Path)
		assert.Equal(t, part.Data, got.Data, part.Path)
		assert.Equal(t, part.Kind, got.Kind, part.Path)
	}
}

func TestCodec_EncodeIsDeterministic(t *testing.T) {
	buf := ooxmltest.NewDeck(1).Bytes(t)
	codec := ooxml.NewCodec()

	pkg, err := codec.Decode(buf)
	require.NoError(t, err)

	first, err := codec.Encode(pkg)
	require.NoError(t, err)
	second, err := codec.Encode(pkg)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, buf, first)
	assert.Equal(t, ooxml.Hash(buf), ooxml.Hash(first))
}

func TestCodec_DecodeYieldsIndependentPackages(t *testing.T) {
	buf := ooxmltest.NewDeck(1).Bytes(t)
	codec := ooxml.NewCodec()

	a, err := codec.Decode(buf)
	require.NoError(t, err)
	b, err := codec.Decode(buf)
	require.NoError(t, err)
	require.NotSame(t, a, b)

	changed := a.With(ooxmltest.SlidePath(1), []byte("<p:sld/>"))
	part, _ := b.Part(ooxmltest.SlidePath(1))
	assert.NotEqual(t, []byte("<p:sld/>"), part.Data)
	assert.NotSame(t, a, changed)
}

func TestCodec_DecodeEmpty(t *testing.T) {
	_, err := ooxml.NewCodec().Decode(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDecode)

	var decodeErr *domain.DecodeError
	assert.True(t, errors.As(err, &decodeErr))
}

func TestCodec_DecodeGarbage(t *testing.T) {
	_, err := ooxml.NewCodec().Decode([]byte("definitely not a zip archive"))
	assert.ErrorIs(t, err, domain.ErrDecode)
}

func TestCodec_DecodeNormalisesEntries(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	_, err := w.Create("ppt/")
	require.NoError(t, err)
	fw, err := w.Create("/ppt\\presentation.xml")
	require.NoError(t, err)
	_, err = fw.Write([]byte("<p:presentation/>"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	pkg, err := ooxml.NewCodec().Decode(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []string{domain.PresentationPath}, pkg.Paths())
}

func TestCodec_DecodeDuplicateEntries(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, name := range []string{"ppt/presentation.xml", "/ppt/presentation.xml"} {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte("<p:presentation/>"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	_, err := ooxml.NewCodec().Decode(buf.Bytes())
	assert.ErrorIs(t, err, domain.ErrDecode)
}

func TestCodec_MaxPartSize(t *testing.T) {
	buf := ooxmltest.NewDeck(1).Bytes(t)

	_, err := ooxml.NewCodec(ooxml.WithMaxPartSize(16)).Decode(buf)
	require.Error(t, err)

	var decodeErr *domain.DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.NotEmpty(t, decodeErr.Part)
}

func TestCodec_EncodeNil(t *testing.T) {
	_, err := ooxml.NewCodec().Encode(nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestHash(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", ooxml.Hash(nil))
	assert.Len(t, ooxml.Hash([]byte("deck")), 64)
}
