package ooxml

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/deckmend/internal/core/domain"
)

const sampleRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="/ppt/slides/slide1.xml"/>
  <Relationship Id='rId2' Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink" Target="https://example.com/a?b=1&amp;c=2" TargetMode="External"/>
</Relationships>`

func TestParseRelationships(t *testing.T) {
	rels, err := ParseRelationships([]byte(sampleRels))
	require.NoError(t, err)
	require.Len(t, rels, 2)

	assert.Equal(t, "rId1", rels[0].ID)
	assert.Equal(t, RelTypeSlide, rels[0].Type)
	assert.Equal(t, "/ppt/slides/slide1.xml", rels[0].Target)
	assert.False(t, rels[0].IsExternal())

	assert.Equal(t, "https://example.com/a?b=1&c=2", rels[1].Target)
	assert.True(t, rels[1].IsExternal())
}

func TestParseRelationships_Malformed(t *testing.T) {
	_, err := ParseRelationships([]byte(`<Relationships><Relationship`))
	assert.Error(t, err)
}

func TestMarshalRelationships_RoundTrip(t *testing.T) {
	in := []domain.Relationship{
		{ID: "rId1", Type: RelTypeSlide, Target: "slides/slide1.xml"},
		{ID: "rId2", Type: RelTypeHyperlink, Target: "https://example.com/?a=1&b=2", TargetMode: domain.TargetModeExternal},
	}

	out, err := ParseRelationships(MarshalRelationships(in))
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestRewriteRelationshipTargets_SplicesOnlyTargets(t *testing.T) {
	data := []byte(sampleRels)

	out, n, err := RewriteRelationshipTargets(data, func(rel domain.Relationship) (string, bool) {
		if rel.ID == "rId1" {
			return "slides/slide1.xml", true
		}
		return "", false
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	want := strings.Replace(sampleRels, `Target="/ppt/slides/slide1.xml"`, `Target="slides/slide1.xml"`, 1)
	assert.Equal(t, want, string(out))
}

func TestRewriteRelationshipTargets_NoChangeReturnsInput(t *testing.T) {
	data := []byte(sampleRels)

	out, n, err := RewriteRelationshipTargets(data, func(rel domain.Relationship) (string, bool) {
		return rel.Target, true
	})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Same(t, &data[0], &out[0])
}

func TestRewriteRelationshipTargets_EscapesValue(t *testing.T) {
	data := []byte(`<Relationships xmlns="` + RelationshipsNS + `"><Relationship Id="rId1" Type="t" Target="/a.xml"/></Relationships>`)

	out, _, err := RewriteRelationshipTargets(data, func(domain.Relationship) (string, bool) {
		return "a&b.xml", true
	})
	require.NoError(t, err)
	assert.Contains(t, string(out), `Target="a&amp;b.xml"`)

	rels, err := ParseRelationships(out)
	require.NoError(t, err)
	assert.Equal(t, "a&b.xml", rels[0].Target)
}

func TestDuplicateRelationshipIDs(t *testing.T) {
	rels := []domain.Relationship{{ID: "rId1"}, {ID: "rId2"}, {ID: "rId1"}, {ID: "rId1"}, {ID: "rId2"}}
	assert.Equal(t, []string{"rId1", "rId2"}, DuplicateRelationshipIDs(rels))
	assert.Empty(t, DuplicateRelationshipIDs(rels[:2]))
}
