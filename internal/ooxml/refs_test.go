package ooxml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/deckmend/internal/core/domain"
)

func TestRelationshipRefs(t *testing.T) {
	data := `<p:sld xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"` +
		` xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"` +
		` xmlns:r="` + OfficeRelationshipsNS + `"` +
		` xmlns:sr="` + StrictOfficeRelationshipsNS + `">` +
		`<a:blip r:embed="rId2"/>` +
		`<a:hlinkClick r:id=""/>` +
		`<a:hlinkClick r:id="rId3" tooltip="x"/>` +
		`<p:oleObj sr:id="rId4" id="rId9"/>` +
		`</p:sld>`

	refs, err := RelationshipRefs([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, []domain.RelationshipRef{
		{Attr: "embed", ID: "rId2"},
		{Attr: "id", ID: "rId3"},
		{Attr: "id", ID: "rId4"},
	}, refs)
}

func TestRelationshipRefs_None(t *testing.T) {
	refs, err := RelationshipRefs([]byte(`<a:theme xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"/>`))
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestRelationshipRefs_Malformed(t *testing.T) {
	_, err := RelationshipRefs([]byte(`<p:sld xmlns:r="` + OfficeRelationshipsNS + `"><a r:id="rId1">`))
	assert.Error(t, err)
}
