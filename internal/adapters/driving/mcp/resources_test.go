package mcp

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestExtractReportID(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"deckmend://reports/abc-123", "abc-123"},
		{"deckmend://reports/", ""},
		{"deckmend://reports/a/b", ""},
		{"other://reports/abc", ""},
		{"deckmend://reports", ""},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			assert.Equal(t, tt.want, extractReportID(tt.uri))
		})
	}
}

func TestServer_handleReportsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil report service returns empty list", func(t *testing.T) {
		ports, _ := testPorts()
		ports.Reports = nil
		server, err := NewServer(ports)
		require.NoError(t, err)

		result, err := server.handleReportsResource(ctx, makeReadResourceRequest("deckmend://reports"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("lists repairs", func(t *testing.T) {
		ports, _ := testPorts()
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, repaired, err := server.handleRepair(ctx, nil, RepairInput{
			Data: base64.StdEncoding.EncodeToString(brokenDeck(t)),
		})
		require.NoError(t, err)

		result, err := server.handleReportsResource(ctx, makeReadResourceRequest("deckmend://reports"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
		assert.Contains(t, result.Contents[0].Text, repaired.ReportID)
		assert.Contains(t, result.Contents[0].Text, "deckmend://reports/"+repaired.ReportID)
		assert.Contains(t, result.Contents[0].Text, `"quality_after": 100`)
	})
}

func TestServer_handleReportResource(t *testing.T) {
	ctx := context.Background()
	ports, _ := testPorts()
	server, err := NewServer(ports)
	require.NoError(t, err)

	_, repaired, err := server.handleRepair(ctx, nil, RepairInput{
		Data: base64.StdEncoding.EncodeToString(brokenDeck(t)),
	})
	require.NoError(t, err)

	t.Run("returns the report", func(t *testing.T) {
		result, err := server.handleReportResource(ctx, makeReadResourceRequest("deckmend://reports/"+repaired.ReportID))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Contains(t, result.Contents[0].Text, repaired.InputHash)
		assert.Contains(t, result.Contents[0].Text, `"stage": "nv-ids"`)
	})

	t.Run("unknown report is not found", func(t *testing.T) {
		_, err := server.handleReportResource(ctx, makeReadResourceRequest("deckmend://reports/missing"))
		assert.Error(t, err)
	})

	t.Run("malformed uri is not found", func(t *testing.T) {
		_, err := server.handleReportResource(ctx, makeReadResourceRequest("deckmend://other"))
		assert.Error(t, err)
	})
}
