package core

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartscribe/internal/apperr"
)

func TestParseDataURI(t *testing.T) {
	payload := []byte("%PDF-1.4 fake content")
	uri := "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(payload)

	mimeType, data, err := parseDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", mimeType)
	assert.Equal(t, payload, data)
}

func TestParseDataURIErrors(t *testing.T) {
	tests := []struct {
		name string
		uri  string
	}{
		{name: "not a data uri", uri: "https://example.com/file.pdf"},
		{name: "missing payload", uri: "data:image/png;base64"},
		{name: "not base64 encoded", uri: "data:image/png;charset=utf-8,abc"},
		{name: "missing mime type", uri: "data:;base64,aGk="},
		{name: "invalid base64", uri: "data:image/png;base64,!!!not-base64!!!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := parseDataURI(tt.uri)
			require.Error(t, err)
			assert.True(t, apperr.IsValidation(err), "expected a validation error, got %v", err)
		})
	}
}
