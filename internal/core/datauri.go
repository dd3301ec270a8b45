package core

import (
	"encoding/base64"
	"strings"

	"smartscribe/internal/apperr"
)

// parseDataURI splits a "data:<mimetype>;base64,<payload>" blob into its MIME
// type and decoded bytes. This is the self-describing file format both
// summarization and upload accept from clients.
func parseDataURI(uri string) (mimeType string, data []byte, err error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, apperr.Validation("fileDataUri", "must be a data: URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, apperr.Validation("fileDataUri", "missing payload")
	}
	mimeType, encoding, ok := strings.Cut(meta, ";")
	if !ok || encoding != "base64" {
		return "", nil, apperr.Validation("fileDataUri", "must be base64 encoded")
	}
	if mimeType == "" {
		return "", nil, apperr.Validation("fileDataUri", "missing MIME type")
	}
	data, decodeErr := base64.StdEncoding.DecodeString(payload)
	if decodeErr != nil {
		return "", nil, apperr.Validation("fileDataUri", "invalid base64 payload")
	}
	return mimeType, data, nil
}
