package conversation

import (
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/xkilldash9x/webpilot/api/schemas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ExportJSON writes entries as an indented JSON array. Image bytes are base64 encoded.
func ExportJSON(w io.Writer, entries []schemas.Entry) error {
	if entries == nil {
		entries = []schemas.Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal transcript: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}
	return nil
}

// ImportJSON reads a transcript written by ExportJSON.
func ImportJSON(r io.Reader) ([]schemas.Entry, error) {
	var entries []schemas.Entry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode transcript: %w", err)
	}
	return entries, nil
}
