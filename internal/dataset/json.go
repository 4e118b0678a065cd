package dataset

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

//go:embed proverbs.json
var embeddedProverbs []byte

type jsonDocument struct {
	Proverbs []Record `json:"proverbs"`
}

// DecodeJSON reads a document of the form {"proverbs": [...]}.
func DecodeJSON(r io.Reader) ([]Record, error) {
	var doc jsonDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode proverbs json: %w", err)
	}
	return doc.Proverbs, nil
}

// JSONFile loads records from a JSON file on disk.
type JSONFile struct {
	Path string
}

// Load implements Source.
func (f JSONFile) Load(_ context.Context) ([]Record, error) {
	fh, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Path, err)
	}
	defer fh.Close()
	return DecodeJSON(fh)
}

// Embedded loads the dataset compiled into the binary.
type Embedded struct{}

// Load implements Source.
func (Embedded) Load(_ context.Context) ([]Record, error) {
	return DecodeJSON(bytes.NewReader(embeddedProverbs))
}
