package sheet

import (
	"bytes"
	"fmt"
	"io"
	"unicode"

	"gopkg.in/yaml.v3"

	"cssb/shape"
)

// Load reads a stylesheet document from r, accepting YAML or JSON. JSON
// documents are detected by their leading "{" and rehydrated through the
// shape package, which keeps declaration order exactly as authored;
// everything else decodes as strict YAML where unknown fields are errors.
func Load(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("unable to read document: %w", err)
	}

	doc, err := parseDocument(data)
	if err != nil {
		return nil, err
	}
	if doc.Version != DocumentVersion {
		return nil, fmt.Errorf("unsupported document version %d, expected %d", doc.Version, DocumentVersion)
	}
	return doc, nil
}

func parseDocument(data []byte) (*Document, error) {
	if bytes.HasPrefix(bytes.TrimLeftFunc(data, unicode.IsSpace), []byte("{")) {
		v, err := shape.Deserialize(&Document{}, string(data))
		if err != nil {
			return nil, err
		}
		return v.(*Document), nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("unable to parse document: %w", err)
	}
	return &doc, nil
}
