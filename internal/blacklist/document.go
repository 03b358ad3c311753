package blacklist

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DocumentType is the discriminator of a monster blacklist document.
const DocumentType = "MONSTER_BLACKLIST"

// Document is the blacklist record the game loads.
type Document struct {
	Type     string   `json:"type"`
	Monsters []string `json:"monsters"`
}

// NewDocument creates a blacklist document for ids. A nil ids slice
// produces an empty monsters list.
func NewDocument(ids []string) Document {
	if ids == nil {
		ids = []string{}
	}

	return Document{Type: DocumentType, Monsters: ids}
}

// Marshal renders doc as a JSON array holding exactly that document,
// indented with two spaces and terminated by a newline.
func Marshal(doc Document) ([]byte, error) {
	if doc.Monsters == nil {
		doc.Monsters = []string{}
	}

	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	if err := enc.Encode([]Document{doc}); err != nil {
		return nil, fmt.Errorf("encoding blacklist: %w", err)
	}

	return buf.Bytes(), nil
}

// Unmarshal parses a blacklist file and returns its first document.
func Unmarshal(data []byte) (Document, error) {
	var docs []Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return Document{}, fmt.Errorf("decoding blacklist: %w", err)
	}

	if len(docs) == 0 {
		return Document{}, fmt.Errorf("decoding blacklist: no document found")
	}

	if docs[0].Type != DocumentType {
		return Document{}, fmt.Errorf("decoding blacklist: unexpected type %q", docs[0].Type)
	}

	return docs[0], nil
}
