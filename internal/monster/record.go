package monster

import (
	"encoding/json"
	"fmt"
)

// TypeMonster is the record type that marks a monster definition.
const TypeMonster = "MONSTER"

// Record holds the fields of a content record that the extractor reads.
type Record struct {
	// ID is the "id" field, empty when absent or not a string.
	ID string
	// Type is the "type" field, empty when absent or not a string.
	Type string
	// HasAbstract is true when the record carries an "abstract" key,
	// whatever its value.
	HasAbstract bool
}

// IsMonster reports whether r is a concrete monster definition.
func IsMonster(r Record) bool {
	return r.Type == TypeMonster && r.ID != "" && !r.HasAbstract
}

// DecodeRecords parses a content file. A top-level array is used as-is; any
// other JSON value is treated as a single record. Elements that are not
// objects decode to an empty Record.
func DecodeRecords(data []byte) ([]Record, error) {
	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		elems = []json.RawMessage{raw}
	}

	records := make([]Record, 0, len(elems))

	for _, e := range elems {
		records = append(records, decodeRecord(e))
	}

	return records, nil
}

func decodeRecord(data json.RawMessage) Record {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Record{}
	}

	_, hasAbstract := fields["abstract"]

	return Record{
		ID:          stringField(fields, "id"),
		Type:        stringField(fields, "type"),
		HasAbstract: hasAbstract,
	}
}

// stringField returns fields[key] when it is a JSON string.
func stringField(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}

	return s
}

// String implements fmt.Stringer for log output.
func (r Record) String() string {
	return fmt.Sprintf("%s(%s)", r.Type, r.ID)
}
