// Package fields models the dynamic field schema of an integration target.
// The generator is parametric over an ordered set of (key, hint) pairs and
// must echo keys verbatim; nothing here assumes a fixed business schema.
package fields

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Field is one schema entry: the target's field key and a human-readable
// type/description hint.
type Field struct {
	Key  string
	Hint string
}

// Schema is an ordered field set. Order follows the integration target's
// declaration order so prompts render fields the way the target lists them.
type Schema []Field

// Default is the fallback schema used when no target configuration is
// supplied.
func Default() Schema {
	return Schema{
		{Key: "summary", Hint: "string (concise title)"},
		{Key: "description", Hint: "string (detailed description)"},
		{Key: "issuetype", Hint: "string (Bug, Story, Task, Epic)"},
		{Key: "priority", Hint: "string (High, Medium, Low)"},
		{Key: "labels", Hint: "list of strings"},
		{Key: "acceptance_criteria", Hint: "string (list of criteria)"},
		{Key: "components", Hint: "list of strings"},
	}
}

// ParseJSON decodes a {"key": "hint", ...} object preserving declaration
// order, which plain map decoding would lose.
func ParseJSON(data []byte) (Schema, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("schema must be a JSON object")
	}
	var schema Schema
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("schema key must be a string")
		}
		var hint string
		if err := dec.Decode(&hint); err != nil {
			return nil, fmt.Errorf("schema hint for %q must be a string: %w", key, err)
		}
		schema = append(schema, Field{Key: key, Hint: hint})
	}
	return schema, nil
}

// Keys returns the field keys in schema order.
func (s Schema) Keys() []string {
	keys := make([]string, len(s))
	for i, f := range s {
		keys[i] = f.Key
	}
	return keys
}

// Has reports whether key is part of the schema.
func (s Schema) Has(key string) bool {
	for _, f := range s {
		if f.Key == key {
			return true
		}
	}
	return false
}

// JSON renders the schema as an ordered JSON object for prompt inclusion.
func (s Schema) JSON() string {
	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, f := range s {
		k, _ := json.Marshal(f.Key)
		h, _ := json.Marshal(f.Hint)
		buf.WriteString("  ")
		buf.Write(k)
		buf.WriteString(": ")
		buf.Write(h)
		if i < len(s)-1 {
			buf.WriteString(",")
		}
		buf.WriteString("\n")
	}
	buf.WriteString("}")
	return buf.String()
}

// Conform drops every key of out that is not part of the schema. Missing
// keys are left absent rather than fabricated; the caller can therefore
// rely on keys(result) being a subset of the schema's keys.
func (s Schema) Conform(out map[string]any) map[string]any {
	conformed := make(map[string]any, len(out))
	for k, v := range out {
		if s.Has(k) {
			conformed[k] = v
		}
	}
	return conformed
}
