package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// snapshotSchema pins the stored payload shape. Loading an old database
// written by an incompatible version fails validation instead of silently
// producing a half-decoded TOC.
const snapshotSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["page_hash", "page_hash_trimmed", "structure", "body_bytes"],
  "properties": {
    "title": {"type": "string"},
    "page_hash": {"type": "integer", "minimum": 0},
    "page_hash_trimmed": {"type": "integer", "minimum": 0},
    "frontmatter_hash": {"type": "integer", "minimum": 0},
    "frontmatter_hash_normalized": {"type": "integer", "minimum": 0},
    "has_frontmatter": {"type": "boolean"},
    "body_bytes": {"type": "integer", "minimum": 0},
    "structure": {
      "type": ["array", "null"],
      "items": {"$ref": "#/$defs/node"}
    }
  },
  "$defs": {
    "node": {
      "type": "object",
      "required": ["level", "title", "slug", "subtree_hash"],
      "properties": {
        "level": {"type": "integer", "minimum": 1, "maximum": 6},
        "title": {"type": "string"},
        "slug": {"type": "string"},
        "subtree_hash": {"type": "integer", "minimum": 0},
        "children": {"type": "array", "items": {"$ref": "#/$defs/node"}}
      }
    }
  }
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func validateSnapshot(payload []byte) error {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("snapshot.schema.json", bytes.NewReader([]byte(snapshotSchema))); err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = compiler.Compile("snapshot.schema.json")
	})
	if schemaErr != nil {
		return fmt.Errorf("failed to compile snapshot schema: %w", schemaErr)
	}

	var v any
	if err := json.Unmarshal(payload, &v); err != nil {
		return err
	}
	return compiledSchema.Validate(v)
}
