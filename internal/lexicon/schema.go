package lexicon

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// documentSchema rejects malformed lexicon files before they reach the
// parser. Unknown keys are errors so typos do not silently drop a table.
const documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "required": ["occupations", "ditto_marks", "street_suffixes", "directionals", "residence_markers"],
  "properties": {
    "occupations": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "additionalProperties": false,
        "required": ["canonical", "aliases"],
        "properties": {
          "canonical": {"type": "string", "minLength": 1},
          "aliases": {
            "type": "array",
            "minItems": 1,
            "items": {"type": "string", "minLength": 1}
          }
        }
      }
    },
    "ditto_marks": {
      "type": "array",
      "minItems": 1,
      "items": {"type": "string", "minLength": 1}
    },
    "street_suffixes": {
      "type": "array",
      "minItems": 1,
      "items": {"type": "string", "minLength": 1}
    },
    "directionals": {
      "type": "array",
      "items": {"type": "string", "minLength": 1}
    },
    "residence_markers": {
      "type": "object",
      "minProperties": 1,
      "additionalProperties": {"type": "string", "enum": ["home", "boards", "rooms"]}
    }
  }
}`

// validateDocument validates raw lexicon JSON against documentSchema.
func validateDocument(data []byte) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("lexicon.schema.json", strings.NewReader(documentSchema)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("lexicon.schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
