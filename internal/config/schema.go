package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// specSchema is the structural contract for a test spec document. Unknown
// fields and unknown step shapes are rejected here, not silently dropped.
const specSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": false,
  "required": ["sequence"],
  "properties": {
    "name": {"type": "string"},
    "url": {"type": "string"},
    "sequence": {
      "type": "array",
      "minItems": 1,
      "items": {"$ref": "#/$defs/step"}
    },
    "timeouts": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "load": {"type": "integer", "exclusiveMinimum": 0},
        "action": {"type": "integer", "exclusiveMinimum": 0},
        "total": {"type": "integer", "exclusiveMinimum": 0}
      }
    },
    "retries": {"type": "integer", "minimum": 0, "maximum": 10},
    "actionRetries": {"type": "integer", "minimum": 0, "maximum": 10},
    "alwaysCUA": {"type": "boolean"},
    "cuaModel": {"type": "string", "minLength": 1},
    "cuaMaxSteps": {"type": "integer", "exclusiveMinimum": 0},
    "evaluation": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "minSuccessRate": {"type": "number", "minimum": 0, "maximum": 100},
        "maxActionDurationMs": {"type": "integer", "exclusiveMinimum": 0}
      }
    }
  },
  "$defs": {
    "step": {
      "type": "object",
      "additionalProperties": false,
      "required": ["action"],
      "properties": {
        "action": {"enum": ["wait", "screenshot", "observe", "click", "press", "axis", "agent"]},
        "target": {"type": "string"},
        "key": {"type": "string"},
        "repeat": {"type": "integer", "minimum": 1},
        "durationMs": {"type": "integer", "exclusiveMinimum": 0},
        "axis": {"type": "string"},
        "value": {"type": "number"},
        "goal": {"type": "string"},
        "extract": {"type": "object", "additionalProperties": {"type": "string"}},
        "assert": {"type": "string"},
        "gate": {"type": "boolean"},
        "useCUA": {"type": "boolean"}
      }
    }
  }
}`

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(specSchema))
		if err != nil {
			compileErr = fmt.Errorf("unmarshal spec schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("testspec.json", doc); err != nil {
			compileErr = fmt.Errorf("add spec schema resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile("testspec.json")
	})
	return compiledSchema, compileErr
}

// validateStructure checks the raw document against the JSON Schema. The YAML
// document is round-tripped through JSON so the schema sees canonical values.
func validateStructure(data []byte) []string {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return []string{fmt.Sprintf("parsing spec: %v", err)}
	}
	if doc == nil {
		return []string{"spec document is empty"}
	}

	jsonData, err := json.Marshal(doc)
	if err != nil {
		return []string{fmt.Sprintf("encoding spec for validation: %v", err)}
	}
	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(jsonData))
	if err != nil {
		return []string{fmt.Sprintf("decoding spec for validation: %v", err)}
	}

	sch, err := schema()
	if err != nil {
		return []string{err.Error()}
	}

	if err := sch.Validate(instance); err != nil {
		ve, ok := err.(*jsonschema.ValidationError)
		if !ok {
			return []string{err.Error()}
		}
		var issues []string
		for _, cause := range flattenCauses(ve) {
			loc := strings.Join(cause.InstanceLocation, ".")
			if loc == "" {
				loc = "(root)"
			}
			issues = append(issues, fmt.Sprintf("%s: %v", loc, cause.ErrorKind))
		}
		return issues
	}
	return nil
}

// flattenCauses recursively collects all leaf validation errors.
func flattenCauses(ve *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*jsonschema.ValidationError{ve}
	}
	var flat []*jsonschema.ValidationError
	for _, cause := range ve.Causes {
		flat = append(flat, flattenCauses(cause)...)
	}
	return flat
}
