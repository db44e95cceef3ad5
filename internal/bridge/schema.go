package bridge

import (
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// tickSchema validates the tick request body before it reaches the
// simulation, so malformed payloads fail with a schema message instead of a
// half-parsed struct.
const tickSchema = `{
	"type": "object",
	"required": ["dt"],
	"additionalProperties": false,
	"properties": {
		"dt": {"type": "number"},
		"player": {
			"type": "object",
			"required": ["action"],
			"additionalProperties": false,
			"properties": {
				"action": {"type": "string"},
				"zone": {"type": "string"},
				"entity": {"type": "string"}
			}
		},
		"npc_events": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["delta"],
				"additionalProperties": false,
				"properties": {
					"kind": {"type": "string"},
					"zone": {"type": "string"},
					"delta": {"type": "number"}
				}
			}
		}
	}
}`

func mustCompileTickSchema() *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	if err := c.AddResource("tick.json", strings.NewReader(tickSchema)); err != nil {
		panic(err)
	}
	return c.MustCompile("tick.json")
}
