package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// triggerSchema describes the inbound reply trigger
const triggerSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["botId", "userId", "conversationId", "userMessage"],
	"properties": {
		"botId":          {"type": "string", "minLength": 1},
		"userId":         {"type": "string", "minLength": 1},
		"conversationId": {"type": "string", "minLength": 1},
		"userMessage":    {"type": "string", "minLength": 1, "maxLength": 4000},
		"conversationHistory": {
			"type": "array",
			"maxItems": 200,
			"items": {
				"type": "object",
				"required": ["role", "text"],
				"properties": {
					"role":      {"enum": ["user", "assistant"]},
					"text":      {"type": "string"},
					"timestamp": {"type": "string", "format": "date-time"}
				}
			}
		}
	}
}`

// swipeSchema describes a recorded swipe
const swipeSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["actorId", "targetId", "kind"],
	"properties": {
		"actorId":  {"type": "string", "minLength": 1},
		"targetId": {"type": "string", "minLength": 1},
		"kind":     {"enum": ["like", "superlike", "pass"]}
	}
}`

var (
	triggerValidator = jsonschema.MustCompileString("trigger.json", triggerSchema)
	swipeValidator   = jsonschema.MustCompileString("swipe.json", swipeSchema)
)

// decodeValidated checks raw against schema, then decodes it into dst
func decodeValidated(schema *jsonschema.Schema, raw []byte, dst any) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return errors.New(describeValidation(err))
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}

// describeValidation flattens a schema error into one line of leaf messages
func describeValidation(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}

	var msgs []string
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			loc := e.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			msgs = append(msgs, fmt.Sprintf("%s: %s", loc, e.Message))
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	return strings.Join(msgs, "; ")
}
