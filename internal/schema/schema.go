package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/UnitVectorY-Labs/shoppinglist/internal/model"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

const (
	// MaxNameLength bounds the item name, which doubles as a URL segment and primary key.
	MaxNameLength = 512
	// MaxAmount mirrors model.MaxAmount for the payload schema.
	MaxAmount = model.MaxAmount
)

// Validator wraps a compiled JSON Schema for document validation.
type Validator struct {
	compiled *jsonschema.Schema
}

// ItemSchema returns the JSON Schema every create and update payload must satisfy.
func ItemSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"name": map[string]interface{}{
				"type":      "string",
				"minLength": 1,
				"maxLength": MaxNameLength,
			},
			"amount": map[string]interface{}{
				"type":             "integer",
				"exclusiveMinimum": 0,
				"maximum":          MaxAmount,
			},
		},
		"required": []interface{}{"name", "amount"},
	}
}

// NewItemValidator compiles ItemSchema.
func NewItemValidator() (*Validator, error) {
	return Compile(ItemSchema())
}

// Compile takes a raw JSON Schema (as map[string]interface{} from YAML) and compiles it.
func Compile(rawSchema interface{}) (*Validator, error) {
	schemaBytes, err := json.Marshal(rawSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema to JSON: %w", err)
	}

	schemaDoc, err := jsonschema.UnmarshalJSON(strings.NewReader(string(schemaBytes)))
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema JSON: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", schemaDoc); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	compiled, err := c.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return &Validator{compiled: compiled}, nil
}

// Validate checks a raw JSON document against the compiled schema.
func (v *Validator) Validate(body []byte) error {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to unmarshal document JSON: %w", err)
	}

	if err := v.compiled.Validate(inst); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	return nil
}

// ParseItem validates a raw request body and decodes it into an Item.
// Every failure wraps model.ErrInvalidPayload.
func (v *Validator) ParseItem(body []byte) (model.Item, error) {
	if err := v.Validate(body); err != nil {
		return model.Item{}, fmt.Errorf("%w: %v", model.ErrInvalidPayload, err)
	}

	var raw struct {
		Name   string      `json:"name"`
		Amount json.Number `json:"amount"`
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return model.Item{}, fmt.Errorf("%w: %v", model.ErrInvalidPayload, err)
	}

	// The schema has already checked the number is integral; 2.0 is accepted.
	f, err := raw.Amount.Float64()
	if err != nil {
		return model.Item{}, fmt.Errorf("%w: amount: %v", model.ErrInvalidPayload, err)
	}

	return model.Item{Name: raw.Name, Amount: int(f)}, nil
}
