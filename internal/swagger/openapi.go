package swagger

import (
	"fmt"
	"sync"

	"github.com/UnitVectorY-Labs/shoppinglist/internal/schema"
	"gopkg.in/yaml.v3"
)

type orderedEntry struct {
	Key   string
	Value interface{}
}

type orderedMap []orderedEntry

func (m orderedMap) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{
		Kind: yaml.MappingNode,
		Tag:  "!!map",
	}
	for _, entry := range m {
		key := &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!str",
			Value: entry.Key,
		}
		value := &yaml.Node{}
		if err := value.Encode(entry.Value); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, key, value)
	}
	return node, nil
}

// Options describe the server settings reflected in the document.
type Options struct {
	Version         string
	DefaultPageSize int
	MaxPageSize     int
	UpsertMode      string
}

// Provider lazily generates and caches the OpenAPI YAML document.
type Provider struct {
	opts Options

	once sync.Once
	doc  []byte
	err  error
}

// NewProvider builds a Provider for the given options.
func NewProvider(opts Options) *Provider {
	return &Provider{opts: opts}
}

// YAML returns the OpenAPI document as YAML.
func (p *Provider) YAML() ([]byte, error) {
	p.once.Do(func() {
		p.doc, p.err = GenerateYAML(p.opts)
	})
	if p.err != nil {
		return nil, p.err
	}
	return copyBytes(p.doc), nil
}

// GenerateYAML creates the OpenAPI YAML document for the shopping list API.
func GenerateYAML(opts Options) ([]byte, error) {
	out, err := yaml.Marshal(buildDocument(opts))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal OpenAPI document: %w", err)
	}
	return out, nil
}

func buildDocument(opts Options) orderedMap {
	version := opts.Version
	if version == "" {
		version = "dev"
	}

	upsert := "Existing items have their amount replaced in place."
	if opts.UpsertMode == "accumulate" {
		upsert = "Existing items have the posted amount added to their amount, in place."
	}

	return orderedMap{
		{Key: "openapi", Value: "3.0.3"},
		{Key: "info", Value: orderedMap{
			{Key: "title", Value: "shoppinglist"},
			{Key: "version", Value: version},
			{Key: "description", Value: "A named-item shopping list. " + upsert},
		}},
		{Key: "paths", Value: buildPaths(opts)},
		{Key: "components", Value: orderedMap{
			{Key: "schemas", Value: buildSchemas()},
		}},
	}
}

func buildSchemas() orderedMap {
	return orderedMap{
		{Key: "Item", Value: copyValue(schema.ItemSchema())},
		{Key: "ShoppingList", Value: orderedMap{
			{Key: "type", Value: "object"},
			{Key: "properties", Value: orderedMap{
				{Key: "shoppingList", Value: orderedMap{
					{Key: "type", Value: "array"},
					{Key: "items", Value: orderedMap{
						{Key: "$ref", Value: "#/components/schemas/Item"},
					}},
				}},
			}},
			{Key: "required", Value: []interface{}{"shoppingList"}},
		}},
		{Key: "ErrorResponse", Value: orderedMap{
			{Key: "type", Value: "object"},
			{Key: "properties", Value: orderedMap{
				{Key: "error", Value: orderedMap{{Key: "type", Value: "string"}}},
			}},
			{Key: "required", Value: []interface{}{"error"}},
		}},
	}
}

func buildPaths(opts Options) orderedMap {
	return orderedMap{
		{Key: "/shopping", Value: orderedMap{
			{Key: "get", Value: listOperation(opts)},
			{Key: "post", Value: createOperation()},
			{Key: "delete", Value: map[string]interface{}{
				"operationId": "clear_items",
				"summary":     "Delete every item",
				"responses": map[string]interface{}{
					"204": map[string]interface{}{"description": "List cleared."},
					"500": jsonErrorResponse("Internal server error."),
				},
			}},
		}},
		{Key: "/shopping/{name}", Value: orderedMap{
			{Key: "get", Value: map[string]interface{}{
				"operationId": "get_item",
				"summary":     "Get item",
				"parameters":  []interface{}{namePathParam()},
				"responses": map[string]interface{}{
					"200": jsonResponse("Item found.", itemRef()),
					"404": jsonErrorResponse("Item not found."),
					"500": jsonErrorResponse("Internal server error."),
				},
			}},
			{Key: "put", Value: map[string]interface{}{
				"operationId": "update_item",
				"summary":     "Update item",
				"description": "The name in the body must match the path.",
				"parameters":  []interface{}{namePathParam()},
				"requestBody": itemRequestBody(),
				"responses": map[string]interface{}{
					"200": jsonResponse("Item updated.", itemRef()),
					"400": jsonErrorResponse("Invalid payload or name mismatch."),
					"404": jsonErrorResponse("Item not found."),
					"500": jsonErrorResponse("Internal server error."),
				},
			}},
			{Key: "delete", Value: map[string]interface{}{
				"operationId": "delete_item",
				"summary":     "Delete item",
				"parameters":  []interface{}{namePathParam()},
				"responses": map[string]interface{}{
					"204": map[string]interface{}{"description": "Item deleted."},
					"404": jsonErrorResponse("Item not found."),
					"500": jsonErrorResponse("Internal server error."),
				},
			}},
		}},
	}
}

func listOperation(opts Options) map[string]interface{} {
	sizeSchema := map[string]interface{}{
		"type":    "integer",
		"minimum": 1,
		"default": opts.DefaultPageSize,
	}
	if opts.MaxPageSize > 0 {
		sizeSchema["maximum"] = opts.MaxPageSize
	}

	return map[string]interface{}{
		"operationId": "list_items",
		"summary":     "List items in insertion order",
		"parameters": []interface{}{
			queryParam("page", "1-indexed page number. Invalid values fall back to 1.", map[string]interface{}{
				"type":    "integer",
				"minimum": 1,
				"default": 1,
			}),
			queryParam("size", "Items per page. Invalid values fall back to the default.", sizeSchema),
		},
		"responses": map[string]interface{}{
			"200": jsonResponse("Page of items.", map[string]interface{}{"$ref": "#/components/schemas/ShoppingList"}),
			"500": jsonErrorResponse("Internal server error."),
		},
	}
}

func createOperation() map[string]interface{} {
	return map[string]interface{}{
		"operationId": "upsert_item",
		"summary":     "Create or upsert item",
		"requestBody": itemRequestBody(),
		"responses": map[string]interface{}{
			"201": jsonResponse("Item stored.", itemRef()),
			"400": jsonErrorResponse("Invalid payload."),
			"500": jsonErrorResponse("Internal server error."),
		},
	}
}

func itemRef() map[string]interface{} {
	return map[string]interface{}{"$ref": "#/components/schemas/Item"}
}

func itemRequestBody() map[string]interface{} {
	return map[string]interface{}{
		"required": true,
		"content": map[string]interface{}{
			"application/json": map[string]interface{}{
				"schema": itemRef(),
			},
		},
	}
}

func namePathParam() map[string]interface{} {
	return map[string]interface{}{
		"name":        "name",
		"in":          "path",
		"required":    true,
		"description": "Item name, exact and case-sensitive.",
		"schema": map[string]interface{}{
			"type":      "string",
			"minLength": 1,
			"maxLength": schema.MaxNameLength,
		},
	}
}

func jsonResponse(description string, schema interface{}) map[string]interface{} {
	return map[string]interface{}{
		"description": description,
		"content": map[string]interface{}{
			"application/json": map[string]interface{}{
				"schema": schema,
			},
		},
	}
}

func jsonErrorResponse(description string) map[string]interface{} {
	return jsonResponse(description, map[string]interface{}{
		"$ref": "#/components/schemas/ErrorResponse",
	})
}

func queryParam(name, description string, schema map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"name":        name,
		"in":          "query",
		"required":    false,
		"description": description,
		"schema":      schema,
	}
}

func copyValue(v interface{}) interface{} {
	switch tv := v.(type) {
	case map[string]interface{}:
		copied := make(map[string]interface{}, len(tv))
		for key, val := range tv {
			copied[key] = copyValue(val)
		}
		return copied
	case []interface{}:
		copied := make([]interface{}, len(tv))
		for i, val := range tv {
			copied[i] = copyValue(val)
		}
		return copied
	default:
		return tv
	}
}

func copyBytes(in []byte) []byte {
	out := make([]byte, len(in))
	copy(out, in)
	return out
}
