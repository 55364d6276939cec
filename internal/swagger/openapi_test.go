package swagger

import (
	"bytes"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestGenerateYAML_Paths(t *testing.T) {
	doc := parseDoc(t, Options{DefaultPageSize: 10})

	if doc["openapi"] != "3.0.3" {
		t.Fatalf("expected openapi 3.0.3, got %v", doc["openapi"])
	}

	paths := asMap(t, doc["paths"])
	requirePath(t, paths, "/shopping")
	requirePath(t, paths, "/shopping/{name}")

	for _, method := range []string{"get", "post", "delete"} {
		getOperation(t, paths, "/shopping", method)
	}
	for _, method := range []string{"get", "put", "delete"} {
		op := getOperation(t, paths, "/shopping/{name}", method)
		requireParam(t, parameterNames(t, op), "name")
	}
}

func TestGenerateYAML_ListParameters(t *testing.T) {
	doc := parseDoc(t, Options{DefaultPageSize: 25, MaxPageSize: 200})
	op := getOperation(t, asMap(t, doc["paths"]), "/shopping", "get")

	params := parameterNames(t, op)
	requireParam(t, params, "page")
	requireParam(t, params, "size")

	for _, raw := range op["parameters"].([]interface{}) {
		p := asMap(t, raw)
		if p["name"] != "size" {
			continue
		}
		s := asMap(t, p["schema"])
		if s["default"] != 25 {
			t.Errorf("expected size default 25, got %v", s["default"])
		}
		if s["maximum"] != 200 {
			t.Errorf("expected size maximum 200, got %v", s["maximum"])
		}
	}
}

func TestGenerateYAML_ItemSchema(t *testing.T) {
	doc := parseDoc(t, Options{})
	schemas := asMap(t, asMap(t, doc["components"])["schemas"])

	item := asMap(t, schemas["Item"])
	props := asMap(t, item["properties"])
	if _, ok := props["name"]; !ok {
		t.Fatal("expected name property")
	}
	amount := asMap(t, props["amount"])
	if amount["type"] != "integer" {
		t.Errorf("expected integer amount, got %v", amount["type"])
	}

	list := asMap(t, schemas["ShoppingList"])
	if _, ok := asMap(t, list["properties"])["shoppingList"]; !ok {
		t.Fatal("expected shoppingList property")
	}
}

func TestGenerateYAML_KeyOrder(t *testing.T) {
	out, err := GenerateYAML(Options{})
	if err != nil {
		t.Fatalf("generate yaml: %v", err)
	}
	text := string(out)
	if !strings.HasPrefix(text, "openapi: 3.0.3\n") {
		t.Fatalf("expected openapi key first, got %q", text[:40])
	}
	if strings.Index(text, "info:") > strings.Index(text, "paths:") {
		t.Fatal("expected info before paths")
	}
}

func TestGenerateYAML_UpsertModeDescription(t *testing.T) {
	doc := parseDoc(t, Options{UpsertMode: "accumulate"})
	info := asMap(t, doc["info"])
	desc, _ := info["description"].(string)
	if !strings.Contains(desc, "added") {
		t.Fatalf("expected accumulate description, got %q", desc)
	}
}

func TestProviderYAML(t *testing.T) {
	p := NewProvider(Options{Version: "v1.2.3", DefaultPageSize: 10})

	first, err := p.YAML()
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	second, err := p.YAML()
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatal("expected cached document to be identical")
	}
	if !strings.Contains(string(first), "version: v1.2.3") {
		t.Fatal("expected version in document")
	}

	first[0] = 'X'
	third, _ := p.YAML()
	if third[0] == 'X' {
		t.Fatal("provider returned a shared buffer")
	}
}

func parseDoc(t *testing.T, opts Options) map[string]interface{} {
	t.Helper()
	out, err := GenerateYAML(opts)
	if err != nil {
		t.Fatalf("generate yaml: %v", err)
	}
	var doc map[string]interface{}
	if err := yaml.Unmarshal(out, &doc); err != nil {
		t.Fatalf("unmarshal yaml: %v", err)
	}
	return doc
}

func asMap(t *testing.T, value interface{}) map[string]interface{} {
	t.Helper()
	result, ok := value.(map[string]interface{})
	if !ok {
		t.Fatalf("expected map, got %T", value)
	}
	return result
}

func requirePath(t *testing.T, paths map[string]interface{}, path string) {
	t.Helper()
	if _, ok := paths[path]; !ok {
		t.Fatalf("expected path %q in OpenAPI document", path)
	}
}

func getOperation(t *testing.T, paths map[string]interface{}, path string, method string) map[string]interface{} {
	t.Helper()
	pathItem := asMap(t, paths[path])
	op := asMap(t, pathItem[method])
	return op
}

func parameterNames(t *testing.T, operation map[string]interface{}) map[string]bool {
	t.Helper()
	params := map[string]bool{}
	paramList, ok := operation["parameters"].([]interface{})
	if !ok {
		return params
	}
	for _, paramRaw := range paramList {
		param := asMap(t, paramRaw)
		name, _ := param["name"].(string)
		if name != "" {
			params[name] = true
		}
	}
	return params
}

func requireParam(t *testing.T, params map[string]bool, name string) {
	t.Helper()
	if !params[name] {
		t.Fatalf("expected parameter %q", name)
	}
}
