package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
	k8syaml "sigs.k8s.io/yaml"
)

const entitySchemaURL = "https://pipelines.stacklok.dev/schema/entity.schema.json"

//go:embed schema/entity.schema.json
var entitySchemaJSON []byte

var (
	entitySchemaOnce sync.Once
	entitySchema     *jsonschema.Schema
	entitySchemaErr  error
)

func compiledEntitySchema() (*jsonschema.Schema, error) {
	entitySchemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(entitySchemaJSON))
		if err != nil {
			entitySchemaErr = fmt.Errorf("failed to parse entity schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(entitySchemaURL, doc); err != nil {
			entitySchemaErr = fmt.Errorf("failed to add entity schema: %w", err)
			return
		}
		entitySchema, entitySchemaErr = c.Compile(entitySchemaURL)
	})
	return entitySchema, entitySchemaErr
}

// ValidateEntityJSON validates a JSON entity document against the entity schema
func ValidateEntityJSON(data []byte) error {
	sch, err := compiledEntitySchema()
	if err != nil {
		return err
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return sch.Validate(inst)
}

// DecodeEntity parses and validates a single YAML or JSON entity document
func DecodeEntity(data []byte) (*Entity, error) {
	jsonData, err := k8syaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("failed to convert entity to JSON: %w", err)
	}
	if err := ValidateEntityJSON(jsonData); err != nil {
		return nil, fmt.Errorf("entity failed validation: %w", err)
	}
	var entity Entity
	if err := json.Unmarshal(jsonData, &entity); err != nil {
		return nil, fmt.Errorf("failed to decode entity: %w", err)
	}
	return &entity, nil
}

// DecodeEntities parses a multi-document YAML stream of entities.
// Empty documents are skipped, and so are documents that fail validation.
// A stream that is not valid YAML fails as a whole.
func DecodeEntities(r io.Reader) ([]Entity, error) {
	dec := yaml.NewDecoder(r)
	var entities []Entity
	for i := 0; ; i++ {
		var node yaml.Node
		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("document %d: failed to parse YAML: %w", i, err)
		}
		if len(node.Content) == 0 || node.Content[0].Tag == "!!null" {
			continue
		}
		raw, err := yaml.Marshal(&node)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		entity, err := DecodeEntity(raw)
		if err != nil {
			slog.Warn("Skipping invalid entity document", "document", i, "error", err)
			continue
		}
		entities = append(entities, *entity)
	}
	return entities, nil
}
