package contract

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/leslieo2/agent-service/internal/constants"
)

//go:embed openapi.yaml
var document []byte

// Document returns the raw OpenAPI document served by this module.
func Document() []byte {
	return document
}

// Contract is the parsed OpenAPI description of the health endpoint.
type Contract struct {
	doc    *openapi3.T
	health *openapi3.Schema
}

func Load() (*Contract, error) {
	loader := openapi3.NewLoader()

	doc, err := loader.LoadFromData(document)
	if err != nil {
		return nil, fmt.Errorf("failed to parse OpenAPI contract: %w", err)
	}

	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("OpenAPI contract validation failed: %w", err)
	}

	schema, err := responseSchema(doc, constants.PathHealth, http.MethodGet, http.StatusOK)
	if err != nil {
		return nil, err
	}

	return &Contract{doc: doc, health: schema}, nil
}

func responseSchema(doc *openapi3.T, path, method string, status int) (*openapi3.Schema, error) {
	pathItem := doc.Paths.Find(path)
	if pathItem == nil {
		return nil, fmt.Errorf("path %s not found in contract", path)
	}

	operation := pathItem.GetOperation(method)
	if operation == nil || operation.Responses == nil {
		return nil, fmt.Errorf("operation %s %s not found in contract", method, path)
	}

	response := operation.Responses.Value(strconv.Itoa(status))
	if response == nil || response.Value == nil {
		return nil, fmt.Errorf("response %d not defined for %s %s", status, method, path)
	}

	media := response.Value.Content.Get(constants.ContentTypeJSON)
	if media == nil || media.Schema == nil || media.Schema.Value == nil {
		return nil, fmt.Errorf("no %s schema for %s %s", constants.ContentTypeJSON, method, path)
	}

	return media.Schema.Value, nil
}

// ValidateHealth checks a serialized health document against the contract.
func (c *Contract) ValidateHealth(body []byte) error {
	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		return fmt.Errorf("health body is not valid JSON: %w", err)
	}

	if err := c.health.VisitJSON(value, openapi3.MultiErrors()); err != nil {
		var multi openapi3.MultiError
		if errors.As(err, &multi) {
			return fmt.Errorf("health body violates contract: %w", errors.Join(multi...))
		}
		return fmt.Errorf("health body violates contract: %w", err)
	}
	return nil
}

// Version returns the info.version of the contract.
func (c *Contract) Version() string {
	return c.doc.Info.Version
}
