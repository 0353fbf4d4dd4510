package docintel

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/operation.json
var operationSchemaJSON string

// operationSchema validates status responses before they are decoded into
// typed structs. The service is treated as untrusted input: a payload that
// does not match the documented shape is rejected outright.
var operationSchema = jsonschema.MustCompileString("operation.json", operationSchemaJSON)

// parseOperation validates and decodes an analyzeResults response body.
func parseOperation(body []byte) (*Operation, error) {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("malformed status response: %w", err)
	}
	if err := operationSchema.Validate(raw); err != nil {
		return nil, fmt.Errorf("unexpected status response shape: %w", err)
	}

	var op Operation
	if err := json.Unmarshal(body, &op); err != nil {
		return nil, fmt.Errorf("failed to decode status response: %w", err)
	}
	return &op, nil
}
