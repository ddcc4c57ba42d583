// internal/schema/contract.go
// Package schema defines the flow contracts: the exact shapes a model's input
// and output must satisfy before any caller trusts them.
package schema

import (
	"fmt"
	"sort"
	"strings"

	stderrors "github.com/anyanwuihueze/japa-genie-active/internal/common/errors"

	"github.com/xeipuuv/gojsonschema"
)

// Contract binds a flow name to its input and output schemas. Every
// generation call must declare both; a contract with a nil OutputSchema
// accepts free-form text but loses validation guarantees.
type Contract struct {
	Name         string
	InputSchema  map[string]interface{}
	OutputSchema map[string]interface{}
}

// ValidateInput checks a request value against the contract's input schema.
func (c *Contract) ValidateInput(doc interface{}) error {
	violations, err := validate(c.InputSchema, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return stderrors.NewInputValidationFailedError(c.Name, []string{err.Error()})
	}
	if len(violations) > 0 {
		return stderrors.NewInputValidationFailedError(c.Name, violations)
	}
	return nil
}

// ValidateOutput checks raw model output against the contract's output
// schema. Violations are never coerced; callers get the full violation list.
func (c *Contract) ValidateOutput(raw []byte) error {
	if c.OutputSchema == nil {
		return nil
	}
	violations, err := validate(c.OutputSchema, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return stderrors.NewSchemaViolationError(c.Name, []string{err.Error()})
	}
	if len(violations) > 0 {
		return stderrors.NewSchemaViolationError(c.Name, violations)
	}
	return nil
}

func validate(schemaMap map[string]interface{}, doc gojsonschema.JSONLoader) ([]string, error) {
	if len(schemaMap) == 0 {
		return nil, nil
	}

	schemaLoader := gojsonschema.NewGoLoader(schemaMap)

	result, err := gojsonschema.Validate(schemaLoader, doc)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return errs, nil
	}

	return nil, nil
}

// OutputInstructions renders the contract's output schema as plain-text
// formatting guidance for the model, so the expected shape is stated in the
// prompt itself and not only enforced after the fact.
func (c *Contract) OutputInstructions() string {
	if c.OutputSchema == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString("Respond with a single JSON object with the following fields:\n")
	writeProperties(&b, c.OutputSchema, "")
	return b.String()
}

func writeProperties(b *strings.Builder, schemaMap map[string]interface{}, indent string) {
	props, ok := schemaMap["properties"].(map[string]interface{})
	if !ok {
		return
	}

	required := map[string]bool{}
	if reqList, ok := schemaMap["required"].([]string); ok {
		for _, r := range reqList {
			required[r] = true
		}
	}

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		prop, ok := props[name].(map[string]interface{})
		if !ok {
			continue
		}

		typ, _ := prop["type"].(string)
		desc, _ := prop["description"].(string)

		optional := ""
		if !required[name] {
			optional = ", optional"
		}
		fmt.Fprintf(b, "%s- %q (%s%s): %s\n", indent, name, typ, optional, desc)

		// One level of nesting is enough guidance; deeper structure is
		// carried by the descriptions themselves.
		if typ == "object" && indent == "" {
			writeProperties(b, prop, "  ")
		}
		if typ == "array" && indent == "" {
			if items, ok := prop["items"].(map[string]interface{}); ok {
				writeProperties(b, items, "  ")
			}
		}
	}
}
