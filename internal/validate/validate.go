// Package validate checks loosely-typed request payloads against a
// declarative schema of per-field rules.
package validate

import (
	"fmt"
	"strings"

	"github.com/nhle/taskboard/internal/apperr"
)

// Rule declares the checks for one payload field.
type Rule struct {
	Field    string
	Required bool
	// Enum, when non-empty, lists the only accepted string values.
	Enum []string
}

// Schema is an ordered list of rules. Violations are reported in schema order.
type Schema []Rule

// Result holds every violation found in a payload.
type Result struct {
	Errors []string
}

// OK reports whether the payload passed every rule.
func (r Result) OK() bool { return len(r.Errors) == 0 }

// Err returns the violations as a validation error, or nil when OK.
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	return apperr.ValidationList(r.Errors)
}

// Validator applies a fixed schema.
type Validator struct {
	rules Schema
}

// New checks the schema itself and returns a validator for it.
func New(schema Schema) (*Validator, error) {
	seen := make(map[string]bool, len(schema))
	for i, r := range schema {
		if r.Field == "" {
			return nil, fmt.Errorf("rule %d: field name is empty", i)
		}
		if seen[r.Field] {
			return nil, fmt.Errorf("rule %d: duplicate field %q", i, r.Field)
		}
		if !r.Required && len(r.Enum) == 0 {
			return nil, fmt.Errorf("rule %d: field %q has no checks", i, r.Field)
		}
		seen[r.Field] = true
	}

	rules := make(Schema, len(schema))
	for i, r := range schema {
		rules[i] = Rule{Field: r.Field, Required: r.Required, Enum: append([]string(nil), r.Enum...)}
	}
	return &Validator{rules: rules}, nil
}

// MustNew is New for package-level schemas known to be well formed.
func MustNew(schema Schema) *Validator {
	v, err := New(schema)
	if err != nil {
		panic(err)
	}
	return v
}

// Validate evaluates every rule against payload. The checks of a rule are
// independent, so an absent enum field yields both messages.
func (v *Validator) Validate(payload map[string]any) Result {
	var res Result
	for _, r := range v.rules {
		value, present := payload[r.Field]

		if r.Required && isBlank(value, present) {
			res.Errors = append(res.Errors, fmt.Sprintf("%s is required", r.Field))
		}
		if len(r.Enum) > 0 && !oneOf(value, r.Enum) {
			res.Errors = append(res.Errors,
				fmt.Sprintf("%s must be one of %s", r.Field, strings.Join(r.Enum, ", ")))
		}
	}
	return res
}

func isBlank(value any, present bool) bool {
	if !present || value == nil {
		return true
	}
	s, ok := value.(string)
	return ok && s == ""
}

func oneOf(value any, allowed []string) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	for _, a := range allowed {
		if s == a {
			return true
		}
	}
	return false
}
