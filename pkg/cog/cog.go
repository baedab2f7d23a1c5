// pkg/cog/cog.go
package cog

import "context"

// Outcome is the terminal state of one step invocation.
type Outcome string

const (
	OutcomePassed Outcome = "PASSED"
	OutcomeFailed Outcome = "FAILED"
	OutcomeError  Outcome = "ERROR"
)

// FieldType mirrors the orchestrator's field type vocabulary.
type FieldType string

const (
	FieldString    FieldType = "STRING"
	FieldEmail     FieldType = "EMAIL"
	FieldNumeric   FieldType = "NUMERIC"
	FieldBoolean   FieldType = "BOOLEAN"
	FieldDatetime  FieldType = "DATETIME"
	FieldMap       FieldType = "MAP"
	FieldAnyScalar FieldType = "ANYSCALAR"
	FieldURL       FieldType = "URL"
)

// StepType distinguishes side-effecting steps from assertions.
type StepType string

const (
	StepAction     StepType = "ACTION"
	StepValidation StepType = "VALIDATION"
)

// FieldDef declares one expected input field of a step.
type FieldDef struct {
	Key         string    `json:"key"`
	Type        FieldType `json:"type"`
	Description string    `json:"description"`
	Optional    bool      `json:"optional,omitempty"`
}

// RecordDef declares the shape of a structured record a step may emit.
type RecordDef struct {
	ID            string     `json:"id"`
	Fields        []FieldDef `json:"fields,omitempty"`
	DynamicFields bool       `json:"dynamic_fields,omitempty"`
}

// Definition is the step metadata published in the cog manifest.
type Definition struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Expression string      `json:"expression"`
	Type       StepType    `json:"type"`
	Fields     []FieldDef  `json:"fields"`
	Records    []RecordDef `json:"records,omitempty"`
}

// Record is one structured output record of a step invocation.
type Record struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	KeyValue map[string]any `json:"key_value"`
}

// Request carries the declared field values of one invocation plus its
// position in the scenario and the PII rendering flag.
type Request struct {
	Data        map[string]any `json:"data"`
	StepOrder   int            `json:"step_order,omitempty"`
	SuppressPII bool           `json:"suppress_pii,omitempty"`
}

// Response is the terminal outcome returned to the orchestrator.
type Response struct {
	Outcome Outcome  `json:"outcome"`
	Message string   `json:"message"`
	Records []Record `json:"records,omitempty"`
}

// Step is one declarative unit of action or validation.
type Step interface {
	Definition() Definition
	Execute(ctx context.Context, req Request) Response
}

// String returns the string value of a declared field, tolerating absent keys.
func (r Request) String(key string) string {
	if v, ok := r.Data[key]; ok && v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Map returns a map-typed field, or nil when absent or mistyped.
func (r Request) Map(key string) map[string]any {
	if v, ok := r.Data[key]; ok {
		if m, ok := v.(map[string]any); ok {
			return m
		}
	}
	return nil
}

// Value returns the raw field value and whether it was supplied at all.
func (r Request) Value(key string) (any, bool) {
	v, ok := r.Data[key]
	return v, ok
}
