// internal/check/check.go
package check

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	jmes "github.com/jmespath/go-jmespath"
)

// Operator names accepted by Evaluate, in the order they are advertised.
var Operators = []string{
	"be",
	"not be",
	"contain",
	"not contain",
	"be greater than",
	"be less than",
	"be set",
	"not be set",
	"be one of",
	"not be one of",
}

// Result is the outcome of evaluating one operator against one field.
type Result struct {
	Valid   bool
	Message string
}

// UnknownOperatorError reports an operator outside the supported set.
type UnknownOperatorError struct {
	Operator string
}

func (e *UnknownOperatorError) Error() string {
	return fmt.Sprintf("unknown check %q", e.Operator)
}

// InvalidOperandError reports an ordinal comparison against a non-numeric,
// non-date operand.
type InvalidOperandError struct {
	Operator string
	Field    string
	Value    any
}

func (e *InvalidOperandError) Error() string {
	return fmt.Sprintf("the %q check requires a numeric or date operand, but the %s field held %v", e.Operator, e.Field, e.Value)
}

const redacted = "[redacted]"

// Evaluate applies operator to actual/expected and renders a human message
// naming field. It never mutates its operands. When suppressPII is set, raw
// values are redacted from the rendered message.
func Evaluate(operator string, actual, expected any, field string, suppressPII bool) (Result, error) {
	op := strings.ToLower(strings.TrimSpace(operator))

	show := func(v any) string {
		if suppressPII {
			return redacted
		}
		return render(v)
	}

	switch op {
	case "be":
		if looseEqual(actual, expected) {
			return Result{Valid: true, Message: fmt.Sprintf("The %s field was set to %s, as expected", field, show(actual))}, nil
		}
		return Result{Message: fmt.Sprintf("Expected %s field to be %s, but it was actually %s", field, show(expected), show(actual))}, nil

	case "not be":
		if !looseEqual(actual, expected) {
			return Result{Valid: true, Message: fmt.Sprintf("The %s field was not set to %s, as expected", field, show(expected))}, nil
		}
		return Result{Message: fmt.Sprintf("Expected %s field not to be %s, but it was", field, show(expected))}, nil

	case "contain":
		if looseContains(actual, expected) {
			return Result{Valid: true, Message: fmt.Sprintf("The %s field contains %s, as expected", field, show(expected))}, nil
		}
		return Result{Message: fmt.Sprintf("Expected %s field to contain %s, but it was actually %s", field, show(expected), show(actual))}, nil

	case "not contain":
		if !looseContains(actual, expected) {
			return Result{Valid: true, Message: fmt.Sprintf("The %s field does not contain %s, as expected", field, show(expected))}, nil
		}
		return Result{Message: fmt.Sprintf("Expected %s field not to contain %s, but it was actually %s", field, show(expected), show(actual))}, nil

	case "be greater than", "be less than":
		cmp, err := ordinalCompare(op, actual, expected, field)
		if err != nil {
			return Result{}, err
		}
		greater := op == "be greater than"
		if (greater && cmp > 0) || (!greater && cmp < 0) {
			return Result{Valid: true, Message: fmt.Sprintf("The %s field was %s, which is %s %s, as expected", field, show(actual), op[3:], show(expected))}, nil
		}
		return Result{Message: fmt.Sprintf("Expected %s field to %s %s, but it was actually %s", field, op, show(expected), show(actual))}, nil

	case "be set":
		if isSet(actual) {
			return Result{Valid: true, Message: fmt.Sprintf("The %s field was set, as expected", field)}, nil
		}
		return Result{Message: fmt.Sprintf("Expected %s field to be set, but it was not", field)}, nil

	case "not be set":
		if !isSet(actual) {
			return Result{Valid: true, Message: fmt.Sprintf("The %s field was not set, as expected", field)}, nil
		}
		return Result{Message: fmt.Sprintf("Expected %s field not to be set, but it was set to %s", field, show(actual))}, nil

	case "be one of":
		if looseMember(actual, expected) {
			return Result{Valid: true, Message: fmt.Sprintf("The %s field was one of %s, as expected", field, show(expected))}, nil
		}
		return Result{Message: fmt.Sprintf("Expected %s field to be one of %s, but it was actually %s", field, show(expected), show(actual))}, nil

	case "not be one of":
		if !looseMember(actual, expected) {
			return Result{Valid: true, Message: fmt.Sprintf("The %s field was not one of %s, as expected", field, show(expected))}, nil
		}
		return Result{Message: fmt.Sprintf("Expected %s field not to be one of %s, but it was actually %s", field, show(expected), show(actual))}, nil
	}

	return Result{}, &UnknownOperatorError{Operator: operator}
}

// RequiresExpected reports whether an operator needs an expected value.
func RequiresExpected(operator string) bool {
	op := strings.ToLower(strings.TrimSpace(operator))
	return op != "be set" && op != "not be set"
}

// LookupField resolves a field on an entity document. Plain keys hit the map
// directly; dotted paths are resolved with JMESPath so nested payloads stay
// addressable. The second return value distinguishes "absent" from "null".
func LookupField(doc map[string]any, field string) (any, bool) {
	if doc == nil {
		return nil, false
	}
	if v, ok := doc[field]; ok {
		return v, true
	}
	if !strings.Contains(field, ".") {
		return nil, false
	}
	v, err := jmes.Search(field, doc)
	if err != nil || v == nil {
		return nil, false
	}
	return v, true
}

func render(v any) string {
	if v == nil {
		return "null"
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func isSet(v any) bool {
	if v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) != ""
	}
	return true
}

// looseEqual compares after type coercion: numbers compare numerically,
// dates as instants, everything else as case-insensitive strings.
func looseEqual(a, b any) bool {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return af == bf
		}
	}
	if at, aok := toTime(a); aok {
		if bt, bok := toTime(b); bok {
			return at.Equal(bt)
		}
	}
	return strings.EqualFold(strings.TrimSpace(render(a)), strings.TrimSpace(render(b)))
}

func looseContains(actual, expected any) bool {
	if list, ok := actual.([]any); ok {
		for _, item := range list {
			if looseEqual(item, expected) {
				return true
			}
		}
		return false
	}
	return strings.Contains(strings.ToLower(render(actual)), strings.ToLower(render(expected)))
}

// looseMember tests actual against an expected set given either as a slice
// or as a comma-delimited string.
func looseMember(actual, expected any) bool {
	switch t := expected.(type) {
	case []any:
		for _, item := range t {
			if looseEqual(actual, item) {
				return true
			}
		}
	case []string:
		for _, item := range t {
			if looseEqual(actual, item) {
				return true
			}
		}
	default:
		for _, item := range strings.Split(render(expected), ",") {
			if looseEqual(actual, strings.TrimSpace(item)) {
				return true
			}
		}
	}
	return false
}

func ordinalCompare(op string, actual, expected any, field string) (int, error) {
	af, aok := toFloat(actual)
	bf, bok := toFloat(expected)
	if aok && bok {
		switch {
		case af > bf:
			return 1, nil
		case af < bf:
			return -1, nil
		default:
			return 0, nil
		}
	}
	at, atok := toTime(actual)
	bt, btok := toTime(expected)
	if atok && btok {
		switch {
		case at.After(bt):
			return 1, nil
		case at.Before(bt):
			return -1, nil
		default:
			return 0, nil
		}
	}
	bad := actual
	if aok || atok {
		bad = expected
	}
	return 0, &InvalidOperandError{Operator: op, Field: field, Value: bad}
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}

func toTime(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
