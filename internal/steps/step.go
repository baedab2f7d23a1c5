// internal/steps/step.go
package steps

import (
	"fmt"

	"pardotcog/internal/pardot"
	"pardotcog/pkg/cog"
)

// BusinessUnitResolver maps a human-supplied business-unit name to a tenant
// id. *pardot.Session satisfies it.
type BusinessUnitResolver interface {
	ResolveBusinessUnit(name string) (string, bool)
	DefaultBusinessUnit() string
}

// Registry holds the step set wired against one operation client.
type Registry struct {
	steps []cog.Step
	byID  map[string]cog.Step
}

// NewRegistry wires every step against the given operation set and resolver.
func NewRegistry(ops pardot.Operations, units BusinessUnitResolver) *Registry {
	r := &Registry{byID: map[string]cog.Step{}}
	for _, s := range []cog.Step{
		&ProspectCreate{ops: ops, units: units},
		&ProspectDelete{ops: ops, units: units},
		&ProspectDiscover{ops: ops, units: units},
		&ProspectFieldEquals{ops: ops, units: units},
		&ListMembershipCheck{prospects: ops, memberships: ops, units: units},
		&ListMembershipCount{lists: ops, memberships: ops, units: units},
		&SendSampleEmail{ops: ops, units: units},
		&TrackerDomainFieldEquals{ops: ops, units: units},
	} {
		r.register(s)
	}
	return r
}

func (r *Registry) register(s cog.Step) {
	r.steps = append(r.steps, s)
	r.byID[s.Definition().ID] = s
}

// Get returns the step with the given id.
func (r *Registry) Get(id string) (cog.Step, bool) {
	s, ok := r.byID[id]
	return s, ok
}

// Definitions lists every registered step's metadata, in registration order.
func (r *Registry) Definitions() []cog.Definition {
	out := make([]cog.Definition, 0, len(r.steps))
	for _, s := range r.steps {
		out = append(out, s.Definition())
	}
	return out
}

// Response helpers. Messages are printf templates so the orchestrator shows
// them verbatim.

func pass(msg string, args []any, records ...cog.Record) cog.Response {
	return cog.Response{Outcome: cog.OutcomePassed, Message: fmt.Sprintf(msg, args...), Records: compact(records)}
}

func fail(msg string, args []any, records ...cog.Record) cog.Response {
	return cog.Response{Outcome: cog.OutcomeFailed, Message: fmt.Sprintf(msg, args...), Records: compact(records)}
}

func errorOut(msg string, args []any, records ...cog.Record) cog.Response {
	return cog.Response{Outcome: cog.OutcomeError, Message: fmt.Sprintf(msg, args...), Records: compact(records)}
}

func compact(records []cog.Record) []cog.Record {
	out := records[:0]
	for _, r := range records {
		if r.ID != "" && r.KeyValue != nil {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// keyValue builds one structured output record.
func keyValue(id, name string, kv map[string]any) cog.Record {
	return cog.Record{ID: id, Name: name, KeyValue: kv}
}

// orderedRecords emits the canonical record plus its ordinal twin so repeated
// steps of one kind stay addressable in later scenario references.
func orderedRecords(id, name string, kv map[string]any, stepOrder int) []cog.Record {
	if stepOrder < 1 {
		stepOrder = 1
	}
	return []cog.Record{
		keyValue(id, name, kv),
		keyValue(fmt.Sprintf("%s.%d", id, stepOrder), fmt.Sprintf("%s from Step %d", name, stepOrder), kv),
	}
}

// resolveUnit resolves the optional businessUnitName field of a request.
func resolveUnit(units BusinessUnitResolver, req cog.Request) (string, string, bool) {
	name := req.String("businessUnitName")
	id, ok := units.ResolveBusinessUnit(name)
	return id, name, ok
}

// invalidTenant reports whether err is the platform's business-unit header
// rejection, which steps translate into a failure naming the supplied unit.
func invalidTenant(err error) bool {
	return pardot.IsKind(err, pardot.KindInvalidTenant)
}

// stringify renders a declared field value that may arrive as either a
// string or a number (ids commonly do).
func stringify(req cog.Request, key string) string {
	v, ok := req.Value(key)
	if !ok || v == nil {
		return ""
	}
	return stringifyValue(v)
}

func stringifyValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%v", t)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}

// truthy interprets the platform's loose boolean encodings (true, 1, "1").
func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t == "1" || t == "true"
	}
	return false
}

var businessUnitFields = []cog.FieldDef{{
	Key:         "businessUnitName",
	Type:        cog.FieldString,
	Description: "Name of Business Unit to use",
	Optional:    true,
}}
