// Package configval wraps the free-form JSON configuration object the core
// resolves macro conditions and inline-define paths against. There is no
// fixed schema (§6): the only contract is dotted-key lookup plus a
// truthiness rule.
package configval

import "encoding/json"

// Value is one node of the parsed config tree — an object, array, string,
// number, bool or null, mirroring encoding/json's decoded interface{}
// shapes directly rather than wrapping them in a bespoke tagged union.
type Value struct {
	raw interface{}
}

// Parse decodes config JSON into a Value tree. Invalid JSON is the one
// fatal condition this package raises; the caller (pkg/api) wraps it as a
// logger.Error with logger.KindParse.
func Parse(jsonText string) (*Value, error) {
	var raw interface{}
	if err := json.Unmarshal([]byte(jsonText), &raw); err != nil {
		return nil, err
	}
	return &Value{raw: raw}, nil
}

// Lookup resolves a dotted path by successive key lookup. A missing
// intermediate key yields (nil, false) — absence is "false", never
// "unknown" (§3).
func (v *Value) Lookup(segments []string) (*Value, bool) {
	cur := v
	for _, seg := range segments {
		if cur == nil {
			return nil, false
		}
		m, ok := cur.raw.(map[string]interface{})
		if !ok {
			return nil, false
		}
		next, ok := m[seg]
		if !ok {
			return nil, false
		}
		cur = &Value{raw: next}
	}
	if cur == nil {
		return nil, false
	}
	return cur, true
}

// Truthy applies the rule from §3: false, 0, "", null and [] are disabled;
// everything else (including {}) is enabled.
func (v *Value) Truthy() bool {
	if v == nil || v.raw == nil {
		return false
	}
	switch x := v.raw.(type) {
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		return x != ""
	case []interface{}:
		return len(x) != 0
	default:
		return true
	}
}

// AsString returns the value iff it is a JSON string — used for strict
// string-equality comparisons, where a non-string value is always false
// rather than coerced.
func (v *Value) AsString() (string, bool) {
	if v == nil {
		return "", false
	}
	s, ok := v.raw.(string)
	return s, ok
}

// Raw exposes the decoded interface{} for callers (the JSON serialization
// path for InlineDefine substitution, and the fast-path leaf flattener)
// that need the underlying shape rather than the lookup/truthy API.
func (v *Value) Raw() interface{} {
	if v == nil {
		return nil
	}
	return v.raw
}

// Flatten walks the tree and returns every leaf value (non-object,
// non-array, or empty object/array counted as its own leaf) depth-first.
// The fast-path gate (component H) uses this to decide whether every
// configured leaf is truthy.
func Flatten(v *Value) []*Value {
	if v == nil || v.raw == nil {
		return []*Value{v}
	}
	switch x := v.raw.(type) {
	case map[string]interface{}:
		if len(x) == 0 {
			return []*Value{v}
		}
		var out []*Value
		for _, val := range x {
			out = append(out, Flatten(&Value{raw: val})...)
		}
		return out
	case []interface{}:
		if len(x) == 0 {
			return []*Value{v}
		}
		var out []*Value
		for _, val := range x {
			out = append(out, Flatten(&Value{raw: val})...)
		}
		return out
	default:
		return []*Value{v}
	}
}
