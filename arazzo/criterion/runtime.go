package criterion

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/SteakFisher/arazzo-writer/expression"
	"github.com/SteakFisher/arazzo-writer/json"
	"github.com/SteakFisher/arazzo-writer/jsonpointer"
	"gopkg.in/yaml.v3"
)

// Runtime is a captured request/response exchange that criteria can be evaluated against.
type Runtime struct {
	URL        string
	Method     string
	StatusCode int

	RequestHeaders  map[string]string
	RequestQuery    map[string]string
	RequestPath     map[string]string
	RequestBody     *yaml.Node
	ResponseHeaders map[string]string
	ResponseBody    *yaml.Node

	Inputs map[string]any
	// Steps holds the outputs of previously executed steps keyed by stepId.
	Steps map[string]map[string]any
}

// Resolve returns the value e refers to.
func (r *Runtime) Resolve(e expression.Expression) (any, error) {
	typ, reference, parts, jp := e.GetParts()

	switch typ {
	case expression.ExpressionTypeURL:
		return r.URL, nil
	case expression.ExpressionTypeMethod:
		return r.Method, nil
	case expression.ExpressionTypeStatusCode:
		return int64(r.StatusCode), nil
	case expression.ExpressionTypeRequest, expression.ExpressionTypeResponse:
		if reference == expression.ReferenceTypeBody {
			node, err := r.ResolveNode(e)
			if err != nil {
				return nil, err
			}
			return json.ToAny(node)
		}
		if len(parts) != 1 {
			return nil, fmt.Errorf("cannot resolve %s", e)
		}
		return r.source(typ, reference, parts[0])
	case expression.ExpressionTypeInputs:
		v, ok := r.Inputs[reference]
		if !ok {
			return nil, fmt.Errorf("input %q is not set", reference)
		}
		return descend(v, parts, jp)
	case expression.ExpressionTypeSteps:
		outputs, ok := r.Steps[reference]
		if !ok {
			return nil, fmt.Errorf("step %q has no recorded outputs", reference)
		}
		if len(parts) < 2 {
			return nil, fmt.Errorf("cannot resolve %s", e)
		}
		v, ok := outputs[parts[1]]
		if !ok {
			return nil, fmt.Errorf("step %q has no output %q", reference, parts[1])
		}
		return descend(v, parts[2:], jp)
	default:
		return nil, fmt.Errorf("expressions of type $%s cannot be evaluated against a captured response", typ)
	}
}

// ResolveNode returns the YAML node e refers to, encoding non-body values into a node.
func (r *Runtime) ResolveNode(e expression.Expression) (*yaml.Node, error) {
	typ, reference, _, jp := e.GetParts()

	if (typ == expression.ExpressionTypeRequest || typ == expression.ExpressionTypeResponse) && reference == expression.ReferenceTypeBody {
		body := r.ResponseBody
		if typ == expression.ExpressionTypeRequest {
			body = r.RequestBody
		}
		if body == nil {
			return nil, fmt.Errorf("no %s body captured", typ)
		}
		if jp == "" {
			return body, nil
		}
		return jsonpointer.GetNode(body, jp)
	}

	v, err := r.Resolve(e)
	if err != nil {
		return nil, err
	}
	node := &yaml.Node{}
	if err := node.Encode(v); err != nil {
		return nil, fmt.Errorf("encoding value of %s: %w", e, err)
	}
	return node, nil
}

func (r *Runtime) source(typ expression.ExpressionType, reference, name string) (any, error) {
	var values map[string]string
	switch {
	case typ == expression.ExpressionTypeRequest && reference == expression.ReferenceTypeHeader:
		values = r.RequestHeaders
	case typ == expression.ExpressionTypeResponse && reference == expression.ReferenceTypeHeader:
		values = r.ResponseHeaders
	case typ == expression.ExpressionTypeRequest && reference == expression.ReferenceTypeQuery:
		values = r.RequestQuery
	case typ == expression.ExpressionTypeRequest && reference == expression.ReferenceTypePath:
		values = r.RequestPath
	default:
		return nil, fmt.Errorf("$%s.%s is not captured", typ, reference)
	}

	if reference == expression.ReferenceTypeHeader {
		for k, v := range values {
			if strings.EqualFold(k, name) {
				return v, nil
			}
		}
	} else if v, ok := values[name]; ok {
		return v, nil
	}

	return nil, fmt.Errorf("$%s.%s.%s is not set", typ, reference, name)
}

func descend(v any, parts []string, jp jsonpointer.JSONPointer) (any, error) {
	for _, part := range parts {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("cannot select %q from %T", part, v)
		}
		v = m[part]
	}

	if jp == "" {
		return v, nil
	}

	tokens, err := jp.Parts()
	if err != nil {
		return nil, err
	}
	for _, token := range tokens {
		switch t := v.(type) {
		case map[string]any:
			next, ok := t[token]
			if !ok {
				return nil, jsonpointer.ErrNotFound.Wrapf("key %q", token)
			}
			v = next
		case []any:
			i, err := strconv.Atoi(token)
			if err != nil || i < 0 || i >= len(t) {
				return nil, jsonpointer.ErrNotFound.Wrapf("index %q", token)
			}
			v = t[i]
		default:
			return nil, jsonpointer.ErrNotFound.Wrapf("cannot navigate into %T", v)
		}
	}
	return v, nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
