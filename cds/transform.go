package cds

import (
	"sort"

	"github.com/robert-malhotra/go-cds/params"
)

// Transform parameters are a side-channel attached to a group, independent
// of the data path: a flat (object, parameter) -> value store parsed from
// the text mini-language in the params package and consumed by downstream
// retrieval/transform logic.

type paramKey struct {
	object string
	param  string
}

// ParseTransformParams parses transform-parameter text and attaches the
// resulting parameters to the group. Includes are resolved through
// resolver (nil rejects includes). A failed parse attaches nothing.
func (g *Group) ParseTransformParams(text string, resolver params.Resolver) error {
	const op = "parse transform params"
	stmts, err := params.Parse(text, resolver)
	if err != nil {
		return g.failf(op, ErrParse, "%v", err)
	}
	if g.params == nil {
		g.params = make(map[paramKey]string, len(stmts))
	}
	for _, s := range stmts {
		g.params[paramKey{s.Object, s.Param}] = s.Value
	}
	return nil
}

// TransformParam returns the raw text value of a parameter attached to the
// group. The second result is false when the parameter is absent.
func (g *Group) TransformParam(object, param string) (string, bool) {
	v, ok := g.params[paramKey{object, param}]
	return v, ok
}

// TransformParamValue returns a parameter's value parsed into an array of
// type t through the array codec. A char type returns the raw text bytes.
func (g *Group) TransformParamValue(object, param string, t Type) (any, error) {
	const op = "get transform param"
	v, ok := g.params[paramKey{object, param}]
	if !ok {
		return nil, g.failf(op, ErrNotFound, "parameter %s:%s", object, param)
	}
	out, err := StringToArray(t, v)
	if err != nil {
		return nil, g.failf(op, ErrParse, "parameter %s:%s: %v", object, param, err)
	}
	return out, nil
}

// TransformParamKeys lists the attached parameters as "object:param" pairs
// in sorted order.
func (g *Group) TransformParamKeys() [][2]string {
	keys := make([][2]string, 0, len(g.params))
	for k := range g.params {
		keys = append(keys, [2]string{k.object, k.param})
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})
	return keys
}

// CleanupTransformParams drops every transform parameter attached to the
// group.
func (g *Group) CleanupTransformParams() {
	g.params = nil
}
