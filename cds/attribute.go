package cds

import "github.com/cockroachdb/errors"

// Attribute is a named, typed, fixed-length metadata value attached to a
// group or variable. The attribute owns its value buffer; accessors return
// fresh copies.
type Attribute struct {
	object
	t      Type
	values any
}

// dataAttributes are the attribute names whose values live in the data
// domain of their parent variable and therefore follow a variable's type
// changes and unit conversions.
var dataAttributes = map[string]bool{
	"missing_value": true,
	"_FillValue":    true,
	"valid_min":     true,
	"valid_max":     true,
	"valid_range":   true,
	"valid_delta":   true,
}

// missingValueAttributes is the priority order used to resolve a variable's
// missing-value indicators. The stored type of a matching attribute is
// honored even when it differs from the variable's declared type.
var missingValueAttributes = []string{"missing_value", "_FillValue"}

// Type returns the attribute's declared type.
func (a *Attribute) Type() Type {
	return a.t
}

// Len returns the number of stored elements.
func (a *Attribute) Len() int {
	n, _ := arrayLen(a.t, a.values)
	return n
}

// IsDataAttribute reports whether the attribute's value is data-valued
// (missing_value, _FillValue, valid_min/max/range/delta).
func (a *Attribute) IsDataAttribute() bool {
	return dataAttributes[a.name]
}

// Values returns a fresh copy of the stored value in the declared type.
// The result has length zero when the stored length is zero.
func (a *Attribute) Values() any {
	out, _ := CopyArray(a.t, a.values, a.t, nil, nil)
	return out
}

// ValueAs returns the stored value converted to the requested type. A
// char attribute converts to a numeric array by parsing its text; a numeric
// attribute converts to char by rendering its tokens.
func (a *Attribute) ValueAs(t Type) (any, error) {
	const op = "get attribute value"
	if err := checkType(op, t); err != nil {
		return nil, err
	}
	switch {
	case t == a.t:
		return a.Values(), nil
	case a.t == TypeChar:
		v, err := StringToArray(t, string(a.values.([]byte)))
		if err != nil {
			return nil, a.failf(op, ErrParse, "%v", err)
		}
		return v, nil
	case t == TypeChar:
		s, err := ArrayToString(a.t, a.values)
		if err != nil {
			return nil, err
		}
		return []byte(s), nil
	default:
		return CopyArray(a.t, a.values, t, nil, nil)
	}
}

// Text returns the stored value rendered as text: raw bytes for a char
// attribute, the numeric token rendering otherwise. An attribute of length
// zero renders as the empty string.
func (a *Attribute) Text() string {
	s, _ := ArrayToString(a.t, a.values)
	return s
}

// normalizeAttValues coerces caller-supplied values into an owned typed
// slice of t. Accepted forms: a typed slice of t, a scalar of t's element
// type, or (for char) a string.
func normalizeAttValues(t Type, values any) (any, error) {
	if values == nil {
		return newArrayOf(t, 0), nil
	}
	if t == TypeChar {
		if s, ok := values.(string); ok {
			return []byte(s), nil
		}
	}
	if n, err := arrayLen(t, values); err == nil {
		out := newArrayOf(t, n)
		for i := 0; i < n; i++ {
			setScalar(t, out, i, scalarAt(t, values, i))
		}
		return out, nil
	}
	// Scalar convenience form.
	out := newArrayOf(t, 1)
	switch t {
	case TypeChar:
		if v, ok := values.(byte); ok {
			out.([]byte)[0] = v
			return out, nil
		}
	case TypeByte:
		if v, ok := values.(int8); ok {
			out.([]int8)[0] = v
			return out, nil
		}
	case TypeShort:
		if v, ok := values.(int16); ok {
			out.([]int16)[0] = v
			return out, nil
		}
	case TypeInt:
		if v, ok := values.(int32); ok {
			out.([]int32)[0] = v
			return out, nil
		}
	case TypeFloat:
		if v, ok := values.(float32); ok {
			out.([]float32)[0] = v
			return out, nil
		}
	case TypeDouble:
		if v, ok := values.(float64); ok {
			out.([]float64)[0] = v
			return out, nil
		}
	}
	return nil, errors.Wrapf(ErrInvalidArgument, "attribute value %T not usable as %s", values, t)
}

// sameAttValue reports whether the attribute already stores exactly the
// given definition.
func (a *Attribute) sameAttValue(t Type, values any) bool {
	if a.t != t {
		return false
	}
	n, _ := arrayLen(t, values)
	if a.Len() != n {
		return false
	}
	for i := 0; i < n; i++ {
		if getElem(t, a.values, i) != getElem(t, values, i) {
			return false
		}
	}
	return true
}

// The helpers below implement the attribute collection shared by groups and
// variables. owner is the parent entity's identity core.

func findAttribute(atts []*Attribute, name string) *Attribute {
	for _, a := range atts {
		if a.name == name {
			return a
		}
	}
	return nil
}

func defineAttribute(owner *object, atts *[]*Attribute, name string, t Type, values any) (*Attribute, error) {
	const op = "define attribute"
	if err := checkType(op, t); err != nil {
		return nil, err
	}
	if !validName(name) {
		return nil, owner.failf(op, ErrInvalidArgument, "bad attribute name %q", name)
	}
	norm, err := normalizeAttValues(t, values)
	if err != nil {
		return nil, owner.failf(op, ErrInvalidArgument, "attribute %q: %v", name, err)
	}
	if a := findAttribute(*atts, name); a != nil {
		if a.sameAttValue(t, norm) {
			return a, nil
		}
		return nil, owner.failf(op, ErrConflictingDefinition,
			"attribute %q already defined as %s[%d]", name, a.t, a.Len())
	}
	if err := owner.checkUnlocked(op); err != nil {
		return nil, err
	}
	a := &Attribute{
		object: object{name: name, parent: owner},
		t:      t,
		values: norm,
	}
	*atts = append(*atts, a)
	return a, nil
}

func changeAttribute(owner *object, atts *[]*Attribute, overwrite bool, name string, t Type, values any) (*Attribute, error) {
	const op = "change attribute"
	if a := findAttribute(*atts, name); a != nil {
		if !overwrite {
			return a, nil
		}
		if err := checkType(op, t); err != nil {
			return nil, err
		}
		norm, err := normalizeAttValues(t, values)
		if err != nil {
			return nil, owner.failf(op, ErrInvalidArgument, "attribute %q: %v", name, err)
		}
		if a.sameAttValue(t, norm) {
			return a, nil
		}
		if err := a.checkUnlocked(op); err != nil {
			return nil, err
		}
		// Both fields commit together; norm is already fully built.
		a.t = t
		a.values = norm
		return a, nil
	}
	return defineAttribute(owner, atts, name, t, values)
}

// setAttributeValue casts values (of type t) into the attribute's existing
// declared type. Text and numeric domains convert through the array codec.
func setAttributeValue(owner *object, atts []*Attribute, name string, t Type, values any) error {
	const op = "set attribute value"
	a := findAttribute(atts, name)
	if a == nil {
		return owner.failf(op, ErrNotFound, "attribute %q", name)
	}
	if err := a.checkUnlocked(op); err != nil {
		return err
	}
	if err := checkType(op, t); err != nil {
		return err
	}
	norm, err := normalizeAttValues(t, values)
	if err != nil {
		return owner.failf(op, ErrInvalidArgument, "attribute %q: %v", name, err)
	}
	var converted any
	switch {
	case t == a.t:
		converted = norm
	case t == TypeChar:
		converted, err = StringToArray(a.t, string(norm.([]byte)))
		if err != nil {
			return owner.failf(op, ErrParse, "attribute %q: %v", name, err)
		}
	case a.t == TypeChar:
		s, err := ArrayToString(t, norm)
		if err != nil {
			return err
		}
		converted = []byte(s)
	default:
		converted, err = CopyArray(t, norm, a.t, nil, nil)
		if err != nil {
			return err
		}
	}
	a.values = converted
	return nil
}

func setAttributeText(owner *object, atts []*Attribute, name, text string) error {
	return setAttributeValue(owner, atts, name, TypeChar, text)
}

func renameAttribute(owner *object, atts []*Attribute, oldName, newName string) error {
	const op = "rename attribute"
	a := findAttribute(atts, oldName)
	if a == nil {
		return owner.failf(op, ErrNotFound, "attribute %q", oldName)
	}
	if !validName(newName) {
		return owner.failf(op, ErrInvalidArgument, "bad attribute name %q", newName)
	}
	if findAttribute(atts, newName) != nil {
		return owner.failf(op, ErrConflictingDefinition, "attribute %q exists", newName)
	}
	if err := a.checkUnlocked(op); err != nil {
		return err
	}
	a.name = newName
	return nil
}

func deleteAttribute(owner *object, atts *[]*Attribute, name string) error {
	const op = "delete attribute"
	for i, a := range *atts {
		if a.name != name {
			continue
		}
		if err := a.checkUnlocked(op); err != nil {
			return err
		}
		a.releaseUserData()
		*atts = append((*atts)[:i], (*atts)[i+1:]...)
		return nil
	}
	return owner.failf(op, ErrNotFound, "attribute %q", name)
}
