package cds

// Variable is a typed multi-dimensional array bound to an ordered list of
// dimensions. It owns its attributes and its sample data buffer; data is
// allocated incrementally along the leading (sample) dimension.
type Variable struct {
	object
	group *Group
	t     Type
	dims  []*Dimension
	atts  []*Attribute

	sampleCount int
	allocCount  int
	data        any // typed slice of t, len == allocCount*sampleSize
	index       *DataIndex
	defaultFill any // cached default fill, nil until resolved or set
}

// Type returns the variable's declared type.
func (v *Variable) Type() Type {
	return v.t
}

// Group returns the group the variable is defined in.
func (v *Variable) Group() *Group {
	return v.group
}

// Dimensions returns the variable's dimensions in declaration order.
func (v *Variable) Dimensions() []*Dimension {
	return append([]*Dimension(nil), v.dims...)
}

// SampleCount returns the number of fully-defined samples currently stored.
func (v *Variable) SampleCount() int {
	return v.sampleCount
}

// AllocCount returns the current capacity in samples. It never drops below
// SampleCount and is retained when sample counts are reset.
func (v *Variable) AllocCount() int {
	return v.allocCount
}

// SampleSize returns the number of scalar elements per sample: 1 for scalar
// and 1-dimensional variables, otherwise the product of all dimension
// lengths except the first.
func (v *Variable) SampleSize() int {
	if len(v.dims) < 2 {
		return 1
	}
	size := 1
	for _, d := range v.dims[1:] {
		size *= d.length
	}
	return size
}

// IsUnlimited reports whether the variable's leading dimension is unlimited.
func (v *Variable) IsUnlimited() bool {
	return len(v.dims) > 0 && v.dims[0].unlimited
}

func (v *Variable) usesDimension(d *Dimension) bool {
	for _, dd := range v.dims {
		if dd == d {
			return true
		}
	}
	return false
}

// MissingValues returns the variable's missing-value indicators converted to
// the variable's declared type, in priority order: the missing_value
// attribute's values, then _FillValue. The stored type of each attribute is
// honored even when it differs from the variable's. Returns nil when no
// missing-value attribute is defined.
func (v *Variable) MissingValues() any {
	var out any
	for _, name := range missingValueAttributes {
		a := findAttribute(v.atts, name)
		if a == nil || a.Len() == 0 {
			continue
		}
		mapped, err := GetMissingValuesMap(a.t, a.values, v.t)
		if err != nil {
			continue
		}
		if out == nil {
			out = mapped
		} else {
			out = appendArray(v.t, out, mapped)
		}
	}
	return out
}

func appendArray(t Type, dst, src any) any {
	n, _ := arrayLen(t, src)
	m, _ := arrayLen(t, dst)
	out := newArrayOf(t, m+n)
	for i := 0; i < m; i++ {
		setScalar(t, out, i, scalarAt(t, dst, i))
	}
	for i := 0; i < n; i++ {
		setScalar(t, out, m+i, scalarAt(t, src, i))
	}
	return out
}

// resolveFill returns the value used to fill sample gaps: the first defined
// missing-value indicator, or the type's default fill. When no missing-value
// attribute exists the chosen default is cached on the variable so later
// lookups stay consistent.
func (v *Variable) resolveFill() any {
	if mv := v.MissingValues(); mv != nil {
		if n, _ := arrayLen(v.t, mv); n > 0 {
			return scalarAt(v.t, mv, 0)
		}
	}
	if v.defaultFill == nil {
		v.defaultFill = v.t.DefaultFill()
	}
	return v.defaultFill
}

// DefaultFill returns the variable's cached default fill value, falling back
// to the type's default. Missing-value attributes are not consulted.
func (v *Variable) DefaultFill() any {
	if v.defaultFill != nil {
		return v.defaultFill
	}
	return v.t.DefaultFill()
}

// SetDefaultFill overrides the cached default fill value. fill must be a
// scalar of the variable's element type.
func (v *Variable) SetDefaultFill(fill any) error {
	const op = "set default fill"
	norm, err := normalizeAttValues(v.t, fill)
	if err != nil {
		return v.failf(op, ErrInvalidArgument, "%v", err)
	}
	v.defaultFill = scalarAt(v.t, norm, 0)
	return nil
}

// ChangeType converts the variable's declared type, its stored data and its
// data-valued attributes to newType. Missing-value indicators are remapped
// to their nearest equivalent in the new type; all other values are clamped
// to the new type's representable range. The cached data index is
// invalidated. On failure nothing is mutated.
func (v *Variable) ChangeType(newType Type) error {
	const op = "change type"
	if err := checkType(op, newType); err != nil {
		return err
	}
	if newType == v.t {
		return nil
	}
	if err := v.checkUnlocked(op); err != nil {
		return err
	}

	inMissing := v.MissingValues()
	var outMissing any
	if inMissing != nil {
		var err error
		outMissing, err = GetMissingValuesMap(v.t, inMissing, newType)
		if err != nil {
			return v.failf(op, ErrInvalidArgument, "%v", err)
		}
	}
	opts := &CopyOpts{
		InMissing:  inMissing,
		OutMissing: outMissing,
		OutMin:     castValue(TypeDouble, newType.Min(), newType),
		OutMax:     castValue(TypeDouble, newType.Max(), newType),
	}

	// Build everything before committing anything.
	var newData any
	if v.data != nil {
		ss := v.SampleSize()
		newData = newArrayOf(newType, v.allocCount*ss)
		defined := v.sampleCount * ss
		if defined > 0 {
			if _, err := CopyArray(v.t, sliceRange(v.t, v.data, 0, defined),
				newType, sliceRange(newType, newData, 0, defined), opts); err != nil {
				return v.failf(op, ErrAllocation, "%v", err)
			}
		}
	}
	type attChange struct {
		a      *Attribute
		values any
	}
	var attChanges []attChange
	for _, a := range v.atts {
		if !a.IsDataAttribute() || a.Len() == 0 {
			continue
		}
		var converted any
		var err error
		if a.name == "missing_value" || a.name == "_FillValue" {
			converted, err = GetMissingValuesMap(a.t, a.values, newType)
		} else {
			converted, err = CopyArray(a.t, a.values, newType, nil, &CopyOpts{
				OutMin: opts.OutMin,
				OutMax: opts.OutMax,
			})
		}
		if err != nil {
			return v.failf(op, ErrAllocation, "attribute %q: %v", a.name, err)
		}
		attChanges = append(attChanges, attChange{a: a, values: converted})
	}
	var newFill any
	if v.defaultFill != nil {
		newFill = castValue(v.t, v.defaultFill, newType)
	}

	// Commit.
	v.t = newType
	v.data = newData
	v.defaultFill = newFill
	for _, c := range attChanges {
		c.a.t = newType
		c.a.values = c.values
	}
	v.invalidateIndex()
	return nil
}

// sliceRange returns data[start:end] as the same typed-slice kind.
func sliceRange(t Type, data any, start, end int) any {
	switch t {
	case TypeChar:
		return data.([]byte)[start:end]
	case TypeByte:
		return data.([]int8)[start:end]
	case TypeShort:
		return data.([]int16)[start:end]
	case TypeInt:
		return data.([]int32)[start:end]
	case TypeFloat:
		return data.([]float32)[start:end]
	case TypeDouble:
		return data.([]float64)[start:end]
	}
	return nil
}

// destroy releases the variable's owned resources.
func (v *Variable) destroy() {
	for _, a := range v.atts {
		a.releaseUserData()
	}
	v.atts = nil
	v.invalidateIndex()
	v.data = nil
	v.sampleCount = 0
	v.allocCount = 0
	v.releaseUserData()
}

// DefineAttribute returns the named variable attribute, creating it if
// absent.
func (v *Variable) DefineAttribute(name string, t Type, values any) (*Attribute, error) {
	return defineAttribute(&v.object, &v.atts, name, t, values)
}

// ChangeAttribute defines the attribute if absent; when present and
// overwrite is set, replaces its type and value transactionally.
func (v *Variable) ChangeAttribute(overwrite bool, name string, t Type, values any) (*Attribute, error) {
	return changeAttribute(&v.object, &v.atts, overwrite, name, t, values)
}

// Attribute returns the named variable attribute, or nil.
func (v *Variable) Attribute(name string) *Attribute {
	return findAttribute(v.atts, name)
}

// Attributes returns the variable's attributes in definition order.
func (v *Variable) Attributes() []*Attribute {
	return append([]*Attribute(nil), v.atts...)
}

// SetAttributeValue casts values of type t into the named attribute's
// existing declared type.
func (v *Variable) SetAttributeValue(name string, t Type, values any) error {
	return setAttributeValue(&v.object, v.atts, name, t, values)
}

// SetAttributeText sets the named attribute from text.
func (v *Variable) SetAttributeText(name, text string) error {
	return setAttributeText(&v.object, v.atts, name, text)
}

// RenameAttribute renames a variable attribute.
func (v *Variable) RenameAttribute(oldName, newName string) error {
	return renameAttribute(&v.object, v.atts, oldName, newName)
}

// DeleteAttribute deletes a variable attribute.
func (v *Variable) DeleteAttribute(name string) error {
	return deleteAttribute(&v.object, &v.atts, name)
}
