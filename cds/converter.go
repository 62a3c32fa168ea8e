package cds

import "github.com/cockroachdb/errors"

// UnitsSystem is the external units-database collaborator: given two unit
// strings it either yields the linear conversion between them or fails with
// (an error wrapping) ErrIncompatibleUnits. The unitdb package provides the
// default implementation.
type UnitsSystem interface {
	Convert(from, to string) (scale, offset float64, err error)
}

// ConverterSpec describes one side of a conversion: an element type, a unit
// string (empty means unitless/unknown, which converts only to itself), and
// an optional list of missing-value sentinels as a typed slice or scalar.
type ConverterSpec struct {
	Type    Type
	Units   string
	Missing any
}

// Converter transforms arrays from a source representation to a destination
// representation: missing-value sentinels are remapped first (they are
// never arithmetically transformed), then the units scale/offset applies,
// then the result is clamped to the destination type's range and cast.
//
// A converter caches its scale/offset and missing maps; Close releases them
// and a closed converter fails every call.
type Converter struct {
	src, dst   ConverterSpec
	scale      float64
	offset     float64
	inMissing  any
	outMissing any
	closed     bool
}

// NewConverter builds a converter between two explicit representations,
// delegating unit compatibility to units. Identical or empty unit strings
// convert with identity scale; otherwise a nil units system fails with
// ErrIncompatibleUnits.
func NewConverter(src, dst ConverterSpec, units UnitsSystem) (*Converter, error) {
	const op = "new converter"
	if err := checkType(op, src.Type); err != nil {
		return nil, err
	}
	if err := checkType(op, dst.Type); err != nil {
		return nil, err
	}
	c := &Converter{src: src, dst: dst, scale: 1, offset: 0}
	if src.Units != dst.Units && src.Units != "" && dst.Units != "" {
		if units == nil {
			return nil, errors.Wrapf(ErrIncompatibleUnits,
				"%s: no units system to convert %q to %q", op, src.Units, dst.Units)
		}
		scale, offset, err := units.Convert(src.Units, dst.Units)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: %q to %q", op, src.Units, dst.Units)
		}
		c.scale, c.offset = scale, offset
	}
	if src.Missing != nil {
		inMissing, err := normalizeAttValues(src.Type, src.Missing)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidArgument, "%s: source missing values: %v", op, err)
		}
		c.inMissing = inMissing
		if dst.Missing != nil {
			outMissing, err := normalizeAttValues(dst.Type, dst.Missing)
			if err != nil {
				return nil, errors.Wrapf(ErrInvalidArgument, "%s: destination missing values: %v", op, err)
			}
			c.outMissing = outMissing
		} else {
			outMissing, err := GetMissingValuesMap(src.Type, inMissing, dst.Type)
			if err != nil {
				return nil, err
			}
			c.outMissing = outMissing
		}
	}
	return c, nil
}

// ConverterForVariable builds a converter from src to a variable's declared
// representation: its type, its units attribute text, and its missing-value
// indicators (falling back to its resolved fill value when the source
// declares sentinels but the variable has none).
func ConverterForVariable(src ConverterSpec, v *Variable, units UnitsSystem) (*Converter, error) {
	dst := ConverterSpec{Type: v.t}
	if a := v.Attribute("units"); a != nil {
		dst.Units = a.Text()
	}
	if src.Missing != nil {
		if mv := v.MissingValues(); mv != nil {
			dst.Missing = mv
		} else {
			dst.Missing = v.resolveFill()
		}
	}
	return NewConverter(src, dst, units)
}

// ConvertArray converts in (an array of the source type) to a fresh array
// of the destination type. When out is non-nil the result is written there
// instead; in-place conversion is safe when the types match.
func (c *Converter) ConvertArray(in, out any) (any, error) {
	const op = "convert array"
	if c.closed {
		return nil, errors.Wrapf(ErrInvalidArgument, "%s: converter is closed", op)
	}
	n, err := arrayLen(c.src.Type, in)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	if out == nil {
		out = newArrayOf(c.dst.Type, n)
	} else {
		outLen, err := arrayLen(c.dst.Type, out)
		if err != nil {
			return nil, errors.Wrap(err, op)
		}
		if outLen < n {
			return nil, errors.Wrapf(ErrInvalidArgument,
				"%s: output length %d < input length %d", op, outLen, n)
		}
	}
	// Each element is classified against the raw source value before the
	// scale/offset applies: a sentinel maps to its paired destination
	// sentinel and is never arithmetically transformed, so a legitimate
	// value whose scaled result collides with a sentinel stays data.
	inMiss, _ := widenArray(c.src.Type, c.inMissing)
	outMiss, _ := widenArray(c.dst.Type, c.outMissing)
	outMin, outMax := c.dst.Type.Min(), c.dst.Type.Max()
	for i := 0; i < n; i++ {
		v := getElem(c.src.Type, in, i)
		if k := missingIndex(inMiss, v); k >= 0 {
			switch {
			case len(outMiss) > k:
				setElem(c.dst.Type, out, i, outMiss[k])
			case len(outMiss) > 0:
				setElem(c.dst.Type, out, i, outMiss[len(outMiss)-1])
			default:
				setElem(c.dst.Type, out, i, v)
			}
			continue
		}
		v = v*c.scale + c.offset
		if v < outMin {
			v = outMin
		}
		if v > outMax {
			v = outMax
		}
		setElem(c.dst.Type, out, i, v)
	}
	return out, nil
}

// ConvertVar converts a variable's stored data in place from the source
// representation to the destination representation, retyping the variable
// and rewriting its units attribute and data-valued attributes. The
// variable's current type must match the converter's source type. On
// failure nothing is mutated.
func (c *Converter) ConvertVar(v *Variable) error {
	const op = "convert variable"
	if c.closed {
		return errors.Wrapf(ErrInvalidArgument, "%s: converter is closed", op)
	}
	if v.t != c.src.Type {
		return v.failf(op, ErrInvalidArgument,
			"variable type %s does not match converter source type %s", v.t, c.src.Type)
	}
	if err := v.checkUnlocked(op); err != nil {
		return err
	}

	ss := v.SampleSize()
	defined := v.sampleCount * ss
	var newData any
	if v.data != nil {
		newData = newArrayOf(c.dst.Type, v.allocCount*ss)
		if defined > 0 {
			if _, err := c.ConvertArray(
				sliceRange(v.t, v.data, 0, defined),
				sliceRange(c.dst.Type, newData, 0, defined)); err != nil {
				return err
			}
		}
	}
	type attChange struct {
		a      *Attribute
		t      Type
		values any
	}
	var changes []attChange
	for _, a := range v.atts {
		if !a.IsDataAttribute() || a.Len() == 0 {
			continue
		}
		var converted any
		var err error
		if a.name == "missing_value" || a.name == "_FillValue" {
			// Sentinels map, they do not scale.
			if c.outMissing != nil {
				converted, err = CopyArray(c.dst.Type, c.outMissing, c.dst.Type, nil, nil)
			} else {
				converted, err = GetMissingValuesMap(a.t, a.values, c.dst.Type)
			}
		} else {
			var asSrc any
			asSrc, err = CopyArray(a.t, a.values, c.src.Type, nil, nil)
			if err == nil {
				converted, err = c.ConvertArray(asSrc, nil)
			}
		}
		if err != nil {
			return v.failf(op, ErrInvalidArgument, "attribute %q: %v", a.name, err)
		}
		changes = append(changes, attChange{a: a, t: c.dst.Type, values: converted})
	}

	v.t = c.dst.Type
	v.data = newData
	v.defaultFill = nil
	for _, ch := range changes {
		ch.a.t = ch.t
		ch.a.values = ch.values
	}
	if c.dst.Units != "" {
		if a := v.Attribute("units"); a != nil {
			a.t = TypeChar
			a.values = []byte(c.dst.Units)
		}
	}
	v.invalidateIndex()
	return nil
}

// Close releases the converter's cached scale/offset and missing-value
// state. A closed converter fails every subsequent call.
func (c *Converter) Close() {
	c.inMissing = nil
	c.outMissing = nil
	c.closed = true
}
