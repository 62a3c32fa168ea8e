package cds

import (
	"math"

	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/floats/scalar"
)

// This file holds the array-level primitives: allocation, element access
// through a widened float64 representation, cast with saturation, copy with
// missing-value mapping and range clamping, fill, and threshold comparison.
//
// Arrays are typed Go slices: []byte for char, []int8 for byte, []int16 for
// short, []int32 for int, []float32 for float and []float64 for double.
// All covered integer types fit in the float64 mantissa, so widening through
// float64 is exact.

// newArrayOf allocates a zeroed array of n elements of type t.
func newArrayOf(t Type, n int) any {
	switch t {
	case TypeChar:
		return make([]byte, n)
	case TypeByte:
		return make([]int8, n)
	case TypeShort:
		return make([]int16, n)
	case TypeInt:
		return make([]int32, n)
	case TypeFloat:
		return make([]float32, n)
	case TypeDouble:
		return make([]float64, n)
	}
	return nil
}

// arrayLen returns the length of data, which must be a slice of t's element
// type (or nil, reported as length 0).
func arrayLen(t Type, data any) (int, error) {
	if data == nil {
		return 0, nil
	}
	switch t {
	case TypeChar:
		if v, ok := data.([]byte); ok {
			return len(v), nil
		}
	case TypeByte:
		if v, ok := data.([]int8); ok {
			return len(v), nil
		}
	case TypeShort:
		if v, ok := data.([]int16); ok {
			return len(v), nil
		}
	case TypeInt:
		if v, ok := data.([]int32); ok {
			return len(v), nil
		}
	case TypeFloat:
		if v, ok := data.([]float32); ok {
			return len(v), nil
		}
	case TypeDouble:
		if v, ok := data.([]float64); ok {
			return len(v), nil
		}
	default:
		return 0, errors.Wrapf(ErrUnknownType, "array type %d", int(t))
	}
	return 0, errors.Wrapf(ErrInvalidArgument, "array is %T, want %s", data, t)
}

// getElem returns element i of data widened to float64.
func getElem(t Type, data any, i int) float64 {
	switch t {
	case TypeChar:
		return float64(data.([]byte)[i])
	case TypeByte:
		return float64(data.([]int8)[i])
	case TypeShort:
		return float64(data.([]int16)[i])
	case TypeInt:
		return float64(data.([]int32)[i])
	case TypeFloat:
		return float64(data.([]float32)[i])
	case TypeDouble:
		return data.([]float64)[i]
	}
	return 0
}

// setElem stores v into element i of data, saturating integral types at
// their representable range (a C-style cast of an out-of-range float is not
// defined in Go, and a deterministic clamp is what downstream readers
// expect). Fractions are truncated toward zero.
func setElem(t Type, data any, i int, v float64) {
	switch t {
	case TypeChar:
		data.([]byte)[i] = byte(clampIntegral(v, 0, math.MaxUint8))
	case TypeByte:
		data.([]int8)[i] = int8(clampIntegral(v, math.MinInt8, math.MaxInt8))
	case TypeShort:
		data.([]int16)[i] = int16(clampIntegral(v, math.MinInt16, math.MaxInt16))
	case TypeInt:
		data.([]int32)[i] = int32(clampIntegral(v, math.MinInt32, math.MaxInt32))
	case TypeFloat:
		data.([]float32)[i] = float32(v)
	case TypeDouble:
		data.([]float64)[i] = v
	}
}

func clampIntegral(v, min, max float64) float64 {
	v = math.Trunc(v)
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// castValue converts a scalar of fromType to a scalar of toType using the
// same saturating cast as array copies.
func castValue(fromType Type, v any, toType Type) any {
	in := newArrayOf(fromType, 1)
	setScalar(fromType, in, 0, v)
	out := newArrayOf(toType, 1)
	setElem(toType, out, 0, getElem(fromType, in, 0))
	return scalarAt(toType, out, 0)
}

// setScalar stores a scalar of t's element type into element i of data.
func setScalar(t Type, data any, i int, v any) {
	switch t {
	case TypeChar:
		data.([]byte)[i] = v.(byte)
	case TypeByte:
		data.([]int8)[i] = v.(int8)
	case TypeShort:
		data.([]int16)[i] = v.(int16)
	case TypeInt:
		data.([]int32)[i] = v.(int32)
	case TypeFloat:
		data.([]float32)[i] = v.(float32)
	case TypeDouble:
		data.([]float64)[i] = v.(float64)
	}
}

// scalarAt returns element i of data as a scalar of t's element type.
func scalarAt(t Type, data any, i int) any {
	switch t {
	case TypeChar:
		return data.([]byte)[i]
	case TypeByte:
		return data.([]int8)[i]
	case TypeShort:
		return data.([]int16)[i]
	case TypeInt:
		return data.([]int32)[i]
	case TypeFloat:
		return data.([]float32)[i]
	case TypeDouble:
		return data.([]float64)[i]
	}
	return nil
}

// CopyOpts supplies the optional missing-value maps and output range for
// CopyArray. InMissing and OutMissing are position-paired typed slices: an
// input element equal to InMissing[k] is written as OutMissing[k]. OutMin
// and OutMax, when non-nil, are scalars of the output type; non-missing
// values outside the range are replaced by the violated bound.
type CopyOpts struct {
	InMissing  any
	OutMissing any
	OutMin     any
	OutMax     any
}

// CopyArray casts every element of in (type inType) to outType. When out is
// nil a fresh array is allocated; otherwise out must be an outType array at
// least as long as in. Copying an array onto itself is safe when
// inType == outType. Returns the output array.
func CopyArray(inType Type, in any, outType Type, out any, opts *CopyOpts) (any, error) {
	const op = "copy array"
	if err := checkType(op, inType); err != nil {
		return nil, err
	}
	if err := checkType(op, outType); err != nil {
		return nil, err
	}
	n, err := arrayLen(inType, in)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	if out == nil {
		out = newArrayOf(outType, n)
	} else {
		outLen, err := arrayLen(outType, out)
		if err != nil {
			return nil, errors.Wrap(err, op)
		}
		if outLen < n {
			return nil, errors.Wrapf(ErrInvalidArgument,
				"%s: output length %d < input length %d", op, outLen, n)
		}
	}

	var inMiss, outMiss []float64
	var outMissRaw any
	if opts != nil && opts.InMissing != nil {
		inMiss, err = widenArray(inType, opts.InMissing)
		if err != nil {
			return nil, errors.Wrap(err, op)
		}
		outMissRaw = opts.OutMissing
		if outMissRaw != nil {
			outMiss, err = widenArray(outType, outMissRaw)
			if err != nil {
				return nil, errors.Wrap(err, op)
			}
		}
	}
	var haveMin, haveMax bool
	var outMin, outMax float64
	if opts != nil && opts.OutMin != nil {
		tmp := newArrayOf(outType, 1)
		setScalar(outType, tmp, 0, opts.OutMin)
		outMin, haveMin = getElem(outType, tmp, 0), true
	}
	if opts != nil && opts.OutMax != nil {
		tmp := newArrayOf(outType, 1)
		setScalar(outType, tmp, 0, opts.OutMax)
		outMax, haveMax = getElem(outType, tmp, 0), true
	}

	for i := 0; i < n; i++ {
		v := getElem(inType, in, i)
		if k := missingIndex(inMiss, v); k >= 0 {
			switch {
			case len(outMiss) > k:
				setElem(outType, out, i, outMiss[k])
			case len(outMiss) > 0:
				setElem(outType, out, i, outMiss[len(outMiss)-1])
			default:
				setElem(outType, out, i, v)
			}
			continue
		}
		if haveMin && v < outMin {
			v = outMin
		}
		if haveMax && v > outMax {
			v = outMax
		}
		setElem(outType, out, i, v)
	}
	return out, nil
}

func missingIndex(missing []float64, v float64) int {
	for k, m := range missing {
		if v == m {
			return k
		}
	}
	return -1
}

// widenArray returns data's elements as float64.
func widenArray(t Type, data any) ([]float64, error) {
	n, err := arrayLen(t, data)
	if err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = getElem(t, data, i)
	}
	return out, nil
}

// InitArray writes fill (a scalar of t's element type, or nil for the type's
// default fill) into data[start:start+count].
func InitArray(t Type, data any, start, count int, fill any) error {
	const op = "init array"
	if err := checkType(op, t); err != nil {
		return err
	}
	n, err := arrayLen(t, data)
	if err != nil {
		return errors.Wrap(err, op)
	}
	if start < 0 || count < 0 || start+count > n {
		return errors.Wrapf(ErrInvalidArgument,
			"%s: range [%d,%d) outside array of length %d", op, start, start+count, n)
	}
	if fill == nil {
		fill = t.DefaultFill()
	}
	for i := start; i < start+count; i++ {
		setScalar(t, data, i, fill)
	}
	return nil
}

// CompareArrays compares two arrays element-wise over the shorter of the two
// lengths, after widening both to float64. It returns the index of the first
// pair that differs by more than threshold, or -1 when no pair does.
func CompareArrays(t1 Type, a1 any, t2 Type, a2 any, threshold float64) (int, error) {
	const op = "compare arrays"
	v1, err := widenArray(t1, a1)
	if err != nil {
		return -1, errors.Wrap(err, op)
	}
	v2, err := widenArray(t2, a2)
	if err != nil {
		return -1, errors.Wrap(err, op)
	}
	n := len(v1)
	if len(v2) < n {
		n = len(v2)
	}
	for i := 0; i < n; i++ {
		if !scalar.EqualWithinAbs(v1[i], v2[i], threshold) {
			return i, nil
		}
	}
	return -1, nil
}

// GetMissingValuesMap derives the output-type sentinel list to pair with
// inMissing in a CopyArray call, converting each input sentinel through the
// same saturating cast as ordinary data.
func GetMissingValuesMap(inType Type, inMissing any, outType Type) (any, error) {
	const op = "get missing values map"
	if err := checkType(op, inType); err != nil {
		return nil, err
	}
	if err := checkType(op, outType); err != nil {
		return nil, err
	}
	return CopyArray(inType, inMissing, outType, nil, nil)
}
