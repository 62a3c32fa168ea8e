package cds

import (
	"math"

	"github.com/cockroachdb/errors"
)

// Type identifies one of the scalar element types a dimension-less value,
// attribute or variable may hold. The zero value TypeNone is a "not a type"
// sentinel and is rejected by every operation that receives it.
type Type int

const (
	TypeNone Type = iota
	TypeChar
	TypeByte
	TypeShort
	TypeInt
	TypeFloat
	TypeDouble
)

// Default fill values, chosen to match the conventions used by common array
// file formats so round-tripping through third-party readers stays
// numerically consistent.
const (
	FillChar   byte    = 0
	FillByte   int8    = -127
	FillShort  int16   = -32767
	FillInt    int32   = -2147483647
	FillFloat  float32 = 9.9692099683868690e+36
	FillDouble float64 = 9.9692099683868690e+36
)

// typeDesc is the single description table consulted by every operation that
// dispatches on a Type. Adding a type is a one-place change.
type typeDesc struct {
	name string
	size int
	min  float64
	max  float64
}

var typeTable = map[Type]typeDesc{
	TypeChar:   {"char", 1, 0, math.MaxUint8},
	TypeByte:   {"byte", 1, math.MinInt8, math.MaxInt8},
	TypeShort:  {"short", 2, math.MinInt16, math.MaxInt16},
	TypeInt:    {"int", 4, math.MinInt32, math.MaxInt32},
	TypeFloat:  {"float", 4, -math.MaxFloat32, math.MaxFloat32},
	TypeDouble: {"double", 8, -math.MaxFloat64, math.MaxFloat64},
}

var typeByName = map[string]Type{
	"char":   TypeChar,
	"byte":   TypeByte,
	"short":  TypeShort,
	"int":    TypeInt,
	"float":  TypeFloat,
	"double": TypeDouble,
}

// Valid reports whether t is a member of the closed type set.
func (t Type) Valid() bool {
	_, ok := typeTable[t]
	return ok
}

// String returns the canonical type name, or "none" for the sentinel.
func (t Type) String() string {
	if d, ok := typeTable[t]; ok {
		return d.name
	}
	return "none"
}

// Size returns the element size in bytes, or 0 for an invalid type.
func (t Type) Size() int {
	return typeTable[t].size
}

// Min returns the smallest representable value. Not meaningful for TypeChar.
func (t Type) Min() float64 {
	return typeTable[t].min
}

// Max returns the largest representable value. Not meaningful for TypeChar.
func (t Type) Max() float64 {
	return typeTable[t].max
}

// DefaultFill returns the type's default fill value as a scalar of the
// type's Go element type.
func (t Type) DefaultFill() any {
	switch t {
	case TypeChar:
		return FillChar
	case TypeByte:
		return FillByte
	case TypeShort:
		return FillShort
	case TypeInt:
		return FillInt
	case TypeFloat:
		return FillFloat
	case TypeDouble:
		return FillDouble
	}
	return nil
}

// TypeByName looks up a type by its canonical name. The lookup is
// case-sensitive and fails with ErrUnknownType if absent.
func TypeByName(name string) (Type, error) {
	if t, ok := typeByName[name]; ok {
		return t, nil
	}
	return TypeNone, errors.Wrapf(ErrUnknownType, "type name %q", name)
}

// checkType rejects type arguments outside the closed set.
func checkType(op string, t Type) error {
	if !t.Valid() {
		return errors.Wrapf(ErrUnknownType, "%s: type value %d", op, int(t))
	}
	return nil
}
