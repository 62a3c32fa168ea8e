package cds

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeUnits is a canned UnitsSystem for converter tests.
type fakeUnits struct {
	scale  float64
	offset float64
	err    error
}

func (f fakeUnits) Convert(from, to string) (float64, float64, error) {
	if f.err != nil {
		return 0, 0, f.err
	}
	return f.scale, f.offset, nil
}

func TestNewConverterIdentity(t *testing.T) {
	// Equal or empty unit strings never consult the units system.
	for _, units := range []string{"degC", ""} {
		c, err := NewConverter(
			ConverterSpec{Type: TypeDouble, Units: units},
			ConverterSpec{Type: TypeDouble, Units: units},
			fakeUnits{err: errors.New("must not be called")})
		require.NoError(t, err)
		out, err := c.ConvertArray([]float64{1, 2}, nil)
		require.NoError(t, err)
		assert.Equal(t, []float64{1, 2}, out)
	}
}

func TestNewConverterRequiresUnitsSystem(t *testing.T) {
	_, err := NewConverter(
		ConverterSpec{Type: TypeDouble, Units: "degF"},
		ConverterSpec{Type: TypeDouble, Units: "degC"},
		nil)
	assert.True(t, errors.Is(err, ErrIncompatibleUnits))

	_, err = NewConverter(
		ConverterSpec{Type: TypeDouble, Units: "m"},
		ConverterSpec{Type: TypeDouble, Units: "s"},
		fakeUnits{err: ErrIncompatibleUnits})
	assert.True(t, errors.Is(err, ErrIncompatibleUnits))
}

func TestConvertArrayMapsMissingBeforeScaling(t *testing.T) {
	// degF -> degC: v*5/9 - 160/9.
	c, err := NewConverter(
		ConverterSpec{Type: TypeDouble, Units: "degF", Missing: []float64{-9999}},
		ConverterSpec{Type: TypeDouble, Units: "degC"},
		fakeUnits{scale: 5.0 / 9.0, offset: -160.0 / 9.0})
	require.NoError(t, err)

	out, err := c.ConvertArray([]float64{32, 212, -9999}, nil)
	require.NoError(t, err)
	got := out.([]float64)
	assert.InDelta(t, 0, got[0], 1e-9)
	assert.InDelta(t, 100, got[1], 1e-9)
	// The sentinel is mapped, never scaled.
	assert.Equal(t, -9999.0, got[2])
}

func TestConvertArraySentinelCollisionAfterScaling(t *testing.T) {
	// A legitimate value whose scaled result happens to equal a raw source
	// sentinel must stay data: sentinels are classified on the source value,
	// not on the scaled one.
	c, err := NewConverter(
		ConverterSpec{Type: TypeDouble, Units: "a", Missing: []float64{-9998}},
		ConverterSpec{Type: TypeDouble, Units: "b", Missing: []float64{-7777}},
		fakeUnits{scale: 2})
	require.NoError(t, err)

	out, err := c.ConvertArray([]float64{-4999, -9998, 1}, nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{-9998, -7777, 2}, out)
}

func TestConvertArrayClampsToDestinationRange(t *testing.T) {
	c, err := NewConverter(
		ConverterSpec{Type: TypeDouble},
		ConverterSpec{Type: TypeShort},
		nil)
	require.NoError(t, err)

	out, err := c.ConvertArray([]float64{1e6, -1e6, 7.9}, nil)
	require.NoError(t, err)
	assert.Equal(t, []int16{32767, -32768, 7}, out)
}

func TestConverterForVariable(t *testing.T) {
	g := NewGroup("root")
	_, err := g.DefineDimension("time", 0, true)
	require.NoError(t, err)
	v, err := g.DefineVariable("alt", TypeDouble, "time")
	require.NoError(t, err)
	_, err = v.DefineAttribute("units", TypeChar, "m")
	require.NoError(t, err)

	// km -> m; the variable has no missing-value attributes, so source
	// sentinels map onto the variable's resolved fill value.
	c, err := ConverterForVariable(
		ConverterSpec{Type: TypeDouble, Units: "km", Missing: []float64{-9999}},
		v, fakeUnits{scale: 1000})
	require.NoError(t, err)

	out, err := c.ConvertArray([]float64{1.5, -9999}, nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{1500, FillDouble}, out)
}

func TestConvertVar(t *testing.T) {
	g := NewGroup("root")
	_, err := g.DefineDimension("time", 0, true)
	require.NoError(t, err)
	v, err := g.DefineVariable("temp", TypeFloat, "time")
	require.NoError(t, err)
	_, err = v.DefineAttribute("units", TypeChar, "degF")
	require.NoError(t, err)
	_, err = v.DefineAttribute("missing_value", TypeFloat, float32(-9999))
	require.NoError(t, err)
	_, err = v.DefineAttribute("valid_max", TypeFloat, float32(212))
	require.NoError(t, err)

	region, err := v.AllocData(0, 3)
	require.NoError(t, err)
	copy(region.([]float32), []float32{32, -9999, 212})

	c, err := NewConverter(
		ConverterSpec{Type: TypeFloat, Units: "degF", Missing: float32(-9999)},
		ConverterSpec{Type: TypeFloat, Units: "degC", Missing: float32(-9999)},
		fakeUnits{scale: 5.0 / 9.0, offset: -160.0 / 9.0})
	require.NoError(t, err)

	require.NoError(t, c.ConvertVar(v))

	assert.Equal(t, "degC", v.Attribute("units").Text())
	assert.Equal(t, []float32{-9999}, v.Attribute("missing_value").Values())

	data, err := v.Data(TypeFloat, 0, 3)
	require.NoError(t, err)
	got := data.([]float32)
	assert.InDelta(t, 0, got[0], 1e-3)
	assert.Equal(t, float32(-9999), got[1])
	assert.InDelta(t, 100, got[2], 1e-3)

	// valid_max converts with the data.
	vm := v.Attribute("valid_max").Values().([]float32)
	require.Len(t, vm, 1)
	assert.InDelta(t, 100, vm[0], 1e-3)
}

func TestConvertVarRetypes(t *testing.T) {
	g := NewGroup("root")
	_, err := g.DefineDimension("time", 0, true)
	require.NoError(t, err)
	v, err := g.DefineVariable("rh", TypeDouble, "time")
	require.NoError(t, err)
	region, err := v.AllocData(0, 2)
	require.NoError(t, err)
	copy(region.([]float64), []float64{12.7, 98.2})

	c, err := NewConverter(
		ConverterSpec{Type: TypeDouble},
		ConverterSpec{Type: TypeShort},
		nil)
	require.NoError(t, err)
	require.NoError(t, c.ConvertVar(v))

	assert.Equal(t, TypeShort, v.Type())
	data, err := v.Data(TypeShort, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, []int16{12, 98}, data)
}

func TestConvertVarTypeMismatch(t *testing.T) {
	g := NewGroup("root")
	v, err := g.DefineVariable("temp", TypeFloat)
	require.NoError(t, err)

	c, err := NewConverter(
		ConverterSpec{Type: TypeDouble},
		ConverterSpec{Type: TypeDouble},
		nil)
	require.NoError(t, err)
	err = c.ConvertVar(v)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestConverterClose(t *testing.T) {
	c, err := NewConverter(
		ConverterSpec{Type: TypeDouble},
		ConverterSpec{Type: TypeDouble},
		nil)
	require.NoError(t, err)
	c.Close()

	_, err = c.ConvertArray([]float64{1}, nil)
	assert.True(t, errors.Is(err, ErrInvalidArgument))

	g := NewGroup("root")
	v, _ := g.DefineVariable("x", TypeDouble)
	err = c.ConvertVar(v)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}
