package cds

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempVar(t *testing.T) (*Group, *Dimension, *Variable) {
	t.Helper()
	g := NewGroup("root")
	d, err := g.DefineDimension("time", 0, true)
	require.NoError(t, err)
	v, err := g.DefineVariable("temp", TypeDouble, "time")
	require.NoError(t, err)
	return g, d, v
}

func TestAllocDataGrowsUnlimitedDimension(t *testing.T) {
	_, d, v := tempVar(t)

	region, err := v.AllocData(0, 3)
	require.NoError(t, err)
	buf := region.([]float64)
	require.Len(t, buf, 3)
	buf[0], buf[1], buf[2] = 20.5, 21.0, 21.5

	assert.Equal(t, 3, v.SampleCount())
	assert.Equal(t, 3, d.Length())

	got, err := v.Data(TypeDouble, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{20.5, 21.0, 21.5}, got)
}

func TestAllocDataFillsGapWithDefaultFill(t *testing.T) {
	_, d, v := tempVar(t)

	region, err := v.AllocData(0, 3)
	require.NoError(t, err)
	copy(region.([]float64), []float64{1, 2, 3})

	_, err = v.AllocData(10, 5)
	require.NoError(t, err)
	assert.Equal(t, 15, v.SampleCount())
	assert.Equal(t, 15, d.Length())

	got, err := v.Data(TypeDouble, 0, 10)
	require.NoError(t, err)
	want := []float64{1, 2, 3}
	for i := 3; i < 10; i++ {
		want = append(want, FillDouble)
	}
	assert.Equal(t, want, got)
}

func TestAllocDataFillsGapWithMissingValue(t *testing.T) {
	_, _, v := tempVar(t)
	_, err := v.DefineAttribute("missing_value", TypeDouble, float64(-9999))
	require.NoError(t, err)

	region, err := v.AllocData(0, 2)
	require.NoError(t, err)
	copy(region.([]float64), []float64{1, 2})

	_, err = v.AllocData(5, 1)
	require.NoError(t, err)

	got, err := v.Data(TypeDouble, 0, 5)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, -9999, -9999, -9999}, got)
}

func TestAllocDataFailureLeavesStateUnchanged(t *testing.T) {
	g := NewGroup("root")
	_, err := g.DefineDimension("range", 5, false)
	require.NoError(t, err)
	v, err := g.DefineVariable("profile", TypeFloat, "range")
	require.NoError(t, err)

	_, err = v.AllocData(0, 3)
	require.NoError(t, err)

	_, err = v.AllocData(4, 3) // [4,7) exceeds the fixed length 5
	assert.True(t, errors.Is(err, ErrInvalidArgument))
	assert.Equal(t, 3, v.SampleCount())

	_, err = v.AllocData(0, 0)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
	_, err = v.AllocData(-1, 2)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
	assert.Equal(t, 3, v.SampleCount())
}

func TestAllocDataSharedUnlimitedDimension(t *testing.T) {
	g := NewGroup("root")
	d, err := g.DefineDimension("time", 0, true)
	require.NoError(t, err)
	a, err := g.DefineVariable("a", TypeDouble, "time")
	require.NoError(t, err)
	b, err := g.DefineVariable("b", TypeDouble, "time")
	require.NoError(t, err)

	_, err = a.AllocData(0, 20)
	require.NoError(t, err)
	_, err = b.AllocData(0, 5)
	require.NoError(t, err)

	// The dimension tracks the maximum sample count; it never shrinks.
	assert.Equal(t, 20, d.Length())
	assert.Equal(t, 20, a.SampleCount())
	assert.Equal(t, 5, b.SampleCount())
}

func TestAllocDataScalarVariable(t *testing.T) {
	g := NewGroup("root")
	v, err := g.DefineVariable("lat", TypeDouble)
	require.NoError(t, err)

	region, err := v.AllocData(0, 1)
	require.NoError(t, err)
	region.([]float64)[0] = 36.6

	_, err = v.AllocData(1, 1)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
	_, err = v.AllocData(0, 2)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
	assert.Equal(t, 1, v.SampleCount())
}

func TestAllocDataZeroLengthStaticDimension(t *testing.T) {
	g := NewGroup("root")
	_, err := g.DefineDimension("time", 0, true)
	require.NoError(t, err)
	_, err = g.DefineDimension("bin", 0, false)
	require.NoError(t, err)
	v, err := g.DefineVariable("hist", TypeInt, "time", "bin")
	require.NoError(t, err)

	_, err = v.AllocData(0, 1)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestAllocCountDoublesAndIsRetained(t *testing.T) {
	_, _, v := tempVar(t)

	_, err := v.AllocData(0, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, v.AllocCount())

	_, err = v.AllocData(1, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, v.AllocCount())

	_, err = v.AllocData(2, 1)
	require.NoError(t, err)
	assert.Equal(t, 4, v.AllocCount())

	v.Group().ResetSampleCounts(false, true, true)
	assert.Equal(t, 0, v.SampleCount())
	assert.Equal(t, 4, v.AllocCount())
}

func TestInitData(t *testing.T) {
	_, _, v := tempVar(t)
	_, err := v.DefineAttribute("missing_value", TypeDouble, float64(-9999))
	require.NoError(t, err)

	region, err := v.InitData(0, 3, true)
	require.NoError(t, err)
	assert.Equal(t, []float64{-9999, -9999, -9999}, region.([]float64))

	region, err = v.InitData(0, 2, false)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, region.([]float64))
}

func TestSetDataConvertsAndMapsMissing(t *testing.T) {
	g := NewGroup("root")
	_, err := g.DefineDimension("time", 0, true)
	require.NoError(t, err)
	v, err := g.DefineVariable("counts", TypeShort, "time")
	require.NoError(t, err)
	_, err = v.DefineAttribute("missing_value", TypeShort, int16(-9999))
	require.NoError(t, err)

	n, err := v.SetData(TypeDouble, 0, []float64{1.2, -1.0, 3e9}, []float64{-1.0})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	got, err := v.Data(TypeShort, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, []int16{1, -9999, 32767}, got)
}

func TestSetDataWholeSamplesOnly(t *testing.T) {
	g := NewGroup("root")
	_, err := g.DefineDimension("time", 0, true)
	require.NoError(t, err)
	_, err = g.DefineDimension("range", 3, false)
	require.NoError(t, err)
	v, err := g.DefineVariable("refl", TypeFloat, "time", "range")
	require.NoError(t, err)

	_, err = v.SetData(TypeFloat, 0, []float32{1, 2}, nil)
	assert.True(t, errors.Is(err, ErrInvalidArgument))

	n, err := v.SetData(TypeFloat, 0, []float32{1, 2, 3, 4, 5, 6}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, v.SampleCount())
}

func TestDataBeyondDefinedSamplesIsEmpty(t *testing.T) {
	_, _, v := tempVar(t)
	_, err := v.AllocData(0, 2)
	require.NoError(t, err)

	got, err := v.Data(TypeDouble, 5, 3)
	require.NoError(t, err)
	assert.Empty(t, got.([]float64))

	// A range extending past the end clips to what is defined.
	got, err = v.Data(TypeDouble, 1, 10)
	require.NoError(t, err)
	assert.Len(t, got.([]float64), 1)
}

func TestDataConvertsWithMissingMap(t *testing.T) {
	_, _, v := tempVar(t)
	_, err := v.DefineAttribute("missing_value", TypeDouble, float64(-9999))
	require.NoError(t, err)

	region, err := v.AllocData(0, 3)
	require.NoError(t, err)
	copy(region.([]float64), []float64{1.7, -9999, 2.2})

	got, err := v.Data(TypeInt, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, []int32{1, -9999, 2}, got)
}

func TestResetSampleCounts(t *testing.T) {
	g := NewGroup("root")
	d, err := g.DefineDimension("time", 0, true)
	require.NoError(t, err)
	_, err = g.DefineDimension("range", 4, false)
	require.NoError(t, err)
	unlim, err := g.DefineVariable("temp", TypeDouble, "time")
	require.NoError(t, err)
	static, err := g.DefineVariable("profile", TypeFloat, "range")
	require.NoError(t, err)
	sub, err := g.DefineGroup("site")
	require.NoError(t, err)
	nested, err := sub.DefineVariable("rh", TypeFloat, "time")
	require.NoError(t, err)

	_, err = unlim.AllocData(0, 6)
	require.NoError(t, err)
	_, err = static.AllocData(0, 4)
	require.NoError(t, err)
	_, err = nested.AllocData(0, 3)
	require.NoError(t, err)

	// Unlimited only, non-recursive.
	g.ResetSampleCounts(false, true, false)
	assert.Equal(t, 0, unlim.SampleCount())
	assert.Equal(t, 4, static.SampleCount())
	assert.Equal(t, 3, nested.SampleCount())
	assert.Equal(t, 0, d.Length())

	// Everything, recursive.
	g.ResetSampleCounts(true, true, true)
	assert.Equal(t, 0, static.SampleCount())
	assert.Equal(t, 0, nested.SampleCount())
}
