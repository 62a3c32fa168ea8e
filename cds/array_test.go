package cds

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyArrayCastTruncatesAndSaturates(t *testing.T) {
	out, err := CopyArray(TypeDouble, []float64{1.9, -2.9, 1e10, -1e10}, TypeShort, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []int16{1, -2, 32767, -32768}, out)

	out, err = CopyArray(TypeInt, []int32{-1, 300}, TypeChar, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 255}, out)
}

func TestCopyArrayMissingMapAndClamp(t *testing.T) {
	opts := &CopyOpts{
		InMissing:  []int32{-9999},
		OutMissing: []int16{-1},
		OutMin:     int16(0),
		OutMax:     int16(100),
	}
	out, err := CopyArray(TypeInt, []int32{-9999, -5, 50, 1000000}, TypeShort, nil, opts)
	require.NoError(t, err)
	assert.Equal(t, []int16{-1, 0, 50, 100}, out)
}

func TestCopyArrayMissingPairsByPosition(t *testing.T) {
	opts := &CopyOpts{
		InMissing:  []float64{-9999, -888, -777},
		OutMissing: []int32{-1, -2},
	}
	// Unpaired input sentinels fall back to the last output sentinel.
	out, err := CopyArray(TypeDouble, []float64{-9999, -888, -777, 3.5}, TypeInt, nil, opts)
	require.NoError(t, err)
	assert.Equal(t, []int32{-1, -2, -2, 3}, out)

	// No output sentinels: sentinel values pass through the plain cast.
	out, err = CopyArray(TypeDouble, []float64{-9999, 3.5}, TypeInt, nil,
		&CopyOpts{InMissing: []float64{-9999}})
	require.NoError(t, err)
	assert.Equal(t, []int32{-9999, 3}, out)
}

func TestCopyArraySentinelsSkipClamp(t *testing.T) {
	opts := &CopyOpts{
		InMissing:  []float64{-9999},
		OutMissing: []float64{-9999},
		OutMin:     float64(0),
		OutMax:     float64(100),
	}
	out, err := CopyArray(TypeDouble, []float64{-9999, -50}, TypeDouble, nil, opts)
	require.NoError(t, err)
	assert.Equal(t, []float64{-9999, 0}, out)
}

func TestCopyArrayIntoProvidedOutput(t *testing.T) {
	out := make([]int32, 5)
	got, err := CopyArray(TypeShort, []int16{1, 2, 3}, TypeInt, out, nil)
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 2, 3, 0, 0}, out)
	assert.Equal(t, any(out), got)

	_, err = CopyArray(TypeShort, []int16{1, 2, 3}, TypeInt, make([]int32, 2), nil)
	assert.True(t, errors.Is(err, ErrInvalidArgument))

	_, err = CopyArray(TypeShort, []int16{1}, TypeInt, make([]int16, 1), nil)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestInitArray(t *testing.T) {
	data := make([]float64, 5)
	require.NoError(t, InitArray(TypeDouble, data, 1, 3, float64(-9999)))
	assert.Equal(t, []float64{0, -9999, -9999, -9999, 0}, data)

	// nil fill uses the type's default fill.
	short := make([]int16, 2)
	require.NoError(t, InitArray(TypeShort, short, 0, 2, nil))
	assert.Equal(t, []int16{FillShort, FillShort}, short)

	err := InitArray(TypeDouble, data, 3, 4, nil)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
	err = InitArray(TypeDouble, data, -1, 2, nil)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestCompareArrays(t *testing.T) {
	i, err := CompareArrays(TypeDouble, []float64{1, 2, 3}, TypeDouble, []float64{1, 2.05, 3}, 0.1)
	require.NoError(t, err)
	assert.Equal(t, -1, i)

	i, err = CompareArrays(TypeDouble, []float64{1, 2, 3}, TypeDouble, []float64{1, 2.05, 3}, 0.01)
	require.NoError(t, err)
	assert.Equal(t, 1, i)

	// Mixed types compare through the widened representation, over the
	// shorter length.
	i, err = CompareArrays(TypeShort, []int16{1, 2}, TypeDouble, []float64{1, 2, 99}, 0)
	require.NoError(t, err)
	assert.Equal(t, -1, i)

	_, err = CompareArrays(TypeShort, []int32{1}, TypeDouble, []float64{1}, 0)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestGetMissingValuesMap(t *testing.T) {
	out, err := GetMissingValuesMap(TypeDouble, []float64{-9999.5}, TypeShort)
	require.NoError(t, err)
	assert.Equal(t, []int16{-9999}, out)

	out, err = GetMissingValuesMap(TypeFloat, []float32{-999}, TypeDouble)
	require.NoError(t, err)
	assert.Equal(t, []float64{-999}, out)
}

func TestArrayLen(t *testing.T) {
	n, err := arrayLen(TypeFloat, []float32{1, 2})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = arrayLen(TypeFloat, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = arrayLen(TypeFloat, []float64{1})
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}
