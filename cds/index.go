package cds

import "github.com/cockroachdb/errors"

// DataIndex is a computed-offset view over a variable's flat sample buffer,
// making an N-dimensional variable addressable as index[i0][i1]...[iN-2]
// down to the innermost contiguous run of elements.
//
// An index is a snapshot of the buffer it was built over. It is invalidated
// whenever the buffer is reallocated or the variable's type or dimension
// lengths change; a stale index returns ErrInvalidArgument from every
// accessor rather than addressing freed or moved storage.
type DataIndex struct {
	v     *Variable
	t     Type
	shape []int // leading entry is the sample count at build time
	data  any
	valid bool
}

// CreateDataIndex builds (or returns the cached) index over the variable's
// currently defined samples.
func (v *Variable) CreateDataIndex() (*DataIndex, error) {
	const op = "create data index"
	if v.index != nil && v.index.valid {
		return v.index, nil
	}
	if v.sampleCount == 0 || v.data == nil {
		return nil, v.failf(op, ErrInvalidArgument, "no data allocated")
	}
	v.index = v.buildIndex()
	return v.index, nil
}

// AllocDataIndex is AllocData followed by building the index over the grown
// buffer.
func (v *Variable) AllocDataIndex(sampleStart, sampleCount int) (*DataIndex, error) {
	if _, err := v.allocData("alloc data index", sampleStart, sampleCount); err != nil {
		return nil, err
	}
	v.index = v.buildIndex()
	return v.index, nil
}

// InitDataIndex is InitData followed by building the index over the grown
// buffer.
func (v *Variable) InitDataIndex(sampleStart, sampleCount int, useMissing bool) (*DataIndex, error) {
	if _, err := v.InitData(sampleStart, sampleCount, useMissing); err != nil {
		return nil, err
	}
	v.index = v.buildIndex()
	return v.index, nil
}

func (v *Variable) buildIndex() *DataIndex {
	shape := make([]int, 0, len(v.dims))
	shape = append(shape, v.sampleCount)
	for _, d := range v.dims[min(1, len(v.dims)):] {
		shape = append(shape, d.length)
	}
	return &DataIndex{v: v, t: v.t, shape: shape, data: v.data, valid: true}
}

// invalidateIndex drops the cached index so it can never be handed back
// stale. The old index's accessors start failing immediately.
func (v *Variable) invalidateIndex() {
	if v.index != nil {
		v.index.valid = false
		v.index = nil
	}
}

// Valid reports whether the index still views the variable's live buffer.
func (x *DataIndex) Valid() bool {
	return x.valid
}

// Shape returns the index dimensions: the sample count at build time
// followed by the lengths of the non-leading dimensions.
func (x *DataIndex) Shape() []int {
	return append([]int(nil), x.shape...)
}

// Row returns the innermost contiguous run selected by the given indices:
// for an N-dimensional variable, N-1 indices yield a typed slice of the
// last dimension's length. A 1-dimensional (or scalar) variable takes no
// indices and yields the whole defined region.
func (x *DataIndex) Row(indices ...int) (any, error) {
	const op = "index row"
	if !x.valid {
		return nil, errors.Wrapf(ErrInvalidArgument,
			"%s: index for %s invalidated by reallocation or redefinition", op, x.v.Path())
	}
	if len(indices) != len(x.shape)-1 {
		return nil, errors.Wrapf(ErrInvalidArgument,
			"%s: got %d indices, want %d", op, len(indices), len(x.shape)-1)
	}
	offset := 0
	for i, idx := range indices {
		if idx < 0 || idx >= x.shape[i] {
			return nil, errors.Wrapf(ErrInvalidArgument,
				"%s: index %d out of range [0,%d)", op, idx, x.shape[i])
		}
		offset = offset*x.shape[i] + idx
	}
	last := x.shape[len(x.shape)-1]
	offset *= last
	return sliceRange(x.t, x.data, offset, offset+last), nil
}

// Elem returns the single element selected by a full set of N indices,
// widened to float64.
func (x *DataIndex) Elem(indices ...int) (float64, error) {
	const op = "index elem"
	if !x.valid {
		return 0, errors.Wrapf(ErrInvalidArgument,
			"%s: index for %s invalidated by reallocation or redefinition", op, x.v.Path())
	}
	if len(indices) != len(x.shape) {
		return 0, errors.Wrapf(ErrInvalidArgument,
			"%s: got %d indices, want %d", op, len(indices), len(x.shape))
	}
	offset := 0
	for i, idx := range indices {
		if idx < 0 || idx >= x.shape[i] {
			return 0, errors.Wrapf(ErrInvalidArgument,
				"%s: index %d out of range [0,%d)", op, idx, x.shape[i])
		}
		offset = offset*x.shape[i] + idx
	}
	return getElem(x.t, x.data, offset), nil
}
