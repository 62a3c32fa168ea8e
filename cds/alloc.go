package cds

// Sample allocation. A variable's data buffer grows along its leading
// (sample) dimension; capacity is retained on shrink/reset for reuse.
//
// Any call that can grow the allocation may reallocate the underlying
// buffer: slices handed out by earlier AllocData/InitData/Data index calls
// are invalidated and must be re-fetched. This is a documented contract of
// the allocation API, enforced for data indexes by explicit invalidation.

// AllocData makes samples [sampleStart, sampleStart+sampleCount) available,
// growing the buffer as needed, and returns the typed slice covering the
// newly-available region. If a gap opens between the previous sample count
// and sampleStart, the gap is filled with the variable's resolved
// missing/fill value. The returned region itself is left as-is
// (zero-initialized when freshly allocated). On failure no visible state
// changes.
func (v *Variable) AllocData(sampleStart, sampleCount int) (any, error) {
	return v.allocData("alloc data", sampleStart, sampleCount)
}

// InitData is AllocData followed by initializing the requested region
// itself: with the resolved missing/fill value when useMissing is set,
// otherwise with zeros.
func (v *Variable) InitData(sampleStart, sampleCount int, useMissing bool) (any, error) {
	region, err := v.allocData("init data", sampleStart, sampleCount)
	if err != nil {
		return nil, err
	}
	var fill any
	if useMissing {
		fill = v.resolveFill()
	} else {
		fill = zeroValue(v.t)
	}
	n, _ := arrayLen(v.t, region)
	_ = InitArray(v.t, region, 0, n, fill)
	return region, nil
}

func zeroValue(t Type) any {
	switch t {
	case TypeChar:
		return byte(0)
	case TypeByte:
		return int8(0)
	case TypeShort:
		return int16(0)
	case TypeInt:
		return int32(0)
	case TypeFloat:
		return float32(0)
	default:
		return float64(0)
	}
}

func (v *Variable) allocData(op string, sampleStart, sampleCount int) (any, error) {
	if sampleCount == 0 {
		return nil, v.failf(op, ErrInvalidArgument, "zero sample count")
	}
	if sampleStart < 0 || sampleCount < 0 {
		return nil, v.failf(op, ErrInvalidArgument,
			"negative sample range (%d, %d)", sampleStart, sampleCount)
	}
	if len(v.dims) == 0 && (sampleStart != 0 || sampleCount != 1) {
		return nil, v.failf(op, ErrInvalidArgument,
			"scalar variable holds exactly one sample, got (%d, %d)", sampleStart, sampleCount)
	}
	for _, d := range v.dims[min(1, len(v.dims)):] {
		if !d.unlimited && d.length == 0 {
			return nil, v.failf(op, ErrInvalidArgument,
				"static dimension %q has zero length", d.name)
		}
	}
	if len(v.dims) > 0 && !v.dims[0].unlimited {
		if sampleStart+sampleCount > v.dims[0].length {
			return nil, v.failf(op, ErrInvalidArgument,
				"sample range [%d,%d) exceeds fixed dimension %q length %d",
				sampleStart, sampleStart+sampleCount, v.dims[0].name, v.dims[0].length)
		}
	}

	ss := v.SampleSize()
	needed := sampleStart + sampleCount
	if needed > v.allocCount {
		capSamples := v.allocCount * 2
		if capSamples < needed {
			capSamples = needed
		}
		grown, err := v.growBuffer(op, capSamples, ss)
		if err != nil {
			return nil, err
		}
		v.data = grown
		v.allocCount = capSamples
		v.invalidateIndex()
	}
	if sampleStart > v.sampleCount {
		fill := v.resolveFill()
		_ = InitArray(v.t, v.data, v.sampleCount*ss, (sampleStart-v.sampleCount)*ss, fill)
	}
	if needed > v.sampleCount {
		v.sampleCount = needed
	}
	if len(v.dims) > 0 && v.dims[0].unlimited {
		v.dims[0].growTo(v.sampleCount)
	}
	return sliceRange(v.t, v.data, sampleStart*ss, needed*ss), nil
}

// growBuffer allocates a buffer of capSamples samples and preserves the
// existing bytes. Growth never shrinks: callers only pass capacities above
// the current one.
func (v *Variable) growBuffer(op string, capSamples, sampleSize int) (any, error) {
	total := capSamples * sampleSize
	if total < 0 { // overflow
		return nil, v.failf(op, ErrAllocation,
			"capacity overflow: %d samples of %d elements", capSamples, sampleSize)
	}
	grown := newArrayOf(v.t, total)
	if v.data != nil {
		old, _ := arrayLen(v.t, v.data)
		for i := 0; i < old; i++ {
			setScalar(v.t, grown, i, scalarAt(v.t, v.data, i))
		}
	}
	return grown, nil
}

// SetData stages values (an array of type srcType, a whole number of
// samples long) into the variable starting at sampleStart, converting to
// the variable's type. srcMissing, when non-nil, lists source sentinels to
// remap onto the variable's own missing-value indicators (or its resolved
// fill value when it has none). Returns the number of samples written.
func (v *Variable) SetData(srcType Type, sampleStart int, values any, srcMissing any) (int, error) {
	const op = "set data"
	if err := checkType(op, srcType); err != nil {
		return 0, err
	}
	n, err := arrayLen(srcType, values)
	if err != nil {
		return 0, v.failf(op, ErrInvalidArgument, "%v", err)
	}
	ss := v.SampleSize()
	if ss == 0 || n == 0 || n%ss != 0 {
		return 0, v.failf(op, ErrInvalidArgument,
			"%d values is not a whole number of %d-element samples", n, ss)
	}
	count := n / ss
	region, err := v.allocData(op, sampleStart, count)
	if err != nil {
		return 0, err
	}
	var opts *CopyOpts
	if srcMissing != nil {
		outMissing := v.MissingValues()
		if outMissing == nil {
			m, _ := arrayLen(srcType, srcMissing)
			outMissing = newArrayOf(v.t, m)
			_ = InitArray(v.t, outMissing, 0, m, v.resolveFill())
		}
		opts = &CopyOpts{InMissing: srcMissing, OutMissing: outMissing}
	}
	if _, err := CopyArray(srcType, values, v.t, region, opts); err != nil {
		return 0, err
	}
	return count, nil
}

// Data returns up to sampleCount samples starting at sampleStart, converted
// to type t with the variable's missing-value indicators remapped. The
// result is a fresh array; it is empty (not an error) when the range lies
// beyond the defined samples.
func (v *Variable) Data(t Type, sampleStart, sampleCount int) (any, error) {
	const op = "get data"
	if err := checkType(op, t); err != nil {
		return nil, err
	}
	if sampleStart < 0 || sampleCount < 0 {
		return nil, v.failf(op, ErrInvalidArgument,
			"negative sample range (%d, %d)", sampleStart, sampleCount)
	}
	avail := v.sampleCount - sampleStart
	if avail <= 0 {
		return newArrayOf(t, 0), nil
	}
	if sampleCount > avail {
		sampleCount = avail
	}
	ss := v.SampleSize()
	region := sliceRange(v.t, v.data, sampleStart*ss, (sampleStart+sampleCount)*ss)
	var opts *CopyOpts
	if inMissing := v.MissingValues(); inMissing != nil {
		outMissing, err := GetMissingValuesMap(v.t, inMissing, t)
		if err != nil {
			return nil, err
		}
		opts = &CopyOpts{InMissing: inMissing, OutMissing: outMissing}
	}
	return CopyArray(v.t, region, t, nil, opts)
}

// ResetSampleCounts sets the sample count to zero for this group's
// variables, and below it when recurse is set. resetUnlimited selects
// variables with an unlimited leading dimension (their shared dimension
// lengths reset to zero as well); resetStatic selects the rest. Capacity is
// retained, so refilling does not reallocate.
func (g *Group) ResetSampleCounts(recurse, resetUnlimited, resetStatic bool) {
	g.eachVariable(recurse, func(v *Variable) {
		if v.IsUnlimited() && !resetUnlimited {
			return
		}
		if !v.IsUnlimited() && !resetStatic {
			return
		}
		v.sampleCount = 0
		v.invalidateIndex()
	})
	if resetUnlimited {
		g.resetUnlimitedDims(recurse)
	}
}

func (g *Group) resetUnlimitedDims(recurse bool) {
	for _, d := range g.dims {
		if d.unlimited {
			d.length = 0
		}
	}
	if recurse {
		for _, sub := range g.groups {
			sub.resetUnlimitedDims(true)
		}
	}
}
