package cds

// Dimension is a named axis with a length and an "unlimited" flag. An
// unlimited dimension's length reflects the current maximum sample count
// across every variable that uses it as a leading dimension; it only grows,
// except on an explicit reset.
type Dimension struct {
	object
	group     *Group
	length    int
	unlimited bool
}

// Length returns the current dimension length.
func (d *Dimension) Length() int {
	return d.length
}

// IsUnlimited reports whether the dimension can grow.
func (d *Dimension) IsUnlimited() bool {
	return d.unlimited
}

// Group returns the group the dimension is defined in.
func (d *Dimension) Group() *Group {
	return d.group
}

// Variable returns the coordinate variable associated with this dimension:
// the variable of the same name defined in the same group. The association
// is a by-name lookup, not a stored reference. Returns nil when absent.
func (d *Dimension) Variable() *Variable {
	return d.group.Variable(d.name)
}

// SetLength changes the dimension length. It fails with ErrLocked under a
// definition lock and with ErrInvalidArgument when a variable using the
// dimension already holds sample data (the stored layout would no longer
// match). Cached data indexes of variables using the dimension are
// invalidated.
func (d *Dimension) SetLength(length int) error {
	const op = "set dimension length"
	if err := d.checkUnlocked(op); err != nil {
		return err
	}
	if length < 0 {
		return d.failf(op, ErrInvalidArgument, "negative length %d", length)
	}
	if d.length == length {
		return nil
	}
	var conflict *Variable
	d.group.eachVariable(true, func(v *Variable) {
		if conflict == nil && v.usesDimension(d) && v.sampleCount > 0 {
			conflict = v
		}
	})
	if conflict != nil {
		return d.failf(op, ErrInvalidArgument,
			"variable %s has %d samples defined", conflict.Path(), conflict.sampleCount)
	}
	d.length = length
	d.group.eachVariable(true, func(v *Variable) {
		if v.usesDimension(d) {
			v.invalidateIndex()
		}
	})
	return nil
}

// growTo raises an unlimited dimension's length to at least n.
func (d *Dimension) growTo(n int) {
	if n > d.length {
		d.length = n
	}
}

func (d *Dimension) sameDefinition(length int, unlimited bool) bool {
	if d.unlimited != unlimited {
		return false
	}
	// An unlimited dimension's current length is state, not definition.
	return d.unlimited || d.length == length
}

func dimensionNames(dims []*Dimension) []string {
	names := make([]string, len(dims))
	for i, d := range dims {
		names[i] = d.name
	}
	return names
}
