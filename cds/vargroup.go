package cds

// VarGroup is a named collection of variable arrays, and VarArray an
// ordered list of variable references. Groupings are bookkeeping over
// variables owned elsewhere: deleting a grouping never deletes variables.

// VarGroup is a named collection of VarArrays owned by a group.
type VarGroup struct {
	object
	group  *Group
	arrays []*VarArray
}

// VarArray is a named, ordered list of variable references.
type VarArray struct {
	object
	vars []*Variable
}

// DefineVarGroup returns the named variable grouping, creating it if
// absent.
func (g *Group) DefineVarGroup(name string) (*VarGroup, error) {
	const op = "define vargroup"
	if !validName(name) {
		return nil, g.failf(op, ErrInvalidArgument, "bad vargroup name %q", name)
	}
	if vg := g.VarGroup(name); vg != nil {
		return vg, nil
	}
	if err := g.checkUnlocked(op); err != nil {
		return nil, err
	}
	vg := &VarGroup{
		object: object{name: name, parent: &g.object},
		group:  g,
	}
	g.varGroups = append(g.varGroups, vg)
	return vg, nil
}

// VarGroup returns the named variable grouping, or nil.
func (g *Group) VarGroup(name string) *VarGroup {
	for _, vg := range g.varGroups {
		if vg.name == name {
			return vg
		}
	}
	return nil
}

// VarGroups returns the group's variable groupings in definition order.
func (g *Group) VarGroups() []*VarGroup {
	return append([]*VarGroup(nil), g.varGroups...)
}

// RenameVarGroup renames a variable grouping.
func (g *Group) RenameVarGroup(oldName, newName string) error {
	const op = "rename vargroup"
	vg := g.VarGroup(oldName)
	if vg == nil {
		return g.failf(op, ErrNotFound, "vargroup %q", oldName)
	}
	if !validName(newName) {
		return g.failf(op, ErrInvalidArgument, "bad vargroup name %q", newName)
	}
	if g.VarGroup(newName) != nil {
		return g.failf(op, ErrConflictingDefinition, "vargroup %q exists", newName)
	}
	if err := vg.checkUnlocked(op); err != nil {
		return err
	}
	vg.name = newName
	return nil
}

// DeleteVarGroup deletes a variable grouping. The referenced variables are
// untouched.
func (g *Group) DeleteVarGroup(name string) error {
	const op = "delete vargroup"
	for i, vg := range g.varGroups {
		if vg.name != name {
			continue
		}
		if err := vg.checkUnlocked(op); err != nil {
			return err
		}
		vg.destroy()
		g.varGroups = append(g.varGroups[:i], g.varGroups[i+1:]...)
		return nil
	}
	return g.failf(op, ErrNotFound, "vargroup %q", name)
}

func (vg *VarGroup) destroy() {
	for _, va := range vg.arrays {
		va.releaseUserData()
	}
	vg.arrays = nil
	vg.releaseUserData()
}

// DefineVarArray returns the named variable array, creating it with the
// given variable references if absent. An existing array with a different
// variable list is a conflicting definition.
func (vg *VarGroup) DefineVarArray(name string, vars ...*Variable) (*VarArray, error) {
	const op = "define vararray"
	if !validName(name) {
		return nil, vg.failf(op, ErrInvalidArgument, "bad vararray name %q", name)
	}
	if va := vg.VarArray(name); va != nil {
		if sameVariables(va.vars, vars) {
			return va, nil
		}
		return nil, vg.failf(op, ErrConflictingDefinition, "vararray %q exists", name)
	}
	if err := vg.checkUnlocked(op); err != nil {
		return nil, err
	}
	va := &VarArray{
		object: object{name: name, parent: &vg.object},
		vars:   append([]*Variable(nil), vars...),
	}
	vg.arrays = append(vg.arrays, va)
	return va, nil
}

func sameVariables(a, b []*Variable) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// VarArray returns the named variable array, or nil.
func (vg *VarGroup) VarArray(name string) *VarArray {
	for _, va := range vg.arrays {
		if va.name == name {
			return va
		}
	}
	return nil
}

// VarArrays returns the grouping's variable arrays in definition order.
func (vg *VarGroup) VarArrays() []*VarArray {
	return append([]*VarArray(nil), vg.arrays...)
}

// DeleteVarArray deletes a variable array from the grouping.
func (vg *VarGroup) DeleteVarArray(name string) error {
	const op = "delete vararray"
	for i, va := range vg.arrays {
		if va.name != name {
			continue
		}
		if err := va.checkUnlocked(op); err != nil {
			return err
		}
		va.releaseUserData()
		vg.arrays = append(vg.arrays[:i], vg.arrays[i+1:]...)
		return nil
	}
	return vg.failf(op, ErrNotFound, "vararray %q", name)
}

// Variables returns the array's variable references in order.
func (va *VarArray) Variables() []*Variable {
	return append([]*Variable(nil), va.vars...)
}

// AddVariables appends variable references to the array.
func (va *VarArray) AddVariables(vars ...*Variable) error {
	const op = "add vararray variables"
	if err := va.checkUnlocked(op); err != nil {
		return err
	}
	va.vars = append(va.vars, vars...)
	return nil
}
