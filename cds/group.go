package cds

// Group is the hierarchical container owning child dimensions, attributes,
// variables, sub-groups and variable groupings. Names are unique per
// collection within one group. All define calls are look-up-or-create:
// defining an already-identically-defined entity returns the existing
// instance.
type Group struct {
	object
	parentGroup *Group
	dims        []*Dimension
	atts        []*Attribute
	vars        []*Variable
	groups      []*Group
	varGroups   []*VarGroup
	params      map[paramKey]string
}

// NewGroup creates a root group.
func NewGroup(name string) *Group {
	if !validName(name) {
		name = "root"
	}
	return &Group{object: object{name: name}}
}

// Parent returns the parent group, or nil for a root group.
func (g *Group) Parent() *Group {
	return g.parentGroup
}

// DefineGroup returns the named sub-group, creating it if absent.
func (g *Group) DefineGroup(name string) (*Group, error) {
	const op = "define group"
	if !validName(name) {
		return nil, g.failf(op, ErrInvalidArgument, "bad group name %q", name)
	}
	if sub := g.Group(name); sub != nil {
		return sub, nil
	}
	if err := g.checkUnlocked(op); err != nil {
		return nil, err
	}
	sub := &Group{
		object:      object{name: name, parent: &g.object},
		parentGroup: g,
	}
	g.groups = append(g.groups, sub)
	return sub, nil
}

// Group returns the named sub-group, or nil. Sub-group lookup is local only.
func (g *Group) Group(name string) *Group {
	for _, sub := range g.groups {
		if sub.name == name {
			return sub
		}
	}
	return nil
}

// Groups returns the sub-groups in definition order.
func (g *Group) Groups() []*Group {
	return append([]*Group(nil), g.groups...)
}

// RenameGroup renames the named sub-group.
func (g *Group) RenameGroup(oldName, newName string) error {
	const op = "rename group"
	sub := g.Group(oldName)
	if sub == nil {
		return g.failf(op, ErrNotFound, "group %q", oldName)
	}
	if !validName(newName) {
		return g.failf(op, ErrInvalidArgument, "bad group name %q", newName)
	}
	if g.Group(newName) != nil {
		return g.failf(op, ErrConflictingDefinition, "group %q exists", newName)
	}
	if err := sub.checkUnlocked(op); err != nil {
		return err
	}
	sub.name = newName
	return nil
}

// DeleteGroup destroys the named sub-group and, recursively, everything it
// owns. User-data release callbacks fire exactly once per destroyed entity.
func (g *Group) DeleteGroup(name string) error {
	const op = "delete group"
	for i, sub := range g.groups {
		if sub.name != name {
			continue
		}
		if err := sub.checkUnlocked(op); err != nil {
			return err
		}
		sub.destroy()
		g.groups = append(g.groups[:i], g.groups[i+1:]...)
		return nil
	}
	return g.failf(op, ErrNotFound, "group %q", name)
}

// Delete destroys this group. A child group is removed from its parent; a
// root group releases its owned resources in place.
func (g *Group) Delete() error {
	if g.parentGroup != nil {
		return g.parentGroup.DeleteGroup(g.name)
	}
	const op = "delete group"
	if err := g.checkUnlocked(op); err != nil {
		return err
	}
	g.destroy()
	return nil
}

// destroy recursively releases everything the group owns.
func (g *Group) destroy() {
	for _, sub := range g.groups {
		sub.destroy()
	}
	g.groups = nil
	for _, v := range g.vars {
		v.destroy()
	}
	g.vars = nil
	for _, a := range g.atts {
		a.releaseUserData()
	}
	g.atts = nil
	for _, d := range g.dims {
		d.releaseUserData()
	}
	g.dims = nil
	for _, vg := range g.varGroups {
		vg.destroy()
	}
	g.varGroups = nil
	g.params = nil
	g.releaseUserData()
}

// DefineDimension returns the named dimension, creating it if absent. A
// dimension of the same name with a different static length or unlimited
// flag is a conflicting definition.
func (g *Group) DefineDimension(name string, length int, unlimited bool) (*Dimension, error) {
	const op = "define dimension"
	if !validName(name) {
		return nil, g.failf(op, ErrInvalidArgument, "bad dimension name %q", name)
	}
	if length < 0 {
		return nil, g.failf(op, ErrInvalidArgument, "dimension %q: negative length %d", name, length)
	}
	if d := g.localDimension(name); d != nil {
		if d.sameDefinition(length, unlimited) {
			return d, nil
		}
		return nil, g.failf(op, ErrConflictingDefinition,
			"dimension %q already defined with length %d (unlimited=%v)",
			name, d.length, d.unlimited)
	}
	if err := g.checkUnlocked(op); err != nil {
		return nil, err
	}
	d := &Dimension{
		object:    object{name: name, parent: &g.object},
		group:     g,
		length:    length,
		unlimited: unlimited,
	}
	g.dims = append(g.dims, d)
	return d, nil
}

// Dimension resolves a dimension name against this group and then its
// ancestors (dimensions are lexically scoped). Returns nil when absent.
func (g *Group) Dimension(name string) *Dimension {
	for p := g; p != nil; p = p.parentGroup {
		if d := p.localDimension(name); d != nil {
			return d
		}
	}
	return nil
}

func (g *Group) localDimension(name string) *Dimension {
	for _, d := range g.dims {
		if d.name == name {
			return d
		}
	}
	return nil
}

// Dimensions returns this group's own dimensions in definition order.
func (g *Group) Dimensions() []*Dimension {
	return append([]*Dimension(nil), g.dims...)
}

// RenameDimension renames a dimension defined in this group. The associated
// coordinate variable (a variable sharing the dimension's name) is renamed
// with it; the rename fails as a whole if that variable cannot be renamed.
func (g *Group) RenameDimension(oldName, newName string) error {
	const op = "rename dimension"
	d := g.localDimension(oldName)
	if d == nil {
		return g.failf(op, ErrNotFound, "dimension %q", oldName)
	}
	if !validName(newName) {
		return g.failf(op, ErrInvalidArgument, "bad dimension name %q", newName)
	}
	if g.localDimension(newName) != nil {
		return g.failf(op, ErrConflictingDefinition, "dimension %q exists", newName)
	}
	if err := d.checkUnlocked(op); err != nil {
		return err
	}
	coord := g.Variable(oldName)
	if coord != nil {
		if g.Variable(newName) != nil {
			return g.failf(op, ErrConflictingDefinition,
				"coordinate variable %q cannot be renamed: variable %q exists", oldName, newName)
		}
		if err := coord.checkUnlocked(op); err != nil {
			return err
		}
	}
	d.name = newName
	if coord != nil {
		coord.name = newName
	}
	return nil
}

// DeleteDimension deletes a dimension defined in this group. Every variable
// referencing the dimension is deleted first (in this group and below); the
// call fails without change if any of them, or the dimension, is locked.
func (g *Group) DeleteDimension(name string) error {
	const op = "delete dimension"
	d := g.localDimension(name)
	if d == nil {
		return g.failf(op, ErrNotFound, "dimension %q", name)
	}
	if err := d.checkUnlocked(op); err != nil {
		return err
	}
	var victims []*Variable
	var lockedVictim *Variable
	g.eachVariable(true, func(v *Variable) {
		if v.usesDimension(d) {
			victims = append(victims, v)
			if lockedVictim == nil && v.lockedChain() {
				lockedVictim = v
			}
		}
	})
	if lockedVictim != nil {
		return g.failf(op, ErrLocked, "variable %s uses dimension %q", lockedVictim.Path(), name)
	}
	for _, v := range victims {
		v.group.removeVariable(v)
	}
	for i, dd := range g.dims {
		if dd == d {
			g.dims = append(g.dims[:i], g.dims[i+1:]...)
			break
		}
	}
	d.releaseUserData()
	return nil
}

// DefineVariable returns the named variable, creating it if absent. Each
// dimension name resolves against this group's own and ancestor dimensions.
// At most the first dimension may be unlimited.
func (g *Group) DefineVariable(name string, t Type, dimNames ...string) (*Variable, error) {
	const op = "define variable"
	if err := checkType(op, t); err != nil {
		return nil, err
	}
	if !validName(name) {
		return nil, g.failf(op, ErrInvalidArgument, "bad variable name %q", name)
	}
	dims := make([]*Dimension, len(dimNames))
	for i, dn := range dimNames {
		d := g.Dimension(dn)
		if d == nil {
			return nil, g.failf(op, ErrNotFound, "variable %q: dimension %q", name, dn)
		}
		if d.unlimited && i != 0 {
			return nil, g.failf(op, ErrInvalidArgument,
				"variable %q: unlimited dimension %q must be first", name, dn)
		}
		dims[i] = d
	}
	if v := g.Variable(name); v != nil {
		if v.t == t && sameDimensions(v.dims, dims) {
			return v, nil
		}
		return nil, g.failf(op, ErrConflictingDefinition,
			"variable %q already defined as %s(%v)", name, v.t, dimensionNames(v.dims))
	}
	if err := g.checkUnlocked(op); err != nil {
		return nil, err
	}
	v := &Variable{
		object: object{name: name, parent: &g.object},
		group:  g,
		t:      t,
		dims:   dims,
	}
	g.vars = append(g.vars, v)
	return v, nil
}

func sameDimensions(a, b []*Dimension) bool {
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

// Variable returns the named variable, or nil. Variable lookup is local
// only; there is no ancestor fallback.
func (g *Group) Variable(name string) *Variable {
	for _, v := range g.vars {
		if v.name == name {
			return v
		}
	}
	return nil
}

// Variables returns this group's variables in definition order.
func (g *Group) Variables() []*Variable {
	return append([]*Variable(nil), g.vars...)
}

// RenameVariable renames a variable defined in this group.
func (g *Group) RenameVariable(oldName, newName string) error {
	const op = "rename variable"
	v := g.Variable(oldName)
	if v == nil {
		return g.failf(op, ErrNotFound, "variable %q", oldName)
	}
	if !validName(newName) {
		return g.failf(op, ErrInvalidArgument, "bad variable name %q", newName)
	}
	if g.Variable(newName) != nil {
		return g.failf(op, ErrConflictingDefinition, "variable %q exists", newName)
	}
	if err := v.checkUnlocked(op); err != nil {
		return err
	}
	v.name = newName
	return nil
}

// DeleteVariable destroys the named variable and its attributes and data.
func (g *Group) DeleteVariable(name string) error {
	const op = "delete variable"
	v := g.Variable(name)
	if v == nil {
		return g.failf(op, ErrNotFound, "variable %q", name)
	}
	if err := v.checkUnlocked(op); err != nil {
		return err
	}
	g.removeVariable(v)
	return nil
}

func (g *Group) removeVariable(v *Variable) {
	for i, vv := range g.vars {
		if vv == v {
			g.vars = append(g.vars[:i], g.vars[i+1:]...)
			break
		}
	}
	v.destroy()
}

// eachVariable visits every variable in the group, and below it when recurse
// is set.
func (g *Group) eachVariable(recurse bool, f func(*Variable)) {
	for _, v := range g.vars {
		f(v)
	}
	if recurse {
		for _, sub := range g.groups {
			sub.eachVariable(true, f)
		}
	}
}

// DefineAttribute returns the named group attribute, creating it if absent.
func (g *Group) DefineAttribute(name string, t Type, values any) (*Attribute, error) {
	return defineAttribute(&g.object, &g.atts, name, t, values)
}

// ChangeAttribute defines the attribute if absent. When it exists and
// overwrite is set, its type and value are replaced transactionally;
// otherwise the existing attribute is returned unchanged.
func (g *Group) ChangeAttribute(overwrite bool, name string, t Type, values any) (*Attribute, error) {
	return changeAttribute(&g.object, &g.atts, overwrite, name, t, values)
}

// Attribute returns the named group attribute, or nil.
func (g *Group) Attribute(name string) *Attribute {
	return findAttribute(g.atts, name)
}

// Attributes returns the group attributes in definition order.
func (g *Group) Attributes() []*Attribute {
	return append([]*Attribute(nil), g.atts...)
}

// SetAttributeValue casts values of type t into the named attribute's
// existing declared type.
func (g *Group) SetAttributeValue(name string, t Type, values any) error {
	return setAttributeValue(&g.object, g.atts, name, t, values)
}

// SetAttributeText sets the named attribute from text, parsing into the
// attribute's declared type when it is numeric.
func (g *Group) SetAttributeText(name, text string) error {
	return setAttributeText(&g.object, g.atts, name, text)
}

// RenameAttribute renames a group attribute.
func (g *Group) RenameAttribute(oldName, newName string) error {
	return renameAttribute(&g.object, g.atts, oldName, newName)
}

// DeleteAttribute deletes a group attribute.
func (g *Group) DeleteAttribute(name string) error {
	return deleteAttribute(&g.object, &g.atts, name)
}
