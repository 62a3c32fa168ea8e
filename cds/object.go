package cds

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// object is the identity core embedded in every entity: name, a non-owning
// back-reference to the parent, the definition lock, and the user-data bag.
// Ownership is strictly top-down; the parent pointer is never used to keep a
// child alive past its parent.
type object struct {
	name   string
	parent *object
	locked bool
	user   map[string]userValue
}

type userValue struct {
	value   any
	release func(any)
}

// Name returns the object's name.
func (o *object) Name() string {
	return o.name
}

// Path returns the slash-joined sequence of ancestor names, derived on
// demand. A root group named "root" has path "/root".
func (o *object) Path() string {
	var parts []string
	for p := o; p != nil; p = p.parent {
		parts = append(parts, p.name)
	}
	var b strings.Builder
	for i := len(parts) - 1; i >= 0; i-- {
		b.WriteByte('/')
		b.WriteString(parts[i])
	}
	return b.String()
}

// Locked reports this object's own definition lock.
func (o *object) Locked() bool {
	return o.locked
}

// SetLocked sets or clears the definition lock. While set, structural
// mutation of this object and everything below it fails with ErrLocked.
func (o *object) SetLocked(locked bool) {
	o.locked = locked
}

// lockedChain reports whether this object or any ancestor is locked.
func (o *object) lockedChain() bool {
	for p := o; p != nil; p = p.parent {
		if p.locked {
			return true
		}
	}
	return false
}

// checkUnlocked fails with ErrLocked when the object or an ancestor holds
// the definition lock. The failure is also reported to the diagnostic sink.
func (o *object) checkUnlocked(op string) error {
	if o.lockedChain() {
		err := errors.Wrapf(ErrLocked, "%s: %s", op, o.Path())
		logFailure(op, o.Path(), err)
		return err
	}
	return nil
}

// failf wraps kind with operation context, reports the failure to the
// diagnostic sink and returns the error.
func (o *object) failf(op string, kind error, format string, args ...any) error {
	err := errors.Wrapf(kind, op+": "+o.Path()+": "+format, args...)
	logFailure(op, o.Path(), err)
	return err
}

// SetUserData attaches value under key for the object's lifetime. The
// optional release callback runs exactly once when the value is replaced,
// deleted, or the object is destroyed.
func (o *object) SetUserData(key string, value any, release func(any)) {
	if o.user == nil {
		o.user = make(map[string]userValue)
	}
	if old, ok := o.user[key]; ok && old.release != nil {
		old.release(old.value)
	}
	o.user[key] = userValue{value: value, release: release}
}

// UserData returns the value stored under key. The second result is false
// when no value is attached.
func (o *object) UserData(key string) (any, bool) {
	v, ok := o.user[key]
	if !ok {
		return nil, false
	}
	return v.value, true
}

// DeleteUserData removes the value stored under key, running its release
// callback if one was supplied.
func (o *object) DeleteUserData(key string) {
	if v, ok := o.user[key]; ok {
		if v.release != nil {
			v.release(v.value)
		}
		delete(o.user, key)
	}
}

// releaseUserData runs and discards every attached user value. Called on
// entity destruction.
func (o *object) releaseUserData() {
	for key, v := range o.user {
		if v.release != nil {
			v.release(v.value)
		}
		delete(o.user, key)
	}
}

// validName reports whether name is usable as an entity name.
func validName(name string) bool {
	return name != "" && !strings.ContainsRune(name, '/')
}
