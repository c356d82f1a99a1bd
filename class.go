package supersrg

import (
	"fmt"
	"strings"
	"sync"
)

// ClassName is a JVM internal class name: slash-separated, no trailing
// semicolon, no dots. Equality and hashing are plain string comparison.
type ClassName string

// Atom is an interned name used for method/field names and for method
// descriptors. Interning here is purely a memory optimization: callers
// never observe pointer identity, only string equality, so Atom is just a
// string with a package-level pool that collapses duplicate backing arrays.
type Atom string

var internPool sync.Map // map[string]string

// Intern returns a canonical copy of s, sharing backing storage with any
// previously interned equal string.
func Intern(s string) Atom {
	if v, ok := internPool.Load(s); ok {
		return Atom(v.(string))
	}
	actual, _ := internPool.LoadOrStore(s, s)
	return Atom(actual.(string))
}

// UnexpectedDotError is returned by ParseInternalName when a class name
// contains a '.' where a binary (internal) name must use '/'.
type UnexpectedDotError struct {
	Index int
}

func (e *UnexpectedDotError) Error() string {
	return fmt.Sprintf("unexpected '.' in internal class name at index %d", e.Index)
}

// ParseInternalName validates s as a JVM internal class name. Dots are
// always rejected: per the design notes this implementation always takes
// the strict branch rather than only doing so in a "debug" build, since Go
// has no equivalent of that distinction worth keeping.
func ParseInternalName(s string) (ClassName, error) {
	if s == "" {
		return "", ErrEmptyClassName
	}
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		return "", &UnexpectedDotError{Index: idx}
	}
	return ClassName(s), nil
}

// ParseMemberName splits s at its last '/' into an owning class and a
// member name, e.g. "com/example/Box/consume" -> ("com/example/Box",
// "consume"). Both sides must be non-empty.
func ParseMemberName(s string) (ClassName, Atom, error) {
	if s == "" {
		return "", "", ErrEmptyName
	}
	idx := strings.LastIndexByte(s, '/')
	if idx < 0 {
		return "", "", ErrMissingSeparator
	}
	class, member := s[:idx], s[idx+1:]
	if class == "" {
		return "", "", ErrEmptyClassName
	}
	if member == "" {
		return "", "", ErrEmptyMemberName
	}
	return ClassName(class), Intern(member), nil
}

// FormatMemberName re-joins a class and member name the way ParseMemberName
// splits them.
func FormatMemberName(class ClassName, member Atom) string {
	return string(class) + "/" + string(member)
}
