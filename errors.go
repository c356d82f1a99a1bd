package supersrg

import "errors"

// Name and member-name parse errors.
var (
	ErrEmptyClassName   = errors.New("empty class name")
	ErrEmptyName        = errors.New("empty name")
	ErrEmptyMemberName  = errors.New("empty member name")
	ErrMissingSeparator = errors.New("member name missing '/' separator")
)

// Descriptor parse errors.
var (
	ErrEmptyDescriptor        = errors.New("empty descriptor")
	ErrUnopenedDescriptor     = errors.New("method descriptor does not start with '('")
	ErrUnclosedDescriptor     = errors.New("method descriptor missing closing ')'")
	ErrUnclosedClassDescriptor = errors.New("class descriptor missing terminating ';'")
)

// Mapping-store and codec errors.
var (
	ErrOutsideBoundary = errors.New("reading data outside boundary")
)
