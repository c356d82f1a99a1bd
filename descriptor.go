package supersrg

import (
	"fmt"
	"strings"
)

// Kind discriminates the variants of a JVM type descriptor.
type Kind int

const (
	KindByte Kind = iota
	KindShort
	KindInt
	KindLong
	KindDouble
	KindFloat
	KindChar
	KindBoolean
	KindVoid
	KindClass
	KindArray
)

var primitiveChars = map[byte]Kind{
	'B': KindByte,
	'S': KindShort,
	'I': KindInt,
	'J': KindLong,
	'D': KindDouble,
	'F': KindFloat,
	'C': KindChar,
	'Z': KindBoolean,
	'V': KindVoid,
}

var kindChars = map[Kind]byte{
	KindByte:    'B',
	KindShort:   'S',
	KindInt:     'I',
	KindLong:    'J',
	KindDouble:  'D',
	KindFloat:   'F',
	KindChar:    'C',
	KindBoolean: 'Z',
	KindVoid:    'V',
}

// Type is a single parsed JVM type descriptor: a primitive, a class
// reference, or an array whose element is itself never an array (leading
// '['s are folded into Dimensions instead).
type Type struct {
	Kind       Kind
	Class      ClassName // valid iff Kind == KindClass
	Dimensions int       // valid iff Kind == KindArray, 1 or more
	Element    *Type     // valid iff Kind == KindArray; never itself an array
}

// ParsedDescriptor is a parsed method descriptor: its parameter types in
// declaration order and its return type.
type ParsedDescriptor struct {
	Parameters []Type
	Return     Type
}

// UnexpectedlyLongError is returned when a single type descriptor parse
// consumed fewer bytes than the input supplied (the caller expected the
// descriptor to end exactly where it parsed to).
type UnexpectedlyLongError struct {
	Expected, Actual int
}

func (e *UnexpectedlyLongError) Error() string {
	return fmt.Sprintf("descriptor unexpectedly long: expected length %d, actual %d", e.Expected, e.Actual)
}

// InvalidStartError is returned when a type descriptor begins with a byte
// that cannot start any valid type.
type InvalidStartError struct {
	Start byte
}

func (e *InvalidStartError) Error() string {
	return fmt.Sprintf("invalid start of type descriptor: %q", e.Start)
}

// EmptyArrayError is returned when an array descriptor's leading '['s are
// not followed by an element type.
type EmptyArrayError struct {
	Dimensions int
}

func (e *EmptyArrayError) Error() string {
	return fmt.Sprintf("array descriptor with %d dimension(s) has no element type", e.Dimensions)
}

// InvalidElementDescriptorError wraps a failure to parse an array's element
// type.
type InvalidElementDescriptorError struct {
	Dimensions int
	Cause      error
}

func (e *InvalidElementDescriptorError) Error() string {
	return fmt.Sprintf("invalid element type for array of dimension %d: %v", e.Dimensions, e.Cause)
}

func (e *InvalidElementDescriptorError) Unwrap() error { return e.Cause }

// InvalidParameterTypeError wraps a failure to parse one parameter of a
// method descriptor.
type InvalidParameterTypeError struct {
	Parameter  int // zero-based index of the offending parameter
	StartIndex int // byte offset within the descriptor
	Cause      error
}

func (e *InvalidParameterTypeError) Error() string {
	return fmt.Sprintf("invalid parameter type #%d at byte %d: %v", e.Parameter, e.StartIndex, e.Cause)
}

func (e *InvalidParameterTypeError) Unwrap() error { return e.Cause }

// InvalidReturnTypeError wraps a failure to parse a method descriptor's
// return type.
type InvalidReturnTypeError struct {
	StartIndex int
	Cause      error
}

func (e *InvalidReturnTypeError) Error() string {
	return fmt.Sprintf("invalid return type at byte %d: %v", e.StartIndex, e.Cause)
}

func (e *InvalidReturnTypeError) Unwrap() error { return e.Cause }

// partiallyParseType parses a single type descriptor starting at s, and
// returns the parsed type along with the number of bytes it consumed. It
// does not require the whole string to be consumed — ParseDescriptor uses
// that to walk the parameter list one type at a time.
func partiallyParseType(s string) (Type, int, error) {
	if s == "" {
		return Type{}, 0, ErrEmptyDescriptor
	}
	c := s[0]
	if kind, ok := primitiveChars[c]; ok {
		return Type{Kind: kind}, 1, nil
	}
	switch c {
	case 'L':
		end := strings.IndexByte(s, ';')
		if end < 0 {
			return Type{}, 0, ErrUnclosedClassDescriptor
		}
		class, err := ParseInternalName(s[1:end])
		if err != nil {
			return Type{}, 0, err
		}
		return Type{Kind: KindClass, Class: class}, end + 1, nil
	case '[':
		dims := 0
		for dims < len(s) && s[dims] == '[' {
			dims++
		}
		if dims >= len(s) {
			return Type{}, 0, &EmptyArrayError{Dimensions: dims}
		}
		element, n, err := partiallyParseType(s[dims:])
		if err != nil {
			return Type{}, 0, &InvalidElementDescriptorError{Dimensions: dims, Cause: err}
		}
		if element.Kind == KindArray {
			// Dimensions always collapse: partiallyParseType never returns
			// an array directly wrapping an array because the loop above
			// already consumed every leading '['.
			panic("unreachable: nested array element")
		}
		return Type{Kind: KindArray, Dimensions: dims, Element: &element}, dims + n, nil
	default:
		return Type{}, 0, &InvalidStartError{Start: c}
	}
}

// ParseType parses s as a single, complete type descriptor (no surrounding
// method-descriptor parens). The entire string must be consumed.
func ParseType(s string) (Type, error) {
	t, n, err := partiallyParseType(s)
	if err != nil {
		return Type{}, err
	}
	if n != len(s) {
		return Type{}, &UnexpectedlyLongError{Expected: n, Actual: len(s)}
	}
	return t, nil
}

// ParseDescriptor parses s as a complete method descriptor: '(' Type* ')'
// Type.
func ParseDescriptor(s string) (ParsedDescriptor, error) {
	if s == "" {
		return ParsedDescriptor{}, ErrEmptyDescriptor
	}
	if s[0] != '(' {
		return ParsedDescriptor{}, ErrUnopenedDescriptor
	}
	rest := s[1:]
	var params []Type
	index := 1
	paramNum := 0
	for {
		if rest == "" {
			return ParsedDescriptor{}, ErrUnclosedDescriptor
		}
		if rest[0] == ')' {
			rest = rest[1:]
			index++
			break
		}
		t, n, err := partiallyParseType(rest)
		if err != nil {
			return ParsedDescriptor{}, &InvalidParameterTypeError{Parameter: paramNum, StartIndex: index, Cause: err}
		}
		params = append(params, t)
		rest = rest[n:]
		index += n
		paramNum++
	}
	ret, n, err := partiallyParseType(rest)
	if err != nil {
		return ParsedDescriptor{}, &InvalidReturnTypeError{StartIndex: index, Cause: err}
	}
	if n != len(rest) {
		return ParsedDescriptor{}, &UnexpectedlyLongError{Expected: index + n, Actual: len(s)}
	}
	return ParsedDescriptor{Parameters: params, Return: ret}, nil
}

// String renders a Type back to its canonical descriptor form.
func (t Type) String() string {
	switch t.Kind {
	case KindClass:
		return "L" + string(t.Class) + ";"
	case KindArray:
		return strings.Repeat("[", t.Dimensions) + t.Element.String()
	default:
		if c, ok := kindChars[t.Kind]; ok {
			return string(c)
		}
		panic("unreachable: invalid Kind")
	}
}

// String renders a ParsedDescriptor back to its canonical descriptor form.
func (d ParsedDescriptor) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for _, p := range d.Parameters {
		b.WriteString(p.String())
	}
	b.WriteByte(')')
	b.WriteString(d.Return.String())
	return b.String()
}

// remapType substitutes every class reference within t through f, returning
// t unchanged (by value, but byte-identical) if nothing in it changed.
func remapType(t Type, f func(ClassName) ClassName) Type {
	switch t.Kind {
	case KindClass:
		if mapped := f(t.Class); mapped != t.Class {
			return Type{Kind: KindClass, Class: mapped}
		}
		return t
	case KindArray:
		elem := remapType(*t.Element, f)
		if elem == *t.Element {
			return t
		}
		return Type{Kind: KindArray, Dimensions: t.Dimensions, Element: &elem}
	default:
		return t
	}
}

// RemapDescriptor substitutes every class reference in descriptor through
// f, re-emitting a canonical descriptor string. It returns the input
// string unchanged (same value) iff the result is byte-identical.
func RemapDescriptor(descriptor Atom, f func(ClassName) ClassName) (Atom, error) {
	parsed, err := ParseDescriptor(string(descriptor))
	if err != nil {
		return "", err
	}
	changed := false
	newParams := make([]Type, len(parsed.Parameters))
	for i, p := range parsed.Parameters {
		np := remapType(p, f)
		if np != p {
			changed = true
		}
		newParams[i] = np
	}
	newReturn := remapType(parsed.Return, f)
	if newReturn != parsed.Return {
		changed = true
	}
	if !changed {
		return descriptor, nil
	}
	return Intern(ParsedDescriptor{Parameters: newParams, Return: newReturn}.String()), nil
}
