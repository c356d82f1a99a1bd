package supersrg

// FieldKey identifies a field by its owning class and name.
type FieldKey struct {
	Class ClassName
	Name  Atom
}

// MethodKey identifies a method by its owning class, name, and descriptor.
type MethodKey struct {
	Class      ClassName
	Name       Atom
	Descriptor Atom
}

func (k FieldKey) String() string {
	return FormatMemberName(k.Class, k.Name)
}

func (k MethodKey) String() string {
	return FormatMemberName(k.Class, k.Name) + " " + string(k.Descriptor)
}
