package supersrg

import "sync"

// MappingStoreBuilder accumulates class, field, and method renamings. It is
// populated by parsers, decoders, or directly by callers, then frozen into
// a MappingSnapshot via Build. Iteration order over each table is insertion
// order; re-inserting an existing key overwrites its value in place without
// moving it.
type MappingStoreBuilder struct {
	classOrder []ClassName
	classes    map[ClassName]ClassName

	fieldOrder []FieldKey
	fields     map[FieldKey]Atom

	methodOrder []MethodKey
	methods     map[MethodKey]Atom
}

// NewMappingStoreBuilder returns an empty builder.
func NewMappingStoreBuilder() *MappingStoreBuilder {
	return &MappingStoreBuilder{
		classes: make(map[ClassName]ClassName),
		fields:  make(map[FieldKey]Atom),
		methods: make(map[MethodKey]Atom),
	}
}

// InsertClass records old -> new, overwriting any previous entry for old
// without changing its position in iteration order.
func (b *MappingStoreBuilder) InsertClass(old, new ClassName) error {
	if old == "" || new == "" {
		return ErrEmptyClassName
	}
	b.insertClassRaw(old, new)
	return nil
}

func (b *MappingStoreBuilder) insertClassRaw(old, new ClassName) {
	if _, ok := b.classes[old]; !ok {
		b.classOrder = append(b.classOrder, old)
	}
	b.classes[old] = new
}

// InsertField records key -> newName.
func (b *MappingStoreBuilder) InsertField(key FieldKey, newName Atom) error {
	if key.Class == "" || key.Name == "" || newName == "" {
		return ErrEmptyName
	}
	b.insertFieldRaw(key, newName)
	return nil
}

func (b *MappingStoreBuilder) insertFieldRaw(key FieldKey, newName Atom) {
	if _, ok := b.fields[key]; !ok {
		b.fieldOrder = append(b.fieldOrder, key)
	}
	b.fields[key] = newName
}

// InsertMethod records key -> newName. The descriptor embedded in key must
// already parse; this is checked eagerly so invalid descriptors never enter
// the table.
func (b *MappingStoreBuilder) InsertMethod(key MethodKey, newName Atom) error {
	if key.Class == "" || key.Name == "" || newName == "" {
		return ErrEmptyName
	}
	if _, err := ParseDescriptor(string(key.Descriptor)); err != nil {
		return err
	}
	b.insertMethodRaw(key, newName)
	return nil
}

func (b *MappingStoreBuilder) insertMethodRaw(key MethodKey, newName Atom) {
	if _, ok := b.methods[key]; !ok {
		b.methodOrder = append(b.methodOrder, key)
	}
	b.methods[key] = newName
}

// Classes, Fields and Methods expose the underlying insertion-ordered
// tables as slices of key/value pairs, for encoders that need to walk a
// builder directly rather than a snapshot.
func (b *MappingStoreBuilder) Classes() []ClassPair {
	out := make([]ClassPair, len(b.classOrder))
	for i, k := range b.classOrder {
		out[i] = ClassPair{Original: k, Renamed: b.classes[k]}
	}
	return out
}

func (b *MappingStoreBuilder) Fields() []FieldPair {
	out := make([]FieldPair, len(b.fieldOrder))
	for i, k := range b.fieldOrder {
		out[i] = FieldPair{Key: k, RenamedName: b.fields[k]}
	}
	return out
}

func (b *MappingStoreBuilder) Methods() []MethodPair {
	out := make([]MethodPair, len(b.methodOrder))
	for i, k := range b.methodOrder {
		out[i] = MethodPair{Key: k, RenamedName: b.methods[k]}
	}
	return out
}

// ClassPair, FieldPair and MethodPair are (original, renamed) pairs yielded
// by iteration over a builder or snapshot.
type ClassPair struct {
	Original, Renamed ClassName
}

type FieldPair struct {
	Key         FieldKey
	RenamedName Atom
}

type MethodPair struct {
	Key         MethodKey
	RenamedName Atom
}

func (b *MappingStoreBuilder) classOf(c ClassName) ClassName {
	if v, ok := b.classes[c]; ok {
		return v
	}
	return c
}

// Reverse produces a new builder whose direction is swapped: classes,
// fields, and methods all have their original and renamed sides exchanged.
// Descriptors are carried through unchanged — callers must Build a
// snapshot of the result to re-derive them against the swapped class
// table.
func (b *MappingStoreBuilder) Reverse() *MappingStoreBuilder {
	out := NewMappingStoreBuilder()
	// Fields and methods are processed before classes so the lookup of
	// each member's owning class still sees the un-swapped class table.
	for _, key := range b.fieldOrder {
		newName := b.fields[key]
		out.insertFieldRaw(FieldKey{Class: b.classOf(key.Class), Name: newName}, key.Name)
	}
	for _, key := range b.methodOrder {
		newName := b.methods[key]
		out.insertMethodRaw(MethodKey{Class: b.classOf(key.Class), Name: newName, Descriptor: key.Descriptor}, key.Name)
	}
	for _, old := range b.classOrder {
		out.insertClassRaw(b.classes[old], old)
	}
	return out
}

// Clone returns a deep copy of b.
func (b *MappingStoreBuilder) Clone() *MappingStoreBuilder {
	out := NewMappingStoreBuilder()
	out.classOrder = append([]ClassName(nil), b.classOrder...)
	for k, v := range b.classes {
		out.classes[k] = v
	}
	out.fieldOrder = append([]FieldKey(nil), b.fieldOrder...)
	for k, v := range b.fields {
		out.fields[k] = v
	}
	out.methodOrder = append([]MethodKey(nil), b.methodOrder...)
	for k, v := range b.methods {
		out.methods[k] = v
	}
	return out
}

// Chain sequentially composes other after b, in place: for every mapping
// a -> b_ in self, if other has b_ -> c, the result maps a -> c. Entries
// that originate only in other are translated back into self's original
// domain via a reverse snapshot of self taken before any mutation.
func (b *MappingStoreBuilder) Chain(other *MappingStoreBuilder) error {
	rev, err := b.Reverse().Build()
	if err != nil {
		return err
	}
	for _, ox := range other.classOrder {
		cy := other.classes[ox]
		a, ok := rev.TryGetClass(ox)
		if !ok {
			a = ox
		}
		if err := b.InsertClass(a, cy); err != nil {
			return err
		}
	}
	for _, key := range other.fieldOrder {
		nm := other.fields[key]
		aField := rev.GetField(key)
		if err := b.InsertField(aField, nm); err != nil {
			return err
		}
	}
	for _, key := range other.methodOrder {
		nm := other.methods[key]
		aMethod := rev.GetMethod(key)
		if err := b.InsertMethod(aMethod, nm); err != nil {
			return err
		}
	}
	return nil
}

// MappingsTransformer is the capability hook set used by Transform. Each
// hook returns (value, false) to leave the corresponding entry untouched.
type MappingsTransformer interface {
	TransformClass(old, current ClassName) (ClassName, bool)
	TransformField(key FieldKey, currentName Atom) (Atom, bool)
	TransformMethod(key MethodKey, remappedDescriptor Atom, currentName Atom) (Atom, bool)
}

// NopTransformer implements MappingsTransformer with every hook a no-op;
// embed it to implement only the hooks a transformer actually needs.
type NopTransformer struct{}

func (NopTransformer) TransformClass(ClassName, ClassName) (ClassName, bool)      { return "", false }
func (NopTransformer) TransformField(FieldKey, Atom) (Atom, bool)                 { return "", false }
func (NopTransformer) TransformMethod(MethodKey, Atom, Atom) (Atom, bool)         { return "", false }

// Transform applies t over the builder's tables in place. Order matters:
// fields are transformed first, then methods (seeing descriptors remapped
// through the pre-transform class table), and classes last — so a class
// rename made by this same transform never leaks into the field/method
// hooks that still expect the old class identity.
func (b *MappingStoreBuilder) Transform(t MappingsTransformer) error {
	for _, key := range b.fieldOrder {
		current := b.fields[key]
		fieldView := FieldKey{Class: b.classOf(key.Class), Name: key.Name}
		if newName, ok := t.TransformField(fieldView, current); ok {
			b.fields[key] = newName
		}
	}
	for _, key := range b.methodOrder {
		current := b.methods[key]
		remapped, err := RemapDescriptor(key.Descriptor, b.classOf)
		if err != nil {
			return err
		}
		methodView := MethodKey{Class: b.classOf(key.Class), Name: key.Name, Descriptor: remapped}
		if newName, ok := t.TransformMethod(methodView, remapped, current); ok {
			b.methods[key] = newName
		}
	}
	for _, old := range b.classOrder {
		current := b.classes[old]
		if newClass, ok := t.TransformClass(old, current); ok {
			b.classes[old] = newClass
		}
	}
	return nil
}

// snapshotData is the shared, logically-immutable payload behind a
// MappingSnapshot. MappingSnapshot itself is a thin handle to a
// snapshotData, so copying a MappingSnapshot value is cheap and shares the
// same descriptor cache.
type snapshotData struct {
	classOrder []ClassName
	classes    map[ClassName]ClassName

	fieldOrder []FieldKey
	fields     map[FieldKey]FieldKey

	methodOrder []MethodKey
	methods     map[MethodKey]MethodKey

	mu              sync.RWMutex
	descriptorCache map[Atom]Atom
}

// MappingSnapshot is a frozen, shared-immutable view of a
// MappingStoreBuilder with every field/method key eagerly remapped and a
// lazily-populated cache for descriptors not originally present in the
// methods table.
type MappingSnapshot struct {
	data *snapshotData
}

// Build freezes b into a MappingSnapshot: every method's descriptor is
// remapped once and cached, and every field/method key is materialized
// with its class side already substituted through the class table.
func (b *MappingStoreBuilder) Build() (MappingSnapshot, error) {
	d := &snapshotData{
		classOrder:      append([]ClassName(nil), b.classOrder...),
		classes:         make(map[ClassName]ClassName, len(b.classes)),
		fieldOrder:      append([]FieldKey(nil), b.fieldOrder...),
		fields:          make(map[FieldKey]FieldKey, len(b.fields)),
		methodOrder:     append([]MethodKey(nil), b.methodOrder...),
		methods:         make(map[MethodKey]MethodKey, len(b.methods)),
		descriptorCache: make(map[Atom]Atom),
	}
	for k, v := range b.classes {
		d.classes[k] = v
	}
	classOf := b.classOf

	signatures := make(map[Atom]Atom, len(b.methodOrder))
	for _, key := range b.methodOrder {
		remapped, ok := signatures[key.Descriptor]
		if !ok {
			var err error
			remapped, err = RemapDescriptor(key.Descriptor, classOf)
			if err != nil {
				return MappingSnapshot{}, err
			}
			signatures[key.Descriptor] = remapped
		}
		d.descriptorCache[key.Descriptor] = remapped
	}

	for _, key := range b.fieldOrder {
		d.fields[key] = FieldKey{Class: classOf(key.Class), Name: b.fields[key]}
	}
	for _, key := range b.methodOrder {
		d.methods[key] = MethodKey{
			Class:      classOf(key.Class),
			Name:       b.methods[key],
			Descriptor: signatures[key.Descriptor],
		}
	}
	return MappingSnapshot{data: d}, nil
}

// TryGetClass returns the renamed class for old, if one is explicit.
func (s MappingSnapshot) TryGetClass(old ClassName) (ClassName, bool) {
	v, ok := s.data.classes[old]
	return v, ok
}

// GetClass returns the renamed class for old, or old itself if absent.
func (s MappingSnapshot) GetClass(old ClassName) ClassName {
	if v, ok := s.data.classes[old]; ok {
		return v
	}
	return old
}

// TryGetField returns the remapped field key for key (class side already
// substituted) iff key has an explicit rename.
func (s MappingSnapshot) TryGetField(key FieldKey) (FieldKey, bool) {
	v, ok := s.data.fields[key]
	return v, ok
}

// GetField returns the remapped field key for key. If key has no explicit
// rename, the returned key keeps key's name but still has its class
// substituted through the class table.
func (s MappingSnapshot) GetField(key FieldKey) FieldKey {
	if v, ok := s.data.fields[key]; ok {
		return v
	}
	return FieldKey{Class: s.GetClass(key.Class), Name: key.Name}
}

// TryGetMethod returns the remapped method key for key iff key has an
// explicit rename.
func (s MappingSnapshot) TryGetMethod(key MethodKey) (MethodKey, bool) {
	v, ok := s.data.methods[key]
	return v, ok
}

// GetMethod returns the remapped method key for key, remapping the class
// and every class reference within the descriptor even when key has no
// explicit rename.
func (s MappingSnapshot) GetMethod(key MethodKey) MethodKey {
	if v, ok := s.data.methods[key]; ok {
		return v
	}
	descriptor, err := s.remapSignature(key.Descriptor)
	if err != nil {
		descriptor = key.Descriptor
	}
	return MethodKey{Class: s.GetClass(key.Class), Name: key.Name, Descriptor: descriptor}
}

// remapSignature resolves the remapped form of a descriptor, consulting
// and populating the snapshot's lazy cache under a single
// writer-exclusive, many-reader lock.
func (s MappingSnapshot) remapSignature(original Atom) (Atom, error) {
	s.data.mu.RLock()
	if v, ok := s.data.descriptorCache[original]; ok {
		s.data.mu.RUnlock()
		return v, nil
	}
	s.data.mu.RUnlock()

	remapped, err := RemapDescriptor(original, s.GetClass)
	if err != nil {
		return "", err
	}

	s.data.mu.Lock()
	if v, ok := s.data.descriptorCache[original]; ok {
		s.data.mu.Unlock()
		return v, nil
	}
	s.data.descriptorCache[original] = remapped
	s.data.mu.Unlock()
	return remapped, nil
}

// Classes, Fields and Methods yield (original, renamed) pairs in insertion
// order.
func (s MappingSnapshot) Classes() []ClassPair {
	out := make([]ClassPair, len(s.data.classOrder))
	for i, k := range s.data.classOrder {
		out[i] = ClassPair{Original: k, Renamed: s.data.classes[k]}
	}
	return out
}

func (s MappingSnapshot) Fields() []FieldPair {
	out := make([]FieldPair, len(s.data.fieldOrder))
	for i, k := range s.data.fieldOrder {
		out[i] = FieldPair{Key: k, RenamedName: s.data.fields[k].Name}
	}
	return out
}

func (s MappingSnapshot) Methods() []MethodPair {
	out := make([]MethodPair, len(s.data.methodOrder))
	for i, k := range s.data.methodOrder {
		out[i] = MethodPair{Key: k, RenamedName: s.data.methods[k].Name}
	}
	return out
}

// FieldNames and MethodNames yield only the name pairs, without class
// remapping; they return the same pairs as Fields and Methods.
func (s MappingSnapshot) FieldNames() []FieldPair {
	return s.Fields()
}

func (s MappingSnapshot) MethodNames() []MethodPair {
	return s.Methods()
}
