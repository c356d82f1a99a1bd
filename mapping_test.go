package supersrg

import "testing"

func buildBoxMapping(t *testing.T) MappingSnapshot {
	t.Helper()
	b := NewMappingStoreBuilder()
	if err := b.InsertClass("com/example/Box", "net/techcable/ChainedBox"); err != nil {
		t.Fatalf("InsertClass failed: %v", err)
	}
	key := MethodKey{Class: "com/example/Box", Name: "consume", Descriptor: "(Lcom/example/Box;)V"}
	if err := b.InsertMethod(key, "party"); err != nil {
		t.Fatalf("InsertMethod failed: %v", err)
	}
	snapshot, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return snapshot
}

func TestImplicitClassRemapOnField(t *testing.T) {
	snapshot := buildBoxMapping(t)

	// A field on the same class with no explicit rename still has its
	// class side substituted.
	got := snapshot.GetField(FieldKey{Class: "com/example/Box", Name: "capacity"})
	if got.Class != "net/techcable/ChainedBox" {
		t.Errorf("got.Class = %q, want net/techcable/ChainedBox", got.Class)
	}
	if got.Name != "capacity" {
		t.Errorf("got.Name = %q, want capacity", got.Name)
	}
}

func TestDescriptorConsistency(t *testing.T) {
	snapshot := buildBoxMapping(t)

	key := MethodKey{Class: "com/example/Box", Name: "consume", Descriptor: "(Lcom/example/Box;)V"}
	got := snapshot.GetMethod(key)
	want := "(Lnet/techcable/ChainedBox;)V"
	if string(got.Descriptor) != want {
		t.Errorf("descriptor = %q, want %q", got.Descriptor, want)
	}
	if got.Name != "party" {
		t.Errorf("name = %q, want party", got.Name)
	}
}

func TestReverseIdempotence(t *testing.T) {
	b := NewMappingStoreBuilder()
	b.InsertClass("com/example/Box", "net/techcable/ChainedBox")
	b.InsertMethod(MethodKey{Class: "com/example/Box", Name: "consume", Descriptor: "(Lcom/example/Box;)V"}, "party")

	roundTripped := b.Reverse().Reverse()

	original := b.Classes()
	twice := roundTripped.Classes()
	if len(original) != len(twice) {
		t.Fatalf("class count changed: %d vs %d", len(original), len(twice))
	}
	for i := range original {
		if original[i] != twice[i] {
			t.Errorf("class[%d] = %+v, want %+v", i, twice[i], original[i])
		}
	}
}

func TestChainExample(t *testing.T) {
	// com/example/Box.consume -> party, chained with party -> eat and
	// com/example/Box -> net/techcable/ChainedBox, gives
	// net/techcable/ChainedBox.eat.
	first := NewMappingStoreBuilder()
	first.InsertClass("com/example/Box", "com/example/Box")
	first.InsertMethod(MethodKey{Class: "com/example/Box", Name: "consume", Descriptor: "()V"}, "party")

	second := NewMappingStoreBuilder()
	second.InsertClass("com/example/Box", "net/techcable/ChainedBox")
	second.InsertMethod(MethodKey{Class: "com/example/Box", Name: "party", Descriptor: "()V"}, "eat")

	if err := first.Chain(second); err != nil {
		t.Fatalf("Chain failed: %v", err)
	}

	snapshot, err := first.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	got := snapshot.GetMethod(MethodKey{Class: "com/example/Box", Name: "consume", Descriptor: "()V"})
	if got.Name != "eat" {
		t.Errorf("chained name = %q, want eat", got.Name)
	}
	if got.Class != "net/techcable/ChainedBox" {
		t.Errorf("chained class = %q, want net/techcable/ChainedBox", got.Class)
	}
}

func TestChainIdentity(t *testing.T) {
	s := NewMappingStoreBuilder()
	s.InsertClass("com/example/Box", "net/techcable/ChainedBox")

	empty := NewMappingStoreBuilder()
	if err := s.Chain(empty); err != nil {
		t.Fatalf("Chain with empty failed: %v", err)
	}
	got := s.Classes()[0]
	if got.Renamed != "net/techcable/ChainedBox" {
		t.Errorf("chain(S, empty) mutated S: %+v", got)
	}
}

type classOnlyTransformer struct {
	NopTransformer
	rename map[ClassName]ClassName
}

func (c classOnlyTransformer) TransformClass(old, current ClassName) (ClassName, bool) {
	if v, ok := c.rename[old]; ok {
		return v, true
	}
	return "", false
}

func TestTransform(t *testing.T) {
	b := NewMappingStoreBuilder()
	b.InsertClass("com/example/Box", "com/example/Box")

	xf := classOnlyTransformer{rename: map[ClassName]ClassName{"com/example/Box": "net/techcable/ChainedBox"}}
	if err := b.Transform(xf); err != nil {
		t.Fatalf("Transform failed: %v", err)
	}

	snapshot, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if got := snapshot.GetClass("com/example/Box"); got != "net/techcable/ChainedBox" {
		t.Errorf("GetClass = %q, want net/techcable/ChainedBox", got)
	}
}
