package rangeindex

import (
	"strings"
	"testing"

	"github.com/jvmmap/supersrg"
)

func TestApplyRewritesMethodReference(t *testing.T) {
	src := "foo.bar()"
	ranges := FileRanges{
		MethodRefs: []MethodRef{
			{Start: 4, End: 7, Method: supersrg.MethodKey{Class: "Foo", Name: "bar", Descriptor: "()V"}},
		},
	}

	builder := supersrg.NewMappingStoreBuilder()
	if err := builder.InsertMethod(supersrg.MethodKey{Class: "Foo", Name: "bar", Descriptor: "()V"}, "baz"); err != nil {
		t.Fatalf("InsertMethod failed: %v", err)
	}
	snapshot, err := builder.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	var out strings.Builder
	n, err := Apply("Foo.java", strings.NewReader(src), &out, ranges, snapshot)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if out.String() != "foo.baz()" {
		t.Errorf("output = %q, want foo.baz()", out.String())
	}
	if n != 1 {
		t.Errorf("numChanged = %d, want 1", n)
	}
}

func TestApplyLeavesUnmappedReferenceUnchanged(t *testing.T) {
	src := "foo.bar()"
	ranges := FileRanges{
		MethodRefs: []MethodRef{
			{Start: 4, End: 7, Method: supersrg.MethodKey{Class: "Foo", Name: "bar", Descriptor: "()V"}},
		},
	}
	builder := supersrg.NewMappingStoreBuilder()
	snapshot, err := builder.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	var out strings.Builder
	n, err := Apply("Foo.java", strings.NewReader(src), &out, ranges, snapshot)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if out.String() != src {
		t.Errorf("output = %q, want %q", out.String(), src)
	}
	if n != 0 {
		t.Errorf("numChanged = %d, want 0", n)
	}
}

func TestApplyRejectsMismatch(t *testing.T) {
	src := "foo.qux()"
	ranges := FileRanges{
		MethodRefs: []MethodRef{
			{Start: 4, End: 7, Method: supersrg.MethodKey{Class: "Foo", Name: "bar", Descriptor: "()V"}},
		},
	}
	builder := supersrg.NewMappingStoreBuilder()
	snapshot, err := builder.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	var out strings.Builder
	_, err = Apply("Foo.java", strings.NewReader(src), &out, ranges, snapshot)
	if _, ok := err.(*ReferenceMismatchError); !ok {
		t.Fatalf("expected ReferenceMismatchError, got %v", err)
	}
}

func TestApplyRejectsOverlap(t *testing.T) {
	src := "foobar"
	ranges := FileRanges{
		MethodRefs: []MethodRef{
			{Start: 0, End: 4, Method: supersrg.MethodKey{Class: "Foo", Name: "foob", Descriptor: "()V"}},
			{Start: 3, End: 6, Method: supersrg.MethodKey{Class: "Foo", Name: "bar", Descriptor: "()V"}},
		},
	}
	builder := supersrg.NewMappingStoreBuilder()
	snapshot, err := builder.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	var out strings.Builder
	_, err = Apply("Foo.java", strings.NewReader(src), &out, ranges, snapshot)
	if _, ok := err.(*OverlappingReferenceError); !ok {
		t.Fatalf("expected OverlappingReferenceError, got %v", err)
	}
}
