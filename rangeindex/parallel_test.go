package rangeindex

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jvmmap/supersrg"
)

func TestParallelApplierRewritesTree(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()

	if err := os.WriteFile(filepath.Join(srcDir, "Foo.java"), []byte("foo.bar()"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	if err := os.WriteFile(filepath.Join(srcDir, "Empty.java"), nil, 0o644); err != nil {
		t.Fatalf("writing empty fixture: %v", err)
	}

	rangeMap := &RangeMap{
		Files: map[string]FileRanges{
			"Foo.java": {
				MethodRefs: []MethodRef{
					{Start: 4, End: 7, Method: supersrg.MethodKey{Class: "Foo", Name: "bar", Descriptor: "()V"}},
				},
			},
			"Empty.java": {},
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

	applier := &ParallelApplier{NumWorkers: 2}
	total, err := applier.ApplyAll(context.Background(), rangeMap, snapshot, srcDir, dstDir)
	if err != nil {
		t.Fatalf("ApplyAll failed: %v", err)
	}
	if total != 1 {
		t.Errorf("total changed = %d, want 1", total)
	}

	got, err := os.ReadFile(filepath.Join(dstDir, "Foo.java"))
	if err != nil {
		t.Fatalf("reading rewritten file: %v", err)
	}
	if string(got) != "foo.baz()" {
		t.Errorf("rewritten content = %q, want foo.baz()", got)
	}
}
