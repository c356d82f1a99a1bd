package supersrg

import (
	"bytes"
	"testing"
)

func FuzzDecodeMappings(f *testing.F) {
	seed := NewMappingStoreBuilder()
	seed.InsertClass("com/example/Box", "net/techcable/ChainedBox")
	seed.InsertField(FieldKey{Class: "com/example/Box", Name: "capacity"}, "size")
	seed.InsertMethod(MethodKey{Class: "com/example/Box", Name: "consume", Descriptor: "(Lcom/example/Box;)V"}, "party")
	snapshot, err := seed.Build()
	if err != nil {
		f.Fatalf("Build failed: %v", err)
	}
	var buf bytes.Buffer
	if err := EncodeMappings(&buf, snapshot, ""); err != nil {
		f.Fatalf("EncodeMappings failed: %v", err)
	}
	f.Add(buf.Bytes())
	f.Add([]byte(magicHeader))
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, data []byte) {
		// DecodeMappings must never panic on arbitrary input; a non-nil
		// error is an entirely acceptable outcome for malformed bytes.
		decoded, err := DecodeMappings(bytes.NewReader(data))
		if err != nil {
			return
		}
		// Any snapshot it does manage to decode must re-encode without
		// error, though not necessarily byte-identically (identity
		// members are equal to their absence).
		var reencoded bytes.Buffer
		if err := EncodeMappings(&reencoded, decoded, ""); err != nil {
			t.Fatalf("re-encoding a successfully decoded stream failed: %v", err)
		}
	})
}
