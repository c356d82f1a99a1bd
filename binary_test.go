package supersrg

import (
	"bytes"
	"testing"
)

func TestBinaryRoundTrip(t *testing.T) {
	b := NewMappingStoreBuilder()
	b.InsertClass("com/example/Box", "net/techcable/ChainedBox")
	b.InsertField(FieldKey{Class: "com/example/Box", Name: "capacity"}, "size")
	b.InsertMethod(MethodKey{Class: "com/example/Box", Name: "consume", Descriptor: "(Lcom/example/Box;)V"}, "party")

	snapshot, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	for _, compr := range []CompressionID{CompressionNone, CompressionGzip, CompressionLZ4, CompressionLZMA} {
		t.Run(string(compr)+"-or-none", func(t *testing.T) {
			var buf bytes.Buffer
			if err := EncodeMappings(&buf, snapshot, compr); err != nil {
				t.Fatalf("EncodeMappings failed: %v", err)
			}

			decoded, err := DecodeMappings(&buf)
			if err != nil {
				t.Fatalf("DecodeMappings failed: %v", err)
			}

			if got := decoded.GetClass("com/example/Box"); got != "net/techcable/ChainedBox" {
				t.Errorf("class = %q", got)
			}
			field := decoded.GetField(FieldKey{Class: "com/example/Box", Name: "capacity"})
			if field.Name != "size" {
				t.Errorf("field name = %q, want size", field.Name)
			}
			method := decoded.GetMethod(MethodKey{Class: "com/example/Box", Name: "consume", Descriptor: "(Lcom/example/Box;)V"})
			if method.Name != "party" {
				t.Errorf("method name = %q, want party", method.Name)
			}
			if string(method.Descriptor) != "(Lnet/techcable/ChainedBox;)V" {
				t.Errorf("method descriptor = %q", method.Descriptor)
			}
		})
	}
}

func TestBinaryRoundTripForwardClassReference(t *testing.T) {
	// a is inserted before b, but a's method references b in its
	// descriptor. The method's own name is unchanged, so its wire
	// entry carries an empty renamed name; only b's later rename makes
	// the descriptor actually differ. Decoding must not reject this as
	// an unchanged method just because b hadn't been read yet.
	b := NewMappingStoreBuilder()
	b.InsertClass("a", "A")
	b.InsertClass("b", "B")
	b.InsertMethod(MethodKey{Class: "a", Name: "m", Descriptor: "(Lb;)V"}, "m")

	snapshot, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	var buf bytes.Buffer
	if err := EncodeMappings(&buf, snapshot, ""); err != nil {
		t.Fatalf("EncodeMappings failed: %v", err)
	}

	decoded, err := DecodeMappings(&buf)
	if err != nil {
		t.Fatalf("DecodeMappings failed: %v", err)
	}

	method := decoded.GetMethod(MethodKey{Class: "a", Name: "m", Descriptor: "(Lb;)V"})
	if method.Name != "m" {
		t.Errorf("method name = %q, want m", method.Name)
	}
	if string(method.Descriptor) != "(LB;)V" {
		t.Errorf("method descriptor = %q, want (LB;)V", method.Descriptor)
	}
}

func TestBinaryRejectsUnchangedField(t *testing.T) {
	// Hand-craft a stream whose field record has a renamed name equal to
	// its original, which EncodeMappings itself would never emit.
	var body bytes.Buffer
	body.Write([]byte{0, 0, 0, 0, 0, 0, 0, 1}) // one class
	writeStr16(&body, "com/example/Box")
	writeStr16(&body, "") // no class rename
	body.Write([]byte{0, 0, 0, 0})             // no methods
	body.Write([]byte{0, 0, 0, 1})             // one field
	writeStr16(&body, "capacity")
	writeStr16(&body, "capacity") // unchanged name: forbidden

	var stream bytes.Buffer
	stream.WriteString(magicHeader)
	stream.Write([]byte{0, 0, 0, 1})
	writeStr16(&stream, "")
	stream.Write(body.Bytes())

	_, err := DecodeMappings(&stream)
	if _, ok := err.(*UnchangedFieldError); !ok {
		t.Fatalf("expected UnchangedFieldError, got %v", err)
	}
}

func TestBinaryRejectsTrailingBytes(t *testing.T) {
	b := NewMappingStoreBuilder()
	snapshot, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	var buf bytes.Buffer
	if err := EncodeMappings(&buf, snapshot, ""); err != nil {
		t.Fatalf("EncodeMappings failed: %v", err)
	}
	buf.WriteByte(0xFF)

	_, err = DecodeMappings(&buf)
	if _, ok := err.(*UnexpectedTrailingError); !ok {
		t.Fatalf("expected UnexpectedTrailingError, got %v", err)
	}
}
