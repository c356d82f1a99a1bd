package supersrg

import "testing"

func TestParseDescriptorRoundTrip(t *testing.T) {
	tests := []string{
		"()V",
		"(I)V",
		"(Lcom/example/Box;I)Lcom/example/Box;",
		"([I)V",
		"([[Lcom/example/Box;)V",
		"(BSIJDFCZ)V",
	}

	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			parsed, err := ParseDescriptor(in)
			if err != nil {
				t.Fatalf("ParseDescriptor(%q) failed: %v", in, err)
			}
			if got := parsed.String(); got != in {
				t.Errorf("round-trip = %q, want %q", got, in)
			}
		})
	}
}

func TestParseDescriptorErrors(t *testing.T) {
	tests := []string{
		"",
		"I)V",
		"(I",
		"(Lcom/example/Box)V",
		"([)V",
		"(X)V",
	}
	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			if _, err := ParseDescriptor(in); err == nil {
				t.Fatalf("ParseDescriptor(%q) = nil error, want error", in)
			}
		})
	}
}

func TestRemapDescriptor(t *testing.T) {
	f := func(c ClassName) ClassName {
		if c == "com/example/Box" {
			return "net/techcable/ChainedBox"
		}
		return c
	}

	remapped, err := RemapDescriptor("(Lcom/example/Box;I)Lcom/example/Box;", f)
	if err != nil {
		t.Fatalf("RemapDescriptor failed: %v", err)
	}
	want := Atom("(Lnet/techcable/ChainedBox;I)Lnet/techcable/ChainedBox;")
	if remapped != want {
		t.Errorf("remapped = %q, want %q", remapped, want)
	}

	unchanged, err := RemapDescriptor("(I)V", f)
	if err != nil {
		t.Fatalf("RemapDescriptor failed: %v", err)
	}
	if unchanged != Atom("(I)V") {
		t.Errorf("unchanged descriptor mutated: %q", unchanged)
	}
}
