package supersrg

import "testing"

func TestParseInternalName(t *testing.T) {
	tests := []struct {
		in      string
		want    ClassName
		wantErr bool
	}{
		{"com/example/Box", "com/example/Box", false},
		{"", "", true},
		{"com.example.Box", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseInternalName(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseInternalName(%q) = nil error, want error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseInternalName(%q) failed: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseInternalName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseMemberName(t *testing.T) {
	class, member, err := ParseMemberName("com/example/Box/consume")
	if err != nil {
		t.Fatalf("ParseMemberName failed: %v", err)
	}
	if class != "com/example/Box" {
		t.Errorf("class = %q, want com/example/Box", class)
	}
	if member != "consume" {
		t.Errorf("member = %q, want consume", member)
	}

	if _, _, err := ParseMemberName("consume"); err != ErrMissingSeparator {
		t.Errorf("expected ErrMissingSeparator, got %v", err)
	}
}

func TestFormatMemberName(t *testing.T) {
	got := FormatMemberName("com/example/Box", "consume")
	if got != "com/example/Box/consume" {
		t.Errorf("FormatMemberName = %q", got)
	}
}
