package scheduler

import (
	"context"
	"os"
	"testing"

	"github.com/jvmmap/supersrg"
	"github.com/jvmmap/supersrg/fetch"
)

func TestParseTarget(t *testing.T) {
	tests := []struct {
		in      string
		want    Target
		wantErr bool
	}{
		{"obf2srg", Target{Original: FormatObf, Renamed: FormatSrg}, false},
		{"obf2srg-onlyobf", Target{Original: FormatObf, Renamed: FormatSrg, Modifier: ModifierOnlyObf}, false},
		{"spigot2mcp", Target{Original: FormatSpigot, Renamed: FormatMcp}, false},
		{"obf2obf", Target{}, true},
		{"obf-srg", Target{}, true},
		{"obf2unknown", Target{}, true},
		{"obf2srg-bogus", Target{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTarget(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseTarget(%q) = nil error, want error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTarget(%q) failed: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseTarget(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
			if got.String() != tt.in {
				t.Errorf("round-trip String() = %q, want %q", got.String(), tt.in)
			}
		})
	}
}

type fakeSrgFetcher struct{ path string }

func (f *fakeSrgFetcher) FetchSrg(ctx context.Context, mcVersion string) (string, error) {
	return f.path, nil
}

type fakeMcpFetcher struct{ tables fetch.McpTables }

func (f *fakeMcpFetcher) FetchMcp(ctx context.Context, mcpVersion, mcVersion string) (fetch.McpTables, error) {
	return f.tables, nil
}

type fakeSpigotFetcher struct{ builder *supersrg.MappingStoreBuilder }

func (f *fakeSpigotFetcher) FetchSpigot(ctx context.Context, commit string) (*supersrg.MappingStoreBuilder, error) {
	return f.builder.Clone(), nil
}

func TestComputerSpigotToMcp(t *testing.T) {
	dir := t.TempDir()
	srgPath := dir + "/obf.srg"
	srgContent := "CL: a/Obf a/Srg\n" +
		"FD: a/Obf/x a/Srg/field_1_x\n"
	if err := os.WriteFile(srgPath, []byte(srgContent), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	spigotBuilder := supersrg.NewMappingStoreBuilder()
	spigotBuilder.InsertClass("a/Obf", "a/Spigot")
	spigotBuilder.InsertField(supersrg.FieldKey{Class: "a/Obf", Name: "x"}, "spigotX")

	sources := Sources{
		Srg:    &fakeSrgFetcher{path: srgPath},
		Mcp:    &fakeMcpFetcher{tables: fetch.McpTables{Fields: map[string]string{"field_1_x": "mcpX"}}},
		Spigot: &fakeSpigotFetcher{builder: spigotBuilder},
	}

	computer := NewComputer(sources, Config{McVersion: "1.17.1", McpVersion: "stable"})

	target, err := ParseTarget("spigot2mcp")
	if err != nil {
		t.Fatalf("ParseTarget failed: %v", err)
	}

	results, err := computer.Run(context.Background(), []Target{target})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	snapshot := results[target]
	got := snapshot.GetField(supersrg.FieldKey{Class: "a/Spigot", Name: "spigotX"})
	if got.Name != "mcpX" {
		t.Errorf("spigot2mcp field name = %q, want mcpX", got.Name)
	}
}
