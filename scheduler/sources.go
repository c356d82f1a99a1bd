package scheduler

import (
	"os"

	"github.com/jvmmap/supersrg"
)

// loadMappingFile parses a mapping file at path (SRG, CSRG, or binary,
// chosen by extension) into a snapshot.
func loadMappingFile(path string) (supersrg.MappingSnapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return supersrg.MappingSnapshot{}, err
	}
	defer f.Close()

	switch supersrg.DetectFormat(path) {
	case supersrg.FormatBinary:
		return supersrg.DecodeMappings(f)
	case supersrg.FormatCSRG:
		builder := supersrg.NewMappingStoreBuilder()
		if err := supersrg.ParseCsrg(f, builder); err != nil {
			return supersrg.MappingSnapshot{}, err
		}
		return builder.Build()
	default:
		builder := supersrg.NewMappingStoreBuilder()
		if err := supersrg.ParseSrg(f, builder); err != nil {
			return supersrg.MappingSnapshot{}, err
		}
		return builder.Build()
	}
}
