package supersrg

import "strings"

// Format names an on-disk mapping representation.
type Format int

const (
	FormatSRG Format = iota
	FormatCSRG
	FormatBinary
)

// DetectFormat chooses a Format from path's extension: ".csrg" -> CSRG,
// ".srg.dat" -> binary, ".srg" (or anything else) -> SRG. Callers are
// expected to log a warning when path had no recognized extension at all;
// DetectFormat itself just returns the default.
func DetectFormat(path string) Format {
	switch {
	case strings.HasSuffix(path, ".csrg"):
		return FormatCSRG
	case strings.HasSuffix(path, ".srg.dat"):
		return FormatBinary
	default:
		return FormatSRG
	}
}

func (f Format) String() string {
	switch f {
	case FormatSRG:
		return "srg"
	case FormatCSRG:
		return "csrg"
	case FormatBinary:
		return "binary"
	default:
		return "unknown"
	}
}
