// Package scheduler implements the dependency-driven target computer: a
// multi-worker engine that resolves named mapping targets like
// "obf2srg-onlyobf" or "spigot2mcp", setting a target aside until its
// dependencies land in the shared results table and re-queuing it then,
// and cancelling the whole run on the first hard failure.
package scheduler

import (
	"fmt"
	"strings"
)

// Format names one of the four naming schemes a target can name as its
// source or destination.
type Format string

const (
	FormatObf    Format = "obf"
	FormatSrg    Format = "srg"
	FormatMcp    Format = "mcp"
	FormatSpigot Format = "spigot"
)

var knownFormats = map[Format]bool{
	FormatObf: true, FormatSrg: true, FormatMcp: true, FormatSpigot: true,
}

// Modifier narrows the mapping a target produces.
type Modifier string

const (
	ModifierNone    Modifier = ""
	ModifierClasses Modifier = "classes"
	ModifierMembers Modifier = "members"
	ModifierOnlyObf Modifier = "onlyobf"
)

var knownModifiers = map[Modifier]bool{
	ModifierNone: true, ModifierClasses: true, ModifierMembers: true, ModifierOnlyObf: true,
}

// Target is a symbolic request for a mapping set: a source scheme, a
// destination scheme, and an optional modifier.
type Target struct {
	Original Format
	Renamed  Format
	Modifier Modifier
}

// InvalidTargetError wraps a malformed or semantically invalid target
// string.
type InvalidTargetError struct {
	Input  string
	Reason string
}

func (e *InvalidTargetError) Error() string {
	return fmt.Sprintf("invalid target %q: %s", e.Input, e.Reason)
}

// ParseTarget parses a string of the form ORIGINAL2RENAMED or
// ORIGINAL2RENAMED-MODIFIER.
func ParseTarget(s string) (Target, error) {
	base := s
	modifier := ModifierNone
	if idx := strings.IndexByte(s, '-'); idx >= 0 {
		base = s[:idx]
		modifier = Modifier(s[idx+1:])
		if !knownModifiers[modifier] {
			return Target{}, &InvalidTargetError{Input: s, Reason: fmt.Sprintf("unknown modifier %q", modifier)}
		}
	}
	idx := strings.Index(base, "2")
	if idx < 0 {
		return Target{}, &InvalidTargetError{Input: s, Reason: "missing '2' separator"}
	}
	original := Format(base[:idx])
	renamed := Format(base[idx+1:])
	if !knownFormats[original] {
		return Target{}, &InvalidTargetError{Input: s, Reason: fmt.Sprintf("unknown source format %q", original)}
	}
	if !knownFormats[renamed] {
		return Target{}, &InvalidTargetError{Input: s, Reason: fmt.Sprintf("unknown destination format %q", renamed)}
	}
	if original == renamed {
		return Target{}, &InvalidTargetError{Input: s, Reason: "original and renamed formats are identical"}
	}
	return Target{Original: original, Renamed: renamed, Modifier: modifier}, nil
}

// String renders t back to its canonical target-string form.
func (t Target) String() string {
	s := string(t.Original) + "2" + string(t.Renamed)
	if t.Modifier != ModifierNone {
		s += "-" + string(t.Modifier)
	}
	return s
}

// Unmodified returns t with its modifier stripped.
func (t Target) Unmodified() Target {
	return Target{Original: t.Original, Renamed: t.Renamed}
}

// Reversed returns the target requesting the opposite direction.
func (t Target) Reversed() Target {
	return Target{Original: t.Renamed, Renamed: t.Original, Modifier: t.Modifier}
}
