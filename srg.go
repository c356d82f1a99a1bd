package supersrg

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// UnknownSrgTagError is returned for an SRG line whose three-character tag
// is not one of CL/FD/MD/PK.
type UnknownSrgTagError struct {
	Tag string
}

func (e *UnknownSrgTagError) Error() string {
	return fmt.Sprintf("unknown SRG tag %q", e.Tag)
}

// UnexpectedWordCountError is returned when an SRG line has a different
// number of whitespace-delimited words than its tag requires. CSRG lines
// report a bad word count with UnexpectedArityError instead.
type UnexpectedWordCountError struct {
	Expected, Actual int
}

func (e *UnexpectedWordCountError) Error() string {
	return fmt.Sprintf("expected %d words, got %d", e.Expected, e.Actual)
}

// SrgParserOptions configures ParseSrg.
type SrgParserOptions struct {
	// IgnorePackageMappings drops PK: lines instead of erroring on them.
	// ParseSrg sets it to true; the zero value (false) makes PK: lines an
	// error.
	IgnorePackageMappings bool
}

// ParseSrg reads line-oriented SRG text from r into builder. Blank lines
// and lines starting with '#' are ignored; PK: lines are ignored (the
// default, matching "ignored by default" for package renames).
func ParseSrg(r io.Reader, builder *MappingStoreBuilder) error {
	return ParseSrgOptions(r, builder, SrgParserOptions{IgnorePackageMappings: true})
}

// ParseSrgOptions is ParseSrg with explicit options.
func ParseSrgOptions(r io.Reader, builder *MappingStoreBuilder, opts SrgParserOptions) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := parseSrgLine(line, builder, opts); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func parseSrgLine(line string, builder *MappingStoreBuilder, opts SrgParserOptions) error {
	if len(line) < 4 || line[3] != ' ' {
		return &UnknownSrgTagError{Tag: line}
	}
	tag := line[:2]
	words := strings.Fields(line[4:])

	switch tag {
	case "CL":
		if len(words) != 2 {
			return &UnexpectedWordCountError{Expected: 2, Actual: len(words)}
		}
		old, err := ParseInternalName(words[0])
		if err != nil {
			return err
		}
		new, err := ParseInternalName(words[1])
		if err != nil {
			return err
		}
		return builder.InsertClass(old, new)

	case "FD":
		if len(words) != 2 {
			return &UnexpectedWordCountError{Expected: 2, Actual: len(words)}
		}
		class, name, err := ParseMemberName(words[0])
		if err != nil {
			return err
		}
		_, newName, err := ParseMemberName(words[1])
		if err != nil {
			return err
		}
		return builder.InsertField(FieldKey{Class: class, Name: name}, newName)

	case "MD":
		if len(words) != 4 {
			return &UnexpectedWordCountError{Expected: 4, Actual: len(words)}
		}
		class, name, err := ParseMemberName(words[0])
		if err != nil {
			return err
		}
		if _, err := ParseDescriptor(words[1]); err != nil {
			return err
		}
		_, newName, err := ParseMemberName(words[2])
		if err != nil {
			return err
		}
		return builder.InsertMethod(MethodKey{Class: class, Name: name, Descriptor: Intern(words[1])}, newName)

	case "PK":
		if !opts.IgnorePackageMappings {
			return &UnknownSrgTagError{Tag: tag}
		}
		return nil

	default:
		return &UnknownSrgTagError{Tag: tag}
	}
}

// SrgEncodeOptions configures WriteSrg.
type SrgEncodeOptions struct {
	// IncludePackages would emit PK: lines; this implementation never
	// produces package mappings (they are read-only pass-through input),
	// so this option exists only to document that omission and defaults
	// to false.
	IncludePackages bool
}

// WriteSrg writes snapshot to w in SRG text form: every class, then every
// field, then every method. The original side of each member line is
// written as stored; the renamed side has its class (and, for methods, its
// descriptor) remapped through the class table.
func WriteSrg(w io.Writer, snapshot MappingSnapshot, _ SrgEncodeOptions) error {
	bw := bufio.NewWriter(w)
	for _, pair := range snapshot.Classes() {
		if _, err := fmt.Fprintf(bw, "CL: %s %s\n", pair.Original, pair.Renamed); err != nil {
			return err
		}
	}
	for _, pair := range snapshot.Fields() {
		renamed := snapshot.GetField(pair.Key)
		if _, err := fmt.Fprintf(bw, "FD: %s %s\n",
			FormatMemberName(pair.Key.Class, pair.Key.Name),
			FormatMemberName(renamed.Class, renamed.Name)); err != nil {
			return err
		}
	}
	for _, pair := range snapshot.Methods() {
		renamed := snapshot.GetMethod(pair.Key)
		if _, err := fmt.Fprintf(bw, "MD: %s %s %s %s\n",
			FormatMemberName(pair.Key.Class, pair.Key.Name), pair.Key.Descriptor,
			FormatMemberName(renamed.Class, renamed.Name), renamed.Descriptor); err != nil {
			return err
		}
	}
	return bw.Flush()
}
