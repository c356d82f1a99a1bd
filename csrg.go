package supersrg

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// UnexpectedArityError is returned for a CSRG line whose word count does
// not match any known record shape (2, 3, or 4 words).
type UnexpectedArityError struct {
	Words int
}

func (e *UnexpectedArityError) Error() string {
	return fmt.Sprintf("unexpected CSRG line arity: %d words", e.Words)
}

// ParseCsrg reads whitespace-delimited CSRG text from r into builder.
// Arity selects the record type: 2 words -> class, 3 -> field (class, old,
// new), 4 -> method (class, old, descriptor, new). Comments and blank
// lines are ignored.
func ParseCsrg(r io.Reader, builder *MappingStoreBuilder) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if err := parseCsrgLine(trimmed, builder); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func parseCsrgLine(line string, builder *MappingStoreBuilder) error {
	words := strings.Fields(line)
	switch len(words) {
	case 2:
		old, err := ParseInternalName(words[0])
		if err != nil {
			return err
		}
		new, err := ParseInternalName(words[1])
		if err != nil {
			return err
		}
		return builder.InsertClass(old, new)

	case 3:
		class, err := ParseInternalName(words[0])
		if err != nil {
			return err
		}
		return builder.InsertField(FieldKey{Class: class, Name: Intern(words[1])}, Intern(words[2]))

	case 4:
		class, err := ParseInternalName(words[0])
		if err != nil {
			return err
		}
		if _, err := ParseDescriptor(words[2]); err != nil {
			return err
		}
		key := MethodKey{Class: class, Name: Intern(words[1]), Descriptor: Intern(words[2])}
		return builder.InsertMethod(key, Intern(words[3]))

	default:
		return &UnexpectedArityError{Words: len(words)}
	}
}
