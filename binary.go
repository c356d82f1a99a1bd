package supersrg

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

const (
	magicHeader    = "SuperSrg binary mappings\x00"
	currentVersion = uint32(1)
)

// UnexpectedHeaderError is returned when the decoded stream does not begin
// with magicHeader.
type UnexpectedHeaderError struct {
	Got []byte
}

func (e *UnexpectedHeaderError) Error() string {
	return fmt.Sprintf("unexpected header bytes %q", e.Got)
}

// UnexpectedVersionError is returned for a framing version this decoder
// does not understand.
type UnexpectedVersionError struct {
	Version uint32
}

func (e *UnexpectedVersionError) Error() string {
	return fmt.Sprintf("unexpected mappings version %d", e.Version)
}

// UnchangedFieldError is returned when a decoded field entry's renamed name
// equals its original name, which the on-disk form forbids.
type UnchangedFieldError struct {
	Key FieldKey
}

func (e *UnchangedFieldError) Error() string {
	return fmt.Sprintf("field %s stored with unchanged name", e.Key)
}

// UnchangedMethodError is returned when a decoded method entry has both an
// unchanged name and an unchanged descriptor.
type UnchangedMethodError struct {
	Key MethodKey
}

func (e *UnchangedMethodError) Error() string {
	return fmt.Sprintf("method %s stored with unchanged name and descriptor", e.Key)
}

// UnexpectedTrailingError is returned when bytes remain in the
// (decompressed) stream after the last field of the last class.
type UnexpectedTrailingError struct {
	Bytes int
}

func (e *UnexpectedTrailingError) Error() string {
	return fmt.Sprintf("%d unexpected trailing byte(s) after mappings stream", e.Bytes)
}

func writeStr16(w io.Writer, s string) error {
	if len(s) > 0xFFFF {
		return fmt.Errorf("string of length %d exceeds str16 limit", len(s))
	}
	var lenBuf [2]byte
	binary.BigEndian.PutUint16(lenBuf[:], uint16(len(s)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readStr16(r io.Reader) (string, error) {
	var lenBuf [2]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return "", err
	}
	n := binary.BigEndian.Uint16(lenBuf[:])
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// encodedMethod/encodedField mirror one member record of the framing,
// already decided to be worth emitting.
type encodedMethod struct {
	key         MethodKey
	renamedName Atom // "" means name unchanged
}

type encodedField struct {
	key         FieldKey
	renamedName Atom
}

// EncodeMappings writes snapshot to w in the framed binary container
// format, compressed per compr. Identity members (unchanged name for
// fields; unchanged name and descriptor for methods) are suppressed, as
// required of the canonical on-disk form.
func EncodeMappings(w io.Writer, snapshot MappingSnapshot, compr CompressionID) error {
	if err := validateCompressionID(compr); err != nil {
		return err
	}
	if _, err := io.WriteString(w, magicHeader); err != nil {
		return err
	}
	var verBuf [4]byte
	binary.BigEndian.PutUint32(verBuf[:], currentVersion)
	if _, err := w.Write(verBuf[:]); err != nil {
		return err
	}
	if err := writeStr16(w, string(compr)); err != nil {
		return err
	}

	body := &bytes.Buffer{}
	if err := encodeBody(body, snapshot); err != nil {
		return err
	}

	cw, err := newCompressingWriter(w, compr)
	if err != nil {
		return err
	}
	if _, err := cw.Write(body.Bytes()); err != nil {
		return err
	}
	return cw.Close()
}

func encodeBody(w io.Writer, snapshot MappingSnapshot) error {
	type classGroup struct {
		original ClassName
		renamed  ClassName // "" sentinel handled separately
		hasClass bool
		methods  []encodedMethod
		fields   []encodedField
	}

	order := make([]ClassName, 0)
	groups := make(map[ClassName]*classGroup)

	ensure := func(c ClassName) *classGroup {
		g, ok := groups[c]
		if !ok {
			g = &classGroup{original: c}
			groups[c] = g
			order = append(order, c)
		}
		return g
	}

	for _, pair := range snapshot.Classes() {
		g := ensure(pair.Original)
		g.hasClass = true
		if pair.Renamed != pair.Original {
			g.renamed = pair.Renamed
		}
	}
	for _, pair := range snapshot.Methods() {
		original := pair.Key
		renamed := snapshot.data.methods[original]
		nameChanged := renamed.Name != original.Name
		descChanged := renamed.Descriptor != original.Descriptor
		if !nameChanged && !descChanged {
			continue
		}
		g := ensure(original.Class)
		em := encodedMethod{key: original}
		if nameChanged {
			em.renamedName = renamed.Name
		}
		g.methods = append(g.methods, em)
	}
	for _, pair := range snapshot.Fields() {
		original := pair.Key
		renamed := snapshot.data.fields[original]
		if renamed.Name == original.Name {
			continue
		}
		g := ensure(original.Class)
		g.fields = append(g.fields, encodedField{key: original, renamedName: renamed.Name})
	}

	var numClasses uint64
	for _, c := range order {
		_ = c
		numClasses++
	}
	var countBuf [8]byte
	binary.BigEndian.PutUint64(countBuf[:], numClasses)
	if _, err := w.Write(countBuf[:]); err != nil {
		return err
	}

	for _, c := range order {
		g := groups[c]
		if err := writeStr16(w, string(g.original)); err != nil {
			return err
		}
		if err := writeStr16(w, string(g.renamed)); err != nil {
			return err
		}

		var methodCountBuf [4]byte
		binary.BigEndian.PutUint32(methodCountBuf[:], uint32(len(g.methods)))
		if _, err := w.Write(methodCountBuf[:]); err != nil {
			return err
		}
		for _, m := range g.methods {
			if err := writeStr16(w, string(m.key.Name)); err != nil {
				return err
			}
			if err := writeStr16(w, string(m.renamedName)); err != nil {
				return err
			}
			if err := writeStr16(w, string(m.key.Descriptor)); err != nil {
				return err
			}
			if err := writeStr16(w, ""); err != nil { // renamed descriptor always re-derived
				return err
			}
		}

		var fieldCountBuf [4]byte
		binary.BigEndian.PutUint32(fieldCountBuf[:], uint32(len(g.fields)))
		if _, err := w.Write(fieldCountBuf[:]); err != nil {
			return err
		}
		for _, f := range g.fields {
			if err := writeStr16(w, string(f.key.Name)); err != nil {
				return err
			}
			if err := writeStr16(w, string(f.renamedName)); err != nil {
				return err
			}
		}
	}
	return nil
}

// DecodeMappings reads a framed binary container from r and returns the
// resulting snapshot. The entire (possibly decompressed) stream must be
// consumed; any trailing bytes are an error.
func DecodeMappings(r io.Reader) (MappingSnapshot, error) {
	var header [len(magicHeader)]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return MappingSnapshot{}, &UnexpectedHeaderError{Got: header[:]}
	}
	if string(header[:]) != magicHeader {
		return MappingSnapshot{}, &UnexpectedHeaderError{Got: header[:]}
	}

	var verBuf [4]byte
	if _, err := io.ReadFull(r, verBuf[:]); err != nil {
		return MappingSnapshot{}, err
	}
	version := binary.BigEndian.Uint32(verBuf[:])
	if version != currentVersion {
		return MappingSnapshot{}, &UnexpectedVersionError{Version: version}
	}

	comprStr, err := readStr16(r)
	if err != nil {
		return MappingSnapshot{}, err
	}
	compr := CompressionID(comprStr)
	if err := validateCompressionID(compr); err != nil {
		return MappingSnapshot{}, err
	}

	dr, err := newDecompressingReader(r, compr)
	if err != nil {
		return MappingSnapshot{}, err
	}

	builder := NewMappingStoreBuilder()
	if err := decodeBody(dr, builder); err != nil {
		return MappingSnapshot{}, err
	}

	// Enforce "must consume the entire stream": any further byte is
	// UnexpectedTrailing.
	var probe [1]byte
	n, err := dr.Read(probe[:])
	if err != nil && err != io.EOF {
		return MappingSnapshot{}, err
	}
	if n > 0 {
		return MappingSnapshot{}, &UnexpectedTrailingError{Bytes: n}
	}

	return builder.Build()
}

// pendingIdentityMethod is a method whose wire entry carried an empty
// renamed name or one equal to its original name. Whether that's legal (its descriptor is also unchanged,
// once every class in the stream has been inserted) can only be decided
// after the full class table is known, since a method in an
// already-read group may reference a class renamed by a group read
// later.
type pendingIdentityMethod struct {
	key MethodKey
}

func decodeBody(r io.Reader, builder *MappingStoreBuilder) error {
	var countBuf [8]byte
	if _, err := io.ReadFull(r, countBuf[:]); err != nil {
		return err
	}
	numClasses := binary.BigEndian.Uint64(countBuf[:])

	var pending []pendingIdentityMethod

	for i := uint64(0); i < numClasses; i++ {
		originalStr, err := readStr16(r)
		if err != nil {
			return err
		}
		original, err := ParseInternalName(originalStr)
		if err != nil {
			return err
		}
		renamedStr, err := readStr16(r)
		if err != nil {
			return err
		}
		if renamedStr != "" {
			renamed, err := ParseInternalName(renamedStr)
			if err != nil {
				return err
			}
			if err := builder.InsertClass(original, renamed); err != nil {
				return err
			}
		}

		var methodCountBuf [4]byte
		if _, err := io.ReadFull(r, methodCountBuf[:]); err != nil {
			return err
		}
		numMethods := binary.BigEndian.Uint32(methodCountBuf[:])
		for m := uint32(0); m < numMethods; m++ {
			name, err := readStr16(r)
			if err != nil {
				return err
			}
			renamedName, err := readStr16(r)
			if err != nil {
				return err
			}
			descriptor, err := readStr16(r)
			if err != nil {
				return err
			}
			if _, err := ParseDescriptor(descriptor); err != nil {
				return err
			}
			if _, err := readStr16(r); err != nil { // renamed descriptor, always discarded
				return err
			}

			finalName := Atom(name)
			if renamedName != "" {
				finalName = Intern(renamedName)
			}
			key := MethodKey{Class: original, Name: Intern(name), Descriptor: Intern(descriptor)}
			if renamedName == "" || renamedName == name {
				// Name unchanged: this entry exists only because the
				// descriptor differs under the class table. Whether it
				// truly differs depends on classes inserted by groups
				// we haven't read yet, so defer the check until the
				// whole class table is built.
				pending = append(pending, pendingIdentityMethod{key: key})
				continue
			}
			if err := builder.InsertMethod(key, finalName); err != nil {
				return err
			}
		}

		var fieldCountBuf [4]byte
		if _, err := io.ReadFull(r, fieldCountBuf[:]); err != nil {
			return err
		}
		numFields := binary.BigEndian.Uint32(fieldCountBuf[:])
		for f := uint32(0); f < numFields; f++ {
			name, err := readStr16(r)
			if err != nil {
				return err
			}
			renamedName, err := readStr16(r)
			if err != nil {
				return err
			}
			key := FieldKey{Class: original, Name: Intern(name)}
			if renamedName == "" || renamedName == name {
				return &UnchangedFieldError{Key: key}
			}
			if err := builder.InsertField(key, Intern(renamedName)); err != nil {
				return err
			}
		}
	}

	for _, p := range pending {
		remapped, err := RemapDescriptor(p.key.Descriptor, func(c ClassName) ClassName {
			if v, ok := builder.classes[c]; ok {
				return v
			}
			return c
		})
		if err != nil {
			return err
		}
		if remapped == p.key.Descriptor {
			return &UnchangedMethodError{Key: p.key}
		}
	}
	return nil
}
