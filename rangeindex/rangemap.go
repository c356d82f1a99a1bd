package rangeindex

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/jvmmap/supersrg"
)

// FieldRef is a single byte-offset reference to a field's name.
type FieldRef struct {
	Start, End uint32
	Field      supersrg.FieldKey
}

// MethodRef is a single byte-offset reference to a method's name.
type MethodRef struct {
	Start, End uint32
	Method     supersrg.MethodKey
}

// FileRanges is the set of references found within one source file.
type FileRanges struct {
	ContentHash []byte
	FieldRefs   []FieldRef
	MethodRefs  []MethodRef
}

// RangeMap is the deserialized reference index: one FileRanges per
// relative source path.
type RangeMap struct {
	Files map[string]FileRanges
}

type wireRangeMap struct {
	FileHashes       map[string][]byte   `msgpack:"fileHashes"`
	FieldReferences  map[string][][]byte `msgpack:"fieldReferences"`
	MethodReferences map[string][][]byte `msgpack:"methodReferences"`
}

// DecodeRangeMap reads a MessagePack-encoded range index from r.
func DecodeRangeMap(r io.Reader) (*RangeMap, error) {
	var wire wireRangeMap
	if err := msgpack.NewDecoder(r).Decode(&wire); err != nil {
		return nil, err
	}

	files := make(map[string]FileRanges, len(wire.FileHashes))
	ensure := func(path string) FileRanges {
		fr, ok := files[path]
		if !ok {
			fr = FileRanges{}
		}
		return fr
	}

	for path, hash := range wire.FileHashes {
		fr := ensure(path)
		fr.ContentHash = hash
		files[path] = fr
	}
	for path, refs := range wire.FieldReferences {
		fr := ensure(path)
		for _, raw := range refs {
			ref, err := decodeFieldRef(raw)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			fr.FieldRefs = append(fr.FieldRefs, ref)
		}
		files[path] = fr
	}
	for path, refs := range wire.MethodReferences {
		fr := ensure(path)
		for _, raw := range refs {
			ref, err := decodeMethodRef(raw)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			fr.MethodRefs = append(fr.MethodRefs, ref)
		}
		files[path] = fr
	}
	return &RangeMap{Files: files}, nil
}

func readU32(b []byte, off int) (uint32, error) {
	if off+4 > len(b) {
		return 0, io.ErrUnexpectedEOF
	}
	return binary.BigEndian.Uint32(b[off:]), nil
}

func readStr16At(b []byte, off int) (string, int, error) {
	if off+2 > len(b) {
		return "", 0, io.ErrUnexpectedEOF
	}
	n := int(binary.BigEndian.Uint16(b[off:]))
	off += 2
	if off+n > len(b) {
		return "", 0, io.ErrUnexpectedEOF
	}
	return string(b[off : off+n]), off + n, nil
}

func decodeFieldRef(raw []byte) (FieldRef, error) {
	start, err := readU32(raw, 0)
	if err != nil {
		return FieldRef{}, err
	}
	end, err := readU32(raw, 4)
	if err != nil {
		return FieldRef{}, err
	}
	qualified, _, err := readStr16At(raw, 8)
	if err != nil {
		return FieldRef{}, err
	}
	class, name, err := supersrg.ParseMemberName(qualified)
	if err != nil {
		return FieldRef{}, err
	}
	return FieldRef{Start: start, End: end, Field: supersrg.FieldKey{Class: class, Name: name}}, nil
}

func decodeMethodRef(raw []byte) (MethodRef, error) {
	start, err := readU32(raw, 0)
	if err != nil {
		return MethodRef{}, err
	}
	end, err := readU32(raw, 4)
	if err != nil {
		return MethodRef{}, err
	}
	qualified, next, err := readStr16At(raw, 8)
	if err != nil {
		return MethodRef{}, err
	}
	descriptor, _, err := readStr16At(raw, next)
	if err != nil {
		return MethodRef{}, err
	}
	class, name, err := supersrg.ParseMemberName(qualified)
	if err != nil {
		return MethodRef{}, err
	}
	return MethodRef{
		Start: start, End: end,
		Method: supersrg.MethodKey{Class: class, Name: name, Descriptor: supersrg.Intern(descriptor)},
	}, nil
}
