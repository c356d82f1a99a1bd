package rangeindex

import (
	"bufio"
	"io"
	"sort"

	"github.com/jvmmap/supersrg"
)

// reference is FieldRef/MethodRef flattened to the shape the streaming
// applier actually needs: a byte span, the name expected there, and the
// name to substitute it with (equal to expected when no rename applies).
type reference struct {
	start, end           uint32
	expected, substitute string
}

func flattenReferences(ranges FileRanges, snapshot supersrg.MappingSnapshot) []reference {
	refs := make([]reference, 0, len(ranges.FieldRefs)+len(ranges.MethodRefs))
	for _, fr := range ranges.FieldRefs {
		mapped := snapshot.GetField(fr.Field)
		refs = append(refs, reference{
			start: fr.Start, end: fr.End,
			expected:  string(fr.Field.Name),
			substitute: string(mapped.Name),
		})
	}
	for _, mr := range ranges.MethodRefs {
		mapped := snapshot.GetMethod(mr.Method)
		refs = append(refs, reference{
			start: mr.Start, end: mr.End,
			expected:  string(mr.Method.Name),
			substitute: string(mapped.Name),
		})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].start < refs[j].start })
	return refs
}

// Apply streams src to dst, substituting the mapped name at every
// reference span in ranges per snapshot, and returns the number of spans
// whose substitution actually differed from the source bytes. file is
// used only to label errors.
func Apply(file string, src io.Reader, dst io.Writer, ranges FileRanges, snapshot supersrg.MappingSnapshot) (int, error) {
	refs := flattenReferences(ranges, snapshot)

	br := bufio.NewReader(src)
	bw := bufio.NewWriter(dst)

	var index uint32
	numChanged := 0
	for i, ref := range refs {
		if i > 0 && ref.start < refs[i-1].end {
			return 0, &OverlappingReferenceError{File: file, FirstEnd: refs[i-1].end, SecondStart: ref.start}
		}
		if ref.start > index {
			if _, err := io.CopyN(bw, br, int64(ref.start-index)); err != nil {
				return 0, err
			}
		}
		buf := make([]byte, ref.end-ref.start)
		if _, err := io.ReadFull(br, buf); err != nil {
			return 0, err
		}
		if string(buf) != ref.expected {
			return 0, &ReferenceMismatchError{File: file, Start: ref.start, End: ref.end, Expected: ref.expected, Got: string(buf)}
		}
		if ref.substitute != ref.expected {
			if _, err := bw.WriteString(ref.substitute); err != nil {
				return 0, err
			}
			numChanged++
		} else {
			if _, err := bw.Write(buf); err != nil {
				return 0, err
			}
		}
		index = ref.end
	}
	if _, err := io.Copy(bw, br); err != nil {
		return 0, err
	}
	if err := bw.Flush(); err != nil {
		return 0, err
	}
	return numChanged, nil
}
