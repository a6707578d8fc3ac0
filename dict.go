package bcf2

import "fmt"

// Dictionary is an ordered mapping between a 32-bit offset and a string,
// used for FILTER/INFO/FORMAT IDs (the "string dictionary") and for
// contig names. It is immutable once built.
type Dictionary struct {
	byOffset []string
	byID     map[string]int32
	indexed  bool // v2.2 explicit-IDX variant, vs. ordinal
}

// Size returns the number of entries in the dictionary.
func (d *Dictionary) Size() int { return len(d.byOffset) }

// Get returns the string at offset, or an error if offset is out of range.
func (d *Dictionary) Get(offset int32) (string, error) {
	if offset < 0 || int(offset) >= len(d.byOffset) {
		return "", fmt.Errorf("%w: dictionary offset %d out of range (size %d)", ErrInvalidHeader, offset, len(d.byOffset))
	}
	s := d.byOffset[offset]
	if s == "" && !d.indexed {
		return "", fmt.Errorf("%w: dictionary offset %d is unassigned", ErrInvalidHeader, offset)
	}
	return s, nil
}

// Offset returns the offset assigned to id, or false if id is unknown.
func (d *Dictionary) Offset(id string) (int32, bool) {
	off, ok := d.byID[id]
	return off, ok
}

// Entry is one (offset, string) pair yielded by Iter.
type Entry struct {
	Offset int32
	String string
}

// Iter returns all entries in offset order.
func (d *Dictionary) Iter() []Entry {
	entries := make([]Entry, 0, len(d.byOffset))
	for off, s := range d.byOffset {
		if s == "" && !d.indexed {
			continue
		}
		entries = append(entries, Entry{Offset: int32(off), String: s})
	}
	return entries
}

// buildStringDict builds the FILTER/INFO/FORMAT ID dictionary from the
// full header line list. Lines are deduplicated by ID (first occurrence
// wins). PASS is always present at offset 0 in the ordinal variant, or
// at whatever offset its own (possibly implicit) IDX assigns it in the
// indexed variant.
//
// Dictionary-variant selection: if any FILTER/INFO/FORMAT line carries
// IDX= and minor>=2, every such line must; otherwise the dictionary is
// ordinal. Mixing either raises InvalidHeader.
func buildStringDict(lines []headerLine, minor int) (*Dictionary, error) {
	var candidates []headerLine
	for _, l := range lines {
		switch l.Kind {
		case kindFilter, kindInfo, kindFormat:
			candidates = append(candidates, l)
		}
	}

	useIDX, err := resolveIDXPolicy(candidates, minor)
	if err != nil {
		return nil, err
	}

	d := &Dictionary{byID: make(map[string]int32), indexed: useIDX}

	ensure := func(offset int32) {
		for int32(len(d.byOffset)) <= offset {
			d.byOffset = append(d.byOffset, "")
		}
	}

	place := func(id string, offset int32) error {
		if _, exists := d.byID[id]; exists {
			return nil // first occurrence wins
		}
		ensure(offset)
		if d.byOffset[offset] != "" && d.byOffset[offset] != id {
			return fmt.Errorf("%w: dictionary offset %d already assigned to %q, cannot assign %q",
				ErrInvalidHeader, offset, d.byOffset[offset], id)
		}
		d.byOffset[offset] = id
		d.byID[id] = offset
		return nil
	}

	if useIDX {
		for _, l := range candidates {
			if err := place(l.ID, l.IDX); err != nil {
				return nil, err
			}
		}
		if _, ok := d.byID["PASS"]; !ok {
			// PASS must be present even with no FILTER=PASS line; without
			// an explicit IDX for it, it takes the lowest unassigned offset.
			if err := place("PASS", nextFreeOffset(d)); err != nil {
				return nil, err
			}
		}
		return d, nil
	}

	// Ordinal: PASS is always offset 0, seeded before any header line.
	if err := place("PASS", 0); err != nil {
		return nil, err
	}
	for _, l := range candidates {
		if l.ID == "PASS" {
			continue // already seeded at offset 0
		}
		if err := place(l.ID, int32(len(d.byOffset))); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func nextFreeOffset(d *Dictionary) int32 {
	for off := int32(0); ; off++ {
		if int(off) >= len(d.byOffset) || d.byOffset[off] == "" {
			return off
		}
	}
}

// resolveIDXPolicy scans candidates and decides ordinal vs. indexed,
// raising InvalidHeader on a mixed file.
func resolveIDXPolicy(candidates []headerLine, minor int) (bool, error) {
	if minor < 2 {
		return false, nil
	}
	haveIDX, haveNoIDX := false, false
	for _, l := range candidates {
		if l.HasIDX {
			haveIDX = true
		} else {
			haveNoIDX = true
		}
	}
	if haveIDX && haveNoIDX {
		return false, fmt.Errorf("%w: header mixes IDX and non-IDX FILTER/INFO/FORMAT lines", ErrInvalidHeader)
	}
	return haveIDX, nil
}

// buildContigDict builds the separate contig-name dictionary the same
// way, from CONTIG header lines; contigs never carry the PASS seed.
func buildContigDict(lines []headerLine, minor int) (*Dictionary, error) {
	var candidates []headerLine
	for _, l := range lines {
		if l.Kind == kindContig {
			candidates = append(candidates, l)
		}
	}
	useIDX, err := resolveIDXPolicy(candidates, minor)
	if err != nil {
		return nil, err
	}
	d := &Dictionary{byID: make(map[string]int32), indexed: useIDX}
	ensure := func(offset int32) {
		for int32(len(d.byOffset)) <= offset {
			d.byOffset = append(d.byOffset, "")
		}
	}
	for _, l := range candidates {
		if _, exists := d.byID[l.ID]; exists {
			continue
		}
		offset := l.IDX
		if !useIDX {
			offset = int32(len(d.byOffset))
		}
		ensure(offset)
		if d.byOffset[offset] != "" && d.byOffset[offset] != l.ID {
			return nil, fmt.Errorf("%w: contig dictionary offset %d already assigned to %q, cannot assign %q",
				ErrInvalidHeader, offset, d.byOffset[offset], l.ID)
		}
		d.byOffset[offset] = l.ID
		d.byID[l.ID] = offset
	}
	return d, nil
}
