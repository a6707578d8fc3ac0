package bcf2

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// encodeFormatPairs writes the `n_format_fields` (typed_int_offset_key,
// sample-major matrix) pairs for one record's genotypes block, in the
// order the caller's FormatOrder lists them. GT and FT get specialized
// encoders; every other Integer/Float FORMAT field shares the generic
// vector encoder driven by the field's resolved cardinality, and
// Character/String fields share the generic row-of-bytes encoder.
func encodeFormatPairs(buf *bytes.Buffer, schema *Schema, vc *VariantCall) (nFormat int, err error) {
	numAlleles := len(vc.Alleles)
	samples, err := vc.genotypeValues()
	if err != nil {
		return 0, err
	}

	var gtCalls []*GTCall
	if _, ok := schema.Format["GT"]; ok {
		gtCalls = make([]*GTCall, len(samples))
		for i, s := range samples {
			c, err := parseGTValue(s["GT"])
			if err != nil {
				return 0, fmt.Errorf("sample %d: %w", i, err)
			}
			gtCalls[i] = c
		}
	}
	recordPloidy := maxPloidy(gtCalls, 2)
	ploidies := samplePloidies(gtCalls, recordPloidy)

	for _, key := range vc.FormatOrder {
		fs, ok := schema.Format[key]
		if !ok {
			return 0, fmt.Errorf("%w: FORMAT key %q not declared in header", ErrInvalidHeader, key)
		}
		if err := writeTypedInt32(buf, fs.DictionaryOff); err != nil {
			return 0, err
		}
		switch key {
		case "GT":
			if err := encodeGTField(buf, recordPloidy, numAlleles, gtCalls); err != nil {
				return 0, fmt.Errorf("FORMAT GT: %w", err)
			}
		case "FT":
			if err := encodeFTField(buf, samples, gtCalls); err != nil {
				return 0, fmt.Errorf("FORMAT FT: %w", err)
			}
		default:
			switch fs.ValueType {
			case typeInteger:
				if err := encodeFormatIntField(buf, schema.Minor, fs, numAlleles, ploidies, samples); err != nil {
					return 0, fmt.Errorf("FORMAT %s: %w", key, err)
				}
			case typeFloat:
				if err := encodeFormatFloatField(buf, schema.Minor, fs, numAlleles, ploidies, samples); err != nil {
					return 0, fmt.Errorf("FORMAT %s: %w", key, err)
				}
			case typeCharacter, typeString:
				if err := encodeFormatCharField(buf, fs, samples); err != nil {
					return 0, fmt.Errorf("FORMAT %s: %w", key, err)
				}
			default:
				return 0, fmt.Errorf("%w: unhandled FORMAT value type for %s", ErrInvalidTyping, key)
			}
		}
		nFormat++
	}
	return nFormat, nil
}

// parseGTValue normalizes a sample's GT attribute into a *GTCall. A
// caller may supply an already-built *GTCall, a VCF-style genotype
// string ("0/1", "1|2", "./."), or nil for an absent call.
func parseGTValue(v interface{}) (*GTCall, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case *GTCall:
		return t, nil
	case string:
		return parseGTString(t)
	default:
		return nil, fmt.Errorf("%w: GT value must be a string or *GTCall, got %T", ErrIncompatibleValue, v)
	}
}

func parseGTString(s string) (*GTCall, error) {
	if s == "" || s == "." {
		return nil, nil
	}
	var alleles []int
	var phased []bool
	i := 0
	for i < len(s) {
		if len(alleles) > 0 {
			switch s[i] {
			case '/':
				phased = append(phased, false)
				i++
			case '|':
				phased = append(phased, true)
				i++
			default:
				return nil, fmt.Errorf("%w: malformed GT string %q", ErrIncompatibleValue, s)
			}
		} else {
			phased = append(phased, false)
		}
		j := i
		for j < len(s) && s[j] != '/' && s[j] != '|' {
			j++
		}
		tok := s[i:j]
		i = j
		if tok == "." {
			alleles = append(alleles, -1)
			continue
		}
		n, err := strconv.Atoi(tok)
		if err != nil {
			return nil, fmt.Errorf("%w: malformed GT allele %q", ErrIncompatibleValue, tok)
		}
		alleles = append(alleles, n)
	}
	return &GTCall{Alleles: alleles, Phased: phased}, nil
}

// encodeGTField writes the specialized GT matrix: ploidy elements per
// sample of the narrowest width covering (numAlleles<<1), each allele
// packed as ((alleleIndex+1)<<1)|phaseBit (a no-call allele index of -1
// naturally packs to 0|phaseBit), with samples shorter than the
// record's resolved ploidy padded with the end-of-vector sentinel.
func encodeGTField(buf *bytes.Buffer, recordPloidy, numAlleles int, calls []*GTCall) error {
	width := widthForValue(int32(numAlleles << 1))
	if err := writeTypeDescriptor(buf, recordPloidy, width.tag()); err != nil {
		return err
	}
	for _, c := range calls {
		for i := 0; i < recordPloidy; i++ {
			if c != nil && i < len(c.Alleles) {
				phase := int32(0)
				if i != 0 && c.Phased[i] {
					phase = 1
				}
				raw := ((int32(c.Alleles[i]) + 1) << 1) | phase
				if err := writeInt(buf, raw, width); err != nil {
					return err
				}
				continue
			}
			writeEOV(buf, width)
		}
	}
	return nil
}

// encodeFTField writes the specialized FT matrix: one NUL-padded string
// row per sample. A null FT value for a sample that does carry a GT
// call encodes as the literal "PASS"; a sample with no genotype at all
// is written as an all-NUL row, the same wire shape a generic String
// field uses for "missing".
func encodeFTField(buf *bytes.Buffer, samples []map[string]interface{}, gtCalls []*GTCall) error {
	rows := make([][]byte, len(samples))
	maxLen := 0
	for i, s := range samples {
		v := s["FT"]
		var str string
		switch {
		case v != nil:
			ok := false
			str, ok = v.(string)
			if !ok {
				return fmt.Errorf("%w: FT value must be a string, got %T", ErrIncompatibleValue, v)
			}
		case i < len(gtCalls) && gtCalls[i] != nil:
			str = "PASS"
		default:
			continue // no genotype at all: leave the row NUL-filled
		}
		rows[i] = []byte(str)
		if len(rows[i]) > maxLen {
			maxLen = len(rows[i])
		}
	}
	return writeCharMatrix(buf, rows, maxLen)
}

// encodeFormatIntField drives DP, GQ, AD, PL, and any other Integer
// FORMAT field through the shared matrix writer, resolving each
// sample's value count from the field's declared cardinality (and, for
// 'G', that sample's own ploidy).
func encodeFormatIntField(buf *bytes.Buffer, minor int, fs *FieldSchema, numAlleles int, ploidies []int, samples []map[string]interface{}) error {
	rows := make([][]*int32, len(samples))
	nValues := 0
	for i, s := range samples {
		vals, err := toInt32Slice(s[fs.ID])
		if err != nil {
			return fmt.Errorf("sample %d: %w", i, err)
		}
		n, ok := cardinality(fs.Count, numAlleles, ploidies[i])
		if !ok {
			n = len(vals)
		}
		if len(vals) > n {
			return fmt.Errorf("%w: sample %d has %d values, exceeds %d", ErrCardinalityViolation, i, len(vals), n)
		}
		if n > nValues {
			nValues = n
		}
		rows[i] = int32Ptrs(vals)
	}
	return writeIntMatrix(buf, rows, nValues, minor)
}

func encodeFormatFloatField(buf *bytes.Buffer, minor int, fs *FieldSchema, numAlleles int, ploidies []int, samples []map[string]interface{}) error {
	rows := make([][]*float32, len(samples))
	nValues := 0
	for i, s := range samples {
		vals, err := toFloat32Slice(s[fs.ID])
		if err != nil {
			return fmt.Errorf("sample %d: %w", i, err)
		}
		n, ok := cardinality(fs.Count, numAlleles, ploidies[i])
		if !ok {
			n = len(vals)
		}
		if len(vals) > n {
			return fmt.Errorf("%w: sample %d has %d values, exceeds %d", ErrCardinalityViolation, i, len(vals), n)
		}
		if n > nValues {
			nValues = n
		}
		rows[i] = float32Ptrs(vals)
	}
	return writeFloatMatrix(buf, rows, nValues, minor)
}

// encodeFormatCharField drives a generic Character/String FORMAT field
// through the shared byte-matrix writer, joining list-valued String
// fields with commas. Unlike encodeInfoString, no leading comma is
// added in either minor version.
func encodeFormatCharField(buf *bytes.Buffer, fs *FieldSchema, samples []map[string]interface{}) error {
	rows := make([][]byte, len(samples))
	maxLen := 0
	for i, s := range samples {
		v := s[fs.ID]
		if v == nil {
			continue
		}
		strs, err := toStringSlice(v)
		if err != nil {
			return fmt.Errorf("sample %d: %w", i, err)
		}
		var str string
		if fs.ValueType == typeCharacter {
			str = strings.Join(strs, "")
		} else {
			str = strings.Join(strs, ",")
		}
		rows[i] = []byte(str)
		if len(rows[i]) > maxLen {
			maxLen = len(rows[i])
		}
	}
	return writeCharMatrix(buf, rows, maxLen)
}
