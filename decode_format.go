package bcf2

import (
	"fmt"
	"strings"
)

// decodeGenotypesBlock reads back the nFormatFields (typed_int_offset_key,
// sample-major matrix) pairs a genotypes block holds, returning one
// attribute map per sample plus the FORMAT key order the block named.
func decodeGenotypesBlock(r *byteReader, schema *Schema, nFormatFields, nSamples int) ([]map[string]interface{}, []string, error) {
	samples := make([]map[string]interface{}, nSamples)
	for i := range samples {
		samples[i] = make(map[string]interface{})
	}
	order := make([]string, 0, nFormatFields)

	for f := 0; f < nFormatFields; f++ {
		off, err := readTypedInt32(r)
		if err != nil {
			return nil, nil, err
		}
		fs, err := schema.formatField(off)
		if err != nil {
			return nil, nil, err
		}
		order = append(order, fs.ID)

		switch fs.ID {
		case "GT":
			calls, err := decodeGTField(r, nSamples)
			if err != nil {
				return nil, nil, fmt.Errorf("FORMAT GT: %w", err)
			}
			for i, c := range calls {
				if c != nil {
					samples[i]["GT"] = c
				}
			}
		case "FT":
			vals, err := decodeFTField(r, nSamples)
			if err != nil {
				return nil, nil, fmt.Errorf("FORMAT FT: %w", err)
			}
			for i, v := range vals {
				if v != nil {
					samples[i]["FT"] = v
				}
			}
		default:
			var vals []interface{}
			switch fs.ValueType {
			case typeInteger:
				vals, err = decodeFormatIntField(r, nSamples)
			case typeFloat:
				vals, err = decodeFormatFloatField(r, nSamples)
			case typeCharacter, typeString:
				vals, err = decodeFormatCharField(r, nSamples, fs)
			default:
				return nil, nil, fmt.Errorf("%w: unhandled FORMAT value type for %s", ErrInvalidTyping, fs.ID)
			}
			if err != nil {
				return nil, nil, fmt.Errorf("FORMAT %s: %w", fs.ID, err)
			}
			for i, v := range vals {
				if v != nil {
					samples[i][fs.ID] = v
				}
			}
		}
	}
	return samples, order, nil
}

// decodeGTField reads the specialized GT matrix back into one *GTCall
// per sample. Ploidy is per-sample: the decode walks each sample's
// fixed-width slots and stops at the first end-of-vector sentinel,
// the prefix before it being that sample's actual call.
func decodeGTField(r *byteReader, nSamples int) ([]*GTCall, error) {
	n, tag, err := readTypeDescriptor(r)
	if err != nil {
		return nil, err
	}
	width, err := tagWidth(tag)
	if err != nil {
		return nil, err
	}
	calls := make([]*GTCall, nSamples)
	for s := 0; s < nSamples; s++ {
		var alleles []int
		var phased []bool
		ended := false
		for i := 0; i < n; i++ {
			raw, err := readInt(r, width)
			if err != nil {
				return nil, err
			}
			if ended || raw == eovInt(width) {
				ended = true // keep consuming this sample's remaining slots
				continue
			}
			alleles = append(alleles, int(raw>>1)-1)
			phased = append(phased, raw&1 != 0)
		}
		if len(alleles) > 0 {
			calls[s] = &GTCall{Alleles: alleles, Phased: phased}
		}
	}
	return calls, nil
}

func decodeFTField(r *byteReader, nSamples int) ([]interface{}, error) {
	rows, _, err := readCharMatrix(r, nSamples)
	if err != nil {
		return nil, err
	}
	out := make([]interface{}, nSamples)
	for i, row := range rows {
		s := strings.TrimRight(string(row), "\x00")
		if s != "" {
			out[i] = s
		}
	}
	return out, nil
}

func decodeFormatIntField(r *byteReader, nSamples int) ([]interface{}, error) {
	rows, _, err := readIntMatrix(r, nSamples)
	if err != nil {
		return nil, err
	}
	out := make([]interface{}, nSamples)
	for i, row := range rows {
		if allNilInt(row) {
			continue
		}
		out[i] = derefInt32s(trimTrailingNilInt32(row))
	}
	return out, nil
}

func decodeFormatFloatField(r *byteReader, nSamples int) ([]interface{}, error) {
	rows, _, err := readFloatMatrix(r, nSamples)
	if err != nil {
		return nil, err
	}
	out := make([]interface{}, nSamples)
	for i, row := range rows {
		if allNilFloat(row) {
			continue
		}
		out[i] = derefFloat32s(trimTrailingNilFloat32(row))
	}
	return out, nil
}

func decodeFormatCharField(r *byteReader, nSamples int, fs *FieldSchema) ([]interface{}, error) {
	rows, _, err := readCharMatrix(r, nSamples)
	if err != nil {
		return nil, err
	}
	out := make([]interface{}, nSamples)
	for i, row := range rows {
		s := strings.TrimRight(string(row), "\x00")
		if s == "" {
			continue
		}
		if fs.ValueType == typeString {
			out[i] = strings.Split(s, ",")
		} else {
			out[i] = s
		}
	}
	return out, nil
}

func allNilInt(row []*int32) bool {
	for _, v := range row {
		if v != nil {
			return false
		}
	}
	return true
}

func allNilFloat(row []*float32) bool {
	for _, v := range row {
		if v != nil {
			return false
		}
	}
	return true
}
