package bcf2

import (
	"fmt"
	"strings"
)

// decodeInfoPairs reads back the n_info (typed_int_offset_key,
// typed_value) pairs a sites block holds, returning them as an
// attribute map plus the order they appeared in (InfoOrder).
func decodeInfoPairs(r *byteReader, schema *Schema, nInfo int) (map[string]interface{}, []string, error) {
	info := make(map[string]interface{}, nInfo)
	order := make([]string, 0, nInfo)
	for i := 0; i < nInfo; i++ {
		off, err := readTypedInt32(r)
		if err != nil {
			return nil, nil, err
		}
		fs, err := schema.infoField(off)
		if err != nil {
			return nil, nil, err
		}
		v, err := decodeInfoValue(r, fs)
		if err != nil {
			return nil, nil, fmt.Errorf("INFO %s: %w", fs.ID, err)
		}
		info[fs.ID] = v
		order = append(order, fs.ID)
	}
	return info, order, nil
}

func decodeInfoValue(r *byteReader, fs *FieldSchema) (interface{}, error) {
	switch fs.ValueType {
	case typeFlag:
		return decodeFlag(r)
	case typeInteger:
		return decodeInfoInt(r, fs)
	case typeFloat:
		return decodeInfoFloat(r, fs)
	case typeCharacter:
		return decodeInfoCharacter(r)
	case typeString:
		return decodeInfoString(r)
	default:
		return nil, fmt.Errorf("%w: unhandled INFO value type", ErrInvalidTyping)
	}
}

func decodeFlag(r *byteReader) (interface{}, error) {
	n, tag, err := readTypeDescriptor(r)
	if err != nil {
		return nil, err
	}
	width, err := tagWidth(tag)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return false, nil
	}
	v, err := readInt(r, width)
	if err != nil {
		return nil, err
	}
	return v == 1, nil
}

// decodeInfoInt reads one INT-typed row; a lone missing sentinel for an
// atomic Fixed(1) field decodes to nil, matching the write side's
// scalar-null special case.
func decodeInfoInt(r *byteReader, fs *FieldSchema) (interface{}, error) {
	rows, n, err := readIntMatrix(r, 1)
	if err != nil {
		return nil, err
	}
	row := rows[0]
	if fs.Count.Kind == countFixed && fs.Count.N == 1 && n >= 1 && row[0] == nil {
		return nil, nil
	}
	return derefInt32s(trimTrailingNilInt32(row)), nil
}

func decodeInfoFloat(r *byteReader, fs *FieldSchema) (interface{}, error) {
	rows, n, err := readFloatMatrix(r, 1)
	if err != nil {
		return nil, err
	}
	row := rows[0]
	if fs.Count.Kind == countFixed && fs.Count.N == 1 && n >= 1 && row[0] == nil {
		return nil, nil
	}
	return derefFloat32s(trimTrailingNilFloat32(row)), nil
}

func decodeInfoCharacter(r *byteReader) (interface{}, error) {
	n, tag, err := readTypeDescriptor(r)
	if err != nil {
		return nil, err
	}
	if tag != TagChar {
		return nil, ErrInvalidTyping
	}
	if n == 0 {
		return nil, nil
	}
	b, err := readBytes(r, n)
	if err != nil {
		return nil, err
	}
	return strings.TrimRight(string(b), "\x00"), nil
}

// decodeInfoString splits the CHAR payload back into a list, undoing
// the version-dependent leading-comma join encodeInfoString applies.
func decodeInfoString(r *byteReader) (interface{}, error) {
	n, tag, err := readTypeDescriptor(r)
	if err != nil {
		return nil, err
	}
	if tag != TagChar {
		return nil, ErrInvalidTyping
	}
	if n == 0 {
		return nil, nil
	}
	b, err := readBytes(r, n)
	if err != nil {
		return nil, err
	}
	s := strings.TrimRight(string(b), "\x00")
	s = strings.TrimPrefix(s, ",")
	if s == "" {
		return []string{}, nil
	}
	return strings.Split(s, ","), nil
}

// trimTrailingNilInt32 drops trailing missing/EOV sentinel entries a
// bounded short vector was padded with, so a caller sees the values it
// wrote rather than spurious zeros from deref'd nils.
func trimTrailingNilInt32(row []*int32) []*int32 {
	end := len(row)
	for end > 0 && row[end-1] == nil {
		end--
	}
	return row[:end]
}

func trimTrailingNilFloat32(row []*float32) []*float32 {
	end := len(row)
	for end > 0 && row[end-1] == nil {
		end--
	}
	return row[:end]
}

func derefInt32s(row []*int32) []int32 {
	out := make([]int32, len(row))
	for i, v := range row {
		if v != nil {
			out[i] = *v
		}
	}
	return out
}

func derefFloat32s(row []*float32) []float32 {
	out := make([]float32, len(row))
	for i, v := range row {
		if v != nil {
			out[i] = *v
		}
	}
	return out
}
