package bcf2

import (
	"bytes"
	"fmt"
	"strings"
)

// encodeInfoPairs writes the `n_info` (typed_int_offset_key, typed_value)
// pairs for one record, in the order the caller's Info map was iterated
// (InfoOrder), against the schemas the header adapter built.
func encodeInfoPairs(buf *bytes.Buffer, schema *Schema, vc *VariantCall) (nInfo int, err error) {
	numAlleles := len(vc.Alleles)
	for _, key := range vc.InfoOrder {
		fs, ok := schema.Info[key]
		if !ok {
			return 0, fmt.Errorf("%w: INFO key %q not declared in header", ErrInvalidHeader, key)
		}
		if err := writeTypedInt32(buf, fs.DictionaryOff); err != nil {
			return 0, err
		}
		if err := encodeInfoValue(buf, schema.Minor, fs, numAlleles, vc.Info[key]); err != nil {
			return 0, fmt.Errorf("INFO %s: %w", key, err)
		}
		nInfo++
	}
	return nInfo, nil
}

func encodeInfoValue(buf *bytes.Buffer, minor int, fs *FieldSchema, numAlleles int, v interface{}) error {
	switch fs.ValueType {
	case typeFlag:
		return encodeFlag(buf, v)
	case typeInteger:
		return encodeInfoInt(buf, minor, fs, numAlleles, v)
	case typeFloat:
		return encodeInfoFloat(buf, minor, fs, numAlleles, v)
	case typeCharacter:
		return encodeInfoCharacter(buf, fs, numAlleles, v)
	case typeString:
		return encodeInfoString(buf, minor, v)
	default:
		return fmt.Errorf("%w: unhandled INFO value type", ErrInvalidTyping)
	}
}

func encodeFlag(buf *bytes.Buffer, v interface{}) error {
	b, err := toBool(v)
	if err != nil {
		return err
	}
	if err := writeTypeDescriptor(buf, 1, TagInt8); err != nil {
		return err
	}
	if b {
		return writeInt(buf, 1, Width8)
	}
	writeMissing(buf, Width8)
	return nil
}

// resolveInfoCount applies the "If header is bounded, n_values :=
// header_count(vc) and observed > header_count is a hard error; else
// n_values := observed" rule from C4.
func resolveInfoCount(fs *FieldSchema, numAlleles, observed int) (int, error) {
	n, bounded := cardinality(fs.Count, numAlleles, 0)
	if !bounded {
		return observed, nil
	}
	if observed > n {
		return 0, fmt.Errorf("%w: %d observed values exceed header count %d", ErrCardinalityViolation, observed, n)
	}
	return n, nil
}

func encodeInfoInt(buf *bytes.Buffer, minor int, fs *FieldSchema, numAlleles int, v interface{}) error {
	vals, err := toInt32Slice(v)
	if err != nil {
		return err
	}
	if fs.Count.Kind == countFixed && fs.Count.N == 1 && v == nil {
		// Atomic scalar, null: single missing sentinel, regardless of minor version.
		return writeIntMatrix(buf, [][]*int32{{nil}}, 1, minor)
	}
	n, err := resolveInfoCount(fs, numAlleles, len(vals))
	if err != nil {
		return err
	}
	return writeIntMatrix(buf, [][]*int32{int32Ptrs(vals)}, n, minor)
}

func encodeInfoFloat(buf *bytes.Buffer, minor int, fs *FieldSchema, numAlleles int, v interface{}) error {
	vals, err := toFloat32Slice(v)
	if err != nil {
		return err
	}
	if fs.Count.Kind == countFixed && fs.Count.N == 1 && v == nil {
		return writeFloatMatrix(buf, [][]*float32{{nil}}, 1, minor)
	}
	n, err := resolveInfoCount(fs, numAlleles, len(vals))
	if err != nil {
		return err
	}
	return writeFloatMatrix(buf, [][]*float32{float32Ptrs(vals)}, n, minor)
}

// encodeInfoCharacter writes the single-string Character field, padded
// with NUL bytes to n_values (header count, or the string's own length
// when the field is unbounded).
func encodeInfoCharacter(buf *bytes.Buffer, fs *FieldSchema, numAlleles int, v interface{}) error {
	if v == nil {
		writeMissingString(buf)
		return nil
	}
	strs, err := toStringSlice(v)
	if err != nil {
		return err
	}
	s := strings.Join(strs, "")
	n, err := resolveInfoCount(fs, numAlleles, len(s))
	if err != nil {
		return err
	}
	return writeCharMatrix(buf, [][]byte{[]byte(s)}, n)
}

// encodeInfoString joins list-valued strings into one CHAR payload. The
// join separator carries a leading comma in v2.1 and none in v2.2 — the
// one multi-string-packing difference between the two minor versions.
func encodeInfoString(buf *bytes.Buffer, minor int, v interface{}) error {
	if v == nil {
		writeMissingString(buf)
		return nil
	}
	strs, err := toStringSlice(v)
	if err != nil {
		return err
	}
	var joined string
	if minor < 2 {
		joined = "," + strings.Join(strs, ",")
	} else {
		joined = strings.Join(strs, ",")
	}
	return writeCharMatrix(buf, [][]byte{[]byte(joined)}, len(joined))
}
