package bcf2

import "bytes"

// writeIntMatrix writes the common typing byte for nValues elements of
// the width-minimizing integer type, then one row of nValues payload
// entries per entry in rows. A row shorter than nValues is padded: an
// explicit nil entry within the row's observed length writes the
// missing sentinel, anything beyond the row's observed length writes
// the version-appropriate padding sentinel (EOV in v2.2, missing in
// v2.1). An empty row (no values observed at all, e.g. an absent
// sample) is padded in full the same way.
func writeIntMatrix(buf *bytes.Buffer, rows [][]*int32, nValues, minor int) error {
	width := Width8
	for _, row := range rows {
		for _, v := range row {
			if v == nil {
				continue
			}
			if w := widthForValue(*v); w > width {
				width = w
			}
			if width == Width32 {
				break
			}
		}
	}
	if err := writeTypeDescriptor(buf, nValues, width.tag()); err != nil {
		return err
	}
	for _, row := range rows {
		for i := 0; i < nValues; i++ {
			switch {
			case i < len(row) && row[i] != nil:
				if err := writeInt(buf, *row[i], width); err != nil {
					return err
				}
			case i < len(row):
				writeMissing(buf, width)
			case minor >= 2:
				writeEOV(buf, width)
			default:
				writeMissing(buf, width)
			}
		}
	}
	return nil
}

// writeFloatMatrix is writeIntMatrix's float32 counterpart.
func writeFloatMatrix(buf *bytes.Buffer, rows [][]*float32, nValues, minor int) error {
	if err := writeTypeDescriptor(buf, nValues, TagFloat32); err != nil {
		return err
	}
	for _, row := range rows {
		for i := 0; i < nValues; i++ {
			switch {
			case i < len(row) && row[i] != nil:
				writeFloat32(buf, *row[i])
			case i < len(row):
				writeMissingFloat(buf)
			case minor >= 2:
				writeEOVFloat(buf)
			default:
				writeMissingFloat(buf)
			}
		}
	}
	return nil
}

// writeCharMatrix writes a CHAR typing byte for nValues bytes per row,
// padding every row short of nValues with NUL.
func writeCharMatrix(buf *bytes.Buffer, rows [][]byte, nValues int) error {
	if err := writeTypeDescriptor(buf, nValues, TagChar); err != nil {
		return err
	}
	for _, row := range rows {
		buf.Write(row)
		for i := len(row); i < nValues; i++ {
			buf.WriteByte(0)
		}
	}
	return nil
}

// readIntMatrix reads a previously-written int matrix back into
// nSamples rows of nValues entries each (entries equal to the width's
// sentinel are returned as nil).
func readIntMatrix(r *byteReader, nSamples int) (rows [][]*int32, nValues int, err error) {
	n, tag, err := readTypeDescriptor(r)
	if err != nil {
		return nil, 0, err
	}
	width, err := tagWidth(tag)
	if err != nil {
		return nil, 0, err
	}
	rows = make([][]*int32, nSamples)
	for s := 0; s < nSamples; s++ {
		row := make([]*int32, n)
		for i := 0; i < n; i++ {
			v, err := readInt(r, width)
			if err != nil {
				return nil, 0, err
			}
			if v == missingInt(width) || v == eovInt(width) {
				row[i] = nil
				continue
			}
			vv := v
			row[i] = &vv
		}
		rows[s] = row
	}
	return rows, n, nil
}

func readFloatMatrix(r *byteReader, nSamples int) (rows [][]*float32, nValues int, err error) {
	n, tag, err := readTypeDescriptor(r)
	if err != nil {
		return nil, 0, err
	}
	if tag != TagFloat32 {
		return nil, 0, ErrInvalidTyping
	}
	rows = make([][]*float32, nSamples)
	for s := 0; s < nSamples; s++ {
		row := make([]*float32, n)
		for i := 0; i < n; i++ {
			v, err := readFloat32(r)
			if err != nil {
				return nil, 0, err
			}
			if isMissingFloat(v) || isEOVFloat(v) {
				row[i] = nil
				continue
			}
			vv := v
			row[i] = &vv
		}
		rows[s] = row
	}
	return rows, n, nil
}

func readCharMatrix(r *byteReader, nSamples int) (rows [][]byte, nValues int, err error) {
	n, tag, err := readTypeDescriptor(r)
	if err != nil {
		return nil, 0, err
	}
	if tag != TagChar {
		return nil, 0, ErrInvalidTyping
	}
	rows = make([][]byte, nSamples)
	for s := 0; s < nSamples; s++ {
		b, err := readBytes(r, n)
		if err != nil {
			return nil, 0, err
		}
		rows[s] = b
	}
	return rows, n, nil
}
