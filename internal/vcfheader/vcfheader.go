// Package vcfheader parses the textual VCF header embedded at the start
// of a BCF2 stream into the header-line list consumed by the codec's
// dictionary and schema builders. It is the "textual VCF header parser"
// external collaborator named in the codec's external-interfaces
// contract: this package owns only the text<->line-list translation,
// never the binary wire format.
package vcfheader

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind distinguishes the handful of header-line kinds the codec cares
// about from everything else, which is kept as an opaque Structured line
// so it can be re-emitted byte-for-byte into the embedded header text.
type Kind int

const (
	KindFileformat Kind = iota
	KindFilter
	KindInfo
	KindFormat
	KindContig
	KindStructured // PEDIGREE, SAMPLE, ALT, META, and anything else
)

// ValueType is the declared type of an INFO/FORMAT field.
type ValueType int

const (
	Integer ValueType = iota
	Float
	Flag
	String
	Character
)

func parseValueType(s string) (ValueType, error) {
	switch s {
	case "Integer":
		return Integer, nil
	case "Float":
		return Float, nil
	case "Flag":
		return Flag, nil
	case "String":
		return String, nil
	case "Character":
		return Character, nil
	default:
		return 0, fmt.Errorf("vcfheader: unknown Type=%q", s)
	}
}

// CountKind is the shape of an INFO/FORMAT field's Number= attribute.
type CountKind int

const (
	CountFixed CountKind = iota
	CountAlleles
	CountNonRefAlleles
	CountGenotypes
	CountUnbounded
)

// Count is a field's declared cardinality.
type Count struct {
	Kind CountKind
	N    int // only meaningful when Kind == CountFixed
}

func parseCount(s string) (Count, error) {
	switch s {
	case "A":
		return Count{Kind: CountAlleles}, nil
	case "R":
		return Count{Kind: CountNonRefAlleles}, nil
	case "G":
		return Count{Kind: CountGenotypes}, nil
	case ".":
		return Count{Kind: CountUnbounded}, nil
	default:
		n, err := strconv.Atoi(s)
		if err != nil {
			return Count{}, fmt.Errorf("vcfheader: unparseable Number=%q: %w", s, err)
		}
		return Count{Kind: CountFixed, N: n}, nil
	}
}

// Line is one meta-information line from the embedded VCF header.
type Line struct {
	Kind      Kind
	ID        string
	HasIDX    bool
	IDX       int32
	ValueType ValueType // meaningful for Info/Format
	Count     Count     // meaningful for Info/Format
	Attrs     map[string]string
	Raw       string
}

// Header is the fully parsed textual header: meta-information lines plus
// the final #CHROM column line naming the samples.
type Header struct {
	Lines      []Line
	Samples    []string
	FileFormat string
}

// Parse splits text (the embedded header, sans the trailing NUL) into a
// Header. Lines are kept in source order; the codec's dictionary and
// schema builders use the first occurrence of an ID within the same Kind,
// but all lines are retained here for round-trip fidelity.
func Parse(text string) (*Header, error) {
	h := &Header{}
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimRight(raw, "\r")
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "##") {
			parsed, err := parseMetaLine(line)
			if err != nil {
				return nil, err
			}
			if parsed.Kind == KindFileformat {
				h.FileFormat = parsed.ID
			}
			h.Lines = append(h.Lines, parsed)
			continue
		}
		if strings.HasPrefix(line, "#") {
			cols := strings.Split(strings.TrimPrefix(line, "#"), "\t")
			if len(cols) > 9 {
				h.Samples = cols[9:]
			}
			continue
		}
	}
	return h, nil
}

func parseMetaLine(line string) (Line, error) {
	body := strings.TrimPrefix(line, "##")
	eq := strings.IndexByte(body, '=')
	if eq < 0 {
		return Line{Kind: KindStructured, Raw: line, Attrs: map[string]string{}}, nil
	}
	tag, rest := body[:eq], body[eq+1:]

	if !strings.HasPrefix(rest, "<") {
		// Single key=value directive, e.g. ##fileformat=VCFv4.2
		l := Line{Raw: line, ID: rest, Attrs: map[string]string{}}
		if strings.EqualFold(tag, "fileformat") {
			l.Kind = KindFileformat
		} else {
			l.Kind = KindStructured
		}
		return l, nil
	}

	attrs, err := parseAngleAttrs(rest)
	if err != nil {
		return Line{}, fmt.Errorf("vcfheader: %s: %w", line, err)
	}

	l := Line{Raw: line, Attrs: attrs, ID: attrs["ID"]}
	switch strings.ToUpper(tag) {
	case "FILTER":
		l.Kind = KindFilter
	case "INFO":
		l.Kind = KindInfo
	case "FORMAT":
		l.Kind = KindFormat
	case "CONTIG":
		l.Kind = KindContig
	default:
		l.Kind = KindStructured
	}

	if l.Kind == KindInfo || l.Kind == KindFormat {
		vt, ok := attrs["Type"]
		if !ok {
			return Line{}, fmt.Errorf("vcfheader: %s: missing Type=", line)
		}
		valueType, err := parseValueType(vt)
		if err != nil {
			return Line{}, err
		}
		l.ValueType = valueType

		numStr, ok := attrs["Number"]
		if !ok {
			return Line{}, fmt.Errorf("vcfheader: %s: missing Number=", line)
		}
		count, err := parseCount(numStr)
		if err != nil {
			return Line{}, err
		}
		l.Count = count
	}

	if idxStr, ok := attrs["IDX"]; ok {
		idx, err := strconv.Atoi(idxStr)
		if err != nil {
			return Line{}, fmt.Errorf("vcfheader: %s: bad IDX=%q: %w", line, idxStr, err)
		}
		l.HasIDX = true
		l.IDX = int32(idx)
	}

	return l, nil
}

// parseAngleAttrs parses the "<KEY=VALUE,KEY2=VALUE2,...>" body of a
// structured header line, splitting on commas that are not inside a
// double-quoted value.
func parseAngleAttrs(s string) (map[string]string, error) {
	s = strings.TrimPrefix(s, "<")
	s = strings.TrimSuffix(s, ">")

	attrs := make(map[string]string)
	var key strings.Builder
	var val strings.Builder
	inQuotes := false
	inKey := true

	flush := func() {
		k := strings.TrimSpace(key.String())
		if k != "" {
			attrs[k] = val.String()
		}
		key.Reset()
		val.Reset()
		inKey = true
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inKey && c == '=':
			inKey = false
		case !inKey && c == '"' && (val.Len() == 0 || s[i-1] != '\\'):
			inQuotes = !inQuotes
		case c == ',' && !inQuotes:
			flush()
		default:
			if inKey {
				key.WriteByte(c)
			} else {
				val.WriteByte(c)
			}
		}
	}
	flush()
	return attrs, nil
}

// String reconstructs the embedded textual header: meta lines in source
// order followed by the #CHROM column line.
func (h *Header) String() string {
	var b strings.Builder
	for _, l := range h.Lines {
		b.WriteString(l.Raw)
		b.WriteByte('\n')
	}
	b.WriteString("#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO")
	if len(h.Samples) > 0 {
		b.WriteString("\tFORMAT\t")
		b.WriteString(strings.Join(h.Samples, "\t"))
	}
	b.WriteByte('\n')
	return b.String()
}
