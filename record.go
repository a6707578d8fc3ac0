package bcf2

import (
	"bytes"
	"fmt"
)

// VariantCall is the in-memory representation of one decoded (or
// about-to-be-encoded) BCF2 record: the sites-block fields plus a
// handle onto its genotypes block.
type VariantCall struct {
	ContigOffset int32
	Pos0         int32 // 0-based start, per htslib convention
	RefLength    int32
	Qual         *float32
	ID           *string
	Alleles      []string // REF first, then ALTs in order
	Filters      []int32  // dictionary offsets; empty == unfiltered, [0] == PASS
	Info         map[string]interface{}
	InfoOrder    []string

	FormatOrder []string
	Genotypes   *Genotypes
}

// Pos1 returns the 1-based VCF position.
func (vc *VariantCall) Pos1() int32 { return vc.Pos0 + 1 }

// Stop returns the 0-based end of the reference span (exclusive).
func (vc *VariantCall) Stop() int32 { return vc.Pos0 + vc.RefLength }

func (vc *VariantCall) genotypeValues() ([]map[string]interface{}, error) {
	if vc.Genotypes == nil {
		return nil, nil
	}
	return vc.Genotypes.Values()
}

// Genotypes is the genotypes block's in-memory handle: either a set of
// already-materialized per-sample attribute maps (the writer's case),
// or a still-undecoded byte slab plus the schema/field count needed to
// decode it lazily, on first access, with the result cached thereafter.
type Genotypes struct {
	schema        *Schema
	nSamples      int
	nFormatFields int
	raw           []byte

	values      []map[string]interface{}
	formatOrder []string
	decoded     bool
}

// NewGenotypes wraps already-materialized per-sample attribute maps
// for writing. formatOrder is what FormatOrder reports; the encoder
// walks VariantCall.FormatOrder, not this list.
func NewGenotypes(formatOrder []string, values []map[string]interface{}) *Genotypes {
	return &Genotypes{
		nSamples:    len(values),
		values:      values,
		formatOrder: formatOrder,
		decoded:     true,
	}
}

func newLazyGenotypes(schema *Schema, nSamples, nFormatFields int, raw []byte) *Genotypes {
	return &Genotypes{schema: schema, nSamples: nSamples, nFormatFields: nFormatFields, raw: raw}
}

// NumSamples reports the sample count without forcing a decode.
func (g *Genotypes) NumSamples() int {
	if g == nil {
		return 0
	}
	return g.nSamples
}

// Values materializes the per-sample attribute maps, decoding the raw
// genotypes block on first call and caching the result.
func (g *Genotypes) Values() ([]map[string]interface{}, error) {
	if g == nil {
		return nil, nil
	}
	if g.decoded {
		return g.values, nil
	}
	values, order, err := decodeGenotypesBlock(newByteReader(g.raw), g.schema, g.nFormatFields, g.nSamples)
	if err != nil {
		return nil, err
	}
	g.values = values
	g.formatOrder = order
	g.decoded = true
	return g.values, nil
}

// FormatOrder reports the FORMAT key order, forcing a decode if the
// genotypes block has not been materialized yet.
func (g *Genotypes) FormatOrder() ([]string, error) {
	if g == nil {
		return nil, nil
	}
	if !g.decoded {
		if _, err := g.Values(); err != nil {
			return nil, err
		}
	}
	return g.formatOrder, nil
}

// encodeSitesBlock writes the sites block's implicit fields, packed
// words, ID, alleles, filter vector and INFO pairs, in wire order.
func encodeSitesBlock(schema *Schema, vc *VariantCall) ([]byte, error) {
	if len(vc.Alleles) < 1 || vc.Alleles[0] == "" {
		return nil, fmt.Errorf("%w: record must have a non-empty REF allele", ErrMalformedRecord)
	}
	nSamples := vc.Genotypes.NumSamples()

	var buf bytes.Buffer
	writeRawInt32LE(&buf, vc.ContigOffset)
	writeRawInt32LE(&buf, vc.Pos0)
	writeRawInt32LE(&buf, vc.RefLength)
	if vc.Qual != nil {
		writeRawFloat32LE(&buf, *vc.Qual)
	} else {
		writeRawFloat32LE(&buf, missingFloat())
	}

	nAlleles := len(vc.Alleles)
	nInfo := len(vc.InfoOrder)
	if err := writeTypedInt32(&buf, int32(nAlleles)<<16|int32(nInfo)); err != nil {
		return nil, err
	}
	nFormat := len(vc.FormatOrder)
	if err := writeTypedInt32(&buf, int32(nFormat)<<24|int32(nSamples&0x00FFFFFF)); err != nil {
		return nil, err
	}

	if vc.ID != nil {
		if err := writeCharMatrix(&buf, [][]byte{[]byte(*vc.ID)}, len(*vc.ID)); err != nil {
			return nil, err
		}
	} else {
		writeMissingString(&buf)
	}

	for _, a := range vc.Alleles {
		if err := writeCharMatrix(&buf, [][]byte{[]byte(a)}, len(a)); err != nil {
			return nil, err
		}
	}

	if err := writeIntMatrix(&buf, [][]*int32{int32Ptrs(vc.Filters)}, len(vc.Filters), schema.Minor); err != nil {
		return nil, err
	}

	gotInfo, err := encodeInfoPairs(&buf, schema, vc)
	if err != nil {
		return nil, err
	}
	if gotInfo != nInfo {
		return nil, fmt.Errorf("%w: encoded %d INFO pairs, expected %d", ErrMalformedRecord, gotInfo, nInfo)
	}

	return buf.Bytes(), nil
}

// encodeGenotypesBlock writes the genotypes block's n_format_fields
// pairs for one record, validating that the number of FORMAT fields
// encoded equals len(vc.FormatOrder), the count the sites block's
// packed word declares.
func encodeGenotypesBlock(schema *Schema, vc *VariantCall) ([]byte, error) {
	var buf bytes.Buffer
	gotFormat, err := encodeFormatPairs(&buf, schema, vc)
	if err != nil {
		return nil, err
	}
	if gotFormat != len(vc.FormatOrder) {
		return nil, fmt.Errorf("%w: encoded %d FORMAT fields, expected %d", ErrMalformedRecord, gotFormat, len(vc.FormatOrder))
	}
	return buf.Bytes(), nil
}

// decodeSitesBlock parses one sites block's raw bytes, returning the
// partially-populated VariantCall (Genotypes left nil; the caller
// attaches it once the matching genotypes block is known) plus the
// sample/format-field counts the packed words carried.
func decodeSitesBlock(schema *Schema, raw []byte) (vc *VariantCall, nSamples, nFormatFields int, err error) {
	r := newByteReader(raw)

	contigOffset, err := readRawInt32LE(r)
	if err != nil {
		return nil, 0, 0, err
	}
	pos0, err := readRawInt32LE(r)
	if err != nil {
		return nil, 0, 0, err
	}
	refLen, err := readRawInt32LE(r)
	if err != nil {
		return nil, 0, 0, err
	}
	qualRaw, err := readRawFloat32LE(r)
	if err != nil {
		return nil, 0, 0, err
	}

	word1, err := readTypedInt32(r)
	if err != nil {
		return nil, 0, 0, err
	}
	nAlleles := int((word1 >> 16) & 0xFFFF)
	nInfo := int(word1 & 0xFFFF)

	word2, err := readTypedInt32(r)
	if err != nil {
		return nil, 0, 0, err
	}
	nFormatFields = int((word2 >> 24) & 0xFF)
	nSamples = int(word2 & 0x00FFFFFF)

	id, err := decodeInfoCharacter(r)
	if err != nil {
		return nil, 0, 0, err
	}

	if nAlleles < 1 {
		return nil, 0, 0, fmt.Errorf("%w: record declares %d alleles, need at least REF", ErrMalformedRecord, nAlleles)
	}
	alleles := make([]string, nAlleles)
	for i := 0; i < nAlleles; i++ {
		a, err := decodeInfoCharacter(r)
		if err != nil {
			return nil, 0, 0, err
		}
		s, _ := a.(string)
		alleles[i] = s
	}
	if alleles[0] == "" {
		return nil, 0, 0, fmt.Errorf("%w: REF allele must not be empty", ErrMalformedRecord)
	}

	filterRows, nFilters, err := readIntMatrix(r, 1)
	if err != nil {
		return nil, 0, 0, err
	}
	filters := make([]int32, 0, nFilters)
	for _, v := range filterRows[0] {
		if v != nil {
			filters = append(filters, *v)
		}
	}

	info, infoOrder, err := decodeInfoPairs(r, schema, nInfo)
	if err != nil {
		return nil, 0, 0, err
	}

	var qual *float32
	if !isMissingFloat(qualRaw) {
		q := qualRaw
		qual = &q
	}
	var idPtr *string
	if s, ok := id.(string); ok {
		idPtr = &s
	}

	vc = &VariantCall{
		ContigOffset: contigOffset,
		Pos0:         pos0,
		RefLength:    refLen,
		Qual:         qual,
		ID:           idPtr,
		Alleles:      alleles,
		Filters:      filters,
		Info:         info,
		InfoOrder:    infoOrder,
	}
	return vc, nSamples, nFormatFields, nil
}
