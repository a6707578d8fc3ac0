package bcf2

import (
	"fmt"

	"github.com/mendelics-labs/bcf2/internal/vcfheader"
)

// Local aliases onto internal/vcfheader's types, so the rest of the
// codec can refer to header-line concepts without importing the
// sub-package directly.
type (
	headerLine = vcfheader.Line
	valueType  = vcfheader.ValueType
	countType  = vcfheader.Count
	countKind  = vcfheader.CountKind
)

const (
	kindFilter = vcfheader.KindFilter
	kindInfo   = vcfheader.KindInfo
	kindFormat = vcfheader.KindFormat
	kindContig = vcfheader.KindContig
)

const (
	typeInteger   = vcfheader.Integer
	typeFloat     = vcfheader.Float
	typeFlag      = vcfheader.Flag
	typeString    = vcfheader.String
	typeCharacter = vcfheader.Character
)

const (
	countFixed         = vcfheader.CountFixed
	countAlleles       = vcfheader.CountAlleles
	countNonRefAlleles = vcfheader.CountNonRefAlleles
	countGenotypes     = vcfheader.CountGenotypes
	countUnbounded     = vcfheader.CountUnbounded
)

// FieldSchema is the per-(INFO|FORMAT) line record C4/C5 consult
// to pick an encoder/decoder strategy and validate cardinality.
type FieldSchema struct {
	ID            string
	Kind          vcfheader.Kind
	DictionaryOff int32
	ValueType     valueType
	Count         countType
	IsUnbounded   bool
	IsStandardKey bool
}

// Schema is the C3 Header Adapter: dictionaries plus per-ID field
// schemas, built once from the parsed textual header and immutable for
// the stream's lifetime.
type Schema struct {
	Minor      int
	StringDict *Dictionary
	ContigDict *Dictionary
	Info       map[string]*FieldSchema
	Format     map[string]*FieldSchema
	Header     *vcfheader.Header

	infoByOffset   map[int32]*FieldSchema
	formatByOffset map[int32]*FieldSchema
}

// infoField and formatField resolve the dictionary offset read back from
// a sites or genotypes block to its field schema.
func (s *Schema) infoField(offset int32) (*FieldSchema, error) {
	fs, ok := s.infoByOffset[offset]
	if !ok {
		return nil, fmt.Errorf("%w: INFO dictionary offset %d not declared in header", ErrInvalidHeader, offset)
	}
	return fs, nil
}

func (s *Schema) formatField(offset int32) (*FieldSchema, error) {
	fs, ok := s.formatByOffset[offset]
	if !ok {
		return nil, fmt.Errorf("%w: FORMAT dictionary offset %d not declared in header", ErrInvalidHeader, offset)
	}
	return fs, nil
}

// standardKeyContract is the canonical (type, count) contract for a
// reserved key of the given kind; a header line of that kind that
// disagrees is rejected. Lines of another kind sharing the ID (e.g. an
// INFO DP line) are not checked against it.
type standardKeyContract struct {
	kind      vcfheader.Kind
	valueType valueType
	count     countType
}

var standardKeys = map[string]standardKeyContract{
	"GT": {kind: kindFormat, valueType: typeString, count: countType{Kind: countFixed, N: 1}},
	"GQ": {kind: kindFormat, valueType: typeInteger, count: countType{Kind: countFixed, N: 1}},
	"DP": {kind: kindFormat, valueType: typeInteger, count: countType{Kind: countFixed, N: 1}},
	"AD": {kind: kindFormat, valueType: typeInteger, count: countType{Kind: countNonRefAlleles}},
	"PL": {kind: kindFormat, valueType: typeInteger, count: countType{Kind: countGenotypes}},
	"FT": {kind: kindFormat, valueType: typeString, count: countType{Kind: countFixed, N: 1}},
}

// BuildSchema parses an embedded header text and assembles the C2/C3
// state (dictionaries + field schemas) a stream needs to encode/decode
// records.
func BuildSchema(headerText string, minor int) (*Schema, error) {
	hdr, err := vcfheader.Parse(headerText)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHeader, err)
	}
	return buildSchemaFromHeader(hdr, minor)
}

func buildSchemaFromHeader(hdr *vcfheader.Header, minor int) (*Schema, error) {
	stringDict, err := buildStringDict(hdr.Lines, minor)
	if err != nil {
		return nil, err
	}
	contigDict, err := buildContigDict(hdr.Lines, minor)
	if err != nil {
		return nil, err
	}

	s := &Schema{
		Minor:          minor,
		StringDict:     stringDict,
		ContigDict:     contigDict,
		Info:           make(map[string]*FieldSchema),
		Format:         make(map[string]*FieldSchema),
		Header:         hdr,
		infoByOffset:   make(map[int32]*FieldSchema),
		formatByOffset: make(map[int32]*FieldSchema),
	}

	for _, l := range hdr.Lines {
		if l.Kind != kindInfo && l.Kind != kindFormat {
			continue
		}
		if (l.Kind == kindInfo && s.Info[l.ID] != nil) || (l.Kind == kindFormat && s.Format[l.ID] != nil) {
			continue // first occurrence of an ID within a kind wins
		}
		if l.Kind == kindFormat && l.ValueType == typeFlag {
			return nil, fmt.Errorf("%w: FORMAT line %q cannot have Flag type", ErrInvalidHeader, l.ID)
		}
		if contract, ok := standardKeys[l.ID]; ok && contract.kind == l.Kind {
			if contract.valueType != l.ValueType || contract.count != l.Count {
				return nil, fmt.Errorf("%w: standard key %q does not match its canonical type/cardinality", ErrInvalidHeader, l.ID)
			}
		}
		off, ok := stringDict.Offset(l.ID)
		if !ok {
			return nil, fmt.Errorf("%w: %q has no dictionary offset", ErrInvalidHeader, l.ID)
		}
		fs := &FieldSchema{
			ID:            l.ID,
			Kind:          l.Kind,
			DictionaryOff: off,
			ValueType:     l.ValueType,
			Count:         l.Count,
			IsUnbounded:   l.Count.Kind == countUnbounded,
			IsStandardKey: isStandardKey(l.ID),
		}
		if l.Kind == kindInfo {
			s.Info[l.ID] = fs
			s.infoByOffset[off] = fs
		} else {
			s.Format[l.ID] = fs
			s.formatByOffset[off] = fs
		}
	}
	return s, nil
}

func isStandardKey(id string) bool {
	_, ok := standardKeys[id]
	return ok
}

// cardinality computes the per-record/per-genotype value count for a
// field's declared Count, given the site's allele count and (for G) the
// sample's ploidy.
func cardinality(c countType, numAlleles, ploidy int) (int, bool) {
	switch c.Kind {
	case countFixed:
		return c.N, true
	case countAlleles:
		return numAlleles - 1, true
	case countNonRefAlleles:
		return numAlleles, true
	case countGenotypes:
		return genotypeCount(ploidy, numAlleles), true
	default:
		return 0, false // Unbounded: caller derives count from observed data
	}
}

// genotypeCount computes C(ploidy+alleles-1, ploidy), the number of
// distinct unordered genotypes for a diploid-or-higher site.
func genotypeCount(ploidy, numAlleles int) int {
	if ploidy <= 0 {
		ploidy = 1
	}
	n := ploidy + numAlleles - 1
	return binomial(n, ploidy)
}

func binomial(n, k int) int {
	if k < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	result := 1
	for i := 0; i < k; i++ {
		result = result * (n - i) / (i + 1)
	}
	return result
}
