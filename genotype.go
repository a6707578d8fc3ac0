package bcf2

import (
	"strconv"
	"strings"
)

// GTCall is the specialized decoded/encoded representation of a sample's
// GT field: a sequence of allele indices (REF=0, ALT i encoded as i) or
// -1 for a no-call allele, with a parallel phase flag per allele (the
// phase bit is always false for the first allele; for later alleles it
// records whether that allele was joined to the previous one with '|').
type GTCall struct {
	Alleles []int
	Phased  []bool
}

// String renders the conventional VCF text form ("0/1", "1|2", "./.").
func (g *GTCall) String() string {
	if g == nil || len(g.Alleles) == 0 {
		return "."
	}
	var b strings.Builder
	for i, a := range g.Alleles {
		if i > 0 {
			if g.Phased[i] {
				b.WriteByte('|')
			} else {
				b.WriteByte('/')
			}
		}
		if a < 0 {
			b.WriteByte('.')
		} else {
			b.WriteString(strconv.Itoa(a))
		}
	}
	return b.String()
}

func (g *GTCall) ploidy() int {
	if g == nil {
		return 0
	}
	return len(g.Alleles)
}

func maxPloidy(calls []*GTCall, floor int) int {
	n := floor
	for _, c := range calls {
		if p := c.ploidy(); p > n {
			n = p
		}
	}
	return n
}

// samplePloidies returns the biological ploidy used to resolve a
// genotype-cardinality ('G') FORMAT field for each sample: the sample's
// own GT ploidy when present, else the record's declared max ploidy.
func samplePloidies(calls []*GTCall, recordMaxPloidy int) []int {
	out := make([]int, len(calls))
	for i, c := range calls {
		if p := c.ploidy(); p > 0 {
			out[i] = p
		} else {
			out[i] = recordMaxPloidy
		}
	}
	return out
}
