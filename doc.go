// Package bcf2 implements the BCF2 codec: a binary reader and writer for
// the BCF variant-call container format (minor versions 1 and 2).
//
// A Writer encodes VariantCall values against a VCF header parsed by
// internal/vcfheader into the two-block per-record wire layout (sites
// block, genotypes block). A Reader performs the inverse, decoding
// sites eagerly and genotypes lazily on first access.
//
// Text VCF parsing, reference-sequence retrieval, indexed random access
// and BCF1 interoperability are out of scope; internal/vcfheader is the
// only text format this package touches.
package bcf2
