package vcfheader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type ParseSuite struct {
	suite.Suite
}

func (s *ParseSuite) TestFileformatLine() {
	h, err := Parse("##fileformat=VCFv4.2\n")
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), "VCFv4.2", h.FileFormat)
}

func (s *ParseSuite) TestInfoLineFields() {
	h, err := Parse("##INFO=<ID=DP,Number=1,Type=Integer,Description=\"Depth\">\n")
	assert.NoError(s.T(), err)
	s.Require().Len(h.Lines, 1)
	l := h.Lines[0]
	assert.Equal(s.T(), KindInfo, l.Kind)
	assert.Equal(s.T(), "DP", l.ID)
	assert.Equal(s.T(), Integer, l.ValueType)
	assert.Equal(s.T(), Count{Kind: CountFixed, N: 1}, l.Count)
}

func (s *ParseSuite) TestNumberVariants() {
	h, err := Parse("##INFO=<ID=A,Number=A,Type=Integer,Description=\"a\">\n" +
		"##INFO=<ID=R,Number=R,Type=Integer,Description=\"r\">\n" +
		"##INFO=<ID=G,Number=G,Type=Integer,Description=\"g\">\n" +
		"##INFO=<ID=U,Number=.,Type=Integer,Description=\"u\">\n")
	assert.NoError(s.T(), err)
	s.Require().Len(h.Lines, 4)
	assert.Equal(s.T(), CountAlleles, h.Lines[0].Count.Kind)
	assert.Equal(s.T(), CountNonRefAlleles, h.Lines[1].Count.Kind)
	assert.Equal(s.T(), CountGenotypes, h.Lines[2].Count.Kind)
	assert.Equal(s.T(), CountUnbounded, h.Lines[3].Count.Kind)
}

func (s *ParseSuite) TestIDXAttribute() {
	h, err := Parse("##FILTER=<ID=LowQual,Description=\"low\",IDX=5>\n")
	assert.NoError(s.T(), err)
	s.Require().Len(h.Lines, 1)
	assert.True(s.T(), h.Lines[0].HasIDX)
	assert.Equal(s.T(), int32(5), h.Lines[0].IDX)
}

func (s *ParseSuite) TestQuotedCommaInDescriptionDoesNotSplitAttrs() {
	h, err := Parse("##INFO=<ID=X,Number=1,Type=String,Description=\"a, b, c\">\n")
	assert.NoError(s.T(), err)
	s.Require().Len(h.Lines, 1)
	assert.Equal(s.T(), "a, b, c", h.Lines[0].Attrs["Description"])
}

func (s *ParseSuite) TestMissingTypeIsRejected() {
	_, err := Parse("##INFO=<ID=X,Number=1,Description=\"no type\">\n")
	assert.Error(s.T(), err)
}

func (s *ParseSuite) TestStructuredLineKeptVerbatim() {
	h, err := Parse("##PEDIGREE=<Child=C,Mother=M,Father=F>\n")
	assert.NoError(s.T(), err)
	s.Require().Len(h.Lines, 1)
	assert.Equal(s.T(), KindStructured, h.Lines[0].Kind)
	assert.Equal(s.T(), "##PEDIGREE=<Child=C,Mother=M,Father=F>", h.Lines[0].Raw)
}

func (s *ParseSuite) TestChromLineExtractsSamples() {
	h, err := Parse("##fileformat=VCFv4.2\n#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tNA001\tNA002\n")
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), []string{"NA001", "NA002"}, h.Samples)
}

func (s *ParseSuite) TestChromLineWithNoSamples() {
	h, err := Parse("##fileformat=VCFv4.2\n#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n")
	assert.NoError(s.T(), err)
	assert.Empty(s.T(), h.Samples)
}

func (s *ParseSuite) TestHeaderStringRoundTripsMetaLines() {
	text := "##fileformat=VCFv4.2\n##INFO=<ID=DP,Number=1,Type=Integer,Description=\"d\">\n"
	h, err := Parse(text)
	assert.NoError(s.T(), err)
	assert.Contains(s.T(), h.String(), "##fileformat=VCFv4.2")
	assert.Contains(s.T(), h.String(), "##INFO=<ID=DP,Number=1,Type=Integer,Description=\"d\">")
}

func TestParseSuite(t *testing.T) {
	suite.Run(t, new(ParseSuite))
}
