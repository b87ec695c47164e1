package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSizeForMinutes(t *testing.T) {
	tests := []struct {
		minutes int
		want    SizeCategory
	}{
		{0, SizeXS},
		{15, SizeXS},
		{16, SizeS},
		{30, SizeS},
		{45, SizeM},
		{60, SizeM},
		{90, SizeL},
		{120, SizeL},
		{121, SizeXL},
		{600, SizeXL},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SizeForMinutes(tt.minutes), "minutes=%d", tt.minutes)
	}
}

func TestSizeCategory_Validate(t *testing.T) {
	for _, s := range []SizeCategory{SizeXS, SizeS, SizeM, SizeL} {
		assert.NoError(t, s.Validate(), s)
	}
	assert.Error(t, SizeXL.Validate())
	assert.Error(t, SizeCategory("XXL").Validate())
}

func TestParseSizeCategory(t *testing.T) {
	s, err := ParseSizeCategory(" m ")
	assert.NoError(t, err)
	assert.Equal(t, SizeM, s)

	_, err = ParseSizeCategory("huge")
	assert.Error(t, err)
}

func TestSizeCategory_Complexity(t *testing.T) {
	assert.Equal(t, ComplexitySimple, SizeXS.Complexity())
	assert.Equal(t, ComplexitySimple, SizeS.Complexity())
	assert.Equal(t, ComplexityMedium, SizeM.Complexity())
	assert.Equal(t, ComplexityComplex, SizeL.Complexity())

	assert.Equal(t, 0.7, ComplexitySimple.Multiplier())
	assert.Equal(t, 1.0, ComplexityMedium.Multiplier())
	assert.Equal(t, 1.3, ComplexityComplex.Multiplier())
}

func TestSizeCategory_NominalMinutesRoundTrip(t *testing.T) {
	for _, s := range []SizeCategory{SizeXS, SizeS, SizeM, SizeL} {
		assert.Equal(t, s, SizeForMinutes(s.NominalMinutes()))
	}
}
