package validate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeISBN(t *testing.T) {
	cases := map[string]string{
		"978-0-262-03384-8": "9780262033848",
		" 0 262 03384 x ":   "026203384X",
		"９７８０２６２":           "9780262",
		"111":               "111",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeISBN(in), in)
	}
}

func TestNormalizeDepartment(t *testing.T) {
	assert.Equal(t, "CS", NormalizeDepartment(" cs "))
	assert.Equal(t, "MATH", NormalizeDepartment("ＭＡＴＨ"))
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"A", "B"}, Names([]string{" A", "", "  ", "B "}))
	assert.Empty(t, Names(nil))
}

func TestEmail(t *testing.T) {
	got, err := Email(" a@x.io ")
	require.NoError(t, err)
	assert.Equal(t, "a@x.io", got)

	for _, bad := range []string{"", "nope", "Alice <a@x.io>"} {
		_, err := Email(bad)
		assert.ErrorIs(t, err, ErrInvalid, bad)
	}
}

func TestPrice(t *testing.T) {
	assert.NoError(t, Price(0))
	assert.NoError(t, Price(12.5))
	assert.Error(t, Price(-5))
	assert.Error(t, Price(math.NaN()))
	assert.Error(t, Price(math.Inf(1)))
}
